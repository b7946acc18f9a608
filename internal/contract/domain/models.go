// Package domain contains persistence models for site contracts.
package domain

import (
	"database/sql/driver"
	"fmt"

	invoicedomain "github.com/smallbiznis/sitebill/internal/invoice/domain"
	"gorm.io/datatypes"
)

// InvoicingFrequency is how often a contract is invoiced.
type InvoicingFrequency string

const (
	InvoicingFrequencyMonthly    InvoicingFrequency = "Monthly"
	InvoicingFrequencyQuarterly  InvoicingFrequency = "Quarterly"
	InvoicingFrequencyBiAnnually InvoicingFrequency = "Bi-annually"
	InvoicingFrequencyAnnually   InvoicingFrequency = "Annually"
)

var InvoicingFrequencies = []InvoicingFrequency{
	InvoicingFrequencyMonthly,
	InvoicingFrequencyQuarterly,
	InvoicingFrequencyBiAnnually,
	InvoicingFrequencyAnnually,
}

var frequencyMonths = map[InvoicingFrequency]int{
	InvoicingFrequencyMonthly:    1,
	InvoicingFrequencyQuarterly:  3,
	InvoicingFrequencyBiAnnually: 6,
	InvoicingFrequencyAnnually:   12,
}

func (f InvoicingFrequency) Valid() bool {
	_, ok := frequencyMonths[f]
	return ok
}

// Months returns the length of one invoicing period, or 0 for unknown values.
func (f InvoicingFrequency) Months() int {
	return frequencyMonths[f]
}

func ParseInvoicingFrequency(value string) (InvoicingFrequency, error) {
	f := InvoicingFrequency(value)
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, value)
	}
	return f, nil
}

func (f InvoicingFrequency) Value() (driver.Value, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFrequency, string(f))
	}
	return string(f), nil
}

func (f *InvoicingFrequency) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidFrequency, src)
	}
	parsed, err := ParseInvoicingFrequency(raw)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Contract is a commercial agreement attached to one site.
type Contract struct {
	ID                 int64                   `json:"id" gorm:"primaryKey;autoIncrement"`
	PurchaseOrder      string                  `json:"purchase_order" gorm:"type:varchar(50);not null;uniqueIndex:ux_contracts_purchase_order"`
	StartDate          datatypes.Date          `json:"start_date" gorm:"not null"`
	EndDate            datatypes.Date          `json:"end_date" gorm:"not null"`
	SiteID             int64                   `json:"site_id" gorm:"not null;index:idx_contracts_site_id"`
	Price              float64                 `json:"price" gorm:"not null"`
	InvoicingFrequency InvoicingFrequency      `json:"invoicing_frequency" gorm:"type:varchar(32);not null"`
	Invoices           []invoicedomain.Invoice `json:"invoices,omitempty" gorm:"foreignKey:ContractID;constraint:OnDelete:RESTRICT"`
}

// TableName sets the database table name.
func (Contract) TableName() string { return "contracts" }

// String returns the purchase order.
func (c *Contract) String() string {
	if c == nil {
		return "<nil>"
	}
	return c.PurchaseOrder
}
