// Package domain contains persistence models for invoicing.
package domain

import (
	"database/sql/driver"
	"fmt"

	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusComputed  InvoiceStatus = "computed"
	InvoiceStatusError     InvoiceStatus = "error"
	InvoiceStatusPublished InvoiceStatus = "published"
	InvoiceStatusPaid      InvoiceStatus = "paid"
)

// InvoiceStatuses lists every status in lifecycle order.
var InvoiceStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusComputed,
	InvoiceStatusError,
	InvoiceStatusPublished,
	InvoiceStatusPaid,
}

func (s InvoiceStatus) Valid() bool {
	for _, status := range InvoiceStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	status := InvoiceStatus(value)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
	return status, nil
}

// Value stores the status as its name and refuses unknown values.
func (s InvoiceStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}
	return string(s), nil
}

// Scan reads a stored status name and refuses unknown values.
func (s *InvoiceStatus) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidStatus, src)
	}
	status, err := ParseInvoiceStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Invoice is a billing document issued against a contract for a billing period.
type Invoice struct {
	ID            int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	PublicationID string         `json:"publication_id" gorm:"type:varchar(50);not null;uniqueIndex:ux_invoices_publication_id"`
	Amount        float64        `json:"amount" gorm:"not null"`
	AmountUnit    string         `json:"amount_unit" gorm:"type:varchar(32);not null"`
	Status        InvoiceStatus  `json:"status" gorm:"type:varchar(32);not null"`
	ContractID    int64          `json:"contract_id" gorm:"not null;index:idx_invoices_contract_id"`
	StartDate     datatypes.Date `json:"start_date" gorm:"not null"`
	EndDate       datatypes.Date `json:"end_date" gorm:"not null"`
	Version       int64          `json:"version" gorm:"not null;default:1"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// String renders the invoice as "<publication_id> - <status>".
func (i *Invoice) String() string {
	if i == nil {
		return "<nil>"
	}
	return i.PublicationID + " - " + string(i.Status)
}
