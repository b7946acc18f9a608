package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Contract, error)
	GetByID(ctx context.Context, id int64) (*Contract, error)
	GetByPurchaseOrder(ctx context.Context, purchaseOrder string) (*Contract, error)
	GetWithInvoices(ctx context.Context, id int64) (*Contract, error)
	ListBySite(ctx context.Context, siteID int64) ([]*Contract, error)
	Update(ctx context.Context, req UpdateRequest) (*Contract, error)
	Delete(ctx context.Context, id int64) error
}

type CreateRequest struct {
	PurchaseOrder      string             `json:"purchase_order"`
	SiteID             int64              `json:"site_id"`
	StartDate          time.Time          `json:"start_date"`
	EndDate            time.Time          `json:"end_date"`
	Price              float64            `json:"price"`
	InvoicingFrequency InvoicingFrequency `json:"invoicing_frequency"`
}

// UpdateRequest changes only the fields that are set.
type UpdateRequest struct {
	ID                 int64               `json:"id"`
	EndDate            *time.Time          `json:"end_date,omitempty"`
	Price              *float64            `json:"price,omitempty"`
	InvoicingFrequency *InvoicingFrequency `json:"invoicing_frequency,omitempty"`
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidPurchaseOrder = errors.New("invalid_purchase_order")
	ErrInvalidSite          = errors.New("invalid_site")
	ErrInvalidPeriod        = errors.New("invalid_contract_period")
	ErrInvalidPrice         = errors.New("invalid_price")
	ErrInvalidFrequency     = errors.New("invalid_invoicing_frequency")
	ErrNotFound             = errors.New("not_found")
)
