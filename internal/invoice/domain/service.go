package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Invoice, error)
	GetByID(ctx context.Context, id int64) (*Invoice, error)
	GetByPublicationID(ctx context.Context, publicationID string) (*Invoice, error)
	ListByContract(ctx context.Context, contractID int64) ([]*Invoice, error)
	Transition(ctx context.Context, req TransitionRequest) (*Invoice, error)
}

type CreateRequest struct {
	PublicationID string        `json:"publication_id"`
	ContractID    int64         `json:"contract_id"`
	Status        InvoiceStatus `json:"status"`
	Amount        float64       `json:"amount"`
	AmountUnit    string        `json:"amount_unit"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date"`
}

// TransitionRequest moves an invoice to Status. Amount, when set, is written
// in the same update. ExpectedVersion, when non-zero, must match the stored
// version or the write fails with ErrConcurrentModification.
type TransitionRequest struct {
	ID              int64         `json:"id"`
	Status          InvoiceStatus `json:"status"`
	Amount          *float64      `json:"amount,omitempty"`
	ExpectedVersion int64         `json:"expected_version,omitempty"`
}

var (
	ErrInvalidID               = errors.New("invalid_id")
	ErrInvalidPublicationID    = errors.New("invalid_publication_id")
	ErrInvalidContract         = errors.New("invalid_contract")
	ErrInvalidStatus           = errors.New("invalid_status")
	ErrInvalidPeriod           = errors.New("invalid_billing_period")
	ErrInvalidAmount           = errors.New("invalid_amount")
	ErrInvalidStatusTransition = errors.New("invalid_status_transition")
	ErrAmountFrozen            = errors.New("amount_frozen")
	ErrConcurrentModification  = errors.New("concurrent_modification")
	ErrNotFound                = errors.New("not_found")
)
