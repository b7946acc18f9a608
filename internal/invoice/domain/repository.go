package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Invoice, error)
	FindByPublicationID(ctx context.Context, db *gorm.DB, publicationID string) (*Invoice, error)
	ListByContract(ctx context.Context, db *gorm.DB, contractID int64) ([]*Invoice, error)
	// UpdateStatus writes status and amount only if the row still carries
	// expectedVersion, and bumps the version. It reports whether a row changed.
	UpdateStatus(ctx context.Context, db *gorm.DB, id int64, expectedVersion int64, status InvoiceStatus, amount float64) (bool, error)
}
