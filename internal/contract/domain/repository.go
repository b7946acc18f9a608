package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, contract *Contract) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Contract, error)
	FindByPurchaseOrder(ctx context.Context, db *gorm.DB, purchaseOrder string) (*Contract, error)
	FindWithInvoices(ctx context.Context, db *gorm.DB, id int64) (*Contract, error)
	ListBySite(ctx context.Context, db *gorm.DB, siteID int64) ([]*Contract, error)
	Update(ctx context.Context, db *gorm.DB, id int64, fields map[string]any) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error)
}
