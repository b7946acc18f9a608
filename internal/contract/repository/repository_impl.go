package repository

import (
	"context"

	contractdomain "github.com/smallbiznis/sitebill/internal/contract/domain"
	"github.com/smallbiznis/sitebill/pkg/db/option"
	"github.com/smallbiznis/sitebill/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() contractdomain.Repository {
	return &repo{}
}

func store(db *gorm.DB) repository.Repository[contractdomain.Contract] {
	return repository.ProvideStore[contractdomain.Contract](db)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, contract *contractdomain.Contract) error {
	return store(db).Create(ctx, contract)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*contractdomain.Contract, error) {
	return store(db).FindByID(ctx, id)
}

func (r *repo) FindByPurchaseOrder(ctx context.Context, db *gorm.DB, purchaseOrder string) (*contractdomain.Contract, error) {
	return store(db).FindOne(ctx, &contractdomain.Contract{PurchaseOrder: purchaseOrder})
}

func (r *repo) FindWithInvoices(ctx context.Context, db *gorm.DB, id int64) (*contractdomain.Contract, error) {
	return store(db).FindByID(ctx, id, option.Preload("Invoices", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("start_date ASC").Order("id ASC")
	}))
}

func (r *repo) ListBySite(ctx context.Context, db *gorm.DB, siteID int64) ([]*contractdomain.Contract, error) {
	return store(db).Find(ctx, &contractdomain.Contract{SiteID: siteID},
		option.OrderByColumn("start_date", false),
		option.OrderByColumn("id", false),
	)
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id int64, fields map[string]any) (int64, error) {
	return store(db).Update(ctx, id, fields)
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	return store(db).Delete(ctx, id)
}
