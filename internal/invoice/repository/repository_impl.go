package repository

import (
	"context"

	invoicedomain "github.com/smallbiznis/sitebill/internal/invoice/domain"
	"github.com/smallbiznis/sitebill/pkg/db"
	"github.com/smallbiznis/sitebill/pkg/db/option"
	"github.com/smallbiznis/sitebill/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() invoicedomain.Repository {
	return &repo{}
}

func store(db *gorm.DB) repository.Repository[invoicedomain.Invoice] {
	return repository.ProvideStore[invoicedomain.Invoice](db)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *invoicedomain.Invoice) error {
	return store(db).Create(ctx, invoice)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*invoicedomain.Invoice, error) {
	return store(db).FindByID(ctx, id)
}

func (r *repo) FindByPublicationID(ctx context.Context, db *gorm.DB, publicationID string) (*invoicedomain.Invoice, error) {
	return store(db).FindOne(ctx, &invoicedomain.Invoice{PublicationID: publicationID})
}

func (r *repo) ListByContract(ctx context.Context, db *gorm.DB, contractID int64) ([]*invoicedomain.Invoice, error) {
	return store(db).Find(ctx, &invoicedomain.Invoice{ContractID: contractID},
		option.OrderByColumn("start_date", false),
		option.OrderByColumn("id", false),
	)
}

func (r *repo) UpdateStatus(ctx context.Context, conn *gorm.DB, id int64, expectedVersion int64, status invoicedomain.InvoiceStatus, amount float64) (bool, error) {
	res := conn.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET status = ?, amount = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		status,
		amount,
		id,
		expectedVersion,
	)
	if res.Error != nil {
		return false, db.TranslateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}
