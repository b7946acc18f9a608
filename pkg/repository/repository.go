package repository

import (
	"context"

	"github.com/smallbiznis/sitebill/pkg/db/option"
)

// Repository is a generic GORM-backed store. Constraint failures are
// reported as db.ErrUniqueViolation or db.ErrForeignKeyViolation.
type Repository[T any] interface {
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	FindByID(ctx context.Context, id int64, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, id int64, fields map[string]any) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	BatchCreate(ctx context.Context, resources []*T) error
}
