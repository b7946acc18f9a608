package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, site *Site) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Site, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Site, error)
	FindWithContracts(ctx context.Context, db *gorm.DB, id int64) (*Site, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Site, error)
	Update(ctx context.Context, db *gorm.DB, id int64, fields map[string]any) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error)
}
