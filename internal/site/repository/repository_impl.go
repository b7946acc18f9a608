package repository

import (
	"context"

	sitedomain "github.com/smallbiznis/sitebill/internal/site/domain"
	"github.com/smallbiznis/sitebill/pkg/db/option"
	"github.com/smallbiznis/sitebill/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() sitedomain.Repository {
	return &repo{}
}

func store(db *gorm.DB) repository.Repository[sitedomain.Site] {
	return repository.ProvideStore[sitedomain.Site](db)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, site *sitedomain.Site) error {
	return store(db).Create(ctx, site)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*sitedomain.Site, error) {
	return store(db).FindByID(ctx, id)
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*sitedomain.Site, error) {
	return store(db).FindOne(ctx, &sitedomain.Site{Name: name})
}

func (r *repo) FindWithContracts(ctx context.Context, db *gorm.DB, id int64) (*sitedomain.Site, error) {
	return store(db).FindByID(ctx, id, option.Preload("Contracts", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("start_date ASC").Order("id ASC")
	}))
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter sitedomain.ListFilter) ([]*sitedomain.Site, error) {
	opts := []option.QueryOption{
		option.OrderByColumn("id", false),
		option.Limit(filter.Limit),
		option.Offset(filter.Offset),
	}
	if filter.Family != "" {
		var technos []sitedomain.Techno
		for _, t := range sitedomain.Technos {
			if t.Family() == filter.Family {
				technos = append(technos, t)
			}
		}
		opts = append(opts, option.Where("techno IN ?", technos))
	}

	return store(db).Find(ctx, &sitedomain.Site{Techno: filter.Techno}, opts...)
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id int64, fields map[string]any) (int64, error) {
	return store(db).Update(ctx, id, fields)
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	return store(db).Delete(ctx, id)
}
