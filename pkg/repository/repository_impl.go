package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/sitebill/pkg/db"
	"github.com/smallbiznis/sitebill/pkg/db/option"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (r *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	var result []*T
	stmt := r.buildQuery(ctx, query, opts...)
	err := stmt.Find(&result).Error
	return result, err
}

// FindOne returns nil, nil when no row matches.
func (r *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	var result T
	stmt := r.buildQuery(ctx, query, opts...)
	err := stmt.First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *store[T]) FindByID(ctx context.Context, id int64, opts ...option.QueryOption) (*T, error) {
	var result T
	stmt := r.db.WithContext(ctx)
	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}
	err := stmt.Where("id = ?", id).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *store[T]) Create(ctx context.Context, resource *T) error {
	return db.TranslateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(resource).Error)
}

func (r *store[T]) Update(ctx context.Context, id int64, fields map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, db.TranslateError(res.Error)
}

func (r *store[T]) Delete(ctx context.Context, id int64) (int64, error) {
	var dummy T
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&dummy)
	return res.RowsAffected, db.TranslateError(res.Error)
}

func (r *store[T]) BatchCreate(ctx context.Context, resources []*T) error {
	if len(resources) == 0 {
		return nil
	}

	return db.TranslateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(resources).Error)
}

func (r *store[T]) buildQuery(ctx context.Context, filter *T, opts ...option.QueryOption) *gorm.DB {
	stmt := r.db.WithContext(ctx)
	if filter != nil {
		stmt = stmt.Where(filter)
	}

	for _, opt := range opts {
		stmt = opt.Apply(stmt)
	}

	return stmt
}
