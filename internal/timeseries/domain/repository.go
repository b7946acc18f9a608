package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	InsertBatch(ctx context.Context, db *gorm.DB, records []*TSRecord) error
	Find(ctx context.Context, db *gorm.DB, siteID int64, ts time.Time) (*TSRecord, error)
	// ListBySite returns records with from <= timestamp < to, oldest first.
	// A zero bound is open.
	ListBySite(ctx context.Context, db *gorm.DB, siteID int64, from, to time.Time, limit int) ([]*TSRecord, error)
}
