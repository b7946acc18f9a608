package repository

import (
	"context"
	"time"

	timeseriesdomain "github.com/smallbiznis/sitebill/internal/timeseries/domain"
	"github.com/smallbiznis/sitebill/pkg/db/option"
	"github.com/smallbiznis/sitebill/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// timestampColumn is quoted by GORM; "timestamp" is a keyword in every dialect.
var timestampColumn = clause.Column{Name: "timestamp"}

type repo struct{}

func Provide() timeseriesdomain.Repository {
	return &repo{}
}

func store(db *gorm.DB) repository.Repository[timeseriesdomain.TSRecord] {
	return repository.ProvideStore[timeseriesdomain.TSRecord](db)
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, records []*timeseriesdomain.TSRecord) error {
	return store(db).BatchCreate(ctx, records)
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, siteID int64, ts time.Time) (*timeseriesdomain.TSRecord, error) {
	return store(db).FindOne(ctx, &timeseriesdomain.TSRecord{SiteID: siteID},
		option.Where("? = ?", timestampColumn, ts),
	)
}

func (r *repo) ListBySite(ctx context.Context, db *gorm.DB, siteID int64, from, to time.Time, limit int) ([]*timeseriesdomain.TSRecord, error) {
	opts := []option.QueryOption{}
	if !from.IsZero() {
		opts = append(opts, option.Where("? >= ?", timestampColumn, from))
	}
	if !to.IsZero() {
		opts = append(opts, option.Where("? < ?", timestampColumn, to))
	}
	opts = append(opts, option.OrderByColumn("timestamp", false), option.Limit(limit))

	return store(db).Find(ctx, &timeseriesdomain.TSRecord{SiteID: siteID}, opts...)
}
