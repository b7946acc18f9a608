package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Record(ctx context.Context, req RecordRequest) ([]*TSRecord, error)
	Get(ctx context.Context, siteID int64, ts time.Time) (*TSRecord, error)
	ListBySite(ctx context.Context, req ListRequest) ([]*TSRecord, error)
}

type Sample struct {
	Timestamp      time.Time `json:"timestamp"`
	Production     float64   `json:"production"`
	UnitProduction string    `json:"unit_production"`
	Cashflow       float64   `json:"cashflow"`
	UnitCashflow   string    `json:"unit_cashflow"`
}

// RecordRequest writes all samples for one site atomically.
type RecordRequest struct {
	SiteID  int64    `json:"site_id"`
	Samples []Sample `json:"samples"`
}

type ListRequest struct {
	SiteID int64     `json:"site_id"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Limit  int       `json:"limit"`
}

var (
	ErrInvalidSite      = errors.New("invalid_site")
	ErrInvalidTimestamp = errors.New("invalid_timestamp")
	ErrEmptyBatch       = errors.New("empty_batch")
	ErrDuplicateSample  = errors.New("duplicate_sample")
	ErrInvalidRange     = errors.New("invalid_range")
	ErrNotFound         = errors.New("not_found")
)
