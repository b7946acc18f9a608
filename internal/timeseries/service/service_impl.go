package service

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/sitebill/internal/config"
	obsmetrics "github.com/smallbiznis/sitebill/internal/observability/metrics"
	timeseriesdomain "github.com/smallbiznis/sitebill/internal/timeseries/domain"
	"github.com/smallbiznis/sitebill/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    timeseriesdomain.Repository
	Units   *config.UnitsConfigHolder
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    timeseriesdomain.Repository
	units   *config.UnitsConfigHolder
	metrics *obsmetrics.Metrics
}

func New(p Params) timeseriesdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("timeseries.service"),
		repo:    p.Repo,
		units:   p.Units,
		metrics: p.Metrics,
	}
}

func (s *Service) Record(ctx context.Context, req timeseriesdomain.RecordRequest) ([]*timeseriesdomain.TSRecord, error) {
	if req.SiteID <= 0 {
		return nil, timeseriesdomain.ErrInvalidSite
	}
	if len(req.Samples) == 0 {
		return nil, timeseriesdomain.ErrEmptyBatch
	}

	units := s.units.Get()
	seen := make(map[int64]struct{}, len(req.Samples))
	records := make([]*timeseriesdomain.TSRecord, 0, len(req.Samples))
	for _, sample := range req.Samples {
		if sample.Timestamp.IsZero() {
			return nil, timeseriesdomain.ErrInvalidTimestamp
		}
		ts := normalize(sample.Timestamp)
		if _, ok := seen[ts.UnixNano()]; ok {
			return nil, timeseriesdomain.ErrDuplicateSample
		}
		seen[ts.UnixNano()] = struct{}{}

		records = append(records, &timeseriesdomain.TSRecord{
			SiteID:         req.SiteID,
			Timestamp:      ts,
			Production:     sample.Production,
			UnitProduction: unitOrDefault(sample.UnitProduction, units.ProductionUnit),
			Cashflow:       sample.Cashflow,
			UnitCashflow:   unitOrDefault(sample.UnitCashflow, units.CashflowUnit),
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.InsertBatch(ctx, tx, records)
	})
	if err != nil {
		if reason := db.ViolationReason(err); reason != "" {
			s.metrics.RecordConstraintViolation(ctx, "timeseries_record", reason)
			s.log.Warn("timeseries batch rejected",
				zap.Int64("site_id", req.SiteID),
				zap.Int("samples", len(records)),
				zap.String("reason", reason),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.metrics.RecordTimeseriesWritten(ctx, len(records))
	s.log.Debug("timeseries recorded", zap.Int64("site_id", req.SiteID), zap.Int("samples", len(records)))
	return records, nil
}

func (s *Service) Get(ctx context.Context, siteID int64, ts time.Time) (*timeseriesdomain.TSRecord, error) {
	if siteID <= 0 {
		return nil, timeseriesdomain.ErrInvalidSite
	}
	if ts.IsZero() {
		return nil, timeseriesdomain.ErrInvalidTimestamp
	}

	record, err := s.repo.Find(ctx, s.db, siteID, normalize(ts))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, timeseriesdomain.ErrNotFound
	}
	return record, nil
}

func (s *Service) ListBySite(ctx context.Context, req timeseriesdomain.ListRequest) ([]*timeseriesdomain.TSRecord, error) {
	if req.SiteID <= 0 {
		return nil, timeseriesdomain.ErrInvalidSite
	}

	from, to := req.From, req.To
	if !from.IsZero() {
		from = normalize(from)
	}
	if !to.IsZero() {
		to = normalize(to)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return nil, timeseriesdomain.ErrInvalidRange
	}

	return s.repo.ListBySite(ctx, s.db, req.SiteID, from, to, req.Limit)
}

// normalize keeps the precision every dialect can store: UTC, whole
// microseconds (TIMESTAMPTZ and DATETIME(6)).
func normalize(ts time.Time) time.Time {
	return ts.UTC().Truncate(time.Microsecond)
}

func unitOrDefault(unit, def string) string {
	if unit = strings.TrimSpace(unit); unit != "" {
		return unit
	}
	return def
}
