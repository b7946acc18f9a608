package service

import (
	"context"
	"math"
	"strings"

	obsmetrics "github.com/smallbiznis/sitebill/internal/observability/metrics"
	sitedomain "github.com/smallbiznis/sitebill/internal/site/domain"
	"github.com/smallbiznis/sitebill/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxNameLength = 100

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    sitedomain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    sitedomain.Repository
	metrics *obsmetrics.Metrics
}

func New(p Params) sitedomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("site.service"),
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req sitedomain.CreateRequest) (*sitedomain.Site, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len([]rune(name)) > maxNameLength {
		return nil, sitedomain.ErrInvalidName
	}
	if !validCapacity(req.Capacity) {
		return nil, sitedomain.ErrInvalidCapacity
	}
	if !req.Techno.Valid() {
		return nil, sitedomain.ErrInvalidTechno
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	site := &sitedomain.Site{
		Name:      name,
		Capacity:  req.Capacity,
		Techno:    req.Techno,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}

	if err := s.repo.Insert(ctx, s.db, site); err != nil {
		s.constraintFailed(ctx, "create", err)
		return nil, err
	}

	s.log.Info("site created",
		zap.Int64("site_id", site.ID),
		zap.Stringer("site", site),
		zap.String("techno", string(site.Techno)),
	)
	return site, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*sitedomain.Site, error) {
	if id <= 0 {
		return nil, sitedomain.ErrInvalidID
	}
	return found(s.repo.FindByID(ctx, s.db, id))
}

func (s *Service) GetByName(ctx context.Context, name string) (*sitedomain.Site, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, sitedomain.ErrInvalidName
	}
	return found(s.repo.FindByName(ctx, s.db, name))
}

func (s *Service) GetWithContracts(ctx context.Context, id int64) (*sitedomain.Site, error) {
	if id <= 0 {
		return nil, sitedomain.ErrInvalidID
	}
	return found(s.repo.FindWithContracts(ctx, s.db, id))
}

func (s *Service) List(ctx context.Context, filter sitedomain.ListFilter) ([]*sitedomain.Site, error) {
	if filter.Techno != "" && !filter.Techno.Valid() {
		return nil, sitedomain.ErrInvalidTechno
	}
	switch filter.Family {
	case "", sitedomain.FamilyWind, sitedomain.FamilySolar, sitedomain.FamilyHydro, sitedomain.FamilyCogeneration:
	default:
		return nil, sitedomain.ErrInvalidFamily
	}
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) Update(ctx context.Context, req sitedomain.UpdateRequest) (*sitedomain.Site, error) {
	if req.ID <= 0 {
		return nil, sitedomain.ErrInvalidID
	}

	var updated *sitedomain.Site
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := found(s.repo.FindByID(ctx, tx, req.ID))
		if err != nil {
			return err
		}

		fields := map[string]any{}
		if req.Capacity != nil {
			if !validCapacity(*req.Capacity) {
				return sitedomain.ErrInvalidCapacity
			}
			fields["capacity"] = *req.Capacity
			current.Capacity = *req.Capacity
		}
		if req.Techno != nil {
			if !req.Techno.Valid() {
				return sitedomain.ErrInvalidTechno
			}
			fields["techno"] = *req.Techno
			current.Techno = *req.Techno
		}

		switch {
		case req.ClearCoordinates:
			fields["latitude"] = gorm.Expr("NULL")
			fields["longitude"] = gorm.Expr("NULL")
			current.Latitude, current.Longitude = nil, nil
		case req.Latitude != nil || req.Longitude != nil:
			lat, lon := current.Latitude, current.Longitude
			if req.Latitude != nil {
				lat = req.Latitude
			}
			if req.Longitude != nil {
				lon = req.Longitude
			}
			if err := validateCoordinates(lat, lon); err != nil {
				return err
			}
			if req.Latitude != nil {
				fields["latitude"] = *req.Latitude
			}
			if req.Longitude != nil {
				fields["longitude"] = *req.Longitude
			}
			current.Latitude, current.Longitude = lat, lon
		}

		if len(fields) > 0 {
			if _, err := s.repo.Update(ctx, tx, current.ID, fields); err != nil {
				return err
			}
		}
		updated = current
		return nil
	})
	if err != nil {
		s.constraintFailed(ctx, "update", err)
		return nil, err
	}

	s.log.Info("site updated", zap.Int64("site_id", updated.ID), zap.Stringer("site", updated))
	return updated, nil
}

// Delete removes a site. A site still referenced by contracts or time-series
// records is kept and the call fails with db.ErrForeignKeyViolation.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return sitedomain.ErrInvalidID
	}

	rows, err := s.repo.Delete(ctx, s.db, id)
	if err != nil {
		s.constraintFailed(ctx, "delete", err)
		return err
	}
	if rows == 0 {
		return sitedomain.ErrNotFound
	}

	s.log.Info("site deleted", zap.Int64("site_id", id))
	return nil
}

func (s *Service) constraintFailed(ctx context.Context, op string, err error) {
	reason := db.ViolationReason(err)
	if reason == "" {
		return
	}
	s.metrics.RecordConstraintViolation(ctx, "site", reason)
	s.log.Warn("site write rejected", zap.String("op", op), zap.String("reason", reason), zap.Error(err))
}

func found(site *sitedomain.Site, err error) (*sitedomain.Site, error) {
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, sitedomain.ErrNotFound
	}
	return site, nil
}

func validCapacity(capacity float64) bool {
	return capacity >= 0 && !math.IsNaN(capacity) && !math.IsInf(capacity, 0)
}

func validateCoordinates(lat, lon *float64) error {
	if lat != nil && (math.IsNaN(*lat) || *lat < -90 || *lat > 90) {
		return sitedomain.ErrInvalidLatitude
	}
	if lon != nil && (math.IsNaN(*lon) || *lon < -180 || *lon > 180) {
		return sitedomain.ErrInvalidLongitude
	}
	return nil
}
