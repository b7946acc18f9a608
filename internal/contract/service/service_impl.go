package service

import (
	"context"
	"math"
	"strings"
	"time"

	contractdomain "github.com/smallbiznis/sitebill/internal/contract/domain"
	obsmetrics "github.com/smallbiznis/sitebill/internal/observability/metrics"
	"github.com/smallbiznis/sitebill/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    contractdomain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    contractdomain.Repository
	metrics *obsmetrics.Metrics
}

func New(p Params) contractdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("contract.service"),
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req contractdomain.CreateRequest) (*contractdomain.Contract, error) {
	purchaseOrder := strings.TrimSpace(req.PurchaseOrder)
	if purchaseOrder == "" {
		return nil, contractdomain.ErrInvalidPurchaseOrder
	}
	if req.SiteID <= 0 {
		return nil, contractdomain.ErrInvalidSite
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() || dateOf(req.EndDate).Before(dateOf(req.StartDate)) {
		return nil, contractdomain.ErrInvalidPeriod
	}
	if !validPrice(req.Price) {
		return nil, contractdomain.ErrInvalidPrice
	}

	frequency := req.InvoicingFrequency
	if frequency == "" {
		frequency = contractdomain.InvoicingFrequencyMonthly
	}
	if !frequency.Valid() {
		return nil, contractdomain.ErrInvalidFrequency
	}

	contract := &contractdomain.Contract{
		PurchaseOrder:      purchaseOrder,
		StartDate:          datatypes.Date(dateOf(req.StartDate)),
		EndDate:            datatypes.Date(dateOf(req.EndDate)),
		SiteID:             req.SiteID,
		Price:              req.Price,
		InvoicingFrequency: frequency,
	}

	if err := s.repo.Insert(ctx, s.db, contract); err != nil {
		s.constraintFailed(ctx, "create", err)
		return nil, err
	}

	s.log.Info("contract created",
		zap.Int64("contract_id", contract.ID),
		zap.Stringer("contract", contract),
		zap.Int64("site_id", contract.SiteID),
		zap.Int("period_months", contract.InvoicingFrequency.Months()),
	)
	return contract, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*contractdomain.Contract, error) {
	if id <= 0 {
		return nil, contractdomain.ErrInvalidID
	}
	return found(s.repo.FindByID(ctx, s.db, id))
}

func (s *Service) GetByPurchaseOrder(ctx context.Context, purchaseOrder string) (*contractdomain.Contract, error) {
	purchaseOrder = strings.TrimSpace(purchaseOrder)
	if purchaseOrder == "" {
		return nil, contractdomain.ErrInvalidPurchaseOrder
	}
	return found(s.repo.FindByPurchaseOrder(ctx, s.db, purchaseOrder))
}

func (s *Service) GetWithInvoices(ctx context.Context, id int64) (*contractdomain.Contract, error) {
	if id <= 0 {
		return nil, contractdomain.ErrInvalidID
	}
	return found(s.repo.FindWithInvoices(ctx, s.db, id))
}

func (s *Service) ListBySite(ctx context.Context, siteID int64) ([]*contractdomain.Contract, error) {
	if siteID <= 0 {
		return nil, contractdomain.ErrInvalidSite
	}
	return s.repo.ListBySite(ctx, s.db, siteID)
}

func (s *Service) Update(ctx context.Context, req contractdomain.UpdateRequest) (*contractdomain.Contract, error) {
	if req.ID <= 0 {
		return nil, contractdomain.ErrInvalidID
	}

	var updated *contractdomain.Contract
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := found(s.repo.FindByID(ctx, tx, req.ID))
		if err != nil {
			return err
		}

		fields := map[string]any{}
		if req.EndDate != nil {
			end := dateOf(*req.EndDate)
			if req.EndDate.IsZero() || end.Before(time.Time(current.StartDate)) {
				return contractdomain.ErrInvalidPeriod
			}
			fields["end_date"] = datatypes.Date(end)
			current.EndDate = datatypes.Date(end)
		}
		if req.Price != nil {
			if !validPrice(*req.Price) {
				return contractdomain.ErrInvalidPrice
			}
			fields["price"] = *req.Price
			current.Price = *req.Price
		}
		if req.InvoicingFrequency != nil {
			if !req.InvoicingFrequency.Valid() {
				return contractdomain.ErrInvalidFrequency
			}
			fields["invoicing_frequency"] = *req.InvoicingFrequency
			current.InvoicingFrequency = *req.InvoicingFrequency
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

	s.log.Info("contract updated",
		zap.Int64("contract_id", updated.ID),
		zap.Stringer("contract", updated),
		zap.Int("period_months", updated.InvoicingFrequency.Months()),
	)
	return updated, nil
}

// Delete removes a contract. A contract that still has invoices is kept and
// the call fails with db.ErrForeignKeyViolation.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return contractdomain.ErrInvalidID
	}

	rows, err := s.repo.Delete(ctx, s.db, id)
	if err != nil {
		s.constraintFailed(ctx, "delete", err)
		return err
	}
	if rows == 0 {
		return contractdomain.ErrNotFound
	}

	s.log.Info("contract deleted", zap.Int64("contract_id", id))
	return nil
}

func (s *Service) constraintFailed(ctx context.Context, op string, err error) {
	reason := db.ViolationReason(err)
	if reason == "" {
		return
	}
	s.metrics.RecordConstraintViolation(ctx, "contract", reason)
	s.log.Warn("contract write rejected", zap.String("op", op), zap.String("reason", reason), zap.Error(err))
}

func found(contract *contractdomain.Contract, err error) (*contractdomain.Contract, error) {
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, contractdomain.ErrNotFound
	}
	return contract, nil
}

func validPrice(price float64) bool {
	return price >= 0 && !math.IsNaN(price) && !math.IsInf(price, 0)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
