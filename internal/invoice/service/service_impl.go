package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/smallbiznis/sitebill/internal/config"
	invoicedomain "github.com/smallbiznis/sitebill/internal/invoice/domain"
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
	Repo    invoicedomain.Repository
	Units   *config.UnitsConfigHolder
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    invoicedomain.Repository
	units   *config.UnitsConfigHolder
	metrics *obsmetrics.Metrics
}

func New(p Params) invoicedomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("invoice.service"),
		repo:    p.Repo,
		units:   p.Units,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateRequest) (*invoicedomain.Invoice, error) {
	publicationID := strings.TrimSpace(req.PublicationID)
	if publicationID == "" {
		return nil, invoicedomain.ErrInvalidPublicationID
	}
	if req.ContractID <= 0 {
		return nil, invoicedomain.ErrInvalidContract
	}

	status := req.Status
	if status == "" {
		status = invoicedomain.InvoiceStatusDraft
	}
	if !status.Valid() {
		return nil, invoicedomain.ErrInvalidStatus
	}

	if req.StartDate.IsZero() || req.EndDate.IsZero() || dateOf(req.EndDate).Before(dateOf(req.StartDate)) {
		return nil, invoicedomain.ErrInvalidPeriod
	}
	if !validAmount(req.Amount) {
		return nil, invoicedomain.ErrInvalidAmount
	}

	unit := strings.TrimSpace(req.AmountUnit)
	if unit == "" {
		unit = s.units.Get().AmountUnit
	}

	invoice := &invoicedomain.Invoice{
		PublicationID: publicationID,
		Amount:        req.Amount,
		AmountUnit:    unit,
		Status:        status,
		ContractID:    req.ContractID,
		StartDate:     datatypes.Date(dateOf(req.StartDate)),
		EndDate:       datatypes.Date(dateOf(req.EndDate)),
		Version:       1,
	}

	if err := s.repo.Insert(ctx, s.db, invoice); err != nil {
		s.constraintFailed(ctx, "create", err)
		return nil, err
	}

	s.log.Info("invoice created",
		zap.Int64("invoice_id", invoice.ID),
		zap.Stringer("invoice", invoice),
		zap.Int64("contract_id", invoice.ContractID),
		zap.String("status", string(invoice.Status)),
	)
	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*invoicedomain.Invoice, error) {
	if id <= 0 {
		return nil, invoicedomain.ErrInvalidID
	}

	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) GetByPublicationID(ctx context.Context, publicationID string) (*invoicedomain.Invoice, error) {
	publicationID = strings.TrimSpace(publicationID)
	if publicationID == "" {
		return nil, invoicedomain.ErrInvalidPublicationID
	}

	invoice, err := s.repo.FindByPublicationID(ctx, s.db, publicationID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) ListByContract(ctx context.Context, contractID int64) ([]*invoicedomain.Invoice, error) {
	if contractID <= 0 {
		return nil, invoicedomain.ErrInvalidContract
	}
	return s.repo.ListByContract(ctx, s.db, contractID)
}

// Transition validates the status change against the invoice lifecycle and
// writes it with an optimistic version check.
func (s *Service) Transition(ctx context.Context, req invoicedomain.TransitionRequest) (*invoicedomain.Invoice, error) {
	if req.ID <= 0 {
		return nil, invoicedomain.ErrInvalidID
	}
	if !req.Status.Valid() {
		return nil, invoicedomain.ErrInvalidStatus
	}
	if req.Amount != nil && !validAmount(*req.Amount) {
		return nil, invoicedomain.ErrInvalidAmount
	}

	current, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.ExpectedVersion != 0 && req.ExpectedVersion != current.Version {
		s.metrics.RecordInvoiceConflict(ctx)
		return nil, invoicedomain.ErrConcurrentModification
	}

	amount := current.Amount
	amountChanged := false
	if req.Amount != nil && *req.Amount != current.Amount {
		amount = *req.Amount
		amountChanged = true
	}

	if err := invoicedomain.ValidateTransition(current.Status, req.Status, amountChanged); err != nil {
		s.log.Warn("invoice transition rejected",
			zap.Stringer("invoice", current),
			zap.String("to", string(req.Status)),
			zap.Strings("allowed", statusNames(invoicedomain.NextStatuses(current.Status))),
			zap.Bool("amount_changed", amountChanged),
			zap.Error(err),
		)
		return nil, err
	}

	if current.Status == req.Status && !amountChanged {
		return current, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, s.db, current.ID, current.Version, req.Status, amount)
	if err != nil {
		return nil, err
	}
	if !updated {
		s.metrics.RecordInvoiceConflict(ctx)
		s.log.Warn("invoice transition lost to concurrent update",
			zap.Int64("invoice_id", current.ID),
			zap.Int64("version", current.Version),
		)
		return nil, invoicedomain.ErrConcurrentModification
	}

	s.metrics.RecordInvoiceTransition(ctx, string(current.Status), string(req.Status))
	s.log.Info("invoice transitioned",
		zap.Int64("invoice_id", current.ID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(req.Status)),
		zap.Float64("amount", amount),
		zap.Bool("terminal", req.Status.Terminal()),
	)

	current.Status = req.Status
	current.Amount = amount
	current.Version++
	return current, nil
}

func (s *Service) constraintFailed(ctx context.Context, op string, err error) {
	reason := db.ViolationReason(err)
	if reason == "" {
		return
	}
	s.metrics.RecordConstraintViolation(ctx, "invoice", reason)
	s.log.Warn("invoice write rejected", zap.String("op", op), zap.String("reason", reason), zap.Error(err))
}

// validAmount rejects NaN and infinities, which no column can store.
func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func statusNames(statuses []invoicedomain.InvoiceStatus) []string {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return names
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
