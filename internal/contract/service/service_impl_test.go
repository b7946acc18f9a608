package service

import (
	"context"
	"errors"
	"testing"
	"time"

	contractdomain "github.com/smallbiznis/sitebill/internal/contract/domain"
	"github.com/smallbiznis/sitebill/internal/contract/repository"
	"github.com/smallbiznis/sitebill/internal/dbtest"
	"github.com/smallbiznis/sitebill/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupContractService(t *testing.T) (contractdomain.Service, *gorm.DB) {
	t.Helper()

	conn := dbtest.Open(t)
	require.NoError(t, conn.Exec(`INSERT INTO sites (name, capacity, techno) VALUES ('Site A', 120, 'wind_turbine_onshore')`).Error)

	svc := New(Params{
		DB:   conn,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	})
	return svc, conn
}

func yearContract(po string) contractdomain.CreateRequest {
	return contractdomain.CreateRequest{
		PurchaseOrder: po,
		SiteID:        1,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Price:         0.08,
	}
}

func TestCreateAndGet(t *testing.T) {
	svc, _ := setupContractService(t)
	ctx := context.Background()

	contract, err := svc.Create(ctx, yearContract("PO-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), contract.ID)
	assert.Equal(t, contractdomain.InvoicingFrequencyMonthly, contract.InvoicingFrequency)

	byPO, err := svc.GetByPurchaseOrder(ctx, "PO-1")
	require.NoError(t, err)
	assert.Equal(t, contract.ID, byPO.ID)
	assert.Equal(t, 0.08, byPO.Price)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Time(byPO.StartDate).UTC())

	_, err = svc.GetByID(ctx, 7)
	assert.True(t, errors.Is(err, contractdomain.ErrNotFound))
}

func TestCreateValidation(t *testing.T) {
	svc, _ := setupContractService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*contractdomain.CreateRequest)
		want   error
	}{
		{"blank purchase order", func(r *contractdomain.CreateRequest) { r.PurchaseOrder = "" }, contractdomain.ErrInvalidPurchaseOrder},
		{"no site", func(r *contractdomain.CreateRequest) { r.SiteID = 0 }, contractdomain.ErrInvalidSite},
		{"end before start", func(r *contractdomain.CreateRequest) { r.EndDate = r.StartDate.AddDate(0, 0, -1) }, contractdomain.ErrInvalidPeriod},
		{"negative price", func(r *contractdomain.CreateRequest) { r.Price = -1 }, contractdomain.ErrInvalidPrice},
		{"unknown frequency", func(r *contractdomain.CreateRequest) { r.InvoicingFrequency = "Weekly" }, contractdomain.ErrInvalidFrequency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := yearContract("PO-X")
			tt.mutate(&req)
			_, err := svc.Create(ctx, req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestSingleDayContractIsValid(t *testing.T) {
	svc, _ := setupContractService(t)

	req := yearContract("PO-DAY")
	req.EndDate = req.StartDate
	_, err := svc.Create(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreateConstraintViolations(t *testing.T) {
	svc, _ := setupContractService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, yearContract("PO-1"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, yearContract("PO-1"))
	assert.True(t, errors.Is(err, db.ErrUniqueViolation), "got %v", err)

	orphan := yearContract("PO-2")
	orphan.SiteID = 99
	_, err = svc.Create(ctx, orphan)
	assert.True(t, errors.Is(err, db.ErrForeignKeyViolation), "got %v", err)
}

func TestUpdate(t *testing.T) {
	svc, _ := setupContractService(t)
	ctx := context.Background()

	contract, err := svc.Create(ctx, yearContract("PO-1"))
	require.NoError(t, err)

	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	price := 0.1
	quarterly := contractdomain.InvoicingFrequencyQuarterly
	_, err = svc.Update(ctx, contractdomain.UpdateRequest{ID: contract.ID, EndDate: &end, Price: &price, InvoicingFrequency: &quarterly})
	require.NoError(t, err)

	stored, err := svc.GetByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, end, time.Time(stored.EndDate).UTC())
	assert.Equal(t, price, stored.Price)
	assert.Equal(t, quarterly, stored.InvoicingFrequency)

	early := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.Update(ctx, contractdomain.UpdateRequest{ID: contract.ID, EndDate: &early})
	assert.True(t, errors.Is(err, contractdomain.ErrInvalidPeriod))

	_, err = svc.Update(ctx, contractdomain.UpdateRequest{ID: 99, Price: &price})
	assert.True(t, errors.Is(err, contractdomain.ErrNotFound))
}

func TestDeleteRestrictedByInvoices(t *testing.T) {
	svc, conn := setupContractService(t)
	ctx := context.Background()

	contract, err := svc.Create(ctx, yearContract("PO-1"))
	require.NoError(t, err)
	require.NoError(t, conn.Exec(`INSERT INTO invoices (publication_id, amount, amount_unit, status, contract_id, start_date, end_date)
		VALUES ('INV-1', 10, 'EUR', 'draft', ?, '2024-01-01', '2024-01-31')`, contract.ID).Error)

	withInvoices, err := svc.GetWithInvoices(ctx, contract.ID)
	require.NoError(t, err)
	require.Len(t, withInvoices.Invoices, 1)
	assert.Equal(t, "INV-1", withInvoices.Invoices[0].PublicationID)

	err = svc.Delete(ctx, contract.ID)
	assert.True(t, errors.Is(err, db.ErrForeignKeyViolation), "got %v", err)

	require.NoError(t, conn.Exec(`DELETE FROM invoices`).Error)
	require.NoError(t, svc.Delete(ctx, contract.ID))
	assert.True(t, errors.Is(svc.Delete(ctx, contract.ID), contractdomain.ErrNotFound))
}

func TestListBySite(t *testing.T) {
	svc, _ := setupContractService(t)
	ctx := context.Background()

	later := yearContract("PO-2025")
	later.StartDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	later.EndDate = time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(ctx, later)
	require.NoError(t, err)
	_, err = svc.Create(ctx, yearContract("PO-2024"))
	require.NoError(t, err)

	list, err := svc.ListBySite(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "PO-2024", list[0].PurchaseOrder)
	assert.Equal(t, "PO-2025", list[1].PurchaseOrder)
}
