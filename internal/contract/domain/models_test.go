package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoicingFrequencyMonths(t *testing.T) {
	assert.Equal(t, 1, InvoicingFrequencyMonthly.Months())
	assert.Equal(t, 3, InvoicingFrequencyQuarterly.Months())
	assert.Equal(t, 6, InvoicingFrequencyBiAnnually.Months())
	assert.Equal(t, 12, InvoicingFrequencyAnnually.Months())
	assert.Zero(t, InvoicingFrequency("Weekly").Months())
}

func TestInvoicingFrequencyScan(t *testing.T) {
	var f InvoicingFrequency
	require.NoError(t, f.Scan("Bi-annually"))
	assert.Equal(t, InvoicingFrequencyBiAnnually, f)

	// Stored names are case sensitive.
	assert.True(t, errors.Is(f.Scan("monthly"), ErrInvalidFrequency))
	assert.True(t, errors.Is(f.Scan(nil), ErrInvalidFrequency))

	_, err := InvoicingFrequency("").Value()
	assert.True(t, errors.Is(err, ErrInvalidFrequency))
}

func TestContractString(t *testing.T) {
	assert.Equal(t, "PO-2024-17", (&Contract{PurchaseOrder: "PO-2024-17"}).String())

	var missing *Contract
	assert.Equal(t, "<nil>", missing.String())
}
