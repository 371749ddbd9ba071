package document

import (
	"errors"
	"testing"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuotation(t *testing.T) *Quotation {
	t.Helper()
	q, err := NewQuotation(uuid.New(), uuid.New(), "QUO-2026-00001", QuotationTerms{
		ClientID: uuid.New(),
		Date:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Items:    LineItems{line("2", "50")},
		TaxRate:  decimal.NewFromInt(15),
	})
	require.NoError(t, err)
	return q
}

func TestNewQuotation(t *testing.T) {
	t.Run("derives totals and defaults", func(t *testing.T) {
		q := newTestQuotation(t)

		assert.Equal(t, QuotationStatusDraft, q.Status)
		assert.Equal(t, "100.00", q.Subtotal.StringFixed(2))
		assert.Equal(t, "115.00", q.Total.StringFixed(2))
		assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), q.ExpiryDate)
		assert.NotEqual(t, uuid.Nil, q.Items[0].ID)
		require.Len(t, q.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeQuotationCreated, q.GetDomainEvents()[0].EventType())
	})

	t.Run("requires a client", func(t *testing.T) {
		_, err := NewQuotation(uuid.New(), uuid.New(), "QUO-1", QuotationTerms{})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects expiry before date", func(t *testing.T) {
		now := time.Now()
		_, err := NewQuotation(uuid.New(), uuid.New(), "QUO-1", QuotationTerms{
			ClientID:   uuid.New(),
			Date:       now,
			ExpiryDate: now.AddDate(0, 0, -1),
		})
		assert.Error(t, err)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := NewQuotation(uuid.New(), uuid.New(), "QUO-1", QuotationTerms{
			ClientID: uuid.New(),
			Items:    LineItems{line("0", "10")},
		})
		assert.Error(t, err)
	})

	t.Run("does not alias caller's items", func(t *testing.T) {
		items := LineItems{line("1", "10")}
		q, err := NewQuotation(uuid.New(), uuid.New(), "QUO-1", QuotationTerms{ClientID: uuid.New(), Items: items})
		require.NoError(t, err)

		items[0].UnitPrice = decimal.NewFromInt(999)
		assert.Equal(t, "10.00", q.Total.StringFixed(2))
	})
}

func TestQuotationRevise(t *testing.T) {
	q := newTestQuotation(t)

	err := q.Revise(QuotationTerms{
		ClientID: q.ClientID,
		Date:     q.Date,
		Items:    LineItems{line("2", "50"), line("1", "20")},
		TaxRate:  decimal.NewFromInt(10),
	})

	require.NoError(t, err)
	assert.Equal(t, "120.00", q.Subtotal.StringFixed(2))
	assert.Equal(t, "132.00", q.Total.StringFixed(2))
	assert.Equal(t, 2, q.Version)

	err = q.Revise(QuotationTerms{ClientID: q.ClientID, TaxRate: decimal.NewFromInt(150)})
	assert.Error(t, err)
	assert.Equal(t, "132.00", q.Total.StringFixed(2))
}

func TestQuotationChangeStatus(t *testing.T) {
	q := newTestQuotation(t)
	q.ClearDomainEvents()

	require.NoError(t, q.ChangeStatus(QuotationStatusSent))
	require.NoError(t, q.ChangeStatus(QuotationStatusAccepted))
	assert.True(t, q.IsAccepted())
	assert.Len(t, q.GetDomainEvents(), 2)

	require.NoError(t, q.ChangeStatus(QuotationStatusAccepted))
	assert.Len(t, q.GetDomainEvents(), 2)

	assert.Error(t, q.ChangeStatus("converted"))
}

func TestLineItemsScan(t *testing.T) {
	var items LineItems
	require.NoError(t, items.Scan([]byte(`[{"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","name":"Design","quantity":"2","unit_price":"50"}]`)))
	require.Len(t, items, 1)
	assert.Equal(t, "100.00", items[0].Amount().StringFixed(2))

	require.NoError(t, items.Scan(nil))
	assert.Empty(t, items)

	assert.Error(t, items.Scan(42))

	v, err := LineItems(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}
