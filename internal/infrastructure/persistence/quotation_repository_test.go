package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/document"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuotation(t *testing.T, owner, client uuid.UUID, number string) *document.Quotation {
	t.Helper()
	q, err := document.NewQuotation(owner, uuid.New(), number, document.QuotationTerms{
		ClientID: client,
		Date:     time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Items: document.LineItems{
			{Name: "Website", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50)},
		},
		TaxRate: decimal.NewFromInt(15),
	})
	require.NoError(t, err)
	return q
}

func TestGormQuotationRepository(t *testing.T) {
	repo := NewGormQuotationRepository(newTestDB(t))
	ctx := context.Background()
	owner, client := uuid.New(), uuid.New()

	q := newTestQuotation(t, owner, client, "QUO-2026-00001")
	require.NoError(t, repo.Create(ctx, q))
	require.NoError(t, repo.Create(ctx, newTestQuotation(t, owner, uuid.New(), "QUO-2026-00002")))

	t.Run("round trip keeps totals and items", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, owner, q.ID)
		require.NoError(t, err)
		assert.True(t, loaded.Subtotal.Equal(decimal.NewFromInt(100)))
		assert.True(t, loaded.Total.Equal(decimal.NewFromInt(115)))
		require.Len(t, loaded.Items, 1)
		assert.Equal(t, q.Items[0].ID, loaded.Items[0].ID)
	})

	t.Run("status change with version check", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, owner, q.ID)
		require.NoError(t, err)
		stale, err := repo.FindByID(ctx, owner, q.ID)
		require.NoError(t, err)

		require.NoError(t, loaded.ChangeStatus(document.QuotationStatusAccepted))
		require.NoError(t, repo.Update(ctx, loaded))

		require.NoError(t, stale.ChangeStatus(document.QuotationStatusDeclined))
		assert.ErrorIs(t, repo.Update(ctx, stale), shared.ErrConcurrencyConflict)
	})

	t.Run("filters", func(t *testing.T) {
		list, total, err := repo.FindAll(ctx, owner, document.QuotationFilter{Status: document.QuotationStatusAccepted})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, list, 1)

		list, total, err = repo.FindAll(ctx, owner, document.QuotationFilter{ClientID: &client})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		_, total, err = repo.FindAll(ctx, owner, document.QuotationFilter{Filter: shared.Filter{Search: "00002"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		_, total, err = repo.FindAll(ctx, uuid.New(), document.QuotationFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("duplicate number", func(t *testing.T) {
		err := repo.Create(ctx, newTestQuotation(t, owner, client, "QUO-2026-00001"))
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, owner, q.ID))
		_, err := repo.FindByID(ctx, owner, q.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
