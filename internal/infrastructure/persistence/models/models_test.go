package models

import (
	"testing"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/document"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionModel_OrderFlattening(t *testing.T) {
	owner := uuid.New()
	txn, err := finance.NewTransaction(owner, finance.NewTransactionInput{
		TransactionDetails: finance.TransactionDetails{Name: "Cake order"},
		BusinessID:         uuid.New(),
		TransactionNumber:  "TXN-2026-00001",
		Type:               valueobject.TransactionTypeIncome,
		Amount:             decimal.NewFromInt(80),
		Currency:           valueobject.DefaultCurrency,
		Order:              &finance.Order{DeliveryMethod: finance.DeliveryShipping, TrackingNumber: "1Z999"},
	})
	require.NoError(t, err)

	m := TransactionModelFromDomain(txn)
	require.NotNil(t, m.OrderStatus)
	assert.Equal(t, "pending", *m.OrderStatus)
	assert.Equal(t, "shipping", *m.DeliveryMethod)
	assert.NotNil(t, m.LineItems)

	back := m.ToDomain()
	require.NotNil(t, back.Order)
	assert.Equal(t, finance.OrderStatusPending, back.Order.Status)
	assert.Equal(t, finance.FulfillmentInHouse, back.Order.FulfillmentType)
	assert.Equal(t, "1Z999", back.Order.TrackingNumber)
	assert.Equal(t, owner, back.OwnerID)
	assert.Equal(t, txn.Version, back.Version)
}

func TestTransactionModel_NoOrder(t *testing.T) {
	m := &TransactionModel{Status: "unpaid"}
	txn := m.ToDomain()
	assert.Nil(t, txn.Order)
	assert.NotNil(t, txn.Payments)
}

func TestQuotationModel_KeepsDerivedTotals(t *testing.T) {
	q, err := document.NewQuotation(uuid.New(), uuid.New(), "QUO-2026-00001", document.QuotationTerms{
		ClientID: uuid.New(),
		Date:     time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		Items: document.LineItems{
			{Name: "Design", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50)},
		},
		TaxRate: decimal.NewFromInt(15),
	})
	require.NoError(t, err)

	m := QuotationModelFromDomain(q)
	assert.True(t, m.Total.Equal(decimal.NewFromInt(115)))

	back := m.ToDomain()
	assert.Equal(t, q.ExpiryDate, back.ExpiryDate)
	assert.Len(t, back.Items, 1)
	assert.Equal(t, document.QuotationStatusDraft, back.Status)
}
