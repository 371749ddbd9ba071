package finance

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/business"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/document"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/partner"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Test doubles
// =============================================================================

type MockBusinessRepository struct {
	mock.Mock
}

func (m *MockBusinessRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*business.Business, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*business.Business), args.Error(1)
}

func (m *MockBusinessRepository) FindAll(ctx context.Context, ownerID uuid.UUID) ([]business.Business, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]business.Business), args.Error(1)
}

func (m *MockBusinessRepository) Count(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBusinessRepository) Save(ctx context.Context, b *business.Business) error {
	return m.Called(ctx, b).Error(0)
}

// memoryTransactions stores copies of transactions and enforces the
// optimistic version check the database performs
type memoryTransactions struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]finance.Transaction
	lastAsOf  time.Time
	updateErr error
}

func newMemoryTransactions() *memoryTransactions {
	return &memoryTransactions{rows: map[uuid.UUID]finance.Transaction{}}
}

func (r *memoryTransactions) FindByID(_ context.Context, ownerID, id uuid.UUID) (*finance.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.OwnerID != ownerID {
		return nil, shared.NewNotFoundError("Transaction", id)
	}
	row.Payments = append(finance.Payments{}, row.Payments...)
	return &row, nil
}

func (r *memoryTransactions) FindAll(_ context.Context, ownerID uuid.UUID, filter finance.TransactionFilter) ([]finance.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastAsOf = filter.AsOf
	var out []finance.Transaction
	for _, row := range r.rows {
		if row.OwnerID != ownerID {
			continue
		}
		if filter.Status == finance.PaymentStatusOverdue && !row.IsOverdue(filter.AsOf) {
			continue
		}
		out = append(out, row)
	}
	return out, int64(len(out)), nil
}

func (r *memoryTransactions) FindOverdue(_ context.Context, asOf time.Time, _ int) ([]finance.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []finance.Transaction
	for _, row := range r.rows {
		if row.IsOverdue(asOf) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *memoryTransactions) CountByRelatedQuotation(_ context.Context, ownerID, quotationID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, row := range r.rows {
		if row.OwnerID == ownerID && row.RelatedQuotationID != nil && *row.RelatedQuotationID == quotationID {
			n++
		}
	}
	return n, nil
}

func (r *memoryTransactions) Create(_ context.Context, t *finance.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[t.ID]; ok {
		return shared.ErrAlreadyExists
	}
	r.rows[t.ID] = *t
	return nil
}

func (r *memoryTransactions) Update(_ context.Context, t *finance.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	row, ok := r.rows[t.ID]
	if !ok {
		return shared.NewNotFoundError("Transaction", t.ID)
	}
	if row.Version != t.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.rows[t.ID] = *t
	return nil
}

func (r *memoryTransactions) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memoryTransactions) stored(id uuid.UUID) finance.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id]
}

// memoryClients and memoryVendors answer FindByID from a map keyed by id
type memoryClients struct {
	partner.ClientRepository
	rows map[uuid.UUID]*partner.Client
}

func (r *memoryClients) FindByID(_ context.Context, ownerID, id uuid.UUID) (*partner.Client, error) {
	c, ok := r.rows[id]
	if !ok || c.OwnerID != ownerID {
		return nil, shared.NewNotFoundError("Client", id)
	}
	return c, nil
}

type memoryVendors struct {
	partner.VendorRepository
	rows map[uuid.UUID]*partner.Vendor
}

func (r *memoryVendors) FindByID(_ context.Context, ownerID, id uuid.UUID) (*partner.Vendor, error) {
	v, ok := r.rows[id]
	if !ok || v.OwnerID != ownerID {
		return nil, shared.NewNotFoundError("Vendor", id)
	}
	return v, nil
}

type fakeReceipts struct {
	objects map[string][]byte
	deleted []string
	putErr  error
}

func newFakeReceipts() *fakeReceipts {
	return &fakeReceipts{objects: map[string][]byte{}}
}

func (f *fakeReceipts) Put(_ context.Context, key, _ string, body io.Reader) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeReceipts) PresignGet(_ context.Context, key string) (string, time.Time, error) {
	return "https://receipts.test/" + key, time.Date(2026, 3, 1, 12, 15, 0, 0, time.UTC), nil
}

func (f *fakeReceipts) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *capturePublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type fixture struct {
	svc      *TransactionService
	txns     *memoryTransactions
	clients  *memoryClients
	vendors  *memoryVendors
	receipts *fakeReceipts
	pub      *capturePublisher
	owner    uuid.UUID
	biz      *business.Business
	now      time.Time
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	owner := uuid.New()
	terms := 14
	biz, err := business.NewBusiness(owner, business.Profile{
		Name:             "Corner Bakery",
		Currency:         "USD",
		TaxRate:          decimal.NewFromInt(15),
		PaymentTermsDays: &terms,
	})
	require.NoError(t, err)

	businesses := new(MockBusinessRepository)
	businesses.On("FindByID", mock.Anything, owner, biz.ID).Return(biz, nil)
	businesses.On("FindByID", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, shared.NewNotFoundError("Business", uuid.Nil))

	f := &fixture{
		txns:     newMemoryTransactions(),
		clients:  &memoryClients{rows: map[uuid.UUID]*partner.Client{}},
		vendors:  &memoryVendors{rows: map[uuid.UUID]*partner.Vendor{}},
		receipts: newFakeReceipts(),
		pub:      &capturePublisher{},
		owner:    owner,
		biz:      biz,
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewTransactionService(f.txns, businesses, f.clients, f.vendors, cache.NewInMemoryNumberSequence(), cache.NewInMemoryOwnerLocker(), cfg, zap.NewNop())
	f.svc.now = func() time.Time { return f.now }
	f.svc.SetEventPublisher(f.pub)
	f.svc.SetReceiptStorage(f.receipts)
	return f
}

func (f *fixture) create(t *testing.T, amount string, mutate ...func(*CreateTransactionRequest)) *TransactionResponse {
	t.Helper()
	req := CreateTransactionRequest{
		BusinessID: f.biz.ID,
		Type:       "income",
		Name:       "Wedding cake",
		Amount:     decimal.RequireFromString(amount),
	}
	for _, m := range mutate {
		m(&req)
	}
	resp, err := f.svc.Create(context.Background(), f.owner, req)
	require.NoError(t, err)
	return resp
}

func pay(amount string) ApplyPaymentRequest {
	return ApplyPaymentRequest{Amount: decimal.RequireFromString(amount), Method: "cash"}
}

// =============================================================================
// Create
// =============================================================================

func TestTransactionService_Create(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	entry := f.create(t, "40.004")
	assert.True(t, strings.HasPrefix(entry.TransactionNumber, "TXN-"), entry.TransactionNumber)
	assert.Equal(t, "40", entry.Amount.String())
	assert.Equal(t, "USD", entry.Currency)
	assert.Equal(t, "Uncategorized", entry.Category)
	assert.Equal(t, "unpaid", entry.Status)
	assert.Nil(t, entry.DueDate)
	assert.Empty(t, entry.Payments)

	invoice := f.create(t, "115", func(r *CreateTransactionRequest) {
		r.Invoice = true
		r.LineItems = []document.LineItem{{Name: "Cake", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)}}
	})
	assert.True(t, strings.HasPrefix(invoice.TransactionNumber, "INV-"), invoice.TransactionNumber)
	require.NotNil(t, invoice.DueDate)
	assert.Equal(t, f.now.AddDate(0, 0, 14), *invoice.DueDate)
	require.Len(t, invoice.LineItems, 1)
	assert.NotEqual(t, uuid.Nil, invoice.LineItems[0].ID)

	assert.Equal(t, []string{finance.EventTypeTransactionCreated, finance.EventTypeTransactionCreated}, f.pub.types())
}

func TestTransactionService_CreatePaid(t *testing.T) {
	f := newFixture(t, DefaultConfig())

	resp := f.create(t, "25.50", func(r *CreateTransactionRequest) {
		r.Type = "expense"
		r.Paid = true
		r.PaymentMethod = "card"
	})
	assert.Equal(t, "paid", resp.Status)
	require.Len(t, resp.Payments, 1)
	assert.True(t, resp.Payments[0].Amount.Equal(resp.Amount))
	assert.Equal(t, "card", resp.Payments[0].Method)
	assert.True(t, resp.OutstandingAmount.IsZero())
}

func TestTransactionService_CreateValidation(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()
	base := CreateTransactionRequest{BusinessID: f.biz.ID, Type: "income", Name: "Cake", Amount: decimal.NewFromInt(10)}

	tests := []struct {
		name    string
		mutate  func(*CreateTransactionRequest)
		wantErr error
	}{
		{"zero amount", func(r *CreateTransactionRequest) { r.Amount = decimal.Zero }, shared.ErrValidation},
		{"amount rounds to zero", func(r *CreateTransactionRequest) { r.Amount = decimal.RequireFromString("0.004") }, shared.ErrValidation},
		{"blank name", func(r *CreateTransactionRequest) { r.Name = "  " }, shared.ErrValidation},
		{"bad type", func(r *CreateTransactionRequest) { r.Type = "refund" }, shared.ErrValidation},
		{"bad currency", func(r *CreateTransactionRequest) { r.Currency = "ZZZ" }, shared.ErrValidation},
		{"due before date", func(r *CreateTransactionRequest) {
			d := f.now.AddDate(0, 0, -3)
			r.DueDate = &d
		}, shared.ErrValidation},
		{"bad order status", func(r *CreateTransactionRequest) { r.Order = &OrderRequest{Status: "lost"} }, shared.ErrValidation},
		{"unknown business", func(r *CreateTransactionRequest) { r.BusinessID = uuid.New() }, shared.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := f.svc.Create(ctx, f.owner, req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, f.txns.rows)
}

// =============================================================================
// Payments
// =============================================================================

func TestTransactionService_ApplyPayment(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()
	txn := f.create(t, "100")

	resp, err := f.svc.ApplyPayment(ctx, f.owner, txn.ID, pay("40"))
	require.NoError(t, err)
	assert.Equal(t, "partially_paid", resp.Status)
	assert.Equal(t, "60", resp.OutstandingAmount.String())

	_, err = f.svc.ApplyPayment(ctx, f.owner, txn.ID, pay("60.01"))
	require.ErrorIs(t, err, shared.ErrInvalidPayment)
	stored := f.txns.stored(txn.ID)
	assert.Len(t, stored.Payments, 1)
	assert.Equal(t, finance.PaymentStatusPartiallyPaid, stored.Status)

	resp, err = f.svc.ApplyPayment(ctx, f.owner, txn.ID, pay("60"))
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)
	assert.Len(t, resp.Payments, 2)
	assert.Equal(t, 3, resp.Version)

	assert.Equal(t, []string{
		finance.EventTypeTransactionCreated,
		finance.EventTypePaymentApplied,
		finance.EventTypePaymentApplied,
		finance.EventTypeTransactionPaid,
	}, f.pub.types())
}

func TestTransactionService_ApplyPaymentRejections(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()
	txn := f.create(t, "100")

	tests := []struct {
		name    string
		req     ApplyPaymentRequest
		wantErr error
	}{
		{"zero", pay("0"), shared.ErrInvalidPayment},
		{"negative", pay("-5"), shared.ErrInvalidPayment},
		{"other currency", ApplyPaymentRequest{Amount: decimal.NewFromInt(5), Currency: "EUR"}, shared.ErrInvalidPayment},
		{"unknown currency", ApplyPaymentRequest{Amount: decimal.NewFromInt(5), Currency: "ZZZ"}, shared.ErrInvalidPayment},
		{"bad method", ApplyPaymentRequest{Amount: decimal.NewFromInt(5), Method: "cheque"}, shared.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ApplyPayment(ctx, f.owner, txn.ID, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, f.txns.stored(txn.ID).Payments)

	_, err := f.svc.ApplyPayment(ctx, uuid.New(), txn.ID, pay("5"))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTransactionService_ApplyPaymentWithinTolerance(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	txn := f.create(t, "10")

	resp, err := f.svc.ApplyPayment(context.Background(), f.owner, txn.ID, pay("10.004"))
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)
}

func TestTransactionService_ConcurrentPaymentsNeverOverpay(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	txn := f.create(t, "100")

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.ApplyPayment(context.Background(), f.owner, txn.ID, pay("30")); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	stored := f.txns.stored(txn.ID)
	assert.Equal(t, 3, accepted)
	assert.Len(t, stored.Payments, 3)
	assert.Equal(t, "90", stored.PaidAmount().String())
}

// =============================================================================
// Void, update, delete
// =============================================================================

func TestTransactionService_Void(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	clean := f.create(t, "50")
	resp, err := f.svc.Void(ctx, f.owner, clean.ID)
	require.NoError(t, err)
	assert.Equal(t, "voided", resp.Status)
	assert.True(t, resp.OutstandingAmount.IsZero())

	_, err = f.svc.Void(ctx, f.owner, clean.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = f.svc.ApplyPayment(ctx, f.owner, clean.ID, pay("10"))
	assert.ErrorIs(t, err, shared.ErrInvalidPayment)

	paid := f.create(t, "50")
	_, err = f.svc.ApplyPayment(ctx, f.owner, paid.ID, pay("10"))
	require.NoError(t, err)
	_, err = f.svc.Void(ctx, f.owner, paid.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Equal(t, finance.PaymentStatusPartiallyPaid, f.txns.stored(paid.ID).Status)
}

func TestTransactionService_Update(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()
	txn := f.create(t, "80", func(r *CreateTransactionRequest) { r.Category = "Cakes" })

	name := "Birthday cake"
	amount := decimal.NewFromInt(90)
	resp, err := f.svc.Update(ctx, f.owner, txn.ID, UpdateTransactionRequest{Name: &name, Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "Birthday cake", resp.Name)
	assert.Equal(t, "Cakes", resp.Category)
	assert.Equal(t, "90", resp.Amount.String())

	_, err = f.svc.ApplyPayment(ctx, f.owner, txn.ID, pay("10"))
	require.NoError(t, err)

	changed := decimal.NewFromInt(95)
	_, err = f.svc.Update(ctx, f.owner, txn.ID, UpdateTransactionRequest{Amount: &changed})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	due := f.now.AddDate(0, 0, 7)
	resp, err = f.svc.Update(ctx, f.owner, txn.ID, UpdateTransactionRequest{DueDate: &due})
	require.NoError(t, err)
	require.NotNil(t, resp.DueDate)

	resp, err = f.svc.Update(ctx, f.owner, txn.ID, UpdateTransactionRequest{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, resp.DueDate)
}

func TestTransactionService_Delete(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	free := f.create(t, "10")
	require.NoError(t, f.svc.Delete(ctx, f.owner, free.ID))
	_, err := f.svc.GetByID(ctx, f.owner, free.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	kept := f.create(t, "10")
	_, err = f.svc.ApplyPayment(ctx, f.owner, kept.ID, pay("1"))
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.owner, kept.ID), shared.ErrInvalidState)
}

// =============================================================================
// Orders
// =============================================================================

func strPtr(s string) *string { return &s }

func TestTransactionService_UpdateOrderStrict(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()
	txn := f.create(t, "60", func(r *CreateTransactionRequest) {
		r.Order = &OrderRequest{DeliveryMethod: "shipping"}
	})
	require.NotNil(t, txn.Order)
	assert.Equal(t, "pending", txn.Order.Status)

	_, err := f.svc.UpdateOrder(ctx, f.owner, txn.ID, UpdateOrderRequest{Status: strPtr("completed")})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	for _, next := range []string{"in_progress", "shipped", "completed"} {
		resp, err := f.svc.UpdateOrder(ctx, f.owner, txn.ID, UpdateOrderRequest{Status: strPtr(next)})
		require.NoError(t, err, next)
		assert.Equal(t, next, resp.Order.Status)
	}

	_, err = f.svc.UpdateOrder(ctx, f.owner, txn.ID, UpdateOrderRequest{Status: strPtr("cancelled")})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	resp, err := f.svc.UpdateOrder(ctx, f.owner, txn.ID, UpdateOrderRequest{TrackingNumber: strPtr("1Z999")})
	require.NoError(t, err)
	assert.Equal(t, "1Z999", resp.Order.TrackingNumber)
	assert.Equal(t, "unpaid", resp.Status)

	_, err = f.svc.UpdateOrder(ctx, f.owner, txn.ID, UpdateOrderRequest{})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestTransactionService_UpdateOrderFree(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OrderPolicy = finance.OrderTransitionsFree
	f := newFixture(t, cfg)
	txn := f.create(t, "60")
	assert.Nil(t, txn.Order)

	resp, err := f.svc.UpdateOrder(context.Background(), f.owner, txn.ID, UpdateOrderRequest{Status: strPtr("completed")})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Order.Status)

	resp, err = f.svc.UpdateOrder(context.Background(), f.owner, txn.ID, UpdateOrderRequest{Status: strPtr("pending")})
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Order.Status)
}

// =============================================================================
// Listing
// =============================================================================

func TestTransactionService_Overdue(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	due := f.now.AddDate(0, 0, 5)
	late := f.create(t, "70", func(r *CreateTransactionRequest) { r.DueDate = &due })
	settled := f.create(t, "30", func(r *CreateTransactionRequest) { r.DueDate = &due })
	_, err := f.svc.ApplyPayment(ctx, f.owner, settled.ID, pay("30"))
	require.NoError(t, err)
	f.create(t, "20")

	f.now = f.now.AddDate(0, 0, 6)

	got, err := f.svc.GetByID(ctx, f.owner, late.ID)
	require.NoError(t, err)
	assert.Equal(t, "unpaid", got.Status)
	assert.Equal(t, "overdue", got.DisplayStatus)

	overdue, total, err := f.svc.ListOverdue(ctx, f.owner, TransactionListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)
	assert.Equal(t, f.now, f.txns.lastAsOf)

	all, total, err := f.svc.List(ctx, f.owner, TransactionListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)
}

func TestTransactionService_ListFilterValidation(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	_, _, err := f.svc.List(ctx, f.owner, TransactionListFilter{ClientID: "nope"})
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, _, err = f.svc.List(ctx, f.owner, TransactionListFilter{From: "03/01/2026"})
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, _, err = f.svc.List(ctx, f.owner, TransactionListFilter{Status: "lost"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	filter, err := f.svc.toDomainFilter(TransactionListFilter{From: "2026-03-01", To: "2026-03-31"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *filter.From)
	assert.Equal(t, time.Date(2026, 3, 31, 23, 59, 59, 999999999, time.UTC), *filter.To)
	assert.Equal(t, "date", filter.OrderBy)
}

// =============================================================================
// Receipts
// =============================================================================

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestTransactionService_UploadReceipt(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()
	txn := f.create(t, "12")

	first, err := f.svc.UploadReceipt(ctx, f.owner, txn.ID, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", first.ContentType)
	assert.True(t, strings.HasPrefix(first.Key, "receipts/"+f.owner.String()+"/"+txn.ID.String()+"/"), first.Key)
	assert.True(t, strings.HasSuffix(first.Key, ".png"))
	assert.Contains(t, f.receipts.objects, first.Key)

	pdf := []byte("%PDF-1.7\n1 0 obj\n")
	second, err := f.svc.UploadReceipt(ctx, f.owner, txn.ID, bytes.NewReader(pdf))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", second.ContentType)
	assert.Equal(t, []string{first.Key}, f.receipts.deleted)
	assert.Equal(t, second.Key, f.txns.stored(txn.ID).ReceiptImageKey)

	link, err := f.svc.ReceiptURL(ctx, f.owner, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://receipts.test/"+second.Key, link.URL)

	got, err := f.svc.GetByID(ctx, f.owner, txn.ID)
	require.NoError(t, err)
	assert.True(t, got.HasReceipt)
}

func TestTransactionService_UploadReceiptRejections(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxReceiptSize = 64
	f := newFixture(t, cfg)
	ctx := context.Background()
	txn := f.create(t, "12")

	_, err := f.svc.UploadReceipt(ctx, f.owner, txn.ID, strings.NewReader("plain text is not a receipt"))
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = f.svc.UploadReceipt(ctx, f.owner, txn.ID, bytes.NewReader(nil))
	assert.ErrorIs(t, err, shared.ErrValidation)

	big := append(append([]byte{}, pngHeader...), make([]byte, 100)...)
	_, err = f.svc.UploadReceipt(ctx, f.owner, txn.ID, bytes.NewReader(big))
	assert.ErrorIs(t, err, shared.ErrValidation)

	f.receipts.putErr = errors.New("bucket unavailable")
	_, err = f.svc.UploadReceipt(ctx, f.owner, txn.ID, bytes.NewReader(pngHeader))
	require.Error(t, err)
	assert.Empty(t, f.txns.stored(txn.ID).ReceiptImageKey)

	_, err = f.svc.ReceiptURL(ctx, f.owner, txn.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestTransactionService_UploadReceiptSaveFailure(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()
	txn := f.create(t, "12")

	f.txns.updateErr = shared.ErrConcurrencyConflict
	_, err := f.svc.UploadReceipt(ctx, f.owner, txn.ID, bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	require.Len(t, f.receipts.deleted, 1)
	assert.True(t, strings.HasPrefix(f.receipts.deleted[0], "receipts/"+f.owner.String()+"/"))
	assert.Empty(t, f.receipts.objects)
	assert.Empty(t, f.txns.stored(txn.ID).ReceiptImageKey)
}

func TestTransactionService_ReceiptStorageDisabled(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	f.svc.SetReceiptStorage(nil)
	txn := f.create(t, "12")

	_, err := f.svc.UploadReceipt(context.Background(), f.owner, txn.ID, bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestTransactionService_CounterpartiesAreOwnerScoped(t *testing.T) {
	f := newFixture(t, DefaultConfig())
	ctx := context.Background()

	own, err := partner.NewClient(f.owner, "Acme Co", partner.Contact{})
	require.NoError(t, err)
	f.clients.rows[own.ID] = own
	foreign, err := partner.NewClient(uuid.New(), "Someone Else", partner.Contact{})
	require.NoError(t, err)
	f.clients.rows[foreign.ID] = foreign
	supplier, err := partner.NewVendor(f.owner, "Flour Mill", "Flour", partner.Contact{})
	require.NoError(t, err)
	f.vendors.rows[supplier.ID] = supplier

	base := func() CreateTransactionRequest {
		return CreateTransactionRequest{
			BusinessID: f.biz.ID,
			Type:       "income",
			Name:       "Wedding cake",
			Amount:     decimal.NewFromInt(50),
		}
	}

	t.Run("client of another owner", func(t *testing.T) {
		req := base()
		req.ClientID = &foreign.ID
		_, err := f.svc.Create(ctx, f.owner, req)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown vendor", func(t *testing.T) {
		req := base()
		ghost := uuid.New()
		req.VendorID = &ghost
		_, err := f.svc.Create(ctx, f.owner, req)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	assert.Empty(t, f.txns.rows, "rejected transactions are not stored")

	req := base()
	req.ClientID = &own.ID
	req.VendorID = &supplier.ID
	created, err := f.svc.Create(ctx, f.owner, req)
	require.NoError(t, err)

	t.Run("update to a foreign client", func(t *testing.T) {
		_, err := f.svc.Update(ctx, f.owner, created.ID, UpdateTransactionRequest{ClientID: &foreign.ID})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		stored := f.txns.stored(created.ID)
		require.NotNil(t, stored.ClientID)
		assert.Equal(t, own.ID, *stored.ClientID)
	})

	t.Run("update to an unknown vendor", func(t *testing.T) {
		ghost := uuid.New()
		_, err := f.svc.Update(ctx, f.owner, created.ID, UpdateTransactionRequest{VendorID: &ghost})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
