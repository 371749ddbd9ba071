package document

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	financeapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/business"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/document"
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

type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*partner.Client, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Client), args.Error(1)
}

func (m *MockClientRepository) FindByNameKey(ctx context.Context, ownerID uuid.UUID, key string) (*partner.Client, error) {
	args := m.Called(ctx, ownerID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Client), args.Error(1)
}

func (m *MockClientRepository) FindAll(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]partner.Client, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]partner.Client), args.Error(1)
}

func (m *MockClientRepository) Count(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, c *partner.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

type memoryQuotations struct {
	mu   sync.Mutex
	rows map[uuid.UUID]document.Quotation
}

func newMemoryQuotations() *memoryQuotations {
	return &memoryQuotations{rows: map[uuid.UUID]document.Quotation{}}
}

func (r *memoryQuotations) FindByID(_ context.Context, ownerID, id uuid.UUID) (*document.Quotation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.OwnerID != ownerID {
		return nil, shared.NewNotFoundError("Quotation", id)
	}
	row.Items = row.Items.Clone()
	return &row, nil
}

func (r *memoryQuotations) FindAll(_ context.Context, ownerID uuid.UUID, filter document.QuotationFilter) ([]document.Quotation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []document.Quotation
	for _, row := range r.rows {
		if row.OwnerID != ownerID {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.ClientID != nil && row.ClientID != *filter.ClientID {
			continue
		}
		out = append(out, row)
	}
	return out, int64(len(out)), nil
}

func (r *memoryQuotations) Create(_ context.Context, q *document.Quotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[q.ID] = *q
	return nil
}

func (r *memoryQuotations) Update(_ context.Context, q *document.Quotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[q.ID]
	if !ok {
		return shared.NewNotFoundError("Quotation", q.ID)
	}
	if row.Version != q.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.rows[q.ID] = *q
	return nil
}

func (r *memoryQuotations) Delete(_ context.Context, _, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

// fakeLedger records the invoices the service asks for and counts them
// per quotation the way the transaction repository does
type fakeLedger struct {
	mu       sync.Mutex
	requests []financeapp.CreateTransactionRequest
	err      error
}

func (l *fakeLedger) Create(_ context.Context, ownerID uuid.UUID, req financeapp.CreateTransactionRequest) (*financeapp.TransactionResponse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.requests = append(l.requests, req)
	return &financeapp.TransactionResponse{
		ID:                 uuid.New(),
		BusinessID:         req.BusinessID,
		Type:               req.Type,
		Name:               req.Name,
		Amount:             req.Amount,
		Category:           req.Category,
		ClientID:           req.ClientID,
		RelatedQuotationID: req.RelatedQuotationID,
		Status:             "unpaid",
		LineItems:          req.LineItems,
	}, nil
}

func (l *fakeLedger) CountByRelatedQuotation(_ context.Context, _, quotationID uuid.UUID) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for _, req := range l.requests {
		if req.RelatedQuotationID != nil && *req.RelatedQuotationID == quotationID {
			n++
		}
	}
	return n, nil
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
	svc        *QuotationService
	quotations *memoryQuotations
	ledger     *fakeLedger
	pub        *capturePublisher
	owner      uuid.UUID
	biz        *business.Business
	client     *partner.Client
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	owner := uuid.New()
	biz, err := business.NewBusiness(owner, business.Profile{
		Name:     "Studio North",
		Currency: "USD",
		TaxRate:  decimal.NewFromInt(15),
	})
	require.NoError(t, err)
	client, err := partner.NewClient(owner, "Acme Co", partner.Contact{})
	require.NoError(t, err)

	businesses := new(MockBusinessRepository)
	businesses.On("FindByID", mock.Anything, owner, biz.ID).Return(biz, nil)
	businesses.On("FindByID", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, shared.NewNotFoundError("Business", uuid.Nil))
	clients := new(MockClientRepository)
	clients.On("FindByID", mock.Anything, owner, client.ID).Return(client, nil)
	clients.On("FindByID", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, shared.NewNotFoundError("Client", uuid.Nil))

	f := &fixture{
		quotations: newMemoryQuotations(),
		ledger:     &fakeLedger{},
		pub:        &capturePublisher{},
		owner:      owner,
		biz:        biz,
		client:     client,
		now:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewQuotationService(f.quotations, businesses, clients,
		cache.NewInMemoryNumberSequence(), cache.NewInMemoryOwnerLocker(),
		f.ledger, f.ledger, "", zap.NewNop())
	f.svc.now = func() time.Time { return f.now }
	f.svc.SetEventPublisher(f.pub)
	return f
}

func line(name, qty, price string) LineItemRequest {
	return LineItemRequest{
		Name:      name,
		Quantity:  decimal.RequireFromString(qty),
		UnitPrice: decimal.RequireFromString(price),
	}
}

func (f *fixture) create(t *testing.T, items ...LineItemRequest) *QuotationResponse {
	t.Helper()
	if len(items) == 0 {
		items = []LineItemRequest{line("Logo design", "2", "50")}
	}
	resp, err := f.svc.Create(context.Background(), f.owner, CreateQuotationRequest{
		BusinessID: f.biz.ID,
		ClientID:   f.client.ID,
		Items:      items,
	})
	require.NoError(t, err)
	return resp
}

// =============================================================================
// Tests
// =============================================================================

func TestQuotationService_Create(t *testing.T) {
	f := newFixture(t)

	q := f.create(t)

	assert.True(t, strings.HasPrefix(q.QuotationNumber, "QUO-"), q.QuotationNumber)
	assert.True(t, strings.HasSuffix(q.QuotationNumber, "-00001"), q.QuotationNumber)
	assert.Equal(t, "draft", q.Status)
	assert.True(t, decimal.NewFromInt(100).Equal(q.Subtotal))
	assert.True(t, decimal.NewFromInt(15).Equal(q.TaxRate), "tax rate defaults to the business rate")
	assert.True(t, decimal.NewFromInt(15).Equal(q.Tax))
	assert.True(t, decimal.NewFromInt(115).Equal(q.Total))
	assert.Equal(t, f.now.AddDate(0, 0, 30), q.ExpiryDate)
	assert.False(t, q.Expired)
	assert.Equal(t, []string{document.EventTypeQuotationCreated}, f.pub.types())

	second := f.create(t)
	assert.True(t, strings.HasSuffix(second.QuotationNumber, "-00002"), second.QuotationNumber)
}

func TestQuotationService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	negative := decimal.NewFromInt(-1)

	tests := []struct {
		name string
		req  CreateQuotationRequest
		code string
	}{
		{
			name: "unknown business",
			req:  CreateQuotationRequest{BusinessID: uuid.New(), ClientID: f.client.ID, Items: []LineItemRequest{line("a", "1", "1")}},
			code: shared.CodeNotFound,
		},
		{
			name: "unknown client",
			req:  CreateQuotationRequest{BusinessID: f.biz.ID, ClientID: uuid.New(), Items: []LineItemRequest{line("a", "1", "1")}},
			code: shared.CodeNotFound,
		},
		{
			name: "missing client",
			req:  CreateQuotationRequest{BusinessID: f.biz.ID, Items: []LineItemRequest{line("a", "1", "1")}},
			code: shared.CodeValidation,
		},
		{
			name: "zero quantity",
			req:  CreateQuotationRequest{BusinessID: f.biz.ID, ClientID: f.client.ID, Items: []LineItemRequest{line("a", "0", "1")}},
			code: shared.CodeValidation,
		},
		{
			name: "negative tax",
			req:  CreateQuotationRequest{BusinessID: f.biz.ID, ClientID: f.client.ID, Items: []LineItemRequest{line("a", "1", "1")}, TaxRate: &negative},
			code: shared.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), f.owner, tt.req)
			require.Error(t, err)
			var domainErr *shared.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, tt.code, domainErr.Code)
		})
	}
	assert.Empty(t, f.quotations.rows)
}

func TestQuotationService_UpdateRecomputesTotals(t *testing.T) {
	f := newFixture(t)
	q := f.create(t)

	zero := decimal.Zero
	resp, err := f.svc.Update(context.Background(), f.owner, q.ID, UpdateQuotationRequest{
		Items:   []LineItemRequest{line("Logo design", "3", "50"), line("Business cards", "1", "25.5")},
		TaxRate: &zero,
	})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("175.5").Equal(resp.Subtotal))
	assert.True(t, decimal.RequireFromString("175.5").Equal(resp.Total))
	assert.Equal(t, q.Version+1, resp.Version)
	assert.Equal(t, q.QuotationNumber, resp.QuotationNumber)
}

func TestQuotationService_ChangeStatus(t *testing.T) {
	f := newFixture(t)
	q := f.create(t)
	ctx := context.Background()

	resp, err := f.svc.ChangeStatus(ctx, f.owner, q.ID, ChangeStatusRequest{Status: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, "accepted", resp.Status)

	again, err := f.svc.ChangeStatus(ctx, f.owner, q.ID, ChangeStatusRequest{Status: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, resp.Version, again.Version, "same status is a no-op")

	_, err = f.svc.ChangeStatus(ctx, f.owner, q.ID, ChangeStatusRequest{Status: "archived"})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = f.svc.ChangeStatus(ctx, f.owner, uuid.New(), ChangeStatusRequest{Status: "sent"})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestQuotationService_ConvertAccepted(t *testing.T) {
	f := newFixture(t)
	q := f.create(t)
	ctx := context.Background()
	_, err := f.svc.ChangeStatus(ctx, f.owner, q.ID, ChangeStatusRequest{Status: "accepted"})
	require.NoError(t, err)

	resp, err := f.svc.ConvertToTransaction(ctx, f.owner, q.ID)
	require.NoError(t, err)

	assert.True(t, resp.WasAccepted)
	assert.Zero(t, resp.PriorConversions)
	assert.Empty(t, resp.Warning)
	assert.True(t, decimal.NewFromInt(115).Equal(resp.Transaction.Amount))
	require.NotNil(t, resp.Transaction.RelatedQuotationID)
	assert.Equal(t, q.ID, *resp.Transaction.RelatedQuotationID)

	require.Len(t, f.ledger.requests, 1)
	req := f.ledger.requests[0]
	assert.Equal(t, "income", req.Type)
	assert.Equal(t, "Invoice for "+q.QuotationNumber, req.Name)
	assert.Equal(t, "Sales", req.Category)
	assert.Equal(t, "service", req.Nature)
	assert.True(t, req.Invoice)
	assert.Equal(t, f.client.ID, *req.ClientID)
	assert.Len(t, req.LineItems, 1)

	stored, err := f.quotations.FindByID(ctx, f.owner, q.ID)
	require.NoError(t, err)
	assert.Equal(t, document.QuotationStatusAccepted, stored.Status, "conversion leaves the quotation as it was")
	assert.Contains(t, f.pub.types(), document.EventTypeQuotationConverted)
}

func TestQuotationService_ConvertWarnsAndAllowsRepeats(t *testing.T) {
	f := newFixture(t)
	q := f.create(t)
	ctx := context.Background()

	first, err := f.svc.ConvertToTransaction(ctx, f.owner, q.ID)
	require.NoError(t, err)
	assert.False(t, first.WasAccepted)
	assert.Contains(t, first.Warning, "draft")

	second, err := f.svc.ConvertToTransaction(ctx, f.owner, q.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.PriorConversions)
	assert.Contains(t, second.Warning, "already converted 1 time")
	assert.NotEqual(t, first.Transaction.ID, second.Transaction.ID)
	assert.Len(t, f.ledger.requests, 2)
}

func TestQuotationService_ConvertFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ConvertToTransaction(ctx, f.owner, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	free := f.create(t, line("Consultation", "1", "0"))
	_, err = f.svc.ConvertToTransaction(ctx, f.owner, free.ID)
	assert.True(t, errors.Is(err, shared.ErrValidation))

	q := f.create(t)
	f.ledger.err = errors.New("database unavailable")
	_, err = f.svc.ConvertToTransaction(ctx, f.owner, q.ID)
	require.Error(t, err)
	assert.NotContains(t, f.pub.types(), document.EventTypeQuotationConverted)
}

func TestQuotationService_CreateInvoice(t *testing.T) {
	f := newFixture(t)
	ten := decimal.NewFromInt(10)

	resp, err := f.svc.CreateInvoice(context.Background(), f.owner, CreateInvoiceRequest{
		BusinessID: f.biz.ID,
		ClientID:   f.client.ID,
		Items:      []LineItemRequest{line("Hosting", "12", "10")},
		TaxRate:    &ten,
		Paid:       true,
	})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(132).Equal(resp.Amount))
	assert.Equal(t, "Hosting", resp.Name)
	require.Len(t, f.ledger.requests, 1)
	assert.True(t, f.ledger.requests[0].Paid)
	assert.Nil(t, f.ledger.requests[0].RelatedQuotationID)
}

func TestQuotationService_ListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t)
	f.create(t)
	_, err := f.svc.ChangeStatus(ctx, f.owner, a.ID, ChangeStatusRequest{Status: "sent"})
	require.NoError(t, err)

	sent, total, err := f.svc.List(ctx, f.owner, QuotationListFilter{Status: "sent"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, a.ID, sent[0].ID)

	_, _, err = f.svc.List(ctx, f.owner, QuotationListFilter{ClientID: "nope"})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	require.NoError(t, f.svc.Delete(ctx, f.owner, a.ID))
	assert.True(t, errors.Is(f.svc.Delete(ctx, f.owner, a.ID), shared.ErrNotFound))
}

func TestQuotationService_ComputeTotals(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.ComputeTotals(ComputeTotalsRequest{
		Items:   []LineItemRequest{line("Widget", "2", "50")},
		TaxRate: decimal.NewFromInt(15),
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(resp.Subtotal))
	assert.True(t, decimal.NewFromInt(15).Equal(resp.Tax))
	assert.True(t, decimal.NewFromInt(115).Equal(resp.Total))

	_, err = f.svc.ComputeTotals(ComputeTotalsRequest{TaxRate: decimal.NewFromInt(101)})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}
