package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockOverdueSource struct {
	mock.Mock
}

func (m *mockOverdueSource) FindOverdue(ctx context.Context, asOf time.Time, limit int) ([]finance.Transaction, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.Transaction), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	failOn uuid.UUID
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range events {
		if e.AggregateID() == p.failOn {
			return errors.New("bus closed")
		}
		p.events = append(p.events, e)
	}
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type recordingGauge struct {
	mu    sync.Mutex
	last  int
	calls int
}

func (g *recordingGauge) RecordOverdue(_ context.Context, count int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = count
	g.calls++
}

func overdueTxn(owner uuid.UUID, amount string, currency valueobject.Currency, due time.Time) finance.Transaction {
	return finance.Transaction{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(owner),
		TransactionNumber:  "INV-2026-00001",
		Type:               valueobject.TransactionTypeIncome,
		Amount:             decimal.RequireFromString(amount),
		Currency:           currency,
		DueDate:            &due,
		Status:             finance.PaymentStatusUnpaid,
	}
}

func newTestScanner(t *testing.T, cfg OverdueScannerConfig, source OverdueSource, pub shared.EventPublisher, gauge OverdueGauge) (*OverdueScanner, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	s, err := NewOverdueScanner(cfg, source, pub, gauge, zap.New(core))
	require.NoError(t, err)
	return s, logs
}

func TestNewOverdueScanner_Defaults(t *testing.T) {
	s, _ := newTestScanner(t, OverdueScannerConfig{}, &mockOverdueSource{}, &recordingPublisher{}, nil)
	assert.Equal(t, "0 6 * * *", s.config.Schedule)
	assert.Equal(t, 500, s.config.Limit)
	assert.Equal(t, 5*time.Minute, s.config.JobTimeout)
}

func TestNewOverdueScanner_InvalidSchedule(t *testing.T) {
	_, err := NewOverdueScanner(OverdueScannerConfig{Schedule: "every tuesday"}, &mockOverdueSource{}, &recordingPublisher{}, nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestOverdueScanner_RunOnce(t *testing.T) {
	now := time.Date(2026, 5, 20, 6, 0, 0, 0, time.UTC)
	ownerA, ownerB := uuid.New(), uuid.New()
	partial := overdueTxn(ownerA, "100.00", "USD", now.AddDate(0, 0, -10))
	partial.Payments = finance.Payments{{ID: uuid.New(), Amount: decimal.NewFromInt(40), Method: finance.PaymentMethodCash}}
	partial.Status = finance.PaymentStatusPartiallyPaid
	txns := []finance.Transaction{
		partial,
		overdueTxn(ownerA, "25.50", "USD", now.AddDate(0, 0, -3)),
		overdueTxn(ownerB, "80.00", "EUR", now.AddDate(0, 0, -1)),
	}

	source := &mockOverdueSource{}
	source.On("FindOverdue", mock.Anything, now, 10).Return(txns, nil).Once()
	pub := &recordingPublisher{}
	gauge := &recordingGauge{}
	s, logs := newTestScanner(t, OverdueScannerConfig{Limit: 10}, source, pub, gauge)
	s.now = func() time.Time { return now }

	result, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	source.AssertExpectations(t)

	assert.Equal(t, 3, result.Count)
	assert.Equal(t, 2, result.Owners)
	assert.False(t, result.Truncated)
	assert.True(t, decimal.RequireFromString("85.50").Equal(result.Outstanding["USD"]))
	assert.True(t, decimal.NewFromInt(80).Equal(result.Outstanding["EUR"]))

	require.Len(t, pub.events, 3)
	first, ok := pub.events[0].(*finance.TransactionOverdueDetectedEvent)
	require.True(t, ok)
	assert.Equal(t, 10, first.DaysOverdue)
	assert.True(t, decimal.NewFromInt(60).Equal(first.Outstanding))
	assert.Equal(t, ownerA, first.OwnerID())

	assert.Equal(t, 3, gauge.last)
	assert.Equal(t, finance.PaymentStatusPartiallyPaid, txns[0].Status)
	assert.Equal(t, 1, logs.FilterMessage("Overdue scan completed").Len())
}

func TestOverdueScanner_RunOnce_PublishFailureContinues(t *testing.T) {
	now := time.Date(2026, 5, 20, 6, 0, 0, 0, time.UTC)
	txns := []finance.Transaction{
		overdueTxn(uuid.New(), "10", "USD", now.AddDate(0, 0, -1)),
		overdueTxn(uuid.New(), "20", "USD", now.AddDate(0, 0, -1)),
	}
	source := &mockOverdueSource{}
	source.On("FindOverdue", mock.Anything, mock.Anything, 2).Return(txns, nil)
	pub := &recordingPublisher{failOn: txns[0].ID}
	s, logs := newTestScanner(t, OverdueScannerConfig{Limit: 2}, source, pub, nil)
	s.now = func() time.Time { return now }

	result, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Equal(t, 1, pub.count())
	assert.Equal(t, 1, logs.FilterMessage("Failed to publish overdue event").Len())
}

func TestOverdueScanner_RunOnce_SourceError(t *testing.T) {
	source := &mockOverdueSource{}
	source.On("FindOverdue", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	gauge := &recordingGauge{}
	s, _ := newTestScanner(t, OverdueScannerConfig{}, source, &recordingPublisher{}, gauge)

	_, err := s.RunOnce(context.Background())
	assert.ErrorContains(t, err, "connection refused")
	assert.Zero(t, gauge.calls)
}

func TestOverdueScanner_RunOnce_InProgress(t *testing.T) {
	s, _ := newTestScanner(t, OverdueScannerConfig{}, &mockOverdueSource{}, &recordingPublisher{}, nil)
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrScanInProgress)
}

func TestOverdueScanner_Disabled(t *testing.T) {
	s, logs := newTestScanner(t, OverdueScannerConfig{Enabled: false}, &mockOverdueSource{}, &recordingPublisher{}, nil)
	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("Overdue scanner is disabled").Len())
}

func TestOverdueScanner_StartStop(t *testing.T) {
	source := &mockOverdueSource{}
	source.On("FindOverdue", mock.Anything, mock.Anything, mock.Anything).Return([]finance.Transaction{}, nil)
	gauge := &recordingGauge{}
	s, _ := newTestScanner(t, OverdueScannerConfig{Enabled: true, Schedule: "@every 1s"}, source, &recordingPublisher{}, gauge)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool {
		gauge.mu.Lock()
		defer gauge.mu.Unlock()
		return gauge.calls > 0
	}, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
}
