package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/document"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrTransactionType = attribute.Key("transaction_type")
	AttrPaymentMethod   = attribute.Key("payment_method")
	AttrCurrency        = attribute.Key("currency")
	AttrEntityKind      = attribute.Key("entity_kind")
	AttrOutcome         = attribute.Key("outcome")
	AttrWasAccepted     = attribute.Key("was_accepted")
	AttrReconversion    = attribute.Key("reconversion")
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// BookkeepingMetrics records business activity. Counters are fed by domain
// events through Handle; resolver outcomes and the overdue gauge are
// recorded directly by their callers.
type BookkeepingMetrics struct {
	transactionsCreated metric.Int64Counter
	paymentsApplied     metric.Int64Counter
	paymentAmount       metric.Float64Counter
	transactionsVoided  metric.Int64Counter
	conversions         metric.Int64Counter
	resolutions         metric.Int64Counter
	overdueGauge        metric.Int64ObservableGauge

	overdue atomic.Int64
}

// NewBookkeepingMetrics registers the instruments on meter
func NewBookkeepingMetrics(meter metric.Meter) (*BookkeepingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &BookkeepingMetrics{}
	var err error

	if m.transactionsCreated, err = meter.Int64Counter("bookkeeping_transactions_created_total",
		metric.WithDescription("Transactions recorded"), metric.WithUnit("{transactions}")); err != nil {
		return nil, instrumentError("transactions_created", err)
	}
	if m.paymentsApplied, err = meter.Int64Counter("bookkeeping_payments_applied_total",
		metric.WithDescription("Payments applied to transactions"), metric.WithUnit("{payments}")); err != nil {
		return nil, instrumentError("payments_applied", err)
	}
	if m.paymentAmount, err = meter.Float64Counter("bookkeeping_payment_amount_total",
		metric.WithDescription("Sum of applied payments in transaction currency")); err != nil {
		return nil, instrumentError("payment_amount", err)
	}
	if m.transactionsVoided, err = meter.Int64Counter("bookkeeping_transactions_voided_total",
		metric.WithDescription("Transactions voided"), metric.WithUnit("{transactions}")); err != nil {
		return nil, instrumentError("transactions_voided", err)
	}
	if m.conversions, err = meter.Int64Counter("bookkeeping_quotation_conversions_total",
		metric.WithDescription("Quotations converted to invoices"), metric.WithUnit("{conversions}")); err != nil {
		return nil, instrumentError("conversions", err)
	}
	if m.resolutions, err = meter.Int64Counter("bookkeeping_entity_resolutions_total",
		metric.WithDescription("Entity resolutions by kind and outcome"), metric.WithUnit("{resolutions}")); err != nil {
		return nil, instrumentError("resolutions", err)
	}
	if m.overdueGauge, err = meter.Int64ObservableGauge("bookkeeping_overdue_transactions",
		metric.WithDescription("Unsettled transactions past their due date at the last scan"),
		metric.WithUnit("{transactions}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(m.overdue.Load())
			return nil
		})); err != nil {
		return nil, instrumentError("overdue", err)
	}
	return m, nil
}

func instrumentError(name string, err error) error {
	return fmt.Errorf("failed to create %s instrument: %w", name, err)
}

// RecordResolution counts one entity resolution. created is false when an
// existing entity matched.
func (m *BookkeepingMetrics) RecordResolution(ctx context.Context, kind string, created bool) {
	outcome := "matched"
	if created {
		outcome = "created"
	}
	m.resolutions.Add(ctx, 1, metric.WithAttributes(AttrEntityKind.String(kind), AttrOutcome.String(outcome)))
}

// RecordOverdue sets the overdue gauge
func (m *BookkeepingMetrics) RecordOverdue(_ context.Context, count int) {
	m.overdue.Store(int64(count))
}

// Handle implements shared.EventHandler
func (m *BookkeepingMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *finance.TransactionCreatedEvent:
		m.transactionsCreated.Add(ctx, 1, metric.WithAttributes(AttrTransactionType.String(string(e.Type))))
	case *finance.PaymentAppliedEvent:
		m.paymentsApplied.Add(ctx, 1, metric.WithAttributes(AttrPaymentMethod.String(string(e.Method))))
		amount, _ := e.Amount.Float64()
		m.paymentAmount.Add(ctx, amount, metric.WithAttributes(AttrCurrency.String(string(e.Currency))))
	case *finance.TransactionVoidedEvent:
		m.transactionsVoided.Add(ctx, 1)
	case *document.QuotationConvertedEvent:
		m.conversions.Add(ctx, 1, metric.WithAttributes(
			AttrWasAccepted.Bool(e.WasAccepted),
			AttrReconversion.Bool(e.PriorConversions > 0),
		))
	}
	return nil
}

// EventTypes implements shared.EventHandler
func (m *BookkeepingMetrics) EventTypes() []string {
	return []string{
		finance.EventTypeTransactionCreated,
		finance.EventTypePaymentApplied,
		finance.EventTypeTransactionVoided,
		document.EventTypeQuotationConverted,
	}
}

var _ shared.EventHandler = (*BookkeepingMetrics)(nil)
