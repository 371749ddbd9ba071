package finance

import (
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeTransaction is the aggregate type of transactions
const AggregateTypeTransaction = "Transaction"

// Event type constants
const (
	EventTypeTransactionCreated         = "TransactionCreated"
	EventTypePaymentApplied             = "PaymentApplied"
	EventTypeTransactionPaid            = "TransactionPaid"
	EventTypeTransactionVoided          = "TransactionVoided"
	EventTypeOrderStatusChanged         = "OrderStatusChanged"
	EventTypeTransactionOverdueDetected = "TransactionOverdueDetected"
)

// TransactionCreatedEvent is published when a transaction is recorded
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	TransactionNumber  string                      `json:"transaction_number"`
	Type               valueobject.TransactionType `json:"type"`
	Amount             decimal.Decimal             `json:"amount"`
	Currency           valueobject.Currency        `json:"currency"`
	RelatedQuotationID *uuid.UUID                  `json:"related_quotation_id,omitempty"`
}

// NewTransactionCreatedEvent creates a new TransactionCreatedEvent
func NewTransactionCreatedEvent(t *Transaction) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeTransactionCreated, AggregateTypeTransaction, t.ID, t.OwnerID),
		TransactionNumber:  t.TransactionNumber,
		Type:               t.Type,
		Amount:             t.Amount,
		Currency:           t.Currency,
		RelatedQuotationID: t.RelatedQuotationID,
	}
}

// PaymentAppliedEvent is published for every accepted payment
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	PaymentID   uuid.UUID            `json:"payment_id"`
	Amount      decimal.Decimal      `json:"amount"`
	Currency    valueobject.Currency `json:"currency"`
	Method      PaymentMethod        `json:"method"`
	PaidAmount  decimal.Decimal      `json:"paid_amount"`
	Outstanding decimal.Decimal      `json:"outstanding"`
	Status      PaymentStatus        `json:"status"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(t *Transaction, p Payment) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypeTransaction, t.ID, t.OwnerID),
		PaymentID:       p.ID,
		Amount:          p.Amount,
		Currency:        t.Currency,
		Method:          p.Method,
		PaidAmount:      t.PaidAmount(),
		Outstanding:     t.OutstandingAmount(),
		Status:          t.Status,
	}
}

// TransactionPaidEvent is published when a transaction becomes fully paid
type TransactionPaidEvent struct {
	shared.BaseDomainEvent
	TransactionNumber string          `json:"transaction_number"`
	Amount            decimal.Decimal `json:"amount"`
}

// NewTransactionPaidEvent creates a new TransactionPaidEvent
func NewTransactionPaidEvent(t *Transaction) *TransactionPaidEvent {
	return &TransactionPaidEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeTransactionPaid, AggregateTypeTransaction, t.ID, t.OwnerID),
		TransactionNumber: t.TransactionNumber,
		Amount:            t.Amount,
	}
}

// TransactionVoidedEvent is published when a transaction is voided
type TransactionVoidedEvent struct {
	shared.BaseDomainEvent
	TransactionNumber string          `json:"transaction_number"`
	Amount            decimal.Decimal `json:"amount"`
}

// NewTransactionVoidedEvent creates a new TransactionVoidedEvent
func NewTransactionVoidedEvent(t *Transaction) *TransactionVoidedEvent {
	return &TransactionVoidedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeTransactionVoided, AggregateTypeTransaction, t.ID, t.OwnerID),
		TransactionNumber: t.TransactionNumber,
		Amount:            t.Amount,
	}
}

// OrderStatusChangedEvent is published when the order status moves
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	From OrderStatus `json:"from,omitempty"`
	To   OrderStatus `json:"to"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(t *Transaction, from, to OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeTransaction, t.ID, t.OwnerID),
		From:            from,
		To:              to,
	}
}

// TransactionOverdueDetectedEvent is published by the overdue scanner.
// The transaction itself is not modified.
type TransactionOverdueDetectedEvent struct {
	shared.BaseDomainEvent
	TransactionNumber string          `json:"transaction_number"`
	DueDate           time.Time       `json:"due_date"`
	Outstanding       decimal.Decimal `json:"outstanding"`
	DaysOverdue       int             `json:"days_overdue"`
}

// NewTransactionOverdueDetectedEvent creates a new TransactionOverdueDetectedEvent
func NewTransactionOverdueDetectedEvent(t *Transaction, now time.Time) *TransactionOverdueDetectedEvent {
	e := &TransactionOverdueDetectedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeTransactionOverdueDetected, AggregateTypeTransaction, t.ID, t.OwnerID),
		TransactionNumber: t.TransactionNumber,
		Outstanding:       t.OutstandingAmount(),
	}
	if t.DueDate != nil {
		e.DueDate = *t.DueDate
		e.DaysOverdue = int(now.Sub(*t.DueDate).Hours() / 24)
	}
	return e
}
