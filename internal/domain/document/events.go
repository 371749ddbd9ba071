package document

import (
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeQuotation is the aggregate type of quotations
const AggregateTypeQuotation = "Quotation"

// Event type constants
const (
	EventTypeQuotationCreated       = "QuotationCreated"
	EventTypeQuotationStatusChanged = "QuotationStatusChanged"
	EventTypeQuotationConverted     = "QuotationConverted"
)

// QuotationCreatedEvent is published when a quotation is created
type QuotationCreatedEvent struct {
	shared.BaseDomainEvent
	QuotationNumber string          `json:"quotation_number"`
	ClientID        uuid.UUID       `json:"client_id"`
	Total           decimal.Decimal `json:"total"`
}

// NewQuotationCreatedEvent creates a new QuotationCreatedEvent
func NewQuotationCreatedEvent(q *Quotation) *QuotationCreatedEvent {
	return &QuotationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationCreated, AggregateTypeQuotation, q.ID, q.OwnerID),
		QuotationNumber: q.QuotationNumber,
		ClientID:        q.ClientID,
		Total:           q.Total,
	}
}

// QuotationStatusChangedEvent is published when the status changes
type QuotationStatusChangedEvent struct {
	shared.BaseDomainEvent
	From QuotationStatus `json:"from"`
	To   QuotationStatus `json:"to"`
}

// NewQuotationStatusChangedEvent creates a new QuotationStatusChangedEvent
func NewQuotationStatusChangedEvent(q *Quotation, from QuotationStatus) *QuotationStatusChangedEvent {
	return &QuotationStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationStatusChanged, AggregateTypeQuotation, q.ID, q.OwnerID),
		From:            from,
		To:              q.Status,
	}
}

// QuotationConvertedEvent is published when an invoice is issued from a
// quotation. PriorConversions counts invoices issued from it before this one.
type QuotationConvertedEvent struct {
	shared.BaseDomainEvent
	TransactionID    uuid.UUID       `json:"transaction_id"`
	Amount           decimal.Decimal `json:"amount"`
	WasAccepted      bool            `json:"was_accepted"`
	PriorConversions int64           `json:"prior_conversions"`
}

// NewQuotationConvertedEvent creates a new QuotationConvertedEvent
func NewQuotationConvertedEvent(q *Quotation, transactionID uuid.UUID, prior int64) *QuotationConvertedEvent {
	return &QuotationConvertedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeQuotationConverted, AggregateTypeQuotation, q.ID, q.OwnerID),
		TransactionID:    transactionID,
		Amount:           q.Total,
		WasAccepted:      q.IsAccepted(),
		PriorConversions: prior,
	}
}
