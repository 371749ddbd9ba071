package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotationStatus represents where a quotation is in its negotiation
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "draft"
	QuotationStatusSent     QuotationStatus = "sent"
	QuotationStatusAccepted QuotationStatus = "accepted"
	QuotationStatusDeclined QuotationStatus = "declined"
)

// IsValid checks if the status is valid
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusAccepted, QuotationStatusDeclined:
		return true
	}
	return false
}

// String returns the string representation
func (s QuotationStatus) String() string {
	return string(s)
}

// QuotationPrefix is the number prefix of quotations
const QuotationPrefix = "QUO"

// QuotationTerms are the client-facing terms of a quotation
type QuotationTerms struct {
	ClientID   uuid.UUID
	Date       time.Time
	ExpiryDate time.Time
	Items      LineItems
	TaxRate    decimal.Decimal
	Notes      string
}

func (t *QuotationTerms) validate() error {
	if t.ClientID == uuid.Nil {
		return shared.NewValidationError("Client is required")
	}
	if t.Date.IsZero() {
		t.Date = time.Now()
	}
	if t.ExpiryDate.IsZero() {
		t.ExpiryDate = t.Date.AddDate(0, 0, 30)
	}
	if t.ExpiryDate.Before(t.Date) {
		return shared.NewValidationError("Expiry date cannot be before the quotation date")
	}
	if err := ValidateTaxRate(t.TaxRate); err != nil {
		return err
	}
	t.Items = t.Items.Clone()
	if err := t.Items.Validate(); err != nil {
		return err
	}
	t.Notes = strings.TrimSpace(t.Notes)
	return nil
}

// Quotation is a priced offer to a client. Subtotal and Total are always
// derived from Items and TaxRate and are never set directly.
type Quotation struct {
	shared.OwnedAggregateRoot
	BusinessID      uuid.UUID
	QuotationNumber string
	ClientID        uuid.UUID
	Date            time.Time
	ExpiryDate      time.Time
	Items           LineItems
	Subtotal        decimal.Decimal
	TaxRate         decimal.Decimal
	Total           decimal.Decimal
	Notes           string
	Status          QuotationStatus
}

// NewQuotation creates a draft quotation
func NewQuotation(ownerID, businessID uuid.UUID, number string, terms QuotationTerms) (*Quotation, error) {
	if businessID == uuid.Nil {
		return nil, shared.NewValidationError("Business is required")
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("Quotation number cannot be empty")
	}
	if err := terms.validate(); err != nil {
		return nil, err
	}

	q := &Quotation{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		BusinessID:         businessID,
		QuotationNumber:    number,
		Status:             QuotationStatusDraft,
	}
	q.applyTerms(terms)
	q.AddDomainEvent(NewQuotationCreatedEvent(q))
	return q, nil
}

// Revise replaces the terms of the quotation and reprices it
func (q *Quotation) Revise(terms QuotationTerms) error {
	if err := terms.validate(); err != nil {
		return err
	}
	q.applyTerms(terms)
	q.Touch()
	q.IncrementVersion()
	return nil
}

func (q *Quotation) applyTerms(terms QuotationTerms) {
	q.ClientID = terms.ClientID
	q.Date = terms.Date
	q.ExpiryDate = terms.ExpiryDate
	q.Items = terms.Items
	q.TaxRate = terms.TaxRate
	q.Notes = terms.Notes
	q.recalculate()
}

func (q *Quotation) recalculate() {
	totals := ComputeTotals(q.Items, q.TaxRate)
	q.Subtotal = totals.Subtotal
	q.Total = totals.Total
}

// Totals returns the current derived totals
func (q *Quotation) Totals() Totals {
	return ComputeTotals(q.Items, q.TaxRate)
}

// ChangeStatus moves the quotation to another status.
// Any status may follow any other; the negotiation is not a strict pipeline.
func (q *Quotation) ChangeStatus(status QuotationStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid quotation status: %s", status))
	}
	if q.Status == status {
		return nil
	}
	from := q.Status
	q.Status = status
	q.Touch()
	q.IncrementVersion()
	q.AddDomainEvent(NewQuotationStatusChangedEvent(q, from))
	return nil
}

// IsAccepted reports whether the client accepted the quotation
func (q *Quotation) IsAccepted() bool {
	return q.Status == QuotationStatusAccepted
}

// IsExpired reports whether the quotation expired before now
func (q *Quotation) IsExpired(now time.Time) bool {
	return q.ExpiryDate.Before(now)
}
