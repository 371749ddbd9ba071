package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/document"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Number prefixes
const (
	InvoicePrefix = "INV"
	EntryPrefix   = "TXN"
)

// DefaultCategory is used when a transaction has no category
const DefaultCategory = "Uncategorized"

// Transaction is a unit of record keeping: a plain income or expense entry,
// an invoice, or an order. Its payment status is always derived from Amount
// and the sum of Payments, unless it has been voided.
type Transaction struct {
	shared.OwnedAggregateRoot
	BusinessID         uuid.UUID
	TransactionNumber  string
	Type               valueobject.TransactionType
	Name               string
	Description        string
	Amount             decimal.Decimal
	Currency           valueobject.Currency
	Date               time.Time
	DueDate            *time.Time
	Category           string
	ReceiptImageKey    string
	ClientID           *uuid.UUID
	VendorID           *uuid.UUID
	Nature             valueobject.Nature
	Quantity           *decimal.Decimal
	UnitPrice          *decimal.Decimal
	RelatedQuotationID *uuid.UUID
	Status             PaymentStatus
	Payments           Payments
	Order              *Order
	LineItems          document.LineItems
}

// TransactionDetails are the descriptive attributes of a transaction
type TransactionDetails struct {
	Name        string
	Description string
	Date        time.Time
	DueDate     *time.Time
	Category    string
	ClientID    *uuid.UUID
	VendorID    *uuid.UUID
	Nature      valueobject.Nature
	Quantity    *decimal.Decimal
	UnitPrice   *decimal.Decimal
}

func (d *TransactionDetails) normalize() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return shared.NewValidationError("Transaction name cannot be empty")
	}
	if len(d.Name) > 200 {
		return shared.NewValidationError("Transaction name cannot exceed 200 characters")
	}
	d.Description = strings.TrimSpace(d.Description)
	if d.Date.IsZero() {
		d.Date = time.Now()
	}
	d.Category = strings.TrimSpace(d.Category)
	if d.Category == "" {
		d.Category = DefaultCategory
	}
	if d.Nature == "" {
		d.Nature = valueobject.NatureService
	}
	if !d.Nature.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid nature: %s", d.Nature))
	}
	if d.Quantity != nil && !d.Quantity.IsPositive() {
		return shared.NewValidationError("Quantity must be positive")
	}
	if d.UnitPrice != nil && d.UnitPrice.IsNegative() {
		return shared.NewValidationError("Unit price cannot be negative")
	}
	return nil
}

// NewTransactionInput carries everything needed to record a transaction
type NewTransactionInput struct {
	TransactionDetails
	BusinessID         uuid.UUID
	TransactionNumber  string
	Type               valueobject.TransactionType
	Amount             decimal.Decimal
	Currency           valueobject.Currency
	RelatedQuotationID *uuid.UUID
	Order              *Order
	LineItems          document.LineItems
}

// NewTransaction records a new unpaid transaction
func NewTransaction(ownerID uuid.UUID, input NewTransactionInput) (*Transaction, error) {
	if input.BusinessID == uuid.Nil {
		return nil, shared.NewValidationError("Business is required")
	}
	if strings.TrimSpace(input.TransactionNumber) == "" {
		return nil, shared.NewValidationError("Transaction number cannot be empty")
	}
	if !input.Type.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid transaction type: %s", input.Type))
	}
	if input.Currency == "" {
		return nil, shared.NewValidationError("Currency is required")
	}
	amount := valueobject.Round2(input.Amount)
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Amount must be positive")
	}
	if err := input.TransactionDetails.normalize(); err != nil {
		return nil, err
	}
	var order *Order
	if input.Order != nil {
		o := *input.Order
		if err := o.normalize(); err != nil {
			return nil, err
		}
		order = &o
	}
	lineItems := input.LineItems.Clone()
	if err := lineItems.Validate(); err != nil {
		return nil, err
	}

	t := &Transaction{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		BusinessID:         input.BusinessID,
		TransactionNumber:  input.TransactionNumber,
		Type:               input.Type,
		Amount:             amount,
		Currency:           input.Currency,
		RelatedQuotationID: input.RelatedQuotationID,
		Status:             PaymentStatusUnpaid,
		Payments:           Payments{},
		Order:              order,
		LineItems:          lineItems,
	}
	t.applyDetails(input.TransactionDetails)
	t.AddDomainEvent(NewTransactionCreatedEvent(t))
	return t, nil
}

func (t *Transaction) applyDetails(d TransactionDetails) {
	t.Name = d.Name
	t.Description = d.Description
	t.Date = d.Date
	t.DueDate = d.DueDate
	t.Category = d.Category
	t.ClientID = d.ClientID
	t.VendorID = d.VendorID
	t.Nature = d.Nature
	t.Quantity = d.Quantity
	t.UnitPrice = d.UnitPrice
}

// PaidAmount returns the sum of all payments
func (t *Transaction) PaidAmount() decimal.Decimal {
	return t.Payments.Total()
}

// OutstandingAmount returns what is left to collect
func (t *Transaction) OutstandingAmount() decimal.Decimal {
	if t.Status == PaymentStatusVoided {
		return decimal.Zero
	}
	outstanding := t.Amount.Sub(t.PaidAmount())
	if outstanding.IsNegative() {
		return decimal.Zero
	}
	return outstanding
}

// ApplyPayment records money received. The transaction is left untouched
// when the payment is rejected.
func (t *Transaction) ApplyPayment(amount valueobject.Money, date time.Time, method PaymentMethod) (*Payment, error) {
	if t.Status == PaymentStatusVoided {
		return nil, shared.NewInvalidPaymentError("Cannot apply payment to a voided transaction")
	}
	if !amount.IsPositive() {
		return nil, shared.NewInvalidPaymentError("Payment amount must be positive")
	}
	if amount.Currency() != t.Currency {
		return nil, shared.NewInvalidPaymentError(fmt.Sprintf("Payment currency %s does not match transaction currency %s", amount.Currency(), t.Currency))
	}
	if method == "" {
		method = PaymentMethodOther
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid payment method: %s", method))
	}
	value := valueobject.Round2(amount.Amount())
	if !value.IsPositive() {
		return nil, shared.NewInvalidPaymentError("Payment amount must be at least 0.01")
	}
	paid := t.PaidAmount().Add(value)
	if paid.GreaterThan(t.Amount.Add(valueobject.PaymentEpsilon)) {
		return nil, shared.NewInvalidPaymentError(fmt.Sprintf(
			"Payment of %s exceeds outstanding amount %s",
			value.StringFixed(2), t.OutstandingAmount().StringFixed(2)))
	}
	if date.IsZero() {
		date = time.Now()
	}

	payment := Payment{ID: uuid.New(), Date: date, Amount: value, Method: method}
	t.Payments = append(t.Payments, payment)
	t.recomputeStatus()
	t.Touch()
	t.IncrementVersion()

	t.AddDomainEvent(NewPaymentAppliedEvent(t, payment))
	if t.Status == PaymentStatusPaid {
		t.AddDomainEvent(NewTransactionPaidEvent(t))
	}
	return &payment, nil
}

// recomputeStatus derives the status from Amount and the payment total
func (t *Transaction) recomputeStatus() {
	if t.Status == PaymentStatusVoided {
		return
	}
	paid := t.PaidAmount()
	switch {
	case paid.IsZero():
		t.Status = PaymentStatusUnpaid
	case valueobject.WithinEpsilon(paid, t.Amount) || paid.GreaterThan(t.Amount):
		t.Status = PaymentStatusPaid
	default:
		t.Status = PaymentStatusPartiallyPaid
	}
}

// Void cancels a transaction that has received no money. It is terminal.
func (t *Transaction) Void() error {
	if t.Status == PaymentStatusVoided {
		return shared.NewInvalidStateError("Transaction is already voided")
	}
	if !t.PaidAmount().IsZero() {
		return shared.NewInvalidStateError(fmt.Sprintf(
			"Cannot void a transaction with payments (%s received)", t.PaidAmount().StringFixed(2)))
	}
	t.Status = PaymentStatusVoided
	t.Touch()
	t.IncrementVersion()
	t.AddDomainEvent(NewTransactionVoidedEvent(t))
	return nil
}

// IsOverdue reports whether money is still owed after the due date
func (t *Transaction) IsOverdue(now time.Time) bool {
	if t.Status.IsSettled() || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(now)
}

// DisplayStatus is the status shown to users: the stored status, or
// overdue when IsOverdue holds.
func (t *Transaction) DisplayStatus(now time.Time) PaymentStatus {
	if t.IsOverdue(now) {
		return PaymentStatusOverdue
	}
	return t.Status
}

// Revise changes the descriptive fields. A new amount is only accepted
// while no payment has been recorded.
func (t *Transaction) Revise(details TransactionDetails, amount *decimal.Decimal) error {
	if t.Status == PaymentStatusVoided {
		return shared.NewInvalidStateError("Cannot modify a voided transaction")
	}
	if err := details.normalize(); err != nil {
		return err
	}
	if amount != nil {
		value := valueobject.Round2(*amount)
		if !value.IsPositive() {
			return shared.NewValidationError("Amount must be positive")
		}
		if !value.Equal(t.Amount) && len(t.Payments) > 0 {
			return shared.NewInvalidStateError("Cannot change the amount of a transaction with payments")
		}
		t.Amount = value
	}
	t.applyDetails(details)
	t.recomputeStatus()
	t.Touch()
	t.IncrementVersion()
	return nil
}

// CanDelete returns an error when the transaction must be kept
func (t *Transaction) CanDelete() error {
	if len(t.Payments) > 0 {
		return shared.NewInvalidStateError("Cannot delete a transaction with payments")
	}
	return nil
}

// AttachReceipt stores the object key of the receipt image
func (t *Transaction) AttachReceipt(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return shared.NewValidationError("Receipt key cannot be empty")
	}
	t.ReceiptImageKey = key
	t.Touch()
	t.IncrementVersion()
	return nil
}

// IsOrder reports whether the transaction carries fulfillment details
func (t *Transaction) IsOrder() bool {
	return t.Order != nil
}

// UpdateOrder applies a partial order change. A transaction without an
// order becomes one, starting at pending.
func (t *Transaction) UpdateOrder(update OrderUpdate, policy OrderTransitionPolicy) error {
	if update.IsEmpty() {
		return shared.NewValidationError("Order update is empty")
	}
	order := Order{}
	if t.Order != nil {
		order = *t.Order
	}
	previous := order.Status
	if update.FulfillmentType != nil {
		order.FulfillmentType = *update.FulfillmentType
	}
	if update.DeliveryMethod != nil {
		order.DeliveryMethod = *update.DeliveryMethod
	}
	if update.TrackingNumber != nil {
		order.TrackingNumber = *update.TrackingNumber
	}
	if update.ShippingNotes != nil {
		order.ShippingNotes = *update.ShippingNotes
	}
	if err := order.normalize(); err != nil {
		return err
	}

	if update.Status != nil && *update.Status != order.Status {
		next := *update.Status
		if !next.IsValid() {
			return shared.NewValidationError(fmt.Sprintf("Invalid order status: %s", next))
		}
		if !policy.allows(order.Status, next) {
			return shared.NewInvalidStateError(fmt.Sprintf("Cannot move order from %s to %s", order.Status, next))
		}
		order.Status = next
	}

	t.Order = &order
	t.Touch()
	t.IncrementVersion()
	if previous != order.Status {
		t.AddDomainEvent(NewOrderStatusChangedEvent(t, previous, order.Status))
	}
	return nil
}
