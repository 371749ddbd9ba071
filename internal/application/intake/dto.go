package intake

import (
	"time"

	financeapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/application/resolver"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/document"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartialTransaction is a transaction described with any subset of fields.
// Missing fields are defaulted, free-text client and vendor names are
// resolved to records.
type PartialTransaction struct {
	BusinessID    uuid.UUID        `json:"business_id" binding:"required"`
	Type          string           `json:"type"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Amount        *decimal.Decimal `json:"amount"`
	Currency      string           `json:"currency"`
	Date          *time.Time       `json:"date"`
	DueDate       *time.Time       `json:"due_date"`
	Category      string           `json:"category"`
	ClientID      *uuid.UUID       `json:"client_id"`
	VendorID      *uuid.UUID       `json:"vendor_id"`
	NewClientName string           `json:"new_client_name"`
	NewVendorName string           `json:"new_vendor_name"`
	Nature        string           `json:"nature"`
	Quantity      *decimal.Decimal `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	Invoice       bool             `json:"invoice"`
	Paid          bool             `json:"paid"`
	PaymentMethod string           `json:"payment_method"`

	OrderStatus     string `json:"order_status"`
	FulfillmentType string `json:"fulfillment_type"`
	DeliveryMethod  string `json:"delivery_method"`
	TrackingNumber  string `json:"tracking_number"`
	ShippingNotes   string `json:"shipping_notes"`
}

func (p PartialTransaction) hasOrder() bool {
	return p.OrderStatus != "" || p.FulfillmentType != "" || p.DeliveryMethod != "" ||
		p.TrackingNumber != "" || p.ShippingNotes != ""
}

// TransactionDraft is a normalized transaction with the entities that were
// resolved for it
type TransactionDraft struct {
	Transaction financeapp.CreateTransactionRequest `json:"transaction"`
	Client      *resolver.Resolution                `json:"client,omitempty"`
	Vendor      *resolver.Resolution                `json:"vendor,omitempty"`
	Item        *resolver.Resolution                `json:"item,omitempty"`
}

// SubmitResponse is a draft that was recorded
type SubmitResponse struct {
	Draft       TransactionDraft               `json:"draft"`
	Transaction financeapp.TransactionResponse `json:"transaction"`
}

// DocumentLine is one line of a document intake
type DocumentLine struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// PartialDocument is a quotation or invoice described by client name and lines
type PartialDocument struct {
	ClientID   *uuid.UUID       `json:"client_id"`
	ClientName string           `json:"client_name"`
	Items      []DocumentLine   `json:"items"`
	TaxRate    *decimal.Decimal `json:"tax_rate"`
}

// DocumentDraft is a priced document ready to be saved as a quotation or invoice
type DocumentDraft struct {
	Client   *resolver.Resolution `json:"client,omitempty"`
	ClientID *uuid.UUID           `json:"client_id,omitempty"`
	Items    document.LineItems   `json:"items"`
	TaxRate  decimal.Decimal      `json:"tax_rate"`
	Subtotal decimal.Decimal      `json:"subtotal"`
	Tax      decimal.Decimal      `json:"tax"`
	Total    decimal.Decimal      `json:"total"`
}
