package finance

import (
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/document"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRequest carries fulfillment details when a transaction is also an order
type OrderRequest struct {
	Status          string `json:"status" binding:"omitempty,oneof=pending in_progress ready_for_pickup shipped completed cancelled"`
	FulfillmentType string `json:"fulfillment_type" binding:"omitempty,oneof=in-house outsourced"`
	DeliveryMethod  string `json:"delivery_method" binding:"omitempty,oneof=pickup delivery digital shipping"`
	TrackingNumber  string `json:"tracking_number" binding:"max=100"`
	ShippingNotes   string `json:"shipping_notes" binding:"max=1000"`
}

func (o *OrderRequest) toDomain() *finance.Order {
	if o == nil {
		return nil
	}
	return &finance.Order{
		Status:          finance.OrderStatus(o.Status),
		FulfillmentType: finance.FulfillmentType(o.FulfillmentType),
		DeliveryMethod:  finance.DeliveryMethod(o.DeliveryMethod),
		TrackingNumber:  o.TrackingNumber,
		ShippingNotes:   o.ShippingNotes,
	}
}

// CreateTransactionRequest represents a request to record a transaction
type CreateTransactionRequest struct {
	BusinessID  uuid.UUID           `json:"business_id" binding:"required"`
	Type        string              `json:"type" binding:"required,oneof=income expense"`
	Name        string              `json:"name" binding:"required,min=1,max=200"`
	Description string              `json:"description" binding:"max=2000"`
	Amount      decimal.Decimal     `json:"amount"`
	Currency    string              `json:"currency" binding:"omitempty,len=3"`
	Date        *time.Time          `json:"date"`
	DueDate     *time.Time          `json:"due_date"`
	Category    string              `json:"category" binding:"max=100"`
	ClientID    *uuid.UUID          `json:"client_id"`
	VendorID    *uuid.UUID          `json:"vendor_id"`
	Nature      string              `json:"nature" binding:"omitempty,oneof=service product"`
	Quantity    *decimal.Decimal    `json:"quantity"`
	UnitPrice   *decimal.Decimal    `json:"unit_price"`
	Order       *OrderRequest       `json:"order"`
	LineItems   []document.LineItem `json:"line_items"`

	// Invoice numbers the transaction INV-... instead of TXN-... and
	// defaults its due date from the business payment terms
	Invoice bool `json:"invoice"`

	// Paid records the transaction as already settled with one payment
	// of the full amount
	Paid          bool   `json:"paid"`
	PaymentMethod string `json:"payment_method" binding:"omitempty,oneof=cash card bank_transfer other"`

	// RelatedQuotationID is only set by quotation conversion
	RelatedQuotationID *uuid.UUID `json:"-"`
}

// UpdateTransactionRequest changes descriptive fields. Nil fields keep
// their current value.
type UpdateTransactionRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description  *string          `json:"description" binding:"omitempty,max=2000"`
	Amount       *decimal.Decimal `json:"amount"`
	Date         *time.Time       `json:"date"`
	DueDate      *time.Time       `json:"due_date"`
	ClearDueDate bool             `json:"clear_due_date"`
	Category     *string          `json:"category" binding:"omitempty,max=100"`
	ClientID     *uuid.UUID       `json:"client_id"`
	VendorID     *uuid.UUID       `json:"vendor_id"`
	Nature       *string          `json:"nature" binding:"omitempty,oneof=service product"`
	Quantity     *decimal.Decimal `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
}

// ApplyPaymentRequest represents money received against a transaction
type ApplyPaymentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" binding:"omitempty,len=3"`
	Date     *time.Time      `json:"date"`
	Method   string          `json:"method" binding:"omitempty,oneof=cash card bank_transfer other"`
}

// UpdateOrderRequest is a partial order change
type UpdateOrderRequest struct {
	Status          *string `json:"status"`
	FulfillmentType *string `json:"fulfillment_type"`
	DeliveryMethod  *string `json:"delivery_method"`
	TrackingNumber  *string `json:"tracking_number" binding:"omitempty,max=100"`
	ShippingNotes   *string `json:"shipping_notes" binding:"omitempty,max=1000"`
}

func (r UpdateOrderRequest) toDomain() finance.OrderUpdate {
	var u finance.OrderUpdate
	if r.Status != nil {
		s := finance.OrderStatus(*r.Status)
		u.Status = &s
	}
	if r.FulfillmentType != nil {
		f := finance.FulfillmentType(*r.FulfillmentType)
		u.FulfillmentType = &f
	}
	if r.DeliveryMethod != nil {
		d := finance.DeliveryMethod(*r.DeliveryMethod)
		u.DeliveryMethod = &d
	}
	u.TrackingNumber = r.TrackingNumber
	u.ShippingNotes = r.ShippingNotes
	return u
}

// TransactionListFilter represents filter options for listing transactions
type TransactionListFilter struct {
	BusinessID  string `form:"business_id" binding:"omitempty,uuid"`
	Type        string `form:"type" binding:"omitempty,oneof=income expense"`
	Status      string `form:"status" binding:"omitempty,oneof=unpaid partially_paid paid voided overdue"`
	ClientID    string `form:"client_id" binding:"omitempty,uuid"`
	VendorID    string `form:"vendor_id" binding:"omitempty,uuid"`
	QuotationID string `form:"quotation_id" binding:"omitempty,uuid"`
	From        string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	HasOrder    *bool  `form:"has_order"`
	Search      string `form:"search"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID     uuid.UUID       `json:"id"`
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

// OrderResponse represents order details in API responses
type OrderResponse struct {
	Status          string `json:"status"`
	FulfillmentType string `json:"fulfillment_type"`
	DeliveryMethod  string `json:"delivery_method"`
	TrackingNumber  string `json:"tracking_number,omitempty"`
	ShippingNotes   string `json:"shipping_notes,omitempty"`
}

// TransactionResponse represents a transaction in API responses.
// Status is the stored status; DisplayStatus adds overdue.
type TransactionResponse struct {
	ID                 uuid.UUID           `json:"id"`
	BusinessID         uuid.UUID           `json:"business_id"`
	TransactionNumber  string              `json:"transaction_number"`
	Type               string              `json:"type"`
	Name               string              `json:"name"`
	Description        string              `json:"description,omitempty"`
	Amount             decimal.Decimal     `json:"amount"`
	Currency           string              `json:"currency"`
	Date               time.Time           `json:"date"`
	DueDate            *time.Time          `json:"due_date,omitempty"`
	Category           string              `json:"category"`
	HasReceipt         bool                `json:"has_receipt"`
	ClientID           *uuid.UUID          `json:"client_id,omitempty"`
	VendorID           *uuid.UUID          `json:"vendor_id,omitempty"`
	Nature             string              `json:"nature"`
	Quantity           *decimal.Decimal    `json:"quantity,omitempty"`
	UnitPrice          *decimal.Decimal    `json:"unit_price,omitempty"`
	RelatedQuotationID *uuid.UUID          `json:"related_quotation_id,omitempty"`
	Status             string              `json:"status"`
	DisplayStatus      string              `json:"display_status"`
	PaidAmount         decimal.Decimal     `json:"paid_amount"`
	OutstandingAmount  decimal.Decimal     `json:"outstanding_amount"`
	Payments           []PaymentResponse   `json:"payments"`
	Order              *OrderResponse      `json:"order,omitempty"`
	LineItems          []document.LineItem `json:"line_items,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Version            int                 `json:"version"`
}

// ToTransactionResponse converts a domain Transaction evaluated at now
func ToTransactionResponse(t *finance.Transaction, now time.Time) TransactionResponse {
	payments := make([]PaymentResponse, len(t.Payments))
	for i, p := range t.Payments {
		payments[i] = PaymentResponse{ID: p.ID, Date: p.Date, Amount: p.Amount, Method: string(p.Method)}
	}
	var order *OrderResponse
	if t.Order != nil {
		order = &OrderResponse{
			Status:          string(t.Order.Status),
			FulfillmentType: string(t.Order.FulfillmentType),
			DeliveryMethod:  string(t.Order.DeliveryMethod),
			TrackingNumber:  t.Order.TrackingNumber,
			ShippingNotes:   t.Order.ShippingNotes,
		}
	}
	return TransactionResponse{
		ID:                 t.ID,
		BusinessID:         t.BusinessID,
		TransactionNumber:  t.TransactionNumber,
		Type:               string(t.Type),
		Name:               t.Name,
		Description:        t.Description,
		Amount:             t.Amount,
		Currency:           string(t.Currency),
		Date:               t.Date,
		DueDate:            t.DueDate,
		Category:           t.Category,
		HasReceipt:         t.ReceiptImageKey != "",
		ClientID:           t.ClientID,
		VendorID:           t.VendorID,
		Nature:             string(t.Nature),
		Quantity:           t.Quantity,
		UnitPrice:          t.UnitPrice,
		RelatedQuotationID: t.RelatedQuotationID,
		Status:             string(t.Status),
		DisplayStatus:      string(t.DisplayStatus(now)),
		PaidAmount:         t.PaidAmount(),
		OutstandingAmount:  t.OutstandingAmount(),
		Payments:           payments,
		Order:              order,
		LineItems:          t.LineItems,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
		Version:            t.Version,
	}
}

// ReceiptResponse describes a stored receipt image
type ReceiptResponse struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// ReceiptURLResponse is a temporary download link
type ReceiptURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
