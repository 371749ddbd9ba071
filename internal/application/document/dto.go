package document

import (
	"time"

	financeapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/document"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one priced line of a quotation or invoice
type LineItemRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=1000"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// toLineItems validates the lines and assigns fresh IDs
func toLineItems(reqs []LineItemRequest) (document.LineItems, error) {
	items := make(document.LineItems, 0, len(reqs))
	for _, r := range reqs {
		item, err := document.NewLineItem(r.Name, r.Description, r.Quantity, r.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ComputeTotalsRequest asks for the totals of a list of lines
type ComputeTotalsRequest struct {
	Items   []LineItemRequest `json:"items" binding:"dive"`
	TaxRate decimal.Decimal   `json:"tax_rate"`
}

// TotalsResponse represents computed document totals
type TotalsResponse struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

func toTotalsResponse(t document.Totals) TotalsResponse {
	return TotalsResponse{Subtotal: t.Subtotal, Tax: t.Tax, Total: t.Total}
}

// CreateQuotationRequest represents a request to create a quotation.
// TaxRate defaults to the business tax rate.
type CreateQuotationRequest struct {
	BusinessID uuid.UUID         `json:"business_id" binding:"required"`
	ClientID   uuid.UUID         `json:"client_id" binding:"required"`
	Date       *time.Time        `json:"date"`
	ExpiryDate *time.Time        `json:"expiry_date"`
	Items      []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	TaxRate    *decimal.Decimal  `json:"tax_rate"`
	Notes      string            `json:"notes" binding:"max=2000"`
}

// UpdateQuotationRequest revises a quotation. Nil fields keep their
// current value; totals are always recomputed.
type UpdateQuotationRequest struct {
	ClientID   *uuid.UUID        `json:"client_id"`
	Date       *time.Time        `json:"date"`
	ExpiryDate *time.Time        `json:"expiry_date"`
	Items      []LineItemRequest `json:"items" binding:"omitempty,min=1,dive"`
	TaxRate    *decimal.Decimal  `json:"tax_rate"`
	Notes      *string           `json:"notes" binding:"omitempty,max=2000"`
}

// ChangeStatusRequest moves a quotation to another status
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft sent accepted declined"`
}

// QuotationListFilter represents filter options for listing quotations
type QuotationListFilter struct {
	BusinessID string `form:"business_id" binding:"omitempty,uuid"`
	ClientID   string `form:"client_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=draft sent accepted declined"`
	Search     string `form:"search"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// QuotationResponse represents a quotation in API responses
type QuotationResponse struct {
	ID              uuid.UUID          `json:"id"`
	BusinessID      uuid.UUID          `json:"business_id"`
	QuotationNumber string             `json:"quotation_number"`
	ClientID        uuid.UUID          `json:"client_id"`
	Date            time.Time          `json:"date"`
	ExpiryDate      time.Time          `json:"expiry_date"`
	Items           document.LineItems `json:"items"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	TaxRate         decimal.Decimal    `json:"tax_rate"`
	Tax             decimal.Decimal    `json:"tax"`
	Total           decimal.Decimal    `json:"total"`
	Notes           string             `json:"notes,omitempty"`
	Status          string             `json:"status"`
	Expired         bool               `json:"expired"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	Version         int                `json:"version"`
}

// ToQuotationResponse converts a domain Quotation evaluated at now
func ToQuotationResponse(q *document.Quotation, now time.Time) QuotationResponse {
	return QuotationResponse{
		ID:              q.ID,
		BusinessID:      q.BusinessID,
		QuotationNumber: q.QuotationNumber,
		ClientID:        q.ClientID,
		Date:            q.Date,
		ExpiryDate:      q.ExpiryDate,
		Items:           q.Items,
		Subtotal:        q.Subtotal,
		TaxRate:         q.TaxRate,
		Tax:             q.Total.Sub(q.Subtotal),
		Total:           q.Total,
		Notes:           q.Notes,
		Status:          string(q.Status),
		Expired:         q.IsExpired(now),
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
		Version:         q.Version,
	}
}

// CreateInvoiceRequest builds an invoice from scratch.
// TaxRate defaults to the business tax rate.
type CreateInvoiceRequest struct {
	BusinessID    uuid.UUID         `json:"business_id" binding:"required"`
	ClientID      uuid.UUID         `json:"client_id" binding:"required"`
	Items         []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	TaxRate       *decimal.Decimal  `json:"tax_rate"`
	Date          *time.Time        `json:"date"`
	DueDate       *time.Time        `json:"due_date"`
	Notes         string            `json:"notes" binding:"max=2000"`
	Paid          bool              `json:"paid"`
	PaymentMethod string            `json:"payment_method" binding:"omitempty,oneof=cash card bank_transfer other"`
}

// ConversionResponse is the invoice issued from a quotation
type ConversionResponse struct {
	QuotationID      uuid.UUID                      `json:"quotation_id"`
	Transaction      financeapp.TransactionResponse `json:"transaction"`
	WasAccepted      bool                           `json:"was_accepted"`
	PriorConversions int64                          `json:"prior_conversions"`
	Warning          string                         `json:"warning,omitempty"`
}
