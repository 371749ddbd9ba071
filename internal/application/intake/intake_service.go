// Package intake turns loosely structured transaction and document input
// into validated commands, resolving free-text names along the way.
package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	financeapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/application/resolver"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/document"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EntityResolver finds or creates entities by name
type EntityResolver interface {
	ResolveClient(ctx context.Context, ownerID uuid.UUID, name string) (*resolver.Resolution, error)
	ResolveVendor(ctx context.Context, ownerID uuid.UUID, name string) (*resolver.Resolution, error)
	ResolveItem(ctx context.Context, ownerID uuid.UUID, name string, itemType valueobject.TransactionType,
		nature valueobject.Nature, unitPrice *decimal.Decimal) (*resolver.Resolution, error)
}

// TransactionCreator records transactions
type TransactionCreator interface {
	Create(ctx context.Context, ownerID uuid.UUID, req financeapp.CreateTransactionRequest) (*financeapp.TransactionResponse, error)
}

// Service normalizes intake payloads
type Service struct {
	resolver        EntityResolver
	transactions    TransactionCreator
	defaultCategory string
	logger          *zap.Logger
	now             func() time.Time
}

// NewService creates an intake service
func NewService(resolver EntityResolver, transactions TransactionCreator, defaultCategory string, logger *zap.Logger) *Service {
	if defaultCategory == "" {
		defaultCategory = "Uncategorized"
	}
	return &Service{
		resolver:        resolver,
		transactions:    transactions,
		defaultCategory: defaultCategory,
		logger:          logger,
		now:             time.Now,
	}
}

// PrepareTransaction validates the payload, resolves the names it
// mentions and returns the command that SubmitTransaction would record.
// Entities created during resolution are kept even if the transaction is
// never submitted.
func (s *Service) PrepareTransaction(ctx context.Context, ownerID uuid.UUID, p PartialTransaction) (*TransactionDraft, error) {
	req, err := s.normalize(p)
	if err != nil {
		return nil, err
	}
	draft := &TransactionDraft{}

	if req.ClientID == nil && strings.TrimSpace(p.NewClientName) != "" {
		draft.Client, err = s.resolver.ResolveClient(ctx, ownerID, p.NewClientName)
		if err != nil {
			return nil, err
		}
		req.ClientID = &draft.Client.ID
	}
	if req.VendorID == nil && strings.TrimSpace(p.NewVendorName) != "" {
		draft.Vendor, err = s.resolver.ResolveVendor(ctx, ownerID, p.NewVendorName)
		if err != nil {
			return nil, err
		}
		req.VendorID = &draft.Vendor.ID
	}
	draft.Item, err = s.resolver.ResolveItem(ctx, ownerID, req.Name,
		valueobject.TransactionType(req.Type), valueobject.Nature(req.Nature), req.UnitPrice)
	if err != nil {
		return nil, err
	}

	draft.Transaction = req
	return draft, nil
}

// SubmitTransaction prepares the payload and records the transaction
func (s *Service) SubmitTransaction(ctx context.Context, ownerID uuid.UUID, p PartialTransaction) (*SubmitResponse, error) {
	draft, err := s.PrepareTransaction(ctx, ownerID, p)
	if err != nil {
		return nil, err
	}
	txn, err := s.transactions.Create(ctx, ownerID, draft.Transaction)
	if err != nil {
		logger.Or(ctx, s.logger).Warn("Intake transaction rejected after resolution",
			zap.String("name", draft.Transaction.Name),
			zap.Error(err),
		)
		return nil, err
	}
	return &SubmitResponse{Draft: *draft, Transaction: *txn}, nil
}

// PrepareDocument resolves the client and prices the lines
func (s *Service) PrepareDocument(ctx context.Context, ownerID uuid.UUID, p PartialDocument) (*DocumentDraft, error) {
	taxRate := decimal.Zero
	if p.TaxRate != nil {
		taxRate = *p.TaxRate
	}
	if err := document.ValidateTaxRate(taxRate); err != nil {
		return nil, err
	}
	if len(p.Items) == 0 {
		return nil, shared.NewValidationError("At least one line item is required")
	}
	items := make(document.LineItems, 0, len(p.Items))
	for _, line := range p.Items {
		item, err := document.NewLineItem(line.Name, line.Description, line.Quantity, line.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	draft := &DocumentDraft{ClientID: p.ClientID, Items: items, TaxRate: taxRate}
	if p.ClientID == nil && strings.TrimSpace(p.ClientName) != "" {
		res, err := s.resolver.ResolveClient(ctx, ownerID, p.ClientName)
		if err != nil {
			return nil, err
		}
		draft.Client = res
		draft.ClientID = &res.ID
	}

	totals := document.ComputeTotals(items, taxRate)
	draft.Subtotal = totals.Subtotal
	draft.Tax = totals.Tax
	draft.Total = totals.Total
	return draft, nil
}

// normalize applies defaults and validates everything that does not need
// the database, so bad input never creates entities
func (s *Service) normalize(p PartialTransaction) (financeapp.CreateTransactionRequest, error) {
	req := financeapp.CreateTransactionRequest{
		BusinessID:    p.BusinessID,
		Type:          strings.ToLower(strings.TrimSpace(p.Type)),
		Name:          valueobject.CleanName(p.Name),
		Description:   strings.TrimSpace(p.Description),
		Currency:      p.Currency,
		Date:          p.Date,
		DueDate:       p.DueDate,
		Category:      strings.TrimSpace(p.Category),
		ClientID:      p.ClientID,
		VendorID:      p.VendorID,
		Nature:        strings.ToLower(strings.TrimSpace(p.Nature)),
		Quantity:      p.Quantity,
		UnitPrice:     p.UnitPrice,
		Invoice:       p.Invoice,
		Paid:          p.Paid,
		PaymentMethod: p.PaymentMethod,
	}

	if p.BusinessID == uuid.Nil {
		return req, shared.NewValidationError("Business is required")
	}
	if req.Name == "" {
		return req, shared.NewValidationError("Transaction name is required")
	}
	if req.Type == "" {
		req.Type = string(valueobject.TransactionTypeExpense)
	}
	if !valueobject.TransactionType(req.Type).IsValid() {
		return req, shared.NewValidationError(fmt.Sprintf("Invalid transaction type: %s", p.Type))
	}
	if req.Nature == "" {
		req.Nature = string(valueobject.NatureService)
	}
	if !valueobject.Nature(req.Nature).IsValid() {
		return req, shared.NewValidationError(fmt.Sprintf("Invalid nature: %s", p.Nature))
	}
	if req.Category == "" {
		req.Category = s.defaultCategory
	}
	if req.Date == nil {
		now := s.now()
		req.Date = &now
	}
	if req.PaymentMethod != "" && !finance.PaymentMethod(req.PaymentMethod).IsValid() {
		return req, shared.NewValidationError(fmt.Sprintf("Invalid payment method: %s", req.PaymentMethod))
	}

	switch {
	case p.Amount != nil:
		req.Amount = *p.Amount
	case p.Quantity != nil && p.UnitPrice != nil:
		req.Amount = valueobject.Round2(p.Quantity.Mul(*p.UnitPrice))
	}
	if !req.Amount.IsPositive() {
		return req, shared.NewValidationError("Amount must be positive")
	}

	if p.hasOrder() {
		order := &financeapp.OrderRequest{
			Status:          p.OrderStatus,
			FulfillmentType: p.FulfillmentType,
			DeliveryMethod:  p.DeliveryMethod,
			TrackingNumber:  p.TrackingNumber,
			ShippingNotes:   p.ShippingNotes,
		}
		if order.Status == "" {
			order.Status = string(finance.OrderStatusPending)
		}
		if !finance.OrderStatus(order.Status).IsValid() {
			return req, shared.NewValidationError(fmt.Sprintf("Invalid order status: %s", order.Status))
		}
		if order.FulfillmentType != "" && !finance.FulfillmentType(order.FulfillmentType).IsValid() {
			return req, shared.NewValidationError(fmt.Sprintf("Invalid fulfillment type: %s", order.FulfillmentType))
		}
		if order.DeliveryMethod != "" && !finance.DeliveryMethod(order.DeliveryMethod).IsValid() {
			return req, shared.NewValidationError(fmt.Sprintf("Invalid delivery method: %s", order.DeliveryMethod))
		}
		req.Order = order
	}
	return req, nil
}
