// Package finance records transactions and drives their payment and order
// lifecycles.
package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/application/event"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/business"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/partner"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/logger"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// lockScope serializes transaction mutations of one owner
const lockScope = "transaction"

// Config holds the bookkeeping rules the service applies
type Config struct {
	OrderPolicy     finance.OrderTransitionPolicy
	DefaultCategory string
	MaxReceiptSize  int64
}

// DefaultConfig returns strict order transitions and a 10 MB receipt limit
func DefaultConfig() Config {
	return Config{
		OrderPolicy:     finance.OrderTransitionsStrict,
		DefaultCategory: finance.DefaultCategory,
		MaxReceiptSize:  10 << 20,
	}
}

// TransactionService is the application service for transactions
type TransactionService struct {
	txnRepo        finance.TransactionRepository
	businessRepo   business.BusinessRepository
	clientRepo     partner.ClientRepository
	vendorRepo     partner.VendorRepository
	sequence       shared.NumberSequence
	locker         shared.OwnerLocker
	receipts       ReceiptStorage
	cfg            Config
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	txnRepo finance.TransactionRepository,
	businessRepo business.BusinessRepository,
	clientRepo partner.ClientRepository,
	vendorRepo partner.VendorRepository,
	sequence shared.NumberSequence,
	locker shared.OwnerLocker,
	cfg Config,
	logger *zap.Logger,
) *TransactionService {
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = finance.DefaultCategory
	}
	if cfg.MaxReceiptSize <= 0 {
		cfg.MaxReceiptSize = DefaultConfig().MaxReceiptSize
	}
	return &TransactionService{
		txnRepo:      txnRepo,
		businessRepo: businessRepo,
		clientRepo:   clientRepo,
		vendorRepo:   vendorRepo,
		sequence:     sequence,
		locker:       locker,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher
func (s *TransactionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetReceiptStorage enables receipt uploads
func (s *TransactionService) SetReceiptStorage(storage ReceiptStorage) {
	s.receipts = storage
}

// Create records a new transaction. Currency and, for invoices, the due
// date default from the business.
func (s *TransactionService) Create(ctx context.Context, ownerID uuid.UUID, req CreateTransactionRequest) (resp *TransactionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "create",
		telemetry.SpanAttrOwnerID, ownerID,
		telemetry.SpanAttrAmount, req.Amount.String(),
	)
	defer func() { telemetry.End(span, err) }()

	biz, err := s.businessRepo.FindByID(ctx, ownerID, req.BusinessID)
	if err != nil {
		return nil, err
	}

	if err := s.checkCounterparties(ctx, ownerID, req.ClientID, req.VendorID); err != nil {
		return nil, err
	}

	currency := biz.Currency
	if strings.TrimSpace(req.Currency) != "" {
		if currency, err = valueobject.ParseCurrency(req.Currency); err != nil {
			return nil, shared.NewValidationError(err.Error())
		}
	}
	date := s.now()
	if req.Date != nil {
		date = *req.Date
	}
	dueDate := req.DueDate
	if dueDate == nil && req.Invoice && biz.PaymentTermsDays != nil {
		d := date.AddDate(0, 0, *biz.PaymentTermsDays)
		dueDate = &d
	}
	if dueDate != nil && dueDate.Before(truncateDay(date)) {
		return nil, shared.NewValidationError("Due date cannot be before the transaction date")
	}
	category := req.Category
	if strings.TrimSpace(category) == "" {
		category = s.cfg.DefaultCategory
	}

	prefix := finance.EntryPrefix
	if req.Invoice {
		prefix = finance.InvoicePrefix
	}

	unlock, err := s.locker.Lock(ctx, ownerID, lockScope)
	if err != nil {
		return nil, fmt.Errorf("failed to lock transactions: %w", err)
	}
	defer unlock()

	number, err := s.sequence.Next(ctx, ownerID, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate transaction number: %w", err)
	}

	txn, err := finance.NewTransaction(ownerID, finance.NewTransactionInput{
		TransactionDetails: finance.TransactionDetails{
			Name:        req.Name,
			Description: req.Description,
			Date:        date,
			DueDate:     dueDate,
			Category:    category,
			ClientID:    req.ClientID,
			VendorID:    req.VendorID,
			Nature:      valueobject.Nature(req.Nature),
			Quantity:    req.Quantity,
			UnitPrice:   req.UnitPrice,
		},
		BusinessID:         biz.ID,
		TransactionNumber:  number,
		Type:               valueobject.TransactionType(req.Type),
		Amount:             req.Amount,
		Currency:           currency,
		RelatedQuotationID: req.RelatedQuotationID,
		Order:              req.Order.toDomain(),
		LineItems:          req.LineItems,
	})
	if err != nil {
		return nil, err
	}

	if req.Paid {
		money, err := valueobject.NewMoney(txn.Amount, txn.Currency)
		if err != nil {
			return nil, err
		}
		if _, err := txn.ApplyPayment(money, date, finance.PaymentMethod(req.PaymentMethod)); err != nil {
			return nil, err
		}
	}

	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, err
	}
	event.Dispatch(ctx, s.eventPublisher, s.logger, txn)

	logger.Or(ctx, s.logger).Info("Transaction created",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("number", txn.TransactionNumber),
		zap.String("type", string(txn.Type)),
		zap.String("amount", txn.Amount.StringFixed(2)),
	)
	return s.respond(txn), nil
}

// GetByID retrieves a transaction
func (s *TransactionService) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*TransactionResponse, error) {
	txn, err := s.txnRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.respond(txn), nil
}

// List retrieves transactions. Filtering by overdue compares due dates
// against the current time.
func (s *TransactionService) List(ctx context.Context, ownerID uuid.UUID, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	domainFilter, err := s.toDomainFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	txns, total, err := s.txnRepo.FindAll(ctx, ownerID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return s.respondAll(txns), total, nil
}

// ListOverdue lists unsettled transactions past their due date
func (s *TransactionService) ListOverdue(ctx context.Context, ownerID uuid.UUID, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	filter.Status = string(finance.PaymentStatusOverdue)
	if filter.OrderBy == "" {
		filter.OrderBy = "due_date"
		filter.OrderDir = "asc"
	}
	return s.List(ctx, ownerID, filter)
}

// Update changes the descriptive fields of a transaction
func (s *TransactionService) Update(ctx context.Context, ownerID, id uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error) {
	return s.mutate(ctx, ownerID, id, "update", func(txn *finance.Transaction) error {
		details := finance.TransactionDetails{
			Name:        txn.Name,
			Description: txn.Description,
			Date:        txn.Date,
			DueDate:     txn.DueDate,
			Category:    txn.Category,
			ClientID:    txn.ClientID,
			VendorID:    txn.VendorID,
			Nature:      txn.Nature,
			Quantity:    txn.Quantity,
			UnitPrice:   txn.UnitPrice,
		}
		if req.Name != nil {
			details.Name = *req.Name
		}
		if req.Description != nil {
			details.Description = *req.Description
		}
		if req.Date != nil {
			details.Date = *req.Date
		}
		if req.DueDate != nil {
			details.DueDate = req.DueDate
		}
		if req.ClearDueDate {
			details.DueDate = nil
		}
		if req.Category != nil {
			details.Category = *req.Category
		}
		if err := s.checkCounterparties(ctx, ownerID, req.ClientID, req.VendorID); err != nil {
			return err
		}
		if req.ClientID != nil {
			details.ClientID = req.ClientID
		}
		if req.VendorID != nil {
			details.VendorID = req.VendorID
		}
		if req.Nature != nil {
			details.Nature = valueobject.Nature(*req.Nature)
		}
		if req.Quantity != nil {
			details.Quantity = req.Quantity
		}
		if req.UnitPrice != nil {
			details.UnitPrice = req.UnitPrice
		}
		if details.DueDate != nil && details.DueDate.Before(truncateDay(details.Date)) {
			return shared.NewValidationError("Due date cannot be before the transaction date")
		}
		return txn.Revise(details, req.Amount)
	})
}

// Delete removes a transaction that has no payments
func (s *TransactionService) Delete(ctx context.Context, ownerID, id uuid.UUID) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "delete",
		telemetry.SpanAttrOwnerID, ownerID,
		telemetry.SpanAttrTransactionID, id,
	)
	defer func() { telemetry.End(span, err) }()

	unlock, err := s.locker.Lock(ctx, ownerID, lockScope)
	if err != nil {
		return fmt.Errorf("failed to lock transactions: %w", err)
	}
	defer unlock()

	txn, err := s.txnRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := txn.CanDelete(); err != nil {
		return err
	}
	if err := s.txnRepo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	if txn.ReceiptImageKey != "" && s.receipts != nil {
		s.removeReceipt(ctx, txn.ReceiptImageKey)
	}
	return nil
}

// ApplyPayment records money received against a transaction. A rejected
// payment leaves the transaction unchanged.
func (s *TransactionService) ApplyPayment(ctx context.Context, ownerID, id uuid.UUID, req ApplyPaymentRequest) (*TransactionResponse, error) {
	return s.mutate(ctx, ownerID, id, "apply_payment", func(txn *finance.Transaction) error {
		currency := txn.Currency
		if strings.TrimSpace(req.Currency) != "" {
			c, err := valueobject.ParseCurrency(req.Currency)
			if err != nil {
				return shared.NewInvalidPaymentError(err.Error())
			}
			currency = c
		}
		money, err := valueobject.NewMoney(req.Amount, currency)
		if err != nil {
			return shared.NewInvalidPaymentError(err.Error())
		}
		date := s.now()
		if req.Date != nil {
			date = *req.Date
		}
		payment, err := txn.ApplyPayment(money, date, finance.PaymentMethod(req.Method))
		if err != nil {
			return err
		}
		logger.Or(ctx, s.logger).Info("Payment applied",
			zap.String("transaction_id", txn.ID.String()),
			zap.String("payment_id", payment.ID.String()),
			zap.String("amount", payment.Amount.StringFixed(2)),
			zap.String("status", string(txn.Status)),
		)
		return nil
	})
}

// Void cancels a transaction that has received no payment
func (s *TransactionService) Void(ctx context.Context, ownerID, id uuid.UUID) (*TransactionResponse, error) {
	return s.mutate(ctx, ownerID, id, "void", func(txn *finance.Transaction) error {
		return txn.Void()
	})
}

// UpdateOrder changes the order details of a transaction
func (s *TransactionService) UpdateOrder(ctx context.Context, ownerID, id uuid.UUID, req UpdateOrderRequest) (*TransactionResponse, error) {
	return s.mutate(ctx, ownerID, id, "update_order", func(txn *finance.Transaction) error {
		return txn.UpdateOrder(req.toDomain(), s.cfg.OrderPolicy)
	})
}

// mutate loads a transaction under the owner lock, applies fn and saves it
func (s *TransactionService) mutate(
	ctx context.Context,
	ownerID, id uuid.UUID,
	method string,
	fn func(*finance.Transaction) error,
) (resp *TransactionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", method,
		telemetry.SpanAttrOwnerID, ownerID,
		telemetry.SpanAttrTransactionID, id,
	)
	defer func() { telemetry.End(span, err) }()

	unlock, err := s.locker.Lock(ctx, ownerID, lockScope)
	if err != nil {
		return nil, fmt.Errorf("failed to lock transactions: %w", err)
	}
	defer unlock()

	txn, err := s.txnRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(txn); err != nil {
		return nil, err
	}
	if err := s.txnRepo.Update(ctx, txn); err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrStatus, string(txn.Status))
	event.Dispatch(ctx, s.eventPublisher, s.logger, txn)
	return s.respond(txn), nil
}

func (s *TransactionService) respond(txn *finance.Transaction) *TransactionResponse {
	resp := ToTransactionResponse(txn, s.now())
	return &resp
}

func (s *TransactionService) respondAll(txns []finance.Transaction) []TransactionResponse {
	now := s.now()
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToTransactionResponse(&txns[i], now)
	}
	return out
}

func (s *TransactionService) toDomainFilter(f TransactionListFilter) (finance.TransactionFilter, error) {
	out := finance.TransactionFilter{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		},
		Type:     valueobject.TransactionType(f.Type),
		Status:   finance.PaymentStatus(f.Status),
		HasOrder: f.HasOrder,
		AsOf:     s.now(),
	}
	if out.OrderBy == "" {
		out.OrderBy = "date"
	}
	out.Filter = out.Filter.Normalize()
	if out.Type != "" && !out.Type.IsValid() {
		return out, shared.NewValidationError(fmt.Sprintf("Invalid type: %s", f.Type))
	}
	if out.Status != "" && !out.Status.IsValid() {
		return out, shared.NewValidationError(fmt.Sprintf("Invalid status: %s", f.Status))
	}

	var err error
	if out.BusinessID, err = parseOptionalUUID("business_id", f.BusinessID); err != nil {
		return out, err
	}
	if out.ClientID, err = parseOptionalUUID("client_id", f.ClientID); err != nil {
		return out, err
	}
	if out.VendorID, err = parseOptionalUUID("vendor_id", f.VendorID); err != nil {
		return out, err
	}
	if out.RelatedQuotationID, err = parseOptionalUUID("quotation_id", f.QuotationID); err != nil {
		return out, err
	}
	if out.From, err = parseOptionalDate("from", f.From); err != nil {
		return out, err
	}
	if out.To, err = parseOptionalDate("to", f.To); err != nil {
		return out, err
	}
	if out.To != nil {
		// inclusive end of day
		end := out.To.AddDate(0, 0, 1).Add(-time.Nanosecond)
		out.To = &end
	}
	return out, nil
}

func parseOptionalUUID(field, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid %s: %s", field, raw))
	}
	return &id, nil
}

func parseOptionalDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid %s date: %s", field, raw))
	}
	return &t, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// checkCounterparties ensures referenced clients and vendors exist in the
// owner's books
func (s *TransactionService) checkCounterparties(ctx context.Context, ownerID uuid.UUID, clientID, vendorID *uuid.UUID) error {
	if clientID != nil {
		if _, err := s.clientRepo.FindByID(ctx, ownerID, *clientID); err != nil {
			return err
		}
	}
	if vendorID != nil {
		if _, err := s.vendorRepo.FindByID(ctx, ownerID, *vendorID); err != nil {
			return err
		}
	}
	return nil
}
