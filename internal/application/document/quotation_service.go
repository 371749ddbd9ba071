// Package document manages quotations and issues invoices from them.
package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/application/event"
	financeapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/business"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/document"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/partner"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/logger"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	quotationLockScope  = "quotation"
	conversionLockScope = "quotation:convert"
)

// TransactionCreator records transactions
type TransactionCreator interface {
	Create(ctx context.Context, ownerID uuid.UUID, req financeapp.CreateTransactionRequest) (*financeapp.TransactionResponse, error)
}

// ConversionCounter counts invoices already issued from a quotation
type ConversionCounter interface {
	CountByRelatedQuotation(ctx context.Context, ownerID, quotationID uuid.UUID) (int64, error)
}

// QuotationService is the application service for quotations
type QuotationService struct {
	quotationRepo  document.QuotationRepository
	businessRepo   business.BusinessRepository
	clientRepo     partner.ClientRepository
	sequence       shared.NumberSequence
	locker         shared.OwnerLocker
	transactions   TransactionCreator
	conversions    ConversionCounter
	incomeCategory string
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewQuotationService creates a new QuotationService. Invoices are filed
// under incomeCategory.
func NewQuotationService(
	quotationRepo document.QuotationRepository,
	businessRepo business.BusinessRepository,
	clientRepo partner.ClientRepository,
	sequence shared.NumberSequence,
	locker shared.OwnerLocker,
	transactions TransactionCreator,
	conversions ConversionCounter,
	incomeCategory string,
	logger *zap.Logger,
) *QuotationService {
	if incomeCategory == "" {
		incomeCategory = "Sales"
	}
	return &QuotationService{
		quotationRepo:  quotationRepo,
		businessRepo:   businessRepo,
		clientRepo:     clientRepo,
		sequence:       sequence,
		locker:         locker,
		transactions:   transactions,
		conversions:    conversions,
		incomeCategory: incomeCategory,
		logger:         logger,
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher
func (s *QuotationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ComputeTotals prices a list of lines without storing anything
func (s *QuotationService) ComputeTotals(req ComputeTotalsRequest) (*TotalsResponse, error) {
	if err := document.ValidateTaxRate(req.TaxRate); err != nil {
		return nil, err
	}
	items, err := toLineItems(req.Items)
	if err != nil {
		return nil, err
	}
	resp := toTotalsResponse(document.ComputeTotals(items, req.TaxRate))
	return &resp, nil
}

// Create creates a draft quotation with a fresh QUO number
func (s *QuotationService) Create(ctx context.Context, ownerID uuid.UUID, req CreateQuotationRequest) (resp *QuotationResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quotation", "create", telemetry.SpanAttrOwnerID, ownerID)
	defer func() { telemetry.End(span, err) }()

	biz, err := s.businessRepo.FindByID(ctx, ownerID, req.BusinessID)
	if err != nil {
		return nil, err
	}
	if err := s.checkClient(ctx, ownerID, req.ClientID); err != nil {
		return nil, err
	}
	items, err := toLineItems(req.Items)
	if err != nil {
		return nil, err
	}
	terms := document.QuotationTerms{
		ClientID: req.ClientID,
		Items:    items,
		TaxRate:  biz.TaxRate,
		Notes:    req.Notes,
		Date:     s.now(),
	}
	if req.TaxRate != nil {
		terms.TaxRate = *req.TaxRate
	}
	if req.Date != nil {
		terms.Date = *req.Date
	}
	if req.ExpiryDate != nil {
		terms.ExpiryDate = *req.ExpiryDate
	}

	unlock, err := s.locker.Lock(ctx, ownerID, quotationLockScope)
	if err != nil {
		return nil, fmt.Errorf("failed to lock quotations: %w", err)
	}
	defer unlock()

	number, err := s.sequence.Next(ctx, ownerID, document.QuotationPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate quotation number: %w", err)
	}
	q, err := document.NewQuotation(ownerID, biz.ID, number, terms)
	if err != nil {
		return nil, err
	}
	if err := s.quotationRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	event.Dispatch(ctx, s.eventPublisher, s.logger, q)

	logger.Or(ctx, s.logger).Info("Quotation created",
		zap.String("quotation_id", q.ID.String()),
		zap.String("number", q.QuotationNumber),
		zap.String("total", q.Total.StringFixed(2)),
	)
	return s.respond(q), nil
}

// GetByID retrieves a quotation
func (s *QuotationService) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*QuotationResponse, error) {
	q, err := s.quotationRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.respond(q), nil
}

// List retrieves quotations
func (s *QuotationService) List(ctx context.Context, ownerID uuid.UUID, filter QuotationListFilter) ([]QuotationResponse, int64, error) {
	domainFilter := document.QuotationFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		Status: document.QuotationStatus(filter.Status),
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "date"
	}
	domainFilter.Filter = domainFilter.Filter.Normalize()
	if domainFilter.Status != "" && !domainFilter.Status.IsValid() {
		return nil, 0, shared.NewValidationError(fmt.Sprintf("Invalid quotation status: %s", filter.Status))
	}
	if filter.BusinessID != "" {
		id, err := uuid.Parse(filter.BusinessID)
		if err != nil {
			return nil, 0, shared.NewValidationError("Invalid business_id")
		}
		domainFilter.BusinessID = &id
	}
	if filter.ClientID != "" {
		id, err := uuid.Parse(filter.ClientID)
		if err != nil {
			return nil, 0, shared.NewValidationError("Invalid client_id")
		}
		domainFilter.ClientID = &id
	}

	quotations, total, err := s.quotationRepo.FindAll(ctx, ownerID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	out := make([]QuotationResponse, len(quotations))
	for i := range quotations {
		out[i] = ToQuotationResponse(&quotations[i], now)
	}
	return out, total, nil
}

// Update revises a quotation and recomputes its totals
func (s *QuotationService) Update(ctx context.Context, ownerID, id uuid.UUID, req UpdateQuotationRequest) (*QuotationResponse, error) {
	return s.mutate(ctx, ownerID, id, "update", func(q *document.Quotation) error {
		terms := document.QuotationTerms{
			ClientID:   q.ClientID,
			Date:       q.Date,
			ExpiryDate: q.ExpiryDate,
			Items:      q.Items,
			TaxRate:    q.TaxRate,
			Notes:      q.Notes,
		}
		if req.ClientID != nil && *req.ClientID != q.ClientID {
			if err := s.checkClient(ctx, ownerID, *req.ClientID); err != nil {
				return err
			}
			terms.ClientID = *req.ClientID
		}
		if req.Date != nil {
			terms.Date = *req.Date
		}
		if req.ExpiryDate != nil {
			terms.ExpiryDate = *req.ExpiryDate
		}
		if req.Items != nil {
			items, err := toLineItems(req.Items)
			if err != nil {
				return err
			}
			terms.Items = items
		}
		if req.TaxRate != nil {
			terms.TaxRate = *req.TaxRate
		}
		if req.Notes != nil {
			terms.Notes = *req.Notes
		}
		return q.Revise(terms)
	})
}

// ChangeStatus moves a quotation to another status
func (s *QuotationService) ChangeStatus(ctx context.Context, ownerID, id uuid.UUID, req ChangeStatusRequest) (*QuotationResponse, error) {
	return s.mutate(ctx, ownerID, id, "change_status", func(q *document.Quotation) error {
		return q.ChangeStatus(document.QuotationStatus(req.Status))
	})
}

// Delete removes a quotation. Invoices issued from it are kept.
func (s *QuotationService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.quotationRepo.FindByID(ctx, ownerID, id); err != nil {
		return err
	}
	return s.quotationRepo.Delete(ctx, ownerID, id)
}

// ConvertToTransaction issues an income invoice for the quotation total.
// Quotations that are not accepted are converted anyway with a warning,
// and converting the same quotation again issues another invoice. The
// quotation itself is never modified.
func (s *QuotationService) ConvertToTransaction(ctx context.Context, ownerID, id uuid.UUID) (resp *ConversionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quotation", "convert",
		telemetry.SpanAttrOwnerID, ownerID,
		telemetry.SpanAttrQuotationID, id,
	)
	defer func() { telemetry.End(span, err) }()

	unlock, err := s.locker.Lock(ctx, ownerID, conversionLockScope)
	if err != nil {
		return nil, fmt.Errorf("failed to lock quotation conversion: %w", err)
	}
	defer unlock()

	q, err := s.quotationRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if !q.Total.IsPositive() {
		return nil, shared.NewValidationError("Cannot convert a quotation with a zero total")
	}
	prior, err := s.conversions.CountByRelatedQuotation(ctx, ownerID, q.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count conversions: %w", err)
	}

	log := logger.Or(ctx, s.logger).With(
		zap.String("quotation_id", q.ID.String()),
		zap.String("number", q.QuotationNumber),
	)
	var warnings []string
	if !q.IsAccepted() {
		warnings = append(warnings, fmt.Sprintf("Quotation is %s, not accepted", q.Status))
		log.Warn("Converting quotation that is not accepted", zap.String("status", string(q.Status)))
	}
	if prior > 0 {
		warnings = append(warnings, fmt.Sprintf("Quotation was already converted %d time(s)", prior))
		log.Warn("Converting quotation again", zap.Int64("prior_conversions", prior))
	}

	clientID := q.ClientID
	quotationID := q.ID
	txn, err := s.transactions.Create(ctx, ownerID, financeapp.CreateTransactionRequest{
		BusinessID:         q.BusinessID,
		Type:               string(valueobject.TransactionTypeIncome),
		Name:               "Invoice for " + q.QuotationNumber,
		Description:        q.Notes,
		Amount:             q.Total,
		Category:           s.incomeCategory,
		ClientID:           &clientID,
		Nature:             string(valueobject.NatureService),
		LineItems:          q.Items.Clone(),
		Invoice:            true,
		RelatedQuotationID: &quotationID,
	})
	if err != nil {
		return nil, err
	}

	q.AddDomainEvent(document.NewQuotationConvertedEvent(q, txn.ID, prior))
	event.Dispatch(ctx, s.eventPublisher, s.logger, q)

	log.Info("Quotation converted",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("amount", txn.Amount.StringFixed(2)),
	)
	return &ConversionResponse{
		QuotationID:      q.ID,
		Transaction:      *txn,
		WasAccepted:      q.IsAccepted(),
		PriorConversions: prior,
		Warning:          strings.Join(warnings, "; "),
	}, nil
}

// CreateInvoice builds an income invoice from line items without a quotation
func (s *QuotationService) CreateInvoice(ctx context.Context, ownerID uuid.UUID, req CreateInvoiceRequest) (*financeapp.TransactionResponse, error) {
	biz, err := s.businessRepo.FindByID(ctx, ownerID, req.BusinessID)
	if err != nil {
		return nil, err
	}
	if err := s.checkClient(ctx, ownerID, req.ClientID); err != nil {
		return nil, err
	}
	items, err := toLineItems(req.Items)
	if err != nil {
		return nil, err
	}
	taxRate := biz.TaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}
	if err := document.ValidateTaxRate(taxRate); err != nil {
		return nil, err
	}
	totals := document.ComputeTotals(items, taxRate)
	if !totals.Total.IsPositive() {
		return nil, shared.NewValidationError("Invoice total must be positive")
	}

	clientID := req.ClientID
	name := "Invoice"
	if len(items) == 1 {
		name = items[0].Name
	}
	return s.transactions.Create(ctx, ownerID, financeapp.CreateTransactionRequest{
		BusinessID:    biz.ID,
		Type:          string(valueobject.TransactionTypeIncome),
		Name:          name,
		Description:   req.Notes,
		Amount:        totals.Total,
		Date:          req.Date,
		DueDate:       req.DueDate,
		Category:      s.incomeCategory,
		ClientID:      &clientID,
		Nature:        string(valueobject.NatureService),
		LineItems:     items,
		Invoice:       true,
		Paid:          req.Paid,
		PaymentMethod: req.PaymentMethod,
	})
}

func (s *QuotationService) mutate(
	ctx context.Context,
	ownerID, id uuid.UUID,
	method string,
	fn func(*document.Quotation) error,
) (resp *QuotationResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quotation", method,
		telemetry.SpanAttrOwnerID, ownerID,
		telemetry.SpanAttrQuotationID, id,
	)
	defer func() { telemetry.End(span, err) }()

	unlock, err := s.locker.Lock(ctx, ownerID, quotationLockScope)
	if err != nil {
		return nil, fmt.Errorf("failed to lock quotations: %w", err)
	}
	defer unlock()

	q, err := s.quotationRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	version := q.Version
	if err := fn(q); err != nil {
		return nil, err
	}
	if q.Version == version {
		return s.respond(q), nil
	}
	if err := s.quotationRepo.Update(ctx, q); err != nil {
		return nil, err
	}
	event.Dispatch(ctx, s.eventPublisher, s.logger, q)
	return s.respond(q), nil
}

func (s *QuotationService) checkClient(ctx context.Context, ownerID, clientID uuid.UUID) error {
	if clientID == uuid.Nil {
		return shared.NewValidationError("Client is required")
	}
	_, err := s.clientRepo.FindByID(ctx, ownerID, clientID)
	return err
}

func (s *QuotationService) respond(q *document.Quotation) *QuotationResponse {
	resp := ToQuotationResponse(q, s.now())
	return &resp
}

var _ ConversionCounter = (finance.TransactionRepository)(nil)
