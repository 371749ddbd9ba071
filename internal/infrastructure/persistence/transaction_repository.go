package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// unsettled are the stored statuses that can become overdue
var unsettled = []string{string(finance.PaymentStatusUnpaid), string(finance.PaymentStatusPartiallyPaid)}

// GormTransactionRepository implements finance.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by ID within an owner's scope
func (r *GormTransactionRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*finance.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "Transaction", id)
	}
	return model.ToDomain(), nil
}

// FindAll lists transactions matching the filter with the total count.
// Status filters use the displayed status: unpaid and partially_paid
// exclude overdue rows, overdue selects unsettled rows past their due date.
func (r *GormTransactionRepository) FindAll(ctx context.Context, ownerID uuid.UUID, filter finance.TransactionFilter) ([]finance.Transaction, int64, error) {
	asOf := filter.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	asOf = asOf.UTC()

	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.TransactionModel{}).Where("owner_id = ?", ownerID)
		if filter.BusinessID != nil {
			query = query.Where("business_id = ?", *filter.BusinessID)
		}
		if filter.Type != "" {
			query = query.Where("type = ?", filter.Type)
		}
		switch filter.Status {
		case "":
		case finance.PaymentStatusOverdue:
			query = query.Where("status IN ? AND due_date IS NOT NULL AND due_date < ?", unsettled, asOf)
		case finance.PaymentStatusUnpaid, finance.PaymentStatusPartiallyPaid:
			query = query.Where("status = ? AND (due_date IS NULL OR due_date >= ?)", filter.Status, asOf)
		default:
			query = query.Where("status = ?", filter.Status)
		}
		if filter.ClientID != nil {
			query = query.Where("client_id = ?", *filter.ClientID)
		}
		if filter.VendorID != nil {
			query = query.Where("vendor_id = ?", *filter.VendorID)
		}
		if filter.RelatedQuotationID != nil {
			query = query.Where("related_quotation_id = ?", *filter.RelatedQuotationID)
		}
		if filter.From != nil {
			query = query.Where("date >= ?", filter.From.UTC())
		}
		if filter.To != nil {
			query = query.Where("date <= ?", filter.To.UTC())
		}
		if filter.HasOrder != nil {
			if *filter.HasOrder {
				query = query.Where("order_status IS NOT NULL")
			} else {
				query = query.Where("order_status IS NULL")
			}
		}
		return searchName(query, filter.Search)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	var rows []models.TransactionModel
	if err := page(scoped(), filter.Filter, TransactionSortFields, "date").Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return toTransactions(rows), total, nil
}

// FindOverdue lists unsettled transactions of all owners past their due date
func (r *GormTransactionRepository) FindOverdue(ctx context.Context, asOf time.Time, limit int) ([]finance.Transaction, error) {
	if limit <= 0 {
		limit = 500
	}
	var rows []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND due_date IS NOT NULL AND due_date < ?", unsettled, asOf.UTC()).
		Order("due_date ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list overdue transactions: %w", err)
	}
	return toTransactions(rows), nil
}

// CountByRelatedQuotation counts transactions issued from a quotation
func (r *GormTransactionRepository) CountByRelatedQuotation(ctx context.Context, ownerID, quotationID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("owner_id = ? AND related_quotation_id = ?", ownerID, quotationID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count conversions: %w", err)
	}
	return count, nil
}

// Create inserts a new transaction
func (r *GormTransactionRepository) Create(ctx context.Context, t *finance.Transaction) error {
	if err := r.db.WithContext(ctx).Create(models.TransactionModelFromDomain(t)).Error; err != nil {
		if isUniqueViolation(err) {
			return alreadyExists("Transaction", t.TransactionNumber)
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// Update saves a modified transaction if nobody else changed it first
func (r *GormTransactionRepository) Update(ctx context.Context, t *finance.Transaction) error {
	model := models.TransactionModelFromDomain(t)
	result := r.db.WithContext(ctx).Model(model).
		Where("owner_id = ? AND version = ?", t.OwnerID, t.Version-1).
		Select("*").Omit("id", "owner_id", "created_at").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("update transaction: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("owner_id = ? AND id = ?", t.OwnerID, t.ID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check transaction: %w", err)
	}
	if count == 0 {
		return shared.NewNotFoundError("Transaction", t.ID)
	}
	return staleVersion("Transaction", t.ID)
}

// Delete removes a transaction
func (r *GormTransactionRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&models.TransactionModel{})
	if result.Error != nil {
		return fmt.Errorf("delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Transaction", id)
	}
	return nil
}

func toTransactions(rows []models.TransactionModel) []finance.Transaction {
	out := make([]finance.Transaction, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ finance.TransactionRepository = (*GormTransactionRepository)(nil)
