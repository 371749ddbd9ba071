package persistence

import (
	"context"
	"fmt"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/document"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormQuotationRepository implements document.QuotationRepository using GORM
type GormQuotationRepository struct {
	db *gorm.DB
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

// FindByID finds a quotation by ID within an owner's scope
func (r *GormQuotationRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*document.Quotation, error) {
	var model models.QuotationModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "Quotation", id)
	}
	return model.ToDomain(), nil
}

// FindAll lists quotations matching the filter with the total count
func (r *GormQuotationRepository) FindAll(ctx context.Context, ownerID uuid.UUID, filter document.QuotationFilter) ([]document.Quotation, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.QuotationModel{}).Where("owner_id = ?", ownerID)
		if filter.BusinessID != nil {
			query = query.Where("business_id = ?", *filter.BusinessID)
		}
		if filter.ClientID != nil {
			query = query.Where("client_id = ?", *filter.ClientID)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Search != "" {
			query = query.Where("LOWER(quotation_number) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count quotations: %w", err)
	}

	var rows []models.QuotationModel
	if err := page(scoped(), filter.Filter, QuotationSortFields, "date").Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list quotations: %w", err)
	}
	out := make([]document.Quotation, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts a new quotation
func (r *GormQuotationRepository) Create(ctx context.Context, q *document.Quotation) error {
	if err := r.db.WithContext(ctx).Create(models.QuotationModelFromDomain(q)).Error; err != nil {
		if isUniqueViolation(err) {
			return alreadyExists("Quotation", q.QuotationNumber)
		}
		return fmt.Errorf("create quotation: %w", err)
	}
	return nil
}

// Update saves a modified quotation if nobody else changed it first
func (r *GormQuotationRepository) Update(ctx context.Context, q *document.Quotation) error {
	model := models.QuotationModelFromDomain(q)
	result := r.db.WithContext(ctx).Model(model).
		Where("owner_id = ? AND version = ?", q.OwnerID, q.Version-1).
		Select("*").Omit("id", "owner_id", "created_at").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("update quotation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, q.OwnerID, q.ID)
	}
	return nil
}

func (r *GormQuotationRepository) missingOrStale(ctx context.Context, ownerID, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.QuotationModel{}).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check quotation: %w", err)
	}
	if count == 0 {
		return shared.NewNotFoundError("Quotation", id)
	}
	return staleVersion("Quotation", id)
}

// Delete removes a quotation; transactions that reference it are kept
func (r *GormQuotationRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&models.QuotationModel{})
	if result.Error != nil {
		return fmt.Errorf("delete quotation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Quotation", id)
	}
	return nil
}

var _ document.QuotationRepository = (*GormQuotationRepository)(nil)
