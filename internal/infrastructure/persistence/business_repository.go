package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/business"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBusinessRepository implements business.BusinessRepository using GORM
type GormBusinessRepository struct {
	db *gorm.DB
}

// NewGormBusinessRepository creates a new GormBusinessRepository
func NewGormBusinessRepository(db *gorm.DB) *GormBusinessRepository {
	return &GormBusinessRepository{db: db}
}

// FindByID finds a business by ID within an owner's scope
func (r *GormBusinessRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*business.Business, error) {
	var model models.BusinessModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "Business", id)
	}
	return model.ToDomain(), nil
}

// FindAll lists an owner's businesses, oldest first
func (r *GormBusinessRepository) FindAll(ctx context.Context, ownerID uuid.UUID) ([]business.Business, error) {
	var rows []models.BusinessModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	out := make([]business.Business, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Count counts an owner's businesses
func (r *GormBusinessRepository) Count(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BusinessModel{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count businesses: %w", err)
	}
	return count, nil
}

// Save creates or updates a business
func (r *GormBusinessRepository) Save(ctx context.Context, b *business.Business) error {
	if err := r.db.WithContext(ctx).Save(models.BusinessModelFromDomain(b)).Error; err != nil {
		return fmt.Errorf("save business: %w", err)
	}
	return nil
}

var _ business.BusinessRepository = (*GormBusinessRepository)(nil)

// GormSettingsRepository implements business.SettingsRepository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// FindByOwner returns the owner's settings
func (r *GormSettingsRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*business.Settings, error) {
	var model models.SettingsModel
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Settings of owner", ownerID)
		}
		return nil, fmt.Errorf("find settings: %w", err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates the owner's settings
func (r *GormSettingsRepository) Save(ctx context.Context, s *business.Settings) error {
	if err := r.db.WithContext(ctx).Save(models.SettingsModelFromDomain(s)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError(shared.CodeConcurrencyConflict, "Settings were created concurrently, reload and retry")
		}
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

var _ business.SettingsRepository = (*GormSettingsRepository)(nil)
