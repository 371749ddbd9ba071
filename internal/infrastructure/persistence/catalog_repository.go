package persistence

import (
	"context"
	"fmt"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/catalog"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormItemRepository implements catalog.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by ID within an owner's scope
func (r *GormItemRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*catalog.Item, error) {
	var model models.ItemModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "Item", id)
	}
	return model.ToDomain(), nil
}

// FindByNameKey finds an item by (normalized name, type)
func (r *GormItemRepository) FindByNameKey(ctx context.Context, ownerID uuid.UUID, key string, itemType valueobject.TransactionType) (*catalog.Item, error) {
	var model models.ItemModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND type = ? AND name_key = ?", ownerID, itemType, key).
		First(&model).Error; err != nil {
		return nil, notFound(err, "Item", nameRef(key))
	}
	return model.ToDomain(), nil
}

// FindAll lists items, optionally of one type
func (r *GormItemRepository) FindAll(ctx context.Context, ownerID uuid.UUID, itemType valueobject.TransactionType, filter shared.Filter) ([]catalog.Item, error) {
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if itemType != "" {
		query = query.Where("type = ?", itemType)
	}
	query = searchName(query, filter.Search)

	var rows []models.ItemModel
	if err := page(query, filter, ItemSortFields, "name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items := make([]catalog.Item, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	if err := r.db.WithContext(ctx).Save(models.ItemModelFromDomain(item)).Error; err != nil {
		if isUniqueViolation(err) {
			return alreadyExists("Item", item.Name)
		}
		return fmt.Errorf("save item: %w", err)
	}
	return nil
}

var _ catalog.ItemRepository = (*GormItemRepository)(nil)

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByNameKey finds a category by (normalized name, type)
func (r *GormCategoryRepository) FindByNameKey(ctx context.Context, ownerID uuid.UUID, key string, categoryType valueobject.TransactionType) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND type = ? AND name_key = ?", ownerID, categoryType, key).
		First(&model).Error; err != nil {
		return nil, notFound(err, "Category", nameRef(key))
	}
	return model.ToDomain(), nil
}

// FindAll lists categories ordered by name, optionally of one type
func (r *GormCategoryRepository) FindAll(ctx context.Context, ownerID uuid.UUID, categoryType valueobject.TransactionType) ([]catalog.Category, error) {
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if categoryType != "" {
		query = query.Where("type = ?", categoryType)
	}
	var rows []models.CategoryModel
	if err := query.Order("type ASC").Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	categories := make([]catalog.Category, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	return categories, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	if err := r.db.WithContext(ctx).Save(models.CategoryModelFromDomain(category)).Error; err != nil {
		if isUniqueViolation(err) {
			return alreadyExists("Category", category.Name)
		}
		return fmt.Errorf("save category: %w", err)
	}
	return nil
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
