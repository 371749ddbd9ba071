package persistence

import (
	"context"
	"fmt"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/partner"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements partner.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by ID within an owner's scope
func (r *GormClientRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*partner.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "Client", id)
	}
	return model.ToDomain(), nil
}

// FindByNameKey finds a client by normalized name
func (r *GormClientRepository) FindByNameKey(ctx context.Context, ownerID uuid.UUID, key string) (*partner.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND name_key = ?", ownerID, key).
		First(&model).Error; err != nil {
		return nil, notFound(err, "Client", nameRef(key))
	}
	return model.ToDomain(), nil
}

// FindAll lists clients of an owner
func (r *GormClientRepository) FindAll(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]partner.Client, error) {
	var rows []models.ClientModel
	query := searchName(r.db.WithContext(ctx).Where("owner_id = ?", ownerID), filter.Search)
	if err := page(query, filter, CounterpartySortFields, "name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	clients := make([]partner.Client, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
	}
	return clients, nil
}

// Count counts clients matching the filter search
func (r *GormClientRepository) Count(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := searchName(r.db.WithContext(ctx).Model(&models.ClientModel{}).Where("owner_id = ?", ownerID), filter.Search)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return count, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *partner.Client) error {
	if err := r.db.WithContext(ctx).Save(models.ClientModelFromDomain(client)).Error; err != nil {
		if isUniqueViolation(err) {
			return alreadyExists("Client", client.Name)
		}
		return fmt.Errorf("save client: %w", err)
	}
	return nil
}

// Delete removes a client
func (r *GormClientRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&models.ClientModel{})
	if result.Error != nil {
		return fmt.Errorf("delete client: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Client", id)
	}
	return nil
}

var _ partner.ClientRepository = (*GormClientRepository)(nil)

// GormVendorRepository implements partner.VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByID finds a vendor by ID within an owner's scope
func (r *GormVendorRepository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (*partner.Vendor, error) {
	var model models.VendorModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		First(&model).Error; err != nil {
		return nil, notFound(err, "Vendor", id)
	}
	return model.ToDomain(), nil
}

// FindByNameKey finds a vendor by normalized name
func (r *GormVendorRepository) FindByNameKey(ctx context.Context, ownerID uuid.UUID, key string) (*partner.Vendor, error) {
	var model models.VendorModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND name_key = ?", ownerID, key).
		First(&model).Error; err != nil {
		return nil, notFound(err, "Vendor", nameRef(key))
	}
	return model.ToDomain(), nil
}

// FindAll lists vendors of an owner
func (r *GormVendorRepository) FindAll(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]partner.Vendor, error) {
	var rows []models.VendorModel
	query := searchName(r.db.WithContext(ctx).Where("owner_id = ?", ownerID), filter.Search)
	if err := page(query, filter, CounterpartySortFields, "name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	vendors := make([]partner.Vendor, len(rows))
	for i := range rows {
		vendors[i] = *rows[i].ToDomain()
	}
	return vendors, nil
}

// Count counts vendors matching the filter search
func (r *GormVendorRepository) Count(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := searchName(r.db.WithContext(ctx).Model(&models.VendorModel{}).Where("owner_id = ?", ownerID), filter.Search)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count vendors: %w", err)
	}
	return count, nil
}

// Save creates or updates a vendor
func (r *GormVendorRepository) Save(ctx context.Context, vendor *partner.Vendor) error {
	if err := r.db.WithContext(ctx).Save(models.VendorModelFromDomain(vendor)).Error; err != nil {
		if isUniqueViolation(err) {
			return alreadyExists("Vendor", vendor.Name)
		}
		return fmt.Errorf("save vendor: %w", err)
	}
	return nil
}

// Delete removes a vendor
func (r *GormVendorRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("owner_id = ? AND id = ?", ownerID, id).
		Delete(&models.VendorModel{})
	if result.Error != nil {
		return fmt.Errorf("delete vendor: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Vendor", id)
	}
	return nil
}

var _ partner.VendorRepository = (*GormVendorRepository)(nil)

// nameRef lets a name key stand in for an id in not-found messages
type nameRef string

func (n nameRef) String() string { return fmt.Sprintf("%q", string(n)) }
