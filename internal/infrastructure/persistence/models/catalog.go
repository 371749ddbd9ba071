package models

import (
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/catalog"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemModel is the persistence model for catalog items.
// (owner_id, type, name_key) is unique.
type ItemModel struct {
	AggregateModel
	OwnerID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_items_owner_type_name_key,priority:1"`
	Type      string           `gorm:"type:varchar(10);not null;uniqueIndex:idx_items_owner_type_name_key,priority:2"`
	NameKey   string           `gorm:"type:varchar(200);not null;uniqueIndex:idx_items_owner_type_name_key,priority:3"`
	Name      string           `gorm:"type:varchar(200);not null"`
	Nature    string           `gorm:"type:varchar(10);not null;default:'service'"`
	UnitPrice *decimal.Decimal `gorm:"type:decimal(18,2)"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the model to a domain Item
func (m *ItemModel) ToDomain() *catalog.Item {
	return &catalog.Item{
		OwnedAggregateRoot: m.toOwned(m.OwnerID),
		Name:               m.Name,
		NameKey:            m.NameKey,
		Type:               valueobject.TransactionType(m.Type),
		Nature:             valueobject.Nature(m.Nature),
		UnitPrice:          m.UnitPrice,
	}
}

// ItemModelFromDomain creates a model from a domain Item
func ItemModelFromDomain(i *catalog.Item) *ItemModel {
	m := &ItemModel{
		OwnerID:   i.OwnerID,
		Type:      string(i.Type),
		NameKey:   i.NameKey,
		Name:      i.Name,
		Nature:    string(i.Nature),
		UnitPrice: i.UnitPrice,
	}
	m.fromOwned(i.OwnedAggregateRoot)
	return m
}

// CategoryModel is the persistence model for categories.
// (owner_id, type, name_key) is unique.
type CategoryModel struct {
	AggregateModel
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_categories_owner_type_name_key,priority:1"`
	Type        string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_categories_owner_type_name_key,priority:2"`
	NameKey     string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_owner_type_name_key,priority:3"`
	Name        string    `gorm:"type:varchar(100);not null"`
	ExpenseType *string   `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the model to a domain Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	var expenseType *catalog.ExpenseType
	if m.ExpenseType != nil {
		et := catalog.ExpenseType(*m.ExpenseType)
		expenseType = &et
	}
	return &catalog.Category{
		OwnedAggregateRoot: m.toOwned(m.OwnerID),
		Name:               m.Name,
		NameKey:            m.NameKey,
		Type:               valueobject.TransactionType(m.Type),
		ExpenseType:        expenseType,
	}
}

// CategoryModelFromDomain creates a model from a domain Category
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{
		OwnerID: c.OwnerID,
		Type:    string(c.Type),
		NameKey: c.NameKey,
		Name:    c.Name,
	}
	if c.ExpenseType != nil {
		et := string(*c.ExpenseType)
		m.ExpenseType = &et
	}
	m.fromOwned(c.OwnedAggregateRoot)
	return m
}
