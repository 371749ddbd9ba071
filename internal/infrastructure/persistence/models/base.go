package models

import (
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateModel provides the identity, timestamp and version columns of
// every aggregate. OwnerID is declared on each model so it can take part in
// that model's composite unique index.
type AggregateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Version   int       `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// fromOwned populates the base columns from a domain aggregate
func (m *AggregateModel) fromOwned(a shared.OwnedAggregateRoot) {
	m.ID = a.ID
	m.Version = a.Version
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
}

// toOwned builds the domain aggregate base
func (m *AggregateModel) toOwned(ownerID uuid.UUID) shared.OwnedAggregateRoot {
	return shared.OwnedAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		OwnerID: ownerID,
	}
}

// All returns every model, in dependency order, for schema migration
func All() []any {
	return []any{
		&BusinessModel{},
		&SettingsModel{},
		&ClientModel{},
		&VendorModel{},
		&ItemModel{},
		&CategoryModel{},
		&QuotationModel{},
		&TransactionModel{},
		&DocumentSequenceModel{},
	}
}
