package models

import (
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/business"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BusinessModel is the persistence model for the Business aggregate
type BusinessModel struct {
	AggregateModel
	OwnerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name             string          `gorm:"type:varchar(200);not null"`
	Currency         string          `gorm:"type:varchar(3);not null"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	PaymentTermsDays *int
	InvoiceNotes     string `gorm:"type:text"`
	Logo             string `gorm:"type:text"`
	Phone            string `gorm:"type:varchar(50)"`
	Email            string `gorm:"type:varchar(200)"`
	Address          string `gorm:"type:text"`
	Website          string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (BusinessModel) TableName() string {
	return "businesses"
}

// ToDomain converts the model to a domain Business
func (m *BusinessModel) ToDomain() *business.Business {
	return &business.Business{
		OwnedAggregateRoot: m.toOwned(m.OwnerID),
		Name:               m.Name,
		Currency:           valueobject.Currency(m.Currency),
		TaxRate:            m.TaxRate,
		PaymentTermsDays:   m.PaymentTermsDays,
		InvoiceNotes:       m.InvoiceNotes,
		Logo:               m.Logo,
		Phone:              m.Phone,
		Email:              m.Email,
		Address:            m.Address,
		Website:            m.Website,
	}
}

// BusinessModelFromDomain creates a model from a domain Business
func BusinessModelFromDomain(b *business.Business) *BusinessModel {
	m := &BusinessModel{
		OwnerID:          b.OwnerID,
		Name:             b.Name,
		Currency:         string(b.Currency),
		TaxRate:          b.TaxRate,
		PaymentTermsDays: b.PaymentTermsDays,
		InvoiceNotes:     b.InvoiceNotes,
		Logo:             b.Logo,
		Phone:            b.Phone,
		Email:            b.Email,
		Address:          b.Address,
		Website:          b.Website,
	}
	m.fromOwned(b.OwnedAggregateRoot)
	return m
}

// SettingsModel is the persistence model for per-owner settings.
// There is at most one row per owner.
type SettingsModel struct {
	AggregateModel
	OwnerID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_settings_owner"`
	Theme      string    `gorm:"type:varchar(10);not null;default:'light'"`
	PINEnabled bool      `gorm:"column:pin_enabled;not null;default:false"`
	PINHash    string    `gorm:"column:pin_hash;type:varchar(100)"`
}

// TableName returns the table name for GORM
func (SettingsModel) TableName() string {
	return "settings"
}

// ToDomain converts the model to domain Settings
func (m *SettingsModel) ToDomain() *business.Settings {
	return &business.Settings{
		OwnedAggregateRoot: m.toOwned(m.OwnerID),
		Theme:              business.Theme(m.Theme),
		PINEnabled:         m.PINEnabled,
		PINHash:            m.PINHash,
	}
}

// SettingsModelFromDomain creates a model from domain Settings
func SettingsModelFromDomain(s *business.Settings) *SettingsModel {
	m := &SettingsModel{
		OwnerID:    s.OwnerID,
		Theme:      string(s.Theme),
		PINEnabled: s.PINEnabled,
		PINHash:    s.PINHash,
	}
	m.fromOwned(s.OwnedAggregateRoot)
	return m
}
