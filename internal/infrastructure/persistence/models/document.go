package models

import (
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/document"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotationModel is the persistence model for the Quotation aggregate.
// Line items are stored as a JSON document.
type QuotationModel struct {
	AggregateModel
	OwnerID         uuid.UUID          `gorm:"type:uuid;not null;index;uniqueIndex:idx_quotations_owner_number,priority:1"`
	BusinessID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	QuotationNumber string             `gorm:"type:varchar(30);not null;uniqueIndex:idx_quotations_owner_number,priority:2"`
	ClientID        uuid.UUID          `gorm:"type:uuid;not null;index"`
	Date            time.Time          `gorm:"not null"`
	ExpiryDate      time.Time          `gorm:"not null"`
	Items           document.LineItems `gorm:"type:jsonb;not null"`
	Subtotal        decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	TaxRate         decimal.Decimal    `gorm:"type:decimal(5,2);not null;default:0"`
	Total           decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Notes           string             `gorm:"type:text"`
	Status          string             `gorm:"type:varchar(20);not null;default:'draft';index"`
}

// TableName returns the table name for GORM
func (QuotationModel) TableName() string {
	return "quotations"
}

// ToDomain converts the model to a domain Quotation
func (m *QuotationModel) ToDomain() *document.Quotation {
	return &document.Quotation{
		OwnedAggregateRoot: m.toOwned(m.OwnerID),
		BusinessID:         m.BusinessID,
		QuotationNumber:    m.QuotationNumber,
		ClientID:           m.ClientID,
		Date:               m.Date,
		ExpiryDate:         m.ExpiryDate,
		Items:              m.Items,
		Subtotal:           m.Subtotal,
		TaxRate:            m.TaxRate,
		Total:              m.Total,
		Notes:              m.Notes,
		Status:             document.QuotationStatus(m.Status),
	}
}

// QuotationModelFromDomain creates a model from a domain Quotation
func QuotationModelFromDomain(q *document.Quotation) *QuotationModel {
	m := &QuotationModel{
		OwnerID:         q.OwnerID,
		BusinessID:      q.BusinessID,
		QuotationNumber: q.QuotationNumber,
		ClientID:        q.ClientID,
		Date:            q.Date.UTC(),
		ExpiryDate:      q.ExpiryDate.UTC(),
		Items:           q.Items,
		Subtotal:        q.Subtotal,
		TaxRate:         q.TaxRate,
		Total:           q.Total,
		Notes:           q.Notes,
		Status:          string(q.Status),
	}
	if m.Items == nil {
		m.Items = document.LineItems{}
	}
	m.fromOwned(q.OwnedAggregateRoot)
	return m
}
