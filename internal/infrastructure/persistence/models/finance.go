package models

import (
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/document"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/finance"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for the Transaction aggregate.
// Payments and line items are JSON documents; the optional order is
// flattened into nullable order_* columns.
type TransactionModel struct {
	AggregateModel
	OwnerID            uuid.UUID          `gorm:"type:uuid;not null;index;uniqueIndex:idx_transactions_owner_number,priority:1"`
	BusinessID         uuid.UUID          `gorm:"type:uuid;not null;index"`
	TransactionNumber  string             `gorm:"type:varchar(30);not null;uniqueIndex:idx_transactions_owner_number,priority:2"`
	Type               string             `gorm:"type:varchar(10);not null;index"`
	Name               string             `gorm:"type:varchar(200);not null"`
	Description        string             `gorm:"type:text"`
	Amount             decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Currency           string             `gorm:"type:varchar(3);not null"`
	Date               time.Time          `gorm:"not null;index"`
	DueDate            *time.Time         `gorm:"index"`
	Category           string             `gorm:"type:varchar(100);not null"`
	ReceiptImageKey    string             `gorm:"type:varchar(500)"`
	ClientID           *uuid.UUID         `gorm:"type:uuid;index"`
	VendorID           *uuid.UUID         `gorm:"type:uuid;index"`
	Nature             string             `gorm:"type:varchar(10);not null;default:'service'"`
	Quantity           *decimal.Decimal   `gorm:"type:decimal(18,4)"`
	UnitPrice          *decimal.Decimal   `gorm:"type:decimal(18,2)"`
	RelatedQuotationID *uuid.UUID         `gorm:"type:uuid;index"`
	Status             string             `gorm:"type:varchar(20);not null;default:'unpaid';index"`
	Payments           finance.Payments   `gorm:"type:jsonb;not null"`
	LineItems          document.LineItems `gorm:"type:jsonb;not null"`
	OrderStatus        *string            `gorm:"type:varchar(30)"`
	FulfillmentType    *string            `gorm:"type:varchar(20)"`
	DeliveryMethod     *string            `gorm:"type:varchar(20)"`
	TrackingNumber     string             `gorm:"type:varchar(100)"`
	ShippingNotes      string             `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the model to a domain Transaction
func (m *TransactionModel) ToDomain() *finance.Transaction {
	t := &finance.Transaction{
		OwnedAggregateRoot: m.toOwned(m.OwnerID),
		BusinessID:         m.BusinessID,
		TransactionNumber:  m.TransactionNumber,
		Type:               valueobject.TransactionType(m.Type),
		Name:               m.Name,
		Description:        m.Description,
		Amount:             m.Amount,
		Currency:           valueobject.Currency(m.Currency),
		Date:               m.Date,
		DueDate:            m.DueDate,
		Category:           m.Category,
		ReceiptImageKey:    m.ReceiptImageKey,
		ClientID:           m.ClientID,
		VendorID:           m.VendorID,
		Nature:             valueobject.Nature(m.Nature),
		Quantity:           m.Quantity,
		UnitPrice:          m.UnitPrice,
		RelatedQuotationID: m.RelatedQuotationID,
		Status:             finance.PaymentStatus(m.Status),
		Payments:           m.Payments,
		LineItems:          m.LineItems,
	}
	if t.Payments == nil {
		t.Payments = finance.Payments{}
	}
	if m.OrderStatus != nil {
		t.Order = &finance.Order{
			Status:         finance.OrderStatus(*m.OrderStatus),
			TrackingNumber: m.TrackingNumber,
			ShippingNotes:  m.ShippingNotes,
		}
		if m.FulfillmentType != nil {
			t.Order.FulfillmentType = finance.FulfillmentType(*m.FulfillmentType)
		}
		if m.DeliveryMethod != nil {
			t.Order.DeliveryMethod = finance.DeliveryMethod(*m.DeliveryMethod)
		}
	}
	return t
}

// TransactionModelFromDomain creates a model from a domain Transaction
func TransactionModelFromDomain(t *finance.Transaction) *TransactionModel {
	m := &TransactionModel{
		OwnerID:            t.OwnerID,
		BusinessID:         t.BusinessID,
		TransactionNumber:  t.TransactionNumber,
		Type:               string(t.Type),
		Name:               t.Name,
		Description:        t.Description,
		Amount:             t.Amount,
		Currency:           string(t.Currency),
		Date:               t.Date.UTC(),
		DueDate:            utcPtr(t.DueDate),
		Category:           t.Category,
		ReceiptImageKey:    t.ReceiptImageKey,
		ClientID:           t.ClientID,
		VendorID:           t.VendorID,
		Nature:             string(t.Nature),
		Quantity:           t.Quantity,
		UnitPrice:          t.UnitPrice,
		RelatedQuotationID: t.RelatedQuotationID,
		Status:             string(t.Status),
		Payments:           t.Payments,
		LineItems:          t.LineItems,
	}
	if m.Payments == nil {
		m.Payments = finance.Payments{}
	}
	if m.LineItems == nil {
		m.LineItems = document.LineItems{}
	}
	if o := t.Order; o != nil {
		status := string(o.Status)
		fulfillment := string(o.FulfillmentType)
		delivery := string(o.DeliveryMethod)
		m.OrderStatus = &status
		m.FulfillmentType = &fulfillment
		m.DeliveryMethod = &delivery
		m.TrackingNumber = o.TrackingNumber
		m.ShippingNotes = o.ShippingNotes
	}
	m.fromOwned(t.OwnedAggregateRoot)
	return m
}

// utcPtr normalizes stored instants to UTC so range comparisons hold on
// drivers that store timestamps as text
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
