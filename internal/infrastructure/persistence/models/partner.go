package models

import (
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/partner"
	"github.com/google/uuid"
)

// ClientModel is the persistence model for the Client aggregate
type ClientModel struct {
	AggregateModel
	OwnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_clients_owner_name_key,priority:1"`
	Name    string    `gorm:"type:varchar(200);not null"`
	NameKey string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_clients_owner_name_key,priority:2"`
	Email   string    `gorm:"type:varchar(200)"`
	Phone   string    `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the model to a domain Client
func (m *ClientModel) ToDomain() *partner.Client {
	return &partner.Client{
		OwnedAggregateRoot: m.toOwned(m.OwnerID),
		Name:               m.Name,
		NameKey:            m.NameKey,
		Contact:            partner.Contact{Email: m.Email, Phone: m.Phone},
	}
}

// ClientModelFromDomain creates a model from a domain Client
func ClientModelFromDomain(c *partner.Client) *ClientModel {
	m := &ClientModel{
		OwnerID: c.OwnerID,
		Name:    c.Name,
		NameKey: c.NameKey,
		Email:   c.Contact.Email,
		Phone:   c.Contact.Phone,
	}
	m.fromOwned(c.OwnedAggregateRoot)
	return m
}

// VendorModel is the persistence model for the Vendor aggregate
type VendorModel struct {
	AggregateModel
	OwnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vendors_owner_name_key,priority:1"`
	Name    string    `gorm:"type:varchar(200);not null"`
	NameKey string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_vendors_owner_name_key,priority:2"`
	Service string    `gorm:"type:varchar(500)"`
	Email   string    `gorm:"type:varchar(200)"`
	Phone   string    `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (VendorModel) TableName() string {
	return "vendors"
}

// ToDomain converts the model to a domain Vendor
func (m *VendorModel) ToDomain() *partner.Vendor {
	return &partner.Vendor{
		OwnedAggregateRoot: m.toOwned(m.OwnerID),
		Name:               m.Name,
		NameKey:            m.NameKey,
		Service:            m.Service,
		Contact:            partner.Contact{Email: m.Email, Phone: m.Phone},
	}
}

// VendorModelFromDomain creates a model from a domain Vendor
func VendorModelFromDomain(v *partner.Vendor) *VendorModel {
	m := &VendorModel{
		OwnerID: v.OwnerID,
		Name:    v.Name,
		NameKey: v.NameKey,
		Service: v.Service,
		Email:   v.Contact.Email,
		Phone:   v.Contact.Phone,
	}
	m.fromOwned(v.OwnedAggregateRoot)
	return m
}
