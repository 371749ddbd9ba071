package business

import (
	"strings"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate and event type constants
const (
	AggregateTypeBusiness    = "Business"
	EventTypeBusinessCreated = "BusinessCreated"
	EventTypeBusinessUpdated = "BusinessUpdated"
)

// Profile holds the editable attributes of a business
type Profile struct {
	Name             string
	Currency         string
	TaxRate          decimal.Decimal // percent, 0..100
	PaymentTermsDays *int
	InvoiceNotes     string
	Logo             string
	Phone            string
	Email            string
	Address          string
	Website          string
}

// Business is a company run by the owner. Quotations and transactions are
// recorded against a business and inherit its currency and default tax rate.
type Business struct {
	shared.OwnedAggregateRoot
	Name             string
	Currency         valueobject.Currency
	TaxRate          decimal.Decimal
	PaymentTermsDays *int
	InvoiceNotes     string
	Logo             string
	Phone            string
	Email            string
	Address          string
	Website          string
}

// NewBusiness creates a business during onboarding
func NewBusiness(ownerID uuid.UUID, profile Profile) (*Business, error) {
	b := &Business{OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID)}
	if err := b.apply(profile); err != nil {
		return nil, err
	}
	b.AddDomainEvent(&BusinessEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBusinessCreated, AggregateTypeBusiness, b.ID, ownerID),
		Name:            b.Name,
		Currency:        b.Currency,
	})
	return b, nil
}

// Update replaces the business profile
func (b *Business) Update(profile Profile) error {
	if err := b.apply(profile); err != nil {
		return err
	}
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(&BusinessEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBusinessUpdated, AggregateTypeBusiness, b.ID, b.OwnerID),
		Name:            b.Name,
		Currency:        b.Currency,
	})
	return nil
}

func (b *Business) apply(p Profile) error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return shared.NewValidationError("Business name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("Business name cannot exceed 200 characters")
	}
	currency := valueobject.DefaultCurrency
	if strings.TrimSpace(p.Currency) != "" {
		c, err := valueobject.ParseCurrency(p.Currency)
		if err != nil {
			return shared.NewValidationError(err.Error())
		}
		currency = c
	}
	if p.TaxRate.IsNegative() || p.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewValidationError("Tax rate must be between 0 and 100")
	}
	if p.PaymentTermsDays != nil && *p.PaymentTermsDays < 0 {
		return shared.NewValidationError("Payment terms cannot be negative")
	}

	b.Name = name
	b.Currency = currency
	b.TaxRate = p.TaxRate
	b.PaymentTermsDays = p.PaymentTermsDays
	b.InvoiceNotes = strings.TrimSpace(p.InvoiceNotes)
	b.Logo = strings.TrimSpace(p.Logo)
	b.Phone = strings.TrimSpace(p.Phone)
	b.Email = strings.TrimSpace(p.Email)
	b.Address = strings.TrimSpace(p.Address)
	b.Website = strings.TrimSpace(p.Website)
	return nil
}

// BusinessEvent is published when a business is created or updated
type BusinessEvent struct {
	shared.BaseDomainEvent
	Name     string               `json:"name"`
	Currency valueobject.Currency `json:"currency"`
}
