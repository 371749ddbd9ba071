package partner

import (
	"strings"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Vendor is a counterparty the owner buys from
type Vendor struct {
	shared.OwnedAggregateRoot
	Name    string
	NameKey string
	Service string // what the vendor supplies, free text
	Contact Contact
}

// NewVendor creates a vendor. The name is trimmed and must not be blank.
func NewVendor(ownerID uuid.UUID, name, service string, contact Contact) (*Vendor, error) {
	name, err := validateName("Vendor", name)
	if err != nil {
		return nil, err
	}
	contact, err = contact.Normalize()
	if err != nil {
		return nil, err
	}

	vendor := &Vendor{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Name:               name,
		NameKey:            valueobject.NameKey(name),
		Service:            strings.TrimSpace(service),
		Contact:            contact,
	}
	vendor.AddDomainEvent(NewCounterpartyCreatedEvent(AggregateTypeVendor, vendor.ID, ownerID, vendor.Name))
	return vendor, nil
}

// Update replaces the vendor's name, service and contact details
func (v *Vendor) Update(name, service string, contact Contact) error {
	name, err := validateName("Vendor", name)
	if err != nil {
		return err
	}
	contact, err = contact.Normalize()
	if err != nil {
		return err
	}
	v.Name = name
	v.NameKey = valueobject.NameKey(name)
	v.Service = strings.TrimSpace(service)
	v.Contact = contact
	v.Touch()
	v.IncrementVersion()
	return nil
}
