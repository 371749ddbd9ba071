package catalog

import (
	"fmt"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeItem is the aggregate type of catalog items
const AggregateTypeItem = "Item"

// EventTypeItemCreated is published when a catalog item is created
const EventTypeItemCreated = "ItemCreated"

// Item is a reusable product or service template. Items are unique per
// owner by (name, type): "Consulting" income and "Consulting" expense are
// two different items.
type Item struct {
	shared.OwnedAggregateRoot
	Name      string
	NameKey   string
	Type      valueobject.TransactionType
	Nature    valueobject.Nature
	UnitPrice *decimal.Decimal
}

// ItemAttributes carries the attributes a new item is created with
type ItemAttributes struct {
	Type      valueobject.TransactionType
	Nature    valueobject.Nature
	UnitPrice *decimal.Decimal
}

// NewItem creates a catalog item
func NewItem(ownerID uuid.UUID, name string, attrs ItemAttributes) (*Item, error) {
	name = valueobject.CleanName(name)
	if name == "" {
		return nil, shared.NewValidationError("Item name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("Item name cannot exceed 200 characters")
	}
	if !attrs.Type.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid item type: %s", attrs.Type))
	}
	if attrs.Nature == "" {
		attrs.Nature = valueobject.NatureService
	}
	if !attrs.Nature.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid item nature: %s", attrs.Nature))
	}
	var price *decimal.Decimal
	if attrs.UnitPrice != nil {
		if attrs.UnitPrice.IsNegative() {
			return nil, shared.NewValidationError("Unit price cannot be negative")
		}
		p := valueobject.Round2(*attrs.UnitPrice)
		price = &p
	}

	item := &Item{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Name:               name,
		NameKey:            valueobject.NameKey(name),
		Type:               attrs.Type,
		Nature:             attrs.Nature,
		UnitPrice:          price,
	}
	item.AddDomainEvent(&ItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemCreated, AggregateTypeItem, item.ID, ownerID),
		Name:            item.Name,
		Type:            item.Type,
	})
	return item, nil
}

// ItemCreatedEvent is published when a catalog item is created
type ItemCreatedEvent struct {
	shared.BaseDomainEvent
	Name string                      `json:"name"`
	Type valueobject.TransactionType `json:"type"`
}
