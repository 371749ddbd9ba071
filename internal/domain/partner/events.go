package partner

import (
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeClient = "Client"
	AggregateTypeVendor = "Vendor"
)

// Event type constants
const (
	EventTypeClientCreated = "ClientCreated"
	EventTypeVendorCreated = "VendorCreated"
)

// CounterpartyCreatedEvent is published when a client or vendor is created
type CounterpartyCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewCounterpartyCreatedEvent creates a new CounterpartyCreatedEvent
func NewCounterpartyCreatedEvent(aggType string, id, ownerID uuid.UUID, name string) *CounterpartyCreatedEvent {
	eventType := EventTypeClientCreated
	if aggType == AggregateTypeVendor {
		eventType = EventTypeVendorCreated
	}
	return &CounterpartyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggType, id, ownerID),
		Name:            name,
	}
}
