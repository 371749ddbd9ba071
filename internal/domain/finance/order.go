package finance

import (
	"fmt"
	"strings"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
)

// Order holds the fulfillment details of a transaction that is also an order
type Order struct {
	Status          OrderStatus
	FulfillmentType FulfillmentType
	DeliveryMethod  DeliveryMethod
	TrackingNumber  string
	ShippingNotes   string
}

// normalize fills defaults and validates the enums
func (o *Order) normalize() error {
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	if o.FulfillmentType == "" {
		o.FulfillmentType = FulfillmentInHouse
	}
	if o.DeliveryMethod == "" {
		o.DeliveryMethod = DeliveryPickup
	}
	if !o.Status.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid order status: %s", o.Status))
	}
	if !o.FulfillmentType.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid fulfillment type: %s", o.FulfillmentType))
	}
	if !o.DeliveryMethod.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid delivery method: %s", o.DeliveryMethod))
	}
	o.TrackingNumber = strings.TrimSpace(o.TrackingNumber)
	o.ShippingNotes = strings.TrimSpace(o.ShippingNotes)
	return nil
}

// OrderUpdate is a partial change to an order. Nil fields are left as they are.
type OrderUpdate struct {
	Status          *OrderStatus
	FulfillmentType *FulfillmentType
	DeliveryMethod  *DeliveryMethod
	TrackingNumber  *string
	ShippingNotes   *string
}

// IsEmpty reports whether the update changes nothing
func (u OrderUpdate) IsEmpty() bool {
	return u.Status == nil && u.FulfillmentType == nil && u.DeliveryMethod == nil &&
		u.TrackingNumber == nil && u.ShippingNotes == nil
}

// OrderTransitionPolicy decides which order status changes are allowed
type OrderTransitionPolicy int

const (
	// OrderTransitionsStrict only allows moves along the fulfillment pipeline
	OrderTransitionsStrict OrderTransitionPolicy = iota
	// OrderTransitionsFree allows any valid status at any time
	OrderTransitionsFree
)

func (p OrderTransitionPolicy) allows(from, to OrderStatus) bool {
	if p == OrderTransitionsFree {
		return true
	}
	return from.CanTransitionTo(to)
}
