package finance

// PaymentStatus represents how much of a transaction has been settled
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusVoided        PaymentStatus = "voided"
	// PaymentStatusOverdue is never stored. It is derived at read time by
	// Transaction.DisplayStatus from the due date.
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartiallyPaid, PaymentStatusPaid,
		PaymentStatusVoided, PaymentStatusOverdue:
		return true
	}
	return false
}

// IsStored reports whether the status may be persisted
func (s PaymentStatus) IsStored() bool {
	return s.IsValid() && s != PaymentStatusOverdue
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsSettled returns true when nothing more can be collected
func (s PaymentStatus) IsSettled() bool {
	return s == PaymentStatusPaid || s == PaymentStatusVoided
}

// PaymentMethod is how a payment was received
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodOther        PaymentMethod = "other"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodOther:
		return true
	}
	return false
}

// OrderStatus tracks fulfillment, independent of payment
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusInProgress     OrderStatus = "in_progress"
	OrderStatusReadyForPickup OrderStatus = "ready_for_pickup"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusInProgress:     {OrderStatusReadyForPickup, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusReadyForPickup: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusShipped:        {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:      {},
	OrderStatusCancelled:      {},
}

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsTerminal returns true for completed and cancelled orders
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo reports whether next directly follows s in the
// fulfillment pipeline: pending → in_progress → ready_for_pickup|shipped →
// completed, with cancelled reachable from any non-completed state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FulfillmentType says who fulfils an order
type FulfillmentType string

const (
	FulfillmentInHouse    FulfillmentType = "in-house"
	FulfillmentOutsourced FulfillmentType = "outsourced"
)

// IsValid checks if the fulfillment type is valid
func (f FulfillmentType) IsValid() bool {
	return f == FulfillmentInHouse || f == FulfillmentOutsourced
}

// DeliveryMethod says how an order reaches the client
type DeliveryMethod string

const (
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryDelivery DeliveryMethod = "delivery"
	DeliveryDigital  DeliveryMethod = "digital"
	DeliveryShipping DeliveryMethod = "shipping"
)

// IsValid checks if the delivery method is valid
func (d DeliveryMethod) IsValid() bool {
	switch d {
	case DeliveryPickup, DeliveryDelivery, DeliveryDigital, DeliveryShipping:
		return true
	}
	return false
}
