package finance

import (
	"context"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// TransactionFilter narrows transaction listings
type TransactionFilter struct {
	shared.Filter
	BusinessID         *uuid.UUID
	Type               valueobject.TransactionType
	Status             PaymentStatus // overdue is evaluated against AsOf
	ClientID           *uuid.UUID
	VendorID           *uuid.UUID
	RelatedQuotationID *uuid.UUID
	From               *time.Time
	To                 *time.Time
	HasOrder           *bool
	AsOf               time.Time
}

// TransactionRepository defines the interface for transaction persistence
type TransactionRepository interface {
	// FindByID finds a transaction within an owner's scope
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*Transaction, error)

	// FindAll lists transactions and returns the total match count
	FindAll(ctx context.Context, ownerID uuid.UUID, filter TransactionFilter) ([]Transaction, int64, error)

	// FindOverdue lists unsettled transactions of every owner whose due
	// date is before asOf, oldest due date first
	FindOverdue(ctx context.Context, asOf time.Time, limit int) ([]Transaction, error)

	// CountByRelatedQuotation counts invoices issued from a quotation
	CountByRelatedQuotation(ctx context.Context, ownerID, quotationID uuid.UUID) (int64, error)

	// Create inserts a new transaction
	Create(ctx context.Context, transaction *Transaction) error

	// Update saves a modified transaction with an optimistic version check
	// against transaction.Version - 1
	Update(ctx context.Context, transaction *Transaction) error

	// Delete removes a transaction
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
