package document

import (
	"context"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/google/uuid"
)

// QuotationFilter narrows quotation listings
type QuotationFilter struct {
	shared.Filter
	BusinessID *uuid.UUID
	ClientID   *uuid.UUID
	Status     QuotationStatus
}

// QuotationRepository defines the interface for quotation persistence
type QuotationRepository interface {
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*Quotation, error)
	FindAll(ctx context.Context, ownerID uuid.UUID, filter QuotationFilter) ([]Quotation, int64, error)

	// Create inserts a new quotation
	Create(ctx context.Context, quotation *Quotation) error

	// Update saves a modified quotation. It fails with
	// shared.ErrConcurrencyConflict when the stored version is not the one
	// the change was based on (quotation.Version - 1).
	Update(ctx context.Context, quotation *Quotation) error

	// Delete removes the quotation. Transactions referencing it are kept.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
