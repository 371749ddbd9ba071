package partner

import (
	"context"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// FindByID finds a client by ID within an owner's scope
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*Client, error)

	// FindByNameKey finds a client whose normalized name equals key
	FindByNameKey(ctx context.Context, ownerID uuid.UUID, key string) (*Client, error)

	// FindAll lists clients, optionally filtered by filter.Search
	FindAll(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]Client, error)

	// Count counts clients matching the filter
	Count(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a client.
	// A duplicate name within the owner's scope returns shared.ErrAlreadyExists.
	Save(ctx context.Context, client *Client) error

	// Delete removes a client
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*Vendor, error)
	FindByNameKey(ctx context.Context, ownerID uuid.UUID, key string) (*Vendor, error)
	FindAll(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]Vendor, error)
	Count(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, vendor *Vendor) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
