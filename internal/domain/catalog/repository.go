package catalog

import (
	"context"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ItemRepository defines the interface for catalog item persistence
type ItemRepository interface {
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*Item, error)

	// FindByNameKey finds the item matching (key, type)
	FindByNameKey(ctx context.Context, ownerID uuid.UUID, key string, itemType valueobject.TransactionType) (*Item, error)

	// FindAll lists items; an empty itemType lists both types
	FindAll(ctx context.Context, ownerID uuid.UUID, itemType valueobject.TransactionType, filter shared.Filter) ([]Item, error)

	// Save creates or updates an item.
	// A duplicate (name, type) returns shared.ErrAlreadyExists.
	Save(ctx context.Context, item *Item) error
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByNameKey(ctx context.Context, ownerID uuid.UUID, key string, categoryType valueobject.TransactionType) (*Category, error)
	FindAll(ctx context.Context, ownerID uuid.UUID, categoryType valueobject.TransactionType) ([]Category, error)
	Save(ctx context.Context, category *Category) error
}
