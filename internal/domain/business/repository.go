package business

import (
	"context"

	"github.com/google/uuid"
)

// BusinessRepository defines the interface for business persistence
type BusinessRepository interface {
	FindByID(ctx context.Context, ownerID, id uuid.UUID) (*Business, error)
	FindAll(ctx context.Context, ownerID uuid.UUID) ([]Business, error)
	Count(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Save(ctx context.Context, business *Business) error
}

// SettingsRepository defines the interface for settings persistence
type SettingsRepository interface {
	// FindByOwner returns shared.ErrNotFound when the owner has no settings yet
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}
