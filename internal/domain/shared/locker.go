package shared

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UnlockFunc releases a lock obtained from an OwnerLocker
type UnlockFunc func()

// OwnerLocker serializes mutations of one owner's data set.
// The scope narrows the lock (for example "client" or "transaction") so
// unrelated operations of the same owner do not wait on each other.
type OwnerLocker interface {
	Lock(ctx context.Context, ownerID uuid.UUID, scope string) (UnlockFunc, error)
}

// NumberSequence hands out human-readable document numbers per owner.
type NumberSequence interface {
	// Next returns the next number for prefix, e.g. "INV-2026-00042".
	Next(ctx context.Context, ownerID uuid.UUID, prefix string) (string, error)
}

// FormatNumber renders a document number such as INV-2026-00042
func FormatNumber(prefix string, year int, n int64) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, year, n)
}
