package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/google/uuid"
)

// InMemoryNumberSequence keeps counters in process memory. Counters start
// over with the process, so it only suits tests and throwaway databases.
type InMemoryNumberSequence struct {
	mu       sync.Mutex
	counters map[string]int64
	now      func() time.Time
}

// NewInMemoryNumberSequence creates an in-process number sequence
func NewInMemoryNumberSequence() *InMemoryNumberSequence {
	return &InMemoryNumberSequence{counters: make(map[string]int64), now: time.Now}
}

// Next implements shared.NumberSequence
func (s *InMemoryNumberSequence) Next(ctx context.Context, ownerID uuid.UUID, prefix string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	year := s.now().Year()
	key := fmt.Sprintf("%s:%s:%d", ownerID, prefix, year)

	s.mu.Lock()
	s.counters[key]++
	n := s.counters[key]
	s.mu.Unlock()

	return shared.FormatNumber(prefix, year, n), nil
}

var _ shared.NumberSequence = (*InMemoryNumberSequence)(nil)
