package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/google/uuid"
)

// lockKey builds the key an owner-scoped lock is held under
func lockKey(prefix string, ownerID uuid.UUID, scope string) string {
	return fmt.Sprintf("%slock:%s:%s", prefix, ownerID, scope)
}

type keyedLock struct {
	sem  chan struct{}
	refs int
}

// InMemoryOwnerLocker serializes work per (owner, scope) inside one process.
// Waiting honours context cancellation; idle keys are released.
type InMemoryOwnerLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

// NewInMemoryOwnerLocker creates an in-process locker
func NewInMemoryOwnerLocker() *InMemoryOwnerLocker {
	return &InMemoryOwnerLocker{locks: make(map[string]*keyedLock)}
}

// Lock blocks until the (owner, scope) lock is free or ctx is done
func (l *InMemoryOwnerLocker) Lock(ctx context.Context, ownerID uuid.UUID, scope string) (shared.UnlockFunc, error) {
	key := lockKey("", ownerID, scope)

	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl)
		return nil, fmt.Errorf("acquire lock %s: %w", key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.sem
			l.release(key, kl)
		})
	}, nil
}

func (l *InMemoryOwnerLocker) release(key string, kl *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// size reports how many keys are currently tracked
func (l *InMemoryOwnerLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

var _ shared.OwnerLocker = (*InMemoryOwnerLocker)(nil)
