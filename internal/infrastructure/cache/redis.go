package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/config"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/logger"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisOwnerLocker serializes work per (owner, scope) across processes
// using redsync mutexes.
type RedisOwnerLocker struct {
	rs         *redsync.Redsync
	keyPrefix  string
	expiry     time.Duration
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewRedisOwnerLocker creates a distributed locker on top of client.
// The lock expiry bounds how long a crashed holder can block others.
func NewRedisOwnerLocker(client redis.UniversalClient, cfg config.RedisConfig, log *zap.Logger) *RedisOwnerLocker {
	if log == nil {
		log = zap.NewNop()
	}
	expiry := cfg.LockTTL
	if expiry <= 0 {
		expiry = 10 * time.Second
	}
	return &RedisOwnerLocker{
		rs:         redsync.New(goredis.NewPool(client)),
		keyPrefix:  cfg.KeyPrefix,
		expiry:     expiry,
		retryDelay: 50 * time.Millisecond,
		logger:     log.Named("redis_lock"),
	}
}

// Lock retries until acquired or ctx is done
func (l *RedisOwnerLocker) Lock(ctx context.Context, ownerID uuid.UUID, scope string) (shared.UnlockFunc, error) {
	key := lockKey(l.keyPrefix, ownerID, scope)
	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(l.expiry),
		// tries are bounded by ctx, not a count
		redsync.WithTries(int(l.expiry/l.retryDelay)+1),
		redsync.WithRetryDelay(l.retryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	return func() {
		// release with a fresh context: the caller's may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if ok, err := mutex.UnlockContext(releaseCtx); !ok || err != nil {
			logger.Or(ctx, l.logger).Warn("failed to release lock",
				zap.String("lock_key", key),
				zap.Error(err),
			)
		}
	}, nil
}

var _ shared.OwnerLocker = (*RedisOwnerLocker)(nil)

// RedisNumberSequence issues document numbers from per-owner INCR counters
type RedisNumberSequence struct {
	client    redis.UniversalClient
	keyPrefix string
	now       func() time.Time
}

// NewRedisNumberSequence creates a Redis-backed number sequence
func NewRedisNumberSequence(client redis.UniversalClient, keyPrefix string) *RedisNumberSequence {
	return &RedisNumberSequence{client: client, keyPrefix: keyPrefix, now: time.Now}
}

// Next increments the (owner, prefix, year) counter
func (s *RedisNumberSequence) Next(ctx context.Context, ownerID uuid.UUID, prefix string) (string, error) {
	year := s.now().Year()
	key := fmt.Sprintf("%sseq:%s:%s:%d", s.keyPrefix, ownerID, prefix, year)
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("increment sequence %s: %w", key, err)
	}
	return shared.FormatNumber(prefix, year, n), nil
}

var _ shared.NumberSequence = (*RedisNumberSequence)(nil)
