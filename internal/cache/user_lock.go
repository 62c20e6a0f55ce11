package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockTimeout = errors.New("timed out waiting for user lock")

// releaseScript deletes the key only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// UserLocker serializes work per user across API instances. A nil client
// hands out no-op locks.
//
// ttl bounds how long a holder may keep the lock; a holder still running when
// it lapses no longer excludes other writers, so ttl must exceed the longest
// request. maxWait bounds how long Lock polls for a busy lock.
type UserLocker struct {
	client   *redis.Client
	ttl      time.Duration
	maxWait  time.Duration
	interval time.Duration
	logger   *slog.Logger
}

func NewUserLocker(client *redis.Client, ttl, maxWait time.Duration, logger *slog.Logger) *UserLocker {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserLocker{
		client:   client,
		ttl:      ttl,
		maxWait:  maxWait,
		interval: 50 * time.Millisecond,
		logger:   logger,
	}
}

func lockKey(userID string) string {
	return fmt.Sprintf("lock:user:%s", userID)
}

// Lock blocks until the user's lock is held, ctx ends or maxWait passes.
// The returned func releases it.
func (l *UserLocker) Lock(ctx context.Context, userID string) (func(), error) {
	if l == nil || l.client == nil {
		return func() {}, nil
	}

	key := lockKey(userID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.maxWait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			return func() {
				// release must outlive a cancelled request context
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
					l.logger.Warn("user_lock_release_failed", "user_id", userID, "error", err)
				}
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.interval):
		}
	}
}
