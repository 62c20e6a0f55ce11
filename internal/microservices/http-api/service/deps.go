package service

import (
	"context"
	"errors"

	"readhub/internal/cache"
)

// ProgressCache is satisfied by *cache.ProgressCache.
type ProgressCache interface {
	Get(ctx context.Context, userID string) (*cache.ProgressSnapshot, error)
	Set(ctx context.Context, snap *cache.ProgressSnapshot) error
	Invalidate(ctx context.Context, userID string) error
}

// UserLocker is satisfied by *cache.UserLocker.
type UserLocker interface {
	Lock(ctx context.Context, userID string) (func(), error)
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

func lockUser(ctx context.Context, locker UserLocker, userID string) (func(), error) {
	if locker == nil {
		locker = noopLocker{}
	}
	unlock, err := locker.Lock(ctx, userID)
	if err != nil {
		if errors.Is(err, cache.ErrLockTimeout) {
			return nil, ErrBusy
		}
		return nil, storeErr("lock user", err)
	}
	return unlock, nil
}
