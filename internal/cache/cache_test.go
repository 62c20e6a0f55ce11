package cache

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+mr.Addr()+"/0", "")
	require.NoError(t, err)
	client.Close()

	_, err = NewClient(context.Background(), "not a url", "")
	assert.Error(t, err)
}

func TestProgressCacheRoundTrip(t *testing.T) {
	mr, client := newTestClient(t)
	ctx := context.Background()
	c := NewProgressCache(client, time.Minute)

	miss, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, miss)

	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, c.Set(ctx, &ProgressSnapshot{
		UserID:          "u1",
		XP:              320,
		Level:           3,
		Streak:          4,
		LastReadingDate: "2024-03-10",
		TotalPagesRead:  300,
		UpdatedAt:       now,
	}))

	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(320), got.XP)
	assert.Equal(t, 3, got.Level)
	assert.Equal(t, 4, got.Streak)
	assert.Equal(t, "2024-03-10", got.LastReadingDate)
	assert.True(t, now.Equal(got.UpdatedAt))

	mr.FastForward(2 * time.Minute)
	expired, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestProgressCacheInvalidate(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()
	c := NewProgressCache(client, time.Minute)

	require.NoError(t, c.Set(ctx, &ProgressSnapshot{UserID: "u1", XP: 1, Level: 1}))
	require.NoError(t, c.Invalidate(ctx, "u1"))

	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNilClientIsNoop(t *testing.T) {
	ctx := context.Background()

	c := NewProgressCache(nil, time.Minute)
	assert.NoError(t, c.Set(ctx, &ProgressSnapshot{UserID: "u1"}))
	got, err := c.Get(ctx, "u1")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Invalidate(ctx, "u1"))

	var nilCache *ProgressCache
	assert.NoError(t, nilCache.Invalidate(ctx, "u1"))

	unlock, err := NewUserLocker(nil, time.Second, time.Second, nil).Lock(ctx, "u1")
	require.NoError(t, err)
	unlock()
}

func TestUserLockerExclusive(t *testing.T) {
	mr, client := newTestClient(t)
	ctx := context.Background()
	locker := NewUserLocker(client, 5*time.Second, 5*time.Second, nil)
	locker.interval = 5 * time.Millisecond

	unlock, err := locker.Lock(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(lockKey("u1")))

	// a different user is not blocked
	unlockOther, err := locker.Lock(ctx, "u2")
	require.NoError(t, err)
	unlockOther()

	acquired := make(chan struct{})
	go func() {
		release, err := locker.Lock(ctx, "u1")
		if err == nil {
			release()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first is held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second lock never acquired")
	}
	assert.False(t, mr.Exists(lockKey("u1")))
}

func TestUserLockerTimeout(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()
	locker := NewUserLocker(client, 5*time.Second, 30*time.Millisecond, nil)
	locker.interval = 5 * time.Millisecond

	unlock, err := locker.Lock(ctx, "u1")
	require.NoError(t, err)
	defer unlock()

	_, err = locker.Lock(ctx, "u1")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestUserLockerReleaseKeepsForeignToken(t *testing.T) {
	mr, client := newTestClient(t)
	ctx := context.Background()
	locker := NewUserLocker(client, time.Second, time.Second, nil)

	unlock, err := locker.Lock(ctx, "u1")
	require.NoError(t, err)

	// lock expired and was taken by someone else
	require.NoError(t, mr.Set(lockKey("u1"), "someone-else"))
	unlock()

	v, err := mr.Get(lockKey("u1"))
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
}

func TestUserLockerLogsFailedRelease(t *testing.T) {
	mr, client := newTestClient(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	locker := NewUserLocker(client, time.Second, time.Second, logger)

	unlock, err := locker.Lock(context.Background(), "u1")
	require.NoError(t, err)

	mr.Close()
	unlock()

	assert.Contains(t, logs.String(), "user_lock_release_failed")
	assert.Contains(t, logs.String(), "user_id=u1")
}

func TestUserLockerConcurrentCounter(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()
	locker := NewUserLocker(client, 5*time.Second, 5*time.Second, nil)
	locker.interval = time.Millisecond

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		holders int
		maxSeen int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "u1")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			holders++
			if holders > maxSeen {
				maxSeen = holders
			}
			mu.Unlock()

			time.Sleep(2 * time.Millisecond)

			mu.Lock()
			holders--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}
