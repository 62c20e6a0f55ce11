package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProgressSnapshot is the cached view of a user's profile counters.
type ProgressSnapshot struct {
	UserID          string
	XP              int64
	Level           int
	Streak          int
	LastReadingDate string
	TotalPagesRead  int64
	UpdatedAt       time.Time
}

// ProgressCache keeps ProgressSnapshots in Redis hashes. A nil client turns
// every call into a miss or a no-op.
type ProgressCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProgressCache(client *redis.Client, ttl time.Duration) *ProgressCache {
	return &ProgressCache{client: client, ttl: ttl}
}

func progressKey(userID string) string {
	return fmt.Sprintf("progress:user:%s", userID)
}

func (c *ProgressCache) Set(ctx context.Context, snap *ProgressSnapshot) error {
	if c == nil || c.client == nil {
		return nil
	}
	key := progressKey(snap.UserID)
	fields := map[string]any{
		"user_id":           snap.UserID,
		"xp":                snap.XP,
		"level":             snap.Level,
		"streak":            snap.Streak,
		"last_reading_date": snap.LastReadingDate,
		"total_pages_read":  snap.TotalPagesRead,
		"updated_at":        snap.UpdatedAt.Format(time.RFC3339Nano),
	}

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Get returns nil, nil on a miss.
func (c *ProgressCache) Get(ctx context.Context, userID string) (*ProgressSnapshot, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	fields, err := c.client.HGetAll(ctx, progressKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	snap := &ProgressSnapshot{
		UserID:          fields["user_id"],
		LastReadingDate: fields["last_reading_date"],
	}
	if snap.XP, err = strconv.ParseInt(fields["xp"], 10, 64); err != nil {
		return nil, fmt.Errorf("corrupt cached xp for %s: %w", userID, err)
	}
	if snap.Level, err = strconv.Atoi(fields["level"]); err != nil {
		return nil, fmt.Errorf("corrupt cached level for %s: %w", userID, err)
	}
	if snap.Streak, err = strconv.Atoi(fields["streak"]); err != nil {
		return nil, fmt.Errorf("corrupt cached streak for %s: %w", userID, err)
	}
	if snap.TotalPagesRead, err = strconv.ParseInt(fields["total_pages_read"], 10, 64); err != nil {
		return nil, fmt.Errorf("corrupt cached pages for %s: %w", userID, err)
	}
	if ts, ok := fields["updated_at"]; ok {
		snap.UpdatedAt, _ = time.Parse(time.RFC3339Nano, ts)
	}
	return snap, nil
}

func (c *ProgressCache) Invalidate(ctx context.Context, userID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, progressKey(userID)).Err()
}
