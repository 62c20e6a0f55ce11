package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"readhub/internal/microservices/http-api/service"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeXP struct {
	mu      sync.Mutex
	ids     []string
	listErr error
	fail    map[string]bool
	seen    []string
}

func (f *fakeXP) UserIDs(context.Context) ([]string, error) {
	return f.ids, f.listErr
}

func (f *fakeXP) Resync(_ context.Context, userID string) (*service.ResyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, userID)
	if f.fail[userID] {
		return nil, errors.New("boom")
	}
	return &service.ResyncResult{UserID: userID, Drift: 10}, nil
}

func (f *fakeXP) Check(context.Context, string) (*service.ResyncResult, error) {
	return nil, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunOnce(t *testing.T) {
	xp := &fakeXP{
		ids:  []string{"u1", "u2", "u3", "u4", "u5"},
		fail: map[string]bool{"u3": true},
	}
	job := NewResyncJob(xp, 2, quietLogger())

	stats, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Submitted)
	assert.Equal(t, int64(4), stats.Succeeded)
	assert.Equal(t, int64(1), stats.Failed)
	assert.ElementsMatch(t, xp.ids, xp.seen)
}

func TestRunOnceListFailure(t *testing.T) {
	job := NewResyncJob(&fakeXP{listErr: errors.New("db down")}, 2, quietLogger())
	_, err := job.RunOnce(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestScheduleNextRun(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC))
	job := NewResyncJob(&fakeXP{}, 1, quietLogger())

	s, err := Schedule(context.Background(), job, "0 3 * * *", time.UTC, clock)
	require.NoError(t, err)
	s.Start()
	defer s.Shutdown()

	want := time.Date(2024, 3, 14, 3, 0, 0, 0, time.UTC)
	assert.Eventually(t, func() bool {
		next, err := s.NextRun()
		return err == nil && next.Equal(want)
	}, time.Second, 10*time.Millisecond)
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	job := NewResyncJob(&fakeXP{}, 1, quietLogger())
	_, err := Schedule(context.Background(), job, "every tuesday", time.UTC, nil)
	assert.Error(t, err)
}
