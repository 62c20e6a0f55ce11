package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"readhub/internal/microservices/http-api/service"
	"readhub/internal/workerpool"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// ResyncJob recomputes XP for every profile, a few users at a time.
type ResyncJob struct {
	xp      service.XPSyncService
	workers int
	logger  *slog.Logger
}

func NewResyncJob(xp service.XPSyncService, workers int, logger *slog.Logger) *ResyncJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResyncJob{xp: xp, workers: workers, logger: logger}
}

// RunOnce resyncs every user and reports how many succeeded and failed.
// Individual failures do not stop the run.
func (j *ResyncJob) RunOnce(ctx context.Context) (workerpool.Stats, error) {
	started := time.Now()
	ids, err := j.xp.UserIDs(ctx)
	if err != nil {
		return workerpool.Stats{}, fmt.Errorf("list users: %w", err)
	}

	var repaired atomic.Int64
	pool := workerpool.New(ctx, j.workers, j.logger)
	pool.Start()
	for _, id := range ids {
		userID := id
		ok := pool.Submit(func(ctx context.Context) error {
			res, err := j.xp.Resync(ctx, userID)
			if err != nil {
				return fmt.Errorf("resync %s: %w", userID, err)
			}
			if res.Drift != 0 {
				repaired.Add(1)
			}
			return nil
		})
		if !ok {
			break
		}
	}
	stats := pool.Wait()

	j.logger.Info("xp_resync_completed",
		"users", len(ids),
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"repaired", repaired.Load(),
		"duration", time.Since(started).String(),
	)
	return stats, ctx.Err()
}

// Scheduler runs a ResyncJob on a cron schedule.
type Scheduler struct {
	sched gocron.Scheduler
	job   gocron.Job
}

// Schedule registers job under the cron expression cronExpr, evaluated in loc.
// Overlapping runs are skipped rather than queued.
func Schedule(ctx context.Context, job *ResyncJob, cronExpr string, loc *time.Location, clock clockwork.Clock) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	sched, err := gocron.NewScheduler(
		gocron.WithClock(clock),
		gocron.WithLocation(loc),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	j, err := sched.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			if _, err := job.RunOnce(ctx); err != nil {
				job.logger.Error("xp_resync_failed", "error", err)
			}
		}),
		gocron.WithName("xp-resync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule %q: %w", cronExpr, err)
	}
	return &Scheduler{sched: sched, job: j}, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

// NextRun is the next time the job fires.
func (s *Scheduler) NextRun() (time.Time, error) {
	return s.job.NextRun()
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
