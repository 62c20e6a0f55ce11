package workerpool

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Task is a unit of work run by the pool.
type Task func(ctx context.Context) error

// Stats summarises a pool run.
type Stats struct {
	Submitted int64
	Succeeded int64
	Failed    int64
}

// Pool runs tasks on a fixed number of workers.
type Pool struct {
	workerCount int
	taskQueue   chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	closed      bool
	closeMux    sync.Mutex
	logger      *slog.Logger

	submitted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
}

// New creates a pool whose tasks inherit ctx.
func New(ctx context.Context, workerCount int, logger *slog.Logger) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	poolCtx, cancel := context.WithCancel(ctx)
	return &Pool{
		workerCount: workerCount,
		taskQueue:   make(chan Task, workerCount*2),
		ctx:         poolCtx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Start launches worker goroutines
func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Debug("worker_pool_started", "workers", p.workerCount)
}

// Submit queues a task. It returns false if the pool is shutting down.
func (p *Pool) Submit(task Task) bool {
	select {
	case <-p.ctx.Done():
		return false
	default:
	}
	select {
	case p.taskQueue <- task:
		p.submitted.Add(1)
		return true
	case <-p.ctx.Done():
		p.logger.Warn("worker_pool_task_dropped", "reason", "shutting down")
		return false
	}
}

// Wait closes the queue and blocks until queued tasks finish.
func (p *Pool) Wait() Stats {
	p.closeMux.Lock()
	if !p.closed {
		close(p.taskQueue)
		p.closed = true
	}
	p.closeMux.Unlock()

	p.wg.Wait()
	p.cancel()
	return p.Stats()
}

// Shutdown cancels running tasks and waits for workers to exit.
func (p *Pool) Shutdown() Stats {
	p.cancel()
	return p.Wait()
}

func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Succeeded: p.succeeded.Load(),
		Failed:    p.failed.Load(),
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for task := range p.taskQueue {
		if p.ctx.Err() != nil {
			p.failed.Add(1)
			continue
		}
		if err := task(p.ctx); err != nil {
			p.failed.Add(1)
			p.logger.Warn("worker_task_failed", "worker", id, "error", err)
			continue
		}
		p.succeeded.Add(1)
	}
}
