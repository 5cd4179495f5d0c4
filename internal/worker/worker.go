// Package worker runs mission generation in the background. Missions are
// queued in memory; the store is the source of truth, so missions that were
// queued or running when the process stopped are picked up again on Start.
package worker

import (
	"context"
	"errors"
	"fmt"
	"radiomirchi/internal/config"
	"radiomirchi/pkg/domain"
	"radiomirchi/pkg/logger"
	"radiomirchi/pkg/metrics"
	"radiomirchi/pkg/serrors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options configure the pool.
type Options struct {
	// Concurrency is the number of missions generated at the same time.
	Concurrency int
	// QueueSize bounds the number of missions waiting for a worker.
	QueueSize int
	// MaxAttempts is the number of attempts per job before the mission fails.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Concurrency:    cfg.Worker.Concurrency,
		QueueSize:      cfg.Worker.QueueSize,
		MaxAttempts:    cfg.Worker.MaxAttempts,
		InitialBackoff: cfg.Worker.InitialBackoff,
		MaxBackoff:     cfg.Worker.MaxBackoff,
	}
}

// Generator is the part of the mission service the pool drives.
type Generator interface {
	Generate(ctx context.Context, ID domain.MissionID) error
	Fail(ctx context.Context, ID domain.MissionID, cause error) error
	Resumable(ctx context.Context) ([]domain.MissionID, error)
}

// Pool is a bounded in-memory queue served by a fixed number of goroutines.
// It implements missions.Queue.
type Pool struct {
	options Options
	jobs    chan domain.MissionID

	mu      sync.Mutex
	queued  map[domain.MissionID]struct{}
	closed  bool
	started bool

	quit   chan struct{}
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New creates a pool. Jobs may be enqueued before Start.
func New(options Options) *Pool {
	if options.Concurrency < 1 {
		options.Concurrency = 1
	}
	if options.QueueSize < 1 {
		options.QueueSize = 1
	}
	if options.MaxAttempts < 1 {
		options.MaxAttempts = 1
	}

	return &Pool{
		options: options,
		jobs:    make(chan domain.MissionID, options.QueueSize),
		queued:  make(map[domain.MissionID]struct{}),
		quit:    make(chan struct{}),
	}
}

// Enqueue schedules generation of the mission. A mission already waiting in
// the queue is not added twice. It never blocks: a full or stopped queue
// fails with serrors.ErrUnavailable.
func (p *Pool) Enqueue(_ context.Context, id domain.MissionID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return serrors.With(serrors.ErrUnavailable, "generation queue is stopped")
	}
	if _, ok := p.queued[id]; ok {
		return nil
	}

	select {
	case p.jobs <- id:
		p.queued[id] = struct{}{}
		metrics.QueueDepth.Inc()

		return nil
	default:
		return serrors.With(serrors.ErrUnavailable, "generation queue is full")
	}
}

// Start re-enqueues unfinished missions and starts the workers. Jobs run
// until Stop is called; ctx only scopes the recovery and the loggers.
func (p *Pool) Start(ctx context.Context, gen Generator) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()

		return errors.New("worker pool already started")
	}
	p.started = true
	p.mu.Unlock()

	ids, err := gen.Resumable(ctx)
	if err != nil {
		return fmt.Errorf("could not recover unfinished missions: %w", err)
	}
	recovered := 0
	for _, id := range ids {
		if err := p.Enqueue(ctx, id); err != nil {
			// left pending in the store, recovered on the next start
			logger.Warn(ctx, "could not re-enqueue mission", zap.Stringer("missionID", id), zap.Error(err))

			continue
		}
		recovered++
	}
	if recovered > 0 {
		logger.Info(ctx, "re-enqueued unfinished missions", zap.Int("count", recovered))
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	group, runCtx := errgroup.WithContext(runCtx)
	p.group = group

	job := newGenerationJob(gen, p.options)
	for i := range p.options.Concurrency {
		workerCtx := logger.WithFields(runCtx, zap.Int("worker", i))
		group.Go(func() error {
			p.loop(workerCtx, job)

			return nil
		})
	}
	logger.Info(ctx, "worker pool started", zap.Int("concurrency", p.options.Concurrency))

	return nil
}

func (p *Pool) loop(ctx context.Context, job *generationJob) {
	for {
		// quit wins over queued jobs so Stop does not wait for the backlog
		select {
		case <-p.quit:
			return
		default:
		}

		select {
		case <-p.quit:
			return
		case id := <-p.jobs:
			p.mu.Lock()
			delete(p.queued, id)
			p.mu.Unlock()
			metrics.QueueDepth.Dec()

			job.Run(ctx, id)
		}
	}
}

// Stop stops accepting jobs and waits for running jobs to finish. When ctx
// ends first, running jobs are cancelled and left for the next Start.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()

		return nil
	}
	p.closed = true
	p.mu.Unlock()
	close(p.quit)

	if p.group == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		_ = p.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()

		return nil
	case <-ctx.Done():
		p.cancel()
		<-done

		return fmt.Errorf("worker pool did not drain in time: %w", ctx.Err())
	}
}
