package game

import (
	"context"
	"fmt"
	"radiomirchi/internal/config"
	"radiomirchi/internal/missions"
	"radiomirchi/pkg/domain"
	"radiomirchi/pkg/llm"
	"radiomirchi/pkg/metrics"
	"radiomirchi/pkg/serrors"
	"radiomirchi/pkg/speech"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const defaultStatementBuffer = 8

// Options tune the dialogue loop.
type Options struct {
	// MinQueuedLines triggers a dialogue round when fewer lines are queued.
	MinQueuedLines int
	// RetryDelay is the pause after a failed round.
	RetryDelay time.Duration
	// MaxHistoryLines bounds the transcript sent with every round.
	MaxHistoryLines int
	// FinishTimeout bounds the wait for the final transcript after speech_end.
	FinishTimeout time.Duration
	// StatementBuffer is how many player statements may wait for the next
	// round. Statements beyond it are rejected.
	StatementBuffer int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MinQueuedLines:  cfg.Game.MinQueuedLines,
		RetryDelay:      cfg.Game.RetryDelay,
		MaxHistoryLines: cfg.Game.MaxHistoryLines,
		FinishTimeout:   10 * time.Second,
		StatementBuffer: cfg.Game.StatementBuffer,
	}
}

// Deps are the services a session talks to.
type Deps struct {
	Missions    missions.Service
	LLM         llm.Client
	Synthesizer speech.Synthesizer
	Transcriber speech.Transcriber
	// Meter records per-session usage. Optional.
	Meter metric.Meter
}

type instruments struct {
	lines      metric.Int64Counter
	audioBytes metric.Int64Counter
	statements metric.Int64Counter
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("radiomirchi/game")
	}

	lines, err := meter.Int64Counter("radiomirchi.game.dialogue_lines",
		metric.WithDescription("Dialogue lines spoken by the hosts."))
	if err != nil {
		return nil, fmt.Errorf("could not create dialogue lines counter: %w", err)
	}
	audioBytes, err := meter.Int64Counter("radiomirchi.game.audio_bytes",
		metric.WithDescription("Synthesized audio streamed to players."),
		metric.WithUnit("By"))
	if err != nil {
		return nil, fmt.Errorf("could not create audio bytes counter: %w", err)
	}
	statements, err := meter.Int64Counter("radiomirchi.game.user_statements",
		metric.WithDescription("Statements made by players."))
	if err != nil {
		return nil, fmt.Errorf("could not create user statements counter: %w", err)
	}

	return &instruments{lines: lines, audioBytes: audioBytes, statements: statements}, nil
}

type manager struct {
	deps        Deps
	options     Options
	instruments *instruments

	mu     sync.Mutex
	active map[domain.MissionID]struct{}
	closed bool
	wg     sync.WaitGroup

	// ctx is cancelled by Shutdown and bounds every session.
	ctx    context.Context //nolint: containedctx
	cancel context.CancelFunc
}

// New creates a session manager.
func New(deps Deps, options Options) (Manager, error) {
	if options.MinQueuedLines < 1 {
		options.MinQueuedLines = 1
	}
	if options.MaxHistoryLines < 1 {
		options.MaxHistoryLines = 1
	}
	if options.FinishTimeout <= 0 {
		options.FinishTimeout = 10 * time.Second
	}
	if options.StatementBuffer < 1 {
		options.StatementBuffer = defaultStatementBuffer
	}

	inst, err := newInstruments(deps.Meter)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &manager{
		deps:        deps,
		options:     options,
		instruments: inst,
		active:      make(map[domain.MissionID]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

func (m *manager) Reserve(id domain.MissionID) (Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, serrors.With(serrors.ErrUnavailable, "server is shutting down")
	}
	if _, ok := m.active[id]; ok {
		return nil, serrors.With(serrors.ErrConflict, "mission already has an active session")
	}
	m.active[id] = struct{}{}
	m.wg.Add(1)
	metrics.ActiveSessions.Inc()

	return &reservation{manager: m, id: id}, nil
}

func (m *manager) release(id domain.MissionID) {
	m.mu.Lock()
	delete(m.active, id)
	m.mu.Unlock()
	metrics.ActiveSessions.Dec()
	m.wg.Done()
}

func (m *manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.active)
}

func (m *manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("game sessions did not stop in time: %w", ctx.Err())
	}
}

type reservation struct {
	manager *manager
	id      domain.MissionID
	once    sync.Once
}

func (r *reservation) Release() {
	r.once.Do(func() { r.manager.release(r.id) })
}

func (r *reservation) Play(ctx context.Context, conn Conn, mission *domain.Mission) error {
	defer r.Release()

	if mission == nil || mission.ID != r.id {
		_ = conn.Close()

		return serrors.With(serrors.ErrBadRequest, "mission does not match the reservation")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(r.manager.ctx, cancel)
	defer stop()

	return newSession(r.manager, conn, mission).run(ctx)
}
