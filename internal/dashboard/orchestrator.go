// Package dashboard coordinates fetch cycles against the trading backend and owns
// the view state every renderer reads from.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vadiminshakov/marti-dashboard/internal/clients"
	"github.com/vadiminshakov/marti-dashboard/internal/domain"
)

// DefaultErrorMessage shown when a cycle fails. It never contains error details.
const DefaultErrorMessage = "Failed to load dashboard data. Please ensure the backend is running."

// Fetcher reads both dashboard resources.
type Fetcher interface {
	Trades(ctx context.Context) ([]domain.Trade, error)
	Portfolio(ctx context.Context) (domain.Portfolio, error)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPollInterval enables periodic refresh. Zero or negative disables it.
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.pollInterval = d
	}
}

// WithErrorMessage overrides the message of the error state.
func WithErrorMessage(msg string) Option {
	return func(o *Orchestrator) {
		if msg != "" {
			o.errorMessage = msg
		}
	}
}

// WithClock overrides time.Now, used for the UpdatedAt of ready states.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Orchestrator runs fetch cycles and publishes the resulting view states.
//
// Every cycle starts at Loading and resolves to exactly one of Error or Ready.
// A cycle only applies its result while it is the newest cycle, so a slow
// response can never overwrite fresher state.
type Orchestrator struct {
	fetcher      Fetcher
	logger       *zap.Logger
	pollInterval time.Duration
	errorMessage string
	now          func() time.Time

	mu       sync.Mutex
	state    domain.ViewState
	cycle    uint64
	inFlight int
	subs     map[int]chan domain.ViewState
	nextSub  int
	runs     map[int]chan struct{}
	nextRun  int
}

// New creates an Orchestrator in the idle state.
func New(fetcher Fetcher, logger *zap.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		fetcher:      fetcher,
		logger:       logger,
		errorMessage: DefaultErrorMessage,
		now:          time.Now,
		state:        domain.IdleState(),
		subs:         make(map[int]chan domain.ViewState),
		runs:         make(map[int]chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current view state.
func (o *Orchestrator) State() domain.ViewState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Subscribe returns a channel receiving every published state and a function
// removing the subscription. The channel keeps only the latest state, so a slow
// reader skips intermediate states instead of blocking the orchestrator.
func (o *Orchestrator) Subscribe() (<-chan domain.ViewState, func()) {
	ch := make(chan domain.ViewState, 1)

	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = ch
	ch <- o.state
	o.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subs, id)
			o.mu.Unlock()
			close(ch)
		})
	}
}

// Start runs one fetch cycle in the background.
func (o *Orchestrator) Start(ctx context.Context) {
	cycle := o.begin()
	go o.resolve(ctx, cycle)
}

// Refresh runs one fetch cycle and returns the state current once it resolved.
// The returned state belongs to a newer cycle if one superseded this call.
func (o *Orchestrator) Refresh(ctx context.Context) domain.ViewState {
	o.resolve(ctx, o.begin())
	return o.State()
}

// Run starts a cycle immediately and, when polling is enabled, one more per tick.
// Ticks that find a cycle still in flight are skipped. Run returns when ctx is
// done or Stop is called; it may be called again after Stop.
func (o *Orchestrator) Run(ctx context.Context) error {
	stopped, done := o.register()
	defer done()

	o.Start(ctx)

	if o.pollInterval <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopped:
			return nil
		}
	}

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	o.logger.Info("polling enabled", zap.Duration("interval", o.pollInterval))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopped:
			o.logger.Info("polling stopped")
			return nil
		case <-ticker.C:
			if o.busy() {
				o.logger.Debug("skip poll tick, cycle in flight")
				continue
			}
			o.Start(ctx)
		}
	}
}

// Stop cancels the refresh timer of every active Run. Requests already in flight
// complete and are applied if no newer cycle superseded them.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for id, ch := range o.runs {
		close(ch)
		delete(o.runs, id)
	}
}

// register adds a stop channel for one Run; done removes it.
func (o *Orchestrator) register() (<-chan struct{}, func()) {
	ch := make(chan struct{})

	o.mu.Lock()
	id := o.nextRun
	o.nextRun++
	o.runs[id] = ch
	o.mu.Unlock()

	return ch, func() {
		o.mu.Lock()
		delete(o.runs, id)
		o.mu.Unlock()
	}
}

func (o *Orchestrator) busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight > 0
}

// begin opens a new cycle and publishes its Loading state.
func (o *Orchestrator) begin() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cycle++
	o.inFlight++
	o.publishLocked(domain.LoadingState(o.cycle))
	return o.cycle
}

func (o *Orchestrator) resolve(ctx context.Context, cycle uint64) {
	cycleID := uuid.NewString()
	logger := o.logger.With(zap.Uint64("cycle", cycle), zap.String("cycle_id", cycleID))
	started := o.now()

	next := o.fetch(clients.WithRequestID(ctx, cycleID), cycle, logger)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.inFlight--

	if cycle != o.cycle {
		logger.Info("discard stale cycle result",
			zap.Uint64("current_cycle", o.cycle),
			zap.Stringer("phase", next.Phase))
		return
	}

	o.publishLocked(next)
	logger.Debug("cycle resolved",
		zap.Stringer("phase", next.Phase),
		zap.Int("trades", len(next.Trades)),
		zap.Duration("took", o.now().Sub(started)))
}

// fetch requests both resources concurrently and waits for both outcomes.
// Any failure turns the whole cycle into an error state.
func (o *Orchestrator) fetch(ctx context.Context, cycle uint64, logger *zap.Logger) domain.ViewState {
	var (
		trades    []domain.Trade
		portfolio domain.Portfolio
	)

	var g errgroup.Group
	g.Go(func() error {
		t, err := o.fetcher.Trades(ctx)
		if err != nil {
			logger.Warn("failed to fetch trades", zap.Error(err))
			return err
		}
		trades = t
		return nil
	})
	g.Go(func() error {
		p, err := o.fetcher.Portfolio(ctx)
		if err != nil {
			logger.Warn("failed to fetch portfolio", zap.Error(err))
			return err
		}
		portfolio = p
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("dashboard data unavailable", zap.Error(err))
		return domain.ErrorState(cycle, o.errorMessage)
	}

	return domain.ReadyState(cycle, trades, &portfolio, o.now())
}

func (o *Orchestrator) publishLocked(s domain.ViewState) {
	o.state = s
	for _, ch := range o.subs {
		// keep only the newest state in the buffer
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
