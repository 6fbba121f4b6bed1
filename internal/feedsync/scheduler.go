package feedsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tOgg1/chatfeed/internal/feed"
	"github.com/tOgg1/chatfeed/internal/logging"
	"github.com/tOgg1/chatfeed/internal/metrics"
)

// Scheduler errors.
var (
	ErrSchedulerAlreadyRunning = errors.New("scheduler already running")
	ErrSchedulerNotRunning     = errors.New("scheduler not running")
)

// Tick triggers.
const (
	TriggerInitial  = "initial"
	TriggerInterval = "interval"
	TriggerManual   = "manual"
)

// DefaultInterval is the polling period.
const DefaultInterval = 3 * time.Second

// Lister fetches the authoritative feed.
type Lister interface {
	ListMessages(ctx context.Context) ([]feed.Message, error)
}

// SchedulerConfig contains configuration for the Scheduler.
type SchedulerConfig struct {
	// Interval between periodic ticks.
	// Default: 3s
	Interval time.Duration
}

// DefaultSchedulerConfig returns the default configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{Interval: DefaultInterval}
}

// SyncResult describes one completed tick.
type SyncResult struct {
	ID       string
	Trigger  string
	Size     int
	Err      error
	Started  time.Time
	Duration time.Duration
}

// OK reports whether the tick reconciled a snapshot.
func (r SyncResult) OK() bool {
	return r.Err == nil
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithWarningHandler is called with the error of every failed tick.
func WithWarningHandler(fn func(error)) SchedulerOption {
	return func(s *Scheduler) {
		s.onWarning = fn
	}
}

// WithSyncHandler is called after every tick, successful or not.
func WithSyncHandler(fn func(SyncResult)) SchedulerOption {
	return func(s *Scheduler) {
		s.onSync = fn
	}
}

// WithMetrics records tick outcomes on c.
func WithMetrics(c *metrics.Collector) SchedulerOption {
	return func(s *Scheduler) {
		s.metrics = c
	}
}

// Scheduler refreshes the canonical feed on a fixed period. Every tick runs in
// its own goroutine; overlapping ticks are neither coalesced nor cancelled.
type Scheduler struct {
	config     SchedulerConfig
	lister     Lister
	reconciler Reconciler
	logger     zerolog.Logger
	metrics    *metrics.Collector
	onWarning  func(error)
	onSync     func(SyncResult)

	mu       sync.RWMutex
	running  bool
	ctx      context.Context
	cancel   context.CancelFunc
	reqCtx   context.Context
	loop     sync.WaitGroup
	inflight sync.WaitGroup
}

// NewScheduler creates a Scheduler that lists with lister and hands every
// snapshot to reconciler.
func NewScheduler(config SchedulerConfig, lister Lister, reconciler Reconciler, opts ...SchedulerOption) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultSchedulerConfig().Interval
	}
	s := &Scheduler{
		config:     config,
		lister:     lister,
		reconciler: reconciler,
		logger:     logging.Component("feed-sync"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval returns the configured polling period.
func (s *Scheduler) Interval() time.Duration {
	return s.config.Interval
}

// Start begins the polling loop and dispatches the first tick immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerAlreadyRunning
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	// Requests outlive Stop; only the timer is torn down.
	s.reqCtx = context.WithoutCancel(ctx)
	s.running = true

	s.logger.Info().
		Dur("interval", s.config.Interval).
		Msg("feed scheduler starting")

	s.loop.Add(1)
	go s.runLoop(s.ctx)

	s.dispatchLocked(TriggerInitial)
	return nil
}

// Stop halts the timer. No tick is dispatched once Stop returns, but requests
// already in flight still complete and reconcile.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}

	s.logger.Info().Msg("feed scheduler stopping")
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.loop.Wait()
	s.logger.Info().Msg("feed scheduler stopped")
	return nil
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// SyncNow dispatches one out-of-cycle tick.
func (s *Scheduler) SyncNow() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return ErrSchedulerNotRunning
	}
	s.dispatchLocked(TriggerManual)
	return nil
}

// Wait blocks until every dispatched tick has finished. Call it after Stop.
func (s *Scheduler) Wait() {
	s.inflight.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context) {
	defer s.loop.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.RLock()
			if s.running && ctx.Err() == nil {
				s.dispatchLocked(TriggerInterval)
			}
			s.mu.RUnlock()
		}
	}
}

// dispatchLocked starts a tick goroutine. Callers hold s.mu.
func (s *Scheduler) dispatchLocked(trigger string) {
	s.metrics.ObserveTick(trigger)
	s.inflight.Add(1)
	go s.tick(s.reqCtx, trigger)
}

func (s *Scheduler) tick(ctx context.Context, trigger string) {
	defer s.inflight.Done()

	result := SyncResult{
		ID:      uuid.NewString(),
		Trigger: trigger,
		Started: time.Now(),
	}
	logger := s.logger.With().Str("sync_id", result.ID).Str("trigger", trigger).Logger()

	snapshot, err := s.lister.ListMessages(ctx)
	result.Duration = time.Since(result.Started)
	if err != nil {
		result.Err = err
		s.metrics.ObserveSyncFailure()
		logger.Warn().Err(err).Dur("duration", result.Duration).Msg("feed sync failed")
		if s.onWarning != nil {
			s.onWarning(err)
		}
	} else {
		s.reconciler.Reconcile(snapshot)
		result.Size = len(snapshot)
		s.metrics.ObserveSync(result.Size, time.Now())
		logger.Debug().Int("messages", result.Size).Dur("duration", result.Duration).Msg("feed reconciled")
	}

	if s.onSync != nil {
		s.onSync(result)
	}
}
