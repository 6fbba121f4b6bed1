package cli

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tOgg1/chatfeed/internal/compose"
	"github.com/tOgg1/chatfeed/internal/config"
	"github.com/tOgg1/chatfeed/internal/feed"
	"github.com/tOgg1/chatfeed/internal/feedsync"
	"github.com/tOgg1/chatfeed/internal/logging"
	"github.com/tOgg1/chatfeed/internal/metrics"
	"github.com/tOgg1/chatfeed/internal/session"
)

// app wires the feed components shared by every command.
type app struct {
	cfg     *config.Config
	client  *feed.Client
	store   *feedsync.Store
	metrics *metrics.Collector
	logger  zerolog.Logger
}

func newApp(cfg *config.Config) (*app, error) {
	client, err := feed.NewClient(feed.ClientConfig{
		BaseURL: cfg.Feed.BaseURL,
		AuthKey: cfg.Feed.AuthKey,
		Timeout: cfg.Feed.RequestTimeout,
	})
	if err != nil {
		return nil, Exitf(ExitCodeFailure, "feed client: %w", err)
	}
	return &app{
		cfg:     cfg,
		client:  client,
		store:   feedsync.NewStore(),
		metrics: metrics.New(),
		logger:  logging.Component("cli"),
	}, nil
}

func (a *app) scheduler(opts ...feedsync.SchedulerOption) *feedsync.Scheduler {
	opts = append([]feedsync.SchedulerOption{feedsync.WithMetrics(a.metrics)}, opts...)
	return feedsync.NewScheduler(
		feedsync.SchedulerConfig{Interval: a.cfg.Feed.PollInterval},
		a.client,
		a.store,
		opts...,
	)
}

// pipeline builds the send pipeline. syncer may be nil for one-shot sends.
func (a *app) pipeline(syncer compose.Syncer) *compose.Pipeline {
	return compose.NewPipeline(a.client, syncer, compose.WithMetrics(a.metrics))
}

// openSession loads the persisted session. The returned func closes the
// database.
func (a *app) openSession(ctx context.Context) (*session.Session, func(), error) {
	if err := a.cfg.EnsureDirectories(); err != nil {
		return nil, nil, Exitf(ExitCodeFailure, "%w", err)
	}
	kv, err := session.OpenSQLite(ctx, a.cfg.SessionDBPath())
	if err != nil {
		return nil, nil, Exitf(ExitCodeFailure, "open session: %w", err)
	}
	sess, err := session.Load(ctx, kv)
	if err != nil {
		_ = kv.Close()
		return nil, nil, Exitf(ExitCodeFailure, "%w", err)
	}
	return sess, func() { _ = kv.Close() }, nil
}

// serveMetrics exposes /metrics in the background when an address is set.
func (a *app) serveMetrics(ctx context.Context) {
	addr := a.cfg.Metrics.Addr
	if addr == "" {
		return
	}
	go func() {
		if err := a.metrics.Serve(ctx, addr); err != nil {
			a.logger.Warn().Err(err).Str("addr", addr).Msg("metrics listener failed")
		}
	}()
}

// sendFailure turns a pipeline error into the message shown to the user.
func sendFailure(err error) error {
	var rejected *compose.RejectedSendError
	switch {
	case errors.Is(err, compose.ErrEmptyUsername):
		return Exitf(ExitCodeFailure, "%w: pass --as or set a name in the chat view", err)
	case compose.IsValidationError(err):
		return Exitf(ExitCodeFailure, "%w", err)
	case errors.As(err, &rejected):
		return Exitf(ExitCodeFailure, "message not accepted: %w", err)
	default:
		return Exitf(ExitCodeFailure, "network error: %w", err)
	}
}
