// Package metrics exposes Prometheus counters for feed synchronization and sends.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tOgg1/chatfeed/internal/logging"
)

// Send outcomes used as the "result" label.
const (
	SendAccepted = "accepted"
	SendRejected = "rejected"
	SendFailed   = "failed"
	SendInvalid  = "invalid"
)

// Collector owns a private registry so tests and multiple clients never
// collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	SyncTicks    *prometheus.CounterVec
	SyncFailures prometheus.Counter
	FeedSize     prometheus.Gauge
	Sends        *prometheus.CounterVec
	LastSync     prometheus.Gauge
}

// New registers the chatfeed metrics on a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		SyncTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatfeed",
			Name:      "sync_ticks_total",
			Help:      "Feed synchronization ticks by trigger (initial, interval, manual).",
		}, []string{"trigger"}),
		SyncFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chatfeed",
			Name:      "sync_failures_total",
			Help:      "Ticks whose list request failed.",
		}),
		FeedSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chatfeed",
			Name:      "feed_messages",
			Help:      "Messages in the last reconciled snapshot.",
		}),
		Sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatfeed",
			Name:      "sends_total",
			Help:      "Outbound messages by result.",
		}, []string{"result"}),
		LastSync: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chatfeed",
			Name:      "last_sync_timestamp_seconds",
			Help:      "Unix time of the last successful reconciliation.",
		}),
	}
	c.registry.MustRegister(
		c.SyncTicks,
		c.SyncFailures,
		c.FeedSize,
		c.Sends,
		c.LastSync,
		prometheus.NewGoCollector(),
	)
	return c
}

// Registry exposes the underlying registry for gathering in tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveTick counts a dispatched tick.
func (c *Collector) ObserveTick(trigger string) {
	if c == nil {
		return
	}
	c.SyncTicks.WithLabelValues(trigger).Inc()
}

// ObserveSync records a successful reconciliation of size messages.
func (c *Collector) ObserveSync(size int, at time.Time) {
	if c == nil {
		return
	}
	c.FeedSize.Set(float64(size))
	c.LastSync.Set(float64(at.Unix()))
}

// ObserveSyncFailure counts a failed list request.
func (c *Collector) ObserveSyncFailure() {
	if c == nil {
		return
	}
	c.SyncFailures.Inc()
}

// ObserveSend counts a send attempt by result.
func (c *Collector) ObserveSend(result string) {
	if c == nil {
		return
	}
	c.Sends.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	logger := logging.Component("metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("metrics listener starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
