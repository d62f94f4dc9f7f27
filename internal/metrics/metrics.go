// Package metrics exposes Prometheus counters for the sync clients.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Cycle outcomes recorded by SyncCycle.
const (
	OutcomeApplied   = "applied"
	OutcomeUnchanged = "unchanged"
	OutcomeStale     = "stale"
	OutcomeInvalid   = "invalid"
)

// Metrics holds the sync instruments. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry     *prometheus.Registry
	cycles       *prometheus.CounterVec
	mode         *prometheus.GaugeVec
	pushFailures *prometheus.CounterVec
	effects      *prometheus.CounterVec
}

// New creates the instruments on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crownwatch_sync_cycles_total",
			Help: "Reconciliation cycles by outcome.",
		}, []string{"sync", "outcome"}),
		mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "crownwatch_transport_mode",
			Help: "Current transport mode (0 push, 1 pull, 2 disconnected).",
		}, []string{"sync"}),
		pushFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crownwatch_push_failures_total",
			Help: "Failed push channel attempts.",
		}, []string{"sync"}),
		effects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crownwatch_dispatch_effects_total",
			Help: "Side effects performed by the dispatchers.",
		}, []string{"sync", "effect"}),
	}
	m.registry.MustRegister(m.cycles, m.mode, m.pushFailures, m.effects)
	return m
}

// Registry returns the private registry, or nil for a nil receiver.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// SyncCycle counts one reconciliation cycle.
func (m *Metrics) SyncCycle(sync, outcome string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(sync, outcome).Inc()
}

// TransportMode records the numeric mode of a transport.
func (m *Metrics) TransportMode(sync string, mode int) {
	if m == nil {
		return
	}
	m.mode.WithLabelValues(sync).Set(float64(mode))
}

// PushFailure counts a failed push attempt.
func (m *Metrics) PushFailure(sync string) {
	if m == nil {
		return
	}
	m.pushFailures.WithLabelValues(sync).Inc()
}

// DispatchEffect counts a dispatcher side effect.
func (m *Metrics) DispatchEffect(sync, effect string) {
	if m == nil {
		return
	}
	m.effects.WithLabelValues(sync, effect).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled. An empty addr or a
// nil receiver returns immediately.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	if m == nil || addr == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen metrics %s: %w", addr, err)
	}
	logger.Info("metrics endpoint listening", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown metrics: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve metrics: %w", err)
	}
}
