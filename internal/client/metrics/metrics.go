// Package metrics exposes Prometheus counters for the session layer and the
// API client. A nil *Metrics is valid and records nothing, so components can
// take one unconditionally.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	Namespace string
	Registry  prometheus.Registerer
	Buckets   []float64
}

type Option func(*Config)

func WithNamespace(ns string) Option {
	return func(c *Config) { c.Namespace = ns }
}

func WithRegistry(r prometheus.Registerer) Option {
	return func(c *Config) { c.Registry = r }
}

func WithBuckets(b []float64) Option {
	return func(c *Config) { c.Buckets = b }
}

type Metrics struct {
	transitions   *prometheus.CounterVec
	validations   *prometheus.CounterVec
	forcedLogouts prometheus.Counter
	refreshes     *prometheus.CounterVec
	apiCalls      *prometheus.CounterVec
	apiDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them. Registration fails if the
// registry already holds collectors with the same names.
func New(opts ...Option) (*Metrics, error) {
	cfg := Config{
		Namespace: "bankfront",
		Registry:  prometheus.DefaultRegisterer,
		Buckets:   prometheus.DefBuckets,
	}
	for _, o := range opts {
		o(&cfg)
	}

	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session state transitions by target state.",
		}, []string{"state"}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "session",
			Name:      "validations_total",
			Help:      "Token validation outcomes.",
		}, []string{"outcome"}),
		forcedLogouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "session",
			Name:      "forced_logouts_total",
			Help:      "Sessions cleared after an authorization failure.",
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "session",
			Name:      "token_refreshes_total",
			Help:      "Token refresh attempts by result.",
		}, []string{"result"}),
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "api",
			Name:      "calls_total",
			Help:      "Backend calls by endpoint and status class.",
		}, []string{"endpoint", "class"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "api",
			Name:      "call_duration_seconds",
			Help:      "Backend call latency.",
			Buckets:   cfg.Buckets,
		}, []string{"endpoint"}),
	}

	for _, c := range []prometheus.Collector{m.transitions, m.validations, m.forcedLogouts, m.refreshes, m.apiCalls, m.apiDuration} {
		if err := cfg.Registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) SessionTransition(state string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(state).Inc()
}

func (m *Metrics) Validation(outcome string) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ForcedLogout() {
	if m == nil {
		return
	}
	m.forcedLogouts.Inc()
}

// TokenRefresh records a refresh attempt: "ok", "rejected" or "failed".
func (m *Metrics) TokenRefresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

// APICall records one backend call. status 0 means no response arrived.
func (m *Metrics) APICall(endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.apiCalls.WithLabelValues(endpoint, StatusClass(status)).Inc()
	m.apiDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// StatusClass buckets an HTTP status as "2xx", "4xx" and so on, or "error"
// when no response was received.
func StatusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}

// Serve exposes gatherer on addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
