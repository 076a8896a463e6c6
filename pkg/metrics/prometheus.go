package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers run counters behind its own prometheus registry.
// All record methods are safe to call on a nil *Collector, so components
// that run without metrics can skip the wiring entirely.
type Collector struct {
	registry         *prometheus.Registry
	eventsProcessed  prometheus.Counter
	eventsDropped    *prometheus.CounterVec
	disputesOpened   prometheus.Counter
	disputesResolved prometheus.Counter
	chargebacks      prometheus.Counter
	accountsCreated  prometheus.Counter
	accountsFrozen   prometheus.Counter
	logger           *slog.Logger
}

func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		eventsProcessed: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "events_processed_total",
			Help: "Total number of events applied to an account",
		}),
		eventsDropped: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "events_dropped_total",
			Help: "Total number of events dropped, by rejection reason",
		}, []string{"reason"}),
		disputesOpened: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "disputes_opened_total",
			Help: "Total number of transactions taken into dispute",
		}),
		disputesResolved: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "disputes_resolved_total",
			Help: "Total number of disputes resolved",
		}),
		chargebacks: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "chargebacks_total",
			Help: "Total number of charged-back transactions",
		}),
		accountsCreated: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "accounts_created_total",
			Help: "Total number of accounts created on first reference",
		}),
		accountsFrozen: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "accounts_frozen_total",
			Help: "Total number of accounts frozen by a chargeback",
		}),
		logger: logger,
	}
}

func (c *Collector) EventProcessed() {
	if c == nil {
		return
	}
	c.eventsProcessed.Inc()
}

func (c *Collector) EventDropped(reason string) {
	if c == nil {
		return
	}
	c.eventsDropped.WithLabelValues(reason).Inc()
}

func (c *Collector) DisputeOpened() {
	if c == nil {
		return
	}
	c.disputesOpened.Inc()
}

func (c *Collector) DisputeResolved() {
	if c == nil {
		return
	}
	c.disputesResolved.Inc()
}

func (c *Collector) Chargeback() {
	if c == nil {
		return
	}
	c.chargebacks.Inc()
}

func (c *Collector) AccountCreated() {
	if c == nil {
		return
	}
	c.accountsCreated.Inc()
}

func (c *Collector) AccountFrozen() {
	if c == nil {
		return
	}
	c.accountsFrozen.Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// StartServer serves /metrics on addr in a background goroutine and
// returns the server for shutdown.
func (c *Collector) StartServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		c.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}
