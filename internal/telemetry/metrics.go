// Package telemetry provides application-level observability for DecoyDrop.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// automatically available on the side-channel HTTP server started by main.go:
//
//	GET http(s)://<host>:<DDP_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090.  The endpoint returns data in the Prometheus text exposition
// format and is intended to be scraped by a Prometheus server every 15–60 seconds.
// It is NOT served by the Gin router, so it is invisible to anyone probing the
// decoy application itself.
//
// # Metric Groups
//
//   - HTTP request counters and latency histograms (labelled by route template, not raw URL)
//   - Simulator counters: fabricated events by type, skipped ticks, spike windows,
//     retention deletions, attack bursts
//   - Database connection pool gauge (polled every 30 s)
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/files/:id) rather
// than the raw request URL to prevent unbounded label cardinality from attacker-supplied
// path segments — on a honeypot, raw URLs are adversarial input by definition.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics — labelled by method, route template, and status code.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - Requests by route:                 sum by (path) (rate(http_requests_total[5m]))
//   - p99 latency per route:             histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Simulator metrics — recorded by the background activity-fabrication engine.
//
// SimulatorEventsTotal counts persisted synthetic events by event type, including
// attack-burst downloads.  SimulatorSkipsTotal counts ticks that produced no event
// (no users available for a login-type draw) — a steadily climbing skip counter on
// a seeded deployment indicates the decoy user set was deleted.
//
// Example PromQL queries:
//   - Fabrication rate by type:  sum by (type) (rate(simulator_events_total[5m]))
//   - Failure-event share (%):   sum(rate(simulator_events_total{type=~"failed.*"}[15m])) / sum(rate(simulator_events_total[15m])) * 100
//   - Spike frequency:           increase(simulator_spikes_total[24h])
var (
	SimulatorEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulator_events_total",
			Help: "Total number of synthetic audit events persisted, by event type.",
		},
		[]string{"type"},
	)

	SimulatorSkipsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "simulator_skips_total",
			Help: "Total number of generation ticks that produced no event for lack of reference data.",
		},
	)

	SimulatorSpikesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "simulator_spikes_total",
			Help: "Total number of spike windows activated.",
		},
	)

	SimulatorRetentionDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "simulator_retention_deleted_total",
			Help: "Total number of audit events removed by retention sweeps.",
		},
	)

	SimulatorAttackBurstsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "simulator_attack_bursts_total",
			Help: "Total number of on-demand attack bursts scheduled.",
		},
	)
)

// DBOpenConnections is a Gauge that tracks the number of open connections currently
// held by the sql.DB connection pool.  It is sampled every 30 seconds by
// StartDBStatsCollector rather than per-request to avoid the overhead of sql.DB.Stats().
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB connection
// pool statistics every 30 seconds and updates the DBOpenConnections gauge.
// The goroutine exits cleanly when the database becomes unreachable (db.Ping fails),
// which happens automatically when the application shuts down and defers db.Close().
//
// Call this once, immediately after db.Connect() succeeds in main.go:
//
//	telemetry.StartDBStatsCollector(database)
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}
