package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "impact_sim"

// Metrics holds the Prometheus collectors for the simulator.
type Metrics struct {
	SimulationsRun     *prometheus.CounterVec // labels: source={nasa_neo,custom}
	SimulationDuration prometheus.Histogram

	// NASA NeoWs upstream.
	NEORequests        *prometheus.CounterVec   // labels: endpoint={lookup,browse,feed}, outcome={success,not_found,error}
	NEORequestDuration *prometheus.HistogramVec // labels: endpoint
	AsteroidCache      *prometheus.CounterVec   // labels: result={hit,miss}

	// Catalogue sync.
	SyncRuns        *prometheus.CounterVec // labels: outcome={success,error}
	SyncedAsteroids prometheus.Counter

	StreamSubscribers prometheus.Gauge
	HTTPRequests      *prometheus.CounterVec // labels: method, route, status
}

func newMetrics() *Metrics {
	return &Metrics{
		SimulationsRun: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Completed impact simulations by asteroid source.",
		}, []string{"source"}),
		SimulationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_duration_seconds",
			Help:      "Time to resolve the body, calculate and persist one simulation.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		NEORequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "neo_requests_total",
			Help:      "NASA NeoWs API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		NEORequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "neo_request_duration_seconds",
			Help:      "NASA NeoWs API request duration in seconds, retries included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
		AsteroidCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asteroid_cache_total",
			Help:      "Asteroid lookups served from the local store (hit) or the NASA API (miss).",
		}, []string{"result"}),
		SyncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "neo_sync_runs_total",
			Help:      "Catalogue sync runs by outcome.",
		}, []string{"outcome"}),
		SyncedAsteroids: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "neo_synced_asteroids_total",
			Help:      "Asteroids upserted by catalogue syncs.",
		}),
		StreamSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_subscribers",
			Help:      "Clients currently subscribed to the simulation stream.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
	}
}

// NewMetrics creates the collectors and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SimulationsRun,
		m.SimulationDuration,
		m.NEORequests,
		m.NEORequestDuration,
		m.AsteroidCache,
		m.SyncRuns,
		m.SyncedAsteroids,
		m.StreamSubscribers,
		m.HTTPRequests,
	)
	return m
}

// NewMetricsForTesting returns unregistered collectors so tests can build
// as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
