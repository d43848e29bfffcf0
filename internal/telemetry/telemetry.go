// Package telemetry registers the process metrics the scraper and
// HTTP layers increment. Metrics are registered against a private
// registry rather than the global default one, so tests can construct
// an isolated Metrics value.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every counter/gauge the core touches.
type Metrics struct {
	Registry *prometheus.Registry

	UpstreamScrapesTotal      prometheus.Counter
	UpstreamScrapeErrorsTotal *prometheus.CounterVec
	LastRefreshTimestamp      prometheus.Gauge
	GraphFinalReleases        prometheus.Gauge
	GraphRequestsTotal        *prometheus.CounterVec
	UniqueNodeUUIDsTotal      prometheus.Counter
}

// New constructs and registers a fresh Metrics bundle.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		UpstreamScrapesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cincinnati_upstream_scrapes_total",
			Help: "Total number of upstream refresh attempts.",
		}),
		UpstreamScrapeErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cincinnati_upstream_scrape_errors_total",
			Help: "Total number of failed upstream refreshes, by error kind.",
		}, []string{"kind"}),
		LastRefreshTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cincinnati_last_refresh_timestamp_seconds",
			Help: "Unix timestamp of the last successful refresh.",
		}),
		GraphFinalReleases: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cincinnati_graph_final_releases",
			Help: "Number of releases in the most recently built graph.",
		}),
		GraphRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cincinnati_graph_requests_total",
			Help: "Total number of /v1/graph requests, by outcome status.",
		}, []string{"status"}),
		UniqueNodeUUIDsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cincinnati_v1_graph_unique_uuids_total",
			Help: "Total number of distinct node_uuid values seen (per-instance, approximate).",
		}),
	}

	reg.MustRegister(
		m.UpstreamScrapesTotal,
		m.UpstreamScrapeErrorsTotal,
		m.LastRefreshTimestamp,
		m.GraphFinalReleases,
		m.GraphRequestsTotal,
		m.UniqueNodeUUIDsTotal,
	)
	return m
}

// Error kinds used as the "kind" label on UpstreamScrapeErrorsTotal.
const (
	ErrorKindUnreachable       = "unreachable"
	ErrorKindMalformed         = "malformed"
	ErrorKindMissingArchCommit = "missing_arch_commit"
)
