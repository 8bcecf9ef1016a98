package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// refresh loop and risk assessment.
type Metrics struct {
	RefreshCycles   prometheus.Counter
	RefreshErrors   prometheus.Counter
	RefreshDuration prometheus.Histogram
	RefresherActive prometheus.Gauge

	// Feed metrics.
	StationsRefreshed prometheus.Gauge
	FeedFetchDuration *prometheus.HistogramVec // labels: endpoint={stations,gauges,levels,rainfall,readings}
	QualityWarnings   *prometheus.CounterVec   // labels: kind={negative,spike,tuple,fluctuation}

	// Risk assessment metrics.
	StationsOverThreshold prometheus.Gauge
	TownsBySeverity       *prometheus.GaugeVec // labels: tier={low,moderate,high,severe}
	AlertsPublished       prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RefreshCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodwatch",
			Name:      "refresh_cycles_total",
			Help:      "Total completed level refresh cycles.",
		}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodwatch",
			Name:      "refresh_errors_total",
			Help:      "Total refresh cycles that failed before completion.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "floodwatch",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fetch-assess-publish cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		RefresherActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "floodwatch",
			Name:      "refresher_active",
			Help:      "1 when the refresh loop is running, 0 when shut down.",
		}),
		StationsRefreshed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "floodwatch",
			Name:      "stations_refreshed",
			Help:      "Stations with a usable level after the last refresh.",
		}),
		FeedFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "floodwatch",
			Name:      "feed_fetch_duration_seconds",
			Help:      "Flood-monitoring API request duration by endpoint.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		QualityWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodwatch",
			Name:      "quality_warnings_total",
			Help:      "Data quality warnings emitted by the sanitizer, by kind.",
		}, []string{"kind"}),
		StationsOverThreshold: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "floodwatch",
			Name:      "stations_over_threshold",
			Help:      "Stations whose relative level exceeds the risk threshold.",
		}),
		TownsBySeverity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "floodwatch",
			Name:      "towns_by_severity",
			Help:      "Towns in each flood severity tier after the last assessment.",
		}, []string{"tier"}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodwatch",
			Name:      "alerts_published_total",
			Help:      "Total flood alerts published to the sink.",
		}),
	}

	prometheus.MustRegister(
		m.RefreshCycles,
		m.RefreshErrors,
		m.RefreshDuration,
		m.RefresherActive,
		m.StationsRefreshed,
		m.FeedFetchDuration,
		m.QualityWarnings,
		m.StationsOverThreshold,
		m.TownsBySeverity,
		m.AlertsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RefreshCycles:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "floodwatch", Name: "refresh_cycles_total"}),
		RefreshErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "floodwatch", Name: "refresh_errors_total"}),
		RefreshDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "floodwatch", Name: "refresh_duration_seconds"}),
		RefresherActive:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "floodwatch", Name: "refresher_active"}),
		StationsRefreshed:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "floodwatch", Name: "stations_refreshed"}),
		FeedFetchDuration:     prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "floodwatch", Name: "feed_fetch_duration_seconds"}, []string{"endpoint"}),
		QualityWarnings:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "floodwatch", Name: "quality_warnings_total"}, []string{"kind"}),
		StationsOverThreshold: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "floodwatch", Name: "stations_over_threshold"}),
		TownsBySeverity:       prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "floodwatch", Name: "towns_by_severity"}, []string{"tier"}),
		AlertsPublished:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "floodwatch", Name: "alerts_published_total"}),
	}
}
