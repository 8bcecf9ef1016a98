// Package pipeline runs the periodic refresh loop: fetch the latest
// readings, attach them to the station catalog, assess flood risk and
// publish alerts for at-risk towns.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lorcan2440/flood-warning-system/internal/analysis"
	"github.com/lorcan2440/flood-warning-system/internal/flood"
	"github.com/lorcan2440/flood-warning-system/internal/geo"
	"github.com/lorcan2440/flood-warning-system/internal/ingest"
	"github.com/lorcan2440/flood-warning-system/internal/observability"
	"github.com/lorcan2440/flood-warning-system/internal/station"
)

// LevelFetcher retrieves the latest reading for every level and rainfall
// measure.
type LevelFetcher interface {
	FetchLatestLevels(ctx context.Context) (*ingest.LatestFeed, error)
	FetchLatestRainfall(ctx context.Context) (*ingest.LatestFeed, error)
}

// AlertPublisher delivers a batch of town alerts to the sink.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, alerts []Alert) error
}

// Refresher orchestrates the fetch-assess-publish loop over a fixed
// station catalog.
type Refresher struct {
	fetcher   LevelFetcher
	publisher AlertPublisher
	catalog   *station.Catalog
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	interval  time.Duration
	threshold float64
	ready     atomic.Bool

	lastAlerts atomic.Pointer[[]Alert]
}

// New creates a Refresher polling at the given interval. The threshold is
// the relative water level above which a station counts as at risk.
func New(f LevelFetcher, p AlertPublisher, catalog *station.Catalog, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration, threshold float64) *Refresher {
	return &Refresher{
		fetcher:   f,
		publisher: p,
		catalog:   catalog,
		logger:    logger,
		metrics:   metrics,
		clock:     clockwork.NewRealClock(),
		interval:  interval,
		threshold: threshold,
	}
}

// SetClock swaps the time source so tests can drive the loop with a fake
// clock. Pass nil to reset to real time.
func (r *Refresher) SetClock(c clockwork.Clock) {
	if c == nil {
		r.clock = clockwork.NewRealClock()
		return
	}
	r.clock = c
}

// CheckReadiness returns nil once at least one refresh cycle has completed,
// or an error describing why the service is not yet ready.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no refresh cycle has completed yet")
	}
	return nil
}

// LastAlerts returns the alerts produced by the most recent completed
// cycle. Nil before the first cycle; empty when no town left the low tier.
func (r *Refresher) LastAlerts() []Alert {
	if alerts := r.lastAlerts.Load(); alerts != nil {
		return *alerts
	}
	return nil
}

// Run executes refresh cycles until the context is cancelled. The first
// cycle runs immediately so readiness does not wait a full poll interval.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("refresher started",
		"interval", r.interval,
		"threshold", r.threshold,
		"stations", len(r.catalog.Stations),
		"gauges", len(r.catalog.Gauges),
	)
	r.metrics.RefresherActive.Set(1)
	defer r.metrics.RefresherActive.Set(0)

	r.cycle(ctx)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			r.cycle(ctx)
		}
	}
}

// cycle runs one refresh and records the outcome. A failed cycle leaves the
// previous catalog state in place; the next tick retries.
func (r *Refresher) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := r.runCycle(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.Error("refresh cycle failed", "error", err)
		r.metrics.RefreshErrors.Inc()
	}
}

func (r *Refresher) runCycle(ctx context.Context) error {
	start := time.Now()

	levels, err := r.fetcher.FetchLatestLevels(ctx)
	if err != nil {
		return fmt.Errorf("fetch latest levels: %w", err)
	}
	rainfall, err := r.fetcher.FetchLatestRainfall(ctx)
	if err != nil {
		return fmt.Errorf("fetch latest rainfall: %w", err)
	}

	prev := make(map[string]float64, len(r.catalog.Stations))
	for _, s := range r.catalog.Stations {
		if s.LatestLevel != nil {
			prev[s.MeasureID()] = *s.LatestLevel
		}
	}

	ingest.RefreshStationLevels(r.catalog.Stations, levels)
	ingest.RefreshGaugeLevels(r.catalog.Gauges, rainfall)

	r.sanitizeLevels(prev)

	live := 0
	for _, s := range r.catalog.Stations {
		if s.LatestLevel != nil {
			live++
		}
	}
	r.metrics.StationsRefreshed.Set(float64(live))

	over, err := flood.StationsOverThreshold(r.catalog.Stations, r.threshold)
	if err != nil {
		return fmt.Errorf("assess stations: %w", err)
	}
	r.metrics.StationsOverThreshold.Set(float64(len(over)))

	severities := flood.TownSeverity(r.catalog.Stations)
	counts := make(map[flood.Tier]int)
	for _, tier := range severities {
		counts[tier]++
	}
	for _, tier := range []flood.Tier{flood.TierLow, flood.TierModerate, flood.TierHigh, flood.TierSevere} {
		r.metrics.TownsBySeverity.WithLabelValues(tier.String()).Set(float64(counts[tier]))
	}

	alerts := r.buildAlerts(severities)
	r.lastAlerts.Store(&alerts)
	if len(alerts) > 0 {
		if err := r.publisher.PublishAlerts(ctx, alerts); err != nil {
			return fmt.Errorf("publish alerts: %w", err)
		}
		r.metrics.AlertsPublished.Add(float64(len(alerts)))
	}

	r.metrics.RefreshCycles.Inc()
	r.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	r.ready.Store(true)

	r.logger.Info("refresh cycle complete",
		"live_stations", live,
		"over_threshold", len(over),
		"alerts", len(alerts),
		"duration", time.Since(start),
	)
	return nil
}

// sanitizeLevels runs the data-quality checks over each station's fresh
// reading, pairing it with the previous cycle's (already repaired) value so
// spikes have a predecessor to fall back on. Repaired values are written
// back to the catalog and warning counts are recorded per kind.
func (r *Refresher) sanitizeLevels(prev map[string]float64) {
	opts := analysis.DefaultSanitizeOptions()
	for _, s := range r.catalog.Stations {
		if s.LatestLevel == nil {
			continue
		}
		samples := []analysis.Sample{{Value: *s.LatestLevel}}
		if p, ok := prev[s.MeasureID()]; ok {
			samples = []analysis.Sample{{Value: p}, {Value: *s.LatestLevel}}
		}

		warnings := analysis.SanitizeSeries(s.Name(), samples, s, opts)
		if len(warnings) == 0 {
			continue
		}
		repaired := samples[len(samples)-1].Value
		s.LatestLevel = &repaired
		for kind, n := range warnings.KindCounts() {
			r.metrics.QualityWarnings.WithLabelValues(kind).Add(float64(n))
		}
		r.logger.Warn("station reading repaired",
			"station", s.Name(),
			"warnings", warnings.Strings(),
		)
	}
}

// buildAlerts produces one alert per town outside the low tier, ordered by
// descending group size the way the town grouping ranks them.
func (r *Refresher) buildAlerts(severities map[string]flood.Tier) []Alert {
	generatedAt := r.clock.Now().UTC()

	var alerts []Alert
	for _, group := range geo.GroupByTown(r.catalog.Stations) {
		tier := severities[group.Town]
		if tier == flood.TierLow {
			continue
		}

		readings := make([]StationReading, 0, len(group.Stations))
		for _, s := range group.Stations {
			level, ok := s.RelativeWaterLevel()
			if !ok {
				continue
			}
			readings = append(readings, StationReading{Name: s.Name(), RelativeLevel: level})
		}

		alerts = append(alerts, Alert{
			Town:        group.Town,
			Severity:    tier.String(),
			Stations:    readings,
			GeneratedAt: generatedAt,
		})
	}
	return alerts
}
