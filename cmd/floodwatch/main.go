package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/lorcan2440/flood-warning-system/internal/adapter/http"
	kafkaadapter "github.com/lorcan2440/flood-warning-system/internal/adapter/kafka"
	"github.com/lorcan2440/flood-warning-system/internal/config"
	"github.com/lorcan2440/flood-warning-system/internal/ingest"
	"github.com/lorcan2440/flood-warning-system/internal/observability"
	"github.com/lorcan2440/flood-warning-system/internal/pipeline"
	"github.com/lorcan2440/flood-warning-system/internal/station"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := ingest.NewClient(cfg.APIBaseURL, cfg.APITimeout, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := buildCatalog(ctx, client, logger)
	if err != nil {
		logger.Error("failed to build station catalog", "error", err)
		os.Exit(1)
	}

	// Alert sink is feature-flagged; without Kafka, alerts go to the log.
	var publisher pipeline.AlertPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka alert sink enabled", "topic", cfg.KafkaAlertTopic)
	} else {
		publisher = logPublisher{logger: logger}
		logger.Info("kafka alert sink disabled, logging alerts")
	}

	refresher := pipeline.New(client, publisher, catalog, logger, metrics, cfg.PollInterval, cfg.RiskThreshold)

	srv := httpadapter.NewServer(cfg.HTTPAddr, refresher, refresher, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh loop.
	go func() {
		if err := refresher.Run(ctx); err != nil {
			logger.Error("refresher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// buildCatalog fetches every monitored station kind plus the rainfall
// gauges once at startup. The catalog is fixed for the process lifetime;
// only readings are refreshed afterwards.
func buildCatalog(ctx context.Context, client *ingest.Client, logger *slog.Logger) (*station.Catalog, error) {
	catalog := &station.Catalog{}

	for _, kind := range []ingest.StationKind{ingest.KindRiver, ingest.KindTidal, ingest.KindGroundwater} {
		feed, err := client.FetchStations(ctx, kind)
		if err != nil {
			return nil, err
		}
		catalog.Stations = append(catalog.Stations, ingest.BuildStations(feed, kind)...)
	}

	gaugeFeed, err := client.FetchGauges(ctx)
	if err != nil {
		return nil, err
	}
	catalog.Gauges = ingest.BuildGauges(gaugeFeed)

	logger.Info("station catalog built", "stations", len(catalog.Stations), "gauges", len(catalog.Gauges))
	return catalog, nil
}

// logPublisher writes alerts to the log instead of an external sink.
type logPublisher struct {
	logger *slog.Logger
}

func (p logPublisher) PublishAlerts(_ context.Context, alerts []pipeline.Alert) error {
	for _, alert := range alerts {
		p.logger.Warn("flood alert",
			"town", alert.Town,
			"severity", alert.Severity,
			"stations", len(alert.Stations),
		)
	}
	return nil
}
