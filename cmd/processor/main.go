package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"payment_engine/internal/config"
	"payment_engine/internal/csvio"
	"payment_engine/internal/domain"
	"payment_engine/internal/engine"
	"payment_engine/internal/ledger"
	"payment_engine/pkg/metrics"
)

const appName = "payment_engine"

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: processor input.csv")
		os.Exit(2)
	}

	cfg, err := config.Load(os.Getenv("PROCESSOR_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)
	logger.Info("Starting run",
		slog.String("name", appName),
		slog.String("input", os.Args[1]),
		slog.Int("shards", cfg.Shards))

	collector := metrics.NewCollector(logger)
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = collector.StartServer(cfg.MetricsAddr)
	}

	input, err := os.Open(os.Args[1])
	if err != nil {
		logger.Error("Cannot open input file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer input.Close()

	ctx := context.Background()
	reader := csvio.NewReader(input, collector, logger)

	snapshots, err := run(ctx, cfg, collector, logger, reader)
	if err != nil {
		logger.Error("Run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := csvio.WriteSnapshots(os.Stdout, snapshots); err != nil {
		logger.Error("Cannot write output", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server shutdown failed", slog.String("error", err.Error()))
		}
	}
	logger.Info("Run complete", slog.Int("accounts", len(snapshots)))
}

func run(
	ctx context.Context,
	cfg *config.Config,
	collector *metrics.Collector,
	logger *slog.Logger,
	reader *csvio.Reader,
) ([]ledger.Snapshot, error) {
	if cfg.Shards > 1 {
		return runSharded(ctx, cfg.Shards, collector, logger, reader)
	}
	return runSequential(ctx, collector, logger, reader)
}

func runSequential(
	ctx context.Context,
	collector *metrics.Collector,
	logger *slog.Logger,
	reader *csvio.Reader,
) ([]ledger.Snapshot, error) {
	eng := engine.New(collector, logger)
	if err := forEachEvent(reader, func(event domain.Event) error {
		return eng.Apply(ctx, event)
	}); err != nil {
		return nil, err
	}
	return eng.Snapshots()
}

func runSharded(
	ctx context.Context,
	shards int,
	collector *metrics.Collector,
	logger *slog.Logger,
	reader *csvio.Reader,
) ([]ledger.Snapshot, error) {
	sharded := engine.NewSharded(ctx, shards, collector, logger)
	feedErr := forEachEvent(reader, sharded.Apply)
	if err := sharded.Close(); err != nil {
		return nil, err
	}
	if feedErr != nil {
		return nil, feedErr
	}
	return sharded.Snapshots()
}

func forEachEvent(reader *csvio.Reader, apply func(domain.Event) error) error {
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if err := apply(event); err != nil {
			return err
		}
	}
}

func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	// Logs go to stderr; stdout carries the output table.
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}
