// Command export loads the cleaned collision dataset and publishes every record
// to a Kafka topic, one message per collision keyed by collision id.
//
// Usage:
//
//	DATA_PATH=collisions.csv KAFKA_BROKERS=localhost:9092 go run ./cmd/export
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	kafkaadapter "github.com/couchcryptid/collision-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/collision-dashboard/internal/config"
	"github.com/couchcryptid/collision-dashboard/internal/dataset"
	"github.com/couchcryptid/collision-dashboard/internal/observability"
	"github.com/couchcryptid/collision-dashboard/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	ds, err := dataset.NewLoader(cfg.DataPath, logger, metrics).Load(ctx, cfg.DataMaxRows)
	if err != nil {
		return err
	}

	writer := kafkaadapter.NewWriter(cfg, metrics, logger)
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}()

	p := pipeline.New(pipeline.NewSliceExtractor(ds.Records()), writer, logger, cfg.ExportBatchSize)
	if err := p.Run(ctx); err != nil {
		return err
	}

	logger.Info("dataset exported",
		"topic", cfg.KafkaTopic,
		"brokers", cfg.KafkaBrokers,
		"records", p.Exported(),
	)
	return nil
}
