package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/collision-dashboard/internal/config"
	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/couchcryptid/collision-dashboard/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes collisions to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured export topic.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.ExportBatchSize,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// LoadBatch serializes and publishes collisions in a single WriteMessages call.
// Messages are keyed by collision id so a re-export lands on the same partition.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.Collision) error {
	if len(records) == 0 {
		return nil
	}
	exportedAt := domain.Now()
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i], exportedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d collisions: %w", len(msgs), err)
	}
	w.metrics.MessagesExported.Add(float64(len(msgs)))
	w.logger.Debug("batch published", "topic", w.writer.Topic, "messages", len(msgs))
	return nil
}

// Close flushes pending messages and releases the writer's connections.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Collision into a Kafka message.
func serializeToMessage(c domain.Collision, exportedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize collision: %w", err)
	}
	msg := kafkago.Message{
		Value: data,
		Headers: []kafkago.Header{
			{Key: "borough", Value: []byte(c.Borough)},
			{Key: "exported_at", Value: []byte(exportedAt.Format(time.RFC3339))},
		},
	}
	if c.CollisionID != "" {
		msg.Key = []byte(c.CollisionID)
	}
	return msg, nil
}
