// Package pipeline exports a loaded collision dataset to a downstream sink in
// batches, retrying failed batches with exponential backoff.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// BatchExtractor reads up to batchSize records from the source. An empty batch
// means the source is exhausted.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.Collision, error)
}

// BatchLoader writes multiple records to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.Collision) error
}

// DefaultMaxAttempts bounds how often a single batch is tried before Run gives up.
const DefaultMaxAttempts = 5

// Pipeline orchestrates the extract-load loop.
type Pipeline struct {
	extractor BatchExtractor
	loader    BatchLoader
	logger    *slog.Logger
	batchSize int

	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	exported atomic.Int64
}

// New creates a Pipeline with the given stages.
func New(e BatchExtractor, l BatchLoader, logger *slog.Logger, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:      e,
		loader:         l,
		logger:         logger,
		batchSize:      batchSize,
		maxAttempts:    DefaultMaxAttempts,
		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     5 * time.Second,
	}
}

// Exported returns the number of records loaded so far.
func (p *Pipeline) Exported() int64 { return p.exported.Load() }

// Run extracts and loads batches until the source is exhausted, the context is
// cancelled, or a batch fails maxAttempts times.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("export started", "batch_size", p.batchSize)
	start := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("export interrupted after %d records: %w", p.Exported(), err)
		}

		batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
		if err != nil {
			return fmt.Errorf("extract batch: %w", err)
		}
		if len(batch) == 0 {
			p.logger.Info("export finished",
				"records", p.Exported(),
				"duration", time.Since(start),
			)
			return nil
		}

		if err := p.loadWithRetry(ctx, batch); err != nil {
			return err
		}
		p.exported.Add(int64(len(batch)))
	}
}

// loadWithRetry loads one batch, backing off between failed attempts.
func (p *Pipeline) loadWithRetry(ctx context.Context, batch []domain.Collision) error {
	// Exponential backoff: start at initialBackoff, double each retry, cap at maxBackoff.
	backoff := p.initialBackoff
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		lastErr = p.loader.LoadBatch(ctx, batch)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return errors.Join(lastErr, ctx.Err())
		}
		p.logger.Error("load batch failed",
			"error", lastErr,
			"batch_size", len(batch),
			"attempt", attempt,
		)
		if attempt == p.maxAttempts || !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, p.maxBackoff)
	}
	return fmt.Errorf("load batch of %d records: %w", len(batch), lastErr)
}
