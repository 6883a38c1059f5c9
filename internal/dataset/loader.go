package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/couchcryptid/collision-dashboard/internal/observability"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ctxCheckEvery is how many rows are parsed between context checks.
const ctxCheckEvery = 10000

// Loader reads the collision dataset from a CSV file on disk.
type Loader struct {
	path    string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLoader creates a Loader for the CSV file at path.
func NewLoader(path string, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{path: path, logger: logger, metrics: metrics}
}

// Load reads at most maxRows data rows and returns the records that carry
// coordinates and a parseable timestamp.
func (l *Loader) Load(ctx context.Context, maxRows int) (*Dataset, error) {
	start := time.Now()

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open collision source: %w", err)
	}
	defer f.Close()

	ds, err := Read(ctx, f, maxRows)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.path, err)
	}

	l.metrics.RowsRead.Add(float64(ds.Stats.RowsRead))
	l.metrics.RowsKept.Add(float64(ds.Stats.RowsKept))
	l.metrics.RowsDropped.WithLabelValues("missing_coordinates").Add(float64(ds.Stats.MissingCoordinates))
	l.metrics.RowsDropped.WithLabelValues("malformed").Add(float64(ds.Stats.Malformed))
	l.metrics.LoadDuration.Observe(time.Since(start).Seconds())
	l.metrics.DatasetRecords.Set(float64(ds.Len()))

	l.logger.Info("dataset loaded",
		"path", l.path,
		"max_rows", maxRows,
		"rows_read", ds.Stats.RowsRead,
		"rows_kept", ds.Stats.RowsKept,
		"missing_coordinates", ds.Stats.MissingCoordinates,
		"malformed", ds.Stats.Malformed,
		"duration", time.Since(start),
	)
	return ds, nil
}

// Read parses a collision CSV stream. maxRows bounds the number of data rows
// read, not the number kept; a value below 1 reads everything.
func Read(ctx context.Context, r io.Reader, maxRows int) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = domain.NormalizeColumn(h)
	}
	for _, required := range domain.RequiredColumns {
		if !slices.Contains(columns, required) {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, required)
		}
	}

	var stats LoadStats
	var records []domain.Collision
	row := make(map[string]string, len(columns))

	for maxRows < 1 || stats.RowsRead < maxRows {
		if stats.RowsRead%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", stats.RowsRead+2, err)
		}
		stats.RowsRead++

		clear(row)
		for i, col := range columns {
			if i < len(fields) {
				row[col] = fields[i]
			}
		}

		c, err := domain.ParseRow(row)
		switch {
		case errors.Is(err, domain.ErrMissingCoordinates):
			stats.MissingCoordinates++
			continue
		case err != nil:
			stats.Malformed++
			continue
		}
		records = append(records, c)
	}

	stats.RowsKept = len(records)
	return New(records, maxRows, stats), nil
}
