package pipeline

import (
	"context"
	"sync"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
)

// SliceExtractor hands out an in-memory record slice in consecutive batches.
type SliceExtractor struct {
	mu      sync.Mutex
	records []domain.Collision
	next    int
}

// NewSliceExtractor wraps records. The slice is read, never modified.
func NewSliceExtractor(records []domain.Collision) *SliceExtractor {
	return &SliceExtractor{records: records}
}

// ExtractBatch returns the next batch, empty once every record has been handed out.
func (s *SliceExtractor) ExtractBatch(_ context.Context, batchSize int) ([]domain.Collision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	end := min(s.next+max(batchSize, 1), len(s.records))
	batch := s.records[s.next:end]
	s.next = end
	return batch, nil
}
