// Package dataset loads the collision CSV into an immutable in-memory dataset
// and memoizes loads by row count.
package dataset

import (
	"slices"
	"time"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
)

// LoadStats summarizes one pass over the source file.
type LoadStats struct {
	RowsRead           int `json:"rows_read"`
	RowsKept           int `json:"rows_kept"`
	MissingCoordinates int `json:"missing_coordinates"`
	Malformed          int `json:"malformed"`
}

// Dataset is the set of collisions loaded for one row-count limit.
// It is never modified after load.
type Dataset struct {
	records  []domain.Collision
	MaxRows  int
	Stats    LoadStats
	LoadedAt time.Time
}

// New wraps already-parsed records. The slice is owned by the dataset afterwards.
func New(records []domain.Collision, maxRows int, stats LoadStats) *Dataset {
	return &Dataset{
		records:  slices.Clip(records),
		MaxRows:  maxRows,
		Stats:    stats,
		LoadedAt: domain.Now(),
	}
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns the shared backing slice. Callers must treat it as read-only;
// use Filter to obtain a copy that may be changed.
func (d *Dataset) Records() []domain.Collision { return d.records }

// Filter returns a narrowed copy of the records matching f.
func (d *Dataset) Filter(f domain.Filter) []domain.Collision {
	return domain.FilterRecords(d.records, f)
}
