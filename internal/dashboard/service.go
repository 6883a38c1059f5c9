// Package dashboard composes the dashboard panels from the cached dataset.
// Every call recomputes its panel from scratch; nothing here is stateful
// beyond the shared dataset cache.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/collision-dashboard/internal/dataset"
	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/couchcryptid/collision-dashboard/internal/geo"
	"github.com/couchcryptid/collision-dashboard/internal/observability"
)

// Datasets returns the dataset for a row-count limit. *dataset.Cache satisfies it.
type Datasets interface {
	Get(ctx context.Context, maxRows int) (*dataset.Dataset, error)
}

// MapConfig holds the fixed map view settings.
type MapConfig struct {
	CellPrecision int
	Style         string
}

// View state and hexagon layer settings of the hour map.
const (
	DefaultZoom           = 11
	DefaultPitch          = 50
	DefaultRadius         = 100
	DefaultElevationScale = 4
)

// Service builds panel payloads.
type Service struct {
	datasets    Datasets
	defaultRows int
	geocoder    domain.Geocoder
	mapCfg      MapConfig
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewService creates a Service. defaultRows is used when a request does not
// name a row count. Pass a nil geocoder to disable place labels.
func NewService(datasets Datasets, defaultRows int, geocoder domain.Geocoder, mapCfg MapConfig, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		datasets:    datasets,
		defaultRows: defaultRows,
		geocoder:    geocoder,
		mapCfg:      mapCfg,
		logger:      logger,
		metrics:     metrics,
	}
}

// DefaultRows is the row count used when a request does not name one.
func (s *Service) DefaultRows() int { return s.defaultRows }

// dataset resolves the dataset for a request and records the panel metrics.
// The returned func must be called when the panel is done.
func (s *Service) dataset(ctx context.Context, panel string, rows int) (*dataset.Dataset, func(), error) {
	start := time.Now()
	s.metrics.PanelRequests.WithLabelValues(panel).Inc()
	done := func() {
		s.metrics.PanelDuration.WithLabelValues(panel).Observe(time.Since(start).Seconds())
	}

	if rows <= 0 {
		rows = s.defaultRows
	}
	ds, err := s.datasets.Get(ctx, rows)
	if err != nil {
		done()
		return nil, nil, fmt.Errorf("load dataset (%d rows): %w", rows, err)
	}
	return ds, done, nil
}

// Summary describes the loaded dataset and the bounds of every control.
type Summary struct {
	Rows         int               `json:"rows"`
	Records      int               `json:"records"`
	Stats        dataset.LoadStats `json:"stats"`
	LoadedAt     time.Time         `json:"loaded_at"`
	MaxInjured   int               `json:"max_injured"`
	MaxKilled    int               `json:"max_killed"`
	Years        []int             `json:"years"`
	DefaultYears []int             `json:"default_years"`
}

// Summary returns dataset statistics and control bounds.
func (s *Service) Summary(ctx context.Context, rows int) (Summary, error) {
	ds, done, err := s.dataset(ctx, "summary", rows)
	if err != nil {
		return Summary{}, err
	}
	defer done()

	records := ds.Records()
	trend := domain.MonthlyTrend(records)
	years := trend.Years
	if years == nil {
		years = []int{}
	}
	return Summary{
		Rows:         ds.MaxRows,
		Records:      ds.Len(),
		Stats:        ds.Stats,
		LoadedAt:     ds.LoadedAt,
		MaxInjured:   domain.MaxCasualties(records, domain.Injured),
		MaxKilled:    domain.MaxCasualties(records, domain.Killed),
		Years:        years,
		DefaultYears: trend.DefaultYears(),
	}, nil
}

// MapPanel is the threshold-filtered heat map.
type MapPanel struct {
	Perspective   domain.Perspective `json:"perspective"`
	MinCasualties int                `json:"min_casualties"`
	MaxCasualties int                `json:"max_casualties"`
	Records       int                `json:"records"`
	Cells         []geo.Cell         `json:"cells"`
}

// Map filters by persons casualty threshold and bins the matches.
func (s *Service) Map(ctx context.Context, rows int, p domain.Perspective, minCasualties int) (MapPanel, error) {
	ds, done, err := s.dataset(ctx, "map", rows)
	if err != nil {
		return MapPanel{}, err
	}
	defer done()

	matched := ds.Filter(domain.Filter{Perspective: p, MinCasualties: minCasualties})
	return MapPanel{
		Perspective:   p,
		MinCasualties: minCasualties,
		MaxCasualties: domain.MaxCasualties(ds.Records(), p),
		Records:       len(matched),
		Cells:         geo.Bin(matched, s.mapCfg.CellPrecision),
	}, nil
}

// ViewState positions the 3D hour map.
type ViewState struct {
	Midpoint       domain.Geo `json:"midpoint"`
	Bounds         geo.Bounds `json:"bounds"`
	Zoom           int        `json:"zoom"`
	Pitch          int        `json:"pitch"`
	Radius         int        `json:"radius"`
	ElevationScale int        `json:"elevation_scale"`
	Style          string     `json:"style"`
}

// HourPanel is the heat layer of one hour of the day.
type HourPanel struct {
	Hour    int          `json:"hour"`
	Label   string       `json:"label"`
	Records int          `json:"records"`
	Cells   []geo.Cell   `json:"cells"`
	View    ViewState    `json:"view"`
	Place   domain.Place `json:"place"`
}

// Hour filters to one hour of the day and derives the map view over the matches.
func (s *Service) Hour(ctx context.Context, rows, hour int) (HourPanel, error) {
	ds, done, err := s.dataset(ctx, "hour", rows)
	if err != nil {
		return HourPanel{}, err
	}
	defer done()

	matched := ds.Filter(domain.Filter{Hour: domain.HourPtr(hour)})
	view := ViewState{
		Zoom:           DefaultZoom,
		Pitch:          DefaultPitch,
		Radius:         DefaultRadius,
		ElevationScale: DefaultElevationScale,
		Style:          s.mapCfg.Style,
	}
	place := domain.Place{Source: "none"}
	if mid, bounds, ok := geo.Extent(matched); ok {
		view.Midpoint = mid
		view.Bounds = bounds
		place = domain.DescribePlace(ctx, mid, s.geocoder, s.logger)
	}

	return HourPanel{
		Hour:    hour,
		Label:   domain.HourWindowLabel(hour),
		Records: len(matched),
		Cells:   geo.Bin(matched, s.mapCfg.CellPrecision),
		View:    view,
		Place:   place,
	}, nil
}

// MinutesPanel is the per-minute histogram of one hour.
type MinutesPanel struct {
	Hour    int                   `json:"hour"`
	Label   string                `json:"label"`
	Buckets []domain.MinuteBucket `json:"buckets"`
}

// Minutes buckets the records of an hour by minute.
func (s *Service) Minutes(ctx context.Context, rows, hour int) (MinutesPanel, error) {
	ds, done, err := s.dataset(ctx, "minutes", rows)
	if err != nil {
		return MinutesPanel{}, err
	}
	defer done()

	return MinutesPanel{
		Hour:    hour,
		Label:   domain.HourWindowLabel(hour),
		Buckets: domain.MinuteHistogram(ds.Records(), hour),
	}, nil
}

// Raw returns the records of one hour of the day.
func (s *Service) Raw(ctx context.Context, rows, hour int) ([]domain.Collision, error) {
	ds, done, err := s.dataset(ctx, "raw", rows)
	if err != nil {
		return nil, err
	}
	defer done()

	return ds.Filter(domain.Filter{Hour: domain.HourPtr(hour)}), nil
}

// StreetsPanel ranks dangerous streets for an affected class.
type StreetsPanel struct {
	Class       domain.Class            `json:"class"`
	Perspective domain.Perspective      `json:"perspective"`
	Hour        *int                    `json:"hour,omitempty"`
	Streets     []domain.StreetCasualty `json:"streets"`
}

// Streets ranks collisions by affected people of the class, optionally within one hour.
func (s *Service) Streets(ctx context.Context, rows int, class domain.Class, p domain.Perspective, hour *int) (StreetsPanel, error) {
	ds, done, err := s.dataset(ctx, "streets", rows)
	if err != nil {
		return StreetsPanel{}, err
	}
	defer done()

	records := ds.Records()
	if hour != nil {
		records = ds.Filter(domain.Filter{Perspective: p, Hour: hour})
	}
	return StreetsPanel{
		Class:       class,
		Perspective: p,
		Hour:        hour,
		Streets:     domain.StreetDanger(records, class, p, domain.StreetLimit),
	}, nil
}

// TopPanel is the top-N bar chart of a category.
type TopPanel struct {
	Category domain.Category        `json:"category"`
	Label    string                 `json:"label"`
	Counts   []domain.CategoryCount `json:"counts"`
}

// Top ranks the most frequent values of a category over the whole dataset.
func (s *Service) Top(ctx context.Context, rows int, cat domain.Category) (TopPanel, error) {
	ds, done, err := s.dataset(ctx, "top", rows)
	if err != nil {
		return TopPanel{}, err
	}
	defer done()

	return TopPanel{
		Category: cat,
		Label:    cat.Label(),
		Counts:   domain.TopCategories(ds.Records(), cat, domain.TopN),
	}, nil
}

// TrendPanel is the monthly accident trend of the selected years.
type TrendPanel struct {
	Years    []int               `json:"years"`
	Selected []int               `json:"selected"`
	Series   []domain.YearSeries `json:"series"`
}

// Trend aggregates monthly totals per year. An empty selection means the default
// (earliest) year.
func (s *Service) Trend(ctx context.Context, rows int, years []int) (TrendPanel, error) {
	ds, done, err := s.dataset(ctx, "trend", rows)
	if err != nil {
		return TrendPanel{}, err
	}
	defer done()

	trend := domain.MonthlyTrend(ds.Records())
	if len(years) == 0 {
		years = trend.DefaultYears()
	}
	series := trend.Series(years)

	selected := make([]int, len(series))
	for i, ys := range series {
		selected[i] = ys.Year
	}
	available := trend.Years
	if available == nil {
		available = []int{}
	}
	return TrendPanel{Years: available, Selected: selected, Series: series}, nil
}
