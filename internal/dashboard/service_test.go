package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/collision-dashboard/internal/dataset"
	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/couchcryptid/collision-dashboard/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDatasets struct {
	ds       *dataset.Dataset
	err      error
	lastRows int
}

func (f *fakeDatasets) Get(_ context.Context, maxRows int) (*dataset.Dataset, error) {
	f.lastRows = maxRows
	return f.ds, f.err
}

type fakeGeocoder struct {
	result domain.GeocodingResult
	err    error
	calls  int
}

func (g *fakeGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	g.calls++
	return g.result, g.err
}

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func fixture() []domain.Collision {
	return []domain.Collision{
		{
			Time: at(2019, time.January, 3, 8, 15), Geo: domain.Geo{Lat: 40.70, Lon: -73.90},
			Persons: domain.Casualties{Injured: 1}, Pedestrians: domain.Casualties{Injured: 1},
			VehicleType: "Sedan", OnStreet: "BROADWAY",
		},
		{
			Time: at(2019, time.January, 3, 9, 5), Geo: domain.Geo{Lat: 40.72, Lon: -73.92},
			Persons: domain.Casualties{Injured: 3, Killed: 1}, Pedestrians: domain.Casualties{Injured: 2, Killed: 1},
			VehicleType: "Taxi", ContributingFactor: "Driver Inattention/Distraction", OnStreet: "ATLANTIC AVENUE",
		},
		{
			Time: at(2019, time.February, 14, 9, 45), Geo: domain.Geo{Lat: 40.74, Lon: -73.94},
			Persons: domain.Casualties{Injured: 2}, Cyclists: domain.Casualties{Injured: 2},
			VehicleType: "Sedan", OnStreet: "BROADWAY",
		},
		{
			Time: at(2020, time.March, 1, 23, 59), Geo: domain.Geo{Lat: 40.60, Lon: -73.80},
			Persons: domain.Casualties{Injured: 1}, Motorists: domain.Casualties{Injured: 1},
			VehicleType: "Bus",
		},
	}
}

func newTestService(t *testing.T, geocoder domain.Geocoder) (*Service, *fakeDatasets, *observability.Metrics) {
	t.Helper()
	ds := dataset.New(fixture(), 100, dataset.LoadStats{RowsRead: 5, RowsKept: 4, MissingCoordinates: 1})
	src := &fakeDatasets{ds: ds}
	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(src, 100, geocoder, MapConfig{CellPrecision: 5, Style: "mapbox://styles/mapbox/light-v9"}, logger, metrics)
	return svc, src, metrics
}

func TestService_Summary(t *testing.T) {
	svc, src, metrics := newTestService(t, nil)

	got, err := svc.Summary(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 100, src.lastRows, "zero rows should use the default")
	assert.Equal(t, 4, got.Records)
	assert.Equal(t, 1, got.Stats.MissingCoordinates)
	assert.Equal(t, 3, got.MaxInjured)
	assert.Equal(t, 1, got.MaxKilled)
	assert.Equal(t, []int{2019, 2020}, got.Years)
	assert.Equal(t, []int{2019}, got.DefaultYears)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PanelRequests.WithLabelValues("summary")))
}

func TestService_Map(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	got, err := svc.Map(context.Background(), 0, domain.Injured, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, got.Records)
	assert.Equal(t, 3, got.MaxCasualties)
	total := 0
	for _, c := range got.Cells {
		total += c.Count
	}
	assert.Equal(t, 2, total)
}

func TestService_Map_ZeroThresholdSelectsAll(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	got, err := svc.Map(context.Background(), 0, domain.Killed, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Records)
}

func TestService_Hour(t *testing.T) {
	geocoder := &fakeGeocoder{result: domain.GeocodingResult{Neighborhood: "Ridgewood", Borough: "Queens", Label: "Ridgewood, Queens, New York"}}
	svc, _, _ := newTestService(t, geocoder)

	got, err := svc.Hour(context.Background(), 0, 9)
	require.NoError(t, err)

	assert.Equal(t, 2, got.Records)
	assert.Equal(t, "9:00 and 10:00", got.Label)
	assert.InDelta(t, 40.73, got.View.Midpoint.Lat, 1e-9)
	assert.InDelta(t, -73.93, got.View.Midpoint.Lon, 1e-9)
	assert.Equal(t, DefaultZoom, got.View.Zoom)
	assert.Equal(t, DefaultPitch, got.View.Pitch)
	assert.Equal(t, "reverse", got.Place.Source)
	assert.Equal(t, "Ridgewood", got.Place.Name)
	assert.Equal(t, 1, geocoder.calls)
}

func TestService_Hour_NoMatchesSkipsGeocoding(t *testing.T) {
	geocoder := &fakeGeocoder{}
	svc, _, _ := newTestService(t, geocoder)

	got, err := svc.Hour(context.Background(), 0, 4)
	require.NoError(t, err)

	assert.Zero(t, got.Records)
	assert.Empty(t, got.Cells)
	assert.Equal(t, "none", got.Place.Source)
	assert.Zero(t, geocoder.calls)
}

func TestService_Hour_GeocoderFailureDegrades(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeGeocoder{err: errors.New("boom")})

	got, err := svc.Hour(context.Background(), 0, 9)
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Place.Source)
	assert.Equal(t, 2, got.Records)
}

func TestService_Minutes(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	got, err := svc.Minutes(context.Background(), 0, 9)
	require.NoError(t, err)

	require.Len(t, got.Buckets, domain.MinutesPerHour)
	assert.Equal(t, 1, got.Buckets[5].Crashes)
	assert.Equal(t, 1, got.Buckets[45].Crashes)
}

func TestService_Raw(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	got, err := svc.Raw(context.Background(), 0, 23)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bus", got[0].VehicleType)
}

func TestService_Streets(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	tests := []struct {
		name    string
		class   domain.Class
		hour    *int
		streets []string
	}{
		{"pedestrians all hours", domain.Pedestrians, nil, []string{"ATLANTIC AVENUE", "BROADWAY"}},
		{"pedestrians at 8", domain.Pedestrians, domain.HourPtr(8), []string{"BROADWAY"}},
		{"cyclists", domain.Cyclists, nil, []string{"BROADWAY"}},
		{"motorists without street name", domain.Motorists, nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Streets(context.Background(), 0, tt.class, domain.Injured, tt.hour)
			require.NoError(t, err)

			streets := make([]string, len(got.Streets))
			for i, s := range got.Streets {
				streets[i] = s.Street
			}
			assert.Equal(t, tt.streets, streets)
		})
	}
}

func TestService_Top(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	got, err := svc.Top(context.Background(), 0, domain.VehicleTypes)
	require.NoError(t, err)

	assert.Equal(t, "Vehicle Types", got.Label)
	assert.Equal(t, []domain.CategoryCount{
		{Label: "Sedan", Count: 2},
		{Label: "Bus", Count: 1},
		{Label: "Taxi", Count: 1},
	}, got.Counts)
}

func TestService_Trend(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	t.Run("default selection", func(t *testing.T) {
		got, err := svc.Trend(context.Background(), 0, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{2019, 2020}, got.Years)
		assert.Equal(t, []int{2019}, got.Selected)
		require.Len(t, got.Series, 1)
		assert.Equal(t, 2, got.Series[0].Months[0])
		assert.Equal(t, 1, got.Series[0].Months[1])
	})

	t.Run("unknown years ignored", func(t *testing.T) {
		got, err := svc.Trend(context.Background(), 0, []int{2020, 1999})
		require.NoError(t, err)
		assert.Equal(t, []int{2020}, got.Selected)
		assert.Equal(t, 1, got.Series[0].Months[2])
	})
}

func TestService_LoadErrorIsWrapped(t *testing.T) {
	svc, src, metrics := newTestService(t, nil)
	src.err = errors.New("disk gone")

	_, err := svc.Top(context.Background(), 42, domain.VehicleTypes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "42 rows")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PanelRequests.WithLabelValues("top")))
}
