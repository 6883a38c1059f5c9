package dataset

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/couchcryptid/collision-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRead_DropsRowsWithoutCoordinates(t *testing.T) {
	ds, err := Read(context.Background(), strings.NewReader(threeRows), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, LoadStats{RowsRead: 3, RowsKept: 2, MissingCoordinates: 1}, ds.Stats)
	for _, r := range ds.Records() {
		assert.NotZero(t, r.Geo.Lat)
		assert.NotZero(t, r.Geo.Lon)
	}
}

func TestRead_ParsesFields(t *testing.T) {
	ds, err := Read(context.Background(), strings.NewReader(threeRows), 0)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	first := ds.Records()[0]
	assert.Equal(t, time.Date(2021, 9, 11, 2, 39, 0, 0, time.UTC), first.Time)
	assert.Equal(t, domain.Geo{Lat: 40.667202, Lon: -73.8665}, first.Geo)
	assert.Equal(t, "WHITESTONE EXPRESSWAY", first.OnStreet)
	assert.Equal(t, "20 AVENUE", first.CrossStreet)
	assert.Equal(t, 2, first.Persons.Injured)
	assert.Equal(t, 2, first.Motorists.Injured)
	assert.Equal(t, "Aggressive Driving/Road Rage", first.ContributingFactor)
	assert.Equal(t, "Sedan", first.VehicleType)
	assert.Equal(t, "4455765", first.CollisionID)
	assert.Empty(t, first.Borough)

	second := ds.Records()[1]
	assert.Equal(t, "BROOKLYN", second.Borough)
	assert.Equal(t, "11208", second.ZipCode)
	assert.Empty(t, second.OnStreet, "blank street is null")
	assert.Equal(t, 1, second.Pedestrians.Injured)
}

func TestRead_MaxRowsBoundsRowsRead(t *testing.T) {
	ds, err := Read(context.Background(), strings.NewReader(threeRows), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, ds.Stats.RowsRead)
	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, 1, ds.MaxRows)
}

func TestRead_MalformedTimestamp(t *testing.T) {
	data := testHeader +
		"not-a-date,1:00,,,40.7,-73.9,,MAIN ST,,,0,0,0,0,0,0,0,0,,1,Sedan\n" +
		"01/02/2020,25:99,,,40.7,-73.9,,MAIN ST,,,0,0,0,0,0,0,0,0,,2,Sedan\n" +
		"01/02/2020,13:05,,,40.7,-73.9,,MAIN ST,,,0,0,0,0,0,0,0,0,,3,Sedan\n"

	ds, err := Read(context.Background(), strings.NewReader(data), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, 2, ds.Stats.Malformed)
}

func TestRead_HeaderIsCaseInsensitive(t *testing.T) {
	data := "crash date, Crash Time ,Latitude,LONGITUDE\n2021-09-11T00:00:00.000,9:30,40.7,-73.9\n"

	ds, err := Read(context.Background(), strings.NewReader(data), 0)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, time.Date(2021, 9, 11, 9, 30, 0, 0, time.UTC), ds.Records()[0].Time)
}

func TestRead_MissingRequiredColumn(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader("CRASH DATE,CRASH TIME,LATITUDE\n"), 0)
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "longitude")
}

func TestRead_EmptyFile(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader(""), 0)
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestRead_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Read(ctx, strings.NewReader(threeRows), 0)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRead_StampsLoadTime(t *testing.T) {
	at := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { domain.SetClock(nil) })

	ds, err := Read(context.Background(), strings.NewReader(threeRows), 0)
	require.NoError(t, err)
	assert.Equal(t, at, ds.LoadedAt)
}

func TestLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collisions.csv")
	require.NoError(t, os.WriteFile(path, []byte(threeRows), 0o600))

	metrics := observability.NewMetricsForTesting()
	ds, err := NewLoader(path, discardLogger(), metrics).Load(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.RowsRead))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.RowsKept))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RowsDropped.WithLabelValues("missing_coordinates")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.DatasetRecords))
}

func TestLoader_Load_MissingFile(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "nope.csv"), discardLogger(), observability.NewMetricsForTesting())

	_, err := loader.Load(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "open collision source")
}

func TestDataset_FilterReturnsCopy(t *testing.T) {
	ds, err := Read(context.Background(), strings.NewReader(threeRows), 0)
	require.NoError(t, err)

	filtered := ds.Filter(domain.Filter{Perspective: domain.Injured})
	require.Len(t, filtered, 2)
	filtered[0].OnStreet = "CHANGED"

	assert.Equal(t, "WHITESTONE EXPRESSWAY", ds.Records()[0].OnStreet)
}
