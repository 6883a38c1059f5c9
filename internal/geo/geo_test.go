package geo

import (
	"testing"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(lat, lon float64) domain.Collision {
	return domain.Collision{Geo: domain.Geo{Lat: lat, Lon: lon}}
}

func TestBin_GroupsNearbyPoints(t *testing.T) {
	records := []domain.Collision{
		at(40.7580, -73.9855), // Times Square
		at(40.7581, -73.9856),
		at(40.6782, -73.9442), // Brooklyn
	}

	cells := Bin(records, 6)
	require.Len(t, cells, 2)

	assert.Equal(t, 2, cells[0].Count)
	assert.Equal(t, 1, cells[1].Count)
	assert.Len(t, cells[0].Geohash, 6)
	assert.InDelta(t, 40.758, cells[0].Centre.Lat, 0.01)
	assert.InDelta(t, -73.985, cells[0].Centre.Lon, 0.01)

	total := 0
	for _, c := range cells {
		total += c.Count
	}
	assert.Equal(t, len(records), total)
}

func TestBin_ClampsPrecision(t *testing.T) {
	cells := Bin([]domain.Collision{at(40.7, -73.9)}, 99)
	require.Len(t, cells, 1)
	assert.Len(t, cells[0].Geohash, 12)
}

func TestBin_Empty(t *testing.T) {
	assert.Empty(t, Bin(nil, 7))
}

func TestExtent(t *testing.T) {
	records := []domain.Collision{
		at(40.0, -74.0),
		at(41.0, -73.0),
	}

	mid, bounds, ok := Extent(records)
	require.True(t, ok)
	assert.InDelta(t, 40.5, mid.Lat, 1e-9)
	assert.InDelta(t, -73.5, mid.Lon, 1e-9)
	assert.Equal(t, domain.Geo{Lat: 40.0, Lon: -74.0}, bounds.SouthWest)
	assert.Equal(t, domain.Geo{Lat: 41.0, Lon: -73.0}, bounds.NorthEast)
}

func TestExtent_Empty(t *testing.T) {
	_, _, ok := Extent(nil)
	assert.False(t, ok)
}
