// Package geo bins collisions into map cells and derives the map view.
package geo

import (
	"cmp"
	"slices"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Cell is a geohash cell with the number of collisions inside it.
type Cell struct {
	Geohash string     `json:"geohash"`
	Centre  domain.Geo `json:"centre"`
	Count   int        `json:"count"`
}

// Bin groups records by geohash prefix of the given precision (1–12).
// Cells are ordered by count descending, then geohash.
func Bin(records []domain.Collision, precision int) []Cell {
	precision = max(1, min(precision, 12))

	counts := make(map[string]int)
	for _, r := range records {
		counts[geohash.EncodeWithPrecision(r.Geo.Lat, r.Geo.Lon, precision)]++
	}

	cells := make([]Cell, 0, len(counts))
	for hash, n := range counts {
		centre := geohash.Decode(hash).Center()
		cells = append(cells, Cell{
			Geohash: hash,
			Centre:  domain.Geo{Lat: centre.Lat(), Lon: centre.Lng()},
			Count:   n,
		})
	}
	slices.SortFunc(cells, func(a, b Cell) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Geohash, b.Geohash)
	})
	return cells
}

// Bounds is the bounding box of a set of points.
type Bounds struct {
	SouthWest domain.Geo `json:"south_west"`
	NorthEast domain.Geo `json:"north_east"`
}

// Extent returns the midpoint (mean latitude and longitude) and bounding box of
// the records. ok is false when there are no records.
func Extent(records []domain.Collision) (mid domain.Geo, bounds Bounds, ok bool) {
	if len(records) == 0 {
		return domain.Geo{}, Bounds{}, false
	}

	flat := make([]float64, 0, 2*len(records))
	for _, r := range records {
		flat = append(flat, r.Geo.Lon, r.Geo.Lat)
	}
	mp := geom.NewMultiPointFlat(geom.XY, flat)

	centroid, err := xy.Centroid(mp)
	if err != nil {
		return domain.Geo{}, Bounds{}, false
	}

	b := mp.Bounds()
	return domain.Geo{Lat: centroid.Y(), Lon: centroid.X()},
		Bounds{
			SouthWest: domain.Geo{Lat: b.Min(1), Lon: b.Min(0)},
			NorthEast: domain.Geo{Lat: b.Max(1), Lon: b.Max(0)},
		},
		true
}
