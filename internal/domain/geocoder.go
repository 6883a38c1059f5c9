package domain

import "context"

// GeocodingResult is what a provider knows about the area around a point.
type GeocodingResult struct {
	Neighborhood string
	Borough      string
	Label        string // full provider label, e.g. "Midtown, Manhattan, New York"
	Relevance    float64
}

// Geocoder labels coordinates with the enclosing area.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}
