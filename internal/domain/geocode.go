package domain

import (
	"context"
	"log/slog"
)

// Place labels a map centre for display.
type Place struct {
	Name      string  `json:"name,omitempty"`
	Borough   string  `json:"borough,omitempty"`
	Label     string  `json:"label,omitempty"`
	Relevance float64 `json:"relevance,omitempty"`
	Source    string  `json:"source"` // "reverse", "none", "failed"
}

// DescribePlace reverse geocodes a map centre. A nil geocoder or a failed
// lookup yields a Place without a name so the map still renders.
func DescribePlace(ctx context.Context, centre Geo, geocoder Geocoder, logger *slog.Logger) Place {
	if geocoder == nil || (centre.Lat == 0 && centre.Lon == 0) {
		return Place{Source: "none"}
	}

	result, err := geocoder.ReverseGeocode(ctx, centre.Lat, centre.Lon)
	if err != nil {
		logger.Warn("map centre lookup failed",
			"lat", centre.Lat,
			"lon", centre.Lon,
			"error", err,
		)
		return Place{Source: "failed"}
	}
	if result.Label == "" {
		return Place{Source: "none"}
	}

	name := result.Neighborhood
	if name == "" {
		name = result.Borough
	}
	return Place{
		Name:      name,
		Borough:   result.Borough,
		Label:     result.Label,
		Relevance: result.Relevance,
		Source:    "reverse",
	}
}
