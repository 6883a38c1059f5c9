package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/couchcryptid/collision-dashboard/internal/observability"
)

const defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// Client labels map centres through the Mapbox reverse geocoding endpoint.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox geocoding client.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// ReverseGeocode returns the neighborhood and borough enclosing the point.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	start := time.Now()
	result, err := c.lookup(ctx, lat, lon)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case result.Label == "":
		outcome = "empty"
	}
	c.metrics.GeocodeRequests.WithLabelValues(outcome).Inc()
	return result, err
}

func (c *Client) lookup(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	// Mapbox paths are lon,lat.
	endpoint := fmt.Sprintf("%s/%.6f,%.6f.json", c.baseURL, lon, lat)
	query := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
		"types":        {"neighborhood,locality,place"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.GeocodingResult{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}
	if len(fc.Features) == 0 {
		c.logger.Debug("no area found for map centre", "lat", lat, "lon", lon)
		return domain.GeocodingResult{}, nil
	}
	return toResult(fc.Features[0]), nil
}

// toResult maps the top feature onto neighborhood and borough. In New York
// the borough is reported as a locality, and as the feature itself when the
// point has no named neighborhood.
func toResult(f feature) domain.GeocodingResult {
	result := domain.GeocodingResult{
		Label:     f.PlaceName,
		Relevance: f.Relevance,
	}
	switch featureType(f.ID) {
	case "neighborhood":
		result.Neighborhood = f.Text
	case "locality":
		result.Borough = f.Text
	}
	for _, ctx := range f.Context {
		if result.Borough == "" && featureType(ctx.ID) == "locality" {
			result.Borough = ctx.Text
		}
	}
	return result
}

// featureType extracts "neighborhood" from ids like "neighborhood.2103290".
func featureType(id string) string {
	kind, _, _ := strings.Cut(id, ".")
	return kind
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	PlaceName string         `json:"place_name"`
	Relevance float64        `json:"relevance"`
	Context   []contextEntry `json:"context"`
}

type contextEntry struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
