package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockGeocoder struct {
	result GeocodingResult
	err    error
	calls  int
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDescribePlace(t *testing.T) {
	midtown := Geo{Lat: 40.7549, Lon: -73.9840}

	tests := []struct {
		name      string
		centre    Geo
		geocoder  *mockGeocoder
		want      Place
		wantCalls int
	}{
		{
			name:   "success",
			centre: midtown,
			geocoder: &mockGeocoder{result: GeocodingResult{
				Neighborhood: "Midtown",
				Borough:      "Manhattan",
				Label:        "Midtown, Manhattan, New York",
				Relevance:    0.9,
			}},
			want:      Place{Name: "Midtown", Borough: "Manhattan", Label: "Midtown, Manhattan, New York", Relevance: 0.9, Source: "reverse"},
			wantCalls: 1,
		},
		{
			name:   "borough only",
			centre: Geo{Lat: 40.5795, Lon: -74.1502},
			geocoder: &mockGeocoder{result: GeocodingResult{
				Borough: "Staten Island",
				Label:   "Staten Island, New York",
			}},
			want:      Place{Name: "Staten Island", Borough: "Staten Island", Label: "Staten Island, New York", Source: "reverse"},
			wantCalls: 1,
		},
		{
			name:      "provider error",
			centre:    midtown,
			geocoder:  &mockGeocoder{err: errors.New("timeout")},
			want:      Place{Source: "failed"},
			wantCalls: 1,
		},
		{
			name:      "empty result",
			centre:    midtown,
			geocoder:  &mockGeocoder{},
			want:      Place{Source: "none"},
			wantCalls: 1,
		},
		{
			name:      "null island skipped",
			centre:    Geo{},
			geocoder:  &mockGeocoder{},
			want:      Place{Source: "none"},
			wantCalls: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DescribePlace(context.Background(), tt.centre, tt.geocoder, discardLogger())
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCalls, tt.geocoder.calls)
		})
	}
}

func TestDescribePlace_NilGeocoder(t *testing.T) {
	got := DescribePlace(context.Background(), Geo{Lat: 40.7, Lon: -73.9}, nil, discardLogger())
	assert.Equal(t, Place{Source: "none"}, got)
}
