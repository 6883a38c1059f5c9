package chart

import (
	"bytes"
	"testing"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestMinuteHistogram(t *testing.T) {
	buckets := make([]domain.MinuteBucket, domain.MinutesPerHour)
	for i := range buckets {
		buckets[i] = domain.MinuteBucket{Minute: i, Crashes: i % 7}
	}

	var buf bytes.Buffer
	require.NoError(t, MinuteHistogram(&buf, 9, buckets))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestMinuteHistogram_AllZero(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MinuteHistogram(&buf, 3, domain.MinuteHistogram(nil, 3)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestTopCategories(t *testing.T) {
	tests := []struct {
		name   string
		counts []domain.CategoryCount
	}{
		{"five bars", []domain.CategoryCount{
			{Label: "Sedan", Count: 40},
			{Label: "Station Wagon/Sport Utility Vehicle", Count: 31},
			{Label: "Taxi", Count: 12},
			{Label: "Bike", Count: 5},
			{Label: "Bus", Count: 2},
		}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, TopCategories(&buf, domain.VehicleTypes, tt.counts))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name   string
		series []domain.YearSeries
	}{
		{"two years", []domain.YearSeries{
			{Year: 2019, Months: [12]int{10, 12, 9, 11, 14, 15, 13, 12, 10, 9, 8, 7}},
			{Year: 2020, Months: [12]int{8, 9, 4, 1, 2, 3, 5, 6, 6, 7, 5, 4}},
		}},
		{"no years", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Trend(&buf, tt.series))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}
