package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissingCoordinates marks a row without a usable latitude or longitude.
	ErrMissingCoordinates = errors.New("missing coordinates")
	// ErrMalformedTime marks a row whose crash date or time cannot be parsed.
	ErrMalformedTime = errors.New("malformed crash date/time")
)

var (
	dateLayouts = []string{"01/02/2006", "2006-01-02", "2006-01-02T15:04:05.000", "2006-01-02T15:04:05"}
	timeLayouts = []string{"15:04", "15:04:05"}
)

// NormalizeColumn maps a source header to the lowercase vocabulary.
func NormalizeColumn(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

// ParseRow converts a row keyed by normalized column name into a Collision.
// Coordinates are checked first so that a row missing both coordinates and a
// valid timestamp is reported as ErrMissingCoordinates.
func ParseRow(row map[string]string) (Collision, error) {
	lat, okLat := parseCoordinate(row[ColLatitude])
	lon, okLon := parseCoordinate(row[ColLongitude])
	if !okLat || !okLon {
		return Collision{}, ErrMissingCoordinates
	}

	ts, err := ParseCrashTime(row[ColCrashDate], row[ColCrashTime])
	if err != nil {
		return Collision{}, err
	}

	return Collision{
		CollisionID: strings.TrimSpace(row[ColCollisionID]),
		Time:        ts,
		Geo:         Geo{Lat: lat, Lon: lon},
		Borough:     strings.TrimSpace(row[ColBorough]),
		ZipCode:     strings.TrimSpace(row[ColZipCode]),
		Persons: Casualties{
			Injured: parseCountOrZero(row[ColPersonsInjured]),
			Killed:  parseCountOrZero(row[ColPersonsKilled]),
		},
		Pedestrians: Casualties{
			Injured: parseCountOrZero(row[ColPedestriansInjured]),
			Killed:  parseCountOrZero(row[ColPedestriansKilled]),
		},
		Cyclists: Casualties{
			Injured: parseCountOrZero(row[ColCyclistsInjured]),
			Killed:  parseCountOrZero(row[ColCyclistsKilled]),
		},
		Motorists: Casualties{
			Injured: parseCountOrZero(row[ColMotoristsInjured]),
			Killed:  parseCountOrZero(row[ColMotoristsKilled]),
		},
		VehicleType:        strings.TrimSpace(row[ColVehicleType]),
		ContributingFactor: strings.TrimSpace(row[ColContributingFactor]),
		OnStreet:           strings.TrimSpace(row[ColOnStreet]),
		CrossStreet:        strings.TrimSpace(row[ColCrossStreet]),
	}, nil
}

// ParseCrashTime combines the crash date and crash time columns into one
// timestamp. Source times carry no zone and are kept as UTC wall-clock values.
func ParseCrashTime(date, timeOfDay string) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeOfDay = strings.TrimSpace(timeOfDay)

	var day time.Time
	var err error
	for _, layout := range dateLayouts {
		if day, err = time.Parse(layout, date); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrMalformedTime, date)
	}

	var tod time.Time
	for _, layout := range timeLayouts {
		if tod, err = time.Parse(layout, timeOfDay); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q", ErrMalformedTime, timeOfDay)
	}

	return time.Date(
		day.Year(), day.Month(), day.Day(),
		tod.Hour(), tod.Minute(), tod.Second(), 0, time.UTC,
	), nil
}

func parseCoordinate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseCountOrZero parses a casualty count, returning 0 for blanks and junk.
// Counts occasionally arrive as "1.0".
func parseCountOrZero(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(v)
}
