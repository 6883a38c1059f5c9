package http

import (
	"fmt"
	"net/url"
	"strconv"
)

// panelQuery holds every query parameter accepted by the panel endpoints.
// Absent parameters keep their zero value; domain parsers supply the defaults.
type panelQuery struct {
	Rows        int    `validate:"gte=0"`
	Hour        int    `validate:"gte=0,lte=23"`
	HasHour     bool   `validate:"-"`
	Min         int    `validate:"gte=0"`
	Perspective string `validate:"omitempty,oneof=injured killed"`
	Class       string `validate:"omitempty,oneof=pedestrians cyclists motorists"`
	Category    string `validate:"omitempty,oneof=vehicle_types contributing_factors street_names"`
	Format      string `validate:"omitempty,oneof=json csv xlsx"`
	Years       []int  `validate:"dive,gte=1900,lte=9999"`
}

// hour returns the hour filter, nil when the request named none.
func (q panelQuery) hour() *int {
	if !q.HasHour {
		return nil
	}
	h := q.Hour
	return &h
}

func parseQuery(values url.Values) (panelQuery, error) {
	var q panelQuery
	var err error

	if q.Rows, _, err = intParam(values, "rows"); err != nil {
		return q, err
	}
	if q.Hour, q.HasHour, err = intParam(values, "hour"); err != nil {
		return q, err
	}
	if q.Min, _, err = intParam(values, "min"); err != nil {
		return q, err
	}
	for _, s := range values["year"] {
		y, err := strconv.Atoi(s)
		if err != nil {
			return q, fmt.Errorf("invalid year %q", s)
		}
		q.Years = append(q.Years, y)
	}

	q.Perspective = values.Get("perspective")
	q.Class = values.Get("class")
	q.Category = values.Get("category")
	q.Format = values.Get("format")
	return q, nil
}

func intParam(values url.Values, key string) (int, bool, error) {
	s := values.Get(key)
	if s == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s %q: must be an integer", key, s)
	}
	return n, true, nil
}
