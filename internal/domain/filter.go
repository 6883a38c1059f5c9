package domain

import "fmt"

// Perspective selects which casualty direction a panel looks at.
type Perspective string

const (
	Injured Perspective = "injured"
	Killed  Perspective = "killed"
)

// ParsePerspective accepts "injured" or "killed"; empty defaults to killed,
// which is the first option offered by the dashboard.
func ParsePerspective(s string) (Perspective, error) {
	switch Perspective(s) {
	case "":
		return Killed, nil
	case Injured, Killed:
		return Perspective(s), nil
	default:
		return "", fmt.Errorf("unknown perspective %q", s)
	}
}

// Class is an affected class of person.
type Class string

const (
	Pedestrians Class = "pedestrians"
	Cyclists    Class = "cyclists"
	Motorists   Class = "motorists"
)

// ParseClass accepts pedestrians, cyclists or motorists; empty defaults to pedestrians.
func ParseClass(s string) (Class, error) {
	switch Class(s) {
	case "":
		return Pedestrians, nil
	case Pedestrians, Cyclists, Motorists:
		return Class(s), nil
	default:
		return "", fmt.Errorf("unknown affected class %q", s)
	}
}

// Category is a categorical column ranked by the top-N panel.
type Category string

const (
	VehicleTypes        Category = "vehicle_types"
	ContributingFactors Category = "contributing_factors"
	StreetNames         Category = "street_names"
)

// ParseCategory accepts vehicle_types, contributing_factors or street_names;
// empty defaults to vehicle_types.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case "":
		return VehicleTypes, nil
	case VehicleTypes, ContributingFactors, StreetNames:
		return Category(s), nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}

// Label is the human readable axis title of the category.
func (c Category) Label() string {
	switch c {
	case VehicleTypes:
		return "Vehicle Types"
	case ContributingFactors:
		return "Contributing Factors"
	case StreetNames:
		return "Street Names"
	default:
		return string(c)
	}
}

// Filter narrows records by a persons casualty threshold and an optional hour.
// A nil Hour matches every hour; MinCasualties of 0 matches every record.
type Filter struct {
	Perspective   Perspective
	MinCasualties int
	Hour          *int
}

// Matches reports whether c passes the filter. Hour matching is exact
// hour-of-day equality, never a rolling window.
func (f Filter) Matches(c Collision) bool {
	if c.Persons.Count(f.Perspective) < f.MinCasualties {
		return false
	}
	if f.Hour != nil && c.Time.Hour() != *f.Hour {
		return false
	}
	return true
}

// FilterRecords returns a new slice holding the records that match f.
// The input is never modified.
func FilterRecords(records []Collision, f Filter) []Collision {
	out := make([]Collision, 0, len(records)/4)
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// MaxCasualties returns the largest persons count for the perspective, used as
// the upper bound of the threshold slider.
func MaxCasualties(records []Collision, p Perspective) int {
	maxCount := 0
	for _, r := range records {
		if n := r.Persons.Count(p); n > maxCount {
			maxCount = n
		}
	}
	return maxCount
}

// HourWindowLabel renders the cosmetic "H:00 and H+1:00" label for an hour.
func HourWindowLabel(hour int) string {
	return fmt.Sprintf("%d:00 and %d:00", hour, (hour+1)%24)
}

// HourPtr is a convenience for building a Filter with an hour.
func HourPtr(h int) *int { return &h }
