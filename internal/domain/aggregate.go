package domain

import (
	"cmp"
	"slices"
	"time"
)

const (
	// TopN is the number of categories shown by the top-N bar chart.
	TopN = 5
	// StreetLimit is the number of rows shown by the street danger ranking.
	StreetLimit = 20
	// MinutesPerHour is the fixed bucket count of the minute histogram.
	MinutesPerHour = 60
)

// MinuteBucket is one bar of the minute histogram.
type MinuteBucket struct {
	Minute  int `json:"minute"`
	Crashes int `json:"crashes"`
}

// MinuteHistogram counts the records of the given hour by minute of hour.
// The result always holds 60 buckets, zero-count minutes included.
func MinuteHistogram(records []Collision, hour int) []MinuteBucket {
	buckets := make([]MinuteBucket, MinutesPerHour)
	for i := range buckets {
		buckets[i].Minute = i
	}
	for _, r := range records {
		if r.Time.Hour() != hour {
			continue
		}
		buckets[r.Time.Minute()].Crashes++
	}
	return buckets
}

// CategoryCount is one row of a group-by-count.
type CategoryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TopCategories counts distinct non-null values of the category and returns the
// n most frequent, ordered by count descending. Equal counts are ordered by label
// so the result does not depend on input order.
func TopCategories(records []Collision, cat Category, n int) []CategoryCount {
	counts := make(map[string]int)
	for _, r := range records {
		if v := r.Category(cat); v != "" {
			counts[v]++
		}
	}

	out := make([]CategoryCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, CategoryCount{Label: label, Count: count})
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// StreetCasualty is one row of the street danger ranking.
type StreetCasualty struct {
	Street string    `json:"on_street_name"`
	Count  int       `json:"count"`
	Time   time.Time `json:"date_time"`
}

// StreetDanger ranks individual collisions on named streets by how many people
// of the class were affected. Records with no affected person of the class and
// records without a street name are skipped. Ties are ordered by street name,
// then by time.
func StreetDanger(records []Collision, class Class, p Perspective, limit int) []StreetCasualty {
	var out []StreetCasualty
	for _, r := range records {
		n := r.ClassCasualties(class).Count(p)
		if n < 1 || r.OnStreet == "" {
			continue
		}
		out = append(out, StreetCasualty{Street: r.OnStreet, Count: n, Time: r.Time})
	}

	slices.SortFunc(out, func(a, b StreetCasualty) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Street, b.Street); c != 0 {
			return c
		}
		return a.Time.Compare(b.Time)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []StreetCasualty{}
	}
	return out
}

// Trend holds monthly accident totals per calendar year.
type Trend struct {
	Years  []int
	months map[int]*[12]int
}

// YearSeries is one line of the trend chart: accidents per month, January first.
type YearSeries struct {
	Year   int     `json:"year"`
	Months [12]int `json:"months"`
}

// MonthlyTrend sums records into daily counts by crash date, then re-aggregates
// the days into month-within-year totals.
func MonthlyTrend(records []Collision) Trend {
	daily := make(map[time.Time]int)
	for _, r := range records {
		y, m, d := r.Time.Date()
		daily[time.Date(y, m, d, 0, 0, 0, 0, time.UTC)]++
	}

	t := Trend{months: make(map[int]*[12]int)}
	for day, n := range daily {
		year := day.Year()
		series, ok := t.months[year]
		if !ok {
			series = &[12]int{}
			t.months[year] = series
			t.Years = append(t.Years, year)
		}
		series[day.Month()-1] += n
	}
	slices.Sort(t.Years)
	return t
}

// Series returns one line per requested year that is present in the trend,
// in ascending year order. Unknown years are ignored.
func (t Trend) Series(years []int) []YearSeries {
	selected := slices.Clone(years)
	slices.Sort(selected)
	selected = slices.Compact(selected)

	out := make([]YearSeries, 0, len(selected))
	for _, y := range selected {
		if m, ok := t.months[y]; ok {
			out = append(out, YearSeries{Year: y, Months: *m})
		}
	}
	return out
}

// DefaultYears is the initial trend selection: the earliest year, if any.
func (t Trend) DefaultYears() []int {
	if len(t.Years) == 0 {
		return nil
	}
	return []int{t.Years[0]}
}
