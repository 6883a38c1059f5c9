// Package chart renders the dashboard bar and line charts as PNG images.
package chart

import (
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	defaultHeight = 400
	barWidth      = 12
	barSpacing    = 6
	sidePadding   = 160
)

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// palette cycles through trend line colours by year index.
var palette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorGreen,
	chart.ColorRed,
	chart.ColorOrange,
	chart.ColorCyan,
	chart.ColorAlternateGray,
}

func background() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}}
}

// MinuteHistogram renders crashes per minute of the given hour.
func MinuteHistogram(w io.Writer, hour int, buckets []domain.MinuteBucket) error {
	bars := make([]chart.Value, len(buckets))
	maxCount := 0
	for i, b := range buckets {
		label := ""
		if b.Minute%5 == 0 {
			label = strconv.Itoa(b.Minute)
		}
		bars[i] = chart.Value{Value: float64(b.Crashes), Label: label}
		maxCount = max(maxCount, b.Crashes)
	}

	title := fmt.Sprintf("Breakdown by minute between %s", domain.HourWindowLabel(hour))
	return renderBars(w, title, bars, maxCount)
}

// TopCategories renders the ranked categories as one bar each.
func TopCategories(w io.Writer, cat domain.Category, counts []domain.CategoryCount) error {
	bars := make([]chart.Value, 0, len(counts))
	maxCount := 0
	for _, c := range counts {
		bars = append(bars, chart.Value{Value: float64(c.Count), Label: c.Label})
		maxCount = max(maxCount, c.Count)
	}
	return renderBars(w, fmt.Sprintf("Top %d %s", domain.TopN, cat.Label()), bars, maxCount)
}

func renderBars(w io.Writer, title string, bars []chart.Value, maxCount int) error {
	// A bar chart needs at least one bar.
	if len(bars) == 0 {
		bars = []chart.Value{{Value: 0, Label: "no data"}}
	}
	width := barWidth
	spacing := barSpacing
	if len(bars) <= domain.TopN {
		width, spacing = 60, 40
	}

	bc := chart.BarChart{
		Title:      title,
		Background: background(),
		Width:      len(bars)*(width+spacing) + sidePadding,
		Height:     defaultHeight,
		BarWidth:   width,
		BarSpacing: spacing,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(max(maxCount, 1))},
		},
		Bars: bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// Trend renders one line per year with accidents per month.
func Trend(w io.Writer, series []domain.YearSeries) error {
	xs := make([]float64, 12)
	ticks := make([]chart.Tick, 12)
	for i := range xs {
		xs[i] = float64(i + 1)
		ticks[i] = chart.Tick{Value: xs[i], Label: monthLabels[i]}
	}

	maxCount := 0
	lines := make([]chart.Series, 0, len(series))
	for i, s := range series {
		ys := make([]float64, 12)
		for m, n := range s.Months {
			ys[m] = float64(n)
			maxCount = max(maxCount, n)
		}
		col := palette[i%len(palette)]
		lines = append(lines, chart.ContinuousSeries{
			Name:    strconv.Itoa(s.Year),
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col, DotWidth: 3},
		})
	}
	if len(lines) == 0 {
		lines = append(lines, chart.ContinuousSeries{Name: "no data", XValues: xs, YValues: make([]float64, 12)})
	}

	ch := chart.Chart{
		Title:      "Accidents per month",
		Background: background(),
		Height:     defaultHeight,
		Width:      900,
		XAxis:      chart.XAxis{Name: "Month", Ticks: ticks},
		YAxis: chart.YAxis{
			Name:  "Accidents",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(max(maxCount, 1))},
		},
		Series: lines,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render trend chart: %w", err)
	}
	return nil
}
