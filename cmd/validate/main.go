// Command validate performs data integrity checks on a collision CSV using the
// dashboard's loader and aggregators. It verifies the load accounting against an
// independent scan of the file, then checks every panel aggregation for the
// properties the dashboard relies on.
//
// Usage:
//
//	go run ./cmd/validate -csv Motor_Vehicle_Collisions_2012-2021_v1.csv -rows 100000
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/collision-dashboard/internal/dataset"
	"github.com/couchcryptid/collision-dashboard/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to the collision CSV")
	rows := flag.Int("rows", 0, "maximum data rows to read (0 reads everything)")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *rows); code != 0 {
		os.Exit(code)
	}
}

func run(path string, maxRows int) int {
	fmt.Println("=== Collision Data Integrity Validation ===")
	fmt.Println()

	scan, err := scanFile(path, maxRows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: scan %s: %v\n", path, err)
		return 1
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open %s: %v\n", path, err)
		return 1
	}
	defer f.Close()

	ds, err := dataset.Read(context.Background(), f, maxRows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", path, err)
		return 1
	}
	records := ds.Records()

	phases := []*phase{
		validateLoadAccounting(ds, scan),
		validateFilters(records),
		validateMinuteHistogram(records),
		validateTopCategories(records),
		validateStreetRanking(records),
		validateTrend(records),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d read, %d kept, %d without coordinates, %d malformed\n",
		ds.Stats.RowsRead, ds.Stats.RowsKept, ds.Stats.MissingCoordinates, ds.Stats.Malformed)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 20 {
				fmt.Printf("  ... and %d more\n", len(p.errors)-20)
				break
			}
			fmt.Printf("  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	return 0
}

// scanResult is an independent count of the raw file, made without the loader.
type scanResult struct {
	rows              int
	blankCoordinates  int
	missingHeaderCols []string
}

func scanFile(path string, maxRows int) (scanResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return scanResult{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return scanResult{}, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var res scanResult
	for _, col := range domain.RequiredColumns {
		if _, ok := idx[col]; !ok {
			res.missingHeaderCols = append(res.missingHeaderCols, col)
		}
	}
	latIdx, okLat := idx[domain.ColLatitude]
	lonIdx, okLon := idx[domain.ColLongitude]

	for maxRows < 1 || res.rows < maxRows {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row %d: %w", res.rows+2, err)
		}
		res.rows++
		if !okLat || !okLon || blank(row, latIdx) || blank(row, lonIdx) {
			res.blankCoordinates++
		}
	}
	return res, nil
}

func blank(row []string, i int) bool {
	return i >= len(row) || strings.TrimSpace(row[i]) == ""
}

// ── Phase 1: load accounting ──

func validateLoadAccounting(ds *dataset.Dataset, scan scanResult) *phase {
	p := &phase{name: "Load accounting"}
	s := ds.Stats

	if len(scan.missingHeaderCols) > 0 {
		p.errorf("header missing required columns: %v", scan.missingHeaderCols)
	}
	if s.RowsRead != scan.rows {
		p.errorf("rows read: loader=%d scan=%d", s.RowsRead, scan.rows)
	}
	if s.RowsKept+s.MissingCoordinates+s.Malformed != s.RowsRead {
		p.errorf("kept %d + missing %d + malformed %d != read %d",
			s.RowsKept, s.MissingCoordinates, s.Malformed, s.RowsRead)
	}
	// Unparseable non-blank coordinates also count as missing, so the loader
	// may drop more than the blank scan finds, never fewer.
	if s.MissingCoordinates < scan.blankCoordinates {
		p.errorf("missing coordinates: loader=%d < blank in file=%d", s.MissingCoordinates, scan.blankCoordinates)
	}
	if ds.Len() != s.RowsKept {
		p.errorf("dataset holds %d records, stats say %d", ds.Len(), s.RowsKept)
	}
	return p
}

// ── Phase 2: filters ──

func validateFilters(records []domain.Collision) *phase {
	p := &phase{name: "Threshold and hour filters"}

	for _, persp := range []domain.Perspective{domain.Injured, domain.Killed} {
		if n := len(domain.FilterRecords(records, domain.Filter{Perspective: persp})); n != len(records) {
			p.errorf("%s threshold 0 selected %d of %d records", persp, n, len(records))
		}
		maxCount := domain.MaxCasualties(records, persp)
		if n := len(domain.FilterRecords(records, domain.Filter{Perspective: persp, MinCasualties: maxCount + 1})); n != 0 {
			p.errorf("%s threshold above max (%d) selected %d records", persp, maxCount+1, n)
		}
	}

	total := 0
	for h := range 24 {
		matched := domain.FilterRecords(records, domain.Filter{Hour: domain.HourPtr(h)})
		for _, r := range matched {
			if r.Time.Hour() != h {
				p.errorf("hour %d filter returned record at %s", h, r.Time)
				break
			}
		}
		total += len(matched)
	}
	if total != len(records) {
		p.errorf("hour filters cover %d of %d records", total, len(records))
	}
	return p
}

// ── Phase 3: minute histogram ──

func validateMinuteHistogram(records []domain.Collision) *phase {
	p := &phase{name: "Minute histogram"}
	for h := range 24 {
		buckets := domain.MinuteHistogram(records, h)
		if len(buckets) != domain.MinutesPerHour {
			p.errorf("hour %d: %d buckets", h, len(buckets))
			continue
		}
		sum := 0
		for _, b := range buckets {
			sum += b.Crashes
		}
		want := len(domain.FilterRecords(records, domain.Filter{Hour: domain.HourPtr(h)}))
		if sum != want {
			p.errorf("hour %d: histogram sums to %d, hour has %d records", h, sum, want)
		}
	}
	return p
}

// ── Phase 4: top categories ──

func validateTopCategories(records []domain.Collision) *phase {
	p := &phase{name: "Top-5 categories"}
	for _, cat := range []domain.Category{domain.VehicleTypes, domain.ContributingFactors, domain.StreetNames} {
		top := domain.TopCategories(records, cat, domain.TopN)
		if len(top) > domain.TopN {
			p.errorf("%s: %d entries", cat, len(top))
		}
		for i, c := range top {
			if c.Label == "" {
				p.errorf("%s: null label at rank %d", cat, i+1)
			}
			if i > 0 && c.Count > top[i-1].Count {
				p.errorf("%s: count increases at rank %d", cat, i+1)
			}
		}
	}
	return p
}

// ── Phase 5: street ranking ──

func validateStreetRanking(records []domain.Collision) *phase {
	p := &phase{name: "Street danger ranking"}
	for _, class := range []domain.Class{domain.Pedestrians, domain.Cyclists, domain.Motorists} {
		for _, persp := range []domain.Perspective{domain.Injured, domain.Killed} {
			rows := domain.StreetDanger(records, class, persp, domain.StreetLimit)
			if len(rows) > domain.StreetLimit {
				p.errorf("%s/%s: %d rows", class, persp, len(rows))
			}
			for i, r := range rows {
				if r.Count < 1 {
					p.errorf("%s/%s: count %d at rank %d", class, persp, r.Count, i+1)
				}
				if r.Street == "" {
					p.errorf("%s/%s: null street at rank %d", class, persp, i+1)
				}
				if i > 0 && r.Count > rows[i-1].Count {
					p.errorf("%s/%s: count increases at rank %d", class, persp, i+1)
				}
			}
		}
	}
	return p
}

// ── Phase 6: monthly trend ──

func validateTrend(records []domain.Collision) *phase {
	p := &phase{name: "Monthly trend"}

	want := map[[2]int]int{}
	for _, r := range records {
		want[[2]int{r.Time.Year(), int(r.Time.Month())}]++
	}

	trend := domain.MonthlyTrend(records)
	total := 0
	for _, s := range trend.Series(trend.Years) {
		for m, n := range s.Months {
			if w := want[[2]int{s.Year, m + 1}]; n != w {
				p.errorf("%d-%02d: trend %d, records %d", s.Year, m+1, n, w)
			}
			total += n
		}
	}
	if total != len(records) {
		p.errorf("trend totals %d, dataset has %d records", total, len(records))
	}
	return p
}
