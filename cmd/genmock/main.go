// Command genmock writes a deterministic mock NYC collision CSV in the NYPD
// export schema. The output is re-read with the dashboard's own loader so the
// printed statistics match what the service would keep.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/collisions.csv -rows 5000 -seed 7
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/collision-dashboard/internal/dataset"
	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Source header, upper case as in the NYC Open Data export.
var header = []string{
	"CRASH DATE", "CRASH TIME", "BOROUGH", "ZIP CODE", "LATITUDE", "LONGITUDE", "LOCATION",
	"ON STREET NAME", "CROSS STREET NAME", "OFF STREET NAME",
	"NUMBER OF PERSONS INJURED", "NUMBER OF PERSONS KILLED",
	"NUMBER OF PEDESTRIANS INJURED", "NUMBER OF PEDESTRIANS KILLED",
	"NUMBER OF CYCLIST INJURED", "NUMBER OF CYCLIST KILLED",
	"NUMBER OF MOTORIST INJURED", "NUMBER OF MOTORIST KILLED",
	"CONTRIBUTING FACTOR VEHICLE 1", "COLLISION_ID", "VEHICLE TYPE CODE 1",
}

type borough struct {
	name     string
	zip      string
	lat, lon float64
	streets  []string
}

var boroughs = []borough{
	{"MANHATTAN", "10019", 40.7638, -73.9918, []string{"BROADWAY", "2 AVENUE", "WEST 42 STREET", "FDR DRIVE", "CANAL STREET"}},
	{"BROOKLYN", "11208", 40.6687, -73.8765, []string{"ATLANTIC AVENUE", "FLATBUSH AVENUE", "BELT PARKWAY", "EASTERN PARKWAY"}},
	{"QUEENS", "11434", 40.6788, -73.7918, []string{"NORTHERN BOULEVARD", "QUEENS BOULEVARD", "LONG ISLAND EXPRESSWAY", "ROCKAWAY BOULEVARD"}},
	{"BRONX", "10475", 40.8682, -73.8315, []string{"GRAND CONCOURSE", "BRUCKNER BOULEVARD", "MAJOR DEEGAN EXPRESSWAY"}},
	{"STATEN ISLAND", "10314", 40.6049, -74.1484, []string{"HYLAN BOULEVARD", "RICHMOND AVENUE", "STATEN ISLAND EXPRESSWAY"}},
}

var vehicleTypes = []string{
	"Sedan", "Station Wagon/Sport Utility Vehicle", "Taxi", "Pick-up Truck",
	"Box Truck", "Bus", "Bike", "Motorcycle", "E-Bike",
}

var factors = []string{
	"Unspecified", "Driver Inattention/Distraction", "Failure to Yield Right-of-Way",
	"Following Too Closely", "Backing Unsafely", "Passing or Lane Usage Improper",
	"Unsafe Speed", "Traffic Control Disregarded", "Pavement Slippery",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the mock CSV")
	rows := flag.Int("rows", 2000, "number of data rows to generate")
	years := flag.Int("years", 3, "number of calendar years covered, ending at the fixed clock")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *out == "" || *rows < 1 || *years < 1 {
		flag.Usage()
		return fmt.Errorf("missing or invalid flags: -out, -rows, -years")
	}

	// Fixed clock so the date range, and therefore the file, is reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2021, time.December, 31, 23, 59, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	data, err := generate(*rows, *years, rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Printf("wrote %d rows: %s", *rows, *out)

	ds, err := dataset.Read(context.Background(), bytes.NewReader(data), 0)
	if err != nil {
		return fmt.Errorf("re-read mock data: %w", err)
	}
	printStats(ds)
	return nil
}

func generate(rows, years int, rng *rand.Rand) ([]byte, error) {
	end := domain.Now()
	start := time.Date(end.Year()-years+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	span := end.Sub(start)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for i := range rows {
		ts := start.Add(time.Duration(rng.Int64N(int64(span))))
		b := boroughs[rng.IntN(len(boroughs))]

		lat := b.lat + rng.NormFloat64()*0.02
		lon := b.lon + rng.NormFloat64()*0.02
		latStr, lonStr := strconv.FormatFloat(lat, 'f', 6, 64), strconv.FormatFloat(lon, 'f', 6, 64)
		location := fmt.Sprintf("(%s, %s)", latStr, lonStr)
		// Roughly one row in ten has no coordinates, as in the real export.
		if rng.IntN(10) == 0 {
			latStr, lonStr, location = "", "", ""
		}

		var pedInj, pedKill, cycInj, cycKill, motInj, motKill int
		switch rng.IntN(6) {
		case 0:
			pedInj = rng.IntN(3)
			pedKill = boolInt(rng.IntN(40) == 0)
		case 1:
			cycInj = rng.IntN(2)
			cycKill = boolInt(rng.IntN(80) == 0)
		default:
			motInj = rng.IntN(4)
			motKill = boolInt(rng.IntN(120) == 0)
		}

		street := b.streets[rng.IntN(len(b.streets))]
		cross := b.streets[rng.IntN(len(b.streets))]
		if rng.IntN(5) == 0 {
			street = ""
		}
		vehicle := vehicleTypes[rng.IntN(len(vehicleTypes))]
		if rng.IntN(25) == 0 {
			vehicle = ""
		}

		record := []string{
			ts.Format("01/02/2006"), ts.Format("15:04"),
			b.name, b.zip, latStr, lonStr, location,
			street, cross, "",
			strconv.Itoa(pedInj + cycInj + motInj), strconv.Itoa(pedKill + cycKill + motKill),
			strconv.Itoa(pedInj), strconv.Itoa(pedKill),
			strconv.Itoa(cycInj), strconv.Itoa(cycKill),
			strconv.Itoa(motInj), strconv.Itoa(motKill),
			factors[rng.IntN(len(factors))],
			strconv.Itoa(4000000 + i),
			vehicle,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func printStats(ds *dataset.Dataset) {
	records := ds.Records()
	fmt.Println()
	fmt.Printf("Rows read:            %d\n", ds.Stats.RowsRead)
	fmt.Printf("Rows kept:            %d\n", ds.Stats.RowsKept)
	fmt.Printf("Missing coordinates:  %d\n", ds.Stats.MissingCoordinates)
	fmt.Printf("Max persons injured:  %d\n", domain.MaxCasualties(records, domain.Injured))
	fmt.Printf("Max persons killed:   %d\n", domain.MaxCasualties(records, domain.Killed))

	fmt.Println("\nTop vehicle types:")
	for _, c := range domain.TopCategories(records, domain.VehicleTypes, domain.TopN) {
		fmt.Printf("  %-40s %d\n", c.Label, c.Count)
	}

	trend := domain.MonthlyTrend(records)
	fmt.Println("\nCollisions per year:")
	for _, s := range trend.Series(trend.Years) {
		total := 0
		for _, n := range s.Months {
			total += n
		}
		fmt.Printf("  %d  %d\n", s.Year, total)
	}
}
