// Package rawdata writes the raw records behind a panel as JSON, CSV or XLSX.
package rawdata

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/couchcryptid/collision-dashboard/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Format is an output encoding for the raw table.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// ParseFormat accepts json, csv or xlsx; empty defaults to json.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "":
		return JSON, nil
	case JSON, CSV, XLSX:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown raw data format %q", s)
	}
}

// ContentType is the HTTP media type of the format.
func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Filename is the attachment name for a dump of the given hour.
func (f Format) Filename(hour int) string {
	return fmt.Sprintf("collisions-hour-%02d.%s", hour, f)
}

const sheetName = "Collisions"

// Row is one flattened record of the raw table. Column names follow the
// normalized source vocabulary.
type Row struct {
	DateTime           string  `dataframe:"date/time" json:"date/time"`
	Borough            string  `dataframe:"borough" json:"borough"`
	ZipCode            string  `dataframe:"zip code" json:"zip code"`
	Latitude           float64 `dataframe:"latitude" json:"latitude"`
	Longitude          float64 `dataframe:"longitude" json:"longitude"`
	OnStreet           string  `dataframe:"on street name" json:"on street name"`
	CrossStreet        string  `dataframe:"cross street name" json:"cross street name"`
	PersonsInjured     int     `dataframe:"number of persons injured" json:"number of persons injured"`
	PersonsKilled      int     `dataframe:"number of persons killed" json:"number of persons killed"`
	PedestriansInjured int     `dataframe:"number of pedestrians injured" json:"number of pedestrians injured"`
	PedestriansKilled  int     `dataframe:"number of pedestrians killed" json:"number of pedestrians killed"`
	CyclistsInjured    int     `dataframe:"number of cyclist injured" json:"number of cyclist injured"`
	CyclistsKilled     int     `dataframe:"number of cyclist killed" json:"number of cyclist killed"`
	MotoristsInjured   int     `dataframe:"number of motorist injured" json:"number of motorist injured"`
	MotoristsKilled    int     `dataframe:"number of motorist killed" json:"number of motorist killed"`
	ContributingFactor string  `dataframe:"contributing factor vehicle 1" json:"contributing factor vehicle 1"`
	VehicleType        string  `dataframe:"vehicle type code 1" json:"vehicle type code 1"`
	CollisionID        string  `dataframe:"collision_id" json:"collision_id"`
}

// Columns is the header of the raw table, in Row field order.
var Columns = []string{
	domain.ColDateTime, domain.ColBorough, domain.ColZipCode,
	domain.ColLatitude, domain.ColLongitude,
	domain.ColOnStreet, domain.ColCrossStreet,
	domain.ColPersonsInjured, domain.ColPersonsKilled,
	domain.ColPedestriansInjured, domain.ColPedestriansKilled,
	domain.ColCyclistsInjured, domain.ColCyclistsKilled,
	domain.ColMotoristsInjured, domain.ColMotoristsKilled,
	domain.ColContributingFactor, domain.ColVehicleType, domain.ColCollisionID,
}

const dateTimeLayout = "2006-01-02 15:04:05"

// Rows flattens records into raw table rows.
func Rows(records []domain.Collision) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{
			DateTime:           r.Time.Format(dateTimeLayout),
			Borough:            r.Borough,
			ZipCode:            r.ZipCode,
			Latitude:           r.Geo.Lat,
			Longitude:          r.Geo.Lon,
			OnStreet:           r.OnStreet,
			CrossStreet:        r.CrossStreet,
			PersonsInjured:     r.Persons.Injured,
			PersonsKilled:      r.Persons.Killed,
			PedestriansInjured: r.Pedestrians.Injured,
			PedestriansKilled:  r.Pedestrians.Killed,
			CyclistsInjured:    r.Cyclists.Injured,
			CyclistsKilled:     r.Cyclists.Killed,
			MotoristsInjured:   r.Motorists.Injured,
			MotoristsKilled:    r.Motorists.Killed,
			ContributingFactor: r.ContributingFactor,
			VehicleType:        r.VehicleType,
			CollisionID:        r.CollisionID,
		}
	}
	return rows
}

// Write encodes records in the given format.
func Write(w io.Writer, format Format, records []domain.Collision) error {
	rows := Rows(records)
	switch format {
	case CSV:
		return writeCSV(w, rows)
	case XLSX:
		return writeXLSX(w, rows)
	default:
		if err := json.NewEncoder(w).Encode(rows); err != nil {
			return fmt.Errorf("encode raw rows: %w", err)
		}
		return nil
	}
}

func writeCSV(w io.Writer, rows []Row) error {
	// dataframe cannot be built from an empty slice.
	if len(rows) == 0 {
		cw := csv.NewWriter(w)
		if err := cw.Write(Columns); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		cw.Flush()
		return cw.Error()
	}

	df := dataframe.LoadStructs(rows)
	if df.Err != nil {
		return fmt.Errorf("build raw dataframe: %w", df.Err)
	}
	// Float columns are written with %f, which keeps six decimals. Coordinates
	// are swapped for their shortest exact text so all formats agree.
	lat := make([]string, len(rows))
	lon := make([]string, len(rows))
	for i, r := range rows {
		lat[i] = formatCoordinate(r.Latitude)
		lon[i] = formatCoordinate(r.Longitude)
	}
	df = df.Mutate(series.New(lat, series.String, domain.ColLatitude)).
		Mutate(series.New(lon, series.String, domain.ColLongitude))
	if df.Err != nil {
		return fmt.Errorf("format raw coordinates: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			r.DateTime, r.Borough, r.ZipCode, r.Latitude, r.Longitude,
			r.OnStreet, r.CrossStreet,
			r.PersonsInjured, r.PersonsKilled,
			r.PedestriansInjured, r.PedestriansKilled,
			r.CyclistsInjured, r.CyclistsKilled,
			r.MotoristsInjured, r.MotoristsKilled,
			r.ContributingFactor, r.VehicleType, r.CollisionID,
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 20); err != nil {
		return err
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "NYC motor vehicle collisions",
		Created: domain.Now().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("set xlsx properties: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
