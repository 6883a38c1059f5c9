// Package domain models NYC motor vehicle collision reports and the pure
// filter and aggregation steps behind each dashboard panel.
//
// # Data Source
//
// Records come from the NYPD Motor Vehicle Collisions crash table published on
// NYC Open Data, exported as CSV. One row is one reported collision.
//
// # Column Conventions
//
// Headers are upper case in the export ("CRASH DATE", "NUMBER OF PERSONS
// INJURED"). They are lowercased once at load time by [NormalizeColumn] and every
// lookup goes through the Col* constants. The cyclist and motorist count columns
// are singular in the source ("number of cyclist injured") and stay that way.
//
// Date and time:
//
//	CRASH DATE "09/11/2021" (older extracts use "2021-09-11T00:00:00.000")
//	CRASH TIME "2:39" or "14:39", 24-hour, no zone
//	Combined by [ParseCrashTime] into a UTC wall-clock timestamp, exposed under
//	the column name "date/time".
//
// Missing values:
//
//	Latitude/longitude: blank in roughly a tenth of the rows. Such rows are
//	dropped from the dataset entirely, not just from the map.
//	Counts: blank is read as zero.
//	Categorical columns (vehicle type, contributing factor, street names): blank
//	is null and is represented as the empty string.
//
// # Panels
//
//	Map:     persons count >= threshold, binned by location.
//	Hour:    exact hour-of-day equality. The "9:00 and 10:00" label from
//	         [HourWindowLabel] is cosmetic; hour 23 never matches hour 0.
//	Minutes: [MinuteHistogram], always 60 buckets.
//	Streets: [StreetDanger], per-collision rows, top 20.
//	Top 5:   [TopCategories], ties ordered by label.
//	Trend:   [MonthlyTrend], daily counts re-aggregated to months per year.
package domain
