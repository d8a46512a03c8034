package utils

import (
	"fmt"
	"regexp"
	"time"
)

const (
	writeoffFilePrefix = "Списание_ЕГАИС_"
	// DayLayout is the date format used in file names, query parameters and bot commands
	DayLayout = "2006-01-02"
)

var writeoffFileRegex = regexp.MustCompile(`^Списание_ЕГАИС_(\d{4}-\d{2}-\d{2})\.xlsx$`)

// WriteoffFileName builds the export file name for the day
// Example: Списание_ЕГАИС_2026-01-04.xlsx
func WriteoffFileName(day time.Time) string {
	return writeoffFilePrefix + day.Format(DayLayout) + ".xlsx"
}

// ParseWriteoffFileName extracts the day from an export file name
func ParseWriteoffFileName(filename string, loc *time.Location) (time.Time, error) {
	m := writeoffFileRegex.FindStringSubmatch(filename)
	if m == nil {
		return time.Time{}, fmt.Errorf("invalid filename format: %s", filename)
	}
	return ParseDay(m[1], loc)
}

// ParseDay parses a YYYY-MM-DD date at midnight in loc
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(DayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return day, nil
}

// DayBounds returns the first and the last second of the day in loc
func DayBounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	day = day.In(loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, loc)
	return start, end
}
