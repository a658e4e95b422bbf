package utils

import (
	"fmt"
	"time"
)

// Layouts accepted for a time-of-day value, tried in order
var timeLayouts = []string{
	"15:04:05.999999", // with fractional seconds
	"15:04:05",
	"15:04",
}

// Layouts accepted for combined date-time values
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizeTime converts a heterogeneous time-of-day value into the
// canonical "HH:MM:SS" form. Accepted inputs are clock-time strings
// (with optional seconds and fractional seconds), combined date-time
// strings, and fractional-day numbers (0.5 -> "12:00:00").
// Unparseable input yields nil, never an error: a bad cell in an edit
// buffer must not block saving the rest of the row.
func NormalizeTime(value interface{}) *string {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return canonical(v)
	case string:
		if v == "" {
			return nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return canonical(t)
			}
		}
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return canonical(t)
			}
		}
		return nil
	case float64:
		return fractionalDay(v)
	case float32:
		return fractionalDay(float64(v))
	case int:
		return fractionalDay(float64(v))
	default:
		return nil
	}
}

// fractionalDay interprets a number in [0, 1) as a fraction of a day,
// the convention spreadsheet cells use for bare times
func fractionalDay(v float64) *string {
	if v < 0 || v >= 1 {
		return nil
	}
	total := int(v * 24 * 3600)
	s := fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	return &s
}

func canonical(t time.Time) *string {
	s := t.Format("15:04:05")
	return &s
}

// ParseDate parses a date value from the formats the API and workbook
// imports produce. Returns nil for empty or unparseable input.
func ParseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "02/01/2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}
