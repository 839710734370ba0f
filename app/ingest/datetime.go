package ingest

import (
	"fmt"
	"log/slog"
	"time"
)

// date-time layouts accepted from feed metadata, tried in order
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeDate converts the assorted publication-date shapes seen in feed
// entries into a UTC time. Accepted values: nil, time.Time, *time.Time,
// an []int component tuple (year, month, day, hour, minute, second, ...),
// and ISO-8601 strings (a trailing Z means UTC; a date-time without any
// offset is assumed UTC). Anything unparseable normalizes to nil — a bad
// date is never an error, just an absent one.
func NormalizeDate(value any) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		if v.IsZero() {
			return nil
		}
		utc := v.UTC()
		return &utc
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil
		}
		utc := v.UTC()
		return &utc
	case []int:
		return dateFromParts(v)
	case string:
		return parseDateString(v)
	default:
		slog.Debug("Unsupported date value", "type", fmt.Sprintf("%T", value))
		return nil
	}
}

// dateFromParts builds a UTC time from a component tuple. Tuples shorter
// than six components or with out-of-range components are rejected; extra
// trailing components (weekday, yearday, dst) are ignored.
func dateFromParts(parts []int) *time.Time {
	if len(parts) < 6 || len(parts) > 9 {
		slog.Debug("Date tuple has unexpected length", "length", len(parts))
		return nil
	}

	year, month, day := parts[0], parts[1], parts[2]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		slog.Debug("Date tuple out of range", "month", month, "day", day)
		return nil
	}

	t := time.Date(year, time.Month(month), day, parts[3], parts[4], parts[5], 0, time.UTC)

	// time.Date normalizes overflowing components (Feb 31 becomes Mar 2);
	// a tuple naming a date that doesn't exist is rejected, not shifted
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day ||
		t.Hour() != parts[3] || t.Minute() != parts[4] || t.Second() != parts[5] {
		slog.Debug("Date tuple names a nonexistent date", "year", year, "month", month, "day", day)
		return nil
	}

	return &t
}

func parseDateString(s string) *time.Time {
	if s == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			utc := t.UTC()
			return &utc
		}
	}

	slog.Debug("Unparseable date string", "value", s)
	return nil
}
