package kpi

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ErrInvalidRange is returned when a date range cannot be parsed or is inverted.
var ErrInvalidRange = errors.New("kpi: invalid date range")

// DateRange is an inclusive window from the first to the last millisecond of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange normalizes start to 00:00:00.000 and end to 23:59:59.999 of their
// calendar days in loc.
func NewDateRange(start, end time.Time, loc *time.Location) DateRange {
	if loc == nil {
		loc = time.UTC
	}
	start = start.In(loc)
	end = end.In(loc)
	return DateRange{
		Start: time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc),
		End:   time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(999*time.Millisecond), loc),
	}
}

// ParseDateRange parses YYYY-MM-DD bounds. An empty end defaults to the day of now, an
// empty start to the first day of the end's month.
func ParseDateRange(startDate, endDate string, loc *time.Location, now time.Time) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	end := now
	if s := strings.TrimSpace(endDate); s != "" {
		parsed, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: end_date %q", ErrInvalidRange, s)
		}
		end = parsed
	}

	start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, loc)
	if s := strings.TrimSpace(startDate); s != "" {
		parsed, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: start_date %q", ErrInvalidRange, s)
		}
		start = parsed
	}

	if end.Before(start) {
		return DateRange{}, fmt.Errorf("%w: end_date before start_date", ErrInvalidRange)
	}
	return NewDateRange(start, end, loc), nil
}

// Contains reports whether t falls inside the inclusive window.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Location is the timezone calendar days are taken in.
func (r DateRange) Location() *time.Location {
	if r.Start.IsZero() {
		return time.UTC
	}
	return r.Start.Location()
}
