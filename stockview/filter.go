// Package stockview turns fetched stock records into what the dashboard
// renders: a date-range subset, chart series and table rows.
package stockview

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-dashboard/models"
)

var (
	// ErrInvalidRange is returned when a bound is missing, malformed or
	// start is after end.
	ErrInvalidRange = errors.New("invalid range")
	// ErrEmptyResult marks a valid query that matched no records. It is a
	// "no data" state for the view, not a failure.
	ErrEmptyResult = errors.New("no data for the selected range")
)

// FilterRange returns the records whose datetime lies in [start, end],
// keeping input order. The returned slice is never nil.
func FilterRange(records []models.StockRecord, start, end *time.Time) ([]models.StockRecord, error) {
	if start == nil || end == nil {
		return []models.StockRecord{}, fmt.Errorf("%w: both start and end are required", ErrInvalidRange)
	}
	if start.After(*end) {
		return []models.StockRecord{}, fmt.Errorf("%w: start %s is after end %s",
			ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	out := make([]models.StockRecord, 0, len(records))
	for _, r := range records {
		if r.Datetime.Before(*start) || r.Datetime.After(*end) {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return out, ErrEmptyResult
	}
	return out, nil
}

var boundLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseBound parses a range input. Inputs without a zone are read in loc.
// An empty input is an absent bound and yields nil without error.
func ParseBound(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range boundLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: cannot parse %q", ErrInvalidRange, s)
}
