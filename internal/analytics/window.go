package analytics

import (
	"strconv"
	"time"

	"github.com/souqops/analytics-manager/internal/entity"
)

// WindowQuery carries the raw date inputs of a request. Different callers use
// different subsets: explicit dates, a days-ago integer in startDate, or a
// named period.
type WindowQuery struct {
	StartDate string
	EndDate   string
	Period    string
}

// Explicit reports whether the caller supplied any window input at all.
// Analyzers that default to all-time (customer scoring) check this before
// applying a window.
func (q WindowQuery) Explicit() bool {
	return q.StartDate != "" || q.EndDate != "" || q.Period != ""
}

const defaultWindowDays = 30

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ResolveWindow normalizes the three window dialects into a concrete range.
// Resolution order, first match wins:
//  1. explicit non-numeric startDate (+ optional endDate, default now)
//  2. startDate as a positive day count before now
//  3. period "yesterday"
//  4. period as a day count, default 30
//
// A date that fails to parse never raises; the resolver falls back to a
// trailing 30-day window.
func ResolveWindow(q WindowQuery, now time.Time) entity.TimeRange {
	fallback := entity.TimeRange{From: now.AddDate(0, 0, -defaultWindowDays), To: now}

	if q.StartDate != "" {
		if days, err := strconv.Atoi(q.StartDate); err == nil {
			if days > 0 {
				return entity.TimeRange{From: now.AddDate(0, 0, -days), To: now}
			}
			return fallback
		}
		start, err := parseDate(q.StartDate)
		if err != nil {
			return fallback
		}
		end := now
		if q.EndDate != "" {
			if e, err := parseDate(q.EndDate); err == nil {
				end = e
			}
		}
		return entity.TimeRange{From: start, To: end}
	}

	if q.Period == "yesterday" {
		y := now.AddDate(0, 0, -1)
		start := time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, now.Location())
		end := time.Date(y.Year(), y.Month(), y.Day(), 23, 59, 59, 999000000, now.Location())
		return entity.TimeRange{From: start, To: end}
	}

	days := defaultWindowDays
	if q.Period != "" {
		d, err := strconv.Atoi(q.Period)
		if err != nil || d <= 0 {
			return fallback
		}
		days = d
	}
	return entity.TimeRange{From: now.Add(-time.Duration(days) * 24 * time.Hour), To: now}
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
