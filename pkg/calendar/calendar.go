// Package calendar computes date ranges and file-name suffixes for the four
// supported reporting granularities. All functions are pure.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Static errors
var (
	// ErrUnsupportedGranularity is returned for a granularity outside the
	// enumerated set. Unreachable through Parse, but checked everywhere.
	ErrUnsupportedGranularity = errors.New("unsupported granularity")

	// ErrInvalidRange is returned when an end date precedes its start date.
	ErrInvalidRange = errors.New("end date must be on or after start date")
)

// Granularity is the time bucket used to compute the fetch range and to
// filter sales rows.
type Granularity string

// Supported granularities
const (
	GranularityDay     Granularity = "day"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
)

// Granularities lists the supported values in display order.
//
//nolint:gochecknoglobals // Closed enumeration
var Granularities = []Granularity{GranularityDay, GranularityMonth, GranularityQuarter, GranularityYear}

// Parse converts a string tag to a Granularity.
func Parse(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityDay, GranularityMonth, GranularityQuarter, GranularityYear:
		return Granularity(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedGranularity, s)
	}
}

// Quarter returns the 1-based quarter of a month (1-12).
func Quarter(month time.Month) int {
	return (int(month)-1)/3 + 1
}

// ComputeDateRange returns the inclusive [start, end] range containing ref
// for the given granularity.
func ComputeDateRange(ref civil.Date, g Granularity) (start, end civil.Date, err error) {
	switch g {
	case GranularityDay:
		return ref, ref, nil

	case GranularityMonth:
		start = civil.Date{Year: ref.Year, Month: ref.Month, Day: 1}
		end = start.AddDays(daysInMonth(ref.Year, ref.Month) - 1)
		return start, end, nil

	case GranularityQuarter:
		firstMonth := time.Month(3*(Quarter(ref.Month)-1) + 1)
		start = civil.Date{Year: ref.Year, Month: firstMonth, Day: 1}
		nextStart := civil.Date{Year: ref.Year, Month: firstMonth + 3, Day: 1}
		if firstMonth == time.October {
			nextStart = civil.Date{Year: ref.Year + 1, Month: time.January, Day: 1}
		}
		return start, nextStart.AddDays(-1), nil

	case GranularityYear:
		start = civil.Date{Year: ref.Year, Month: time.January, Day: 1}
		end = civil.Date{Year: ref.Year, Month: time.December, Day: 31}
		return start, end, nil

	default:
		return civil.Date{}, civil.Date{}, fmt.Errorf("%w: %q", ErrUnsupportedGranularity, g)
	}
}

// BuildSuffix returns the canonical file-name suffix for ref at the given
// granularity: YYYY-MM-DD, YYYY-MM, YYYY-QN or YYYY.
func BuildSuffix(ref civil.Date, g Granularity) (string, error) {
	switch g {
	case GranularityDay:
		return ref.String(), nil
	case GranularityMonth:
		return fmt.Sprintf("%04d-%02d", ref.Year, int(ref.Month)), nil
	case GranularityQuarter:
		return fmt.Sprintf("%04d-Q%d", ref.Year, Quarter(ref.Month)), nil
	case GranularityYear:
		return fmt.Sprintf("%04d", ref.Year), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedGranularity, g)
	}
}

// Days returns the number of calendar days in the inclusive [start, end]
// range.
func Days(start, end civil.Date) (int, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("%w: %s to %s", ErrInvalidRange, start, end)
	}
	return end.DaysSince(start) + 1, nil
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
