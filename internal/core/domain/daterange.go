package domain

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar-date format accepted from operators.
const DateLayout = "2006-01-02"

var (
	// ErrBadDate means a single date token failed to parse as YYYY-MM-DD.
	ErrBadDate = errors.New("invalid date, expected YYYY-MM-DD")
	// ErrBadRangeArgs means a filter argument string was not "", "today",
	// or two parseable dates.
	ErrBadRangeArgs = errors.New("invalid range arguments")
)

// Range is a half-open interval [From, To) selecting participants by
// registration timestamp. A nil bound means unbounded on that side.
type Range struct {
	From *time.Time
	To   *time.Time

	// Label is the human-readable filter description shown in list output.
	Label string
	// Suffix is the filter tag used in export file names.
	Suffix string
}

// AllRange selects every participant.
func AllRange() Range {
	return Range{Label: "все записи", Suffix: "all"}
}

// TodayRange selects participants registered during the current UTC
// calendar day.
func TodayRange(now time.Time) Range {
	day := now.UTC().Truncate(24 * time.Hour)
	end := day.Add(24 * time.Hour)
	return Range{
		From:   &day,
		To:     &end,
		Label:  "сегодня (UTC)",
		Suffix: "today_utc",
	}
}

// DatesRange selects [from 00:00, to+1day 00:00) in UTC; the end date is
// inclusive of its whole day.
func DatesRange(from, to time.Time) Range {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	fs, ts := from.Format(DateLayout), to.Format(DateLayout)
	return Range{
		From:   &start,
		To:     &end,
		Label:  "диапазон: " + fs + " " + ts + " (UTC)",
		Suffix: fs + "_" + ts,
	}
}

// ParseDate parses a trimmed YYYY-MM-DD token as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return t, nil
}

// ParseRangeArgs interprets a filter argument string:
//
//	""                       → no filter
//	"today"                  → current UTC day
//	"YYYY-MM-DD YYYY-MM-DD"  → inclusive date range
func ParseRangeArgs(args string, now time.Time) (Range, error) {
	t := strings.TrimSpace(args)
	if t == "" {
		return AllRange(), nil
	}
	if strings.EqualFold(t, "today") {
		return TodayRange(now), nil
	}

	parts := strings.Fields(t)
	if len(parts) != 2 {
		return Range{}, ErrBadRangeArgs
	}
	from, err := ParseDate(parts[0])
	if err != nil {
		return Range{}, ErrBadDate
	}
	to, err := ParseDate(parts[1])
	if err != nil {
		return Range{}, ErrBadDate
	}
	return DatesRange(from, to), nil
}
