package notification

import (
	"fmt"
	"strconv"
	"time"

	"structnotify/internal/constants"
	pkgerrors "structnotify/pkg/errors"
)

// Accepted layouts for date-valued fields, tried in order. All are
// normalized to calendar-day granularity before comparison.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
}

// ParseDate parses a raw date-like string from a row value.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, pkgerrors.ErrParse.WithDetail("message", fmt.Sprintf("unparseable date value %q", raw))
}

// ParseTimestamp returns the epoch seconds of a raw date string.
func ParseTimestamp(raw string) (int64, error) {
	t, err := ParseDate(raw)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EvaluateCondition decides whether a date condition currently holds.
//
//   - before: the date is within arg days in the future (or already past),
//     today+arg >= date.
//   - after: the date is at least arg days in the past, date <= today-arg.
//   - at: arg is a clock pattern; holds once now reaches that clock time on
//     the date's own day.
//
// An unknown operator evaluates to false without error; the write path
// rejects it so it never reaches storage through this service.
// Deterministic given a supplied now, no I/O.
func EvaluateCondition(rawDate, operator, arg string, now time.Time) (bool, error) {
	date, err := ParseDate(rawDate)
	if err != nil {
		return false, err
	}
	day := truncateToDay(date)
	today := truncateToDay(now)

	switch operator {
	case constants.OperatorBefore:
		days, err := strconv.Atoi(arg)
		if err != nil {
			return false, pkgerrors.ErrParse.WithDetail("message", fmt.Sprintf("non-integer day count %q", arg))
		}
		threshold := today.AddDate(0, 0, days)
		return !threshold.Before(day), nil

	case constants.OperatorAfter:
		days, err := strconv.Atoi(arg)
		if err != nil {
			return false, pkgerrors.ErrParse.WithDetail("message", fmt.Sprintf("non-integer day count %q", arg))
		}
		threshold := today.AddDate(0, 0, -days)
		return !day.After(threshold), nil

	case constants.OperatorAt:
		constructed, err := atTimestamp(day, arg)
		if err != nil {
			return false, err
		}
		return !now.Before(constructed), nil

	default:
		return false, nil
	}
}

// atTimestamp anchors a clock pattern to the date's own day.
func atTimestamp(day time.Time, arg string) (time.Time, error) {
	for _, layout := range clockLayouts {
		if clock, err := time.Parse(layout, arg); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(),
				clock.Hour(), clock.Minute(), clock.Second(), 0, day.Location()), nil
		}
	}
	return time.Time{}, pkgerrors.ErrParse.WithDetail("message", fmt.Sprintf("unparseable clock pattern %q", arg))
}
