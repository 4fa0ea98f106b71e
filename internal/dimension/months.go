package dimension

import (
	"fmt"
	"regexp"
	"time"
)

// MonthKey is a calendar month in YYYY-MM form.
type MonthKey string

const monthLayout = "2006-01"

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ParseMonth validates a strict YYYY-MM value.
func ParseMonth(value string) (MonthKey, error) {
	if !monthPattern.MatchString(value) {
		return "", fmt.Errorf("%w: month %q must match YYYY-MM", ErrValidation, value)
	}
	return MonthKey(value), nil
}

// MonthOf returns the month key containing t.
func MonthOf(t time.Time) MonthKey {
	return MonthKey(t.Format(monthLayout))
}

// Time returns the first day of the month in UTC.
func (m MonthKey) Time() time.Time {
	t, _ := time.Parse(monthLayout, string(m))
	return t
}

// MonthsBetween returns every month from start through end inclusive, in
// ascending order, rolling year boundaries.
func MonthsBetween(start, end MonthKey) ([]MonthKey, error) {
	from := start.Time()
	to := end.Time()
	if from.IsZero() || to.IsZero() {
		return nil, fmt.Errorf("%w: malformed month range %s..%s", ErrValidation, start, end)
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: month range %s..%s is inverted", ErrValidation, start, end)
	}
	var months []MonthKey
	for cursor := from; !cursor.After(to); cursor = cursor.AddDate(0, 1, 0) {
		months = append(months, MonthOf(cursor))
	}
	return months, nil
}

// LastNMonths returns the n months ending at anchor, ascending. The anchor
// month is included.
func LastNMonths(anchor MonthKey, n int) []MonthKey {
	if n <= 0 {
		return nil
	}
	end := anchor.Time()
	if end.IsZero() {
		return nil
	}
	months := make([]MonthKey, 0, n)
	for i := n - 1; i >= 0; i-- {
		months = append(months, MonthOf(end.AddDate(0, -i, 0)))
	}
	return months
}
