// Package util provides shared utilities: ISO-8601 timestamp parsing,
// display formatting for times and days, error aggregation and a debouncer
// for bursty input.
package util

import (
	"fmt"
	"strings"
	"time"
)

// ─── Timestamp Parsing ────────────────────────────────────────────────────────

const dateLayout = "2006-01-02"

// localLayouts are the offset-less layouts Open-Meteo emits with
// timezone=auto. They are interpreted as wall-clock time in time.Local.
var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	dateLayout,
}

// offsetLayouts carry a UTC offset or Z, with or without seconds.
var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

// ParseTimestamp parses an ISO-8601 date or date-time. Values without a UTC
// offset are read as local wall-clock time; values with one are converted to
// time.Local.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(time.Local), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: expected ISO-8601", s)
}

// ParseDate parses a YYYY-MM-DD string into local midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate formats a time.Time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ─── Display Formatting ───────────────────────────────────────────────────────
//
// The formatters below never fail: an unparseable input renders as
// invalidDisplay.

const invalidDisplay = "--"

// FormatTime renders the hour and minute of an ISO-8601 timestamp on a
// zero-padded 24-hour clock, e.g. "07:05".
func FormatTime(iso string) string {
	t, err := ParseTimestamp(iso)
	if err != nil {
		return invalidDisplay
	}
	return t.Format("15:04")
}

// FormatSunTime renders a sunrise or sunset timestamp. Absent values are
// common at high latitudes and render as the placeholder.
func FormatSunTime(iso string) string {
	return FormatTime(iso)
}

// DayName returns the weekday of an ISO-8601 date, abbreviated ("Mon") when
// short is set and in full ("Monday") otherwise.
func DayName(iso string, short bool) string {
	t, err := ParseTimestamp(iso)
	if err != nil {
		return invalidDisplay
	}
	if short {
		return t.Format("Mon")
	}
	return t.Format("Monday")
}

// FormatShortDate renders an ISO-8601 date as month and day, e.g. "Jan 2".
func FormatShortDate(iso string) string {
	t, err := ParseTimestamp(iso)
	if err != nil {
		return invalidDisplay
	}
	return t.Format("Jan 2")
}

// IsToday reports whether iso falls on the current local calendar date.
func IsToday(iso string) bool {
	return IsTodayAt(iso, time.Now())
}

// IsTodayAt reports whether iso falls on the same local calendar date as now.
// Time of day is ignored.
func IsTodayAt(iso string, now time.Time) bool {
	t, err := ParseTimestamp(iso)
	if err != nil {
		return false
	}
	ty, tm, td := t.Date()
	now = now.In(time.Local)
	ny, nm, nd := now.Date()
	return ty == ny && tm == nm && td == nd
}

// ─── Error Helpers ────────────────────────────────────────────────────────────

// MultiError collects multiple errors and presents them as one.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

func (m *MultiError) Error() string {
	msgs := make([]string, len(m.Errors))
	for i, e := range m.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.Errors
}
