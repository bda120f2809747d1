// Package timeutil parses, formats and compares instants in UTC.
package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTimestamp = errors.New("timeutil: invalid timestamp")

// Layout is the canonical textual form used for output and persistence.
const Layout = time.RFC3339

// localLayouts are wall-clock forms without an offset. They are only accepted
// by ParseLocalTimestamp, where the caller names the zone explicitly.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp parses an ISO-8601 instant that carries an explicit UTC
// offset ("Z" or "+hh:mm") and returns it normalized to UTC.
func ParseTimestamp(s string) (time.Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q must be ISO-8601 with an offset, e.g. 2024-12-31T15:00:00Z", ErrInvalidTimestamp, raw)
	}
	return t.UTC(), nil
}

// ParseLocalTimestamp accepts everything ParseTimestamp does and, in addition,
// offset-less wall-clock values which are interpreted in loc. A nil loc makes
// it behave exactly like ParseTimestamp.
func ParseLocalTimestamp(s string, loc *time.Location) (time.Time, error) {
	t, err := ParseTimestamp(s)
	if err == nil || loc == nil {
		return t, err
	}
	raw := strings.TrimSpace(s)
	for _, layout := range localLayouts {
		if parsed, perr := time.ParseInLocation(layout, raw, loc); perr == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, err
}

func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(Layout)
}

func AddMinutes(t time.Time, minutes int) time.Time {
	return t.UTC().Add(time.Duration(minutes) * time.Minute)
}

// AtOrBefore reports a <= b.
func AtOrBefore(a, b time.Time) bool {
	return !a.After(b)
}

// Overlaps reports whether the closed intervals [aStart, aEnd] and
// [bStart, bEnd] share at least one instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}

// Clock supplies the current instant. The scheduler takes "now" as a value;
// Clock only lives at the edges that have to pick one.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At.UTC() }
