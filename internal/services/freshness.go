package services

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// IsFresh reports whether ts is within window of now. A nil timestamp is
// never fresh.
func IsFresh(ts *time.Time, window time.Duration, now time.Time) bool {
	if ts == nil || ts.IsZero() {
		return false
	}
	return now.Sub(*ts) < window
}

// IsFreshString is IsFresh over a stored timestamp string; anything that
// does not parse is stale.
func IsFreshString(ts string, window time.Duration, now time.Time) bool {
	parsed, err := ParseInstant(ts)
	if err != nil {
		return false
	}
	return IsFresh(&parsed, window, now)
}

// ParseInstant parses the timestamp formats seen in env values and stored
// rows (RFC 3339, SQL datetime, dates). Zone-less values are read as UTC.
func ParseInstant(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// CurrentIngestedAt is now truncated to milliseconds in UTC
func CurrentIngestedAt(now time.Time) time.Time {
	return now.UTC().Truncate(time.Millisecond)
}

// FormatInstant renders t as ISO-8601 with millisecond precision
func FormatInstant(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
