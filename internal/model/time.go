package model

import (
	"strings"
	"time"
)

// isoFormat is the wire format for all timestamps: ISO-8601 UTC, second
// precision, trailing Z.
const isoFormat = "2006-01-02T15:04:05Z"

// NowISO returns the current time in wire format.
func NowISO() string {
	return time.Now().UTC().Format(isoFormat)
}

// FormatISO renders a time in wire format.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoFormat)
}

// ParseISO parses a wire-format timestamp. ok is false for empty or
// malformed input; callers treat that as "no time has passed".
func ParseISO(ts string) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(isoFormat, ts)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
