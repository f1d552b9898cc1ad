// Package utils provides small, generic helper functions used across
// different layers of the application. This file implements the permissive
// timestamp parsing used at API boundaries.
package utils

import (
	"strings"
	"time"
)

// Accepted client timestamp layouts, tried in order. Naive layouts (no zone)
// are interpreted as UTC.
var sinceLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a client-supplied timestamp permissively and
// normalizes it to UTC. RFC 3339 with or without fractional seconds is
// accepted, as is a naive "YYYY-MM-DDTHH:MM:SS" which is assumed UTC.
// The boolean reports whether parsing succeeded.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range sinceLayouts {
		if strings.Contains(layout, "Z07:00") {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseSince parses a "since" polling cutoff. Unparseable or empty values
// fall back to now, which yields an empty poll result instead of an error.
func ParseSince(s string) time.Time {
	if t, ok := ParseTimestamp(s); ok {
		return t
	}
	return time.Now().UTC()
}
