// Copyright 2026 Peter Edge
//
// All rights reserved.

package xtime

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are the ISO-8601 variants seen in broker transaction feeds.
//
// Schwab emits "2024-03-01T14:30:05+0000" and occasionally a millisecond suffix.
var timestampLayouts = []string{
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000-0700",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseTimestamp parses an ISO-8601 timestamp as emitted by broker feeds.
//
// The result is truncated to whole seconds.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Truncate(time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q, expected ISO-8601 such as 2006-01-02T15:04:05+0000", s)
}
