// Copyright 2026 Peter Edge
//
// All rights reserved.

package xtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	t.Parallel()
	want := time.Date(2024, time.March, 1, 14, 30, 5, 0, time.UTC)
	for _, input := range []string{
		"2024-03-01T14:30:05+0000",
		"2024-03-01T14:30:05.250+0000",
		"2024-03-01T14:30:05Z",
		"2024-03-01T09:30:05-05:00",
		" 2024-03-01T14:30:05.999999999Z ",
	} {
		got, err := ParseTimestamp(input)
		require.NoError(t, err, input)
		require.True(t, want.Equal(got), "%s: got %v", input, got)
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	t.Parallel()
	for _, input := range []string{
		"",
		"2024-03-01",
		"March 1 2024",
		"2024-03-01 14:30:05",
	} {
		_, err := ParseTimestamp(input)
		require.Error(t, err, input)
	}
}
