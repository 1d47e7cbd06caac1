// Copyright 2026 Peter Edge
//
// All rights reserved.

package schwabctlrollup

import (
	"testing"
	"time"

	"github.com/bufdev/schwabctl/internal/pkg/mathdec"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctldata"
	"github.com/bufdev/schwabctl/internal/standard/xtime"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	t.Parallel()
	rows := []schwabctldata.Row{
		newRow(time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC), "10"), // Monday
		newRow(time.Date(2024, time.March, 4, 15, 0, 0, 0, time.UTC), "5"),
		newRow(time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC), "20"),
		newRow(time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC), "1"), // Sunday
		newRow(time.Date(2024, time.March, 11, 9, 0, 0, 0, time.UTC), "2"), // Monday
		newRow(time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC), "3"),
	}
	totals := Compute(rows)
	require.Len(t, totals, len(rows))

	requireGains(t, "0", totals[0].Daily)
	requireGains(t, "15", totals[1].Daily)
	requireGains(t, "20", totals[2].Daily)
	requireGains(t, "1", totals[3].Daily)

	requireGains(t, "0", totals[2].Weekly)
	requireGains(t, "36", totals[3].Weekly)
	requireGains(t, "2", totals[4].Weekly)
	requireGains(t, "3", totals[5].Weekly)

	requireGains(t, "0", totals[3].Monthly)
	requireGains(t, "38", totals[4].Monthly)
	requireGains(t, "3", totals[5].Monthly)

	for i := range 5 {
		requireGains(t, "0", totals[i].Annual)
	}
	requireGains(t, "41", totals[5].Annual)
	requireGains(t, "41", totals[5].ForPeriod(PeriodYear))
}

func TestComputeLastRowByTime(t *testing.T) {
	t.Parallel()
	instant := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	rows := []schwabctldata.Row{
		newRow(instant.Add(time.Hour), "1"),
		newRow(instant, "2"),
		newRow(instant.Add(time.Hour), "3"),
		newRow(instant, "4"),
	}
	totals := Compute(rows)
	// The latest time wins, and ties go to the later row.
	requireGains(t, "0", totals[0].Daily)
	requireGains(t, "0", totals[1].Daily)
	requireGains(t, "10", totals[2].Daily)
	requireGains(t, "0", totals[3].Daily)
}

func TestComputeUsesRowLocation(t *testing.T) {
	t.Parallel()
	location, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	rows := []schwabctldata.Row{
		// 2024-03-05 02:00 UTC is still March 4 in New York.
		newRow(time.Date(2024, time.March, 4, 20, 0, 0, 0, time.UTC).In(location), "1"),
		newRow(time.Date(2024, time.March, 5, 2, 0, 0, 0, time.UTC).In(location), "2"),
	}
	totals := Compute(rows)
	requireGains(t, "0", totals[0].Daily)
	requireGains(t, "3", totals[1].Daily)
}

func TestComputeEmpty(t *testing.T) {
	t.Parallel()
	require.Empty(t, Compute(nil))
	require.Empty(t, Summarize(nil, PeriodDay))
}

func TestSummarize(t *testing.T) {
	t.Parallel()
	rows := []schwabctldata.Row{
		newRow(time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC), "3"),
		newRow(time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC), "10"),
		newRow(time.Date(2024, time.March, 20, 10, 0, 0, 0, time.UTC), "-4"),
	}
	periodTotals := Summarize(rows, PeriodMonth)
	require.Len(t, periodTotals, 2)
	require.Equal(t, xtime.Date{Year: 2024, Month: time.March, Day: 1}, periodTotals[0].Start)
	requireGains(t, "6", periodTotals[0].Gains)
	require.Equal(t, 2, periodTotals[0].Rows)
	require.Equal(t, xtime.Date{Year: 2024, Month: time.April, Day: 1}, periodTotals[1].Start)
	requireGains(t, "3", periodTotals[1].Gains)
	require.Equal(t, PeriodMonth, periodTotals[1].Period)
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()
	for _, period := range AllPeriods {
		parsed, err := ParsePeriod(period.String())
		require.NoError(t, err)
		require.Equal(t, period, parsed)
	}
	parsed, err := ParsePeriod("Week")
	require.NoError(t, err)
	require.Equal(t, PeriodWeek, parsed)
	_, err = ParsePeriod("quarter")
	require.Error(t, err)
}

func newRow(rowTime time.Time, gain string) schwabctldata.Row {
	return schwabctldata.Row{
		Time:     rowTime,
		FIFOGain: mathdec.MustDecimal(gain),
		LIFOGain: mathdec.MustDecimal(gain),
	}
}

func requireGains(t *testing.T, expected string, gains Gains) {
	t.Helper()
	want := mathdec.MustDecimal(expected)
	require.True(t, want.Equal(gains.FIFO), "expected FIFO %s, got %s", expected, gains.FIFO)
	require.True(t, want.Equal(gains.LIFO), "expected LIFO %s, got %s", expected, gains.LIFO)
}
