// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package schwabctlrollup computes realized gains per calendar period.
package schwabctlrollup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctldata"
	"github.com/bufdev/schwabctl/internal/standard/xtime"
	"github.com/shopspring/decimal"
)

// Period is a calendar period.
type Period int

const (
	// PeriodDay is a calendar day.
	PeriodDay Period = iota + 1
	// PeriodWeek is a Monday to Sunday week.
	PeriodWeek
	// PeriodMonth is a calendar month.
	PeriodMonth
	// PeriodYear is a calendar year.
	PeriodYear
)

// AllPeriods are all periods, shortest first.
var AllPeriods = []Period{
	PeriodDay,
	PeriodWeek,
	PeriodMonth,
	PeriodYear,
}

// String returns the period name.
func (p Period) String() string {
	switch p {
	case PeriodDay:
		return "day"
	case PeriodWeek:
		return "week"
	case PeriodMonth:
		return "month"
	case PeriodYear:
		return "year"
	default:
		return fmt.Sprintf("Period(%d)", int(p))
	}
}

// ParsePeriod parses a period name.
func ParsePeriod(s string) (Period, error) {
	for _, period := range AllPeriods {
		if strings.EqualFold(s, period.String()) {
			return period, nil
		}
	}
	return 0, fmt.Errorf("unknown period %q, expected one of day, week, month, year", s)
}

// Start returns the first date of the period containing date.
func (p Period) Start(date xtime.Date) xtime.Date {
	switch p {
	case PeriodWeek:
		return date.StartOfWeek()
	case PeriodMonth:
		return date.StartOfMonth()
	case PeriodYear:
		return date.StartOfYear()
	default:
		return date
	}
}

// Gains are realized gains under both cost-basis methods.
type Gains struct {
	FIFO decimal.Decimal `json:"fifo"`
	LIFO decimal.Decimal `json:"lifo"`
}

// Totals are the period totals attached to one row.
//
// A period's total is only set on the last row of that period. Every other row of the
// period holds zero.
type Totals struct {
	Daily   Gains `json:"daily"`
	Weekly  Gains `json:"weekly"`
	Monthly Gains `json:"monthly"`
	Annual  Gains `json:"annual"`
}

// ForPeriod returns the gains of the period.
func (t Totals) ForPeriod(period Period) Gains {
	switch period {
	case PeriodWeek:
		return t.Weekly
	case PeriodMonth:
		return t.Monthly
	case PeriodYear:
		return t.Annual
	default:
		return t.Daily
	}
}

// PeriodTotal is the total gain of one period.
type PeriodTotal struct {
	// Period is the kind of period.
	Period Period `json:"-"`
	// Start is the first date of the period.
	Start xtime.Date `json:"start"`
	// Gains are the realized gains of the period.
	Gains Gains `json:"gains"`
	// Rows is the number of rows in the period.
	Rows int `json:"rows"`
}

// Compute returns the period totals of the rows, aligned with the rows.
//
// Rows are grouped by the date of their time in its own location. The last row of a
// group is the one with the latest time, with ties going to the later index.
func Compute(rows []schwabctldata.Row) []Totals {
	totals := make([]Totals, len(rows))
	for _, period := range AllPeriods {
		for _, group := range groupRows(rows, period) {
			setPeriod(&totals[group.last], period, group.gains)
		}
	}
	return totals
}

// Summarize returns one total per period that has rows, sorted by start date.
func Summarize(rows []schwabctldata.Row, period Period) []PeriodTotal {
	groups := groupRows(rows, period)
	periodTotals := make([]PeriodTotal, 0, len(groups))
	for _, group := range groups {
		periodTotals = append(periodTotals, PeriodTotal{
			Period: period,
			Start:  group.start,
			Gains:  group.gains,
			Rows:   group.count,
		})
	}
	sort.Slice(periodTotals, func(i, j int) bool {
		return periodTotals[i].Start.Before(periodTotals[j].Start)
	})
	return periodTotals
}

// *** PRIVATE ***

type group struct {
	start xtime.Date
	gains Gains
	count int
	// last is the index of the last row in the group.
	last int
}

// groupRows groups the rows by period, in first-seen order.
func groupRows(rows []schwabctldata.Row, period Period) []*group {
	var groups []*group
	startToGroup := make(map[xtime.Date]*group)
	for i, row := range rows {
		start := period.Start(xtime.TimeToDate(row.Time))
		g, ok := startToGroup[start]
		if !ok {
			g = &group{
				start: start,
				gains: Gains{
					FIFO: decimal.Zero,
					LIFO: decimal.Zero,
				},
				last: i,
			}
			startToGroup[start] = g
			groups = append(groups, g)
		}
		g.gains.FIFO = g.gains.FIFO.Add(row.FIFOGain)
		g.gains.LIFO = g.gains.LIFO.Add(row.LIFOGain)
		g.count++
		if !row.Time.Before(rows[g.last].Time) {
			g.last = i
		}
	}
	return groups
}

func setPeriod(totals *Totals, period Period, gains Gains) {
	switch period {
	case PeriodDay:
		totals.Daily = gains
	case PeriodWeek:
		totals.Weekly = gains
	case PeriodMonth:
		totals.Monthly = gains
	case PeriodYear:
		totals.Annual = gains
	}
}
