// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package schwabctlverify compares computed positions and balances against a
// broker-reported snapshot.
package schwabctlverify

import (
	"sort"

	"github.com/bufdev/schwabctl/internal/pkg/mathdec"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctldata"
	"github.com/shopspring/decimal"
)

// DiscrepancyType describes the kind of discrepancy.
type DiscrepancyType int

const (
	// DiscrepancyTypeQuantity indicates a position quantity mismatch.
	DiscrepancyTypeQuantity DiscrepancyType = iota + 1
	// DiscrepancyTypeFIFOAllocated indicates a FIFO allocated cost mismatch.
	DiscrepancyTypeFIFOAllocated
	// DiscrepancyTypeComputedOnly indicates a position exists in computed data but not in the snapshot.
	DiscrepancyTypeComputedOnly
	// DiscrepancyTypeReportedOnly indicates a position exists in the snapshot but not in computed data.
	DiscrepancyTypeReportedOnly
	// DiscrepancyTypeCashBalance indicates a cash balance mismatch.
	DiscrepancyTypeCashBalance
	// DiscrepancyTypeShortBalance indicates a short balance mismatch.
	DiscrepancyTypeShortBalance
	// DiscrepancyTypeMarginBalance indicates a margin balance mismatch.
	DiscrepancyTypeMarginBalance
)

// String returns a short name for the discrepancy type.
func (d DiscrepancyType) String() string {
	switch d {
	case DiscrepancyTypeQuantity:
		return "quantity"
	case DiscrepancyTypeFIFOAllocated:
		return "fifo_allocated"
	case DiscrepancyTypeComputedOnly:
		return "computed_only"
	case DiscrepancyTypeReportedOnly:
		return "reported_only"
	case DiscrepancyTypeCashBalance:
		return "cash_balance"
	case DiscrepancyTypeShortBalance:
		return "short_balance"
	case DiscrepancyTypeMarginBalance:
		return "margin_balance"
	default:
		return "unknown"
	}
}

// Discrepancy records a mismatch between computed and reported data.
type Discrepancy struct {
	// Symbol is the ticker symbol, empty for balance discrepancies.
	Symbol string
	// Type is the kind of discrepancy.
	Type DiscrepancyType
	// ComputedValue is the computed value, empty if the position only exists in the snapshot.
	ComputedValue string
	// ReportedValue is the reported value, empty if the position only exists in computed data.
	ReportedValue string
}

// Verify compares computed positions and balances against reported ones.
//
// Quantities must match exactly. FIFO allocated cost and balances are allowed to differ
// by up to the tolerance. Position discrepancies are sorted by symbol and type, followed
// by balance discrepancies in cash, short, margin order.
func Verify(computed schwabctldata.Snapshot, reported schwabctldata.Snapshot, tolerance decimal.Decimal) []Discrepancy {
	computedMap := positionMap(computed.Positions)
	reportedMap := positionMap(reported.Positions)
	var discrepancies []Discrepancy
	for symbol, comp := range computedMap {
		rep, ok := reportedMap[symbol]
		if !ok {
			discrepancies = append(discrepancies, Discrepancy{
				Symbol:        symbol,
				Type:          DiscrepancyTypeComputedOnly,
				ComputedValue: mathdec.ToString(comp.Quantity),
			})
			continue
		}
		if !comp.Quantity.Equal(rep.Quantity) {
			discrepancies = append(discrepancies, Discrepancy{
				Symbol:        symbol,
				Type:          DiscrepancyTypeQuantity,
				ComputedValue: mathdec.ToString(comp.Quantity),
				ReportedValue: mathdec.ToString(rep.Quantity),
			})
		}
		if !mathdec.EqualWithin(comp.FIFOAllocated, rep.FIFOAllocated, tolerance) {
			discrepancies = append(discrepancies, Discrepancy{
				Symbol:        symbol,
				Type:          DiscrepancyTypeFIFOAllocated,
				ComputedValue: mathdec.ToMoneyString(comp.FIFOAllocated),
				ReportedValue: mathdec.ToMoneyString(rep.FIFOAllocated),
			})
		}
	}
	for symbol, rep := range reportedMap {
		if _, ok := computedMap[symbol]; !ok {
			discrepancies = append(discrepancies, Discrepancy{
				Symbol:        symbol,
				Type:          DiscrepancyTypeReportedOnly,
				ReportedValue: mathdec.ToString(rep.Quantity),
			})
		}
	}
	sort.Slice(discrepancies, func(i, j int) bool {
		if discrepancies[i].Symbol != discrepancies[j].Symbol {
			return discrepancies[i].Symbol < discrepancies[j].Symbol
		}
		return discrepancies[i].Type < discrepancies[j].Type
	})
	for _, balance := range []struct {
		discrepancyType DiscrepancyType
		computed        decimal.Decimal
		reported        decimal.Decimal
	}{
		{DiscrepancyTypeCashBalance, computed.Balances.Cash, reported.Balances.Cash},
		{DiscrepancyTypeShortBalance, computed.Balances.Short, reported.Balances.Short},
		{DiscrepancyTypeMarginBalance, computed.Balances.Margin, reported.Balances.Margin},
	} {
		if !mathdec.EqualWithin(balance.computed, balance.reported, tolerance) {
			discrepancies = append(discrepancies, Discrepancy{
				Type:          balance.discrepancyType,
				ComputedValue: mathdec.ToMoneyString(balance.computed),
				ReportedValue: mathdec.ToMoneyString(balance.reported),
			})
		}
	}
	return discrepancies
}

// *** PRIVATE ***

// positionMap indexes positions by symbol, summing duplicates.
func positionMap(positions []schwabctldata.SnapshotPosition) map[string]schwabctldata.SnapshotPosition {
	symbolToPosition := make(map[string]schwabctldata.SnapshotPosition, len(positions))
	for _, position := range positions {
		if existing, ok := symbolToPosition[position.Symbol]; ok {
			existing.Quantity = existing.Quantity.Add(position.Quantity)
			existing.FIFOAllocated = existing.FIFOAllocated.Add(position.FIFOAllocated)
			symbolToPosition[position.Symbol] = existing
			continue
		}
		symbolToPosition[position.Symbol] = position
	}
	return symbolToPosition
}
