// Copyright 2026 Peter Edge
//
// All rights reserved.

package schwabctlverify

import (
	"testing"

	"github.com/bufdev/schwabctl/internal/pkg/mathdec"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctldata"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestVerifyMatching(t *testing.T) {
	t.Parallel()
	snapshot := schwabctldata.Snapshot{
		Positions: []schwabctldata.SnapshotPosition{
			newPosition("AAPL", "10", "1000"),
			newPosition("TSLA", "-5", "-900"),
		},
		Balances: newBalances("100", "900", "0"),
	}
	require.Empty(t, Verify(snapshot, snapshot, decimal.Zero))
}

func TestVerifyDiscrepancies(t *testing.T) {
	t.Parallel()
	computed := schwabctldata.Snapshot{
		Positions: []schwabctldata.SnapshotPosition{
			newPosition("MSFT", "5", "2000"),
			newPosition("AAPL", "10", "1000"),
			newPosition("NVDA", "3", "300"),
		},
		Balances: newBalances("100", "0", "0"),
	}
	reported := schwabctldata.Snapshot{
		Positions: []schwabctldata.SnapshotPosition{
			newPosition("AAPL", "12", "1000.01"),
			newPosition("MSFT", "5", "2000"),
			newPosition("GOOG", "1", "150"),
		},
		Balances: newBalances("0", "0", "-50"),
	}
	discrepancies := Verify(computed, reported, decimal.Zero)
	expected := []Discrepancy{
		{
			Symbol:        "AAPL",
			Type:          DiscrepancyTypeQuantity,
			ComputedValue: "10",
			ReportedValue: "12",
		},
		{
			Symbol:        "AAPL",
			Type:          DiscrepancyTypeFIFOAllocated,
			ComputedValue: "1000.00",
			ReportedValue: "1000.01",
		},
		{
			Symbol:        "GOOG",
			Type:          DiscrepancyTypeReportedOnly,
			ReportedValue: "1",
		},
		{
			Symbol:        "NVDA",
			Type:          DiscrepancyTypeComputedOnly,
			ComputedValue: "3",
		},
		{
			Type:          DiscrepancyTypeCashBalance,
			ComputedValue: "100.00",
			ReportedValue: "0.00",
		},
		{
			Type:          DiscrepancyTypeMarginBalance,
			ComputedValue: "0.00",
			ReportedValue: "-50.00",
		},
	}
	if diff := cmp.Diff(expected, discrepancies); diff != "" {
		t.Errorf("Verify() mismatch (-want +got):\n%s", diff)
	}
}

func TestVerifyTolerance(t *testing.T) {
	t.Parallel()
	computed := schwabctldata.Snapshot{
		Positions: []schwabctldata.SnapshotPosition{newPosition("AAPL", "10", "1000")},
		Balances:  newBalances("100", "0", "0"),
	}
	reported := schwabctldata.Snapshot{
		Positions: []schwabctldata.SnapshotPosition{newPosition("AAPL", "10", "1000.01")},
		Balances:  newBalances("100.01", "0", "0"),
	}
	require.Len(t, Verify(computed, reported, decimal.Zero), 2)
	require.Empty(t, Verify(computed, reported, mathdec.MustDecimal("0.01")))
}

func TestVerifyDuplicateSymbolsAreSummed(t *testing.T) {
	t.Parallel()
	computed := schwabctldata.Snapshot{
		Positions: []schwabctldata.SnapshotPosition{newPosition("AAPL", "10", "1000")},
	}
	reported := schwabctldata.Snapshot{
		Positions: []schwabctldata.SnapshotPosition{
			newPosition("AAPL", "4", "400"),
			newPosition("AAPL", "6", "600"),
		},
	}
	require.Empty(t, Verify(computed, reported, decimal.Zero))
}

func TestDiscrepancyTypeString(t *testing.T) {
	t.Parallel()
	require.Equal(t, "quantity", DiscrepancyTypeQuantity.String())
	require.Equal(t, "margin_balance", DiscrepancyTypeMarginBalance.String())
	require.Equal(t, "unknown", DiscrepancyType(0).String())
}

func newPosition(symbol string, quantity string, fifoAllocated string) schwabctldata.SnapshotPosition {
	return schwabctldata.SnapshotPosition{
		Symbol:        symbol,
		Quantity:      mathdec.MustDecimal(quantity),
		FIFOAllocated: mathdec.MustDecimal(fifoAllocated),
	}
}

func newBalances(cash string, short string, margin string) schwabctldata.SnapshotBalances {
	return schwabctldata.SnapshotBalances{
		Cash:   mathdec.MustDecimal(cash),
		Short:  mathdec.MustDecimal(short),
		Margin: mathdec.MustDecimal(margin),
	}
}
