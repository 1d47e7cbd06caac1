// Copyright 2026 Peter Edge
//
// All rights reserved.

package schwabctldata

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTransactionQuantity(t *testing.T) {
	t.Parallel()
	tx := Transaction{
		Instruction: InstructionBuy,
		Item:        Item{Amount: decimal.NewFromInt(10)},
	}
	require.True(t, tx.Quantity().Equal(decimal.NewFromInt(10)))
	tx.Instruction = InstructionSell
	require.True(t, tx.Quantity().Equal(decimal.NewFromInt(-10)))
	// Unknown instructions are treated as non-buys.
	tx.Instruction = "EXCHANGE"
	require.True(t, tx.Quantity().Equal(decimal.NewFromInt(-10)))
}

func TestTransactionRef(t *testing.T) {
	t.Parallel()
	require.Equal(t, "1", Transaction{ID: "1", OrderID: "2"}.Ref())
	require.Equal(t, "2", Transaction{OrderID: "2"}.Ref())
	require.Equal(t, "", Transaction{}.Ref())
}

func TestRowPositionEffectLabel(t *testing.T) {
	t.Parallel()
	row := Row{PositionEffect: "CLOSING"}
	require.Equal(t, "CLOSING", row.PositionEffectLabel())
	row.Diagnostics = []Diagnostic{
		{Kind: DiagnosticKindSequenceWarning, Symbol: "AAPL"},
		{Kind: DiagnosticKindReverse, Symbol: "AAPL"},
	}
	require.Equal(t, "CLOSING - Warning, Transaction Sub type MISMATCH - ERROR REVERSE", row.PositionEffectLabel())
	require.True(t, row.HasDiagnostic(DiagnosticKindReverse))
	require.False(t, row.HasDiagnostic(DiagnosticKindSorted))
	require.Equal(t, "sorted", Row{Diagnostics: []Diagnostic{{Kind: DiagnosticKindSorted}}}.PositionEffectLabel())
	// Without a preceding label the plain wording is used.
	require.Equal(t, "REVERSE", Row{Diagnostics: []Diagnostic{{Kind: DiagnosticKindReverse}}}.PositionEffectLabel())
	require.Equal(t, "Transaction Sub type MISMATCH", Row{Diagnostics: []Diagnostic{{Kind: DiagnosticKindSubTypeMismatch}}}.PositionEffectLabel())
	require.Equal(
		t,
		"OPENING - ERROR, MISMATCH could not be solved",
		Row{PositionEffect: "OPENING", Diagnostics: []Diagnostic{{Kind: DiagnosticKindSubTypeMismatch}}}.PositionEffectLabel(),
	)
}
