// Copyright 2026 Peter Edge
//
// All rights reserved.

package schwabctlfeed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bufdev/schwabctl/internal/pkg/mathdec"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlclassify"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctldata"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLoadDir(t *testing.T) {
	t.Parallel()
	transactions, err := LoadDir(context.Background(), "testdata/transactions", schwabctlclassify.NewClassifier())
	require.NoError(t, err)
	// The duplicate dividend in the second file is dropped and the result is sorted by time.
	var refs []string
	for _, transaction := range transactions {
		refs = append(refs, transaction.Ref())
	}
	require.Equal(t, []string{"1001", "1002", "1003", "2001", ""}, refs)

	buy := transactions[0]
	require.Equal(t, "5001", buy.OrderID)
	require.True(t, time.Date(2024, time.January, 10, 14, 30, 0, 0, time.UTC).Equal(buy.Time))
	require.True(t, buy.Classified)
	require.True(t, buy.PositionAffected)
	require.True(t, buy.Opening)
	require.Equal(t, schwabctldata.InstructionBuy, buy.Instruction)
	require.Equal(t, "-1500.65", buy.NetAmount.String())
	require.Equal(t, "0.65", buy.Fees.Commission.String())
	require.Equal(t, "OPENING", buy.Item.PositionEffect)

	// Symbol renames are applied while loading.
	require.Equal(t, "META", transactions[1].Symbol())

	dividend := transactions[2]
	require.False(t, dividend.PositionAffected)
	require.Equal(t, "2.4", dividend.NetAmount.String())

	sell := transactions[3]
	require.Equal(t, "2001", sell.ID)
	require.Equal(t, "1600.12", sell.NetAmount.String())
	require.Equal(t, "0.02", sell.Fees.RegFee.String())
	require.Equal(t, schwabctldata.InstructionSell, sell.Instruction)
	require.False(t, sell.Opening)

	journal := transactions[4]
	require.Equal(t, "2", journal.SubAccount)
	_, err = uuid.Parse(Key(journal))
	require.NoError(t, err)
}

func TestLoadDirMissing(t *testing.T) {
	t.Parallel()
	transactions, err := LoadDir(context.Background(), filepath.Join(t.TempDir(), "missing"), schwabctlclassify.NewClassifier())
	require.NoError(t, err)
	require.Empty(t, transactions)
}

func TestLoadWrapsPath(t *testing.T) {
	t.Parallel()
	dirPath := t.TempDir()
	filePath := filepath.Join(dirPath, "bad.json")
	require.NoError(t, os.WriteFile(filePath, []byte(`[{"type": "TRADE", "netAmount": 1}]`), 0o644))
	_, err := Load(context.Background(), []string{"testdata/transactions/2024-01.json", filePath}, schwabctlclassify.NewClassifier())
	require.Error(t, err)
	require.Contains(t, err.Error(), filePath)
	require.Contains(t, err.Error(), "transaction 0")
}

func TestDecodeValidation(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "malformed",
			data:    `[{"type": "TRADE"`,
			wantErr: "unexpected end of JSON input",
		},
		{
			name:    "missing type",
			data:    `{"transactionDate": "2024-01-10T14:30:00+0000", "netAmount": 1}`,
			wantErr: "missing type",
		},
		{
			name:    "missing date",
			data:    `{"type": "JOURNAL", "netAmount": 1}`,
			wantErr: "missing transactionDate",
		},
		{
			name:    "invalid date",
			data:    `{"type": "JOURNAL", "transactionDate": "yesterday", "netAmount": 1}`,
			wantErr: "invalid timestamp",
		},
		{
			name:    "missing net amount",
			data:    `{"type": "JOURNAL", "transactionDate": "2024-01-10T14:30:00+0000"}`,
			wantErr: "missing netAmount",
		},
		{
			name:    "null net amount",
			data:    `{"type": "JOURNAL", "transactionDate": "2024-01-10T14:30:00+0000", "netAmount": null}`,
			wantErr: "missing netAmount",
		},
		{
			name:    "position without symbol",
			data:    `{"type": "TRADE", "description": "BUY TRADE", "transactionDate": "2024-01-10T14:30:00+0000", "netAmount": -1, "transactionItem": {"amount": 1, "instruction": "BUY"}}`,
			wantErr: "missing instrument symbol",
		},
		{
			name:    "position without amount",
			data:    `{"type": "TRADE", "description": "BUY TRADE", "transactionDate": "2024-01-10T14:30:00+0000", "netAmount": -1, "transactionItem": {"instruction": "BUY", "instrument": {"symbol": "AAPL"}}}`,
			wantErr: "missing transactionItem amount",
		},
		{
			name:    "position with zero amount",
			data:    `{"type": "TRADE", "description": "BUY TRADE", "transactionDate": "2024-01-10T14:30:00+0000", "netAmount": -1, "transactionItem": {"amount": 0, "instruction": "BUY", "instrument": {"symbol": "AAPL"}}}`,
			wantErr: "zero transactionItem amount",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode([]byte(test.data), schwabctlclassify.NewClassifier())
			require.ErrorContains(t, err, test.wantErr)
		})
	}
}

func TestDecodeCashOnlyNeedsNoItem(t *testing.T) {
	t.Parallel()
	transactions, err := Decode(
		[]byte(`{"type": "RECEIVE_AND_DELIVER", "description": "CASH ALTERNATIVES INTEREST", "transactionDate": "2024-01-10T14:30:00+0000", "netAmount": 0, "transactionItem": {"amount": 1.25}}`),
		schwabctlclassify.NewClassifier(),
	)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	require.False(t, transactions[0].PositionAffected)
	require.Equal(t, "1.25", transactions[0].Item.Amount.String())
}

func TestDecodeEmpty(t *testing.T) {
	t.Parallel()
	transactions, err := Decode([]byte(" \n"), schwabctlclassify.NewClassifier())
	require.NoError(t, err)
	require.Empty(t, transactions)
	transactions, err = Decode([]byte("[]"), schwabctlclassify.NewClassifier())
	require.NoError(t, err)
	require.Empty(t, transactions)
}

func TestMerge(t *testing.T) {
	t.Parallel()
	instant := time.Date(2024, time.January, 10, 14, 30, 0, 0, time.UTC)
	first := []schwabctldata.Transaction{
		{ID: "b", Time: instant.Add(time.Hour)},
		{ID: "a", Time: instant},
		{OrderID: "x", Description: "FEE", Time: instant},
	}
	second := []schwabctldata.Transaction{
		{ID: "a", Time: instant, Description: "duplicate"},
		{ID: "c", Time: instant},
		{OrderID: "x", Description: "FEE", Time: instant},
	}
	merged := Merge(first, second)
	var keys []string
	for _, transaction := range merged {
		keys = append(keys, transaction.Ref())
	}
	// Same-time transactions keep their merge order.
	require.Equal(t, []string{"a", "x", "c", "b"}, keys)
	require.Equal(t, "", merged[0].Description)
}

func TestKeyIsContentBased(t *testing.T) {
	t.Parallel()
	instant := time.Date(2024, time.January, 10, 14, 30, 0, 0, time.UTC)
	transaction := schwabctldata.Transaction{
		Type:      "JOURNAL",
		Time:      instant,
		NetAmount: mathdec.MustDecimal("-3.10"),
	}
	require.Equal(t, Key(transaction), Key(transaction))
	other := transaction
	other.NetAmount = mathdec.MustDecimal("-3.11")
	require.NotEqual(t, Key(transaction), Key(other))
	require.Equal(t, "id", Key(schwabctldata.Transaction{ID: "id"}))
}

func TestReadSnapshot(t *testing.T) {
	t.Parallel()
	snapshot, err := ReadSnapshot("testdata/account.json")
	require.NoError(t, err)
	expected := schwabctldata.Snapshot{
		Positions: []schwabctldata.SnapshotPosition{
			{
				Symbol:        "AAPL",
				Quantity:      mathdec.MustDecimal("10"),
				FIFOAllocated: mathdec.MustDecimal("1500.65"),
			},
			{
				Symbol:        "TSLA",
				Quantity:      mathdec.MustDecimal("-5"),
				FIFOAllocated: mathdec.MustDecimal("-902.5"),
			},
		},
		Balances: schwabctldata.SnapshotBalances{
			Cash:   mathdec.MustDecimal("1234.56"),
			Short:  mathdec.MustDecimal("902.5"),
			Margin: mathdec.MustDecimal("0"),
		},
	}
	if diff := cmp.Diff(expected, snapshot, cmp.Comparer(decimal.Decimal.Equal)); diff != "" {
		t.Errorf("ReadSnapshot() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadSnapshotBare(t *testing.T) {
	t.Parallel()
	snapshot, err := ReadSnapshot("testdata/account_bare.json")
	require.NoError(t, err)
	require.Empty(t, snapshot.Positions)
	require.Equal(t, "-50.25", snapshot.Balances.Margin.String())
}

func TestDecodeSnapshotErrors(t *testing.T) {
	t.Parallel()
	_, err := DecodeSnapshot([]byte(`{"positions": []}`))
	require.ErrorContains(t, err, "missing currentBalances")
	_, err = DecodeSnapshot([]byte(`{"positions": [{"longQuantity": 1}], "currentBalances": {}}`))
	require.ErrorContains(t, err, "missing instrument symbol")
	_, err = ReadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
