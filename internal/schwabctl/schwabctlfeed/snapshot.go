// Copyright 2026 Peter Edge
//
// All rights reserved.

package schwabctlfeed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/bufdev/schwabctl/internal/pkg/mathdec"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctldata"
	"github.com/shopspring/decimal"
)

// ReadSnapshot reads a broker account snapshot.
//
// The file holds a Schwab account response, either wrapped in securitiesAccount or bare.
// A position's quantity is its long quantity minus its short quantity, and its FIFO
// allocated cost is the reported average price times that quantity, rounded to cents.
func ReadSnapshot(filePath string) (schwabctldata.Snapshot, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return schwabctldata.Snapshot{}, err
	}
	snapshot, err := DecodeSnapshot(data)
	if err != nil {
		return schwabctldata.Snapshot{}, fmt.Errorf("%s: %w", filePath, err)
	}
	return snapshot, nil
}

// DecodeSnapshot decodes a broker account snapshot.
func DecodeSnapshot(data []byte) (schwabctldata.Snapshot, error) {
	var wrapper struct {
		SecuritiesAccount *externalAccount `json:"securitiesAccount"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return schwabctldata.Snapshot{}, err
	}
	account := wrapper.SecuritiesAccount
	if account == nil {
		account = &externalAccount{}
		if err := json.Unmarshal(data, account); err != nil {
			return schwabctldata.Snapshot{}, err
		}
	}
	if account.CurrentBalances == nil {
		return schwabctldata.Snapshot{}, errors.New("missing currentBalances")
	}
	positions := make([]schwabctldata.SnapshotPosition, 0, len(account.Positions))
	for i, externalPosition := range account.Positions {
		symbol := externalPosition.Instrument.Symbol
		if symbol == "" {
			return schwabctldata.Snapshot{}, fmt.Errorf("position %d: missing instrument symbol", i)
		}
		quantity := externalPosition.LongQuantity.Sub(externalPosition.ShortQuantity)
		positions = append(positions, schwabctldata.SnapshotPosition{
			Symbol:        symbol,
			Quantity:      quantity,
			FIFOAllocated: mathdec.RoundCents(externalPosition.AveragePrice.Mul(quantity)),
		})
	}
	return schwabctldata.Snapshot{
		Positions: positions,
		Balances: schwabctldata.SnapshotBalances{
			Cash:   account.CurrentBalances.CashBalance,
			Short:  account.CurrentBalances.ShortBalance,
			Margin: account.CurrentBalances.MarginBalance,
		},
	}, nil
}

// *** PRIVATE ***

type externalAccount struct {
	Positions       []externalPosition `json:"positions"`
	CurrentBalances *externalBalances  `json:"currentBalances"`
}

type externalPosition struct {
	LongQuantity  decimal.Decimal    `json:"longQuantity"`
	ShortQuantity decimal.Decimal    `json:"shortQuantity"`
	AveragePrice  decimal.Decimal    `json:"averagePrice"`
	Instrument    externalInstrument `json:"instrument"`
}

type externalBalances struct {
	CashBalance   decimal.Decimal `json:"cashBalance"`
	ShortBalance  decimal.Decimal `json:"shortBalance"`
	MarginBalance decimal.Decimal `json:"marginBalance"`
}
