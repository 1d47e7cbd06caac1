// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package schwabctlbalances aggregates an account's cash balances and positions
// over a classified transaction stream.
//
// Position-affecting transactions pass through the sequence guard and are applied to
// the lot ledger of their symbol. Every other transaction only moves cash. Each
// processed transaction emits one Row.
package schwabctlbalances

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/bufdev/schwabctl/internal/pkg/mathdec"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctldata"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlguard"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctllot"
	"github.com/shopspring/decimal"
)

// internalTransferDescriptions move money between buckets without changing total cash,
// so the sweep total is not recomputed for them.
var internalTransferDescriptions = map[string]struct{}{
	schwabctldata.DescriptionCashAlternativesPurchase: {},
	schwabctldata.DescriptionCashAlternativesRedeem:   {},
	schwabctldata.DescriptionIntraAccountTransfer:     {},
	schwabctldata.DescriptionMarkToTheMarket:          {},
}

// Balances are the cash-type balances of the account.
type Balances struct {
	// Cash is the positive plain cash balance. Zero whenever Margin is non-zero.
	Cash decimal.Decimal `json:"cash"`
	// Margin is the non-positive plain cash balance. Zero whenever Cash is non-zero.
	Margin decimal.Decimal `json:"margin"`
	// Short is the short sale proceeds balance.
	Short decimal.Decimal `json:"short"`
	// Alternatives is the cash alternatives balance.
	Alternatives decimal.Decimal `json:"alternatives"`
	// Sweep is the sweep vehicle total, the sum of the four buckets as of the last
	// transaction that was not an internal transfer.
	Sweep decimal.Decimal `json:"sweep"`
}

// Position is the state of one open symbol.
type Position struct {
	// Symbol is the ticker symbol.
	Symbol string `json:"symbol"`
	// Quantity is the signed position quantity.
	Quantity decimal.Decimal `json:"quantity"`
	// FIFOAllocated is the FIFO allocated cost.
	FIFOAllocated decimal.Decimal `json:"fifo_allocated"`
	// FIFOAveragePrice is the FIFO average price.
	FIFOAveragePrice decimal.Decimal `json:"fifo_average_price"`
	// LIFOAllocated is the LIFO allocated cost.
	LIFOAllocated decimal.Decimal `json:"lifo_allocated"`
	// LIFOAveragePrice is the LIFO average price.
	LIFOAveragePrice decimal.Decimal `json:"lifo_average_price"`
}

// Aggregator processes transactions into rows.
//
// An Aggregator is not safe for concurrent use.
type Aggregator struct {
	location *time.Location
	guard    *schwabctlguard.Guard
	ledgers  map[string]*schwabctllot.Ledger
	// symbols is the first-seen order of the open ledgers.
	symbols       []string
	balances      Balances
	fifoAllocated decimal.Decimal
	lifoAllocated decimal.Decimal
	rows          []schwabctldata.Row
}

// AggregatorOption is an option for a new Aggregator.
type AggregatorOption func(*Aggregator)

// WithLocation sets the location of row times.
//
// The default is time.UTC.
func WithLocation(location *time.Location) AggregatorOption {
	return func(aggregator *Aggregator) {
		aggregator.location = location
	}
}

// NewAggregator returns a new Aggregator for an account with no positions and zero balances.
func NewAggregator(options ...AggregatorOption) *Aggregator {
	aggregator := &Aggregator{
		location: time.UTC,
		ledgers:  make(map[string]*schwabctllot.Ledger),
	}
	for _, option := range options {
		option(aggregator)
	}
	aggregator.guard = schwabctlguard.New(guardApplier{aggregator: aggregator})
	return aggregator
}

// Process processes one classified transaction.
//
// The transaction's row may be emitted later if the sequence guard defers it.
// Returns an error if the transaction is not classified or a ledger rejects it.
func (a *Aggregator) Process(transaction schwabctldata.Transaction) error {
	if !transaction.Classified {
		return fmt.Errorf("transaction %q is not classified", transaction.Ref())
	}
	if transaction.PositionAffected {
		return a.guard.Submit(transaction)
	}
	// Keep the row timeline chronological with respect to deferred transactions.
	if err := a.guard.Advance(transaction.Time); err != nil {
		return err
	}
	a.record(transaction, schwabctllot.Result{}, nil)
	return nil
}

// Finish releases any deferred transactions and returns all rows.
func (a *Aggregator) Finish() ([]schwabctldata.Row, error) {
	if err := a.guard.Flush(); err != nil {
		return nil, err
	}
	return a.Rows(), nil
}

// Rows returns a copy of the rows emitted so far.
func (a *Aggregator) Rows() []schwabctldata.Row {
	return slices.Clone(a.rows)
}

// Balances returns the current balances.
func (a *Aggregator) Balances() Balances {
	return a.balances
}

// Allocated returns the account-level allocated cost under the method.
func (a *Aggregator) Allocated(method schwabctllot.Method) decimal.Decimal {
	if method == schwabctllot.MethodLIFO {
		return a.lifoAllocated
	}
	return a.fifoAllocated
}

// Quantity returns the live position quantity of the symbol, zero if there is none.
func (a *Aggregator) Quantity(symbol string) decimal.Decimal {
	if ledger, ok := a.ledgers[symbol]; ok {
		return ledger.Quantity()
	}
	return decimal.Zero
}

// Ledger returns the ledger of an open symbol.
func (a *Aggregator) Ledger(symbol string) (*schwabctllot.Ledger, bool) {
	ledger, ok := a.ledgers[symbol]
	return ledger, ok
}

// Positions returns the open positions sorted by symbol.
func (a *Aggregator) Positions() []Position {
	positions := make([]Position, 0, len(a.ledgers))
	for symbol, ledger := range a.ledgers {
		positions = append(positions, Position{
			Symbol:           symbol,
			Quantity:         ledger.Quantity(),
			FIFOAllocated:    ledger.Allocated(schwabctllot.MethodFIFO),
			FIFOAveragePrice: ledger.AveragePrice(schwabctllot.MethodFIFO),
			LIFOAllocated:    ledger.Allocated(schwabctllot.MethodLIFO),
			LIFOAveragePrice: ledger.AveragePrice(schwabctllot.MethodLIFO),
		})
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})
	return positions
}

// Snapshot returns the computed positions and balances for verification.
func (a *Aggregator) Snapshot() schwabctldata.Snapshot {
	positions := a.Positions()
	snapshotPositions := make([]schwabctldata.SnapshotPosition, 0, len(positions))
	for _, position := range positions {
		snapshotPositions = append(snapshotPositions, schwabctldata.SnapshotPosition{
			Symbol:        position.Symbol,
			Quantity:      position.Quantity,
			FIFOAllocated: position.FIFOAllocated,
		})
	}
	return schwabctldata.Snapshot{
		Positions: snapshotPositions,
		Balances: schwabctldata.SnapshotBalances{
			Cash:   a.balances.Cash,
			Short:  a.balances.Short,
			Margin: a.balances.Margin,
		},
	}
}

// *** PRIVATE ***

// guardApplier applies transactions released by the sequence guard.
type guardApplier struct {
	aggregator *Aggregator
}

func (g guardApplier) Quantity(symbol string) decimal.Decimal {
	return g.aggregator.Quantity(symbol)
}

func (g guardApplier) Apply(entry schwabctlguard.Entry) error {
	return g.aggregator.applyPosition(entry)
}

func (a *Aggregator) applyPosition(entry schwabctlguard.Entry) error {
	transaction := entry.Transaction
	symbol := transaction.Symbol()
	diagnostics := slices.Clone(entry.Diagnostics)
	var result schwabctllot.Result
	if transaction.IsSplit() {
		if err := a.split(transaction); err != nil {
			diagnostics = append(diagnostics, schwabctldata.Diagnostic{
				Kind:    schwabctldata.DiagnosticKindSplitRejected,
				Symbol:  symbol,
				Message: err.Error(),
			})
		}
		a.record(transaction, result, diagnostics)
		return nil
	}
	ledger, ok := a.ledgers[symbol]
	if !ok {
		ledger = schwabctllot.New(symbol)
		a.ledgers[symbol] = ledger
		a.symbols = append(a.symbols, symbol)
	}
	result, err := ledger.Apply(transaction)
	if err != nil {
		return err
	}
	if result.Opened != transaction.Opening {
		diagnostics = append(diagnostics, schwabctldata.Diagnostic{
			Kind:    schwabctldata.DiagnosticKindSubTypeMismatch,
			Symbol:  symbol,
			Message: subTypeMismatchMessage(transaction, result),
		})
	}
	if result.Reverse {
		diagnostics = append(diagnostics, schwabctldata.Diagnostic{
			Kind:    schwabctldata.DiagnosticKindReverse,
			Symbol:  symbol,
			Message: fmt.Sprintf("close exhausted all open lots, reopened %s at the closing price", mathdec.ToString(ledger.Quantity())),
		})
	}
	a.fifoAllocated = mathdec.RoundCents(a.fifoAllocated.Sub(transaction.NetAmount).Add(result.FIFO.Gain))
	a.lifoAllocated = mathdec.RoundCents(a.lifoAllocated.Sub(transaction.NetAmount).Add(result.LIFO.Gain))
	a.record(transaction, result, diagnostics)
	return nil
}

func (a *Aggregator) split(transaction schwabctldata.Transaction) error {
	ledger, ok := a.ledgers[transaction.Symbol()]
	if !ok {
		return errors.New("split for a symbol with no open position")
	}
	_, err := ledger.Split(transaction)
	return err
}

// record updates balances and emits the row of a transaction.
func (a *Aggregator) record(
	transaction schwabctldata.Transaction,
	result schwabctllot.Result,
	diagnostics []schwabctldata.Diagnostic,
) {
	a.updateCash(transaction)
	fifoGain := result.FIFO.Gain
	lifoGain := result.LIFO.Gain
	var quantity decimal.Decimal
	var hasQuantity bool
	if _, ok := internalTransferDescriptions[transaction.Description]; !ok {
		a.balances.Sweep = mathdec.RoundCents(
			a.balances.Cash.
				Add(a.balances.Margin).
				Add(a.balances.Short).
				Add(a.balances.Alternatives),
		)
		if !transaction.PositionAffected {
			// Cash transactions realize their own amount.
			gain := transaction.NetAmount
			if transaction.Description == schwabctldata.DescriptionCashAlternativesInterest {
				gain = transaction.Item.Amount
			}
			fifoGain = gain
			lifoGain = gain
		} else if ledger, ok := a.ledgers[transaction.Symbol()]; ok {
			quantity = ledger.Quantity()
			hasQuantity = true
		}
	}
	positions := a.summarizePositions()
	instrument := transaction.Item.Instrument
	description := transaction.Description
	if instrument.AssetType == schwabctldata.AssetTypeOption {
		description = description + " " + instrument.Description
	}
	a.rows = append(a.rows, schwabctldata.Row{
		Time:             transaction.Time.In(a.location),
		Type:             transaction.Type,
		SubType:          transaction.SubType,
		Ref:              transaction.Ref(),
		Description:      description,
		SubAccount:       transaction.SubAccount,
		RegFee:           transaction.Fees.RegFee,
		Commission:       transaction.Fees.Commission,
		NetAmount:        transaction.NetAmount,
		Amount:           transaction.Item.Amount,
		Cash:             a.balances.Cash,
		Alternatives:     a.balances.Alternatives,
		Margin:           a.balances.Margin,
		Short:            a.balances.Short,
		Sweep:            a.balances.Sweep,
		AssetType:        instrument.AssetType,
		Symbol:           instrument.Symbol,
		OrderID:          transaction.OrderID,
		Instruction:      transaction.Instruction,
		Price:            transaction.Item.Price,
		PositionEffect:   transaction.Item.PositionEffect,
		UnderlyingSymbol: instrument.UnderlyingSymbol,
		FIFOGain:         fifoGain,
		LIFOGain:         lifoGain,
		FIFODuration:     result.FIFO.Duration,
		LIFODuration:     result.LIFO.Duration,
		Quantity:         quantity,
		HasQuantity:      hasQuantity,
		Positions:        positions,
		FIFOAllocated:    a.fifoAllocated,
		LIFOAllocated:    a.lifoAllocated,
		FIFOValue:        a.balances.Sweep.Add(a.fifoAllocated),
		LIFOValue:        a.balances.Sweep.Add(a.lifoAllocated),
		Reverse:          result.Reverse,
		Diagnostics:      diagnostics,
	})
}

// updateCash posts the net amount of a transaction to its cash bucket.
func (a *Aggregator) updateCash(transaction schwabctldata.Transaction) {
	balances := &a.balances
	description := transaction.Description
	switch {
	case transaction.Type == schwabctldata.TypeReceiveAndDeliver:
		// Only cash alternatives move money on deliveries.
		switch description {
		case schwabctldata.DescriptionCashAlternativesPurchase, schwabctldata.DescriptionCashAlternativesInterest:
			balances.Alternatives = mathdec.RoundCents(balances.Alternatives.Add(transaction.Item.Amount))
		case schwabctldata.DescriptionCashAlternativesRedeem:
			balances.Alternatives = mathdec.RoundCents(balances.Alternatives.Sub(transaction.Item.Amount))
		}
	case description == schwabctldata.DescriptionShortSale,
		description == schwabctldata.DescriptionCloseShortPosition,
		description == schwabctldata.DescriptionMarkToTheMarket && transaction.SubAccount == schwabctldata.SubAccountShort:
		balances.Short = mathdec.RoundCents(balances.Short.Add(transaction.NetAmount))
	default:
		// The sign of the combined plain balance decides which single bucket holds it.
		combined := mathdec.RoundCents(balances.Cash.Add(balances.Margin).Add(transaction.NetAmount))
		if combined.IsPositive() {
			balances.Cash = combined
			balances.Margin = decimal.Zero
		} else {
			balances.Margin = combined
			balances.Cash = decimal.Zero
		}
	}
}

// summarizePositions returns the open position summary, then drops flat symbols.
func (a *Aggregator) summarizePositions() string {
	parts := make([]string, 0, len(a.symbols))
	openSymbols := a.symbols[:0]
	for _, symbol := range a.symbols {
		ledger := a.ledgers[symbol]
		parts = append(parts, symbol+": "+mathdec.ToString(ledger.Quantity()))
		if ledger.Quantity().IsZero() {
			delete(a.ledgers, symbol)
			continue
		}
		openSymbols = append(openSymbols, symbol)
	}
	a.symbols = openSymbols
	return strings.Join(parts, ", ")
}

func subTypeMismatchMessage(transaction schwabctldata.Transaction, result schwabctllot.Result) string {
	if result.Opened {
		return fmt.Sprintf("%s is not an opening transaction but opened a lot", transaction.Description)
	}
	return fmt.Sprintf("%s is an opening transaction but closed lots", transaction.Description)
}
