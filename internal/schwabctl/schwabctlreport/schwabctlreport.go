// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package schwabctlreport runs the reconciliation pipeline for schwabctl commands.
//
// Transactions are loaded from the feed directory, processed by the balances
// aggregator, and rolled up by calendar period. The result is rendered as rows,
// positions, lots, period gains, and discrepancies against the broker snapshot.
package schwabctlreport

import (
	"context"
	"fmt"
	"time"

	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlbalances"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlclassify"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlconfig"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctldata"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlfeed"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctllot"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlpath"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlrollup"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlverify"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of reconciling a transaction feed.
type Result struct {
	// Rows has one row per transaction, in processing order.
	Rows []schwabctldata.Row
	// Totals are the period totals, aligned with Rows.
	Totals []schwabctlrollup.Totals
	// Positions are the open positions sorted by symbol.
	Positions []schwabctlbalances.Position
	// Balances are the final balances.
	Balances schwabctlbalances.Balances
	// Snapshot is the computed snapshot for verification.
	Snapshot schwabctldata.Snapshot

	location   *time.Location
	aggregator *schwabctlbalances.Aggregator
}

// LoadTransactions reads and classifies every feed file in the base directory.
func LoadTransactions(ctx context.Context, config *schwabctlconfig.Config) ([]schwabctldata.Transaction, error) {
	return schwabctlfeed.LoadDir(
		ctx,
		schwabctlpath.TransactionsDirPath(config.DirPath),
		newClassifier(config),
	)
}

// Load reads the feed and the broker snapshot in parallel.
func Load(
	ctx context.Context,
	config *schwabctlconfig.Config,
) ([]schwabctldata.Transaction, schwabctldata.Snapshot, error) {
	var transactions []schwabctldata.Transaction
	var snapshot schwabctldata.Snapshot
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		transactions, err = LoadTransactions(ctx, config)
		return err
	})
	eg.Go(func() error {
		var err error
		snapshot, err = schwabctlfeed.ReadSnapshot(schwabctlpath.AccountFilePath(config.DirPath))
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, schwabctldata.Snapshot{}, err
	}
	return transactions, snapshot, nil
}

// Reconcile processes the transactions in order and returns the result.
//
// Row times are reported in the location, which also decides calendar periods.
func Reconcile(transactions []schwabctldata.Transaction, location *time.Location) (*Result, error) {
	aggregator := schwabctlbalances.NewAggregator(schwabctlbalances.WithLocation(location))
	for _, transaction := range transactions {
		if err := aggregator.Process(transaction); err != nil {
			return nil, fmt.Errorf("processing transaction %q at %s: %w", transaction.Ref(), transaction.Time.Format(time.RFC3339), err)
		}
	}
	rows, err := aggregator.Finish()
	if err != nil {
		return nil, err
	}
	return &Result{
		Rows:       rows,
		Totals:     schwabctlrollup.Compute(rows),
		Positions:  aggregator.Positions(),
		Balances:   aggregator.Balances(),
		Snapshot:   aggregator.Snapshot(),
		location:   location,
		aggregator: aggregator,
	}, nil
}

// Verify compares the computed snapshot with the reported one.
func (r *Result) Verify(reported schwabctldata.Snapshot, config *schwabctlconfig.Config) []schwabctlverify.Discrepancy {
	return schwabctlverify.Verify(r.Snapshot, reported, config.VerificationTolerance)
}

// Lots returns the open lots of the symbol under the method, or of every open symbol
// sorted by symbol if symbol is empty.
func (r *Result) Lots(symbol string, method schwabctllot.Method) []*LotOverview {
	var symbols []string
	if symbol != "" {
		symbols = []string{symbol}
	} else {
		for _, position := range r.Positions {
			symbols = append(symbols, position.Symbol)
		}
	}
	var lotOverviews []*LotOverview
	for _, symbol := range symbols {
		ledger, ok := r.aggregator.Ledger(symbol)
		if !ok {
			continue
		}
		for _, lot := range ledger.Lots(method) {
			lotOverviews = append(lotOverviews, newLotOverview(symbol, method, lot, r.location))
		}
	}
	return lotOverviews
}

// Diagnostics returns every row diagnostic in row order.
func (r *Result) Diagnostics() []*DiagnosticOverview {
	var diagnosticOverviews []*DiagnosticOverview
	for _, row := range r.Rows {
		for _, diagnostic := range row.Diagnostics {
			diagnosticOverviews = append(diagnosticOverviews, &DiagnosticOverview{
				Time:    row.Time.Format(time.DateTime),
				Ref:     row.Ref,
				Symbol:  diagnostic.Symbol,
				Kind:    diagnostic.Kind.String(),
				Message: diagnostic.Message,
			})
		}
	}
	return diagnosticOverviews
}

// *** PRIVATE ***

func newClassifier(config *schwabctlconfig.Config) *schwabctlclassify.Classifier {
	return schwabctlclassify.NewClassifier(schwabctlclassify.WithSymbolRenames(config.SymbolRenames))
}
