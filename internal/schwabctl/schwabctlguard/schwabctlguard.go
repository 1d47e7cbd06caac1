// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package schwabctlguard repairs transactions that arrive in an order inconsistent
// with the position they affect.
//
// The broker feed does not order transactions that share a timestamp. A close and a
// reopen executed in the same second may arrive close-first, which would make the
// close look like a new short position. The Guard defers such a transaction together
// with every same-instant transaction of its symbol, and replays the group in
// repaired order once a transaction with a later timestamp arrives.
package schwabctlguard

import (
	"fmt"
	"time"

	"github.com/bufdev/schwabctl/internal/pkg/mathdec"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctldata"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctllot"
	"github.com/shopspring/decimal"
)

// State is the state of a Guard.
type State int

const (
	// StateIdle means no transactions are deferred.
	StateIdle State = iota + 1
	// StateBuffering means transactions sharing one timestamp are deferred.
	StateBuffering
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuffering:
		return "buffering"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Entry is a transaction with the diagnostics recorded while it passed through the Guard.
type Entry struct {
	// Transaction is the classified transaction.
	Transaction schwabctldata.Transaction
	// Diagnostics are the sequence diagnostics recorded by the Guard.
	Diagnostics []schwabctldata.Diagnostic
}

// Applier receives transactions released by the Guard.
type Applier interface {
	// Quantity returns the live position quantity of the symbol.
	Quantity(symbol string) decimal.Decimal
	// Apply applies a released transaction to the position.
	Apply(entry Entry) error
}

// Guard is the sequence guard state machine.
//
// A Guard is not safe for concurrent use.
type Guard struct {
	applier Applier
	// instant is the timestamp shared by every buffered transaction.
	instant time.Time
	// buffers holds the deferred transactions of each symbol, in arrival order.
	buffers map[string][]Entry
	// symbols is the order in which buffers were started.
	symbols []string
}

// New returns a new idle Guard releasing transactions to the applier.
func New(applier Applier) *Guard {
	return &Guard{
		applier: applier,
		buffers: make(map[string][]Entry),
	}
}

// State returns the current state.
func (g *Guard) State() State {
	if len(g.symbols) > 0 {
		return StateBuffering
	}
	return StateIdle
}

// Pending returns the number of deferred transactions.
func (g *Guard) Pending() int {
	var pending int
	for _, entries := range g.buffers {
		pending += len(entries)
	}
	return pending
}

// Submit submits a classified position-affecting transaction.
//
// The transaction is applied immediately, or deferred if it contradicts the live
// position or shares the timestamp and symbol of a deferred transaction. A transaction
// with a different timestamp than the deferred ones flushes them first. A split
// always flushes and is applied immediately.
func (g *Guard) Submit(transaction schwabctldata.Transaction) error {
	if err := g.Advance(transaction.Time); err != nil {
		return err
	}
	if transaction.IsSplit() {
		if err := g.Flush(); err != nil {
			return err
		}
		return g.applier.Apply(Entry{Transaction: transaction})
	}
	symbol := transaction.Symbol()
	if entries, ok := g.buffers[symbol]; ok {
		g.buffers[symbol] = append(
			entries,
			Entry{
				Transaction: transaction,
				Diagnostics: []schwabctldata.Diagnostic{
					{
						Kind:    schwabctldata.DiagnosticKindSorted,
						Symbol:  symbol,
						Message: fmt.Sprintf("reordered with %d deferred transaction(s) at %s", len(entries), g.instant.Format(time.RFC3339)),
					},
				},
			},
		)
		return nil
	}
	positionQuantity := g.applier.Quantity(symbol)
	if Inconsistent(transaction, positionQuantity) {
		if len(g.symbols) == 0 {
			g.instant = transaction.Time
		}
		g.symbols = append(g.symbols, symbol)
		g.buffers[symbol] = []Entry{
			{
				Transaction: transaction,
				Diagnostics: []schwabctldata.Diagnostic{
					{
						Kind:    schwabctldata.DiagnosticKindSequenceWarning,
						Symbol:  symbol,
						Message: fmt.Sprintf("%s %s arrived while position is %s, deferred", transaction.Instruction, transaction.Description, mathdec.ToString(positionQuantity)),
					},
				},
			},
		}
		return nil
	}
	return g.applier.Apply(Entry{Transaction: transaction})
}

// Advance tells the Guard that the timeline has reached t.
//
// Deferred transactions are flushed if t differs from their timestamp.
func (g *Guard) Advance(t time.Time) error {
	if g.State() == StateBuffering && !t.Equal(g.instant) {
		return g.Flush()
	}
	return nil
}

// Flush applies every deferred transaction in repaired order and returns to idle.
//
// Symbols are flushed in the order their buffers were started.
func (g *Guard) Flush() error {
	symbols := g.symbols
	buffers := g.buffers
	g.symbols = nil
	g.buffers = make(map[string][]Entry)
	g.instant = time.Time{}
	for _, symbol := range symbols {
		for _, entry := range Reorder(buffers[symbol]) {
			if err := g.applier.Apply(entry); err != nil {
				return err
			}
		}
	}
	return nil
}

// Inconsistent returns true if the transaction's opening flag contradicts its effect on
// a position of the given quantity.
//
// A transaction that would open a lot (it moves in the position's direction, or the
// position is flat) is inconsistent if it is not an opening transaction. Any other
// transaction would close lots and is inconsistent if it is an opening transaction.
func Inconsistent(transaction schwabctldata.Transaction, positionQuantity decimal.Decimal) bool {
	return schwabctllot.OpensInDirection(transaction.IsBuy(), positionQuantity) != transaction.Opening
}

// MatchesFirstOpening returns true if the transaction has the same opening flag as the
// first deferred transaction.
func MatchesFirstOpening(first schwabctldata.Transaction, transaction schwabctldata.Transaction) bool {
	return transaction.Opening == first.Opening
}

// Reorder returns the entries with those not matching the first entry's opening flag
// moved ahead of those matching it. Relative order is otherwise preserved.
//
// Entries matching the first entry's flag, the first entry included, are applied last.
// The first entry is the one that contradicted the position, so the transactions of
// the other kind are the ones that were expected to precede it. A single reorder does
// not repair groups that mix both kinds on each side of the first entry.
func Reorder(entries []Entry) []Entry {
	if len(entries) == 0 {
		return nil
	}
	first := entries[0].Transaction
	reordered := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if !MatchesFirstOpening(first, entry.Transaction) {
			reordered = append(reordered, entry)
		}
	}
	for _, entry := range entries {
		if MatchesFirstOpening(first, entry.Transaction) {
			reordered = append(reordered, entry)
		}
	}
	return reordered
}
