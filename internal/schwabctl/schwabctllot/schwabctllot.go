// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package schwabctllot provides the per-symbol lot ledger for schwabctl.
//
// A Ledger tracks one symbol's position under two cost-basis methods at once.
// Opening transactions add a lot to both the FIFO and the LIFO queue, closing
// transactions consume lots from the matching end of each queue and realize
// gains. The position quantity is shared by both methods and is always equal
// to the sum of either method's lot quantities.
package schwabctllot

import (
	"fmt"
	"strings"
	"time"

	"github.com/bufdev/schwabctl/internal/pkg/mathdec"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctldata"
	"github.com/shopspring/decimal"
)

// Method is a cost-basis accounting method.
type Method int

const (
	// MethodFIFO matches closes against the oldest open lots first.
	MethodFIFO Method = iota + 1
	// MethodLIFO matches closes against the newest open lots first.
	MethodLIFO
)

// AllMethods are all supported methods, in display order.
var AllMethods = []Method{MethodFIFO, MethodLIFO}

// String returns the method name.
func (m Method) String() string {
	switch m {
	case MethodFIFO:
		return "fifo"
	case MethodLIFO:
		return "lifo"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod parses a method name, case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "fifo":
		return MethodFIFO, nil
	case "lifo":
		return MethodLIFO, nil
	default:
		return 0, fmt.Errorf("unknown method %q, must be one of: fifo, lifo", s)
	}
}

// Lot is a partially consumable quantity opened at a specific price and time.
type Lot struct {
	// Quantity is the signed open quantity, negative for short lots.
	Quantity decimal.Decimal
	// Price is the per-unit cost including fees.
	Price decimal.Decimal
	// Opened is the time the lot was opened.
	Opened time.Time
}

// MethodResult is the outcome of one transaction under one method.
type MethodResult struct {
	// Gain is the realized gain, rounded to cents.
	Gain decimal.Decimal
	// Duration is the longest holding period among the lots consumed.
	Duration time.Duration
}

// Result is the outcome of applying one transaction to a Ledger.
type Result struct {
	// FIFO is the FIFO outcome.
	FIFO MethodResult
	// LIFO is the LIFO outcome.
	LIFO MethodResult
	// Opened is true if the transaction opened a new lot instead of closing lots.
	Opened bool
	// Reverse is true if the close exhausted every open lot. The residual quantity
	// was reopened in the opposite direction at the closing price.
	Reverse bool
}

// ForMethod returns the outcome under the given method.
func (r Result) ForMethod(method Method) MethodResult {
	if method == MethodLIFO {
		return r.LIFO
	}
	return r.FIFO
}

// Ledger is the lot ledger of one symbol.
//
// A Ledger is not safe for concurrent use.
type Ledger struct {
	symbol   string
	quantity decimal.Decimal
	fifo     *book
	lifo     *book
}

// New returns a new flat Ledger for the symbol.
func New(symbol string) *Ledger {
	return &Ledger{
		symbol: symbol,
		fifo:   newBook(MethodFIFO),
		lifo:   newBook(MethodLIFO),
	}
}

// Symbol returns the symbol of the ledger.
func (l *Ledger) Symbol() string {
	return l.symbol
}

// Quantity returns the signed position quantity.
func (l *Ledger) Quantity() decimal.Decimal {
	return l.quantity
}

// Allocated returns the allocated cost of the open lots under the method, rounded to cents.
func (l *Ledger) Allocated(method Method) decimal.Decimal {
	return l.book(method).allocated
}

// AveragePrice returns the allocated cost divided by quantity under the method, rounded
// to cents, or zero if the ledger is flat.
func (l *Ledger) AveragePrice(method Method) decimal.Decimal {
	return l.book(method).averagePrice
}

// Lots returns a copy of the open lots under the method, in consumption order.
func (l *Ledger) Lots(method Method) []Lot {
	lots := l.book(method).lots
	return append(make([]Lot, 0, len(lots)), lots...)
}

// Apply applies a classified buy or sell transaction.
//
// A transaction that moves in the direction of the position, or that arrives while the
// position is flat, opens a lot. Any other transaction closes lots under both methods.
// The per-unit price of the transaction is -netAmount/quantity, so it includes fees.
//
// Returns an error only if the transaction has a zero quantity.
func (l *Ledger) Apply(transaction schwabctldata.Transaction) (Result, error) {
	quantity := transaction.Quantity()
	if quantity.IsZero() {
		return Result{}, fmt.Errorf("%s: transaction %q has zero quantity", l.symbol, transaction.Ref())
	}
	price := transaction.NetAmount.Neg().Div(quantity)
	var result Result
	if OpensInDirection(transaction.IsBuy(), l.quantity) {
		l.open(quantity, price, transaction.Time)
		result.Opened = true
	} else {
		var fifoExhausted, lifoExhausted bool
		var residual decimal.Decimal
		result.FIFO, _, fifoExhausted = l.fifo.close(quantity, price, transaction.Time)
		result.LIFO, residual, lifoExhausted = l.lifo.close(quantity, price, transaction.Time)
		// Both queues hold the same total quantity, so they exhaust together.
		if fifoExhausted || lifoExhausted {
			result.Reverse = true
			l.quantity = decimal.Zero
			l.open(residual, price, transaction.Time)
		} else {
			l.quantity = l.quantity.Add(quantity)
		}
	}
	l.fifo.allocate(transaction.NetAmount, &result.FIFO, l.quantity)
	l.lifo.allocate(transaction.NetAmount, &result.LIFO, l.quantity)
	return result, nil
}

// Split applies a split transaction and returns the split ratio.
//
// The transaction's item amount is the number of shares added to the position (negative
// for reverse splits). The ratio is the new quantity over the old quantity. Every lot's
// quantity is multiplied by the ratio and its price divided by it, under both methods,
// so allocated cost is unchanged.
//
// Returns an error if the ledger is flat or the split would not leave a position in the
// same direction.
func (l *Ledger) Split(transaction schwabctldata.Transaction) (decimal.Decimal, error) {
	oldQuantity := l.quantity
	if oldQuantity.IsZero() {
		return decimal.Zero, fmt.Errorf("%s: cannot split a flat position", l.symbol)
	}
	// Shares are added in the direction of the position.
	delta := transaction.Item.Amount
	if oldQuantity.IsNegative() {
		delta = delta.Neg()
	}
	newQuantity := oldQuantity.Add(delta)
	if newQuantity.Sign() != oldQuantity.Sign() {
		return decimal.Zero, fmt.Errorf("%s: split of %s shares on a position of %s leaves no position", l.symbol, mathdec.ToString(transaction.Item.Amount), mathdec.ToString(oldQuantity))
	}
	l.quantity = newQuantity
	l.fifo.split(oldQuantity, newQuantity)
	l.lifo.split(oldQuantity, newQuantity)
	return newQuantity.Div(oldQuantity), nil
}

// OpensInDirection returns true if a transaction with the given buy flag increases
// exposure of a position with the given quantity, or starts one from flat.
func OpensInDirection(isBuy bool, positionQuantity decimal.Decimal) bool {
	if isBuy {
		return !positionQuantity.IsNegative()
	}
	return !positionQuantity.IsPositive()
}

// *** PRIVATE ***

func (l *Ledger) book(method Method) *book {
	if method == MethodLIFO {
		return l.lifo
	}
	return l.fifo
}

func (l *Ledger) open(quantity decimal.Decimal, price decimal.Decimal, opened time.Time) {
	lot := Lot{
		Quantity: quantity,
		Price:    price,
		Opened:   opened,
	}
	l.fifo.push(lot)
	l.lifo.push(lot)
	l.quantity = l.quantity.Add(quantity)
}

// book is the lot queue of one method. Lots are always consumed from index 0.
type book struct {
	method       Method
	lots         []Lot
	allocated    decimal.Decimal
	averagePrice decimal.Decimal
}

func newBook(method Method) *book {
	return &book{
		method: method,
	}
}

// push adds a lot at the end consumed last under the method.
func (b *book) push(lot Lot) {
	if b.method == MethodLIFO {
		b.lots = append([]Lot{lot}, b.lots...)
		return
	}
	b.lots = append(b.lots, lot)
}

// close consumes lots for a closing quantity of the opposite sign.
//
// Returns the method result, the quantity left unmatched, and whether every lot was
// consumed before the closing quantity was.
func (b *book) close(quantity decimal.Decimal, price decimal.Decimal, closed time.Time) (MethodResult, decimal.Decimal, bool) {
	var result MethodResult
	gain := decimal.Zero
	remaining := quantity
	done := false
	for len(b.lots) > 0 && !done {
		lot := &b.lots[0]
		if duration := closed.Sub(lot.Opened); duration > result.Duration {
			result.Duration = duration
		}
		switch {
		case lot.Quantity.Equal(remaining.Neg()):
			// Exactly consumes the lot.
			gain = gain.Add(lot.Quantity.Mul(price.Sub(lot.Price)))
			b.lots = b.lots[1:]
			done = true
		case remaining.Abs().LessThan(lot.Quantity.Abs()):
			// Partially consumes the lot.
			gain = gain.Add(remaining.Neg().Mul(price.Sub(lot.Price)))
			lot.Quantity = lot.Quantity.Add(remaining)
			done = true
		default:
			// Consumes the lot and continues with the next one.
			gain = gain.Add(lot.Quantity.Mul(price.Sub(lot.Price)))
			remaining = remaining.Add(lot.Quantity)
			b.lots = b.lots[1:]
		}
	}
	result.Gain = mathdec.RoundCents(gain)
	if done {
		return result, decimal.Zero, false
	}
	return result, remaining, true
}

// allocate updates allocated cost and average price after a transaction.
//
// When the position is flat afterwards, any sub-cent residue of per-call rounding is
// folded into the gain so that a flat position carries no allocated cost.
func (b *book) allocate(netAmount decimal.Decimal, result *MethodResult, quantity decimal.Decimal) {
	b.allocated = mathdec.RoundCents(b.allocated.Sub(netAmount).Add(result.Gain))
	if quantity.IsZero() {
		result.Gain = result.Gain.Sub(b.allocated)
		b.allocated = decimal.Zero
		b.averagePrice = decimal.Zero
		return
	}
	b.averagePrice = mathdec.RoundCents(b.allocated.Div(quantity))
}

// split scales every lot by newQuantity/oldQuantity.
//
// Division is truncated for ratios that do not terminate, so the newest lot takes
// whatever is left of newQuantity and the lots always sum to it exactly.
func (b *book) split(oldQuantity decimal.Decimal, newQuantity decimal.Decimal) {
	if len(b.lots) == 0 {
		return
	}
	newest := len(b.lots) - 1
	if b.method == MethodLIFO {
		newest = 0
	}
	rest := decimal.Zero
	for i := range b.lots {
		// Multiply before dividing so whole-share ratios stay exact.
		b.lots[i].Quantity = b.lots[i].Quantity.Mul(newQuantity).Div(oldQuantity)
		b.lots[i].Price = b.lots[i].Price.Mul(oldQuantity).Div(newQuantity)
		if i != newest {
			rest = rest.Add(b.lots[i].Quantity)
		}
	}
	b.lots[newest].Quantity = newQuantity.Sub(rest)
	b.averagePrice = mathdec.RoundCents(b.allocated.Div(newQuantity))
}
