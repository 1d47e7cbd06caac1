// Copyright 2026 Peter Edge
//
// All rights reserved.

package schwabctldata

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiagnosticKind describes the kind of anomaly attached to a Row.
type DiagnosticKind int

const (
	// DiagnosticKindSequenceWarning indicates the transaction contradicted the live
	// position when it arrived and was deferred for reordering.
	DiagnosticKindSequenceWarning DiagnosticKind = iota + 1
	// DiagnosticKindSorted indicates the transaction shared the timestamp of a deferred
	// transaction and was reordered together with it.
	DiagnosticKindSorted
	// DiagnosticKindSubTypeMismatch indicates the opening/closing flag still contradicted
	// the effect on the position when the transaction was applied.
	DiagnosticKindSubTypeMismatch
	// DiagnosticKindReverse indicates a close exhausted every open lot and the residual
	// was reopened in the opposite direction at the closing price.
	DiagnosticKindReverse
	// DiagnosticKindSplitRejected indicates a split could not be applied, for example
	// because the symbol had no open position.
	DiagnosticKindSplitRejected
)

// String returns the label used in the position effect column.
func (k DiagnosticKind) String() string {
	switch k {
	case DiagnosticKindSequenceWarning:
		return "Warning, Transaction Sub type MISMATCH"
	case DiagnosticKindSorted:
		return "sorted"
	case DiagnosticKindSubTypeMismatch:
		return "Transaction Sub type MISMATCH"
	case DiagnosticKindReverse:
		return "REVERSE"
	case DiagnosticKindSplitRejected:
		return "ERROR, SPLIT rejected"
	default:
		return "unknown"
	}
}

// Diagnostic is a structured anomaly report attached to the Row of a transaction.
type Diagnostic struct {
	// Kind is the kind of anomaly.
	Kind DiagnosticKind
	// Symbol is the symbol concerned.
	Symbol string
	// Message is a human-readable explanation.
	Message string
}

// Row is the output record for one processed transaction.
type Row struct {
	// Time is the transaction timestamp in the reporting location.
	Time time.Time
	// Type is the broker transaction type.
	Type string
	// SubType is the broker transaction sub type.
	SubType string
	// Ref is the transaction ID, or the order ID if there is none.
	Ref string
	// Description is the broker description, with the option description appended for options.
	Description string
	// SubAccount is the broker sub account code.
	SubAccount string
	// RegFee is the regulatory fee.
	RegFee decimal.Decimal
	// Commission is the broker commission.
	Commission decimal.Decimal
	// NetAmount is the signed cash effect.
	NetAmount decimal.Decimal
	// Amount is the unsigned item amount, zero if absent.
	Amount decimal.Decimal

	// Cash is the cash balance after the transaction.
	Cash decimal.Decimal
	// Alternatives is the cash alternatives balance after the transaction.
	Alternatives decimal.Decimal
	// Margin is the margin balance after the transaction.
	Margin decimal.Decimal
	// Short is the short balance after the transaction.
	Short decimal.Decimal
	// Sweep is the sweep vehicle total after the transaction.
	Sweep decimal.Decimal

	// AssetType is the instrument asset type.
	AssetType string
	// Symbol is the instrument symbol.
	Symbol string
	// OrderID is the broker order ID.
	OrderID string
	// Instruction is the normalized or inferred instruction.
	Instruction Instruction
	// Price is the broker-reported execution price.
	Price decimal.Decimal
	// PositionEffect is the raw broker position effect.
	PositionEffect string
	// UnderlyingSymbol is the underlying ticker for derivatives.
	UnderlyingSymbol string

	// FIFOGain is the realized gain under FIFO.
	FIFOGain decimal.Decimal
	// LIFOGain is the realized gain under LIFO.
	LIFOGain decimal.Decimal
	// FIFODuration is the longest holding period among FIFO lots consumed.
	FIFODuration time.Duration
	// LIFODuration is the longest holding period among LIFO lots consumed.
	LIFODuration time.Duration

	// Quantity is the symbol quantity after the transaction. Only set if HasQuantity.
	Quantity decimal.Decimal
	// HasQuantity is true for position-affecting rows.
	HasQuantity bool
	// Positions is the summary of all open positions, e.g. "AAPL: 10, MSFT: -5".
	Positions string

	// FIFOAllocated is the account-level FIFO allocated cost.
	FIFOAllocated decimal.Decimal
	// LIFOAllocated is the account-level LIFO allocated cost.
	LIFOAllocated decimal.Decimal
	// FIFOValue is the sweep total plus FIFO allocated cost.
	FIFOValue decimal.Decimal
	// LIFOValue is the sweep total plus LIFO allocated cost.
	LIFOValue decimal.Decimal

	// Reverse is true if a reverse anomaly occurred.
	Reverse bool
	// Diagnostics are the anomalies recorded for this transaction.
	Diagnostics []Diagnostic
}

// PositionEffectLabel returns the broker position effect followed by every diagnostic label,
// joined by " - ".
//
// A mismatch or reverse that follows another label uses the error wording.
func (r Row) PositionEffectLabel() string {
	var labels []string
	if r.PositionEffect != "" {
		labels = append(labels, r.PositionEffect)
	}
	for _, diagnostic := range r.Diagnostics {
		label := diagnostic.Kind.String()
		if len(labels) > 0 {
			switch diagnostic.Kind {
			case DiagnosticKindSubTypeMismatch:
				label = "ERROR, MISMATCH could not be solved"
			case DiagnosticKindReverse:
				label = "ERROR REVERSE"
			}
		}
		labels = append(labels, label)
	}
	return strings.Join(labels, " - ")
}

// HasDiagnostic returns true if the row carries a diagnostic of the given kind.
func (r Row) HasDiagnostic(kind DiagnosticKind) bool {
	for _, diagnostic := range r.Diagnostics {
		if diagnostic.Kind == kind {
			return true
		}
	}
	return false
}
