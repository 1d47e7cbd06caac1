// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package schwabctldata defines the data types shared by the schwabctl reconciliation engine.
//
// Transactions flow in from the feed, are classified once, and are consumed by the
// balances aggregator, which emits one Row per transaction. All types are values:
// a Transaction is never modified after classification and a Row is never modified
// after it is emitted.
package schwabctldata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Instruction is the buy/sell/split semantics of a transaction.
type Instruction string

const (
	// InstructionBuy increases a long position or covers a short position.
	InstructionBuy Instruction = "BUY"
	// InstructionSell decreases a long position or opens a short position.
	InstructionSell Instruction = "SELL"
	// InstructionSplit adjusts all open lots of a symbol by a split ratio.
	InstructionSplit Instruction = "SPLIT"
)

// Transaction types that may affect positions.
const (
	TypeTrade             = "TRADE"
	TypeReceiveAndDeliver = "RECEIVE_AND_DELIVER"
)

// Descriptions with fixed semantics in the classifier and the balances aggregator.
const (
	DescriptionBuyTrade                 = "BUY TRADE"
	DescriptionSellTrade                = "SELL TRADE"
	DescriptionShortSale                = "SHORT SALE"
	DescriptionCloseShortPosition       = "CLOSE SHORT POSITION"
	DescriptionTransferOfSecurityIn     = "TRANSFER OF SECURITY OR OPTION IN"
	DescriptionSpinOff                  = "NON-TAXABLE SPIN OFF/LIQUIDATION DISTRIBUTION"
	DescriptionOptionExpiration         = "REMOVAL OF OPTION DUE TO EXPIRATION"
	DescriptionStockSplit               = "STOCK SPLIT"
	DescriptionCashAlternativesPurchase = "CASH ALTERNATIVES PURCHASE"
	DescriptionCashAlternativesRedeem   = "CASH ALTERNATIVES REDEMPTION"
	DescriptionCashAlternativesInterest = "CASH ALTERNATIVES INTEREST"
	DescriptionInternalTransfer         = "INTERNAL TRANSFER BETWEEN ACCOUNTS OR ACCOUNT TYPES"
	DescriptionIntraAccountTransfer     = "INTRA-ACCOUNT TRANSFER"
	DescriptionMarkToTheMarket          = "MARK TO THE MARKET"
)

const (
	// AssetTypeOption is the asset type of option contracts.
	AssetTypeOption = "OPTION"
	// SubAccountShort is the sub account code of the short account.
	SubAccountShort = "4"
)

// Fees is the fee breakdown of a transaction.
type Fees struct {
	// RegFee is the regulatory fee.
	RegFee decimal.Decimal
	// Commission is the broker commission.
	Commission decimal.Decimal
}

// Instrument identifies the security of a transaction item.
type Instrument struct {
	// Symbol is the ticker symbol.
	Symbol string
	// AssetType is the broker asset type (e.g., "EQUITY", "OPTION").
	AssetType string
	// Description is the broker instrument description.
	Description string
	// UnderlyingSymbol is the underlying ticker for derivatives.
	UnderlyingSymbol string
}

// Item is the security leg of a transaction.
type Item struct {
	// Amount is the unsigned quantity (or cash amount for cash alternatives).
	Amount decimal.Decimal
	// HasAmount is false when the feed omitted the amount.
	HasAmount bool
	// Price is the broker-reported execution price.
	Price decimal.Decimal
	// Instruction is the raw broker instruction, empty if the feed omitted it.
	Instruction string
	// PositionEffect is the raw broker position effect (e.g., "OPENING").
	PositionEffect string
	// Instrument is the security.
	Instrument Instrument
}

// Transaction is a brokerage transaction.
//
// The derived fields PositionAffected, Instruction, and Opening are set once by the classifier.
type Transaction struct {
	// ID is the broker transaction ID.
	ID string
	// OrderID is the broker order ID, if any.
	OrderID string
	// Type is the broker transaction type (e.g., "TRADE").
	Type string
	// SubType is the broker transaction sub type.
	SubType string
	// Description is the free-text broker description.
	Description string
	// SubAccount is the broker sub account code.
	SubAccount string
	// Time is the transaction timestamp.
	Time time.Time
	// NetAmount is the signed cash effect, including fees.
	NetAmount decimal.Decimal
	// Fees is the fee breakdown.
	Fees Fees
	// Item is the security leg.
	Item Item

	// Classified is true once the classifier has run.
	Classified bool
	// PositionAffected is true if the transaction changes a security position.
	PositionAffected bool
	// Instruction is the normalized or inferred instruction.
	Instruction Instruction
	// Opening is true if the description marks the transaction as increasing exposure.
	Opening bool
}

// Symbol returns the instrument symbol.
func (t Transaction) Symbol() string {
	return t.Item.Instrument.Symbol
}

// Quantity returns the signed quantity: the item amount for buys and its negation otherwise.
func (t Transaction) Quantity() decimal.Decimal {
	if t.Instruction == InstructionBuy {
		return t.Item.Amount
	}
	return t.Item.Amount.Neg()
}

// IsBuy returns true if the instruction is BUY.
func (t Transaction) IsBuy() bool {
	return t.Instruction == InstructionBuy
}

// IsSplit returns true if the instruction is SPLIT.
func (t Transaction) IsSplit() bool {
	return t.Instruction == InstructionSplit
}

// Ref returns the transaction ID, falling back to the order ID.
func (t Transaction) Ref() string {
	if t.ID != "" {
		return t.ID
	}
	return t.OrderID
}

// Snapshot is a set of positions and balances, either computed or broker-reported.
type Snapshot struct {
	// Positions is the list of open positions.
	Positions []SnapshotPosition
	// Balances holds the cash-type balances.
	Balances SnapshotBalances
}

// SnapshotPosition is one open position of a Snapshot.
type SnapshotPosition struct {
	// Symbol is the ticker symbol.
	Symbol string `json:"symbol"`
	// Quantity is the signed position quantity.
	Quantity decimal.Decimal `json:"quantity"`
	// FIFOAllocated is the FIFO allocated cost rounded to cents.
	FIFOAllocated decimal.Decimal `json:"fifo_allocated"`
}

// SnapshotBalances holds the cash-type balances compared by verification.
type SnapshotBalances struct {
	// Cash is the cash balance.
	Cash decimal.Decimal `json:"cash"`
	// Short is the short balance.
	Short decimal.Decimal `json:"short"`
	// Margin is the margin balance.
	Margin decimal.Decimal `json:"margin"`
}
