// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package schwabctlclassify derives the position semantics of raw Schwab transactions.
//
// Classification sets three fields from fixed tables keyed on the transaction type and
// description: whether the transaction affects a position, its buy/sell/split instruction,
// and whether it opens exposure. Historical ticker renames are applied at the same time.
package schwabctlclassify

import (
	"maps"

	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctldata"
)

// DefaultSymbolRenames are the historical ticker changes applied when no renames are configured.
var DefaultSymbolRenames = map[string]string{
	"FB": "META",
}

// positionTypes are the transaction types that can change a position.
var positionTypes = map[string]struct{}{
	schwabctldata.TypeTrade:             {},
	schwabctldata.TypeReceiveAndDeliver: {},
}

// nonPositionDescriptions are descriptions of position-typed transactions that only move cash.
var nonPositionDescriptions = map[string]struct{}{
	schwabctldata.DescriptionCashAlternativesPurchase: {},
	schwabctldata.DescriptionCashAlternativesRedeem:   {},
	schwabctldata.DescriptionCashAlternativesInterest: {},
	schwabctldata.DescriptionInternalTransfer:         {},
}

// descriptionInstructions infer an instruction for records without one.
var descriptionInstructions = map[string]schwabctldata.Instruction{
	schwabctldata.DescriptionTransferOfSecurityIn: schwabctldata.InstructionBuy,
	schwabctldata.DescriptionSpinOff:              schwabctldata.InstructionBuy,
	schwabctldata.DescriptionOptionExpiration:     schwabctldata.InstructionSell,
	schwabctldata.DescriptionStockSplit:           schwabctldata.InstructionSplit,
}

// openingDescriptions are the descriptions of transactions that increase exposure.
var openingDescriptions = map[string]struct{}{
	schwabctldata.DescriptionBuyTrade:             {},
	schwabctldata.DescriptionShortSale:            {},
	schwabctldata.DescriptionTransferOfSecurityIn: {},
	schwabctldata.DescriptionSpinOff:              {},
}

// brokerInstructions normalizes the broker's order instructions to BUY or SELL.
var brokerInstructions = map[string]schwabctldata.Instruction{
	"BUY":               schwabctldata.InstructionBuy,
	"BUY_TO_OPEN":       schwabctldata.InstructionBuy,
	"BUY_TO_CLOSE":      schwabctldata.InstructionBuy,
	"BUY_TO_COVER":      schwabctldata.InstructionBuy,
	"SELL":              schwabctldata.InstructionSell,
	"SELL_SHORT":        schwabctldata.InstructionSell,
	"SELL_SHORT_EXEMPT": schwabctldata.InstructionSell,
	"SELL_TO_OPEN":      schwabctldata.InstructionSell,
	"SELL_TO_CLOSE":     schwabctldata.InstructionSell,
}

// Classifier classifies transactions.
type Classifier struct {
	symbolRenames map[string]string
}

// ClassifierOption is an option for a new Classifier.
type ClassifierOption func(*Classifier)

// WithSymbolRenames sets the ticker renames applied to instrument symbols.
//
// The default is DefaultSymbolRenames. An empty map disables renaming.
func WithSymbolRenames(symbolRenames map[string]string) ClassifierOption {
	return func(classifier *Classifier) {
		classifier.symbolRenames = maps.Clone(symbolRenames)
	}
}

// NewClassifier returns a new Classifier.
func NewClassifier(options ...ClassifierOption) *Classifier {
	classifier := &Classifier{
		symbolRenames: maps.Clone(DefaultSymbolRenames),
	}
	for _, option := range options {
		option(classifier)
	}
	return classifier
}

// Classify returns a copy of the transaction with the derived fields set.
//
// Classifying an already classified transaction returns it unchanged, so renames are
// applied exactly once.
func (c *Classifier) Classify(transaction schwabctldata.Transaction) schwabctldata.Transaction {
	if transaction.Classified {
		return transaction
	}
	transaction.Classified = true
	transaction.PositionAffected = IsPositionAffected(transaction.Type, transaction.Description)
	transaction.Instruction = InferInstruction(transaction.Item.Instruction, transaction.Description)
	transaction.Opening = IsOpening(transaction.Description)
	instrument := &transaction.Item.Instrument
	if renamed, ok := c.symbolRenames[instrument.Symbol]; ok {
		instrument.Symbol = renamed
	}
	if renamed, ok := c.symbolRenames[instrument.UnderlyingSymbol]; ok {
		instrument.UnderlyingSymbol = renamed
	}
	return transaction
}

// IsPositionAffected returns true if a transaction with the given type and description
// changes a security position.
func IsPositionAffected(transactionType string, description string) bool {
	if _, ok := positionTypes[transactionType]; !ok {
		return false
	}
	_, cashOnly := nonPositionDescriptions[description]
	return !cashOnly
}

// InferInstruction returns the normalized broker instruction, or the instruction implied
// by the description if the broker supplied none.
//
// Unknown broker instructions are returned verbatim. An empty result means no instruction.
func InferInstruction(brokerInstruction string, description string) schwabctldata.Instruction {
	if brokerInstruction != "" {
		if instruction, ok := brokerInstructions[brokerInstruction]; ok {
			return instruction
		}
		return schwabctldata.Instruction(brokerInstruction)
	}
	return descriptionInstructions[description]
}

// IsOpening returns true if the description marks a transaction that increases exposure.
func IsOpening(description string) bool {
	_, ok := openingDescriptions[description]
	return ok
}
