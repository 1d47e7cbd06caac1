// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package schwabctlfeed reads Schwab transaction feeds and account snapshots.
//
// A feed file holds either a JSON array of transactions or one transaction per line,
// as downloaded from the Schwab trader API. Transactions are classified and validated as
// they are decoded, so malformed input fails here before it reaches the ledger. Feeds
// from several files are merged, deduplicated by transaction ID, and sorted by time.
package schwabctlfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlclassify"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctldata"
	"github.com/bufdev/schwabctl/internal/standard/xos"
	"github.com/bufdev/schwabctl/internal/standard/xtime"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// feedNamespace is the namespace of the content IDs of transactions without a broker ID.
var feedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/bufdev/schwabctl/feed"))

// LoadDir reads every .json feed file in the directory.
//
// A missing directory yields no transactions.
func LoadDir(ctx context.Context, dirPath string, classifier *schwabctlclassify.Classifier) ([]schwabctldata.Transaction, error) {
	filePaths, err := xos.GlobSorted(dirPath, ".json")
	if err != nil {
		return nil, err
	}
	return Load(ctx, filePaths, classifier)
}

// Load reads the feed files in parallel and merges them.
//
// Files are merged in the order given, so a duplicate transaction keeps its first occurrence.
func Load(ctx context.Context, filePaths []string, classifier *schwabctlclassify.Classifier) ([]schwabctldata.Transaction, error) {
	transactionSets := make([][]schwabctldata.Transaction, len(filePaths))
	eg, ctx := errgroup.WithContext(ctx)
	for i, filePath := range filePaths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			transactions, err := ReadFile(filePath, classifier)
			if err != nil {
				return err
			}
			transactionSets[i] = transactions
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return Merge(transactionSets...), nil
}

// ReadFile reads one feed file.
func ReadFile(filePath string, classifier *schwabctlclassify.Classifier) ([]schwabctldata.Transaction, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	transactions, err := Decode(data, classifier)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return transactions, nil
}

// Decode decodes, classifies, and validates the transactions of one feed.
//
// The order of the feed is preserved.
func Decode(data []byte, classifier *schwabctlclassify.Classifier) ([]schwabctldata.Transaction, error) {
	rawTransactions, err := splitFeed(data)
	if err != nil {
		return nil, err
	}
	transactions := make([]schwabctldata.Transaction, 0, len(rawTransactions))
	for i, rawTransaction := range rawTransactions {
		var externalTransaction externalTransaction
		if err := json.Unmarshal(rawTransaction, &externalTransaction); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		transaction, err := externalTransaction.toTransaction()
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		transaction = classifier.Classify(transaction)
		if err := validatePosition(transaction); err != nil {
			return nil, fmt.Errorf("transaction %d (%s): %w", i, transaction.Ref(), err)
		}
		transactions = append(transactions, transaction)
	}
	return transactions, nil
}

// Merge concatenates the transaction sets, drops duplicates, and stably sorts by time.
//
// Transactions are identified by their ID. A transaction without an ID is identified
// by a content hash of its fields.
func Merge(transactionSets ...[]schwabctldata.Transaction) []schwabctldata.Transaction {
	seen := make(map[string]struct{})
	var merged []schwabctldata.Transaction
	for _, transactions := range transactionSets {
		for _, transaction := range transactions {
			key := Key(transaction)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, transaction)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Time.Before(merged[j].Time)
	})
	return merged
}

// Key returns the deduplication key of a transaction.
//
// This is the broker transaction ID if present, otherwise a deterministic UUID derived
// from the transaction's content.
func Key(transaction schwabctldata.Transaction) string {
	if transaction.ID != "" {
		return transaction.ID
	}
	item := transaction.Item
	content := fmt.Sprintf(
		"%s|%s|%s|%s|%s|%s|%s|%s|%s|%s",
		transaction.OrderID,
		transaction.Type,
		transaction.SubType,
		transaction.Description,
		transaction.SubAccount,
		transaction.Time.UTC().Format("2006-01-02T15:04:05Z"),
		transaction.NetAmount.String(),
		item.Instrument.Symbol,
		item.Instruction,
		item.Amount.String(),
	)
	return uuid.NewSHA1(feedNamespace, []byte(content)).String()
}

// *** PRIVATE ***

type externalTransaction struct {
	TransactionID   flexString          `json:"transactionId"`
	ActivityID      flexString          `json:"activityId"`
	OrderID         flexString          `json:"orderId"`
	Type            string              `json:"type"`
	SubType         string              `json:"transactionSubType"`
	Description     string              `json:"description"`
	SubAccount      flexString          `json:"subAccount"`
	TransactionDate string              `json:"transactionDate"`
	Time            string              `json:"time"`
	NetAmount       decimal.NullDecimal `json:"netAmount"`
	Fees            externalFees        `json:"fees"`
	TransactionItem externalItem        `json:"transactionItem"`
}

type externalFees struct {
	RegFee     decimal.NullDecimal `json:"regFee"`
	Commission decimal.NullDecimal `json:"commission"`
}

type externalItem struct {
	Amount         decimal.NullDecimal `json:"amount"`
	Price          decimal.NullDecimal `json:"price"`
	Instruction    string              `json:"instruction"`
	PositionEffect string              `json:"positionEffect"`
	Instrument     externalInstrument  `json:"instrument"`
}

type externalInstrument struct {
	Symbol           string `json:"symbol"`
	AssetType        string `json:"assetType"`
	Description      string `json:"description"`
	UnderlyingSymbol string `json:"underlyingSymbol"`
}

func (e externalTransaction) toTransaction() (schwabctldata.Transaction, error) {
	if e.Type == "" {
		return schwabctldata.Transaction{}, errors.New("missing type")
	}
	timestamp := e.TransactionDate
	if timestamp == "" {
		timestamp = e.Time
	}
	if timestamp == "" {
		return schwabctldata.Transaction{}, errors.New("missing transactionDate")
	}
	transactionTime, err := xtime.ParseTimestamp(timestamp)
	if err != nil {
		return schwabctldata.Transaction{}, fmt.Errorf("transactionDate: %w", err)
	}
	if !e.NetAmount.Valid {
		return schwabctldata.Transaction{}, errors.New("missing netAmount")
	}
	id := string(e.TransactionID)
	if id == "" {
		id = string(e.ActivityID)
	}
	return schwabctldata.Transaction{
		ID:          id,
		OrderID:     string(e.OrderID),
		Type:        e.Type,
		SubType:     e.SubType,
		Description: e.Description,
		SubAccount:  string(e.SubAccount),
		Time:        transactionTime,
		NetAmount:   e.NetAmount.Decimal,
		Fees: schwabctldata.Fees{
			RegFee:     e.Fees.RegFee.Decimal,
			Commission: e.Fees.Commission.Decimal,
		},
		Item: schwabctldata.Item{
			Amount:         e.TransactionItem.Amount.Decimal,
			HasAmount:      e.TransactionItem.Amount.Valid,
			Price:          e.TransactionItem.Price.Decimal,
			Instruction:    e.TransactionItem.Instruction,
			PositionEffect: e.TransactionItem.PositionEffect,
			Instrument: schwabctldata.Instrument{
				Symbol:           e.TransactionItem.Instrument.Symbol,
				AssetType:        e.TransactionItem.Instrument.AssetType,
				Description:      e.TransactionItem.Instrument.Description,
				UnderlyingSymbol: e.TransactionItem.Instrument.UnderlyingSymbol,
			},
		},
	}, nil
}

// validatePosition checks the fields the ledger needs on a classified transaction.
func validatePosition(transaction schwabctldata.Transaction) error {
	if !transaction.PositionAffected {
		return nil
	}
	if transaction.Symbol() == "" {
		return errors.New("missing instrument symbol")
	}
	if !transaction.Item.HasAmount {
		return errors.New("missing transactionItem amount")
	}
	if transaction.Item.Amount.IsZero() {
		return errors.New("zero transactionItem amount")
	}
	return nil
}

// splitFeed returns the raw transactions of a JSON array or of a stream of JSON objects.
func splitFeed(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var rawTransactions []json.RawMessage
		if err := json.Unmarshal(trimmed, &rawTransactions); err != nil {
			return nil, err
		}
		return rawTransactions, nil
	}
	var rawTransactions []json.RawMessage
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	for {
		var rawTransaction json.RawMessage
		if err := decoder.Decode(&rawTransaction); err != nil {
			if errors.Is(err, io.EOF) {
				return rawTransactions, nil
			}
			return nil, fmt.Errorf("transaction %d: %w", len(rawTransactions), err)
		}
		rawTransactions = append(rawTransactions, rawTransaction)
	}
}

// flexString is a JSON string that the broker sometimes encodes as a number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*f = flexString(number.String())
	return nil
}
