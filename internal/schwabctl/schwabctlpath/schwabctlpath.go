// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package schwabctlpath derives file paths from the schwabctl base directory.
// All layout is defined here so callers don't duplicate path construction logic.
//
// The base directory (--dir flag) contains:
//
//	schwabctl.yaml               Config file
//	data/transactions/*.json     Transaction feed files, merged in name order
//	data/account.json            Broker account snapshot used by verify
package schwabctlpath

import "path/filepath"

// ConfigFileName is the well-known config file name within the base directory.
const ConfigFileName = "schwabctl.yaml"

// FeedFileExt is the extension of transaction feed files.
const FeedFileExt = ".json"

// ConfigFilePath returns the path to the config file within the base directory.
func ConfigFilePath(dirPath string) string {
	return filepath.Join(dirPath, ConfigFileName)
}

// DataDirPath returns the directory holding downloaded broker data.
func DataDirPath(dirPath string) string {
	return filepath.Join(dirPath, "data")
}

// TransactionsDirPath returns the directory holding transaction feed files.
func TransactionsDirPath(dirPath string) string {
	return filepath.Join(dirPath, "data", "transactions")
}

// AccountFilePath returns the path to the broker account snapshot.
func AccountFilePath(dirPath string) string {
	return filepath.Join(dirPath, "data", "account.json")
}
