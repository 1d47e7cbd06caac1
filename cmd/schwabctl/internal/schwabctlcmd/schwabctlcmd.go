// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package schwabctlcmd provides shared wiring for schwabctl commands that
// reconcile the transaction feed.
package schwabctlcmd

import (
	"context"
	"log/slog"
	"time"

	"buf.build/go/app/appext"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlconfig"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctldata"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlreport"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlverify"
	"github.com/spf13/pflag"
)

const (
	// DirFlagName is the flag name for the base directory containing schwabctl.yaml and data.
	DirFlagName = "dir"
	// FormatFlagName is the flag name for the output format.
	FormatFlagName = "format"
	// OutputFlagName is the flag name for the output file path.
	OutputFlagName = "output"
)

// BindDirFlag binds the --dir flag.
func BindDirFlag(flagSet *pflag.FlagSet, dir *string) {
	flagSet.StringVar(dir, DirFlagName, ".", "The schwabctl directory containing schwabctl.yaml")
}

// BindOutputFlags binds the --format and --output flags.
func BindOutputFlags(flagSet *pflag.FlagSet, format *string, output *string) {
	flagSet.StringVar(format, FormatFlagName, "table", "Output format (table, csv, json)")
	flagSet.StringVarP(output, OutputFlagName, "o", "", "Write output to this file instead of stdout")
}

// Reconcile reads the configuration in the directory, reconciles the transaction
// feed, and logs every row diagnostic.
func Reconcile(
	ctx context.Context,
	container appext.Container,
	dirPath string,
) (*schwabctlreport.Result, error) {
	config, err := schwabctlconfig.ReadConfig(dirPath)
	if err != nil {
		return nil, err
	}
	transactions, err := schwabctlreport.LoadTransactions(ctx, config)
	if err != nil {
		return nil, err
	}
	return reconcile(container, config, transactions)
}

// ReconcileAndVerify reconciles like Reconcile, then verifies the result against the
// broker snapshot and logs every discrepancy.
func ReconcileAndVerify(
	ctx context.Context,
	container appext.Container,
	dirPath string,
) (*schwabctlreport.Result, []schwabctlverify.Discrepancy, error) {
	config, err := schwabctlconfig.ReadConfig(dirPath)
	if err != nil {
		return nil, nil, err
	}
	transactions, snapshot, err := schwabctlreport.Load(ctx, config)
	if err != nil {
		return nil, nil, err
	}
	result, err := reconcile(container, config, transactions)
	if err != nil {
		return nil, nil, err
	}
	discrepancies := result.Verify(snapshot, config)
	logger := container.Logger()
	for _, discrepancy := range discrepancies {
		LogDiscrepancy(logger, discrepancy)
	}
	return result, discrepancies, nil
}

// LogDiagnostics logs every row diagnostic of the result as a warning.
func LogDiagnostics(logger *slog.Logger, result *schwabctlreport.Result) {
	for _, diagnostic := range result.Diagnostics() {
		logger.Warn(
			diagnostic.Message,
			"symbol", diagnostic.Symbol,
			"transaction_time", diagnostic.Time,
			"ref", diagnostic.Ref,
			"kind", diagnostic.Kind,
		)
	}
}

// LogDiscrepancy logs a verification discrepancy as a warning.
func LogDiscrepancy(logger *slog.Logger, discrepancy schwabctlverify.Discrepancy) {
	switch discrepancy.Type {
	case schwabctlverify.DiscrepancyTypeComputedOnly:
		logger.Warn("position computed but not reported by Schwab",
			"symbol", discrepancy.Symbol,
			"computed_quantity", discrepancy.ComputedValue,
		)
	case schwabctlverify.DiscrepancyTypeReportedOnly:
		logger.Warn("position reported by Schwab but not in computed data",
			"symbol", discrepancy.Symbol,
			"reported_quantity", discrepancy.ReportedValue,
		)
	case schwabctlverify.DiscrepancyTypeCashBalance,
		schwabctlverify.DiscrepancyTypeShortBalance,
		schwabctlverify.DiscrepancyTypeMarginBalance:
		logger.Warn("balance mismatch",
			"type", discrepancy.Type.String(),
			"computed", discrepancy.ComputedValue,
			"reported", discrepancy.ReportedValue,
		)
	default:
		logger.Warn("position mismatch",
			"symbol", discrepancy.Symbol,
			"type", discrepancy.Type.String(),
			"computed", discrepancy.ComputedValue,
			"reported", discrepancy.ReportedValue,
		)
	}
}

// *** PRIVATE ***

func reconcile(
	container appext.Container,
	config *schwabctlconfig.Config,
	transactions []schwabctldata.Transaction,
) (*schwabctlreport.Result, error) {
	logger := container.Logger()
	start := time.Now()
	result, err := schwabctlreport.Reconcile(transactions, config.Location)
	if err != nil {
		return nil, err
	}
	logger.Debug("reconciled transactions",
		"transactions", len(transactions),
		"positions", len(result.Positions),
		"duration", time.Since(start),
	)
	LogDiagnostics(logger, result)
	return result, nil
}
