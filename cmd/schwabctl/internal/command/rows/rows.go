// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package rows implements the "rows" command.
package rows

import (
	"context"
	"io"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/schwabctl/cmd/schwabctl/internal/schwabctlcmd"
	"github.com/bufdev/schwabctl/internal/pkg/cliio"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlreport"
	"github.com/spf13/pflag"
)

// NewCommand returns a new rows command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "List one row per transaction with positions, gains, balances, and period totals",
		Long: `List one row per transaction with positions, gains, balances, and period totals.

Transactions are read from data/transactions/*.json in the schwabctl directory,
deduplicated, sorted by time, and replayed through FIFO and LIFO lot ledgers.
Period totals are shown on the last row of each day, week, month, and year.`,
		Args: appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	// Dir is the base directory containing schwabctl.yaml and data.
	Dir string
	// Format is the output format (table, csv, json).
	Format string
	// Output is the output file path. Empty means stdout.
	Output string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	schwabctlcmd.BindDirFlag(flagSet, &f.Dir)
	schwabctlcmd.BindOutputFlags(flagSet, &f.Format, &f.Output)
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	result, err := schwabctlcmd.Reconcile(ctx, container, flags.Dir)
	if err != nil {
		return err
	}
	return cliio.ForWriteFile(flags.Output, container.Stdout(), func(writer io.Writer) error {
		return cliio.Write(
			writer,
			format,
			schwabctlreport.RowOverviewHeaders(),
			result.RowOverviews(),
			schwabctlreport.RowOverviewToRow,
			nil,
		)
	})
}
