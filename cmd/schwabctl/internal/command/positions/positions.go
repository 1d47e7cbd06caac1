// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package positions implements the "positions" command.
package positions

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

// NewCommand returns a new positions command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "List open positions with FIFO and LIFO allocated cost",
		Args:  appcmd.NoArgs,
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
	balances := result.BalancesOverview()
	container.Logger().Info("balances",
		"cash", balances.Cash,
		"alternatives", balances.Alternatives,
		"margin", balances.Margin,
		"short", balances.Short,
		"sweep", balances.Sweep,
	)
	return cliio.ForWriteFile(flags.Output, container.Stdout(), func(writer io.Writer) error {
		return cliio.Write(
			writer,
			format,
			schwabctlreport.PositionOverviewHeaders(),
			result.PositionOverviews(),
			schwabctlreport.PositionOverviewToRow,
			result.PositionTotalsRow(),
		)
	})
}
