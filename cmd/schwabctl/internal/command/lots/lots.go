// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package lots implements the "lots" command.
package lots

import (
	"context"
	"io"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/schwabctl/cmd/schwabctl/internal/schwabctlcmd"
	"github.com/bufdev/schwabctl/internal/pkg/cliio"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctllot"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlreport"
	"github.com/spf13/pflag"
)

const (
	// symbolFlagName is the flag name for filtering by symbol.
	symbolFlagName = "symbol"
	// methodFlagName is the flag name for the cost-basis method.
	methodFlagName = "method"
)

// NewCommand returns a new lots command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "List open lots, optionally filtered by symbol",
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
	// Symbol filters lots to a specific symbol. Empty means all symbols.
	Symbol string
	// Method is the cost-basis method (fifo, lifo).
	Method string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	schwabctlcmd.BindDirFlag(flagSet, &f.Dir)
	schwabctlcmd.BindOutputFlags(flagSet, &f.Format, &f.Output)
	flagSet.StringVar(&f.Symbol, symbolFlagName, "", "Filter by symbol (omit for all symbols)")
	flagSet.StringVar(&f.Method, methodFlagName, "fifo", "Cost-basis method (fifo, lifo)")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	method, err := schwabctllot.ParseMethod(flags.Method)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	result, err := schwabctlcmd.Reconcile(ctx, container, flags.Dir)
	if err != nil {
		return err
	}
	lotOverviews := result.Lots(flags.Symbol, method)
	if flags.Symbol != "" && len(lotOverviews) == 0 {
		container.Logger().Warn("no open lots", "symbol", flags.Symbol)
	}
	return cliio.ForWriteFile(flags.Output, container.Stdout(), func(writer io.Writer) error {
		return cliio.Write(
			writer,
			format,
			schwabctlreport.LotOverviewHeaders(),
			lotOverviews,
			schwabctlreport.LotOverviewToRow,
			nil,
		)
	})
}
