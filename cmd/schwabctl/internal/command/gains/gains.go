// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package gains implements the "gains" command.
package gains

import (
	"context"
	"io"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/schwabctl/cmd/schwabctl/internal/schwabctlcmd"
	"github.com/bufdev/schwabctl/internal/pkg/cliio"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlreport"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlrollup"
	"github.com/spf13/pflag"
)

// periodFlagName is the flag name for the calendar period.
const periodFlagName = "period"

// NewCommand returns a new gains command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "List realized FIFO and LIFO gains per calendar period",
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
	// Period is the calendar period (day, week, month, year).
	Period string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	schwabctlcmd.BindDirFlag(flagSet, &f.Dir)
	schwabctlcmd.BindOutputFlags(flagSet, &f.Format, &f.Output)
	flagSet.StringVar(&f.Period, periodFlagName, "month", "Calendar period (day, week, month, year)")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	period, err := schwabctlrollup.ParsePeriod(flags.Period)
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
			schwabctlreport.PeriodGainOverviewHeaders(),
			result.PeriodGainOverviews(period),
			schwabctlreport.PeriodGainOverviewToRow,
			result.PeriodGainTotalsRow(),
		)
	})
}
