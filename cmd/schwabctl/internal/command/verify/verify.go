// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package verify implements the "verify" command.
package verify

import (
	"context"
	"fmt"
	"io"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/schwabctl/cmd/schwabctl/internal/schwabctlcmd"
	"github.com/bufdev/schwabctl/internal/pkg/cliio"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlreport"
	"github.com/spf13/pflag"
)

// NewCommand returns a new verify command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Compare computed positions and balances with data/account.json",
		Long: `Compare computed positions and balances with data/account.json.

Quantities must match exactly. FIFO allocated cost and the cash, short, and margin
balances may differ by up to verification.tolerance from schwabctl.yaml.
Exits with an error if any discrepancy is found.`,
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
	_, discrepancies, err := schwabctlcmd.ReconcileAndVerify(ctx, container, flags.Dir)
	if err != nil {
		return err
	}
	if err := cliio.ForWriteFile(flags.Output, container.Stdout(), func(writer io.Writer) error {
		return cliio.Write(
			writer,
			format,
			schwabctlreport.DiscrepancyOverviewHeaders(),
			schwabctlreport.NewDiscrepancyOverviews(discrepancies),
			schwabctlreport.DiscrepancyOverviewToRow,
			nil,
		)
	}); err != nil {
		return err
	}
	if len(discrepancies) > 0 {
		return fmt.Errorf("found %d discrepancies", len(discrepancies))
	}
	return nil
}
