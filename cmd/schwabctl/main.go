// Copyright 2026 Peter Edge
//
// All rights reserved.

package main

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/schwabctl/cmd/schwabctl/internal/command/config"
	"github.com/bufdev/schwabctl/cmd/schwabctl/internal/command/data"
	"github.com/bufdev/schwabctl/cmd/schwabctl/internal/command/gains"
	"github.com/bufdev/schwabctl/cmd/schwabctl/internal/command/lots"
	"github.com/bufdev/schwabctl/cmd/schwabctl/internal/command/positions"
	"github.com/bufdev/schwabctl/cmd/schwabctl/internal/command/rows"
	"github.com/bufdev/schwabctl/cmd/schwabctl/internal/command/verify"
)

func main() {
	appcmd.Main(context.Background(), newRootCommand("schwabctl"))
}

// newRootCommand creates the root schwabctl command with all sub-commands.
func newRootCommand(name string) *appcmd.Command {
	builder := appext.NewBuilder(name)
	return &appcmd.Command{
		Use:                 name,
		Short:               "Reconcile Schwab transactions into positions, lots, and balances",
		BindPersistentFlags: builder.BindRoot,
		SubCommands: []*appcmd.Command{
			config.NewCommand("config", builder),
			data.NewCommand("data", builder),
			rows.NewCommand("rows", builder),
			positions.NewCommand("positions", builder),
			lots.NewCommand("lots", builder),
			gains.NewCommand("gains", builder),
			verify.NewCommand("verify", builder),
		},
	}
}
