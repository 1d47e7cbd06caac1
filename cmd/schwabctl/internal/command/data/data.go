// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package data implements the "data" command group.
package data

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/schwabctl/cmd/schwabctl/internal/command/data/dataimport"
	"github.com/bufdev/schwabctl/cmd/schwabctl/internal/command/data/datazip"
)

// NewCommand returns a new data command group with data management sub-commands.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Manage schwabctl data",
		SubCommands: []*appcmd.Command{
			dataimport.NewCommand("import", builder),
			datazip.NewCommand("zip", builder),
		},
	}
}
