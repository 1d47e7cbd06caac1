// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package dataimport implements the "data import" command.
package dataimport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/schwabctl/cmd/schwabctl/internal/schwabctlcmd"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlclassify"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlconfig"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlfeed"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlpath"
	"github.com/bufdev/schwabctl/internal/standard/xos"
	"github.com/spf13/pflag"
)

const (
	// fileFlagName is the flag name for the feed files to import.
	fileFlagName = "file"
	// forceFlagName is the flag name for overwriting existing feed files.
	forceFlagName = "force"
)

// NewCommand returns a new data import command that copies feed files into the data directory.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Validate Schwab transaction files and copy them into data/transactions",
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
	// Files are the feed files to import.
	Files []string
	// Force overwrites feed files that already exist.
	Force bool
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	schwabctlcmd.BindDirFlag(flagSet, &f.Dir)
	flagSet.StringSliceVarP(&f.Files, fileFlagName, "f", nil, "A Schwab transaction JSON file to import (repeatable, required)")
	flagSet.BoolVar(&f.Force, forceFlagName, false, "Overwrite feed files that already exist")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	filePaths := flags.Files
	if len(filePaths) == 0 {
		return appcmd.NewInvalidArgumentErrorf("--%s is required", fileFlagName)
	}
	for _, filePath := range filePaths {
		if filepath.Ext(filePath) != schwabctlpath.FeedFileExt {
			return appcmd.NewInvalidArgumentErrorf("%s must have a %s extension", filePath, schwabctlpath.FeedFileExt)
		}
	}
	config, err := schwabctlconfig.ReadConfig(flags.Dir)
	if err != nil {
		return err
	}
	// Decoding every file first means nothing is copied if any file is malformed.
	classifier := schwabctlclassify.NewClassifier(schwabctlclassify.WithSymbolRenames(config.SymbolRenames))
	if _, err := schwabctlfeed.Load(ctx, filePaths, classifier); err != nil {
		return err
	}
	transactionsDirPath := schwabctlpath.TransactionsDirPath(config.DirPath)
	if err := os.MkdirAll(transactionsDirPath, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	logger := container.Logger()
	for _, filePath := range filePaths {
		targetFilePath := filepath.Join(transactionsDirPath, filepath.Base(filePath))
		if !flags.Force {
			exists, err := xos.FileExists(targetFilePath)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%s already exists, use --%s to overwrite", targetFilePath, forceFlagName)
			}
		}
		if err := copyFile(filePath, targetFilePath); err != nil {
			return err
		}
		logger.Info("imported feed file", "path", targetFilePath)
	}
	return nil
}

func copyFile(fromFilePath string, toFilePath string) (retErr error) {
	data, err := os.ReadFile(fromFilePath)
	if err != nil {
		return err
	}
	file, err := os.Create(toFilePath)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, file.Close())
	}()
	_, err = file.Write(data)
	return err
}
