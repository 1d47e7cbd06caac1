// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package datazip implements the "data zip" command.
package datazip

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/schwabctl/cmd/schwabctl/internal/schwabctlcmd"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlpath"
	"github.com/spf13/pflag"
)

// outputFlagName is the flag name for the output zip file path.
const outputFlagName = "output"

// NewCommand returns a new data zip command that archives the configuration and data.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Archive schwabctl.yaml and the data directory to a zip file",
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
	// Output is the path to the output zip file.
	Output string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	schwabctlcmd.BindDirFlag(flagSet, &f.Dir)
	flagSet.StringVarP(&f.Output, outputFlagName, "o", "", "Output zip file path (required)")
}

func run(_ context.Context, container appext.Container, flags *flags) error {
	if flags.Output == "" {
		return appcmd.NewInvalidArgumentError("--output (-o) is required")
	}
	if !strings.HasSuffix(flags.Output, ".zip") {
		return appcmd.NewInvalidArgumentError("output file must have a .zip extension")
	}
	count, err := writeZip(flags.Output, flags.Dir)
	if err != nil {
		return fmt.Errorf("creating zip archive: %w", err)
	}
	container.Logger().Info("zip archive created", "path", flags.Output, "files", count)
	return nil
}

// writeZip archives the config file and every regular file under the data directory,
// with paths relative to the base directory.
func writeZip(outputFilePath string, dirPath string) (_ int, retErr error) {
	configFilePath := schwabctlpath.ConfigFilePath(dirPath)
	if _, err := os.Stat(configFilePath); err != nil {
		return 0, err
	}
	filePaths := []string{configFilePath}
	dataDirPath := schwabctlpath.DataDirPath(dirPath)
	if err := filepath.WalkDir(dataDirPath, func(path string, dirEntry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if dirEntry.Type().IsRegular() {
			filePaths = append(filePaths, path)
		}
		return nil
	}); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, err
	}
	outputFile, err := os.Create(outputFilePath)
	if err != nil {
		return 0, err
	}
	defer func() {
		retErr = errors.Join(retErr, outputFile.Close())
	}()
	zipWriter := zip.NewWriter(outputFile)
	for _, filePath := range filePaths {
		relPath, err := filepath.Rel(dirPath, filePath)
		if err != nil {
			return 0, err
		}
		if err := addFile(zipWriter, filepath.ToSlash(relPath), filePath); err != nil {
			return 0, err
		}
	}
	if err := zipWriter.Close(); err != nil {
		return 0, err
	}
	return len(filePaths), nil
}

func addFile(zipWriter *zip.Writer, name string, filePath string) (retErr error) {
	writer, err := zipWriter.Create(name)
	if err != nil {
		return err
	}
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, file.Close())
	}()
	_, err = io.Copy(writer, file)
	return err
}
