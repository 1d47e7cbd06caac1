// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package schwabctlconfig provides configuration parsing and validation for schwabctl.
//
// Configuration is stored as schwabctl.yaml in the base directory given by --dir.
package schwabctlconfig

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"sort"
	"time"
	// Embedded so configured timezones resolve on hosts without zoneinfo.
	_ "time/tzdata"

	"github.com/bufdev/schwabctl/internal/pkg/mathdec"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlclassify"
	"github.com/bufdev/schwabctl/internal/schwabctl/schwabctlpath"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultTimezone is the timezone used for row times and calendar periods when none is configured.
const DefaultTimezone = "America/New_York"

// configTemplate is the default configuration file template with comments.
// yaml.v3 does not preserve comments, so we hardcode the template string.
const configTemplate = `# The configuration file version.
#
# Required. The only current valid version is v1.
version: v1
# The IANA timezone used for row times and for day, week, month, and year boundaries.
#
# Optional. Defaults to America/New_York.
timezone: America/New_York
# Historical ticker renames applied to every transaction.
#
# Optional. Defaults to FB -> META when omitted. Set to [] to disable renaming.
# symbol_renames:
#   - from: FB
#     to: META
# Verification of computed positions and balances against data/account.json.
verification:
  # The largest difference in allocated cost or balances that is not reported.
  #
  # Optional. Defaults to "0".
  tolerance: "0"
`

// ExternalConfig is the YAML-serializable configuration file structure.
type ExternalConfig struct {
	// Version is the configuration file version (must be "v1").
	Version string `yaml:"version"`
	// Timezone is the IANA timezone name.
	Timezone string `yaml:"timezone"`
	// SymbolRenames is the optional list of ticker renames.
	SymbolRenames []ExternalSymbolRenameConfig `yaml:"symbol_renames"`
	// Verification holds the verification configuration.
	Verification ExternalVerificationConfig `yaml:"verification"`
}

// ExternalSymbolRenameConfig is a ticker rename.
type ExternalSymbolRenameConfig struct {
	// From is the historical ticker.
	From string `yaml:"from"`
	// To is the current ticker.
	To string `yaml:"to"`
}

// ExternalVerificationConfig holds verification configuration.
type ExternalVerificationConfig struct {
	// Tolerance is a decimal string.
	Tolerance string `yaml:"tolerance"`
}

// Config is the validated runtime configuration derived from the config file.
type Config struct {
	// DirPath is the base directory containing schwabctl.yaml and data.
	DirPath string
	// Location is the location of row times and calendar periods.
	Location *time.Location
	// SymbolRenames maps historical tickers to current tickers.
	SymbolRenames map[string]string
	// VerificationTolerance is the largest unreported difference in allocated cost or balances.
	VerificationTolerance decimal.Decimal
}

// NewConfig validates an ExternalConfig and returns a runtime Config.
func NewConfig(dirPath string, externalConfig ExternalConfig) (*Config, error) {
	if externalConfig.Version != "v1" {
		return nil, fmt.Errorf("unsupported config version %q, must be v1", externalConfig.Version)
	}
	timezone := externalConfig.Timezone
	if timezone == "" {
		timezone = DefaultTimezone
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	symbolRenames, err := newSymbolRenames(externalConfig.SymbolRenames)
	if err != nil {
		return nil, err
	}
	tolerance, err := mathdec.NewDecimal(externalConfig.Verification.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("invalid verification.tolerance %q: %w", externalConfig.Verification.Tolerance, err)
	}
	if tolerance.IsNegative() {
		return nil, fmt.Errorf("verification.tolerance must not be negative, got %s", mathdec.ToString(tolerance))
	}
	return &Config{
		DirPath:               dirPath,
		Location:              location,
		SymbolRenames:         symbolRenames,
		VerificationTolerance: tolerance,
	}, nil
}

// ReadConfig reads and validates the configuration file from the given base directory.
// Returns a clear error message directing users to run "schwabctl config init" if the file is missing.
func ReadConfig(dirPath string) (*Config, error) {
	filePath := schwabctlpath.ConfigFilePath(dirPath)
	externalConfig, err := readExternalConfig(filePath)
	if err != nil {
		return nil, err
	}
	return NewConfig(dirPath, externalConfig)
}

// InitConfig creates a new configuration file with a documented template in the base directory.
// Creates the directory if it does not exist.
// Returns an error if the file already exists.
func InitConfig(dirPath string) error {
	filePath := schwabctlpath.ConfigFilePath(dirPath)
	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", filePath)
	}
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(filePath, []byte(configTemplate), 0o644)
}

// ValidateConfigFile reads and validates the configuration file at the given path.
func ValidateConfigFile(filePath string) error {
	externalConfig, err := readExternalConfig(filePath)
	if err != nil {
		return err
	}
	_, err = NewConfig("", externalConfig)
	return err
}

// *** PRIVATE ***

func readExternalConfig(filePath string) (ExternalConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ExternalConfig{}, fmt.Errorf("configuration file not found at %s, run \"schwabctl config init\" to create one", filePath)
		}
		return ExternalConfig{}, fmt.Errorf("reading config file: %w", err)
	}
	var externalConfig ExternalConfig
	if err := unmarshalYAMLStrict(data, &externalConfig); err != nil {
		return ExternalConfig{}, fmt.Errorf("parsing config file %s: %w", filePath, err)
	}
	return externalConfig, nil
}

// newSymbolRenames validates the renames. A nil list yields the default renames.
func newSymbolRenames(externalSymbolRenames []ExternalSymbolRenameConfig) (map[string]string, error) {
	if externalSymbolRenames == nil {
		return maps.Clone(schwabctlclassify.DefaultSymbolRenames), nil
	}
	symbolRenames := make(map[string]string, len(externalSymbolRenames))
	for _, rename := range externalSymbolRenames {
		if rename.From == "" || rename.To == "" {
			return nil, errors.New("symbol_renames entries require both from and to")
		}
		if rename.From == rename.To {
			return nil, fmt.Errorf("symbol rename %q maps to itself", rename.From)
		}
		if _, ok := symbolRenames[rename.From]; ok {
			return nil, fmt.Errorf("duplicate symbol rename %q", rename.From)
		}
		symbolRenames[rename.From] = rename.To
	}
	// A rename target must not itself be renamed, since renames are applied once.
	froms := make([]string, 0, len(symbolRenames))
	for from := range symbolRenames {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	for _, from := range froms {
		if _, ok := symbolRenames[symbolRenames[from]]; ok {
			return nil, fmt.Errorf("symbol rename %q targets %q, which is itself renamed", from, symbolRenames[from])
		}
	}
	return symbolRenames, nil
}

// unmarshalYAMLStrict unmarshals the data as YAML with strict field checking.
// If the data length is 0, this is a no-op.
func unmarshalYAMLStrict(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	yamlDecoder := yaml.NewDecoder(bytes.NewReader(data))
	// Reject unknown fields.
	yamlDecoder.KnownFields(true)
	if err := yamlDecoder.Decode(v); err != nil {
		return fmt.Errorf("could not unmarshal as YAML: %w", err)
	}
	return nil
}
