// Copyright 2026 Peter Edge
//
// All rights reserved.

package schwabctlpath

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	t.Parallel()
	dirPath := filepath.Join("home", "schwab")
	require.Equal(t, filepath.Join("home", "schwab", "schwabctl.yaml"), ConfigFilePath(dirPath))
	require.Equal(t, filepath.Join("home", "schwab", "data"), DataDirPath(dirPath))
	require.Equal(t, filepath.Join("home", "schwab", "data", "transactions"), TransactionsDirPath(dirPath))
	require.Equal(t, filepath.Join("home", "schwab", "data", "account.json"), AccountFilePath(dirPath))
}
