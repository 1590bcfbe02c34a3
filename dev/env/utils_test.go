package devenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	path, err := ResolvePath("results.db")
	require.NoError(t, err)
	require.Equal(t, "results.db", path)

	root, err := GetWorkspaceRoot()
	require.NoError(t, err)

	path, err = ResolvePath("<dev_state>/trending.db")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "dev", ".state", "trending.db"), path)

	info, err := os.Stat(filepath.Join(root, "dev", ".state"))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
