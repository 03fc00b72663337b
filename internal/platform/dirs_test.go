package platform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultModelDirForLinuxWithXDG(t *testing.T) {
	t.Parallel()

	dir, err := DefaultModelDirFor("linux", "/home/dev", "/tmp/xdg-data")
	require.NoError(t, err)
	require.Equal(t, "/tmp/xdg-data/vidscribe/models", dir)
}

func TestDefaultModelDirForLinuxWithoutXDG(t *testing.T) {
	t.Parallel()

	dir, err := DefaultModelDirFor("linux", "/home/dev", "")
	require.NoError(t, err)
	require.Equal(t, "/home/dev/.local/share/vidscribe/models", dir)
}

func TestDefaultModelDirForMacOS(t *testing.T) {
	t.Parallel()

	dir, err := DefaultModelDirFor("darwin", "/Users/dev", "")
	require.NoError(t, err)
	require.Equal(t, "/Users/dev/Library/Application Support/vidscribe/models", dir)
}

func TestDefaultModelDirForUnsupportedOS(t *testing.T) {
	t.Parallel()

	_, err := DefaultModelDirFor("plan9", "/home/dev", "")
	require.Error(t, err)
}

func TestDefaultConfigPathForLinuxWithXDG(t *testing.T) {
	t.Parallel()

	path, err := DefaultConfigPathFor("linux", "/home/dev", "/tmp/xdg-config")
	require.NoError(t, err)
	require.Equal(t, "/tmp/xdg-config/vidscribe/config.toml", path)
}

func TestDefaultConfigPathForLinuxWithoutXDG(t *testing.T) {
	t.Parallel()

	path, err := DefaultConfigPathFor("linux", "/home/dev", "")
	require.NoError(t, err)
	require.Equal(t, "/home/dev/.config/vidscribe/config.toml", path)
}

func TestDefaultConfigPathForMacOS(t *testing.T) {
	t.Parallel()

	path, err := DefaultConfigPathFor("darwin", "/Users/dev", "")
	require.NoError(t, err)
	require.Equal(t, "/Users/dev/Library/Application Support/vidscribe/config.toml", path)
}

func TestDefaultConfigPathForEmptyHome(t *testing.T) {
	t.Parallel()

	_, err := DefaultConfigPathFor("linux", "", "")
	require.Error(t, err)
}
