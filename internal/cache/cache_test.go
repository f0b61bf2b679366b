package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLocate verifies pattern substitution and cache layout.
func TestLocate(t *testing.T) {
	t.Parallel()

	key := Key{Component: "widget", Version: "1.2.3", Platform: "linux-amd64"}

	path := Locate("/var/cache/pinstrap", key, "%(component)s-%(version)s-%(platform)s")
	require.Equal(t,
		filepath.Join("/var/cache/pinstrap", ArtifactsDirname, "widget-1.2.3-linux-amd64"),
		path)

	// Operators can rename artifacts by changing the pattern alone.
	path = Locate("/var/cache/pinstrap", key, "%(component)s.%(version)s.bin")
	require.Equal(t,
		filepath.Join("/var/cache/pinstrap", ArtifactsDirname, "widget.1.2.3.bin"),
		path)
}

// TestLocateTool verifies the auxiliary archive layout.
func TestLocateTool(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		filepath.Join("/root", ToolsDirname, "tools.zip"),
		LocateTool("/root", "tools.zip"))
}

// TestExists distinguishes absent, empty, directory, and real entries.
func TestExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	require.False(t, Exists(filepath.Join(dir, "absent")))

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	require.False(t, Exists(empty))

	require.False(t, Exists(dir))

	full := filepath.Join(dir, "full")
	require.NoError(t, os.WriteFile(full, []byte("payload"), 0o644))
	require.True(t, Exists(full))
}

// TestPlatformTag sanity-checks the tag shape.
func TestPlatformTag(t *testing.T) {
	t.Parallel()

	require.Contains(t, PlatformTag(), "-")
}
