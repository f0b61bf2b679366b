package interp

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFindExecutable_FirstMatchWins checks directory order precedence.
func TestFindExecutable_FirstMatchWins(t *testing.T) {
	t.Parallel()

	first := fakeRuntimeDir(t, "python3.11")
	second := fakeRuntimeDir(t, "python3.11")
	s := &Selector{
		RuntimeName: "python",
		SearchPath:  strings.Join([]string{first, second}, string(os.PathListSeparator)),
	}

	path, found := s.findExecutable("python3.11")
	require.True(t, found)
	require.Equal(t, filepath.Join(first, "python3.11"), path)
}

// TestFindExecutable_SkipsNonExecutable checks that plain files and
// directories are passed over silently.
func TestFindExecutable_SkipsNonExecutable(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("no executable permission bits on windows")
	}

	plain := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(plain, "python3.11"), []byte("data"), 0o644))

	asDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(asDir, "python3.11"), 0o755))

	real := fakeRuntimeDir(t, "python3.11")

	s := &Selector{
		RuntimeName: "python",
		SearchPath: strings.Join(
			[]string{plain, asDir, real},
			string(os.PathListSeparator),
		),
	}

	path, found := s.findExecutable("python3.11")
	require.True(t, found)
	require.Equal(t, filepath.Join(real, "python3.11"), path)
}

// TestFindExecutable_NotFound checks the empty search result.
func TestFindExecutable_NotFound(t *testing.T) {
	t.Parallel()

	s := &Selector{RuntimeName: "python", SearchPath: t.TempDir()}

	_, found := s.findExecutable("python9.9")
	require.False(t, found)
}

// TestParseProbeOutput covers common interpreter banners.
func TestParseProbeOutput(t *testing.T) {
	t.Parallel()

	v, err := parseProbeOutput("Python 2.7.18\n")
	require.NoError(t, err)
	require.Equal(t, Version{Major: 2, Minor: 7}, v)

	v, err = parseProbeOutput("Python 3.11.4")
	require.NoError(t, err)
	require.Equal(t, Version{Major: 3, Minor: 11}, v)

	_, err = parseProbeOutput("no digits here")
	require.Error(t, err)
}
