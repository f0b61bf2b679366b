package selfupdate

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"pinstrap/internal/cache"
	"pinstrap/internal/config"
)

// releaseServer serves a manifest and the platform binary for it.
func releaseServer(t *testing.T, manifestVersion string, binary []byte) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	binaryName := "pinstrap-" + cache.PlatformTag()
	checksum := sha512.Sum512(binary)

	manifest := &Description{
		VersionNumber: manifestVersion,
		Files: map[string]string{
			binaryName: base64.StdEncoding.EncodeToString(checksum[:]),
		},
	}

	manifestBytes, err := yaml.Marshal(manifest)
	require.NoError(t, err)

	var requests atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/"+ManifestFilename, func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write(manifestBytes)
	})
	mux.HandleFunc("/"+binaryName, func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		_, _ = w.Write(binary)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server, &requests
}

// writeUpdateConfig points artifact_base_url at the release server.
func writeUpdateConfig(t *testing.T, serverURL string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path,
		[]byte("artifact_base_url = "+serverURL+"\n"), 0o600))

	return path
}

// TestRun_AppliesNewerVersion replaces the target binary when the manifest
// advertises a newer release.
func TestRun_AppliesNewerVersion(t *testing.T) {
	newBinary := []byte("new launcher binary contents")
	server, requests := releaseServer(t, "99.0.0", newBinary)

	target := filepath.Join(t.TempDir(), "pinstrap")
	require.NoError(t, os.WriteFile(target, []byte("old binary"), 0o755))

	err := Run(context.Background(), &Options{
		ConfigPath: writeUpdateConfig(t, server.URL),
		Target:     target,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, newBinary, got)

	// Manifest plus binary.
	require.EqualValues(t, 2, requests.Load())
	require.NoFileExists(t, target+".old")
}

// TestRun_UpToDate performs no download when the manifest version is not newer.
func TestRun_UpToDate(t *testing.T) {
	server, requests := releaseServer(t, "0.0.1", []byte("irrelevant"))

	target := filepath.Join(t.TempDir(), "pinstrap")
	require.NoError(t, os.WriteFile(target, []byte("current binary"), 0o755))

	err := Run(context.Background(), &Options{
		ConfigPath: writeUpdateConfig(t, server.URL),
		Target:     target,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, []byte("current binary"), got)
	require.EqualValues(t, 1, requests.Load())
}

// TestRun_ChecksumMismatch refuses a binary that does not match the manifest.
func TestRun_ChecksumMismatch(t *testing.T) {
	binaryName := "pinstrap-" + cache.PlatformTag()
	checksum := sha512.Sum512([]byte("expected contents"))

	manifest := &Description{
		VersionNumber: "99.0.0",
		Files: map[string]string{
			binaryName: base64.StdEncoding.EncodeToString(checksum[:]),
		},
	}

	manifestBytes, err := yaml.Marshal(manifest)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/"+ManifestFilename, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(manifestBytes)
	})
	mux.HandleFunc("/"+binaryName, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("tampered contents"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	target := filepath.Join(t.TempDir(), "pinstrap")
	require.NoError(t, os.WriteFile(target, []byte("current binary"), 0o755))

	err = Run(context.Background(), &Options{
		ConfigPath: writeUpdateConfig(t, server.URL),
		Target:     target,
	})
	require.Error(t, err)

	// The target survives a failed update.
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, []byte("current binary"), got)
}

// TestGetFileChecksum verifies the hash helper against a known digest.
func TestGetFileChecksum(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("contents"), 0o644))

	sum, err := GetFileChecksum(path)
	require.NoError(t, err)

	expected := sha512.Sum512([]byte("contents"))
	require.Equal(t, expected[:], sum)
}
