package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

// TestLoad_MissingFile ensures a nonexistent path yields MissingFileError.
func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "absent.ini")

	_, err := Load(path, nil)
	require.Error(t, err)

	var missing *MissingFileError

	require.ErrorAs(t, err, &missing)
	require.Equal(t, path, missing.Path)
}

// TestLoad_MissingRequiredKey ensures the error names the exact file and key.
func TestLoad_MissingRequiredKey(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "runtime_version = 1.2.3\nartifact_base_url = https://example.test/artifacts\n")

	_, err := Load(path, nil)
	require.Error(t, err)

	var missing *MissingKeyError

	require.ErrorAs(t, err, &missing)
	require.Equal(t, path, missing.File)
	require.Equal(t, KeyAuxiliaryArchiveURL, missing.Key)
	require.Contains(t, err.Error(), KeyAuxiliaryArchiveURL)
	require.Contains(t, err.Error(), path)
}

// TestLoad_DefaultsSeededAndOverridden verifies file values win over defaults.
func TestLoad_DefaultsSeededAndOverridden(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
runtime_version = 1.2.3
artifact_base_url = https://example.test/artifacts
auxiliary_archive_url = https://example.test/tools.zip
component_name = widget
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	// File value overrides the default.
	require.Equal(t, "widget", cfg.Get(KeyComponentName))

	// Defaulted key is present without being in the file.
	pattern, err := cfg.RequiredRaw(KeyArtifactFilenamePattern)
	require.NoError(t, err)
	require.Equal(t, DefaultFilenamePattern, pattern)
	require.NotEmpty(t, cfg.Get(KeyCacheRoot))
}

// TestRequired_Interpolation verifies %(key)s resolution and raw suppression.
func TestRequired_Interpolation(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
runtime_version = 1.2.3
mirror = https://example.test
artifact_base_url = %(mirror)s/artifacts
auxiliary_archive_url = %(mirror)s/tools.zip
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	interpolated, err := cfg.Required(KeyArtifactBaseURL)
	require.NoError(t, err)
	require.Equal(t, "https://example.test/artifacts", interpolated)

	raw, err := cfg.RequiredRaw(KeyArtifactBaseURL)
	require.NoError(t, err)
	require.Equal(t, "%(mirror)s/artifacts", raw)
}

// TestRequired_MissingKey ensures access-time failures also name file and key.
func TestRequired_MissingKey(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "auxiliary_archive_url = https://example.test/tools.zip\n")

	cfg, err := Load(path, LocalSchema())
	require.NoError(t, err)

	_, err = cfg.Required(KeyLocalArtifact)
	require.Error(t, err)

	var missing *MissingKeyError

	require.ErrorAs(t, err, &missing)
	require.Equal(t, KeyLocalArtifact, missing.Key)
	require.Equal(t, path, missing.File)
}

// TestLocalSchema verifies the development-mode schema relaxes network keys.
func TestLocalSchema(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
auxiliary_archive_url = https://example.test/tools.zip
local_artifact = ./dist/app
`)

	cfg, err := Load(path, LocalSchema())
	require.NoError(t, err)
	require.True(t, cfg.Has(KeyLocalArtifact))
	require.False(t, cfg.Has(KeyRuntimeVersion))
}
