package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// Keys recognized in the launcher configuration file.
const (
	// KeyRuntimeVersion pins the artifact version to fetch and launch.
	KeyRuntimeVersion = "runtime_version"
	// KeyArtifactBaseURL is the remote repository serving versioned artifacts.
	KeyArtifactBaseURL = "artifact_base_url"
	// KeyArtifactFilenamePattern names artifacts inside the repository and cache.
	// It is stored with raw %(...)s placeholders and must be read with RequiredRaw.
	KeyArtifactFilenamePattern = "artifact_filename_pattern"
	// KeyAuxiliaryArchiveURL is the full URL of the auxiliary tool archive.
	KeyAuxiliaryArchiveURL = "auxiliary_archive_url"
	// KeyCacheRoot overrides the local cache directory.
	KeyCacheRoot = "cache_root"
	// KeyComponentName is the logical name substituted into the filename pattern.
	KeyComponentName = "component_name"
	// KeyLocalArtifact points at a pre-built artifact used in development mode.
	KeyLocalArtifact = "local_artifact"
)

const (
	// DefaultConfigFilename is the default launcher configuration filename.
	DefaultConfigFilename = "pinstrap.ini"

	// DefaultFilenamePattern is used when the configuration does not
	// override artifact naming.
	DefaultFilenamePattern = "%(component)s-%(version)s-%(platform)s"

	// defaultCacheDirname is appended to the user cache directory.
	defaultCacheDirname = "pinstrap"
)

// MissingFileError reports a configuration file that does not exist.
type MissingFileError struct {
	// Path is the configuration file path that was requested.
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("configuration file %s does not exist", e.Path)
}

// MissingKeyError reports a required key absent after defaults were seeded.
type MissingKeyError struct {
	// File is the configuration file the key was expected in.
	File string
	// Key is the missing key name.
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s: required key %q is missing", e.File, e.Key)
}

// Schema lists required keys and defaulted keys with their default values.
// It is validated once at load time, not ad hoc at each access site.
type Schema struct {
	// Required keys must be present after defaults are seeded.
	Required []string
	// Defaults are seeded before file parsing so file values always win.
	Defaults map[string]string
}

// DefaultSchema describes the full network launch path: a pinned version,
// an artifact repository and an auxiliary archive are all mandatory.
func DefaultSchema() *Schema {
	return &Schema{
		Required: []string{
			KeyRuntimeVersion,
			KeyArtifactBaseURL,
			KeyAuxiliaryArchiveURL,
		},
		Defaults: defaultValues(),
	}
}

// LocalSchema describes the development-mode path where a pre-built local
// artifact replaces the versioned download, so only the auxiliary archive
// location is mandatory.
func LocalSchema() *Schema {
	return &Schema{
		Required: []string{KeyAuxiliaryArchiveURL},
		Defaults: defaultValues(),
	}
}

func defaultValues() map[string]string {
	cacheRoot, err := os.UserCacheDir()
	if err != nil {
		cacheRoot = "." + defaultCacheDirname
	} else {
		cacheRoot = filepath.Join(cacheRoot, defaultCacheDirname)
	}

	return map[string]string{
		KeyArtifactFilenamePattern: DefaultFilenamePattern,
		KeyCacheRoot:               cacheRoot,
		KeyComponentName:           "app",
	}
}

// Config is an immutable view over a parsed configuration file.
// All validation happens in Load; accessors only read.
type Config struct {
	path    string
	section *ini.Section
}

// Load reads the configuration file at path, seeds schema defaults, and
// verifies every required key is present. A nil schema means DefaultSchema.
func Load(path string, schema *Schema) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	if schema == nil {
		schema = DefaultSchema()
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingFileError{Path: path}
		}

		return nil, fmt.Errorf("stat configuration: %w", err)
	}

	file, err := ini.Load(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	section := file.Section(ini.DefaultSection)

	// Seed defaults only where the file did not provide a value.
	for key, value := range schema.Defaults {
		if section.HasKey(key) {
			continue
		}

		if _, err = section.NewKey(key, value); err != nil {
			return nil, fmt.Errorf("seed default %q: %w", key, err)
		}
	}

	for _, key := range schema.Required {
		if !section.HasKey(key) {
			return nil, &MissingKeyError{File: path, Key: key}
		}
	}

	return &Config{path: path, section: section}, nil
}

// Path returns the configuration file path this Config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Has reports whether the key carries a non-empty value.
func (c *Config) Has(key string) bool {
	return c.section.HasKey(key) && c.section.Key(key).Value() != ""
}

// Get returns the interpolated value of key, or "" when absent.
func (c *Config) Get(key string) string {
	if !c.section.HasKey(key) {
		return ""
	}

	return c.section.Key(key).String()
}

// Required returns the interpolated value of key and fails with a
// MissingKeyError naming the file and key when it is absent.
func (c *Config) Required(key string) (string, error) {
	if !c.section.HasKey(key) {
		return "", &MissingKeyError{File: c.path, Key: key}
	}

	return c.section.Key(key).String(), nil
}

// RequiredRaw behaves like Required but suppresses %(...)s interpolation.
// The artifact filename pattern must be read this way since its
// placeholders are substituted by the cache, not by the parser.
func (c *Config) RequiredRaw(key string) (string, error) {
	if !c.section.HasKey(key) {
		return "", &MissingKeyError{File: c.path, Key: key}
	}

	return c.section.Key(key).Value(), nil
}
