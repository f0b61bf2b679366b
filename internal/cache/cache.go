package cache

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Subdirectories under the cache root. Auxiliary archives live apart from
// versioned artifacts so an operator can wipe either family independently.
const (
	// ArtifactsDirname holds versioned, platform-tagged artifacts.
	ArtifactsDirname = "artifacts"
	// ToolsDirname holds auxiliary tool archives and their extractions.
	ToolsDirname = "tools"
)

// Pattern placeholders substituted by Locate. They use the same %(...)s
// shape as configuration interpolation, which is why the pattern must be
// read from the configuration raw.
const (
	placeholderComponent = "%(component)s"
	placeholderVersion   = "%(version)s"
	placeholderPlatform  = "%(platform)s"
)

// Key identifies one cached artifact variant.
type Key struct {
	// Component is the logical artifact name.
	Component string
	// Version is the pinned artifact version.
	Version string
	// Platform is the OS/architecture tag.
	Platform string
}

// PlatformTag returns the tag identifying the current OS and architecture.
func PlatformTag() string {
	return runtime.GOOS + "-" + runtime.GOARCH
}

// Filename substitutes the key into the configured filename pattern.
func (k Key) Filename(pattern string) string {
	return strings.NewReplacer(
		placeholderComponent, k.Component,
		placeholderVersion, k.Version,
		placeholderPlatform, k.Platform,
	).Replace(pattern)
}

// Locate maps a key to its path under the cache root. Pure path
// construction; nothing is created or checked on disk.
func Locate(root string, key Key, pattern string) string {
	return filepath.Join(root, ArtifactsDirname, key.Filename(pattern))
}

// LocateTool maps an auxiliary archive filename to its path under the
// cache root.
func LocateTool(root, filename string) string {
	return filepath.Join(root, ToolsDirname, filename)
}

// Exists reports whether path holds a non-empty regular file. Once a cached
// artifact is present and non-empty it is authoritative: the launcher never
// re-fetches it, and invalidation is an operator deleting the cache
// directory.
func Exists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}
