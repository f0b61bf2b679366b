package selfupdate

import (
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Ensure SHA512 is available for checksum verification.
	_ "crypto/sha512"
)

var errHashUnavailable = errors.New("hash function unavailable")

const (
	// ManifestFilename is the release description published next to the
	// launcher binaries in the artifact repository.
	ManifestFilename = "pinstrap-version.yaml"

	// DefaultFileMode is applied to the replaced launcher binary.
	DefaultFileMode os.FileMode = 0o755

	// DefaultChecksumFunction hashes release files.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512
)

// Description contains metadata about a published launcher release.
type Description struct {
	// VersionNumber is the semantic version of this release.
	VersionNumber string `yaml:"version"`
	// Files maps platform-tagged binary names to base64-encoded checksums.
	Files map[string]string `yaml:"files"`
}

// GetFileChecksum returns checksum bytes for a file using DefaultChecksumFunction.
func GetFileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}
