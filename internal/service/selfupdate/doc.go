// Package selfupdate replaces the launcher binary with the version
// published in the artifact repository's release manifest. Unlike the
// artifact launch path, the self-update path verifies a SHA-512 checksum
// before swapping binaries.
package selfupdate
