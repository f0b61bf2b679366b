// Package launcher orchestrates the bootstrap sequence: commit to a
// runtime (possibly re-executing under a different interpreter), load the
// configuration, fetch and extract the auxiliary tool archive, fetch the
// version-pinned artifact, and hand the process over to it.
package launcher
