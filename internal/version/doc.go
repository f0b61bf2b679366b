// Package version exposes build metadata injected via ldflags and a cobra
// subcommand that prints it. The self-update service compares Short()
// against the remote release manifest to decide whether an update applies.
package version
