// Package interp decides which runtime interpreter the launcher runs
// under. It parses major.minor versions, keeps the acceptability table as
// ordered data rather than code, discovers alternate-version executables
// on the search path, and commits to a single Continue or ReExec decision
// before any fetching happens.
package interp
