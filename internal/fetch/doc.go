// Package fetch downloads remote artifacts with an install-once, atomic
// write-then-rename protocol. A destination that already exists is never
// re-fetched; a transfer that does not deliver exactly the declared number
// of bytes installs nothing.
package fetch
