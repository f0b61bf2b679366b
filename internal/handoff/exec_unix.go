//go:build unix

package handoff

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// checkExecutable verifies the executable permission bits.
func checkExecutable(mode os.FileMode) error {
	if mode.Perm()&0o111 == 0 {
		return errors.New("permission bits deny execution")
	}

	return nil
}

// replace performs the actual process-image replacement.
// It only returns on failure.
func replace(path string, argv, env []string) error {
	return unix.Exec(path, argv, env)
}
