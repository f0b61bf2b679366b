//go:build windows

package handoff

import (
	"errors"
	"os"
	"os/exec"
)

// checkExecutable is a no-op: windows has no executable permission bits.
func checkExecutable(_ os.FileMode) error {
	return nil
}

// replace approximates exec on windows, which cannot replace a process
// image: the target runs as a child with inherited stdio and this process
// exits with the child's status. Observable behavior matches exec for the
// parent of the launcher.
func replace(path string, argv, _ []string) error {
	cmd := exec.Command(path, argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}

		return err
	}

	os.Exit(0)

	return nil
}
