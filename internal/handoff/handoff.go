package handoff

import (
	"errors"
	"fmt"
	"os"
)

// LaunchError reports a target that cannot be handed off to: missing,
// not a regular file, or not executable. It is fatal; there is no
// fallback target.
type LaunchError struct {
	// Path is the executable that failed preflight or exec.
	Path string
	// Err is the underlying cause.
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Exec replaces the current process image with the target executable,
// forwarding argv as the complete argument vector (argv[0] included) and
// inheriting the environment. On success it never returns, so all cleanup
// must have completed before the call. On failure it returns a LaunchError.
func Exec(path string, argv []string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &LaunchError{Path: path, Err: err}
	}

	if !info.Mode().IsRegular() {
		return &LaunchError{Path: path, Err: errors.New("not a regular file")}
	}

	if err = checkExecutable(info.Mode()); err != nil {
		return &LaunchError{Path: path, Err: err}
	}

	if err = replace(path, argv, os.Environ()); err != nil {
		return &LaunchError{Path: path, Err: err}
	}

	// Unreachable on platforms with true exec; the windows shim exits.
	return nil
}
