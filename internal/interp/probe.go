package interp

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"time"
)

// errNoVersionInOutput indicates the interpreter printed nothing parseable.
var errNoVersionInOutput = errors.New("no version found in interpreter output")

// probeTimeout bounds the interpreter version query.
const probeTimeout = 10 * time.Second

// versionPattern matches the first major.minor pair in --version output,
// e.g. "Python 2.7.18" or "Python 3.11.4".
var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)`)

// DetectCurrent resolves the runtime executable on the search path and asks
// it for its version. Legacy interpreters print the version banner to
// stderr, so both streams are read.
func (s *Selector) DetectCurrent(ctx context.Context) (Version, error) {
	executable, found := s.findExecutable(s.RuntimeName)
	if !found {
		return Version{}, fmt.Errorf("%w: %s", ErrRuntimeUnavailable, s.RuntimeName)
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	output, err := exec.CommandContext(probeCtx, executable, "--version").CombinedOutput()
	if err != nil {
		return Version{}, fmt.Errorf("probe %s: %w", executable, err)
	}

	return parseProbeOutput(string(output))
}

// parseProbeOutput extracts the major.minor version from a banner line.
func parseProbeOutput(output string) (Version, error) {
	match := versionPattern.FindStringSubmatch(output)
	if match == nil {
		return Version{}, fmt.Errorf("%w: %q", errNoVersionInOutput, output)
	}

	return ParseVersion(match[1] + "." + match[2])
}
