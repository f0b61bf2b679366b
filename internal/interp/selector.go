package interp

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrRuntimeUnavailable indicates a requested or preferred runtime
	// executable could not be discovered on the search path.
	ErrRuntimeUnavailable = errors.New("requested runtime unavailable")

	// ErrUnsupportedRuntime indicates the effective version is outside
	// every acceptable band.
	ErrUnsupportedRuntime = errors.New("unsupported runtime version")
)

// ActionKind enumerates the selector decisions.
type ActionKind int

const (
	// Continue means the current runtime is acceptable as-is.
	Continue ActionKind = iota
	// ReExec means the process must be replaced under another runtime.
	ReExec
)

// Action is the committed decision of one selection pass. The selector is
// side-effect free: it never fetches or launches anything itself.
type Action struct {
	// Kind is Continue or ReExec.
	Kind ActionKind
	// Executable is the discovered runtime path when Kind is ReExec.
	Executable string
	// Version is the effective runtime version after the decision.
	Version Version
}

// Selector decides whether the launcher may continue under the current
// runtime or must re-exec under a different one.
type Selector struct {
	// RuntimeName is the base executable name, e.g. "python".
	RuntimeName string
	// Bands is the acceptability table, most preferred first.
	Bands []Band
	// SearchPath overrides the process search path; empty means $PATH.
	SearchPath string
}

// NewSelector returns a selector over the default band table.
func NewSelector(runtimeName string) *Selector {
	return &Selector{
		RuntimeName: runtimeName,
		Bands:       DefaultBands,
	}
}

// Select applies the selection algorithm to the current runtime version and
// an optional "major.minor" override:
//
//  1. A malformed override is a configuration error.
//  2. An override differing from current re-execs to its executable when
//     discoverable, otherwise fails as unavailable.
//  3. Without an override, a more-preferred minor of the current major
//     re-execs when its executable is discoverable.
//  4. An effective version outside every band is unsupported.
//
// No side effects happen before the decision is committed, so nothing is
// fetched or cached under a runtime that may still change.
func (s *Selector) Select(current Version, override string) (Action, error) {
	if override != "" {
		return s.selectOverridden(current, override)
	}

	effective := current

	if band, ok := bandFor(s.Bands, current.Major); ok {
		if upgrade, found := s.preferredUpgrade(band, current); found {
			return upgrade, nil
		}
	}

	if !s.acceptable(effective) {
		return Action{}, fmt.Errorf("%w: %s", ErrUnsupportedRuntime, effective)
	}

	return Action{Kind: Continue, Version: effective}, nil
}

// selectOverridden handles the explicit override branch.
func (s *Selector) selectOverridden(current Version, override string) (Action, error) {
	requested, err := ParseVersion(override)
	if err != nil {
		return Action{}, err
	}

	if requested != current {
		executable, found := s.findExecutable(s.RuntimeName + requested.String())
		if !found {
			return Action{}, fmt.Errorf("%w: %s%s", ErrRuntimeUnavailable, s.RuntimeName, requested)
		}

		return Action{Kind: ReExec, Executable: executable, Version: requested}, nil
	}

	// The override pins the current version; only acceptability remains.
	if !s.acceptable(current) {
		return Action{}, fmt.Errorf("%w: %s", ErrUnsupportedRuntime, current)
	}

	return Action{Kind: Continue, Version: current}, nil
}

// preferredUpgrade looks for a discoverable executable of a minor listed
// ahead of the current one within its band.
func (s *Selector) preferredUpgrade(band Band, current Version) (Action, bool) {
	for _, minor := range band.Minors {
		if minor == current.Minor {
			break
		}

		candidate := Version{Major: band.Major, Minor: minor}

		executable, found := s.findExecutable(s.RuntimeName + candidate.String())
		if found {
			return Action{Kind: ReExec, Executable: executable, Version: candidate}, true
		}
	}

	return Action{}, false
}

// acceptable reports whether the version falls inside any band.
func (s *Selector) acceptable(v Version) bool {
	band, ok := bandFor(s.Bands, v.Major)

	return ok && band.contains(v.Minor)
}

// searchPath returns the configured search path or the process $PATH.
func (s *Selector) searchPath() string {
	if s.SearchPath != "" {
		return s.SearchPath
	}

	return os.Getenv("PATH")
}
