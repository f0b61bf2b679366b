package interp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// errMalformedVersion indicates a version string that is not "major.minor".
var errMalformedVersion = errors.New("malformed runtime version")

// Version identifies an available or required runtime as a major.minor pair.
type Version struct {
	// Major is the runtime family, e.g. 3 for python3.
	Major int
	// Minor is the release within the family.
	Minor int
}

// String renders the version in the "major.minor" form used in executable names.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// IsZero reports whether the version carries no value.
func (v Version) IsZero() bool {
	return v.Major == 0 && v.Minor == 0
}

// ParseVersion parses a "major.minor" string into a Version.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("%w: %q", errMalformedVersion, s)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q", errMalformedVersion, s)
	}

	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q", errMalformedVersion, s)
	}

	if major < 0 || minor < 0 {
		return Version{}, fmt.Errorf("%w: %q", errMalformedVersion, s)
	}

	return Version{Major: major, Minor: minor}, nil
}

// Band lists the acceptable minors of one runtime family,
// most preferred first.
type Band struct {
	// Major is the runtime family this band covers.
	Major int
	// Minors are acceptable minor releases in preference order.
	Minors []int
}

// contains reports whether minor is acceptable within the band.
func (b Band) contains(minor int) bool {
	for _, m := range b.Minors {
		if m == minor {
			return true
		}
	}

	return false
}

// DefaultBands is the stock acceptability table, most-preferred band and
// minor first. Callers with different runtime requirements pass their own
// table to the Selector; the launcher never hard-codes version checks
// outside this data.
//
//nolint:gochecknoglobals // The band table is configuration data, not state.
var DefaultBands = []Band{
	{Major: 3, Minors: []int{11, 10, 9, 8}},
	{Major: 2, Minors: []int{7, 6}},
}

// bandFor returns the band covering major, if any.
func bandFor(bands []Band, major int) (Band, bool) {
	for _, b := range bands {
		if b.Major == major {
			return b, true
		}
	}

	return Band{}, false
}
