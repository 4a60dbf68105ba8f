// Package version parses and bumps MAJOR.MINOR.PATCH release versions.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed is returned when a version string is not exactly three
// dot-separated base-10 non-negative integers.
var ErrMalformed = errors.New("malformed version")

// Component indexes one part of a version.
type Component int

const (
	Major Component = iota
	Minor
	Patch
)

// String returns the lower-case component name.
func (c Component) String() string {
	switch c {
	case Unchanged:
		return "unchanged"
	case Major:
		return "major"
	case Minor:
		return "minor"
	case Patch:
		return "patch"
	default:
		return fmt.Sprintf("component(%d)", int(c))
	}
}

// Version is a three-component semantic version without pre-release or
// build metadata.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses "MAJOR.MINOR.PATCH".
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q must have 3 components", ErrMalformed, s)
	}

	var nums [3]int
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return Version{}, fmt.Errorf("%w: %q component %d is not a number", ErrMalformed, s, i)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q: %v", ErrMalformed, s, err)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParse is like Parse but panics on error. Intended for constants in tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or +1 as v is older than, equal to or newer than w.
func (v Version) Compare(w Version) int {
	for _, d := range [3]int{v.Major - w.Major, v.Minor - w.Minor, v.Patch - w.Patch} {
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
	}
	return 0
}

// Bump increments component c and zeroes every lower component.
func (v Version) Bump(c Component) Version {
	switch c {
	case Major:
		return Version{Major: v.Major + 1}
	case Minor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}

// BumpString parses s and bumps component c.
func BumpString(s string, c Component) (string, error) {
	v, err := Parse(s)
	if err != nil {
		return "", err
	}
	return v.Bump(c).String(), nil
}

// Candidate is one next-version choice.
type Candidate struct {
	Version Version
	// Bumped is the component that changed, or -1 for the unchanged version.
	Bumped Component
}

// Unchanged marks a candidate that keeps the current version.
const Unchanged Component = -1

// DefaultCandidate is the index of the patch bump in Candidates.
const DefaultCandidate = 1

// Candidates returns the next-version choices in prompt order: the
// unchanged version, then patch, minor and major bumps.
func Candidates(current Version) []Candidate {
	return []Candidate{
		{Version: current, Bumped: Unchanged},
		{Version: current.Bump(Patch), Bumped: Patch},
		{Version: current.Bump(Minor), Bumped: Minor},
		{Version: current.Bump(Major), Bumped: Major},
	}
}
