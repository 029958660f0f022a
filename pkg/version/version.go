// SPDX-License-Identifier: MPL-2.0

// Package version parses the dotted-integer versions used by extension
// manifests ("1", "1.2", "1.2.3.4").
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// MaxComponents is the largest number of dot-separated components.
	MaxComponents = 4
	// MaxComponentValue bounds each component.
	MaxComponentValue = 65535
)

// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
var ErrInvalidVersion = errors.New("invalid version")

type (
	// Version is a parsed dotted-integer version.
	Version struct {
		components []uint32
	}

	// InvalidVersionError is returned when a version string cannot be parsed.
	InvalidVersionError struct {
		Value  string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidVersion for errors.Is() compatibility.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// Parse reads between one and four dot-separated non-negative integers.
// Signs, empty components and values above MaxComponentValue are rejected.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, &InvalidVersionError{Value: s, Reason: "empty"}
	}
	parts := strings.Split(s, ".")
	if len(parts) > MaxComponents {
		return Version{}, &InvalidVersionError{Value: s, Reason: fmt.Sprintf("more than %d components", MaxComponents)}
	}

	components := make([]uint32, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return Version{}, &InvalidVersionError{Value: s, Reason: "empty component"}
		}
		for _, c := range part {
			if c < '0' || c > '9' {
				return Version{}, &InvalidVersionError{Value: s, Reason: fmt.Sprintf("non-digit in component %q", part)}
			}
		}
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil || n > MaxComponentValue {
			return Version{}, &InvalidVersionError{Value: s, Reason: fmt.Sprintf("component %q out of range", part)}
		}
		components = append(components, uint32(n))
	}
	return Version{components: components}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsValid reports whether the version holds at least one component.
func (v Version) IsValid() bool { return len(v.components) > 0 }

// Components returns a copy of the numeric components.
func (v Version) Components() []uint32 {
	out := make([]uint32, len(v.components))
	copy(out, v.components)
	return out
}

// Compare returns -1, 0 or 1. Missing trailing components count as zero.
func (v Version) Compare(other Version) int {
	n := max(len(v.components), len(other.components))
	for i := range n {
		a, b := component(v, i), component(other, i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// String joins the components with dots.
func (v Version) String() string {
	parts := make([]string, len(v.components))
	for i, c := range v.components {
		parts[i] = strconv.FormatUint(uint64(c), 10)
	}
	return strings.Join(parts, ".")
}

func component(v Version, i int) uint32 {
	if i < len(v.components) {
		return v.components[i]
	}
	return 0
}
