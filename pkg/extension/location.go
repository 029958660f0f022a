// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"errors"
	"fmt"
	"strings"
)

// Install locations.
const (
	LocationInvalid Location = iota
	LocationInternal
	LocationExternalPref
	LocationExternalRegistry
	LocationLoad
	LocationComponent
	LocationExternalPrefDownload
	LocationExternalPolicyDownload
)

// InvalidRank is the rank of LocationInvalid and of unknown values.
const InvalidRank = -1

// ErrInvalidLocation is the sentinel error wrapped by InvalidLocationError.
var ErrInvalidLocation = errors.New("invalid location")

var locationNames = map[Location]string{
	LocationInvalid:                "invalid",
	LocationInternal:               "internal",
	LocationExternalPref:           "external_pref",
	LocationExternalRegistry:       "external_registry",
	LocationLoad:                   "load",
	LocationComponent:              "component",
	LocationExternalPrefDownload:   "external_pref_download",
	LocationExternalPolicyDownload: "external_policy_download",
}

type (
	// Location is the install source of an extension.
	Location int

	// InvalidLocationError is returned when a location name is unknown.
	InvalidLocationError struct {
		Value string
	}
)

// Error implements the error interface.
func (e *InvalidLocationError) Error() string {
	return fmt.Sprintf("invalid location %q (valid: %s)", e.Value, strings.Join(LocationNames(), ", "))
}

// Unwrap returns ErrInvalidLocation for errors.Is() compatibility.
func (e *InvalidLocationError) Unwrap() error { return ErrInvalidLocation }

// LocationNames returns the names of the valid locations in rank order,
// highest first.
func LocationNames() []string {
	return []string{
		LocationComponent.String(),
		LocationExternalPolicyDownload.String(),
		LocationLoad.String(),
		LocationExternalRegistry.String(),
		LocationExternalPref.String(),
		LocationExternalPrefDownload.String(),
		LocationInternal.String(),
	}
}

// ParseLocation maps a snake-case name ("component", "external_pref") to
// a Location. Matching is case-insensitive and accepts dashes.
func ParseLocation(s string) (Location, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for l, name := range locationNames {
		if l != LocationInvalid && name == norm {
			return l, nil
		}
	}
	return LocationInvalid, &InvalidLocationError{Value: s}
}

// String returns the snake-case name of the location.
func (l Location) String() string {
	if name, ok := locationNames[l]; ok {
		return name
	}
	return fmt.Sprintf("location(%d)", int(l))
}

// IsValid reports whether l names a real install source.
func (l Location) IsValid() bool { return LocationRank(l) != InvalidRank }

// IsExternal reports whether the extension was installed by an external
// provider rather than the user or the browser itself.
func (l Location) IsExternal() bool {
	switch l {
	case LocationExternalPref, LocationExternalRegistry,
		LocationExternalPrefDownload, LocationExternalPolicyDownload:
		return true
	default:
		return false
	}
}

// IsAutoUpdateable reports whether extensions from l take part in updates.
func (l Location) IsAutoUpdateable() bool {
	return l != LocationComponent && l != LocationLoad
}

// UserMayDisable reports whether the user can turn such an extension off.
func (l Location) UserMayDisable() bool {
	return l != LocationExternalPolicyDownload && l != LocationComponent
}

// ShouldDoStrictErrorChecking reports whether manifests from l are held to
// the strict parser.
func (l Location) ShouldDoStrictErrorChecking() bool {
	return l == LocationLoad || l == LocationComponent
}

// ShouldAlwaysAllowFileAccess reports whether file:// access is granted
// without asking, which is the case for unpacked developer installs.
func (l Location) ShouldAlwaysAllowFileAccess() bool { return l == LocationLoad }

// LocationRank orders install sources when the same extension is installed
// twice. Higher wins. Every valid location has a distinct rank.
func LocationRank(l Location) int {
	switch l {
	case LocationComponent:
		// Nothing overrides the browser's own extensions.
		return 6
	case LocationExternalPolicyDownload:
		return 5
	case LocationLoad:
		// Unpacked builds override anything the user could disable.
		return 4
	case LocationExternalRegistry:
		return 3
	case LocationExternalPref:
		return 2
	case LocationExternalPrefDownload:
		return 1
	case LocationInternal:
		return 0
	default:
		return InvalidRank
	}
}

// HigherPriorityLocation returns whichever of a and b has the higher rank.
// It panics on an invalid location and when two distinct locations share a
// rank.
func HigherPriorityLocation(a, b Location) Location {
	if a == b {
		return a
	}
	ra, rb := LocationRank(a), LocationRank(b)
	if ra == InvalidRank || rb == InvalidRank {
		panic(fmt.Sprintf("extension: cannot rank locations %s and %s", a, b))
	}
	if ra == rb {
		panic(fmt.Sprintf("extension: locations %s and %s share rank %d", a, b, ra))
	}
	if ra > rb {
		return a
	}
	return b
}
