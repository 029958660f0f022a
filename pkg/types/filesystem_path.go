// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidFilesystemPath is the sentinel error wrapped by InvalidFilesystemPathError.
var ErrInvalidFilesystemPath = errors.New("invalid filesystem path")

type (
	// FilesystemPath is a path to a manifest, extension directory, key file
	// or config file. The zero value means "not set" and is accepted by
	// Validate; whitespace-only values are not.
	FilesystemPath string

	// InvalidFilesystemPathError is returned when a FilesystemPath value is
	// whitespace-only.
	InvalidFilesystemPathError struct {
		Value FilesystemPath
	}
)

// String returns the string representation of the FilesystemPath.
func (p FilesystemPath) String() string { return string(p) }

// IsSet reports whether the path was provided.
func (p FilesystemPath) IsSet() bool { return p != "" }

// Validate returns an error if the path is non-empty but whitespace-only.
func (p FilesystemPath) Validate() error {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return &InvalidFilesystemPathError{Value: p}
	}
	return nil
}

// Clean returns the lexically cleaned path, or "" when unset.
func (p FilesystemPath) Clean() FilesystemPath {
	if p == "" {
		return ""
	}
	return FilesystemPath(filepath.Clean(string(p)))
}

// Error implements the error interface for InvalidFilesystemPathError.
func (e *InvalidFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid filesystem path %q: must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidFilesystemPath for errors.Is() compatibility.
func (e *InvalidFilesystemPathError) Unwrap() error { return ErrInvalidFilesystemPath }
