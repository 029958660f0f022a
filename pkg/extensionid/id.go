// SPDX-License-Identifier: MPL-2.0

// Package extensionid derives and validates extension identifiers.
//
// An identifier is the first 16 bytes of the SHA-256 digest of an
// extension's public key (or of its install path when it has no key),
// hex-encoded and shifted into the alphabet a-p so that it never looks
// like a number or a hostname label with digits.
package extensionid

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// Length is the number of characters in a valid identifier.
	Length = 32

	// idBytes is the number of digest bytes kept.
	idBytes = Length / 2
)

// ErrInvalidID is the sentinel error wrapped by InvalidIDError.
var ErrInvalidID = errors.New("invalid extension id")

type (
	// ID is a 32 character extension identifier in the alphabet a-p.
	ID string

	// InvalidIDError is returned when an ID fails validation.
	InvalidIDError struct {
		Value ID
	}
)

// String returns the string representation of the ID.
func (id ID) String() string { return string(id) }

// IsValid returns whether the ID is well-formed.
func (id ID) IsValid() (bool, []error) {
	if !IsValid(string(id)) {
		return false, []error{&InvalidIDError{Value: id}}
	}
	return true, nil
}

// Validate returns an InvalidIDError when the ID is malformed.
func (id ID) Validate() error {
	if ok, errs := id.IsValid(); !ok {
		return errs[0]
	}
	return nil
}

// Error implements the error interface for InvalidIDError.
func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid extension id %q: must be %d characters in [a-p]", e.Value, Length)
}

// Unwrap returns ErrInvalidID for errors.Is() compatibility.
func (e *InvalidIDError) Unwrap() error { return ErrInvalidID }

// Generate hashes input into an identifier.
func Generate(input []byte) ID {
	sum := sha256.Sum256(input)
	hexed := hex.EncodeToString(sum[:idBytes])
	return ID(convertHexToAlphabet(hexed))
}

// GenerateForPath derives the identifier used for unpacked extensions that
// carry no key. The path is cleaned, made absolute when possible and
// normalized to NFC so that decomposed file-system names hash identically.
func GenerateForPath(path string) ID {
	return Generate([]byte(NormalizePath(path)))
}

// NormalizePath returns the byte form of path hashed by GenerateForPath.
func NormalizePath(path string) string {
	cleaned := filepath.Clean(path)
	if abs, err := filepath.Abs(cleaned); err == nil {
		cleaned = abs
	}
	if runtime.GOOS == "windows" && len(cleaned) >= 2 && cleaned[1] == ':' {
		cleaned = strings.ToUpper(cleaned[:1]) + cleaned[1:]
	}
	return norm.NFC.String(cleaned)
}

// IsValid reports whether s is a well-formed identifier. Upper-case input is
// accepted.
func IsValid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, c := range strings.ToLower(s) {
		if c < 'a' || c > 'p' {
			return false
		}
	}
	return true
}

// convertHexToAlphabet maps each hex digit 0-9a-f to a-p.
func convertHexToAlphabet(hexed string) string {
	var b strings.Builder
	b.Grow(len(hexed))
	for _, c := range strings.ToLower(hexed) {
		switch {
		case c >= '0' && c <= '9':
			b.WriteRune('a' + (c - '0'))
		case c >= 'a' && c <= 'f':
			b.WriteRune('a' + (c - 'a' + 10))
		default:
			b.WriteRune('a')
		}
	}
	return b.String()
}
