// SPDX-License-Identifier: MPL-2.0

// Package manifest holds the parsed manifest document of an extension.
//
// A Manifest is read-only. Accessors take dotted paths and return an ok flag
// that is false both when the key is absent and when it holds a value of a
// different type, so callers can report the exact manifest error they need.
// Edits (With, WithRaw, Without) return modified copies.
package manifest
