// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides the CUE plumbing shared by the configuration
// loader and the manifest linter.
//
// Both consumers follow the same flow:
//
//  1. Compile the embedded schema
//  2. Compile the user document (CUE or JSON) and unify it with the schema
//  3. Validate, then either decode or report the individual violations
//
// # Usage
//
//	//go:embed manifest_schema.cue
//	var schemaBytes []byte
//
//	violations, err := cueutil.Check(
//	    schemaBytes,
//	    manifestJSON,
//	    "#Manifest",
//	    cueutil.WithFilename("manifest.json"),
//	)
package cueutil
