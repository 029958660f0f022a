// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for extctl.
//
// This package implements the Cobra command hierarchy for extctl: manifest
// inspection and validation, extension id tooling, install-location ranking,
// script access checks, configuration management and the issue catalog.
package cmd
