// SPDX-License-Identifier: MPL-2.0

// Package types holds small validated value types shared by the config
// layer and the extctl command tree.
//
// This package is a leaf dependency: it imports only the standard library.
package types
