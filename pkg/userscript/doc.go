// SPDX-License-Identifier: MPL-2.0

// Package userscript describes content scripts: the pages they run on and
// the files they inject.
package userscript
