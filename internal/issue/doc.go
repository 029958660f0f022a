// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions for fixing it. The catalog holds longer Markdown explanations,
// rendered with glamour by 'extctl explain' and on verbose failures.
package issue
