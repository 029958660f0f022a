// SPDX-License-Identifier: MPL-2.0

// Package extension builds a validated Extension from a manifest.
//
// New walks the manifest once, in a fixed order: manifest version, identity,
// core fields, theme or app type flags, app features, permissions, the
// remaining feature sections and finally cross-section checks. The first
// problem stops construction with a *LoadError carrying the same English
// message a browser would show.
//
// Apart from the active permission set and the decoded image cache, an
// Extension never changes after New returns. Both mutable parts sit behind
// one lock, so an Extension may be shared between goroutines.
package extension
