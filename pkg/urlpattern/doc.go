// SPDX-License-Identifier: MPL-2.0

// Package urlpattern parses and matches extension URL patterns of the form
// scheme://host/path.
//
// The scheme may be "*" (http or https), the host may be "*" or start with
// "*." to match subdomains, and the path is a glob where "*" matches any run
// of characters. The special pattern "<all_urls>" matches every URL whose
// scheme is in the pattern's valid scheme mask.
//
// Set offers order-independent collections with union, intersection and
// difference, used by the permission engine to model host grants.
package urlpattern
