// SPDX-License-Identifier: MPL-2.0

package userscript

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/Crystalnix/BitPop-sub015/pkg/urlpattern"

	"github.com/tidwall/match"
	"golang.org/x/exp/slices"
)

// Run locations. The zero value is the default, DocumentIdle.
const (
	DocumentIdle RunLocation = iota
	DocumentStart
	DocumentEnd
)

// Manifest spellings of the run locations.
const (
	RunAtDocumentStart = "document_start"
	RunAtDocumentEnd   = "document_end"
	RunAtDocumentIdle  = "document_idle"
)

// ErrInvalidRunLocation is returned when a run_at value is unknown.
var ErrInvalidRunLocation = errors.New("invalid run location")

type (
	// RunLocation is the point in page load at which a script is injected.
	RunLocation int

	// InvalidRunLocationError reports an unknown run_at value.
	InvalidRunLocationError struct {
		Value string
	}

	// File is one script or style sheet of a content script.
	File struct {
		// ExtensionRoot is the extension directory on disk.
		ExtensionRoot string
		// RelativePath is the path inside the extension, as written in the
		// manifest.
		RelativePath string
		// URL is the resolved chrome-extension:// URL of the file.
		URL string
	}

	// Script is one content script rule: where it runs and what it injects.
	Script struct {
		ExtensionID string

		URLPatterns        urlpattern.Set
		ExcludeURLPatterns urlpattern.Set
		IncludeGlobs       []string
		ExcludeGlobs       []string

		JS  []File
		CSS []File

		RunLocation         RunLocation
		MatchAllFrames      bool
		EmulateGreasemonkey bool
	}
)

// Error implements the error interface.
func (e *InvalidRunLocationError) Error() string {
	return fmt.Sprintf("invalid run location %q (valid: %s, %s, %s)",
		e.Value, RunAtDocumentStart, RunAtDocumentEnd, RunAtDocumentIdle)
}

// Unwrap returns ErrInvalidRunLocation.
func (e *InvalidRunLocationError) Unwrap() error { return ErrInvalidRunLocation }

// ParseRunLocation maps a manifest run_at value to a RunLocation.
func ParseRunLocation(s string) (RunLocation, error) {
	switch s {
	case RunAtDocumentStart:
		return DocumentStart, nil
	case RunAtDocumentEnd:
		return DocumentEnd, nil
	case RunAtDocumentIdle:
		return DocumentIdle, nil
	default:
		return DocumentIdle, &InvalidRunLocationError{Value: s}
	}
}

// String returns the manifest spelling of the run location.
func (r RunLocation) String() string {
	switch r {
	case DocumentStart:
		return RunAtDocumentStart
	case DocumentEnd:
		return RunAtDocumentEnd
	default:
		return RunAtDocumentIdle
	}
}

// IsStandalone reports whether the script belongs to no extension.
func (s *Script) IsStandalone() bool { return s.ExtensionID == "" }

// MatchesURL reports whether the script should run on u. A URL must match
// one of the url patterns (when any are set) and none of the exclude
// patterns, then one of the include globs (when any are set) and none of
// the exclude globs.
func (s *Script) MatchesURL(u *url.URL) bool {
	if u == nil {
		return false
	}
	if !s.URLPatterns.IsEmpty() && !s.URLPatterns.MatchesURL(u) {
		return false
	}
	if s.ExcludeURLPatterns.MatchesURL(u) {
		return false
	}

	spec := u.String()
	if len(s.IncludeGlobs) > 0 && !matchesAnyGlob(s.IncludeGlobs, spec) {
		return false
	}
	return !matchesAnyGlob(s.ExcludeGlobs, spec)
}

// MatchesString parses raw and matches it.
func (s *Script) MatchesString(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return s.MatchesURL(u)
}

// Clone returns a deep copy.
func (s *Script) Clone() *Script {
	c := *s
	c.URLPatterns = s.URLPatterns.Clone()
	c.ExcludeURLPatterns = s.ExcludeURLPatterns.Clone()
	c.IncludeGlobs = slices.Clone(s.IncludeGlobs)
	c.ExcludeGlobs = slices.Clone(s.ExcludeGlobs)
	c.JS = slices.Clone(s.JS)
	c.CSS = slices.Clone(s.CSS)
	return &c
}

func matchesAnyGlob(globs []string, s string) bool {
	for _, g := range globs {
		if MatchGlob(g, s) {
			return true
		}
	}
	return false
}

// MatchGlob reports whether s matches the Greasemonkey glob pattern, where
// "*" matches any run of characters (slashes included), "?" matches exactly
// one and a backslash escapes the next character.
func MatchGlob(pattern, s string) bool {
	return match.Match(s, pattern)
}
