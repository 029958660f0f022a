// SPDX-License-Identifier: MPL-2.0

package userscript

import (
	"errors"
	"testing"

	"github.com/Crystalnix/BitPop-sub015/pkg/urlpattern"
)

const testSchemes = urlpattern.SchemeHTTP | urlpattern.SchemeHTTPS | urlpattern.SchemeFile

func patterns(ss ...string) urlpattern.Set {
	var set urlpattern.Set
	for _, s := range ss {
		set.Add(urlpattern.MustParse(testSchemes, s))
	}
	return set
}

func TestParseRunLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    RunLocation
		wantErr bool
	}{
		{"document_start", DocumentStart, false},
		{"document_end", DocumentEnd, false},
		{"document_idle", DocumentIdle, false},
		{"document_load", DocumentIdle, true},
		{"", DocumentIdle, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseRunLocation(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRunLocation(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidRunLocation) {
					t.Errorf("error does not wrap ErrInvalidRunLocation: %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseRunLocation(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestZeroRunLocationIsIdle(t *testing.T) {
	t.Parallel()

	var s Script
	if s.RunLocation != DocumentIdle {
		t.Errorf("zero RunLocation = %v, want document_idle", s.RunLocation)
	}
	if !s.IsStandalone() {
		t.Error("script without extension id is standalone")
	}
}

func TestMatchGlob(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern, s string
		want       bool
	}{
		{"*", "", true},
		{"*", "http://a.com/x/y", true},
		{"http://*.google.com/*", "http://mail.google.com/a/b", true},
		{"http://*.google.com/*", "http://google.com/", false},
		{"http://?.com/", "http://a.com/", true},
		{"http://?.com/", "http://ab.com/", false},
		{"http://??.com/", "http://ab.com/", true},
		{"*foo*", "http://a.com/?q=foo", true},
		{"*foo", "http://a.com/foobar", false},
		{"http://a.com/é?", "http://a.com/éx", true},
		{"", "", true},
		{"", "a", false},
		{`http://a.com/\*`, "http://a.com/*", true},
		{`http://a.com/\*`, "http://a.com/x", false},
		{`*\?*`, "http://a.com/?q=1", true},
		{`*\?*`, "http://a.com/q=1", false},
	}

	for _, tt := range tests {
		if got := MatchGlob(tt.pattern, tt.s); got != tt.want {
			t.Errorf("MatchGlob(%q, %q) = %v, want %v", tt.pattern, tt.s, got, tt.want)
		}
	}
}

func TestScriptMatchesURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script Script
		url    string
		want   bool
	}{
		{
			name:   "matching pattern",
			script: Script{URLPatterns: patterns("http://*.google.com/*")},
			url:    "http://www.google.com/search",
			want:   true,
		},
		{
			name:   "non-matching pattern",
			script: Script{URLPatterns: patterns("http://*.google.com/*")},
			url:    "http://www.example.com/",
			want:   false,
		},
		{
			name: "excluded pattern",
			script: Script{
				URLPatterns:        patterns("http://*.google.com/*"),
				ExcludeURLPatterns: patterns("http://mail.google.com/*"),
			},
			url:  "http://mail.google.com/inbox",
			want: false,
		},
		{
			name: "include glob required",
			script: Script{
				URLPatterns:  patterns("http://*/*"),
				IncludeGlobs: []string{"*/news/*"},
			},
			url:  "http://a.com/sports/1",
			want: false,
		},
		{
			name: "include glob matches",
			script: Script{
				URLPatterns:  patterns("http://*/*"),
				IncludeGlobs: []string{"*/sports/*", "*/news/*"},
			},
			url:  "http://a.com/news/1",
			want: true,
		},
		{
			name: "exclude glob wins",
			script: Script{
				URLPatterns:  patterns("http://*/*"),
				IncludeGlobs: []string{"*"},
				ExcludeGlobs: []string{"*.pdf"},
			},
			url:  "http://a.com/doc.pdf",
			want: false,
		},
		{
			name:   "globs alone",
			script: Script{IncludeGlobs: []string{"http://a.com/*"}, EmulateGreasemonkey: true},
			url:    "http://a.com/x",
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.script.MatchesString(tt.url); got != tt.want {
				t.Errorf("MatchesString(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestClone(t *testing.T) {
	t.Parallel()

	orig := &Script{
		URLPatterns:  patterns("http://a.com/*"),
		IncludeGlobs: []string{"*"},
		JS:           []File{{RelativePath: "a.js"}},
	}
	c := orig.Clone()
	c.IncludeGlobs[0] = "changed"
	c.JS[0].RelativePath = "b.js"
	c.URLPatterns.Add(urlpattern.MustParse(testSchemes, "http://b.com/*"))

	if orig.IncludeGlobs[0] != "*" || orig.JS[0].RelativePath != "a.js" || orig.URLPatterns.Len() != 1 {
		t.Error("Clone() shares state with the original")
	}
}
