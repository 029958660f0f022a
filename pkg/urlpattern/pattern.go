// SPDX-License-Identifier: MPL-2.0

package urlpattern

import (
	"net"
	"net/url"
	"strings"

	"github.com/tidwall/match"
)

const (
	// SchemeHTTP allows http URLs.
	SchemeHTTP Scheme = 1 << iota
	// SchemeHTTPS allows https URLs.
	SchemeHTTPS
	// SchemeFile allows file URLs.
	SchemeFile
	// SchemeFTP allows ftp URLs.
	SchemeFTP
	// SchemeChromeUI allows chrome:// internal pages.
	SchemeChromeUI
	// SchemeExtension allows chrome-extension:// resources.
	SchemeExtension
	// SchemeFilesystem allows filesystem: URLs.
	SchemeFilesystem

	// SchemeNone allows nothing.
	SchemeNone Scheme = 0
	// SchemeAll allows every scheme, including ones not listed above.
	SchemeAll Scheme = -1
)

const (
	// ParseSuccess means the pattern parsed completely.
	ParseSuccess ParseResult = iota
	// ParseErrorMissingSchemeSeparator means no ":" or "://" was found.
	ParseErrorMissingSchemeSeparator
	// ParseErrorInvalidScheme means the scheme is not in the valid mask.
	ParseErrorInvalidScheme
	// ParseErrorWrongSchemeSeparator means "://" was used with a non-standard
	// scheme or ":" alone with a standard one.
	ParseErrorWrongSchemeSeparator
	// ParseErrorEmptyHost means a standard non-file scheme had no host.
	ParseErrorEmptyHost
	// ParseErrorInvalidHostWildcard means "*" appeared in the host other
	// than as the leading component.
	ParseErrorInvalidHostWildcard
	// ParseErrorEmptyPath means the host was not followed by a path.
	ParseErrorEmptyPath
	// ParseErrorHasColon means a port was given while ports are rejected.
	ParseErrorHasColon
)

const (
	// IgnorePorts strips any port from the host and matches every port.
	IgnorePorts ParseOption = iota
	// ErrorOnPorts makes a port in the host a parse error.
	ErrorOnPorts
	// UsePorts keeps the port and requires URLs to match it.
	UsePorts
)

const (
	// AllURLs is the pattern that matches every URL with a valid scheme.
	AllURLs = "<all_urls>"

	schemeWildcard          = "*"
	standardSchemeSeparator = "://"
	pathSeparator           = "/"
	portWildcard            = "*"
)

type (
	// Scheme is a bitmask of URL schemes a pattern may match.
	Scheme int

	// ParseResult enumerates the outcomes of Pattern.Parse.
	ParseResult int

	// ParseOption controls how ports in a pattern host are treated.
	ParseOption int

	// Pattern is a compiled URL pattern. The zero value matches nothing;
	// construct patterns with New.
	Pattern struct {
		validSchemes    Scheme
		matchAllURLs    bool
		scheme          string
		host            string
		matchSubdomains bool
		port            string
		path            string
	}
)

var (
	schemeNames = []struct {
		name string
		mask Scheme
	}{
		{"http", SchemeHTTP},
		{"https", SchemeHTTPS},
		{"file", SchemeFile},
		{"ftp", SchemeFTP},
		{"chrome", SchemeChromeUI},
		{"chrome-extension", SchemeExtension},
		{"filesystem", SchemeFilesystem},
	}

	standardSchemes = map[string]bool{
		"http":             true,
		"https":            true,
		"file":             true,
		"ftp":              true,
		"chrome":           true,
		"chrome-extension": true,
		"ws":               true,
		"wss":              true,
		schemeWildcard:     true,
	}

	defaultPorts = map[string]string{
		"http":  "80",
		"https": "443",
		"ftp":   "21",
	}

	parseResultMessages = map[ParseResult]string{
		ParseSuccess:                     "Success.",
		ParseErrorMissingSchemeSeparator: "Missing scheme separator.",
		ParseErrorInvalidScheme:          "Invalid scheme.",
		ParseErrorWrongSchemeSeparator:   "Wrong scheme type.",
		ParseErrorEmptyHost:              "Host can not be empty.",
		ParseErrorInvalidHostWildcard:    "Invalid host wildcard.",
		ParseErrorEmptyPath:              "Empty path.",
		ParseErrorHasColon:               "Ports are not supported.",
	}
)

// String returns the human-readable message for a parse result.
func (r ParseResult) String() string {
	if msg, ok := parseResultMessages[r]; ok {
		return msg
	}
	return "Unknown parse result."
}

// Has reports whether every bit of other is set in s.
func (s Scheme) Has(other Scheme) bool { return s&other == other }

// SchemeFor returns the mask bit for a scheme name, or SchemeNone.
func SchemeFor(name string) Scheme {
	for _, sn := range schemeNames {
		if sn.name == name {
			return sn.mask
		}
	}
	return SchemeNone
}

// New returns an empty pattern restricted to the valid schemes.
func New(valid Scheme) Pattern {
	return Pattern{validSchemes: valid, port: portWildcard}
}

// MustParse returns a pattern parsed from s or panics. Intended for tests and
// static tables.
func MustParse(valid Scheme, s string) Pattern {
	p := New(valid)
	if r := p.Parse(s, IgnorePorts); r != ParseSuccess {
		panic("urlpattern: " + s + ": " + r.String())
	}
	return p
}

// Parse fills p from the pattern string s. On failure p is left in an
// unspecified state and must not be used for matching.
func (p *Pattern) Parse(s string, opt ParseOption) ParseResult {
	valid := p.validSchemes
	*p = Pattern{validSchemes: valid, port: portWildcard}

	if s == AllURLs {
		p.SetMatchAllURLs(true)
		return ParseSuccess
	}

	schemeEnd := strings.Index(s, standardSchemeSeparator)
	hasStandardSeparator := true
	if schemeEnd < 0 {
		schemeEnd = strings.Index(s, ":")
		hasStandardSeparator = false
	}
	if schemeEnd < 0 {
		return ParseErrorMissingSchemeSeparator
	}

	if !p.SetScheme(s[:schemeEnd]) {
		return ParseErrorInvalidScheme
	}

	standard := standardSchemes[p.scheme]
	if standard != hasStandardSeparator {
		return ParseErrorWrongSchemeSeparator
	}

	if standard {
		schemeEnd += len(standardSchemeSeparator)
	} else {
		schemeEnd++
	}
	if schemeEnd >= len(s) {
		return ParseErrorEmptyHost
	}

	hostStart := schemeEnd
	var pathStart int
	switch {
	case !standard:
		pathStart = hostStart
	case p.scheme == "file":
		hostEnd := strings.Index(s[hostStart:], pathSeparator)
		if hostEnd < 0 {
			// file://* is read as file:///*.
			pathStart = hostStart - 1
		} else {
			// The host of a file URL is ignored.
			pathStart = hostStart + hostEnd
		}
	default:
		hostEnd := strings.Index(s[hostStart:], pathSeparator)
		if hostEnd == 0 {
			return ParseErrorEmptyHost
		}
		if hostEnd < 0 {
			return ParseErrorEmptyPath
		}
		host := s[hostStart : hostStart+hostEnd]

		if i := strings.LastIndex(host, ":"); i >= 0 && !strings.HasSuffix(host, "]") {
			if opt == ErrorOnPorts {
				return ParseErrorHasColon
			}
			port := host[i+1:]
			host = host[:i]
			if opt == UsePorts && port != "" {
				p.port = port
			}
		}

		components := strings.Split(host, ".")
		if components[0] == "*" {
			p.matchSubdomains = true
			components = components[1:]
		}
		p.host = strings.ToLower(strings.Join(components, "."))
		if strings.Contains(p.host, "*") {
			return ParseErrorInvalidHostWildcard
		}
		pathStart = hostStart + hostEnd
	}

	p.SetPath(s[pathStart:])
	return ParseSuccess
}

// ValidSchemes returns the scheme mask.
func (p Pattern) ValidSchemes() Scheme { return p.validSchemes }

// SetValidSchemes replaces the scheme mask.
func (p *Pattern) SetValidSchemes(valid Scheme) { p.validSchemes = valid }

// Scheme returns the literal scheme, "*" for http-or-https.
func (p Pattern) Scheme() string { return p.scheme }

// SetScheme sets the literal scheme and reports whether the mask allows it.
// The wildcard narrows the mask to http and https.
func (p *Pattern) SetScheme(scheme string) bool {
	p.scheme = scheme
	if scheme == schemeWildcard {
		p.validSchemes &= SchemeHTTP | SchemeHTTPS
		return true
	}
	return p.IsValidScheme(scheme)
}

// IsValidScheme reports whether the pattern's mask allows scheme.
func (p Pattern) IsValidScheme(scheme string) bool {
	if p.validSchemes == SchemeAll {
		return true
	}
	mask := SchemeFor(scheme)
	return mask != SchemeNone && p.validSchemes&mask != 0
}

// Host returns the host without any subdomain wildcard.
func (p Pattern) Host() string { return p.host }

// SetHost sets the host, lower-cased.
func (p *Pattern) SetHost(host string) { p.host = strings.ToLower(host) }

// MatchSubdomains reports whether the host had a "*." prefix (or was "*").
func (p Pattern) MatchSubdomains() bool { return p.matchSubdomains }

// SetMatchSubdomains toggles subdomain matching.
func (p *Pattern) SetMatchSubdomains(v bool) { p.matchSubdomains = v }

// Port returns the port restriction, "*" for any port.
func (p Pattern) Port() string { return p.port }

// SetPort sets the port restriction.
func (p *Pattern) SetPort(port string) {
	if port == "" {
		port = portWildcard
	}
	p.port = port
}

// Path returns the path glob.
func (p Pattern) Path() string { return p.path }

// SetPath replaces the path glob.
func (p *Pattern) SetPath(path string) { p.path = path }

// MatchAllURLs reports whether this is the <all_urls> pattern.
func (p Pattern) MatchAllURLs() bool { return p.matchAllURLs }

// SetMatchAllURLs turns p into (or out of) the <all_urls> pattern. Turning
// it on resets the pattern to match any scheme, host and path within the mask.
func (p *Pattern) SetMatchAllURLs(v bool) {
	p.matchAllURLs = v
	if v {
		p.scheme = schemeWildcard
		p.host = ""
		p.matchSubdomains = true
		p.port = portWildcard
		p.path = "/*"
	}
}

// MatchesScheme reports whether scheme is allowed and equals the pattern's
// scheme (or the pattern's scheme is the wildcard).
func (p Pattern) MatchesScheme(scheme string) bool {
	if !p.IsValidScheme(scheme) {
		return false
	}
	if p.matchAllURLs {
		return true
	}
	return p.scheme == schemeWildcard || p.scheme == scheme
}

// MatchesAnyScheme reports whether any scheme in the list matches.
func (p Pattern) MatchesAnyScheme(schemes []string) bool {
	for _, s := range schemes {
		if p.MatchesScheme(s) {
			return true
		}
	}
	return false
}

// MatchesURL reports whether u is covered by the pattern.
func (p Pattern) MatchesURL(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if !p.MatchesScheme(scheme) {
		return false
	}
	if p.matchAllURLs {
		return true
	}

	if !standardSchemes[scheme] {
		if u.Opaque == "" {
			return p.MatchesPath(u.Path)
		}
		return p.MatchesPath(u.Opaque)
	}

	if scheme != "file" {
		if !p.matchesHost(u.Hostname()) {
			return false
		}
		if !p.matchesPort(scheme, u.Port()) {
			return false
		}
	}
	return p.MatchesPath(pathForRequest(u))
}

// MatchesString parses raw as a URL and matches it.
func (p Pattern) MatchesString(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return p.MatchesURL(u)
}

// MatchesHost reports whether host is covered by the pattern's host rule.
func (p Pattern) MatchesHost(host string) bool {
	return p.matchesHost(host)
}

func (p Pattern) matchesHost(testHost string) bool {
	testHost = strings.ToLower(testHost)
	if testHost == p.host {
		return true
	}
	if p.matchSubdomains && p.host == "" {
		return true
	}
	if !p.matchSubdomains {
		return false
	}
	if net.ParseIP(strings.Trim(testHost, "[]")) != nil {
		return false
	}
	if len(testHost) <= len(p.host)+1 {
		return false
	}
	if !strings.HasSuffix(testHost, p.host) {
		return false
	}
	return testHost[len(testHost)-len(p.host)-1] == '.'
}

func (p Pattern) matchesPort(scheme, port string) bool {
	if p.port == portWildcard {
		return true
	}
	if port == "" {
		port = defaultPorts[scheme]
	}
	return p.port == port
}

// MatchesPath reports whether path matches the pattern's path glob. Only "*"
// is special; "?" and every other character match literally.
func (p Pattern) MatchesPath(path string) bool {
	return matchGlob(p.path, path)
}

// ExplicitSchemes returns the concrete schemes the pattern could match.
func (p Pattern) ExplicitSchemes() []string {
	if p.scheme != schemeWildcard && !p.matchAllURLs {
		return []string{p.scheme}
	}
	var out []string
	for _, sn := range schemeNames {
		if p.MatchesScheme(sn.name) {
			out = append(out, sn.name)
		}
	}
	return out
}

// ConvertToExplicitSchemes expands a wildcard scheme into one pattern per
// concrete scheme it allows.
func (p Pattern) ConvertToExplicitSchemes() []Pattern {
	schemes := p.ExplicitSchemes()
	out := make([]Pattern, 0, len(schemes))
	for _, s := range schemes {
		c := p
		c.matchAllURLs = false
		c.scheme = s
		out = append(out, c)
	}
	return out
}

// OverlapsWith reports whether some URL could match both p and other.
// The paths of both patterns are expected to end in a single "*".
func (p Pattern) OverlapsWith(other Pattern) bool {
	if p.validSchemes&other.validSchemes == 0 && p.validSchemes != SchemeAll && other.validSchemes != SchemeAll {
		return false
	}
	if !p.MatchesAnyScheme(other.ExplicitSchemes()) && !other.MatchesAnyScheme(p.ExplicitSchemes()) {
		return false
	}
	if p.matchAllURLs || other.matchAllURLs {
		return true
	}
	if !p.matchesHost(other.host) && !other.matchesHost(p.host) {
		return false
	}
	if !p.MatchesPath(strings.TrimSuffix(other.path, "*")) &&
		!other.MatchesPath(strings.TrimSuffix(p.path, "*")) {
		return false
	}
	return true
}

// String returns the canonical pattern text.
func (p Pattern) String() string {
	if p.matchAllURLs {
		return AllURLs
	}
	standard := standardSchemes[p.scheme]
	var sb strings.Builder
	sb.WriteString(p.scheme)
	if standard {
		sb.WriteString(standardSchemeSeparator)
	} else {
		sb.WriteString(":")
	}
	if standard && p.scheme != "file" {
		if p.matchSubdomains {
			sb.WriteString("*")
			if p.host != "" {
				sb.WriteString(".")
			}
		}
		sb.WriteString(p.host)
		if p.port != portWildcard {
			sb.WriteString(":")
			sb.WriteString(p.port)
		}
	}
	sb.WriteString(p.path)
	return sb.String()
}

func pathForRequest(u *url.URL) string {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" || u.ForceQuery {
		path += "?" + u.RawQuery
	}
	return path
}

// literalGlob escapes every wildcard of the glob engine except "*".
var literalGlob = strings.NewReplacer(`\`, `\\`, "?", `\?`)

// MatchPath reports whether path matches glob with the path semantics of a
// match pattern: "*" matches any run of characters, slashes included, and
// every other character is literal.
func MatchPath(glob, path string) bool {
	return matchGlob(glob, path)
}

// matchGlob matches s against pattern where "*" matches any (possibly empty)
// run of characters and every other byte, "?" included, is literal.
func matchGlob(pattern, s string) bool {
	return match.Match(s, literalGlob.Replace(pattern))
}
