// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ManifestNotFoundId Id = iota + 1
	ManifestParseErrorId
	InvalidPermissionId
	ExperimentalRequiredId
	InvalidMatchPatternId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	slug     string      // stable name accepted by 'extctl explain'
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

// Slug is the kebab-case name of the issue, e.g. "manifest-not-found".
func (i *Issue) Slug() string {
	return i.slug
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the message followed by a "See also" list of links.
func (i *Issue) Markdown() string {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			sb.WriteString("- <" + string(link) + ">\n")
		}
	}
	return sb.String()
}

// Render renders the issue with glamour. stylePath is a glamour style name
// ("dark", "light", "notty") or a path to a JSON style file.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	manifestNotFoundIssue = &Issue{
		id:   ManifestNotFoundId,
		slug: "manifest-not-found",
		mdMsg: `
# No manifest found!

extctl expects either a path to a manifest file or a directory that
contains a file named ` + "`manifest.json`" + `.

## Things you can try:
- Point at the extension directory:
~~~
$ extctl inspect ./my-extension
~~~

- Or at the manifest itself:
~~~
$ extctl inspect ./my-extension/manifest.json
~~~`,
		extLinks: []HttpLink{"https://developer.chrome.com/docs/extensions/reference/manifest"},
	}

	manifestParseErrorIssue = &Issue{
		id:   ManifestParseErrorId,
		slug: "manifest-parse-error",
		mdMsg: `
# The manifest could not be parsed!

The manifest must be a JSON object. Comments and trailing commas are
tolerated, anything else that is not JSON is rejected.

## Common mistakes:
- A top-level array or string instead of an object
- Unquoted keys or single-quoted strings
- A file larger than the size limit

## Things you can try:
- Run the structural lint to see every problem at once:
~~~
$ extctl validate ./my-extension
~~~`,
	}

	invalidPermissionIssue = &Issue{
		id:   InvalidPermissionId,
		slug: "invalid-permission",
		mdMsg: `
# A permission was rejected!

Entries of ` + "`permissions`" + ` and ` + "`optional_permissions`" + ` are either API
names or host match patterns.

## Why a permission can be rejected:
- The API is private and the extension is neither a component nor whitelisted
- The API is not available to this package type (e.g. ` + "`socket`" + ` outside platform apps)
- The API cannot be optional (e.g. ` + "`geolocation`" + `)
- The host pattern uses a scheme other than http, https, file, chrome or ftp
- The pattern targets a chrome:// page other than chrome://favicon/

## Things you can try:
- Inspect what the extension would receive:
~~~
$ extctl inspect ./my-extension --location component
~~~`,
	}

	experimentalRequiredIssue = &Issue{
		id:   ExperimentalRequiredId,
		slug: "experimental-required",
		mdMsg: `
# Experimental APIs are disabled!

The ` + "`experimental`" + ` permission is only granted when experimental APIs are
enabled, the extension came from the gallery, or its id is allowlisted.

## Things you can try:
- Enable experimental APIs in your config file:
~~~cue
engine: {
	experimental_apis: true
}
~~~

- Or allowlist the extension id:
~~~cue
engine: {
	experimental_allowlist: ["abcdefghijklmnopabcdefghijklmnop"]
}
~~~`,
	}

	invalidMatchPatternIssue = &Issue{
		id:   InvalidMatchPatternId,
		slug: "invalid-match-pattern",
		mdMsg: `
# Invalid match pattern!

Match patterns have the form ` + "`<scheme>://<host><path>`" + `.

## Rules:
- The scheme is http, https, file, ftp, chrome, chrome-extension or *
- The host is *, *.<domain> or a literal host; file URLs have no host
- The path starts with / and may contain * wildcards
- Ports are ignored unless strict error checks are enabled, then rejected
- App extents may only use a trailing * in the path

## Examples:
~~~
http://*.example.com/*
https://mail.example.com/inbox/*
file:///home/*
~~~`,
		extLinks: []HttpLink{"https://developer.chrome.com/docs/extensions/develop/concepts/match-patterns"},
	}

	configLoadFailedIssue = &Issue{
		id:   ConfigLoadFailedId,
		slug: "config-load-failed",
		mdMsg: `
# Failed to load configuration!

The configuration file is CUE validated against a schema.

## Accepted keys:
~~~cue
engine: {
	experimental_apis:          bool
	experimental_allowlist:     [...string]
	enable_platform_apps:       bool
	allow_scripting_gallery:    bool
	allow_http_background_page: bool
	allow_legacy_manifests:     bool
	scripting_whitelist:        [...string]
	whitelisted_id:             string
	webstore_url:               string
	host_version:               string
}
load: {
	strict_error_checks: bool
	allow_file_access:   bool
	require_key:         bool
}
ui: {
	color_scheme: "auto" | "dark" | "light"
	verbose:      bool
	output:       "text" | "json" | "toml"
}
~~~

## Things you can try:
- Print the effective configuration:
~~~
$ extctl config show
~~~

- Write a fresh default file:
~~~
$ extctl config init --force
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	catalog = []*Issue{
		manifestNotFoundIssue,
		manifestParseErrorIssue,
		invalidPermissionIssue,
		experimentalRequiredIssue,
		invalidMatchPatternIssue,
		configLoadFailedIssue,
	}

	issues = indexByID(catalog)
)

func indexByID(list []*Issue) map[Id]*Issue {
	m := make(map[Id]*Issue, len(list))
	for _, i := range list {
		m[i.id] = i
	}
	return m
}

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	values := slices.Clone(catalog)
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}

// Lookup finds an issue by slug or by its numeric id.
func Lookup(name string) (*Issue, bool) {
	if n, err := strconv.Atoi(name); err == nil {
		i, ok := issues[Id(n)]
		return i, ok
	}
	name = strings.ToLower(strings.TrimSpace(name))
	for _, i := range catalog {
		if i.slug == name {
			return i, true
		}
	}
	return nil, false
}
