// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Crystalnix/BitPop-sub015/pkg/manifest"
	"github.com/Crystalnix/BitPop-sub015/pkg/permissions"
	"github.com/Crystalnix/BitPop-sub015/pkg/urlpattern"

	"golang.org/x/exp/slices"
	"golang.org/x/text/language"
)

// DefaultContentSecurityPolicy applies to manifest version 2 extensions
// that declare none.
const DefaultContentSecurityPolicy = "script-src 'self'; object-src 'self'"

type (
	// Plugin is an NPAPI plugin shipped with the extension.
	Plugin struct {
		// Path is the absolute path of the plugin file.
		Path string
		// Public plugins are visible to web pages.
		Public bool
	}

	// FileBrowserHandler is a file browser action.
	FileBrowserHandler struct {
		ExtensionID     string
		ID              string
		Title           string
		DefaultIconPath string
		// FileFilters are filesystem: patterns naming the files handled.
		FileFilters urlpattern.Set
	}
)

// MatchesURL reports whether one of the handler's file filters matches u.
func (h *FileBrowserHandler) MatchesURL(u *url.URL) bool {
	return h.FileFilters.MatchesURL(u)
}

func (l *loader) loadPlugins() error {
	if !l.m.Has(manifest.KeyPlugins) {
		return nil
	}
	list, ok := l.m.GetList(manifest.KeyPlugins)
	if !ok {
		return loadError(manifest.KeyPlugins, MsgInvalidPlugins)
	}
	if list.Len() > 0 && l.ext.manifestVersion >= 2 && !l.requiresAPI(permissions.Experimental) {
		return loadError(manifest.KeyPlugins, MsgPluginsNotAllowed)
	}

	for i := range list.Len() {
		index := strconv.Itoa(i)
		d, ok := list.GetDict(i)
		if !ok {
			return loadError(manifest.KeyPlugins, MsgInvalidPlugins)
		}
		path, ok := d.GetString(manifest.KeyPluginPath)
		if !ok {
			return loadError(manifest.KeyPlugins, MsgInvalidPluginsPath, index)
		}
		plugin := Plugin{Path: filepath.Join(l.ext.path, filepath.FromSlash(path))}
		if d.Has(manifest.KeyPluginPublic) {
			if plugin.Public, ok = d.GetBool(manifest.KeyPluginPublic); !ok {
				return loadError(manifest.KeyPlugins, MsgInvalidPluginsPublic, index)
			}
		}
		l.ext.plugins = append(l.ext.plugins, plugin)
	}
	return nil
}

// loadBackground reads background.page, background.scripts and, for
// manifest version 1, the legacy background_page key.
func (l *loader) loadBackground() error {
	if l.m.Has(manifest.KeyBackground) {
		if _, ok := l.m.GetDict(manifest.KeyBackground); !ok {
			return loadError(manifest.KeyBackground, MsgInvalidBackground)
		}
	}

	var (
		page    string
		hasPage bool
	)
	switch {
	case l.m.Has(manifest.KeyBackgroundPage):
		var ok bool
		if page, ok = l.m.GetString(manifest.KeyBackgroundPage); !ok {
			return loadError(manifest.KeyBackground, MsgInvalidBackground)
		}
		hasPage = true
	case l.m.Has(manifest.KeyBackgroundPageLegacy):
		if l.ext.manifestVersion >= 2 {
			return loadError(manifest.KeyBackgroundPageLegacy, MsgBackgroundPageLegacyKey)
		}
		var ok bool
		if page, ok = l.m.GetString(manifest.KeyBackgroundPageLegacy); !ok {
			return loadError(manifest.KeyBackgroundPageLegacy, MsgInvalidBackground)
		}
		hasPage = true
	}

	if l.m.Has(manifest.KeyBackgroundScripts) {
		if hasPage {
			return loadError(manifest.KeyBackground, MsgInvalidBackgroundCombination)
		}
		if l.ext.Type() == manifest.TypeHostedApp {
			return loadError(manifest.KeyBackground, MsgInvalidBackgroundInHostedApp)
		}
		list, ok := l.m.GetList(manifest.KeyBackgroundScripts)
		if !ok {
			return loadError(manifest.KeyBackground, MsgInvalidBackgroundScripts)
		}
		scripts, bad, ok := list.Strings()
		if !ok {
			return loadError(manifest.KeyBackground, MsgInvalidBackgroundScript, strconv.Itoa(bad))
		}
		l.ext.backgroundScripts = scripts
	}

	if hasPage {
		if err := l.setBackgroundPage(page); err != nil {
			return err
		}
	}

	l.ext.backgroundPersistent = true
	if l.m.Has(manifest.KeyBackgroundPersistent) {
		persistent, ok := l.m.GetBool(manifest.KeyBackgroundPersistent)
		if !ok {
			return loadError(manifest.KeyBackground, MsgInvalidBackgroundPersistent)
		}
		l.ext.backgroundPersistent = persistent
	}
	return nil
}

func (l *loader) setBackgroundPage(page string) error {
	if l.ext.Type() != manifest.TypeHostedApp {
		u := l.ext.GetResourceURL(page)
		if u == nil {
			return loadError(manifest.KeyBackground, MsgInvalidBackground)
		}
		l.ext.backgroundURL = u
		return nil
	}

	if !l.requiresAPI(permissions.Background) {
		return loadError(manifest.KeyBackground, MsgBackgroundPermissionNeeded)
	}
	u, err := url.Parse(page)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return loadError(manifest.KeyBackground, MsgInvalidBackgroundInHostedApp)
	}
	if u.Scheme != "https" && !(u.Scheme == "http" && l.settings.AllowHTTPBackgroundPage) {
		return loadError(manifest.KeyBackground, MsgInvalidBackgroundInHostedApp)
	}
	l.ext.backgroundURL = u
	return nil
}

func (l *loader) loadOptionsPage() error {
	if !l.m.Has(manifest.KeyOptionsPage) {
		return nil
	}
	page, ok := l.m.GetString(manifest.KeyOptionsPage)
	if !ok {
		return loadError(manifest.KeyOptionsPage, MsgInvalidOptionsPage)
	}

	if l.ext.Type() == manifest.TypeHostedApp {
		u, err := url.Parse(page)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return loadError(manifest.KeyOptionsPage, MsgInvalidOptionsPageInHostedApp)
		}
		l.ext.optionsURL = u
		return nil
	}

	if u, err := url.Parse(page); err == nil && u.IsAbs() {
		return loadError(manifest.KeyOptionsPage, MsgInvalidOptionsPageExpectURLInPackage)
	}
	u := l.ext.GetResourceURL(page)
	if u == nil {
		return loadError(manifest.KeyOptionsPage, MsgInvalidOptionsPage)
	}
	l.ext.optionsURL = u
	return nil
}

func (l *loader) loadDefaultLocale() error {
	if !l.m.Has(manifest.KeyDefaultLocale) {
		return nil
	}
	locale, ok := l.m.GetString(manifest.KeyDefaultLocale)
	if !ok || !IsValidLocaleSyntax(locale) {
		return loadError(manifest.KeyDefaultLocale, MsgInvalidDefaultLocale)
	}
	l.ext.defaultLocale = locale
	return nil
}

// IsValidLocaleSyntax reports whether s is a well-formed locale name such
// as "en", "pt_BR" or "zh-Hant".
func IsValidLocaleSyntax(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t") {
		return false
	}
	_, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	return err == nil
}

// loadChromeURLOverrides accepts at most one override among newtab,
// bookmarks and history.
func (l *loader) loadChromeURLOverrides() error {
	if !l.m.Has(manifest.KeyChromeURLOverrides) {
		return nil
	}
	overrides, ok := l.m.GetDict(manifest.KeyChromeURLOverrides)
	if !ok {
		return loadError(manifest.KeyChromeURLOverrides, MsgInvalidChromeURLOverrides)
	}

	result := make(map[string]string, overrides.Len())
	for _, page := range overrides.Keys() {
		switch page {
		case manifest.ValueOverrideNewTab, manifest.ValueOverrideBookmarks, manifest.ValueOverrideHistory:
		default:
			return loadError(manifest.KeyChromeURLOverrides, MsgInvalidChromeURLOverrides)
		}
		val, ok := overrides.Field(page).AsString()
		if !ok {
			return loadError(manifest.KeyChromeURLOverrides, MsgInvalidChromeURLOverrides)
		}
		u := l.ext.GetResourceURL(val)
		if u == nil {
			return loadError(manifest.KeyChromeURLOverrides, MsgInvalidChromeURLOverrides)
		}
		result[page] = u.String()
	}
	if len(result) > 1 {
		return loadError(manifest.KeyChromeURLOverrides, MsgMultipleOverrides)
	}
	l.ext.chromeURLOverrides = result
	return nil
}

func (l *loader) loadOmnibox() error {
	if !l.m.Has(manifest.KeyOmnibox) {
		return nil
	}
	keyword, ok := l.m.GetString(manifest.KeyOmniboxKeyword)
	if !ok || keyword == "" {
		return loadError(manifest.KeyOmnibox, MsgInvalidOmniboxKeyword)
	}
	l.ext.omniboxKeyword = keyword
	return nil
}

func (l *loader) loadDevToolsPage() error {
	if !l.m.Has(manifest.KeyDevToolsPage) {
		return nil
	}
	page, ok := l.m.GetString(manifest.KeyDevToolsPage)
	if !ok {
		return loadError(manifest.KeyDevToolsPage, MsgInvalidDevToolsPage)
	}
	u := l.ext.GetResourceURL(page)
	if u == nil {
		return loadError(manifest.KeyDevToolsPage, MsgInvalidDevToolsPage)
	}
	l.ext.devtoolsURL = u
	return nil
}

// loadIncognito reads the incognito mode. Apps default to split mode,
// extensions to spanning.
func (l *loader) loadIncognito() error {
	l.ext.incognitoSplitMode = l.ext.Type().IsApp()
	if !l.m.Has(manifest.KeyIncognito) {
		return nil
	}
	switch v, _ := l.m.GetString(manifest.KeyIncognito); v {
	case manifest.ValueIncognitoSpanning:
		l.ext.incognitoSplitMode = false
	case manifest.ValueIncognitoSplit:
		l.ext.incognitoSplitMode = true
	default:
		return loadError(manifest.KeyIncognito, MsgInvalidIncognitoBehavior)
	}
	return nil
}

func (l *loader) loadContentSecurityPolicy() error {
	if !l.m.Has(manifest.KeyContentSecurityPolicy) {
		if l.ext.manifestVersion >= 2 {
			l.ext.contentSecurityPolicy = DefaultContentSecurityPolicy
		}
		return nil
	}
	policy, ok := l.m.GetString(manifest.KeyContentSecurityPolicy)
	if !ok || !ContentSecurityPolicyIsLegal(policy) {
		return loadError(manifest.KeyContentSecurityPolicy, MsgInvalidContentSecurityPolicy)
	}
	if l.ext.manifestVersion >= 2 && !ContentSecurityPolicyIsSecure(policy) {
		return loadError(manifest.KeyContentSecurityPolicy, MsgInsecureContentSecurityPolicy)
	}
	l.ext.contentSecurityPolicy = policy
	return nil
}

// ContentSecurityPolicyIsLegal reports whether policy can be sent as a
// header value.
func ContentSecurityPolicyIsLegal(policy string) bool {
	return !strings.ContainsAny(policy, "\r\n\x00")
}

// ContentSecurityPolicyIsSecure reports whether the script-src and
// object-src directives (or default-src in their absence) avoid inline
// script, eval and plain http sources.
func ContentSecurityPolicyIsSecure(policy string) bool {
	directives := make(map[string][]string)
	for _, directive := range strings.Split(policy, ";") {
		fields := strings.Fields(directive)
		if len(fields) == 0 {
			continue
		}
		name := strings.ToLower(fields[0])
		if _, seen := directives[name]; !seen {
			directives[name] = fields[1:]
		}
	}

	for _, name := range []string{"script-src", "object-src"} {
		sources, ok := directives[name]
		if !ok {
			sources = directives["default-src"]
		}
		for _, src := range sources {
			switch src = strings.ToLower(src); {
			case src == "'unsafe-inline'", src == "'unsafe-eval'":
				return false
			case src == "http:", strings.HasPrefix(src, "http://"):
				return false
			}
		}
	}
	return true
}

// loadWebAccessibleResources reads the resource globs web pages may load.
// Each entry is made absolute within the extension.
func (l *loader) loadWebAccessibleResources() error {
	if !l.m.Has(manifest.KeyWebAccessibleResources) {
		return nil
	}
	list, ok := l.m.GetList(manifest.KeyWebAccessibleResources)
	if !ok {
		return loadError(manifest.KeyWebAccessibleResources, MsgInvalidWebAccessibleResourcesList)
	}
	// A declared empty list still opts out of the legacy allow-all.
	l.ext.webAccessibleResources = make([]string, 0, list.Len())
	for i := range list.Len() {
		relative, ok := list.GetString(i)
		if !ok {
			return loadError(manifest.KeyWebAccessibleResources, MsgInvalidWebAccessibleResource, strconv.Itoa(i))
		}
		if !strings.HasPrefix(relative, "/") {
			relative = "/" + relative
		}
		l.ext.webAccessibleResources = append(l.ext.webAccessibleResources, relative)
	}
	return nil
}

func (l *loader) loadFileBrowserHandlers() error {
	if !l.m.Has(manifest.KeyFileBrowserHandlers) {
		return nil
	}
	list, ok := l.m.GetList(manifest.KeyFileBrowserHandlers)
	if !ok {
		return loadError(manifest.KeyFileBrowserHandlers, MsgInvalidFileBrowserHandler)
	}
	for i := range list.Len() {
		d, ok := list.GetDict(i)
		if !ok {
			return loadError(manifest.KeyFileBrowserHandlers, MsgInvalidFileBrowserHandler)
		}
		h, err := l.loadFileBrowserHandler(d)
		if err != nil {
			return err
		}
		l.ext.fileBrowserHandlers = append(l.ext.fileBrowserHandlers, h)
	}
	return nil
}

func (l *loader) loadFileBrowserHandler(d manifest.Dict) (*FileBrowserHandler, error) {
	const key = manifest.KeyFileBrowserHandlers
	h := &FileBrowserHandler{ExtensionID: l.ext.id}

	var ok bool
	if h.ID, ok = d.GetString(manifest.KeyHandlerID); !ok {
		return nil, loadError(key, MsgInvalidPageActionID)
	}
	if h.Title, ok = d.GetString(manifest.KeyHandlerTitle); !ok {
		return nil, loadError(key, MsgInvalidPageActionDefaultTitle)
	}

	filters, ok := d.GetList(manifest.KeyFileFilters)
	if !ok || filters.Len() == 0 {
		return nil, loadError(key, MsgInvalidFileFiltersList)
	}
	for i := range filters.Len() {
		filter, ok := filters.GetString(i)
		if !ok {
			return nil, loadError(key, MsgInvalidFileFilterValue, strconv.Itoa(i))
		}
		p := urlpattern.New(urlpattern.SchemeFilesystem)
		if p.Parse(filter, urlpattern.ErrorOnPorts) != urlpattern.ParseSuccess {
			return nil, loadError(key, MsgInvalidURLPatternError, filter)
		}
		h.FileFilters.Add(p)
	}

	if d.Has(manifest.KeyHandlerIcon) {
		icon, ok := d.GetString(manifest.KeyHandlerIcon)
		if !ok || icon == "" {
			return nil, loadError(key, MsgInvalidPageActionIconPath)
		}
		h.DefaultIconPath = icon
	}
	return h, nil
}

func (l *loader) requiresAPI(id permissions.ID) bool {
	return slices.Contains(l.required.apis, id)
}
