// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Crystalnix/BitPop-sub015/pkg/extensionid"
	"github.com/Crystalnix/BitPop-sub015/pkg/manifest"
	"github.com/Crystalnix/BitPop-sub015/pkg/permissions"
	"github.com/Crystalnix/BitPop-sub015/pkg/urlpattern"
	"github.com/Crystalnix/BitPop-sub015/pkg/userscript"
	"github.com/Crystalnix/BitPop-sub015/pkg/version"

	"github.com/charmbracelet/log"
)

// ExtensionScheme is the URL scheme of extension resources.
const ExtensionScheme = "chrome-extension"

type (
	// Extension is an immutable, validated view of an extension package,
	// plus the permissions currently granted to it. It is safe for
	// concurrent use.
	Extension struct {
		id              string
		path            string
		location        Location
		flags           LoadFlags
		manifest        *manifest.Manifest
		manifestVersion int
		typ             manifest.Type
		settings        Settings
		registry        *permissions.Registry

		name               string
		description        string
		version            version.Version
		homepageURL        *url.URL
		updateURL          *url.URL
		minimumHostVersion string
		publicKey          string
		icons              IconSet
		theme              *Theme

		convertedFromUserScript bool
		isApp                   bool
		platformApp             bool

		webExtent       urlpattern.Set
		launchLocalPath string
		launchWebURL    string
		launchContainer LaunchContainer
		launchWidth     int
		launchHeight    int
		isolatedStorage bool

		plugins                []Plugin
		contentScripts         []*userscript.Script
		pageAction             *Action
		browserAction          *Action
		fileBrowserHandlers    []*FileBrowserHandler
		backgroundURL          *url.URL
		backgroundScripts      []string
		backgroundPersistent   bool
		optionsURL             *url.URL
		defaultLocale          string
		chromeURLOverrides     map[string]string
		omniboxKeyword         string
		devtoolsURL            *url.URL
		incognitoSplitMode     bool
		contentSecurityPolicy  string
		webAccessibleResources []string
		wantsFileAccess        bool

		requiredPermissions *permissions.Set
		optionalPermissions *permissions.Set

		mu                sync.RWMutex
		activePermissions *permissions.Set
		images            imageCache
	}

	// loader carries the state of one construction.
	loader struct {
		ext        *Extension
		m          *manifest.Manifest
		flags      LoadFlags
		settings   Settings
		registry   *permissions.Registry
		logger     *log.Logger
		explicitID string

		required parsedPermissions
		optional parsedPermissions
	}
)

// New validates m and builds the extension installed at path from
// location. The first problem found is returned as a *LoadError.
func New(path string, location Location, m *manifest.Manifest, flags LoadFlags, opts ...Option) (*Extension, error) {
	if !location.IsValid() {
		return nil, &InvalidLocationError{Value: location.String()}
	}
	if m == nil {
		return nil, loadError("", MsgInvalidManifest)
	}
	if path != "" {
		path = filepath.Clean(path)
	}

	o := newOptions(opts)
	ext := &Extension{
		path:     path,
		location: location,
		flags:    flags,
		manifest: m,
		settings: o.settings,
		registry: o.registry,
	}
	l := &loader{
		ext:        ext,
		m:          m,
		flags:      flags,
		settings:   o.settings,
		registry:   o.registry,
		logger:     o.logger,
		explicitID: o.explicitID,
	}
	if err := l.load(); err != nil {
		l.logger.Debug("extension rejected", "path", path, "location", location, "error", err)
		return nil, err
	}
	l.logger.Debug("extension loaded", "id", ext.id, "type", ext.typ, "location", location)
	return ext, nil
}

func (l *loader) load() error {
	steps := []struct {
		state string
		run   func() error
	}{
		{"manifest-valid", l.loadManifestVersion},
		{"identity-assigned", l.loadIdentity},
		{"core-fields", l.loadCoreFields},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return err
		}
		l.logger.Debug("load state", "state", step.state)
	}

	if l.m.Has(manifest.KeyTheme) {
		if err := l.loadTheme(); err != nil {
			return err
		}
		l.ext.typ = manifest.TypeTheme
		l.buildPermissionSets()
		l.logger.Debug("load state", "state", "validated", "theme", true)
		return nil
	}

	steps = []struct {
		state string
		run   func() error
	}{
		{"type-flags", l.loadTypeFlags},
		{"app-features", l.loadAppFeatures},
		{"permissions-resolved", l.loadPermissions},
		{"feature-sections", l.loadFeatureSections},
		{"validated", l.validate},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return err
		}
		l.logger.Debug("load state", "state", step.state)
	}
	return nil
}

func (l *loader) loadManifestVersion() error {
	if l.m.Has(manifest.KeyManifestVersion) {
		v, ok := l.m.GetInt(manifest.KeyManifestVersion)
		if !ok || v < 1 {
			return loadError(manifest.KeyManifestVersion, MsgInvalidManifestVersion)
		}
	}
	l.ext.manifestVersion = l.m.ManifestVersion()
	if l.ext.manifestVersion < 2 && l.flags.Has(RequireModernManifestVersion) && !l.settings.AllowLegacyManifests {
		return loadError(manifest.KeyManifestVersion, MsgModernManifestRequired)
	}
	return nil
}

// loadIdentity derives the id from the public key when there is one, then
// from an explicit id, then from the install path.
func (l *loader) loadIdentity() error {
	switch {
	case l.m.Has(manifest.KeyPublicKey):
		key, ok := l.m.GetString(manifest.KeyPublicKey)
		if !ok {
			return loadError(manifest.KeyPublicKey, MsgInvalidKey)
		}
		der, err := extensionid.ParsePEMKey(key)
		if err != nil || len(der) == 0 {
			return loadError(manifest.KeyPublicKey, MsgInvalidKey)
		}
		l.ext.publicKey = key
		l.ext.id = extensionid.Generate(der).String()
	case l.flags.Has(RequireKey):
		return loadError(manifest.KeyPublicKey, MsgInvalidKey)
	case l.explicitID != "":
		if !extensionid.IsValid(l.explicitID) {
			return loadError("", MsgInvalidID, l.explicitID)
		}
		l.ext.id = strings.ToLower(l.explicitID)
	case l.ext.path != "":
		l.ext.id = extensionid.GenerateForPath(l.ext.path).String()
	default:
		return loadError(manifest.KeyPublicKey, MsgInvalidKey)
	}
	return nil
}

func (l *loader) loadCoreFields() error {
	raw, ok := l.m.GetString(manifest.KeyVersion)
	if !ok {
		return loadError(manifest.KeyVersion, MsgInvalidVersion)
	}
	v, err := version.Parse(raw)
	if err != nil {
		return loadError(manifest.KeyVersion, MsgInvalidVersion)
	}
	l.ext.version = v

	name, ok := l.m.GetString(manifest.KeyName)
	if !ok {
		return loadError(manifest.KeyName, MsgInvalidName)
	}
	l.ext.name = strings.TrimSpace(name)

	if l.m.Has(manifest.KeyDescription) {
		if l.ext.description, ok = l.m.GetString(manifest.KeyDescription); !ok {
			return loadError(manifest.KeyDescription, MsgInvalidDescription)
		}
	}

	if l.ext.homepageURL, err = l.loadURL(manifest.KeyHomepageURL, MsgInvalidHomepageURL, true); err != nil {
		return err
	}
	if l.ext.updateURL, err = l.loadURL(manifest.KeyUpdateURL, MsgInvalidUpdateURL, false); err != nil {
		return err
	}
	if err := l.checkMinimumHostVersion(); err != nil {
		return err
	}

	// A malformed value is treated as false.
	l.ext.convertedFromUserScript, _ = l.m.GetBool(manifest.KeyConvertedFromUserScript)

	return l.loadIcons()
}

// loadURL reads an optional absolute URL. Homepages must be web URLs and
// update URLs may not carry a fragment.
func (l *loader) loadURL(key, msg string, web bool) (*url.URL, error) {
	if !l.m.Has(key) {
		return nil, nil
	}
	raw, ok := l.m.GetString(key)
	if !ok {
		return nil, loadError(key, msg, "")
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Host == "" && u.Opaque == "") {
		return nil, loadError(key, msg, raw)
	}
	if web && u.Scheme != "http" && u.Scheme != "https" {
		return nil, loadError(key, msg, raw)
	}
	if !web && u.Fragment != "" {
		return nil, loadError(key, msg, raw)
	}
	return u, nil
}

func (l *loader) checkMinimumHostVersion() error {
	key := manifest.KeyMinimumChromeVersion
	if !l.m.Has(key) {
		return nil
	}
	raw, ok := l.m.GetString(key)
	if !ok {
		return loadError(key, MsgInvalidMinimumHostVersion)
	}
	minimum, err := version.Parse(raw)
	if err != nil {
		return loadError(key, MsgInvalidMinimumHostVersion)
	}
	l.ext.minimumHostVersion = raw
	if l.settings.HostVersion == "" {
		return nil
	}
	current, err := version.Parse(l.settings.HostVersion)
	if err != nil {
		l.logger.Warn("host version is not a valid version, skipping check", "host_version", l.settings.HostVersion)
		return nil
	}
	if current.Compare(minimum) < 0 {
		return loadError(key, MsgHostVersionTooLow, l.settings.HostName, raw)
	}
	return nil
}

func (l *loader) loadTypeFlags() error {
	if err := l.loadPlatformApp(); err != nil {
		return err
	}
	if err := l.loadIsApp(); err != nil {
		return err
	}
	return l.loadExtent()
}

// loadAppFeatures reads the launch and isolation settings and fixes the
// package type, which permission checks depend on.
func (l *loader) loadAppFeatures() error {
	if err := l.ensureNotHybridApp(); err != nil {
		return err
	}
	if err := l.loadLaunchURL(); err != nil {
		return err
	}
	if err := l.loadLaunchContainer(); err != nil {
		return err
	}
	if err := l.loadAppIsolation(); err != nil {
		return err
	}
	l.ext.typ = l.computeType()
	return nil
}

func (l *loader) computeType() manifest.Type {
	switch {
	case l.ext.theme != nil:
		return manifest.TypeTheme
	case l.ext.convertedFromUserScript:
		return manifest.TypeUserScript
	case l.ext.platformApp:
		return manifest.TypePlatformApp
	case l.ext.isApp && !l.ext.webExtent.IsEmpty():
		return manifest.TypeHostedApp
	case l.ext.isApp:
		return manifest.TypePackagedApp
	default:
		return manifest.TypeExtension
	}
}

func (l *loader) loadFeatureSections() error {
	sections := []func() error{
		l.loadPlugins,
		l.loadContentScripts,
		l.loadActions,
		l.loadFileBrowserHandlers,
		l.loadBackground,
		l.loadOptionsPage,
		l.loadDefaultLocale,
		l.loadChromeURLOverrides,
		l.loadOmnibox,
		l.loadDevToolsPage,
		l.loadIncognito,
		l.loadContentSecurityPolicy,
		l.loadWebAccessibleResources,
	}
	for _, load := range sections {
		if err := load(); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) validate() error {
	surfaces := 0
	for _, present := range []bool{l.ext.pageAction != nil, l.ext.browserAction != nil, l.ext.isApp} {
		if present {
			surfaces++
		}
	}
	if surfaces > 1 {
		return loadError("", MsgOneUISurfaceOnly)
	}
	l.buildPermissionSets()
	return nil
}

func (l *loader) parseOption() urlpattern.ParseOption {
	if l.flags.Has(StrictErrorChecks) {
		return urlpattern.ErrorOnPorts
	}
	return urlpattern.IgnorePorts
}

// ID returns the 32 character extension id.
func (e *Extension) ID() string { return e.id }

// Path returns the extension directory.
func (e *Extension) Path() string { return e.path }

// Location returns the install location.
func (e *Extension) Location() Location { return e.location }

// Flags returns the load flags the extension was built with.
func (e *Extension) Flags() LoadFlags { return e.flags }

// Manifest returns the manifest the extension was built from.
func (e *Extension) Manifest() *manifest.Manifest { return e.manifest }

// ManifestVersion returns the manifest format version.
func (e *Extension) ManifestVersion() int { return e.manifestVersion }

// Type returns the package type.
func (e *Extension) Type() manifest.Type { return e.typ }

// Registry returns the permission registry the manifest was resolved with.
func (e *Extension) Registry() *permissions.Registry { return e.registry }

// URL returns the origin of the extension's resources.
func (e *Extension) URL() *url.URL {
	return &url.URL{Scheme: ExtensionScheme, Host: e.id, Path: "/"}
}

// Name returns the trimmed display name.
func (e *Extension) Name() string { return e.name }

// Description returns the description, possibly empty.
func (e *Extension) Description() string { return e.description }

// Version returns the package version.
func (e *Extension) Version() version.Version { return e.version }

// PublicKey returns the key as written in the manifest.
func (e *Extension) PublicKey() string { return e.publicKey }

// MinimumHostVersion returns minimum_chrome_version, if declared.
func (e *Extension) MinimumHostVersion() string { return e.minimumHostVersion }

// Icons returns a copy of the declared icons.
func (e *Extension) Icons() IconSet { return IconSet{paths: e.icons.Map()} }

// Theme returns the theme section of a theme package, or nil.
func (e *Extension) Theme() *Theme { return e.theme.Clone() }

// IsTheme reports whether the package is a theme.
func (e *Extension) IsTheme() bool { return e.typ == manifest.TypeTheme }

// IsApp reports whether the package is any kind of app.
func (e *Extension) IsApp() bool { return e.typ.IsApp() }

// IsHostedApp reports whether the app claims web URLs.
func (e *Extension) IsHostedApp() bool { return e.typ == manifest.TypeHostedApp }

// IsPackagedApp reports whether the app is served from the package.
func (e *Extension) IsPackagedApp() bool { return e.typ == manifest.TypePackagedApp }

// IsPlatformApp reports whether the package is a platform app.
func (e *Extension) IsPlatformApp() bool { return e.typ == manifest.TypePlatformApp }

// ConvertedFromUserScript reports whether the package wraps a user script.
func (e *Extension) ConvertedFromUserScript() bool { return e.convertedFromUserScript }

// UpdateURL returns the autoupdate URL, or nil.
func (e *Extension) UpdateURL() *url.URL { return cloneURL(e.updateURL) }

// WebExtent returns the URLs a hosted app claims.
func (e *Extension) WebExtent() urlpattern.Set { return e.webExtent.Clone() }

// LaunchLocalPath returns the packaged launch page, if any.
func (e *Extension) LaunchLocalPath() string { return e.launchLocalPath }

// LaunchWebURL returns the hosted launch URL, if any.
func (e *Extension) LaunchWebURL() string { return e.launchWebURL }

// LaunchContainer returns where the app opens.
func (e *Extension) LaunchContainer() LaunchContainer { return e.launchContainer }

// LaunchSize returns the requested width and height. Zero means unset.
func (e *Extension) LaunchSize() (width, height int) { return e.launchWidth, e.launchHeight }

// HasIsolatedStorage reports whether the app asked for isolated storage.
func (e *Extension) HasIsolatedStorage() bool { return e.isolatedStorage }

// Plugins returns the NPAPI plugins.
func (e *Extension) Plugins() []Plugin { return append([]Plugin(nil), e.plugins...) }

// ContentScripts returns copies of the content scripts.
func (e *Extension) ContentScripts() []*userscript.Script {
	out := make([]*userscript.Script, len(e.contentScripts))
	for i, s := range e.contentScripts {
		out[i] = s.Clone()
	}
	return out
}

// PageAction returns the page action, or nil.
func (e *Extension) PageAction() *Action { return e.pageAction.Clone() }

// BrowserAction returns the browser action, or nil.
func (e *Extension) BrowserAction() *Action { return e.browserAction.Clone() }

// FileBrowserHandlers returns the file browser actions.
func (e *Extension) FileBrowserHandlers() []*FileBrowserHandler {
	out := make([]*FileBrowserHandler, len(e.fileBrowserHandlers))
	for i, h := range e.fileBrowserHandlers {
		c := *h
		c.FileFilters = h.FileFilters.Clone()
		out[i] = &c
	}
	return out
}

// BackgroundURL returns the background page, or nil.
func (e *Extension) BackgroundURL() *url.URL { return cloneURL(e.backgroundURL) }

// BackgroundScripts returns the scripts of a generated background page.
func (e *Extension) BackgroundScripts() []string {
	return append([]string(nil), e.backgroundScripts...)
}

// HasBackgroundPage reports whether there is a background page or scripts.
func (e *Extension) HasBackgroundPage() bool {
	return e.backgroundURL != nil || len(e.backgroundScripts) > 0
}

// BackgroundPersistent reports whether the background page stays loaded.
func (e *Extension) BackgroundPersistent() bool { return e.backgroundPersistent }

// OptionsURL returns the options page, or nil.
func (e *Extension) OptionsURL() *url.URL { return cloneURL(e.optionsURL) }

// DefaultLocale returns the default_locale value.
func (e *Extension) DefaultLocale() string { return e.defaultLocale }

// ChromeURLOverrides returns overridden page names mapped to resource URLs.
func (e *Extension) ChromeURLOverrides() map[string]string {
	out := make(map[string]string, len(e.chromeURLOverrides))
	for k, v := range e.chromeURLOverrides {
		out[k] = v
	}
	return out
}

// OmniboxKeyword returns the omnibox keyword, if any.
func (e *Extension) OmniboxKeyword() string { return e.omniboxKeyword }

// DevToolsURL returns the devtools page, or nil.
func (e *Extension) DevToolsURL() *url.URL { return cloneURL(e.devtoolsURL) }

// IncognitoSplitMode reports whether incognito gets its own process.
func (e *Extension) IncognitoSplitMode() bool { return e.incognitoSplitMode }

// ContentSecurityPolicy returns the policy for extension pages.
func (e *Extension) ContentSecurityPolicy() string { return e.contentSecurityPolicy }

// WebAccessibleResources returns the declared patterns, each with a leading
// slash. Nil means no list was declared.
func (e *Extension) WebAccessibleResources() []string {
	if e.webAccessibleResources == nil {
		return nil
	}
	return append([]string{}, e.webAccessibleResources...)
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}
