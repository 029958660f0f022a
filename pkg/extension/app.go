// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/Crystalnix/BitPop-sub015/pkg/manifest"
	"github.com/Crystalnix/BitPop-sub015/pkg/permissions"
	"github.com/Crystalnix/BitPop-sub015/pkg/urlpattern"

	"golang.org/x/exp/slices"
)

// WebExtentSchemes are the schemes an app's web extent may use.
const WebExtentSchemes = urlpattern.SchemeHTTP | urlpattern.SchemeHTTPS

// Launch containers.
const (
	LaunchTab LaunchContainer = iota
	LaunchPanel
	LaunchWindow
)

type (
	// LaunchContainer is where an app opens.
	LaunchContainer int

	// ExtentPatternError reports a rejected web extent entry.
	ExtentPatternError struct {
		Pattern string
		Reason  string
	}
)

// ErrInvalidExtentPattern is the sentinel wrapped by ExtentPatternError.
var ErrInvalidExtentPattern = errors.New("invalid extent pattern")

// baseKeys are the manifest keys every package type may carry.
var baseKeys = []string{
	manifest.KeyCurrentLocale,
	manifest.KeyDefaultLocale,
	manifest.KeyDescription,
	manifest.KeyIcons,
	manifest.KeyManifestVersion,
	manifest.KeyName,
	manifest.KeyPublicKey,
	manifest.KeySignature,
	manifest.KeyVersion,
	manifest.KeyUpdateURL,
}

// hostedAppKeys are the keys a hosted app may carry besides the base keys.
var hostedAppKeys = []string{
	manifest.KeyApp,
	manifest.KeyPermissions,
	manifest.KeyOptionsPage,
	manifest.KeyBackground,
	manifest.KeyBackgroundPageLegacy,
}

// Error returns the reason.
func (e *ExtentPatternError) Error() string { return e.Reason }

// Unwrap returns ErrInvalidExtentPattern.
func (e *ExtentPatternError) Unwrap() error { return ErrInvalidExtentPattern }

// String returns the manifest spelling of the container.
func (c LaunchContainer) String() string {
	switch c {
	case LaunchPanel:
		return manifest.ValueLaunchContainerPanel
	case LaunchWindow:
		return manifest.ValueLaunchContainerWindow
	default:
		return manifest.ValueLaunchContainerTab
	}
}

// IsBaseKey reports whether every package type may use the manifest key.
func IsBaseKey(key string) bool { return slices.Contains(baseKeys, key) }

func (l *loader) loadIsApp() error {
	if !l.m.Has(manifest.KeyApp) {
		return nil
	}
	if _, ok := l.m.GetDict(manifest.KeyApp); !ok {
		return loadError(manifest.KeyApp, MsgInvalidApp)
	}
	l.ext.isApp = true
	return nil
}

func (l *loader) loadPlatformApp() error {
	if !l.m.Has(manifest.KeyPlatformApp) {
		return nil
	}
	platform, ok := l.m.GetBool(manifest.KeyPlatformApp)
	if !ok {
		return loadError(manifest.KeyPlatformApp, MsgInvalidPlatformApp)
	}
	if platform && !l.settings.EnablePlatformApps {
		return loadError(manifest.KeyPlatformApp, MsgPlatformAppFlagRequired)
	}
	l.ext.platformApp = platform
	return nil
}

// loadExtent reads the web extent of an app. Entries without a path claim
// the whole origin. Each accepted pattern gets a trailing "*" so it covers
// every path below the one listed.
func (l *loader) loadExtent() error {
	key := manifest.KeyWebURLs
	if !l.m.Has(key) {
		return nil
	}
	list, ok := l.m.GetList(key)
	if !ok {
		return loadError(manifest.KeyApp, MsgInvalidWebURLs)
	}

	for i := range list.Len() {
		index := strconv.Itoa(i)
		s, ok := list.GetString(i)
		if !ok {
			return loadError(manifest.KeyApp, MsgInvalidWebURL, index, MsgExpectString)
		}
		p, err := ParseExtentPattern(s, l.parseOption())
		if err != nil {
			return loadError(manifest.KeyApp, MsgInvalidWebURL, index, err.Error())
		}
		l.ext.webExtent.Add(p)
	}
	return nil
}

// ParseExtentPattern parses one web extent entry. All-URL patterns,
// patterns for every host and paths with wildcards are rejected with an
// *ExtentPatternError.
func ParseExtentPattern(s string, opt urlpattern.ParseOption) (urlpattern.Pattern, error) {
	p := urlpattern.New(WebExtentSchemes)
	r := p.Parse(s, opt)
	if r == urlpattern.ParseErrorEmptyPath {
		r = p.Parse(s+"/", opt)
	}
	reason := ""
	switch {
	case r != urlpattern.ParseSuccess:
		reason = r.String()
	case p.MatchAllURLs():
		reason = MsgCannotClaimAllURLsInExtent
	case p.Host() == "":
		reason = MsgCannotClaimAllHostsInExtent
	case strings.Contains(p.Path(), "*"):
		reason = MsgNoWildCardsInPaths
	}
	if reason != "" {
		return urlpattern.Pattern{}, &ExtentPatternError{Pattern: s, Reason: reason}
	}
	p.SetPath(p.Path() + "*")
	return p, nil
}

func (l *loader) loadLaunchURL() error {
	hasLocal, hasWeb := l.m.Has(manifest.KeyLaunchLocalPath), l.m.Has(manifest.KeyLaunchWebURL)

	switch {
	case hasLocal && hasWeb:
		return loadError(manifest.KeyApp, MsgLaunchPathAndURLAreExclusive)
	case hasLocal:
		path, ok := l.m.GetString(manifest.KeyLaunchLocalPath)
		if !ok {
			return loadError(manifest.KeyApp, MsgInvalidLaunchLocalPath)
		}
		resolved := l.ext.GetResourceURL(path)
		if resolved == nil || resolved.Scheme != ExtensionScheme || resolved.Host != l.ext.id {
			return loadError(manifest.KeyApp, MsgInvalidLaunchLocalPath)
		}
		l.ext.launchLocalPath = path
	case hasWeb:
		raw, ok := l.m.GetString(manifest.KeyLaunchWebURL)
		if !ok {
			return loadError(manifest.KeyApp, MsgInvalidLaunchWebURL)
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || !urlpattern.New(WebExtentSchemes).IsValidScheme(u.Scheme) {
			return loadError(manifest.KeyApp, MsgInvalidLaunchWebURL)
		}
		l.ext.launchWebURL = raw
	case l.ext.isApp:
		return loadError(manifest.KeyApp, MsgLaunchURLRequired)
	}

	// Without an extent an app owns the host it launches into.
	if l.ext.webExtent.IsEmpty() && l.ext.launchWebURL != "" {
		u, _ := url.Parse(l.ext.launchWebURL)
		p := urlpattern.New(WebExtentSchemes)
		p.SetScheme("*")
		p.SetHost(u.Hostname())
		p.SetPath("/*")
		l.ext.webExtent.Add(p)
	}

	if l.ext.id == permissions.WebstoreAppID {
		l.applyWebstoreURL()
	}
	return nil
}

// applyWebstoreURL points the gallery app at a custom gallery URL so that
// the gallery keeps its process isolation there.
func (l *loader) applyWebstoreURL() {
	raw := l.settings.WebstoreURL
	if raw == "" || raw == DefaultWebstoreURL {
		return
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		l.logger.Warn("ignoring invalid webstore url", "url", raw)
		return
	}
	if u.Port() != "" {
		l.logger.Warn("webstore url should not contain a port, removing it", "url", raw)
		u.Host = u.Hostname()
	}
	l.ext.launchWebURL = u.String()

	p := urlpattern.New(WebExtentSchemes)
	if p.Parse(u.String(), urlpattern.ErrorOnPorts) == urlpattern.ParseSuccess {
		p.SetPath(p.Path() + "*")
		l.ext.webExtent.Add(p)
	}
}

func (l *loader) loadLaunchContainer() error {
	if !l.m.Has(manifest.KeyLaunchContainer) {
		return nil
	}
	s, ok := l.m.GetString(manifest.KeyLaunchContainer)
	if !ok {
		return loadError(manifest.KeyApp, MsgInvalidLaunchContainer)
	}
	switch s {
	case manifest.ValueLaunchContainerTab:
		l.ext.launchContainer = LaunchTab
	case manifest.ValueLaunchContainerPanel:
		l.ext.launchContainer = LaunchPanel
	case manifest.ValueLaunchContainerWindow:
		l.ext.launchContainer = LaunchWindow
	default:
		return loadError(manifest.KeyApp, MsgInvalidLaunchContainer)
	}

	var err error
	if l.ext.launchWidth, err = l.loadLaunchDimension(manifest.KeyLaunchWidth,
		MsgInvalidLaunchWidthContainer, MsgInvalidLaunchWidth); err != nil {
		return err
	}
	l.ext.launchHeight, err = l.loadLaunchDimension(manifest.KeyLaunchHeight,
		MsgInvalidLaunchHeightContainer, MsgInvalidLaunchHeight)
	return err
}

func (l *loader) loadLaunchDimension(key, containerMsg, valueMsg string) (int, error) {
	if !l.m.Has(key) {
		return 0, nil
	}
	if l.ext.launchContainer == LaunchTab {
		return 0, loadError(manifest.KeyApp, containerMsg)
	}
	n, ok := l.m.GetInt(key)
	if !ok || n < 0 {
		return 0, loadError(manifest.KeyApp, valueMsg)
	}
	return n, nil
}

func (l *loader) loadAppIsolation() error {
	if !l.m.Has(manifest.KeyIsolation) {
		return nil
	}
	list, ok := l.m.GetList(manifest.KeyIsolation)
	if !ok {
		return loadError(manifest.KeyApp, MsgInvalidIsolation)
	}
	for i := range list.Len() {
		s, ok := list.GetString(i)
		if !ok {
			return loadError(manifest.KeyApp, MsgInvalidIsolationValue, strconv.Itoa(i))
		}
		if s == manifest.ValueIsolatedStorage {
			l.ext.isolatedStorage = true
			continue
		}
		l.logger.Warn("unrecognized isolation type", "type", s)
	}
	return nil
}

// ensureNotHybridApp keeps apps with a web extent to hosted app keys.
func (l *loader) ensureNotHybridApp() error {
	if l.ext.webExtent.IsEmpty() {
		return nil
	}
	for _, key := range l.m.Keys() {
		if IsBaseKey(key) || slices.Contains(hostedAppKeys, key) {
			continue
		}
		return loadError(key, MsgHostedAppsCannotIncludeExtensionFeatures, key)
	}
	return nil
}
