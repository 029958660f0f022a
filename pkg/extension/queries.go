// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"image"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Crystalnix/BitPop-sub015/pkg/permissions"
	"github.com/Crystalnix/BitPop-sub015/pkg/urlpattern"
	"github.com/Crystalnix/BitPop-sub015/pkg/userscript"

	"golang.org/x/exp/slices"
)

type (
	// Resource is a file inside the extension package.
	Resource struct {
		ExtensionRoot string
		// RelativePath is slash separated and never starts with "/".
		RelativePath string
	}

	imageCacheKey struct {
		path string
		// size is "WxH", or empty for the image at its original size.
		size string
	}

	imageCache map[imageCacheKey]image.Image
)

// IsEmpty reports whether r names no file.
func (r Resource) IsEmpty() bool { return r.RelativePath == "" }

// FilePath returns the resource's location on disk.
func (r Resource) FilePath() string {
	if r.IsEmpty() {
		return ""
	}
	return filepath.Join(r.ExtensionRoot, filepath.FromSlash(r.RelativePath))
}

// ActivePermissions returns the permissions currently granted.
func (e *Extension) ActivePermissions() *permissions.Set {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activePermissions
}

// SetActivePermissions replaces the granted permissions. A nil set revokes
// everything.
func (e *Extension) SetActivePermissions(set *permissions.Set) {
	if set == nil {
		set = permissions.EmptySet(e.registry)
	}
	e.mu.Lock()
	e.activePermissions = set
	e.mu.Unlock()
}

// RequiredPermissions returns what the manifest requests up front,
// including permissions implied by other sections.
func (e *Extension) RequiredPermissions() *permissions.Set { return e.requiredPermissions }

// OptionalPermissions returns what the extension may request at runtime.
func (e *Extension) OptionalPermissions() *permissions.Set { return e.optionalPermissions }

// HasAPIPermission reports whether the API permission is granted.
func (e *Extension) HasAPIPermission(id permissions.ID) bool {
	return e.ActivePermissions().HasAPIPermission(id)
}

// HasAPIPermissionForFunction reports whether an extension function such as
// "tabs.create" may be called.
func (e *Extension) HasAPIPermissionForFunction(function string) bool {
	return e.ActivePermissions().HasAccessToFunction(function)
}

// HasHostPermission reports whether u is covered by an explicit host grant.
// Only component extensions reach chrome:// pages other than the favicon
// and thumbnail services.
func (e *Extension) HasHostPermission(u *url.URL) bool {
	if u == nil {
		return false
	}
	if strings.EqualFold(u.Scheme, chromeUIScheme) &&
		u.Hostname() != chromeUIFaviconHost &&
		u.Hostname() != chromeUIThumbnailHost &&
		e.location != LocationComponent {
		return false
	}
	hosts := e.ActivePermissions().ExplicitHosts()
	return hosts.MatchesURL(u)
}

// HasEffectiveAccessToAllHosts reports whether the extension can reach
// every site through any of its grants.
func (e *Extension) HasEffectiveAccessToAllHosts() bool {
	return e.ActivePermissions().HasEffectiveAccessToAllHosts()
}

// GetEffectiveHostPermissions returns every host the extension can reach.
func (e *Extension) GetEffectiveHostPermissions() urlpattern.Set {
	return e.ActivePermissions().EffectiveHosts()
}

// CanExecuteScriptEverywhere reports whether the extension may script any
// page, including privileged ones.
func (e *Extension) CanExecuteScriptEverywhere() bool {
	if e.location == LocationComponent {
		return true
	}
	return slices.Contains(e.settings.ScriptingWhitelist, e.id)
}

func (e *Extension) canSpecifyExperimentalPermission() bool {
	switch {
	case e.location == LocationComponent,
		e.settings.ExperimentalAPIs,
		e.flags.Has(FromWebstore):
		return true
	default:
		return slices.Contains(e.settings.ExperimentalAllowlist, e.id)
	}
}

// WantsFileAccess reports whether a content script or host grant asked for
// file:// URLs.
func (e *Extension) WantsFileAccess() bool { return e.wantsFileAccess }

// CanExecuteScriptOnPage returns nil when script may run on the page at u.
// With a nil script the explicit host grants decide instead. A denial is
// an *AccessError.
func (e *Extension) CanExecuteScriptOnPage(u *url.URL, script *userscript.Script) error {
	if u == nil {
		return cannotAccess(nil)
	}
	everywhere := e.CanExecuteScriptEverywhere()

	if gallery := e.webstoreHost(); gallery != "" && strings.EqualFold(u.Hostname(), gallery) &&
		!everywhere && !e.settings.AllowScriptingGallery {
		return &AccessError{Message: MsgCannotScriptGallery, URL: u.String()}
	}
	if strings.EqualFold(u.Scheme, chromeUIScheme) && !everywhere {
		return cannotAccess(u)
	}

	if script != nil {
		if script.MatchesURL(u) {
			return nil
		}
		return cannotAccess(u)
	}

	hosts := e.ActivePermissions().ExplicitHosts()
	if hosts.MatchesURL(u) {
		return nil
	}
	return cannotAccess(u)
}

// CanCaptureVisiblePage returns nil when the extension may screenshot the
// page at u: it has host access, or the page is its own.
func (e *Extension) CanCaptureVisiblePage(u *url.URL) error {
	if u != nil && (e.HasHostPermission(u) || e.isOwnOrigin(u)) {
		return nil
	}
	return cannotAccess(u)
}

func cannotAccess(u *url.URL) *AccessError {
	raw := ""
	if u != nil {
		raw = u.String()
	}
	return &AccessError{Message: FormatErrorMessage(MsgCannotAccessPage, raw), URL: raw}
}

// GetPermissionMessages returns the install warnings of the granted
// permissions.
func (e *Extension) GetPermissionMessages() []permissions.Message {
	return e.ActivePermissions().PermissionMessages()
}

// GetPermissionMessageStrings returns the warning texts only.
func (e *Extension) GetPermissionMessageStrings() []string {
	return e.ActivePermissions().WarningMessages()
}

// IsPrivilegeIncrease reports whether going from granted to requested needs
// the user's approval again. A nil granted set is treated as empty.
func IsPrivilegeIncrease(granted, requested *permissions.Set) bool {
	if requested == nil {
		return false
	}
	if granted == nil {
		granted = permissions.EmptySet(requested.Registry())
	}
	return granted.HasLessPrivilegesThan(requested)
}

// GetResourceURL resolves a path inside the package to its
// chrome-extension:// URL. It returns nil when rel is not a valid path.
func (e *Extension) GetResourceURL(rel string) *url.URL {
	rel = strings.TrimPrefix(rel, "/")
	u, err := url.Parse(e.URL().String() + rel)
	if err != nil {
		return nil
	}
	return u
}

// GetResource returns the package file at rel. Paths that escape the
// package give an empty Resource.
func (e *Extension) GetResource(rel string) Resource {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	if rel == "" || !filepath.IsLocal(filepath.FromSlash(rel)) {
		return Resource{}
	}
	return Resource{ExtensionRoot: e.path, RelativePath: rel}
}

// IsResourceWebAccessible reports whether web pages may load rel. Legacy
// manifests without a web_accessible_resources list expose everything.
// Entries match like match-pattern paths, so "*" also crosses directories.
func (e *Extension) IsResourceWebAccessible(rel string) bool {
	if e.webAccessibleResources == nil {
		return e.manifestVersion < 2
	}
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	for _, pattern := range e.webAccessibleResources {
		if urlpattern.MatchPath(pattern, rel) {
			return true
		}
	}
	return false
}

// GetFullLaunchURL returns the page an app opens on, or nil.
func (e *Extension) GetFullLaunchURL() *url.URL {
	if e.launchLocalPath != "" {
		rel, err := url.Parse(e.launchLocalPath)
		if err != nil {
			return nil
		}
		return e.URL().ResolveReference(rel)
	}
	if e.launchWebURL == "" {
		return nil
	}
	u, err := url.Parse(e.launchWebURL)
	if err != nil {
		return nil
	}
	return u
}

// UpdatesFromGallery reports whether the extension autoupdates from the
// gallery.
func (e *Extension) UpdatesFromGallery() bool {
	if e.updateURL == nil {
		return false
	}
	s := e.updateURL.String()
	return s == GalleryUpdateURL || s == GalleryUpdateURLInsecure
}

// GetHomepageURL returns the declared homepage, or the gallery detail page
// for gallery extensions. It returns nil otherwise.
func (e *Extension) GetHomepageURL() *url.URL {
	if e.homepageURL != nil {
		return cloneURL(e.homepageURL)
	}
	if !e.UpdatesFromGallery() {
		return nil
	}
	u, err := url.Parse(strings.TrimSuffix(e.settings.WebstoreURL, "/") + "/detail/" + e.id)
	if err != nil {
		return nil
	}
	return u
}

// OverlapsWithOrigin reports whether the app's extent reaches any page of
// origin. The extension's own origin always overlaps.
func (e *Extension) OverlapsWithOrigin(origin *url.URL) bool {
	if origin == nil {
		return false
	}
	if e.isOwnOrigin(origin) {
		return true
	}
	if e.webExtent.IsEmpty() {
		return false
	}
	p := urlpattern.New(WebExtentSchemes)
	if !p.SetScheme(origin.Scheme) {
		return false
	}
	p.SetHost(origin.Hostname())
	p.SetPath("/*")
	return e.webExtent.OverlapsWith(urlpattern.NewSet(p))
}

func (e *Extension) isOwnOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, ExtensionScheme) && strings.EqualFold(u.Host, e.id)
}

// webstoreHost returns the host of the configured gallery.
func (e *Extension) webstoreHost() string {
	u, err := url.Parse(e.settings.WebstoreURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// GetIconURL returns the URL of the icon for size, or nil.
func (e *Extension) GetIconURL(size int, match IconMatch) *url.URL {
	path := e.icons.Get(size, match)
	if path == "" {
		return nil
	}
	return e.GetResourceURL(path)
}

// GetIconResource returns the icon file for size.
func (e *Extension) GetIconResource(size int, match IconMatch) Resource {
	path := e.icons.Get(size, match)
	if path == "" {
		return Resource{}
	}
	return e.GetResource(path)
}

// GetBrowserImages returns every image path the browser may decode for
// this package, sorted and without duplicates.
func (e *Extension) GetBrowserImages() []string {
	seen := make(map[string]struct{})
	add := func(p string) {
		if p != "" {
			seen[p] = struct{}{}
		}
	}
	for _, p := range e.icons.Map() {
		add(p)
	}
	if e.theme != nil {
		for _, p := range e.theme.Images {
			add(p)
		}
	}
	for _, a := range []*Action{e.pageAction, e.browserAction} {
		if a == nil {
			continue
		}
		for _, p := range a.IconPaths {
			add(p)
		}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// SetCachedImage stores a decoded image of source. Images decoded at the
// size of the file are kept under that size regardless of how they are
// later requested.
func (e *Extension) SetCachedImage(source Resource, img image.Image, originalSize image.Point) {
	if img == nil {
		return
	}
	actual := img.Bounds().Size()
	key := imageCacheKey{path: source.RelativePath}
	if actual != originalSize {
		key.size = sizeString(actual)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.images == nil {
		e.images = make(imageCache)
	}
	e.images[key] = img
}

// HasCachedImage reports whether GetCachedImage would find an image.
func (e *Extension) HasCachedImage(source Resource, maxSize image.Point) bool {
	return e.GetCachedImage(source, maxSize) != nil
}

// GetCachedImage returns an image of source no larger than maxSize: one
// cached at exactly maxSize, else the original if it fits. It returns nil
// when neither exists.
func (e *Extension) GetCachedImage(source Resource, maxSize image.Point) image.Image {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if img, ok := e.images[imageCacheKey{path: source.RelativePath, size: sizeString(maxSize)}]; ok {
		return img
	}
	if img, ok := e.images[imageCacheKey{path: source.RelativePath}]; ok {
		if sz := img.Bounds().Size(); sz.X <= maxSize.X && sz.Y <= maxSize.Y {
			return img
		}
	}
	return nil
}

func sizeString(p image.Point) string {
	return strconv.Itoa(p.X) + "x" + strconv.Itoa(p.Y)
}
