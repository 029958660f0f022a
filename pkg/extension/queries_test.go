// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"errors"
	"image"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Crystalnix/BitPop-sub015/pkg/permissions"
	"github.com/Crystalnix/BitPop-sub015/pkg/urlpattern"
	"github.com/Crystalnix/BitPop-sub015/pkg/userscript"

	"golang.org/x/exp/slices"
)

func TestCanExecuteScriptOnPage(t *testing.T) {
	t.Parallel()

	ext := mustLoad(t, baseManifest(map[string]any{
		"permissions": []any{"http://www.example.com/*", "https://chrome.google.com/*"},
	}))

	script := &userscript.Script{URLPatterns: urlpattern.NewSet(urlpattern.MustParse(ContentScriptSchemes, "http://scripted.example.com/*"))}

	tests := []struct {
		name    string
		url     string
		script  *userscript.Script
		wantMsg string
	}{
		{name: "explicit host", url: "http://www.example.com/page"},
		{name: "no host", url: "http://other.com/",
			wantMsg: FormatErrorMessage(MsgCannotAccessPage, "http://other.com/")},
		{name: "gallery", url: "https://chrome.google.com/webstore/detail/x", wantMsg: MsgCannotScriptGallery},
		{name: "chrome page", url: "chrome://settings/",
			wantMsg: FormatErrorMessage(MsgCannotAccessPage, "chrome://settings/")},
		{name: "script match", url: "http://scripted.example.com/a", script: script},
		{name: "script miss", url: "http://www.example.com/page", script: script,
			wantMsg: FormatErrorMessage(MsgCannotAccessPage, "http://www.example.com/page")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ext.CanExecuteScriptOnPage(mustParseURL(t, tt.url), tt.script)
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("CanExecuteScriptOnPage(%q) = %v", tt.url, err)
				}
				return
			}
			var ae *AccessError
			if !errors.As(err, &ae) || ae.Message != tt.wantMsg {
				t.Fatalf("CanExecuteScriptOnPage(%q) = %v, want %q", tt.url, err, tt.wantMsg)
			}
			if !errors.Is(err, ErrAccessDenied) {
				t.Error("error should wrap ErrAccessDenied")
			}
		})
	}

	if err := ext.CanExecuteScriptOnPage(nil, nil); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("nil URL = %v", err)
	}
}

func TestScriptingGalleryAllowed(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.AllowScriptingGallery = true
	ext := mustLoad(t, baseManifest(map[string]any{
		"permissions": []any{"https://chrome.google.com/*"},
	}), WithSettings(s))
	if err := ext.CanExecuteScriptOnPage(mustParseURL(t, "https://chrome.google.com/webstore"), nil); err != nil {
		t.Errorf("CanExecuteScriptOnPage() = %v", err)
	}
}

func TestScriptingWhitelistReachesChromePages(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.ScriptingWhitelist = []string{testID}
	ext := mustLoad(t, baseManifest(map[string]any{
		"permissions": []any{"chrome://*/*", "https://chrome.google.com/*"},
	}), WithSettings(s), WithExplicitID(testID))

	if !ext.CanExecuteScriptEverywhere() {
		t.Fatal("CanExecuteScriptEverywhere() = false")
	}
	for _, raw := range []string{"chrome://settings/", "https://chrome.google.com/webstore"} {
		if err := ext.CanExecuteScriptOnPage(mustParseURL(t, raw), nil); err != nil {
			t.Errorf("CanExecuteScriptOnPage(%q) = %v", raw, err)
		}
	}
}

func TestCanCaptureVisiblePage(t *testing.T) {
	t.Parallel()

	ext := mustLoad(t, baseManifest(map[string]any{
		"permissions": []any{"http://www.example.com/*"},
	}), WithExplicitID(testID))

	tests := []struct {
		url     string
		allowed bool
	}{
		{"http://www.example.com/", true},
		{"chrome-extension://" + testID + "/popup.html", true},
		{"chrome-extension://bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb/popup.html", false},
		{"http://other.com/", false},
		{"chrome://settings/", false},
	}
	for _, tt := range tests {
		err := ext.CanCaptureVisiblePage(mustParseURL(t, tt.url))
		if (err == nil) != tt.allowed {
			t.Errorf("CanCaptureVisiblePage(%q) = %v, allowed %v", tt.url, err, tt.allowed)
		}
	}
}

func TestOverlapsWithOrigin(t *testing.T) {
	t.Parallel()

	app := mustLoad(t, appManifest(map[string]any{
		"urls":   []any{"http://www.example.com/mail/"},
		"launch": map[string]any{"web_url": "http://www.example.com/mail/"},
	}, nil), WithExplicitID(testID))
	plain := mustLoad(t, baseManifest(nil), WithExplicitID(testID))

	tests := []struct {
		ext    *Extension
		origin string
		want   bool
	}{
		{app, "http://www.example.com", true},
		{app, "https://www.example.com", false},
		{app, "http://other.example.com", false},
		{app, "chrome-extension://" + testID, true},
		{plain, "http://www.example.com", false},
		{plain, "chrome-extension://" + testID, true},
		{plain, "ftp://www.example.com", false},
	}
	for _, tt := range tests {
		if got := tt.ext.OverlapsWithOrigin(mustParseURL(t, tt.origin)); got != tt.want {
			t.Errorf("OverlapsWithOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
	if app.OverlapsWithOrigin(nil) {
		t.Error("OverlapsWithOrigin(nil) = true")
	}
}

func TestHomepageURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		extra       map[string]any
		opts        []Option
		want        string
		fromGallery bool
	}{
		{name: "declared", extra: map[string]any{"homepage_url": "http://www.example.com/home"},
			want: "http://www.example.com/home"},
		{name: "gallery", extra: map[string]any{"update_url": GalleryUpdateURL},
			want: DefaultWebstoreURL + "/detail/" + testID, fromGallery: true},
		{name: "insecure gallery", extra: map[string]any{"update_url": GalleryUpdateURLInsecure},
			want: DefaultWebstoreURL + "/detail/" + testID, fromGallery: true},
		{name: "custom gallery", extra: map[string]any{"update_url": GalleryUpdateURL},
			opts: []Option{WithSettings(Settings{WebstoreURL: "https://store.example.com/"})},
			want: "https://store.example.com/detail/" + testID, fromGallery: true},
		{name: "self hosted", extra: map[string]any{"update_url": "https://updates.example.com/crx"}},
		{name: "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ext := mustLoad(t, baseManifest(tt.extra), append([]Option{WithExplicitID(testID)}, tt.opts...)...)
			got := ""
			if u := ext.GetHomepageURL(); u != nil {
				got = u.String()
			}
			if got != tt.want {
				t.Errorf("GetHomepageURL() = %q, want %q", got, tt.want)
			}
			if ext.UpdatesFromGallery() != tt.fromGallery {
				t.Errorf("UpdatesFromGallery() = %v", ext.UpdatesFromGallery())
			}
		})
	}
}

func TestResources(t *testing.T) {
	t.Parallel()

	ext := mustLoad(t, baseManifest(nil), WithExplicitID(testID))

	if u := ext.GetResourceURL("/img/a.png"); u == nil || u.String() != "chrome-extension://"+testID+"/img/a.png" {
		t.Errorf("GetResourceURL() = %v", u)
	}
	if got := ext.URL().String(); got != "chrome-extension://"+testID+"/" {
		t.Errorf("URL() = %q", got)
	}

	r := ext.GetResource("img/a.png")
	if r.IsEmpty() || r.FilePath() != filepath.Join(testPath, "img", "a.png") {
		t.Errorf("GetResource() = %+v", r)
	}
	for _, rel := range []string{"", "../secret", "img/../../secret"} {
		if got := ext.GetResource(rel); !got.IsEmpty() || got.FilePath() != "" {
			t.Errorf("GetResource(%q) = %+v, want empty", rel, got)
		}
	}
}

func TestIsResourceWebAccessible(t *testing.T) {
	t.Parallel()

	legacy := mustLoad(t, baseManifest(nil))
	modern := mustLoad(t, baseManifest(map[string]any{"manifest_version": 2}))
	declared := mustLoad(t, baseManifest(map[string]any{
		"manifest_version":         2,
		"web_accessible_resources": []any{"img/*.png", "/fonts/*", "what?.html", "img/[a.png"},
	}))
	empty := mustLoad(t, baseManifest(map[string]any{"web_accessible_resources": []any{}}))

	tests := []struct {
		name string
		ext  *Extension
		rel  string
		want bool
	}{
		{"legacy exposes all", legacy, "anything.js", true},
		{"modern exposes none", modern, "anything.js", false},
		{"glob", declared, "img/a.png", true},
		{"leading slash", declared, "/img/a.png", true},
		{"star crosses directories", declared, "img/sub/a.png", true},
		{"suffix still required", declared, "img/sub/a.gif", false},
		{"nested directory", declared, "fonts/latin/a.woff", true},
		{"question mark is literal", declared, "what?.html", true},
		{"question mark matches nothing else", declared, "whatX.html", false},
		{"brackets are literal", declared, "img/[a.png", true},
		{"unlisted", declared, "background.js", false},
		{"declared empty list", empty, "anything.js", false},
	}
	for _, tt := range tests {
		if got := tt.ext.IsResourceWebAccessible(tt.rel); got != tt.want {
			t.Errorf("%s: IsResourceWebAccessible(%q) = %v, want %v", tt.name, tt.rel, got, tt.want)
		}
	}
}

func TestIconQueries(t *testing.T) {
	t.Parallel()

	ext := mustLoad(t, baseManifest(map[string]any{
		"icons":          map[string]any{"16": "icon16.png", "48": "/icon48.png"},
		"browser_action": map[string]any{"icons": []any{"ba.png", "icon16.png"}},
	}), WithExplicitID(testID))

	if u := ext.GetIconURL(IconMedium, MatchExactly); u == nil || u.Path != "/icon48.png" {
		t.Errorf("GetIconURL(48) = %v", u)
	}
	if u := ext.GetIconURL(IconLarge, MatchExactly); u != nil {
		t.Errorf("GetIconURL(128) = %v, want nil", u)
	}
	if r := ext.GetIconResource(IconSmall, MatchSmaller); r.RelativePath != "icon16.png" {
		t.Errorf("GetIconResource(32, smaller) = %+v", r)
	}
	if r := ext.GetIconResource(IconLarge, MatchBigger); !r.IsEmpty() {
		t.Errorf("GetIconResource(128, bigger) = %+v", r)
	}

	want := []string{"ba.png", "icon16.png", "icon48.png"}
	if got := ext.GetBrowserImages(); !slices.Equal(got, want) {
		t.Errorf("GetBrowserImages() = %v, want %v", got, want)
	}
}

func TestImageCache(t *testing.T) {
	t.Parallel()

	ext := mustLoad(t, baseManifest(nil))
	icon := ext.GetResource("icon.png")
	original := image.NewRGBA(image.Rect(0, 0, 48, 48))
	scaled := image.NewRGBA(image.Rect(0, 0, 16, 16))

	if ext.HasCachedImage(icon, image.Pt(48, 48)) {
		t.Fatal("cache should start empty")
	}

	ext.SetCachedImage(icon, original, image.Pt(48, 48))
	ext.SetCachedImage(icon, scaled, image.Pt(48, 48))
	ext.SetCachedImage(icon, nil, image.Pt(48, 48))

	tests := []struct {
		name    string
		maxSize image.Point
		want    image.Image
	}{
		{"exact scaled size", image.Pt(16, 16), scaled},
		{"original fits", image.Pt(128, 128), original},
		{"original exact", image.Pt(48, 48), original},
		{"too small for either", image.Pt(32, 32), nil},
	}
	for _, tt := range tests {
		if got := ext.GetCachedImage(icon, tt.maxSize); got != tt.want {
			t.Errorf("%s: GetCachedImage(%v) = %v", tt.name, tt.maxSize, got)
		}
	}
	if ext.HasCachedImage(ext.GetResource("other.png"), image.Pt(128, 128)) {
		t.Error("images are cached per resource")
	}
}

func TestActivePermissions(t *testing.T) {
	t.Parallel()

	ext := mustLoad(t, baseManifest(map[string]any{"permissions": []any{"tabs", "http://www.example.com/*"}}))

	if !ext.ActivePermissions().Equal(ext.RequiredPermissions()) {
		t.Error("active permissions should start as the required ones")
	}
	want := []string{"Your data on www.example.com", "Your tabs and browsing activity"}
	if got := ext.GetPermissionMessageStrings(); !slices.Equal(got, want) {
		t.Errorf("GetPermissionMessageStrings() = %v, want %v", got, want)
	}
	if got := ext.GetPermissionMessages(); len(got) != 2 || got[1].ID != permissions.MessageTabs {
		t.Errorf("GetPermissionMessages() = %v", got)
	}
	if !ext.HasAPIPermissionForFunction("tabs.create") || ext.HasAPIPermissionForFunction("bookmarks.get") {
		t.Error("unexpected function access")
	}

	ext.SetActivePermissions(nil)
	if !ext.ActivePermissions().IsEmpty() || ext.HasAPIPermission(permissions.Tabs) {
		t.Error("a nil set should revoke everything")
	}
	if ext.HasHostPermission(mustParseURL(t, "http://www.example.com/")) {
		t.Error("host access should be revoked")
	}
	if ext.RequiredPermissions().IsEmpty() {
		t.Error("revoking must not touch the required set")
	}

	granted := permissions.NewSet(ext.Registry(), []permissions.ID{permissions.Bookmarks}, urlpattern.Set{}, urlpattern.Set{})
	ext.SetActivePermissions(granted)
	if !ext.HasAPIPermission(permissions.Bookmarks) {
		t.Error("SetActivePermissions() did not apply")
	}
}

func TestConcurrentPermissionAccess(t *testing.T) {
	t.Parallel()

	ext := mustLoad(t, baseManifest(map[string]any{"permissions": []any{"tabs"}}))
	required := ext.RequiredPermissions()
	icon := ext.GetResource("icon.png")
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if i%2 == 0 {
					ext.SetActivePermissions(required)
					ext.SetCachedImage(icon, img, image.Pt(16, 16))
				} else {
					ext.HasAPIPermission(permissions.Tabs)
					ext.GetCachedImage(icon, image.Pt(16, 16))
				}
			}
		}()
	}
	wg.Wait()

	if !ext.HasAPIPermission(permissions.Tabs) {
		t.Error("tabs should still be granted")
	}
}

func TestIsPrivilegeIncrease(t *testing.T) {
	t.Parallel()

	reg := permissions.NewRegistry()
	hosts := func(patterns ...string) urlpattern.Set {
		var s urlpattern.Set
		for _, p := range patterns {
			s.Add(urlpattern.MustParse(HostPermissionSchemes, p))
		}
		return s
	}
	set := func(apis []permissions.ID, h urlpattern.Set) *permissions.Set {
		return permissions.NewSet(reg, apis, h, urlpattern.Set{})
	}

	tabs := set([]permissions.ID{permissions.Tabs}, urlpattern.Set{})
	tabsAndHost := set([]permissions.ID{permissions.Tabs}, hosts("http://www.example.com/*"))
	allHosts := set(nil, hosts("<all_urls>"))
	plugin := set([]permissions.ID{permissions.Plugin}, urlpattern.Set{})
	silent := set([]permissions.ID{permissions.Notifications}, urlpattern.Set{})

	tests := []struct {
		name               string
		granted, requested *permissions.Set
		want               bool
	}{
		{"same", tabs, tabs, false},
		{"new host", tabs, tabsAndHost, true},
		{"fewer", tabsAndHost, tabs, false},
		{"all hosts covers a host", allHosts, set(nil, hosts("http://www.example.com/*")), false},
		{"to all hosts", tabsAndHost, allHosts, true},
		{"full access", tabs, plugin, true},
		{"from full access", plugin, tabsAndHost, false},
		{"api without warning", tabs, set([]permissions.ID{permissions.Tabs, permissions.Notifications}, urlpattern.Set{}), false},
		{"nil granted", nil, tabs, true},
		{"nil granted silent request", nil, silent, false},
		{"nil requested", tabs, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsPrivilegeIncrease(tt.granted, tt.requested); got != tt.want {
				t.Errorf("IsPrivilegeIncrease() = %v, want %v", got, tt.want)
			}
		})
	}
}
