// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"net/url"
	"testing"

	"github.com/Crystalnix/BitPop-sub015/pkg/manifest"
	"github.com/Crystalnix/BitPop-sub015/pkg/permissions"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) = %v", raw, err)
	}
	return u
}

func hostedApp(extra map[string]any) map[string]any {
	values := baseManifest(map[string]any{
		"app": map[string]any{
			"urls":   []any{"http://www.example.com/"},
			"launch": map[string]any{"web_url": "http://www.example.com/"},
		},
	})
	for k, v := range extra {
		values[k] = v
	}
	return values
}

func TestPermissionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values map[string]any
		loc    Location
		flags  LoadFlags
		opts   []Option
		want   string
	}{
		{name: "not a list", values: baseManifest(map[string]any{"permissions": "tabs"}),
			want: MsgInvalidPermissions},
		{name: "optional not a list", values: baseManifest(map[string]any{"optional_permissions": "tabs"}),
			want: MsgInvalidOptionalPermissions},
		{name: "entry type", values: baseManifest(map[string]any{"permissions": []any{"tabs", 5}}),
			want: FormatErrorMessage(MsgInvalidPermission, "1")},
		{name: "optional entry type", values: baseManifest(map[string]any{"optional_permissions": []any{5}}),
			want: FormatErrorMessage(MsgInvalidOptionalPermission, "0")},
		{name: "experimental without flag", values: baseManifest(map[string]any{"permissions": []any{"experimental"}}),
			want: MsgExperimentalFlagRequired},
		{name: "component only", values: baseManifest(map[string]any{"permissions": []any{"metricsPrivate"}}),
			want: FormatErrorMessage(MsgPermissionNotAllowed, "metricsPrivate")},
		{name: "not whitelisted", values: baseManifest(map[string]any{"permissions": []any{"webstorePrivate"}}),
			want: FormatErrorMessage(MsgPermissionNotAllowed, "webstorePrivate")},
		{name: "cannot be optional", values: baseManifest(map[string]any{"optional_permissions": []any{"geolocation"}}),
			want: FormatErrorMessage(MsgPermissionCannotBeOptional, "geolocation")},
		{name: "type mismatch", values: baseManifest(map[string]any{"permissions": []any{"socket"}}),
			want: FormatErrorMessage(MsgPermissionNotAllowed, "socket")},
		{name: "hosted app strict mismatch", values: hostedApp(map[string]any{"permissions": []any{"tabs"}}),
			flags: StrictErrorChecks, want: FormatErrorMessage(MsgPermissionNotAllowed, "tabs")},
		{name: "chrome settings host", values: baseManifest(map[string]any{"permissions": []any{"chrome://settings/"}}),
			want: FormatErrorMessage(MsgInvalidPermissionScheme, "permissions", "0")},
		{name: "chrome thumb without experimental",
			values: baseManifest(map[string]any{"optional_permissions": []any{"http://a.com/", "chrome://thumb/"}}),
			want:   FormatErrorMessage(MsgInvalidPermissionScheme, "optional_permissions", "1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loc := tt.loc
			if loc == LocationInvalid {
				loc = LocationInternal
			}
			_, err := load(t, tt.values, loc, tt.flags, tt.opts...)
			if err == nil || err.Error() != tt.want {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestPermissionsAccepted(t *testing.T) {
	t.Parallel()

	experimental := DefaultSettings()
	experimental.ExperimentalAPIs = true
	allowlisted := DefaultSettings()
	allowlisted.ExperimentalAllowlist = []string{testID}

	tests := []struct {
		name   string
		values map[string]any
		loc    Location
		flags  LoadFlags
		opts   []Option
		wantID permissions.ID
	}{
		{name: "experimental by setting", values: baseManifest(map[string]any{"permissions": []any{"experimental"}}),
			opts: []Option{WithSettings(experimental)}, wantID: permissions.Experimental},
		{name: "experimental from webstore", values: baseManifest(map[string]any{"permissions": []any{"experimental"}}),
			flags: FromWebstore, wantID: permissions.Experimental},
		{name: "experimental allowlist", values: baseManifest(map[string]any{"permissions": []any{"experimental"}}),
			opts: []Option{WithSettings(allowlisted), WithExplicitID(testID)}, wantID: permissions.Experimental},
		{name: "experimental component", values: baseManifest(map[string]any{"permissions": []any{"experimental"}}),
			loc: LocationComponent, wantID: permissions.Experimental},
		{name: "component only for component", values: baseManifest(map[string]any{"permissions": []any{"metricsPrivate"}}),
			loc: LocationComponent, wantID: permissions.MetricsPrivate},
		{name: "whitelisted id", values: baseManifest(map[string]any{"permissions": []any{"webstorePrivate"}}),
			opts: []Option{WithExplicitID(permissions.WebstoreAppID)}, wantID: permissions.WebstorePrivate},
		{name: "alias", values: baseManifest(map[string]any{"permissions": []any{"windows"}}),
			wantID: permissions.Tabs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			loc := tt.loc
			if loc == LocationInvalid {
				loc = LocationInternal
			}
			ext, err := load(t, tt.values, loc, tt.flags, tt.opts...)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if !ext.HasAPIPermission(tt.wantID) {
				t.Errorf("HasAPIPermission(%v) = false", tt.wantID)
			}
		})
	}
}

func TestHostedAppDropsUnsupportedPermissions(t *testing.T) {
	t.Parallel()

	ext := mustLoad(t, hostedApp(map[string]any{"permissions": []any{"tabs", "notifications"}}))
	if ext.HasAPIPermission(permissions.Tabs) {
		t.Error("tabs should be dropped for a hosted app")
	}
	if !ext.HasAPIPermission(permissions.Notifications) {
		t.Error("notifications applies to hosted apps")
	}
	if !IsHostedAppTypeMismatchTolerated(manifest.TypeHostedApp, NoFlags) ||
		IsHostedAppTypeMismatchTolerated(manifest.TypeHostedApp, StrictErrorChecks) ||
		IsHostedAppTypeMismatchTolerated(manifest.TypeExtension, NoFlags) {
		t.Error("unexpected hosted app tolerance policy")
	}
}

func TestHostPermissions(t *testing.T) {
	t.Parallel()

	ext := mustLoad(t, baseManifest(map[string]any{
		"permissions": []any{"tabs", "http://www.example.com/foo/bar", "chrome://favicon/", "someFutureApi"},
	}))

	tests := []struct {
		url  string
		want bool
	}{
		{"http://www.example.com/", true},
		{"http://www.example.com/other/path", true},
		{"https://www.example.com/", false},
		{"http://other.com/", false},
		{"chrome://favicon/http://www.example.com/", true},
		{"chrome://settings/", false},
	}
	for _, tt := range tests {
		if got := ext.HasHostPermission(mustParseURL(t, tt.url)); got != tt.want {
			t.Errorf("HasHostPermission(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
	if ext.HasHostPermission(nil) {
		t.Error("HasHostPermission(nil) = true")
	}
	if got := ext.RequiredPermissions().APIs(); len(got) != 1 || got[0] != permissions.Tabs {
		t.Errorf("APIs() = %v, unknown entries should be skipped", got)
	}
}

func TestChromeThumbWithExperimental(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.ExperimentalAPIs = true
	ext := mustLoad(t, baseManifest(map[string]any{
		"permissions": []any{"experimental", "chrome://thumb/"},
	}), WithSettings(s))
	if !ext.HasHostPermission(mustParseURL(t, "chrome://thumb/http://www.google.com/")) {
		t.Error("thumb host should be granted to experimental extensions")
	}
}

func TestComponentMayRequestAnyChromeHost(t *testing.T) {
	t.Parallel()

	ext, err := load(t, baseManifest(map[string]any{"permissions": []any{"chrome://settings/*"}}), LocationComponent, NoFlags)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !ext.HasHostPermission(mustParseURL(t, "chrome://settings/search")) {
		t.Error("component extensions may reach chrome://settings")
	}
}

func TestFileAccess(t *testing.T) {
	t.Parallel()

	values := baseManifest(map[string]any{"permissions": []any{"file:///*"}})
	fileURL := "file:///home/user/doc.txt"

	denied, err := load(t, values, LocationInternal, NoFlags)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !denied.WantsFileAccess() {
		t.Error("WantsFileAccess() = false")
	}
	if denied.HasHostPermission(mustParseURL(t, fileURL)) {
		t.Error("file access should be masked without AllowFileAccess")
	}

	allowed, err := load(t, values, LocationInternal, AllowFileAccess)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !allowed.HasHostPermission(mustParseURL(t, fileURL)) {
		t.Error("file access should be granted with AllowFileAccess")
	}
}

func TestHostPermissionPorts(t *testing.T) {
	t.Parallel()

	values := baseManifest(map[string]any{"permissions": []any{"http://www.example.com:8080/"}})
	target := mustParseURL(t, "http://www.example.com/")

	lenient, err := load(t, values, LocationInternal, NoFlags)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !lenient.HasHostPermission(target) {
		t.Error("ports are ignored outside strict checking")
	}

	strict, err := load(t, values, LocationInternal, StrictErrorChecks)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if strict.HasHostPermission(target) {
		t.Error("a pattern with a port is not a host grant under strict checking")
	}
}

func TestImplicitPermissions(t *testing.T) {
	t.Parallel()

	ext := mustLoad(t, baseManifest(map[string]any{
		"plugins":       []any{map[string]any{"path": "plugin.dll"}},
		"devtools_page": "devtools.html",
		"content_scripts": []any{map[string]any{
			"matches": []any{"http://scripted.example.com/*"},
			"js":      []any{"script.js"},
		}},
	}))

	if !ext.HasAPIPermission(permissions.Plugin) {
		t.Error("plugins imply the plugin permission")
	}
	if !ext.HasAPIPermission(permissions.Devtools) {
		t.Error("devtools_page implies the devtools permission")
	}
	scripted := mustParseURL(t, "http://scripted.example.com/page")
	if ext.HasHostPermission(scripted) {
		t.Error("content script matches are not explicit host grants")
	}
	hosts := ext.GetEffectiveHostPermissions()
	if !hosts.MatchesURL(scripted) {
		t.Error("content script matches should be effective hosts")
	}
}

func TestOptionalPermissionsAreSeparate(t *testing.T) {
	t.Parallel()

	ext := mustLoad(t, baseManifest(map[string]any{
		"permissions":          []any{"tabs"},
		"optional_permissions": []any{"bookmarks", "http://optional.example.com/"},
	}))

	if ext.HasAPIPermission(permissions.Bookmarks) {
		t.Error("optional permissions are not active")
	}
	opt := ext.OptionalPermissions()
	if !opt.HasAPIPermission(permissions.Bookmarks) || opt.HasAPIPermission(permissions.Tabs) {
		t.Errorf("OptionalPermissions().APIs() = %v", opt.APIs())
	}
	if !opt.HasExplicitAccessToOrigin(mustParseURL(t, "http://optional.example.com/")) {
		t.Error("optional host missing")
	}
}

var permissionPool = []string{
	"tabs", "bookmarks", "history", "cookies", "notifications", "windows",
	"http://a.example.com/*", "https://*.example.org/path", "*://*/*",
	"<all_urls>", "chrome://favicon/", "file:///*", "unknownThing", "ftp://ftp.example.net/",
}

func TestParsePermissionsIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	genEntries := gen.SliceOf(gen.IntRange(0, len(permissionPool)-1)).Map(func(idx []int) []any {
		out := make([]any, len(idx))
		for i, j := range idx {
			out[i] = permissionPool[j]
		}
		return out
	})

	properties.Property("loading the same permissions twice yields equal sets", prop.ForAll(
		func(entries []any) bool {
			values := baseManifest(map[string]any{"permissions": entries})
			a, errA := New(testPath, LocationInternal, manifest.MustNew(values), NoFlags)
			b, errB := New(testPath, LocationInternal, manifest.MustNew(values), NoFlags)
			if errA != nil || errB != nil {
				return false
			}
			return a.RequiredPermissions().Equal(b.RequiredPermissions())
		},
		genEntries,
	))

	properties.Property("repeating the list changes nothing", prop.ForAll(
		func(entries []any) bool {
			once := baseManifest(map[string]any{"permissions": entries})
			twice := baseManifest(map[string]any{"permissions": append(append([]any{}, entries...), entries...)})
			a, errA := New(testPath, LocationInternal, manifest.MustNew(once), NoFlags)
			b, errB := New(testPath, LocationInternal, manifest.MustNew(twice), NoFlags)
			if errA != nil || errB != nil {
				return false
			}
			return a.RequiredPermissions().Equal(b.RequiredPermissions())
		},
		genEntries,
	))

	properties.TestingRun(t)
}
