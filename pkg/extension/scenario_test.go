// SPDX-License-Identifier: MPL-2.0

package extension_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/Crystalnix/BitPop-sub015/pkg/extension"
	"github.com/Crystalnix/BitPop-sub015/pkg/extensionid"
	"github.com/Crystalnix/BitPop-sub015/pkg/manifest"
	"github.com/Crystalnix/BitPop-sub015/pkg/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioPath = "/home/user/extensions/scenario"

func parseManifest(t *testing.T, src string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(src))
	require.NoError(t, err)
	return m
}

func TestScenarioTabsAndHost(t *testing.T) {
	t.Parallel()

	m := parseManifest(t, `{
		"name": "Tab Helper",
		"version": "1.0",
		"permissions": ["tabs", "http://www.example.com/*"]
	}`)

	ext, err := extension.New(scenarioPath, extension.LocationInternal, m, extension.NoFlags)
	require.NoError(t, err)

	assert.Equal(t, manifest.TypeExtension, ext.Type())
	assert.True(t, extensionid.IsValid(ext.ID()))
	assert.True(t, ext.HasAPIPermission(permissions.Tabs))
	assert.False(t, ext.HasAPIPermission(permissions.Bookmarks))
	assert.True(t, ext.HasHostPermission(mustURL(t, "http://www.example.com/index.html")))
	assert.False(t, ext.HasHostPermission(mustURL(t, "http://www.google.com/")))
	assert.False(t, ext.HasEffectiveAccessToAllHosts())
	assert.Equal(t, []string{
		"Your data on www.example.com",
		"Your tabs and browsing activity",
	}, ext.GetPermissionMessageStrings())

	assert.NoError(t, ext.CanExecuteScriptOnPage(mustURL(t, "http://www.example.com/"), nil))
	err = ext.CanExecuteScriptOnPage(mustURL(t, "http://www.google.com/"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, extension.ErrAccessDenied)
}

func TestScenarioExperimentalWithoutFlag(t *testing.T) {
	t.Parallel()

	m := parseManifest(t, `{
		"name": "Experimenter",
		"version": "1.0",
		"permissions": ["experimental"]
	}`)

	_, err := extension.New(scenarioPath, extension.LocationInternal, m, extension.NoFlags)
	require.Error(t, err)
	assert.ErrorIs(t, err, extension.ErrInvalidManifest)
	assert.Equal(t, extension.MsgExperimentalFlagRequired, err.Error())

	var le *extension.LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "permissions", le.Key)

	settings := extension.DefaultSettings()
	settings.ExperimentalAPIs = true
	ext, err := extension.New(scenarioPath, extension.LocationInternal, m, extension.NoFlags,
		extension.WithSettings(settings))
	require.NoError(t, err)
	assert.True(t, ext.HasAPIPermission(permissions.Experimental))
}

func TestScenarioContentScriptWithoutFiles(t *testing.T) {
	t.Parallel()

	m := parseManifest(t, `{
		"name": "Empty Script",
		"version": "1.0",
		"content_scripts": [{"matches": ["http://*/*"]}]
	}`)

	_, err := extension.New(scenarioPath, extension.LocationInternal, m, extension.NoFlags)
	require.Error(t, err)
	assert.Equal(t, "At least one js or css file is required for 'content_scripts[0]'.", err.Error())
}

func TestScenarioComponentBeatsInternal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, extension.LocationComponent,
		extension.HigherPriorityLocation(extension.LocationInternal, extension.LocationComponent))
	assert.Equal(t, extension.LocationComponent,
		extension.HigherPriorityLocation(extension.LocationComponent, extension.LocationInternal))

	m := parseManifest(t, `{
		"name": "Built In",
		"version": "2.0",
		"permissions": ["metricsPrivate", "chrome://settings/*"]
	}`)

	_, err := extension.New(scenarioPath, extension.LocationInternal, m, extension.NoFlags)
	require.Error(t, err)

	ext, err := extension.New(scenarioPath, extension.LocationComponent, m, extension.NoFlags)
	require.NoError(t, err)
	assert.True(t, ext.HasAPIPermission(permissions.MetricsPrivate))
	assert.True(t, ext.HasHostPermission(mustURL(t, "chrome://settings/content")))
	assert.True(t, ext.CanExecuteScriptEverywhere())
}

func TestScenarioHostedAppAndTheme(t *testing.T) {
	t.Parallel()

	app := parseManifest(t, `{
		"name": "Mail",
		"version": "3.1",
		"app": {
			"urls": ["https://mail.example.com/"],
			"launch": {"web_url": "https://mail.example.com/inbox", "container": "window", "width": 800}
		},
		"permissions": ["notifications", "geolocation"]
	}`)
	ext, err := extension.New(scenarioPath, extension.LocationInternal, app, extension.NoFlags)
	require.NoError(t, err)
	assert.True(t, ext.IsHostedApp())
	assert.Equal(t, extension.LaunchWindow, ext.LaunchContainer())
	assert.True(t, ext.OverlapsWithOrigin(mustURL(t, "https://mail.example.com")))
	assert.Equal(t, []string{"Your physical location"}, ext.GetPermissionMessageStrings())

	theme := parseManifest(t, `{
		"name": "Dark",
		"version": "1",
		"theme": {"colors": {"frame": [0, 0, 0]}, "images": {"theme_frame": "frame.png"}}
	}`)
	ext, err = extension.New(scenarioPath, extension.LocationInternal, theme, extension.NoFlags)
	require.NoError(t, err)
	assert.True(t, ext.IsTheme())
	assert.Equal(t, []string{"frame.png"}, ext.GetBrowserImages())
	assert.True(t, ext.RequiredPermissions().IsEmpty())
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}
