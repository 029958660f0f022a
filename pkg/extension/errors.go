// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"errors"
	"strings"
)

// Construction error messages. Each "*" is a placeholder filled in order by
// FormatErrorMessage.
const (
	MsgInvalidManifest        = "Manifest file is invalid."
	MsgInvalidManifestVersion = "Invalid value for 'manifest_version'. Must be an integer greater than zero."
	MsgModernManifestRequired = "The 'manifest_version' key must be present and set to 2 (without quotes)."

	MsgInvalidKey                = "Value 'key' is missing or invalid."
	MsgInvalidID                 = "Invalid extension id '*'."
	MsgInvalidVersion            = "Required value 'version' is missing or invalid. It must be between 1-4 dot-separated integers each between 0 and 65535."
	MsgInvalidName               = "Required value 'name' is missing or invalid."
	MsgInvalidDescription        = "Invalid value for 'description'."
	MsgInvalidHomepageURL        = "Invalid value for homepage url: '[*]'."
	MsgInvalidUpdateURL          = "Invalid value for update url: '[*]'."
	MsgInvalidMinimumHostVersion = "Invalid value for 'minimum_chrome_version'."
	MsgHostVersionTooLow         = "This extension requires * version * or greater."
	MsgInvalidIcons              = "Invalid value for 'icons'."
	MsgInvalidIconPath           = "Invalid value for 'icons[\"*\"]'."

	MsgThemesCannotContainExtensions = "A theme cannot contain extensions code."
	MsgInvalidTheme                  = "Invalid value for 'theme'."
	MsgInvalidThemeImages            = "Invalid value for theme images - images must be strings."
	MsgInvalidThemeColors            = "Invalid value for theme colors - colors must be integers"
	MsgInvalidThemeTints             = "Invalid value for theme images - tints must be decimal numbers."

	MsgInvalidPlatformApp      = "Invalid value for 'platform_app'."
	MsgPlatformAppFlagRequired = "Platform apps require engine.enable_platform_apps."
	MsgInvalidApp              = "Invalid value for 'app'."

	MsgInvalidWebURLs               = "Invalid value for 'app.urls'."
	MsgInvalidWebURL                = "Invalid value for 'app.urls[*]': *"
	MsgCannotClaimAllURLsInExtent   = "Cannot claim all URLs in an extent."
	MsgCannotClaimAllHostsInExtent  = "Cannot claim all hosts ('*') in an extent."
	MsgNoWildCardsInPaths           = "Wildcards are not allowed in extent URL pattern paths."
	MsgInvalidLaunchLocalPath       = "Invalid value for 'app.launch.local_path'."
	MsgInvalidLaunchWebURL          = "Invalid value for 'app.launch.web_url'."
	MsgLaunchPathAndURLAreExclusive = "The 'app.launch.local_path' and 'app.launch.web_url' keys cannot both be set."
	MsgLaunchURLRequired            = "Either 'app.launch.local_path' or 'app.launch.web_url' is required."
	MsgInvalidLaunchContainer       = "Invalid value for 'app.launch.container'."
	MsgInvalidLaunchWidthContainer  = "Invalid container type for 'app.launch.width'. 'app.launch.container' must be 'panel' or 'window'."
	MsgInvalidLaunchHeightContainer = "Invalid container type for 'app.launch.height'. 'app.launch.container' must be 'panel' or 'window'."
	MsgInvalidLaunchWidth           = "Invalid value for 'app.launch.width'."
	MsgInvalidLaunchHeight          = "Invalid value for 'app.launch.height'."
	MsgInvalidIsolation             = "Invalid value for 'app.isolation'."
	MsgInvalidIsolationValue        = "Invalid value for 'app.isolation[*]'."

	MsgHostedAppsCannotIncludeExtensionFeatures = "Hosted apps cannot use the extension feature '*'."

	MsgInvalidPermissions         = "Invalid value for 'permissions'."
	MsgInvalidPermission          = "Invalid value for 'permissions[*]'."
	MsgInvalidOptionalPermissions = "Invalid value for 'optional_permissions'."
	MsgInvalidOptionalPermission  = "Invalid value for 'optional_permissions[*]'."
	MsgInvalidPermissionScheme    = "Invalid scheme for '*[*]'."
	MsgPermissionNotAllowed       = "Access to permission '*' denied."
	MsgPermissionCannotBeOptional = "Permission '*' cannot be listed as optional."
	MsgExperimentalFlagRequired   = "Loading extensions with 'experimental' permission requires engine.experimental_apis to be enabled."

	MsgInvalidPlugins       = "Invalid value for 'plugins'."
	MsgInvalidPluginsPath   = "Invalid value for 'plugins[*].path'."
	MsgInvalidPluginsPublic = "Invalid value for 'plugins[*].public'."
	MsgPluginsNotAllowed    = "Plugins are not allowed in manifest version 2 without the 'experimental' permission."

	MsgInvalidContentScriptsList = "Invalid value for 'content_scripts'."
	MsgInvalidContentScript      = "Invalid value for 'content_scripts[*]'."
	MsgInvalidRunAt              = "Invalid value for 'content_scripts[*].run_at'."
	MsgInvalidAllFrames          = "Invalid value for 'content_scripts[*].all_frames'."
	MsgInvalidMatches            = "Required value 'content_scripts[*].matches' is missing or invalid."
	MsgInvalidMatchCount         = "Invalid value for 'content_scripts[*].matches'. There must be at least one match specified."
	MsgInvalidMatch              = "Invalid value for 'content_scripts[*].matches[*]': *"
	MsgInvalidExcludeMatches     = "Invalid value for 'content_scripts[*].exclude_matches'."
	MsgInvalidExcludeMatch       = "Invalid value for 'content_scripts[*].exclude_matches[*]': *"
	MsgInvalidGlobList           = "Invalid value for 'content_scripts[*].*'."
	MsgInvalidGlob               = "Invalid value for 'content_scripts[*].*[*]'."
	MsgInvalidJSList             = "Required value 'content_scripts[*].js' is invalid."
	MsgInvalidCSSList            = "Required value 'content_scripts[*].css' is invalid."
	MsgMissingFile               = "At least one js or css file is required for 'content_scripts[*]'."
	MsgInvalidJS                 = "Invalid value for 'content_scripts[*].js[*]'."
	MsgInvalidCSS                = "Invalid value for 'content_scripts[*].css[*]'."
	MsgExpectString              = "Expect string value."

	MsgInvalidPageActionsList         = "Invalid value for 'page_actions'."
	MsgInvalidPageActionsListSize     = "Invalid value for 'page_actions'. There can be at most one page action."
	MsgInvalidPageAction              = "Invalid value for 'page_action'."
	MsgInvalidPageActionIconPaths     = "Invalid value for 'page_action.icons'."
	MsgInvalidPageActionIconPath      = "Invalid value for 'default_icon'."
	MsgInvalidPageActionID            = "Required value 'id' is missing or invalid."
	MsgInvalidPageActionDefaultTitle  = "Invalid value for 'default_title'."
	MsgInvalidPageActionName          = "Invalid value for 'page_action.name'."
	MsgInvalidPageActionOldAndNewKeys = "Key \"*\" is deprecated. Key \"*\" has the same meaning. You can not use both."
	MsgInvalidPageActionPopup         = "Invalid type for page action popup."
	MsgInvalidPageActionPopupPath     = "Invalid value for page action popup path [*]."
	MsgInvalidBrowserAction           = "Invalid value for 'browser_action'."

	MsgInvalidFileBrowserHandler = "Invalid value for 'file_browser_handlers'."
	MsgInvalidFileFiltersList    = "Invalid value for 'file_filters'."
	MsgInvalidFileFilterValue    = "Invalid value for 'file_filters[*]'."
	MsgInvalidURLPatternError    = "Invalid url pattern '*'"

	MsgInvalidBackground            = "Invalid value for 'background_page'."
	MsgInvalidBackgroundScripts     = "Invalid value for 'background.scripts'."
	MsgInvalidBackgroundScript      = "Invalid value for 'background.scripts[*]'."
	MsgInvalidBackgroundCombination = "The background.page and background.scripts properties cannot be used at the same time."
	MsgInvalidBackgroundPersistent  = "Invalid value for 'background.persistent'."
	MsgBackgroundPageLegacyKey      = "The 'background_page' key is not supported in manifest version 2. Use 'background.page' instead."
	MsgBackgroundPermissionNeeded   = "Hosted apps that use 'background_page' must have the 'background' permission."
	MsgInvalidBackgroundInHostedApp = "Invalid value for 'background_page'. Hosted apps must specify an absolute HTTPS URL for the background page."

	MsgInvalidOptionsPage                   = "Invalid value for 'options_page'."
	MsgInvalidOptionsPageInHostedApp        = "Invalid value for 'options_page'. Hosted apps must specify an absolute URL."
	MsgInvalidOptionsPageExpectURLInPackage = "Invalid value for 'options_page'. Packaged apps and extensions must use a relative path."
	MsgInvalidDefaultLocale                 = "Invalid value for default locale - locale name must be a string."
	MsgInvalidChromeURLOverrides            = "Invalid value for 'chrome_url_overrides'."
	MsgMultipleOverrides                    = "An extension cannot override more than one page."
	MsgInvalidOmniboxKeyword                = "Invalid value for 'omnibox.keyword'."
	MsgInvalidDevToolsPage                  = "Invalid value for 'devtools_page'."
	MsgInvalidIncognitoBehavior             = "Invalid value for 'incognito'."
	MsgOneUISurfaceOnly                     = "Only one of 'browser_action', 'page_action', and 'app' can be specified."

	MsgInvalidContentSecurityPolicy  = "Invalid value for 'content_security_policy'."
	MsgInsecureContentSecurityPolicy = "Invalid value for 'content_security_policy': 'script-src' and 'object-src' may only list secure sources."

	MsgInvalidWebAccessibleResourcesList = "Invalid value for 'web_accessible_resources'."
	MsgInvalidWebAccessibleResource      = "Invalid value for 'web_accessible_resources[*]'."

	MsgCannotScriptGallery = "The extensions gallery cannot be scripted."
	MsgCannotAccessPage    = "Cannot access contents of url \"*\". Extension manifest must request permission to access this host."
)

// ErrInvalidManifest is the sentinel wrapped by every LoadError.
var ErrInvalidManifest = errors.New("invalid extension manifest")

// ErrAccessDenied is the sentinel wrapped by every AccessError.
var ErrAccessDenied = errors.New("access denied")

type (
	// LoadError reports why an extension could not be constructed. Key is
	// the top-level manifest key being processed, when there is one.
	LoadError struct {
		Message string
		Key     string
	}

	// AccessError reports a denied page access query.
	AccessError struct {
		Message string
		URL     string
	}
)

// Error implements the error interface.
func (e *LoadError) Error() string { return e.Message }

// Unwrap returns ErrInvalidManifest for errors.Is() compatibility.
func (e *LoadError) Unwrap() error { return ErrInvalidManifest }

// Error implements the error interface.
func (e *AccessError) Error() string { return e.Message }

// Unwrap returns ErrAccessDenied for errors.Is() compatibility.
func (e *AccessError) Unwrap() error { return ErrAccessDenied }

// FormatErrorMessage replaces the "*" placeholders of format with args, in
// order. Text substituted for one placeholder is never scanned for the next.
// Surplus placeholders are left as they are.
func FormatErrorMessage(format string, args ...string) string {
	if len(args) == 0 {
		return format
	}
	var sb strings.Builder
	rest := format
	for _, arg := range args {
		i := strings.IndexByte(rest, '*')
		if i < 0 {
			break
		}
		sb.WriteString(rest[:i])
		sb.WriteString(arg)
		rest = rest[i+1:]
	}
	sb.WriteString(rest)
	return sb.String()
}

func loadError(key, format string, args ...string) *LoadError {
	return &LoadError{Message: FormatErrorMessage(format, args...), Key: key}
}
