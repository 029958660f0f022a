// SPDX-License-Identifier: MPL-2.0

package manifest

// Manifest keys. Nested keys are dotted paths relative to their parent
// dictionary unless noted otherwise.
const (
	KeyAllFrames               = "all_frames"
	KeyApp                     = "app"
	KeyBackground              = "background"
	KeyBackgroundPage          = "background.page"
	KeyBackgroundPageLegacy    = "background_page"
	KeyBackgroundPersistent    = "background.persistent"
	KeyBackgroundScripts       = "background.scripts"
	KeyBrowserAction           = "browser_action"
	KeyChromeURLOverrides      = "chrome_url_overrides"
	KeyContentScripts          = "content_scripts"
	KeyContentSecurityPolicy   = "content_security_policy"
	KeyConvertedFromUserScript = "converted_from_user_script"
	KeyCSS                     = "css"
	KeyCurrentLocale           = "current_locale"
	KeyDefaultLocale           = "default_locale"
	KeyDescription             = "description"
	KeyDevToolsPage            = "devtools_page"
	KeyExcludeGlobs            = "exclude_globs"
	KeyExcludeMatches          = "exclude_matches"
	KeyFileBrowserHandlers     = "file_browser_handlers"
	KeyFileFilters             = "file_filters"
	KeyHomepageURL             = "homepage_url"
	KeyIcons                   = "icons"
	KeyIncludeGlobs            = "include_globs"
	KeyIncognito               = "incognito"
	KeyIsolation               = "app.isolation"
	KeyJS                      = "js"
	KeyLaunch                  = "app.launch"
	KeyLaunchContainer         = "app.launch.container"
	KeyLaunchHeight            = "app.launch.height"
	KeyLaunchLocalPath         = "app.launch.local_path"
	KeyLaunchWebURL            = "app.launch.web_url"
	KeyLaunchWidth             = "app.launch.width"
	KeyManifestVersion         = "manifest_version"
	KeyMatches                 = "matches"
	KeyMinimumChromeVersion    = "minimum_chrome_version"
	KeyName                    = "name"
	KeyOmnibox                 = "omnibox"
	KeyOmniboxKeyword          = "omnibox.keyword"
	KeyOptionalPermissions     = "optional_permissions"
	KeyOptionsPage             = "options_page"
	KeyPageAction              = "page_action"
	KeyPageActions             = "page_actions"
	KeyPermissions             = "permissions"
	KeyPlatformApp             = "platform_app"
	KeyPlugins                 = "plugins"
	KeyPublicKey               = "key"
	KeyRunAt                   = "run_at"
	KeySignature               = "signature"
	KeyTheme                   = "theme"
	KeyUpdateURL               = "update_url"
	KeyVersion                 = "version"
	KeyWebAccessibleResources  = "web_accessible_resources"
	KeyWebURLs                 = "app.urls"

	// Keys inside an action dictionary.
	KeyActionDefaultIcon  = "default_icon"
	KeyActionDefaultPopup = "default_popup"
	KeyActionDefaultTitle = "default_title"
	KeyActionIcons        = "icons"
	KeyActionID           = "id"
	KeyActionName         = "name"
	KeyActionPopup        = "popup"
	KeyActionPopupPath    = "path"

	// Keys inside a plugin dictionary.
	KeyPluginPath   = "path"
	KeyPluginPublic = "public"

	// Keys inside a file browser handler dictionary.
	KeyHandlerID    = "id"
	KeyHandlerTitle = "default_title"
	KeyHandlerIcon  = "default_icon"
)

// Manifest values with fixed meaning.
const (
	ValueRunAtDocumentStart = "document_start"
	ValueRunAtDocumentEnd   = "document_end"
	ValueRunAtDocumentIdle  = "document_idle"

	ValueIncognitoSpanning = "spanning"
	ValueIncognitoSplit    = "split"

	ValueIsolatedStorage = "storage"

	ValueLaunchContainerTab    = "tab"
	ValueLaunchContainerPanel  = "panel"
	ValueLaunchContainerWindow = "window"

	ValueOverrideNewTab    = "newtab"
	ValueOverrideBookmarks = "bookmarks"
	ValueOverrideHistory   = "history"
)
