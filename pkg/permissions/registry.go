// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"sort"
	"strings"

	"golang.org/x/exp/slices"
)

// Whitelisted app ids for the private permissions.
const (
	WebstoreAppID           = "ahfgeienlihckogmohjhadlkjgocpleb"
	EnterpriseWebstoreAppID = "afchcafgojfnemjkcbhfekplkmjaldaa"
	CloudPrintAppID         = "mfehgcgbbipghmhaebbjkhkflmhofpfj"
	CitrixAppID             = "haiffjcadagjlijoggckpgfnoeiflnem"
	CitrixBetaAppID         = "gnedhmakppccajfpfiihfcdlnpgomkcf"
	CitrixDevAppID          = "fjcibdnjlbfnbfdjneajpipnlcppleek"
	HTermAppID              = "pnhechapfaindjhompbnflcldabbghjo"
	HTermDevAppID           = "okddffdblfhhnmhodogpojmfkjmhinfp"
)

type (
	// Registry is the table of known API permissions. It is immutable after
	// NewRegistry returns and safe for concurrent use.
	Registry struct {
		byID   map[ID]*APIPermission
		byName map[string]*APIPermission
	}

	// RegistryOption customizes a Registry.
	RegistryOption func(*registryOptions)

	registryOptions struct {
		whitelistedIDs []string
	}

	registration struct {
		id        ID
		name      string
		message   MessageID
		flags     Flag
		types     TypeMask
		whitelist []string
	}
)

var (
	citrixIDs = []string{CitrixAppID, CitrixBetaAppID, CitrixDevAppID}
	htermIDs  = []string{HTermAppID, HTermDevAppID}

	registrations = []registration{
		{Background, "background", MessageNone, FlagNone, TypeAll, nil},
		{ClipboardRead, "clipboardRead", MessageClipboard, FlagNone, TypeAll, nil},
		{ClipboardWrite, "clipboardWrite", MessageNone, FlagNone, TypeAll, nil},
		{Experimental, "experimental", MessageNone, FlagCannotBeOptional, TypeAll, nil},
		{Geolocation, "geolocation", MessageGeolocation, FlagCannotBeOptional, TypeAll, nil},
		{Notifications, "notifications", MessageNone, FlagNone, TypeAll, nil},
		{UnlimitedStorage, "unlimitedStorage", MessageNone, FlagCannotBeOptional, TypeAll, nil},

		{AppNotifications, "appNotifications", MessageNone, FlagNone, TypeHostedApp | TypePackagedApp, nil},

		{Bookmarks, "bookmarks", MessageBookmarks, FlagNone, TypeDefault, nil},
		{ContentSettings, "contentSettings", MessageContentSettings, FlagNone, TypeDefault, nil},
		{ContextMenus, "contextMenus", MessageNone, FlagNone, TypeDefault, nil},
		{Cookies, "cookies", MessageNone, FlagNone, TypeDefault &^ TypePlatformApp, nil},
		{FileBrowserHandler, "fileBrowserHandler", MessageNone, FlagCannotBeOptional, TypeDefault, nil},
		{History, "history", MessageBrowsingHistory, FlagNone, TypeDefault, nil},
		{Idle, "idle", MessageNone, FlagNone, TypeDefault, nil},
		{Input, "input", MessageNone, FlagImpliesFullURLAccess, TypeDefault, nil},
		{Management, "management", MessageManagement, FlagNone, TypeDefault, nil},
		{PageCapture, "pageCapture", MessageAllPageContent, FlagNone, TypeDefault, nil},
		{Privacy, "privacy", MessagePrivacy, FlagNone, TypeDefault, nil},
		{Tabs, "tabs", MessageTabs, FlagNone, TypeDefault &^ TypePlatformApp, nil},
		{TTS, "tts", MessageNone, FlagCannotBeOptional, TypeDefault, nil},
		{TTSEngine, "ttsEngine", MessageTTSEngine, FlagCannotBeOptional, TypeDefault, nil},
		{WebNavigation, "webNavigation", MessageTabs, FlagNone, TypeDefault &^ TypePlatformApp, nil},
		{WebRequest, "webRequest", MessageNone, FlagNone, TypeDefault &^ TypePlatformApp, nil},
		{WebRequestBlocking, "webRequestBlocking", MessageNone, FlagNone, TypeDefault &^ TypePlatformApp, nil},

		{ChromeosInfoPrivate, "chromeosInfoPrivate", MessageNone, FlagComponentOnly | FlagCannotBeOptional, TypeDefault, nil},
		{FileBrowserPrivate, "fileBrowserPrivate", MessageNone, FlagComponentOnly | FlagCannotBeOptional, TypeDefault, nil},
		{MediaPlayerPrivate, "mediaPlayerPrivate", MessageNone, FlagComponentOnly | FlagCannotBeOptional, TypeDefault, nil},
		{MetricsPrivate, "metricsPrivate", MessageNone, FlagComponentOnly | FlagCannotBeOptional, TypeDefault, nil},
		{SystemPrivate, "systemPrivate", MessageNone, FlagComponentOnly | FlagCannotBeOptional, TypeDefault, nil},
		{ChromeAuthPrivate, "chromeAuthPrivate", MessageNone, FlagCannotBeOptional, TypeAll &^ TypePlatformApp,
			[]string{CloudPrintAppID}},
		{ChromePrivate, "chromePrivate", MessageNone, FlagCannotBeOptional, TypeAll &^ TypePlatformApp, citrixIDs},
		{InputMethodPrivate, "inputMethodPrivate", MessageNone, FlagCannotBeOptional, TypeDefault,
			concat(citrixIDs, htermIDs)},
		{TerminalPrivate, "terminalPrivate", MessageNone, FlagCannotBeOptional, TypeDefault, htermIDs},
		{WebSocketProxyPrivate, "webSocketProxyPrivate", MessageNone, FlagCannotBeOptional, TypeDefault &^ TypePlatformApp,
			concat(citrixIDs, htermIDs)},
		{WebstorePrivate, "webstorePrivate", MessageNone, FlagCannotBeOptional, TypeAll &^ TypePlatformApp,
			[]string{WebstoreAppID, EnterpriseWebstoreAppID}},

		{Proxy, "proxy", MessageNone, FlagImpliesFullURLAccess | FlagCannotBeOptional, TypeDefault, nil},
		{Debugger, "debugger", MessageDebugger, FlagImpliesFullURLAccess | FlagCannotBeOptional, TypeDefault, nil},
		{Devtools, "devtools", MessageNone, FlagImpliesFullURLAccess | FlagCannotBeOptional, TypeDefault, nil},
		{Plugin, "plugin", MessageFullAccess,
			FlagImpliesFullURLAccess | FlagImpliesFullAccess | FlagCannotBeOptional, TypeDefault, nil},

		{Socket, "socket", MessageNone, FlagCannotBeOptional, TypePlatformApp, nil},
	}

	aliases = map[string]string{
		"unlimited_storage": "unlimitedStorage",
		"windows":           "tabs",
	}

	nonPermissionModules = []string{
		"browserAction",
		"devtools",
		"extension",
		"i18n",
		"omnibox",
		"pageAction",
		"pageActions",
		"permissions",
		"test",
		"types",
	}

	nonPermissionFunctions = []string{
		"management.getPermissionWarningsByManifest",
		"tabs.create",
		"tabs.onRemoved",
		"tabs.remove",
		"tabs.update",
	}
)

// WithWhitelistedID adds id to the whitelist of every whitelisted permission.
func WithWhitelistedID(id string) RegistryOption {
	return func(o *registryOptions) {
		if id != "" {
			o.whitelistedIDs = append(o.whitelistedIDs, id)
		}
	}
}

// NewRegistry builds the permission table.
func NewRegistry(opts ...RegistryOption) *Registry {
	var o registryOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{
		byID:   make(map[ID]*APIPermission, len(registrations)),
		byName: make(map[string]*APIPermission, len(registrations)+len(aliases)),
	}
	for _, reg := range registrations {
		p := &APIPermission{
			id:      reg.id,
			name:    reg.name,
			flags:   reg.flags,
			types:   reg.types,
			message: reg.message,
		}
		if len(reg.whitelist) > 0 {
			p.whitelist = concat(reg.whitelist, o.whitelistedIDs)
		}
		r.byID[p.id] = p
		r.byName[p.name] = p
	}
	for alias, name := range aliases {
		r.byName[alias] = r.byName[name]
	}
	return r
}

// ByID returns the permission with the given id, or nil.
func (r *Registry) ByID(id ID) *APIPermission { return r.byID[id] }

// ByName returns the permission registered under name or an alias, or nil.
func (r *Registry) ByName(name string) *APIPermission { return r.byName[name] }

// All returns every registered permission id in ascending order.
func (r *Registry) All() []ID {
	ids := make([]ID, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AllByName resolves names to ids, dropping unknown names.
func (r *Registry) AllByName(names ...string) []ID {
	var ids []ID
	for _, name := range names {
		if p := r.ByName(name); p != nil && !slices.Contains(ids, p.id) {
			ids = append(ids, p.id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of registered permissions, aliases excluded.
func (r *Registry) Len() int { return len(r.byID) }

// PermissionName strips the function or event part of an API member name:
// "tabs.create" and "tabs/onUpdated" both yield "tabs".
func PermissionName(functionName string) string {
	if i := strings.IndexAny(functionName, "./"); i >= 0 {
		return functionName[:i]
	}
	return functionName
}

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
