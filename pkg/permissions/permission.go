// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"github.com/Crystalnix/BitPop-sub015/pkg/manifest"

	"golang.org/x/exp/slices"
)

// API permission identifiers. IDUnknown never appears in a registry.
const (
	IDUnknown ID = iota

	// Permissions for every package type.
	Background
	ClipboardRead
	ClipboardWrite
	Experimental
	Geolocation
	Notifications
	UnlimitedStorage

	// Hosted and packaged app permissions.
	AppNotifications

	// Extension permissions.
	Bookmarks
	ContentSettings
	ContextMenus
	Cookies
	FileBrowserHandler
	History
	Idle
	Input
	Management
	PageCapture
	Privacy
	Tabs
	TTS
	TTSEngine
	WebNavigation
	WebRequest
	WebRequestBlocking

	// Private permissions.
	ChromeosInfoPrivate
	FileBrowserPrivate
	MediaPlayerPrivate
	MetricsPrivate
	SystemPrivate
	ChromeAuthPrivate
	ChromePrivate
	InputMethodPrivate
	TerminalPrivate
	WebSocketProxyPrivate
	WebstorePrivate

	// Full URL access permissions.
	Proxy
	Debugger
	Devtools
	Plugin

	// Platform app permissions.
	Socket
)

// Permission flags.
const (
	FlagNone Flag = 0
	// FlagImpliesFullAccess marks permissions that grant native code access.
	FlagImpliesFullAccess Flag = 1 << iota
	// FlagImpliesFullURLAccess marks permissions that reach every host.
	FlagImpliesFullURLAccess
	// FlagCannotBeOptional forbids listing the permission in optional_permissions.
	FlagCannotBeOptional
	// FlagComponentOnly restricts the permission to component installs.
	FlagComponentOnly
)

// Type restriction masks.
const (
	TypeExtension   TypeMask = 1 << 0
	TypeHostedApp   TypeMask = 1 << 1
	TypePackagedApp TypeMask = 1 << 2
	TypePlatformApp TypeMask = 1 << 3

	TypeDefault = TypeExtension | TypePackagedApp | TypePlatformApp
	TypeAll     = TypeDefault | TypeHostedApp
)

type (
	// ID identifies an API permission.
	ID int

	// Flag is a bit set of permission properties.
	Flag int

	// TypeMask is a bit set of package types a permission applies to.
	TypeMask int

	// APIPermission describes one named API capability.
	APIPermission struct {
		id        ID
		name      string
		flags     Flag
		types     TypeMask
		message   MessageID
		whitelist []string
	}
)

// TypeMaskFor returns the restriction bit for a package type. Themes and
// converted user scripts are treated as extensions.
func TypeMaskFor(t manifest.Type) TypeMask {
	switch t {
	case manifest.TypeHostedApp:
		return TypeHostedApp
	case manifest.TypePackagedApp:
		return TypePackagedApp
	case manifest.TypePlatformApp:
		return TypePlatformApp
	case manifest.TypeExtension, manifest.TypeTheme, manifest.TypeUserScript:
		return TypeExtension
	default:
		return 0
	}
}

// ID returns the permission identifier.
func (p *APIPermission) ID() ID { return p.id }

// Name returns the canonical manifest name.
func (p *APIPermission) Name() string { return p.name }

// Message returns the install warning shown for this permission, if any.
func (p *APIPermission) Message() Message {
	return Message{ID: p.message, Text: simpleMessageText[p.message]}
}

// MessageID returns the install warning identifier.
func (p *APIPermission) MessageID() MessageID { return p.message }

// SupportsType reports whether packages of type t may request the permission.
func (p *APIPermission) SupportsType(t manifest.Type) bool {
	return p.types&TypeMaskFor(t) != 0
}

// HasWhitelist reports whether only listed ids may request the permission.
func (p *APIPermission) HasWhitelist() bool { return len(p.whitelist) > 0 }

// Whitelist returns the ids allowed to request the permission.
func (p *APIPermission) Whitelist() []string { return slices.Clone(p.whitelist) }

// IsWhitelisted reports whether extensionID may request the permission.
// Permissions without a whitelist allow every id.
func (p *APIPermission) IsWhitelisted(extensionID string) bool {
	if !p.HasWhitelist() {
		return true
	}
	return slices.Contains(p.whitelist, extensionID)
}

// IsComponentOnly reports whether only component installs may request it.
func (p *APIPermission) IsComponentOnly() bool { return p.flags&FlagComponentOnly != 0 }

// CannotBeOptional reports whether the permission is barred from
// optional_permissions.
func (p *APIPermission) CannotBeOptional() bool { return p.flags&FlagCannotBeOptional != 0 }

// ImpliesFullAccess reports whether the permission grants native code access.
func (p *APIPermission) ImpliesFullAccess() bool { return p.flags&FlagImpliesFullAccess != 0 }

// ImpliesFullURLAccess reports whether the permission reaches every host.
func (p *APIPermission) ImpliesFullURLAccess() bool { return p.flags&FlagImpliesFullURLAccess != 0 }

// RequiresExperimentalFlag reports whether requesting the permission needs
// experimental eligibility.
func (p *APIPermission) RequiresExperimentalFlag() bool { return p.id == Experimental }
