// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"io"

	"github.com/Crystalnix/BitPop-sub015/pkg/permissions"

	"github.com/charmbracelet/log"
)

// Load flags.
const (
	// RequireKey rejects manifests without a public key.
	RequireKey LoadFlags = 1 << iota
	// StrictErrorChecks turns lenient parsing into errors, e.g. ports in
	// match patterns or unsupported permissions in hosted apps.
	StrictErrorChecks
	// AllowFileAccess keeps file:// in the scheme mask of host and content
	// script patterns.
	AllowFileAccess
	// FromWebstore marks an extension installed from the gallery, which may
	// use the experimental permission.
	FromWebstore
	// RequireModernManifestVersion rejects manifest_version 1 unless the
	// settings allow legacy manifests.
	RequireModernManifestVersion

	// NoFlags is the empty flag set.
	NoFlags LoadFlags = 0
)

const (
	// DefaultWebstoreURL is the gallery launch URL.
	DefaultWebstoreURL = "https://chrome.google.com/webstore"
	// DefaultHostVersion is the browser version minimum_chrome_version is
	// compared against.
	DefaultHostVersion = "16.0.912.0"
	// DefaultHostName names the browser in version errors.
	DefaultHostName = "Chrome"

	// GalleryUpdateURL is the secure update URL of gallery extensions.
	GalleryUpdateURL = "https://clients2.google.com/service/update2/crx"
	// GalleryUpdateURLInsecure is its legacy plain-http form.
	GalleryUpdateURLInsecure = "http://clients2.google.com/service/update2/crx"
)

type (
	// LoadFlags alter how strictly a manifest is interpreted.
	LoadFlags int

	// Settings are the host-wide switches that affect manifest loading.
	Settings struct {
		// ExperimentalAPIs lets every extension use the experimental
		// permission.
		ExperimentalAPIs bool
		// ExperimentalAllowlist names ids that may use experimental APIs.
		ExperimentalAllowlist []string
		// EnablePlatformApps allows manifests with platform_app set.
		EnablePlatformApps bool
		// AllowScriptingGallery lets content scripts run on the gallery.
		AllowScriptingGallery bool
		// AllowHTTPBackgroundPage accepts http background pages for hosted
		// apps.
		AllowHTTPBackgroundPage bool
		// AllowLegacyManifests waives RequireModernManifestVersion.
		AllowLegacyManifests bool
		// ScriptingWhitelist names ids that may script every page.
		ScriptingWhitelist []string
		// WhitelistedID is added to the whitelist of every private API.
		WhitelistedID string
		// WebstoreURL overrides the gallery URL. When the gallery app itself
		// is loaded, its launch URL and extent follow this value.
		WebstoreURL string
		// HostVersion is the version of the embedding browser.
		HostVersion string
		// HostName names the embedding browser.
		HostName string
	}

	// Option configures New.
	Option func(*options)

	options struct {
		explicitID string
		registry   *permissions.Registry
		settings   Settings
		logger     *log.Logger
	}
)

// Has reports whether every bit of other is set.
func (f LoadFlags) Has(other LoadFlags) bool { return f&other == other }

// DefaultSettings returns the settings of a stock browser.
func DefaultSettings() Settings {
	return Settings{
		WebstoreURL: DefaultWebstoreURL,
		HostVersion: DefaultHostVersion,
		HostName:    DefaultHostName,
	}
}

// WithExplicitID assigns the id instead of deriving one.
func WithExplicitID(id string) Option {
	return func(o *options) { o.explicitID = id }
}

// WithRegistry resolves permission names against reg.
func WithRegistry(reg *permissions.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// WithSettings replaces the default settings.
func WithSettings(s Settings) Option {
	return func(o *options) { o.settings = s }
}

// WithLogger receives load diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{settings: DefaultSettings()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.settings.WebstoreURL == "" {
		o.settings.WebstoreURL = DefaultWebstoreURL
	}
	if o.settings.HostName == "" {
		o.settings.HostName = DefaultHostName
	}
	if o.registry == nil {
		var regOpts []permissions.RegistryOption
		if o.settings.WhitelistedID != "" {
			regOpts = append(regOpts, permissions.WithWhitelistedID(o.settings.WhitelistedID))
		}
		o.registry = permissions.NewRegistry(regOpts...)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	return o
}
