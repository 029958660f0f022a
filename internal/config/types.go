// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/Crystalnix/BitPop-sub015/pkg/extension"
	"github.com/Crystalnix/BitPop-sub015/pkg/extensionid"
	"github.com/Crystalnix/BitPop-sub015/pkg/version"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// OutputText prints human-readable reports.
	OutputText OutputFormat = "text"
	// OutputJSON prints reports as indented JSON.
	OutputJSON OutputFormat = "json"
	// OutputTOML prints reports as TOML.
	OutputTOML OutputFormat = "toml"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidOutputFormat is returned when an OutputFormat value is not recognized.
	ErrInvalidOutputFormat = errors.New("invalid output format")
	// ErrInvalidExtensionID is the sentinel error wrapped by InvalidExtensionIDError.
	ErrInvalidExtensionID = errors.New("invalid extension id")
	// ErrInvalidWebstoreURL is the sentinel error wrapped by InvalidWebstoreURLError.
	ErrInvalidWebstoreURL = errors.New("invalid webstore url")
	// ErrInvalidHostVersion is the sentinel error wrapped by InvalidHostVersionError.
	ErrInvalidHostVersion = errors.New("invalid host version")
	// ErrInvalidEngineConfig is the sentinel error wrapped by InvalidEngineConfigError.
	ErrInvalidEngineConfig = errors.New("invalid engine config")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// OutputFormat selects how extctl prints reports.
	OutputFormat string

	// InvalidOutputFormatError is returned when an OutputFormat value is not recognized.
	InvalidOutputFormatError struct {
		Value OutputFormat
	}

	// ExtensionID is an extension id listed in an allowlist. It must be 32
	// characters in a-p.
	ExtensionID string

	// InvalidExtensionIDError is returned when an ExtensionID is malformed.
	InvalidExtensionIDError struct {
		Field string
		Value ExtensionID
	}

	// WebstoreURL overrides the gallery URL. The zero value keeps the
	// built-in default.
	WebstoreURL string

	// InvalidWebstoreURLError is returned when a WebstoreURL is not an
	// absolute http(s) URL.
	InvalidWebstoreURLError struct {
		Value WebstoreURL
	}

	// HostVersion is the dotted version of the embedding browser. The zero
	// value keeps the built-in default.
	HostVersion string

	// InvalidHostVersionError is returned when a HostVersion does not parse.
	InvalidHostVersionError struct {
		Value HostVersion
	}

	// InvalidEngineConfigError collects field-level errors of EngineConfig.
	InvalidEngineConfigError struct {
		FieldErrors []error
	}

	// InvalidUIConfigError collects field-level errors of UIConfig.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Engine holds the host-wide switches of the manifest loader.
		Engine EngineConfig `json:"engine" mapstructure:"engine"`
		// Load holds the default load flags.
		Load LoadConfig `json:"load" mapstructure:"load"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// EngineConfig mirrors extension.Settings.
	EngineConfig struct {
		ExperimentalAPIs        bool          `json:"experimental_apis" mapstructure:"experimental_apis"`
		ExperimentalAllowlist   []ExtensionID `json:"experimental_allowlist" mapstructure:"experimental_allowlist"`
		EnablePlatformApps      bool          `json:"enable_platform_apps" mapstructure:"enable_platform_apps"`
		AllowScriptingGallery   bool          `json:"allow_scripting_gallery" mapstructure:"allow_scripting_gallery"`
		AllowHTTPBackgroundPage bool          `json:"allow_http_background_page" mapstructure:"allow_http_background_page"`
		AllowLegacyManifests    bool          `json:"allow_legacy_manifests" mapstructure:"allow_legacy_manifests"`
		ScriptingWhitelist      []ExtensionID `json:"scripting_whitelist" mapstructure:"scripting_whitelist"`
		WhitelistedID           ExtensionID   `json:"whitelisted_id" mapstructure:"whitelisted_id"`
		WebstoreURL             WebstoreURL   `json:"webstore_url" mapstructure:"webstore_url"`
		HostVersion             HostVersion   `json:"host_version" mapstructure:"host_version"`
	}

	// LoadConfig holds the flags applied to every load unless a command
	// overrides them.
	LoadConfig struct {
		StrictErrorChecks bool `json:"strict_error_checks" mapstructure:"strict_error_checks"`
		AllowFileAccess   bool `json:"allow_file_access" mapstructure:"allow_file_access"`
		RequireKey        bool `json:"require_key" mapstructure:"require_key"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging and detailed error output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Output is the default report format
		Output OutputFormat `json:"output" mapstructure:"output"`
	}
)

// EngineSettings converts the engine section into loader settings.
// Unset string fields fall back to the loader defaults.
func (c Config) EngineSettings() extension.Settings {
	s := extension.DefaultSettings()
	s.ExperimentalAPIs = c.Engine.ExperimentalAPIs
	s.ExperimentalAllowlist = idStrings(c.Engine.ExperimentalAllowlist)
	s.EnablePlatformApps = c.Engine.EnablePlatformApps
	s.AllowScriptingGallery = c.Engine.AllowScriptingGallery
	s.AllowHTTPBackgroundPage = c.Engine.AllowHTTPBackgroundPage
	s.AllowLegacyManifests = c.Engine.AllowLegacyManifests
	s.ScriptingWhitelist = idStrings(c.Engine.ScriptingWhitelist)
	s.WhitelistedID = string(c.Engine.WhitelistedID)
	if c.Engine.WebstoreURL != "" {
		s.WebstoreURL = string(c.Engine.WebstoreURL)
	}
	if c.Engine.HostVersion != "" {
		s.HostVersion = string(c.Engine.HostVersion)
	}
	return s
}

// LoadFlags converts the load section into loader flags.
func (c Config) LoadFlags() extension.LoadFlags {
	flags := extension.NoFlags
	if c.Load.StrictErrorChecks {
		flags |= extension.StrictErrorChecks
	}
	if c.Load.AllowFileAccess {
		flags |= extension.AllowFileAccess
	}
	if c.Load.RequireKey {
		flags |= extension.RequireKey
	}
	return flags
}

func idStrings(ids []ExtensionID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// IsValid returns whether the Config has valid fields.
// It delegates to Engine.IsValid() and UI.IsValid(); Load has only bool fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Engine.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// IsValid returns whether every id list, the whitelisted id, the webstore
// URL and the host version are well formed.
func (c EngineConfig) IsValid() (bool, []error) {
	var errs []error
	errs = append(errs, validateIDs("engine.experimental_allowlist", c.ExperimentalAllowlist)...)
	errs = append(errs, validateIDs("engine.scripting_whitelist", c.ScriptingWhitelist)...)
	if c.WhitelistedID != "" {
		errs = append(errs, validateIDs("engine.whitelisted_id", []ExtensionID{c.WhitelistedID})...)
	}
	if valid, fieldErrs := c.WebstoreURL.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.HostVersion.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidEngineConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func validateIDs(field string, ids []ExtensionID) []error {
	var errs []error
	for _, id := range ids {
		if !extensionid.IsValid(string(id)) {
			errs = append(errs, &InvalidExtensionIDError{Field: field, Value: id})
		}
	}
	return errs
}

// Error implements the error interface for InvalidEngineConfigError.
func (e *InvalidEngineConfigError) Error() string {
	return fmt.Sprintf("invalid engine config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidEngineConfig for errors.Is() compatibility.
func (e *InvalidEngineConfigError) Unwrap() error { return ErrInvalidEngineConfig }

// IsValid returns whether the UIConfig has valid fields.
func (c UIConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Output.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidUIConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidUIConfigError.
func (e *InvalidUIConfigError) Error() string {
	return fmt.Sprintf("invalid UI config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// Error implements the error interface for InvalidExtensionIDError.
func (e *InvalidExtensionIDError) Error() string {
	return fmt.Sprintf("%s: invalid extension id %q (want 32 characters in a-p)", e.Field, e.Value)
}

// Unwrap returns ErrInvalidExtensionID for errors.Is() compatibility.
func (e *InvalidExtensionIDError) Unwrap() error { return ErrInvalidExtensionID }

// String returns the string representation of the WebstoreURL.
func (u WebstoreURL) String() string { return string(u) }

// IsValid returns whether the WebstoreURL is empty or an absolute http(s) URL.
func (u WebstoreURL) IsValid() (bool, []error) {
	if u == "" {
		return true, nil
	}
	parsed, err := url.Parse(string(u))
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return false, []error{&InvalidWebstoreURLError{Value: u}}
	}
	return true, nil
}

// Error implements the error interface for InvalidWebstoreURLError.
func (e *InvalidWebstoreURLError) Error() string {
	return fmt.Sprintf("invalid webstore url %q: must be an absolute http or https URL", e.Value)
}

// Unwrap returns ErrInvalidWebstoreURL for errors.Is() compatibility.
func (e *InvalidWebstoreURLError) Unwrap() error { return ErrInvalidWebstoreURL }

// String returns the string representation of the HostVersion.
func (v HostVersion) String() string { return string(v) }

// IsValid returns whether the HostVersion is empty or a dotted version.
func (v HostVersion) IsValid() (bool, []error) {
	if v == "" {
		return true, nil
	}
	if _, err := version.Parse(string(v)); err != nil {
		return false, []error{&InvalidHostVersionError{Value: v}}
	}
	return true, nil
}

// Error implements the error interface for InvalidHostVersionError.
func (e *InvalidHostVersionError) Error() string {
	return fmt.Sprintf("invalid host version %q: want 1-4 dot-separated integers", e.Value)
}

// Unwrap returns ErrInvalidHostVersion for errors.Is() compatibility.
func (e *InvalidHostVersionError) Unwrap() error { return ErrInvalidHostVersion }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidOutputFormatError.
func (e *InvalidOutputFormatError) Error() string {
	return fmt.Sprintf("invalid output format %q (valid: text, json, toml)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidOutputFormatError) Unwrap() error { return ErrInvalidOutputFormat }

// String returns the string representation of the OutputFormat.
func (f OutputFormat) String() string { return string(f) }

// IsValid returns whether the OutputFormat is text, json or toml.
func (f OutputFormat) IsValid() (bool, []error) {
	switch f {
	case OutputText, OutputJSON, OutputTOML:
		return true, nil
	default:
		return false, []error{&InvalidOutputFormatError{Value: f}}
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			ExperimentalAllowlist: []ExtensionID{},
			ScriptingWhitelist:    []ExtensionID{},
			WebstoreURL:           extension.DefaultWebstoreURL,
			HostVersion:           extension.DefaultHostVersion,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
			Output:      OutputText,
		},
	}
}
