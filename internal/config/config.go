// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Crystalnix/BitPop-sub015/internal/issue"
	"github.com/Crystalnix/BitPop-sub015/pkg/cueutil"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "extctl"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. EXTCTL_UI_VERBOSE.
	EnvPrefix = "EXTCTL"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the extctl configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// FilePath returns the default config file location inside ConfigDir.
func FilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state. It returns the resolved file path, or "" when only
// defaults and environment overrides applied.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()
	resolvedPath := ""

	if opts.ConfigFilePath.IsSet() {
		path := string(opts.ConfigFilePath)
		if !fileExists(path) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'extctl config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", path)).
				BuildError()
		}
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", cueLoadError(path, err)
		}
		resolvedPath = path
	} else {
		cfgDir, err := configDirWithOverride(string(opts.ConfigDirPath))
		if err != nil {
			return nil, "", err
		}

		cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
		if fileExists(cuePath) {
			if err := loadCUEIntoViper(v, cuePath); err != nil {
				return nil, "", cueLoadError(cuePath, err)
			}
			resolvedPath = cuePath
		}
		// No config file means defaults only.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		ctxBuilder := issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Extension ids are 32 characters in the range a-p").
			WithSuggestion("Run 'extctl config init' to write a fresh default file")
		return nil, "", ctxBuilder.Wrap(joinFieldErrors(errs)).BuildError()
	}

	return &cfg, resolvedPath, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("engine.experimental_apis", defaults.Engine.ExperimentalAPIs)
	v.SetDefault("engine.experimental_allowlist", idStrings(defaults.Engine.ExperimentalAllowlist))
	v.SetDefault("engine.enable_platform_apps", defaults.Engine.EnablePlatformApps)
	v.SetDefault("engine.allow_scripting_gallery", defaults.Engine.AllowScriptingGallery)
	v.SetDefault("engine.allow_http_background_page", defaults.Engine.AllowHTTPBackgroundPage)
	v.SetDefault("engine.allow_legacy_manifests", defaults.Engine.AllowLegacyManifests)
	v.SetDefault("engine.scripting_whitelist", idStrings(defaults.Engine.ScriptingWhitelist))
	v.SetDefault("engine.whitelisted_id", string(defaults.Engine.WhitelistedID))
	v.SetDefault("engine.webstore_url", string(defaults.Engine.WebstoreURL))
	v.SetDefault("engine.host_version", string(defaults.Engine.HostVersion))
	v.SetDefault("load.strict_error_checks", defaults.Load.StrictErrorChecks)
	v.SetDefault("load.allow_file_access", defaults.Load.AllowFileAccess)
	v.SetDefault("load.require_key", defaults.Load.RequireKey)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.output", string(defaults.UI.Output))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func cueLoadError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Verify the configuration values match the expected schema").
		WithSuggestion("See 'extctl explain config-load-failed' for the accepted keys").
		Wrap(err).
		BuildError()
}

func joinFieldErrors(errs []error) error {
	var leaves []string
	var walk func(err error)
	walk = func(err error) {
		switch e := err.(type) {
		case *InvalidConfigError:
			for _, f := range e.FieldErrors {
				walk(f)
			}
		case *InvalidEngineConfigError:
			for _, f := range e.FieldErrors {
				walk(f)
			}
		case *InvalidUIConfigError:
			for _, f := range e.FieldErrors {
				walk(f)
			}
		default:
			leaves = append(leaves, err.Error())
		}
	}
	for _, err := range errs {
		walk(err)
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(leaves, "; "))
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// Note: This uses manual CUE parsing instead of cueutil.ParseAndDecode because:
// 1. Config decodes to map[string]any (not a struct) for Viper integration
// 2. Uses Concrete(false) because config fields are optional
// 3. Needs to merge into Viper's config map, not return a struct
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file to path, or to
// FilePath() when path is empty. An existing file is left untouched unless
// force is set. It returns the path written (or kept).
func CreateDefaultConfig(path string, force bool) (string, bool, error) {
	if path == "" {
		var err error
		if path, err = FilePath(); err != nil {
			return "", false, err
		}
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, false, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}

	return path, true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// extctl configuration file\n")
	sb.WriteString("// Unset keys keep their built-in defaults.\n\n")

	sb.WriteString("engine: {\n")
	fmt.Fprintf(&sb, "\texperimental_apis: %v\n", cfg.Engine.ExperimentalAPIs)
	writeIDList(&sb, "experimental_allowlist", cfg.Engine.ExperimentalAllowlist)
	fmt.Fprintf(&sb, "\tenable_platform_apps: %v\n", cfg.Engine.EnablePlatformApps)
	fmt.Fprintf(&sb, "\tallow_scripting_gallery: %v\n", cfg.Engine.AllowScriptingGallery)
	fmt.Fprintf(&sb, "\tallow_http_background_page: %v\n", cfg.Engine.AllowHTTPBackgroundPage)
	fmt.Fprintf(&sb, "\tallow_legacy_manifests: %v\n", cfg.Engine.AllowLegacyManifests)
	writeIDList(&sb, "scripting_whitelist", cfg.Engine.ScriptingWhitelist)
	if cfg.Engine.WhitelistedID != "" {
		fmt.Fprintf(&sb, "\twhitelisted_id: %q\n", cfg.Engine.WhitelistedID)
	}
	if cfg.Engine.WebstoreURL != "" {
		fmt.Fprintf(&sb, "\twebstore_url: %q\n", cfg.Engine.WebstoreURL)
	}
	if cfg.Engine.HostVersion != "" {
		fmt.Fprintf(&sb, "\thost_version: %q\n", cfg.Engine.HostVersion)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nload: {\n")
	fmt.Fprintf(&sb, "\tstrict_error_checks: %v\n", cfg.Load.StrictErrorChecks)
	fmt.Fprintf(&sb, "\tallow_file_access: %v\n", cfg.Load.AllowFileAccess)
	fmt.Fprintf(&sb, "\trequire_key: %v\n", cfg.Load.RequireKey)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\toutput: %q\n", cfg.UI.Output)
	sb.WriteString("}\n")

	return sb.String()
}

func writeIDList(sb *strings.Builder, key string, ids []ExtensionID) {
	if len(ids) == 0 {
		fmt.Fprintf(sb, "\t%s: []\n", key)
		return
	}
	fmt.Fprintf(sb, "\t%s: [\n", key)
	for _, id := range ids {
		fmt.Fprintf(sb, "\t\t%q,\n", id)
	}
	sb.WriteString("\t]\n")
}
