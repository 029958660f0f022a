// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Crystalnix/BitPop-sub015/internal/config"
	"github.com/Crystalnix/BitPop-sub015/internal/issue"
	"github.com/Crystalnix/BitPop-sub015/pkg/types"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `extctl config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage extctl configuration",
		Long: `Manage extctl configuration.

Configuration is stored in:
  - Linux: ~/.config/extctl/config.cue
  - macOS: ~/Library/Application Support/extctl/config.cue
  - Windows: %APPDATA%\extctl\config.cue

Every key can be overridden from the environment, e.g.
EXTCTL_ENGINE_EXPERIMENTAL_APIS=true.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), app.configLoadOptions())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.configFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	return cfgCmd
}

func (a *App) configLoadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: types.FilesystemPath(a.configPath)}
}

func (a *App) configFilePath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.FilePath()
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.Config.Load(ctx, app.configLoadOptions())
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render(glamourStyle(app.loadConfig(ctx)))
		fmt.Fprint(app.stderr, rendered)
		return err
	}

	out := app.stdout
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)

	if path, pathErr := app.configFilePath(); pathErr == nil && fileExists(path) {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(out)

	e := cfg.Engine
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("engine"))
	fmt.Fprintf(out, "  experimental_apis: %s\n", valueStyle.Render(fmt.Sprint(e.ExperimentalAPIs)))
	fmt.Fprintf(out, "  experimental_allowlist: %s\n", valueStyle.Render(joinIDs(e.ExperimentalAllowlist)))
	fmt.Fprintf(out, "  enable_platform_apps: %s\n", valueStyle.Render(fmt.Sprint(e.EnablePlatformApps)))
	fmt.Fprintf(out, "  allow_scripting_gallery: %s\n", valueStyle.Render(fmt.Sprint(e.AllowScriptingGallery)))
	fmt.Fprintf(out, "  allow_http_background_page: %s\n", valueStyle.Render(fmt.Sprint(e.AllowHTTPBackgroundPage)))
	fmt.Fprintf(out, "  allow_legacy_manifests: %s\n", valueStyle.Render(fmt.Sprint(e.AllowLegacyManifests)))
	fmt.Fprintf(out, "  scripting_whitelist: %s\n", valueStyle.Render(joinIDs(e.ScriptingWhitelist)))
	fmt.Fprintf(out, "  whitelisted_id: %s\n", valueStyle.Render(orNone(string(e.WhitelistedID))))
	fmt.Fprintf(out, "  webstore_url: %s\n", valueStyle.Render(string(e.WebstoreURL)))
	fmt.Fprintf(out, "  host_version: %s\n", valueStyle.Render(string(e.HostVersion)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("load"))
	fmt.Fprintf(out, "  strict_error_checks: %s\n", valueStyle.Render(fmt.Sprint(cfg.Load.StrictErrorChecks)))
	fmt.Fprintf(out, "  allow_file_access: %s\n", valueStyle.Render(fmt.Sprint(cfg.Load.AllowFileAccess)))
	fmt.Fprintf(out, "  require_key: %s\n", valueStyle.Render(fmt.Sprint(cfg.Load.RequireKey)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(out, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(out, "  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))
	fmt.Fprintf(out, "  output: %s\n", valueStyle.Render(string(cfg.UI.Output)))

	return nil
}

func initConfig(app *App, force bool) error {
	path, created, err := config.CreateDefaultConfig(app.configPath, force)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s (use --force to overwrite)\n",
			WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func joinIDs(ids []config.ExtensionID) string {
	if len(ids) == 0 {
		return "(none)"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
