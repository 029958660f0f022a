// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the extctl command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "extctl",
		Short: "Inspect extension manifests and the permissions they grant",
		Long: TitleStyle.Render("extctl") + SubtitleStyle.Render(" - extension manifest loader and permission inspector") + `

extctl loads browser extension, app and theme manifests the way the browser
does, reports every load error with the manifest key that caused it, and
shows which APIs and hosts the extension is granted.

` + SubtitleStyle.Render("Examples:") + `
  extctl inspect ./my-extension              Show type, id and permissions
  extctl inspect ./app --location component  Load as a built-in component
  extctl validate ./my-extension             Lint and load, listing every issue
  extctl can-script ./ext https://a.com/     Check content script access
  extctl id ./my-extension                   Print the path-derived id
  extctl explain invalid-permission          Explain a load failure`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.loadConfig(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/extctl/config.cue)")

	rootCmd.AddCommand(
		newInspectCommand(app),
		newValidateCommand(app),
		newIDCommand(app),
		newRankCommand(app),
		newCanScriptCommand(app),
		newConfigCommand(app),
		newExplainCommand(app),
		newCompletionCommand(),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute runs the CLI and exits with the code carried by an ExitError.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}
