// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/Crystalnix/BitPop-sub015/internal/config"
	"github.com/Crystalnix/BitPop-sub015/internal/issue"

	"github.com/spf13/cobra"
)

// newExplainCommand creates the `extctl explain` command.
func newExplainCommand(app *App) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "explain [issue]",
		Short: "Explain a load failure",
		Long: `Explain a load failure reported by extctl.

Without an argument every known issue is listed. The issue may be given by
name (e.g. invalid-permission) or by number.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			names := make([]string, 0, len(issue.Values()))
			for _, i := range issue.Values() {
				names = append(names, i.Slug())
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				listIssues(app)
				return nil
			}

			found, ok := issue.Lookup(args[0])
			if !ok {
				return newUsageError(fmt.Errorf("unknown issue %q (run 'extctl explain' for the list)", args[0]))
			}

			style := glamourStyle(app.loadConfig(cmd.Context()))
			if plain {
				style = "notty"
			}
			rendered, err := found.Render(style)
			if err != nil {
				// Fall back to the raw markdown when the style cannot be loaded.
				app.Logger.Debug("render issue", "issue", found.Slug(), "error", err)
				rendered = found.Markdown()
			}
			fmt.Fprint(app.stdout, rendered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "render without colors")
	return cmd
}

func listIssues(app *App) {
	fmt.Fprintln(app.stdout, TitleStyle.Render("Known issues"))
	fmt.Fprintln(app.stdout)
	for _, i := range issue.Values() {
		fmt.Fprintf(app.stdout, "  %2d  %s\n", int(i.Id()), CmdStyle.Render(i.Slug()))
	}
}

// glamourStyle maps the configured color scheme onto a glamour style.
func glamourStyle(cfg *config.Config) string {
	switch cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}
