// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/Crystalnix/BitPop-sub015/pkg/extension"
	"github.com/Crystalnix/BitPop-sub015/pkg/types"

	"github.com/spf13/cobra"
)

// newCanScriptCommand creates the `extctl can-script` command.
func newCanScriptCommand(app *App) *cobra.Command {
	var (
		lf      loadFlagValues
		capture bool
	)

	cmd := &cobra.Command{
		Use:   "can-script <manifest|dir> <url>",
		Short: "Check whether an extension may script a page",
		Long: `Check whether an extension may inject script into the page at url.

With --capture the visible-tab capture check runs instead. The command
exits with code 4 when access is denied.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(args[1])
			if err != nil || u.Scheme == "" {
				return newUsageError(fmt.Errorf("invalid url %q", args[1]))
			}

			req, err := lf.request(args[0])
			if err != nil {
				return err
			}
			ext, err := app.loadExtension(cmd.Context(), req)
			if err != nil {
				return err
			}

			check := "script"
			if capture {
				check = "capture"
				err = ext.CanCaptureVisiblePage(u)
			} else {
				err = ext.CanExecuteScriptOnPage(u, nil)
			}

			if err != nil {
				if errors.Is(err, extension.ErrAccessDenied) {
					fmt.Fprintf(app.stdout, "%s %s denied on %s: %s\n", ErrorStyle.Render("✗"), check, u, err)
					return &ExitError{Code: types.ExitAccessDenied, Err: err}
				}
				return err
			}
			fmt.Fprintf(app.stdout, "%s %s allowed on %s\n", SuccessStyle.Render("✓"), check, u)
			return nil
		},
	}

	lf.register(cmd)
	cmd.Flags().BoolVar(&capture, "capture", false, "check visible-tab capture instead of script injection")
	return cmd
}
