// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Crystalnix/BitPop-sub015/pkg/extension"
	"github.com/Crystalnix/BitPop-sub015/pkg/manifest"
	"github.com/Crystalnix/BitPop-sub015/pkg/types"

	"github.com/spf13/cobra"
)

// ErrValidationFailed is returned by validate when any check fails.
var ErrValidationFailed = errors.New("manifest validation failed")

// newValidateCommand creates the `extctl validate` command.
func newValidateCommand(app *App) *cobra.Command {
	var lf loadFlagValues

	cmd := &cobra.Command{
		Use:   "validate <manifest|dir>",
		Short: "Check a manifest and report every problem",
		Long: `Check a manifest in two passes.

The schema pass reports every structural problem at once. The load pass
constructs the extension the way the browser does and reports the first
semantic error together with the manifest key that caused it. A loaded
extension is then checked against its directory: missing content script
files fail validation, web accessible entries that match no file warn.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := lf.request(args[0])
			if err != nil {
				return err
			}
			return runValidate(cmd, app, req)
		},
	}

	lf.register(cmd)
	return cmd
}

func runValidate(cmd *cobra.Command, app *App, req loadRequest) error {
	file := manifestFile(req.Path)
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %s", manifest.ErrManifestNotFound, file)
		}
		return manifestFailure(req.Path, err)
	}

	out := app.stdout
	fmt.Fprintln(out, TitleStyle.Render("Validating")+" "+file)
	fmt.Fprintln(out)

	failed := false
	result := manifest.Lint(data)
	for _, v := range result.Issues {
		failed = true
		fmt.Fprintf(out, "%s %s\n", ErrorStyle.Render("✗"), v.Error())
	}
	if result.Valid {
		fmt.Fprintf(out, "%s schema\n", SuccessStyle.Render("✓"))
	}

	syntaxOnly := len(result.Issues) > 0 && result.Issues[0].Type == manifest.IssueTypeSyntax
	if !syntaxOnly {
		ext, loadErr := app.loadExtension(cmd.Context(), req)
		if loadErr != nil {
			failed = true
			fmt.Fprintf(out, "%s load: %s\n", ErrorStyle.Render("✗"), formatErrorForDisplay(loadErr, app.verbose))
		} else {
			fmt.Fprintf(out, "%s load (%s %s, id %s)\n", SuccessStyle.Render("✓"),
				ext.Type(), ext.Version(), CmdStyle.Render(ext.ID()))
			if !reportFiles(out, ext) {
				failed = true
			}
		}
	}

	fmt.Fprintln(out)
	if failed {
		fmt.Fprintln(out, ErrorStyle.Render("Manifest is invalid"))
		return &ExitError{Code: types.ExitInvalidManifest, Err: ErrValidationFailed}
	}
	fmt.Fprintln(out, SuccessStyle.Render("Manifest is valid"))
	return nil
}

// reportFiles prints the directory checks and reports whether they passed.
func reportFiles(out io.Writer, ext *extension.Extension) bool {
	report, err := checkFiles(ext.Path(), ext)
	if err != nil {
		fmt.Fprintf(out, "%s files: %v\n", ErrorStyle.Render("✗"), err)
		return false
	}
	for _, rel := range report.Missing {
		fmt.Fprintf(out, "%s files: content script %s does not exist\n", ErrorStyle.Render("✗"), rel)
	}
	for _, entry := range report.Unmatched {
		fmt.Fprintf(out, "%s files: web accessible %s matches no file\n", WarningStyle.Render("!"), entry)
	}
	if len(report.Missing) == 0 {
		fmt.Fprintf(out, "%s files\n", SuccessStyle.Render("✓"))
	}
	return len(report.Missing) == 0
}

// manifestFile returns the manifest file for a path naming either the
// file itself or its extension directory.
func manifestFile(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, manifest.FileName)
	}
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
