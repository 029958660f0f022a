// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Crystalnix/BitPop-sub015/pkg/extensionid"
	"github.com/Crystalnix/BitPop-sub015/pkg/types"

	"github.com/spf13/cobra"
)

type idOptions struct {
	keyFile string
	pemFile string
	public  bool
	check   string
}

// newIDCommand creates the `extctl id` command.
func newIDCommand(app *App) *cobra.Command {
	var opts idOptions

	cmd := &cobra.Command{
		Use:   "id [dir]",
		Short: "Generate, check or format extension ids and keys",
		Long: `Generate an extension id.

Without flags the id is derived from the directory path, the way unpacked
extensions without a key are identified. With --key the id is derived from
the public key instead.

` + SubtitleStyle.Render("Examples:") + `
  extctl id ./my-extension
  extctl id --key key.pem
  extctl id --check aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa
  extctl id --pem key.b64 --public`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runID(app, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.keyFile, "key", "", "derive the id from a PEM or base64 public key file")
	cmd.Flags().StringVar(&opts.pemFile, "pem", "", "wrap a base64 key body in PEM armor")
	cmd.Flags().BoolVar(&opts.public, "public", false, "use PUBLIC KEY armor with --pem")
	cmd.Flags().StringVar(&opts.check, "check", "", "check that an id is well formed")
	cmd.MarkFlagsMutuallyExclusive("key", "pem", "check")

	return cmd
}

func runID(app *App, opts idOptions, args []string) error {
	if (opts.keyFile != "" || opts.pemFile != "" || opts.check != "") && len(args) > 0 {
		return newUsageError(errors.New("a directory cannot be combined with --key, --pem or --check"))
	}

	switch {
	case opts.check != "":
		if err := extensionid.ID(opts.check).Validate(); err != nil {
			return &ExitError{Code: types.ExitFailure, Err: err}
		}
		fmt.Fprintf(app.stdout, "%s %s is a valid extension id\n", SuccessStyle.Render("✓"), opts.check)
		return nil

	case opts.keyFile != "":
		der, err := readKeyFile(opts.keyFile)
		if err != nil {
			return err
		}
		fmt.Fprintln(app.stdout, extensionid.Generate(der))
		return nil

	case opts.pemFile != "":
		data, err := os.ReadFile(opts.pemFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", opts.pemFile, err)
		}
		body := strings.Join(strings.Fields(string(data)), "")
		if _, err = extensionid.ParsePEMKey(body); err != nil {
			return &ExitError{Code: types.ExitFailure, Err: fmt.Errorf("%s: %w", opts.pemFile, err)}
		}
		out, err := extensionid.FormatPEMForFileOutput(body, opts.public)
		if err != nil {
			return &ExitError{Code: types.ExitFailure, Err: err}
		}
		fmt.Fprint(app.stdout, out)
		return nil
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}
	app.Logger.Debug("path id", "path", abs, "normalized", extensionid.NormalizePath(abs))
	fmt.Fprintln(app.stdout, extensionid.GenerateForPath(abs))
	return nil
}

func readKeyFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	der, err := extensionid.ParsePEMKey(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, &ExitError{Code: types.ExitFailure, Err: fmt.Errorf("%s: %w", path, err)}
	}
	return der, nil
}
