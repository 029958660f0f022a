// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/Crystalnix/BitPop-sub015/pkg/extension"

	"github.com/spf13/cobra"
)

// newRankCommand creates the `extctl rank` command.
func newRankCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rank <location> <location>",
		Short: "Show which install location wins",
		Long: `Show which of two install locations takes priority when the same
extension is installed from both.

Locations: ` + strings.Join(extension.LocationNames(), ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: extension.LocationNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := extension.ParseLocation(args[0])
			if err != nil {
				return newUsageError(err)
			}
			b, err := extension.ParseLocation(args[1])
			if err != nil {
				return newUsageError(err)
			}

			winner := extension.HigherPriorityLocation(a, b)
			fmt.Fprintf(app.stdout, "%s %s (rank %d vs %d)\n",
				SuccessStyle.Render(winner.String()),
				SubtitleStyle.Render("wins"),
				extension.LocationRank(a), extension.LocationRank(b))
			return nil
		},
	}
}
