// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"

	"github.com/Crystalnix/BitPop-sub015/pkg/extension"

	"github.com/spf13/cobra"
)

// loadFlagValues holds the flags shared by every command that loads an
// extension.
type loadFlagValues struct {
	location        string
	sets            []string
	id              string
	strict          bool
	allowFileAccess bool
	requireKey      bool
	fromWebstore    bool
}

func (v *loadFlagValues) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&v.location, "location", extension.LocationInternal.String(),
		"install location ("+strings.Join(extension.LocationNames(), ", ")+")")
	f.StringArrayVar(&v.sets, "set", nil, "override a manifest key with a JSON value (key=json, repeatable)")
	f.StringVar(&v.id, "id", "", "use an explicit extension id instead of deriving one")
	f.BoolVar(&v.strict, "strict", false, "enable strict error checks")
	f.BoolVar(&v.allowFileAccess, "allow-file-access", false, "allow file:// host and script patterns")
	f.BoolVar(&v.requireKey, "require-key", false, "reject manifests without a key")
	f.BoolVar(&v.fromWebstore, "from-webstore", false, "treat the extension as installed from the gallery")

	_ = cmd.RegisterFlagCompletionFunc("location", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return extension.LocationNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

// request turns the flag values into a load request for path.
func (v *loadFlagValues) request(path string) (loadRequest, error) {
	loc, err := extension.ParseLocation(v.location)
	if err != nil {
		return loadRequest{}, newUsageError(err)
	}

	var flags extension.LoadFlags
	if v.strict {
		flags |= extension.StrictErrorChecks
	}
	if v.allowFileAccess {
		flags |= extension.AllowFileAccess
	}
	if v.requireKey {
		flags |= extension.RequireKey
	}
	if v.fromWebstore {
		flags |= extension.FromWebstore
	}

	return loadRequest{
		Path:     path,
		Location: loc,
		Flags:    flags,
		Sets:     v.sets,
		ID:       v.id,
	}, nil
}
