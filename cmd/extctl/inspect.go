// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Crystalnix/BitPop-sub015/internal/config"
	"github.com/Crystalnix/BitPop-sub015/pkg/extension"
	"github.com/Crystalnix/BitPop-sub015/pkg/permissions"
	"github.com/Crystalnix/BitPop-sub015/pkg/userscript"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

type (
	// inspectReport is the serialized view of a loaded extension.
	inspectReport struct {
		ID                  string           `json:"id" toml:"id"`
		Name                string           `json:"name" toml:"name"`
		Version             string           `json:"version" toml:"version"`
		Type                string           `json:"type" toml:"type"`
		Location            string           `json:"location" toml:"location"`
		ManifestVersion     int              `json:"manifest_version" toml:"manifest_version"`
		Path                string           `json:"path" toml:"path"`
		Description         string           `json:"description,omitempty" toml:"description,omitempty"`
		MinimumHostVersion  string           `json:"minimum_chrome_version,omitempty" toml:"minimum_chrome_version,omitempty"`
		AllHosts            bool             `json:"all_hosts" toml:"all_hosts"`
		EffectiveHosts      []string         `json:"effective_hosts" toml:"effective_hosts"`
		Warnings            []string         `json:"warnings" toml:"warnings"`
		Permissions         permissionReport `json:"permissions" toml:"permissions"`
		OptionalPermissions permissionReport `json:"optional_permissions" toml:"optional_permissions"`
		App                 *appReport       `json:"app,omitempty" toml:"app,omitempty"`
		BrowserAction       *actionReport    `json:"browser_action,omitempty" toml:"browser_action,omitempty"`
		PageAction          *actionReport    `json:"page_action,omitempty" toml:"page_action,omitempty"`
		ContentScripts      []scriptReport   `json:"content_scripts,omitempty" toml:"content_scripts,omitempty"`
		Plugins             []string         `json:"plugins,omitempty" toml:"plugins,omitempty"`
	}

	permissionReport struct {
		APIs  []string `json:"apis" toml:"apis"`
		Hosts []string `json:"hosts" toml:"hosts"`
	}

	appReport struct {
		WebExtent       []string `json:"web_extent,omitempty" toml:"web_extent,omitempty"`
		LaunchURL       string   `json:"launch_url,omitempty" toml:"launch_url,omitempty"`
		LaunchContainer string   `json:"launch_container" toml:"launch_container"`
	}

	actionReport struct {
		Title string `json:"title,omitempty" toml:"title,omitempty"`
		Icon  string `json:"icon,omitempty" toml:"icon,omitempty"`
		Popup string `json:"popup,omitempty" toml:"popup,omitempty"`
	}

	scriptReport struct {
		Matches   []string `json:"matches" toml:"matches"`
		Excludes  []string `json:"exclude_matches,omitempty" toml:"exclude_matches,omitempty"`
		JS        []string `json:"js,omitempty" toml:"js,omitempty"`
		CSS       []string `json:"css,omitempty" toml:"css,omitempty"`
		RunAt     string   `json:"run_at" toml:"run_at"`
		AllFrames bool     `json:"all_frames" toml:"all_frames"`
	}
)

// newInspectCommand creates the `extctl inspect` command.
func newInspectCommand(app *App) *cobra.Command {
	var (
		lf     loadFlagValues
		format string
	)

	cmd := &cobra.Command{
		Use:   "inspect <manifest|dir>",
		Short: "Load an extension and show what it is granted",
		Long: `Load an extension and show its identity, type and permissions.

` + SubtitleStyle.Render("Examples:") + `
  extctl inspect ./my-extension
  extctl inspect ./my-extension/manifest.json --format json
  extctl inspect ./app --location component --set 'permissions=["tabs"]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.loadConfig(cmd.Context())
			if format == "" {
				format = string(cfg.UI.Output)
			}
			out := config.OutputFormat(format)
			if ok, errs := out.IsValid(); !ok {
				return newUsageError(errs[0])
			}

			req, err := lf.request(args[0])
			if err != nil {
				return err
			}
			ext, err := app.loadExtension(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeReport(app.stdout, out, buildReport(ext))
		},
	}

	lf.register(cmd)
	cmd.Flags().StringVar(&format, "format", "", "output format (text, json, toml); defaults to ui.output")
	return cmd
}

func buildReport(ext *extension.Extension) inspectReport {
	r := inspectReport{
		ID:                  ext.ID(),
		Name:                ext.Name(),
		Version:             ext.Version().String(),
		Type:                ext.Type().String(),
		Location:            ext.Location().String(),
		ManifestVersion:     ext.ManifestVersion(),
		Path:                ext.Path(),
		Description:         ext.Description(),
		MinimumHostVersion:  ext.MinimumHostVersion(),
		AllHosts:            ext.HasEffectiveAccessToAllHosts(),
		EffectiveHosts:      orEmpty(ext.GetEffectiveHostPermissions().Strings()),
		Warnings:            orEmpty(ext.GetPermissionMessageStrings()),
		Permissions:         newPermissionReport(ext.RequiredPermissions()),
		OptionalPermissions: newPermissionReport(ext.OptionalPermissions()),
		BrowserAction:       newActionReport(ext.BrowserAction()),
		PageAction:          newActionReport(ext.PageAction()),
	}

	if ext.IsApp() {
		a := &appReport{
			WebExtent:       ext.WebExtent().Strings(),
			LaunchContainer: ext.LaunchContainer().String(),
		}
		if u := ext.GetFullLaunchURL(); u != nil {
			a.LaunchURL = u.String()
		}
		r.App = a
	}

	for _, s := range ext.ContentScripts() {
		r.ContentScripts = append(r.ContentScripts, newScriptReport(s))
	}
	for _, p := range ext.Plugins() {
		r.Plugins = append(r.Plugins, p.Path)
	}
	return r
}

func newPermissionReport(set *permissions.Set) permissionReport {
	if set == nil {
		return permissionReport{APIs: []string{}, Hosts: []string{}}
	}
	return permissionReport{
		APIs:  orEmpty(set.APINames()),
		Hosts: orEmpty(set.ExplicitHosts().Strings()),
	}
}

func newActionReport(a *extension.Action) *actionReport {
	if a == nil {
		return nil
	}
	icon := a.DefaultIconPath
	if icon == "" && len(a.IconPaths) > 0 {
		icon = a.IconPaths[0]
	}
	return &actionReport{Title: a.Title, Icon: icon, Popup: a.PopupURL}
}

func newScriptReport(s *userscript.Script) scriptReport {
	r := scriptReport{
		Matches:   s.URLPatterns.Strings(),
		Excludes:  s.ExcludeURLPatterns.Strings(),
		RunAt:     s.RunLocation.String(),
		AllFrames: s.MatchAllFrames,
	}
	for _, f := range s.JS {
		r.JS = append(r.JS, f.RelativePath)
	}
	for _, f := range s.CSS {
		r.CSS = append(r.CSS, f.RelativePath)
	}
	return r
}

func writeReport(w io.Writer, format config.OutputFormat, r inspectReport) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case config.OutputTOML:
		data, err := toml.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		writeTextReport(w, r)
		return nil
	}
}

func writeTextReport(w io.Writer, r inspectReport) {
	fmt.Fprintln(w, TitleStyle.Render(r.Name)+" "+SubtitleStyle.Render(r.Version))
	fmt.Fprintln(w)

	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintln(w, labelStyle.Render(label)+value)
	}
	field("ID", CmdStyle.Render(r.ID))
	field("Type", r.Type)
	field("Location", r.Location)
	field("Manifest version", fmt.Sprint(r.ManifestVersion))
	field("Path", r.Path)
	field("Description", r.Description)
	field("Minimum browser", r.MinimumHostVersion)

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, sectionStyle.Render(title))
		for _, item := range items {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}
	section("Warnings", r.Warnings)
	section("API permissions", r.Permissions.APIs)
	section("Host permissions", r.Permissions.Hosts)
	section("Optional APIs", r.OptionalPermissions.APIs)
	section("Optional hosts", r.OptionalPermissions.Hosts)

	if r.AllHosts {
		fmt.Fprintln(w)
		fmt.Fprintln(w, WarningStyle.Render("Has access to all hosts"))
	}

	if r.App != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sectionStyle.Render("App"))
		field("Launch URL", r.App.LaunchURL)
		field("Container", r.App.LaunchContainer)
		if len(r.App.WebExtent) > 0 {
			field("Web extent", strings.Join(r.App.WebExtent, ", "))
		}
	}

	for i, s := range r.ContentScripts {
		fmt.Fprintln(w)
		fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("Content script %d", i)))
		field("Matches", strings.Join(s.Matches, ", "))
		field("Excludes", strings.Join(s.Excludes, ", "))
		field("JS", strings.Join(s.JS, ", "))
		field("CSS", strings.Join(s.CSS, ", "))
		field("Run at", s.RunAt)
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
