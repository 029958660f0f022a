// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"strconv"

	"github.com/Crystalnix/BitPop-sub015/pkg/manifest"
	"github.com/Crystalnix/BitPop-sub015/pkg/permissions"
	"github.com/Crystalnix/BitPop-sub015/pkg/urlpattern"

	"golang.org/x/exp/slices"
)

const (
	// HostPermissionSchemes are the schemes host permissions may use.
	HostPermissionSchemes = ContentScriptSchemes

	// Hosts under chrome:// an ordinary extension may request.
	chromeUIScheme        = "chrome"
	chromeUIFaviconHost   = "favicon"
	chromeUIThumbnailHost = "thumb"
)

// parsedPermissions is the outcome of one pass over a permissions list.
type parsedPermissions struct {
	apis  []permissions.ID
	hosts urlpattern.Set
}

// IsLegacyUnknownPermissionTolerated reports whether a permissions entry that
// is neither a known API nor a host pattern is skipped instead of failing the
// load. Manifests written for newer browsers list APIs this one lacks, so
// every such entry is tolerated.
func IsLegacyUnknownPermissionTolerated(entry string) bool {
	return true
}

// IsHostedAppTypeMismatchTolerated reports whether an API permission that
// does not apply to the extension type is dropped instead of rejected.
// Hosted apps historically listed extension-only permissions, so outside
// strict error checking they load without them.
//
// TODO: revisit once hosted app manifests in the gallery have been cleaned up.
func IsHostedAppTypeMismatchTolerated(t manifest.Type, flags LoadFlags) bool {
	return t == manifest.TypeHostedApp && !flags.Has(StrictErrorChecks)
}

// loadPermissions resolves the permissions and optional_permissions keys.
func (l *loader) loadPermissions() error {
	required, err := l.parsePermissions(manifest.KeyPermissions, false)
	if err != nil {
		return err
	}
	optional, err := l.parsePermissions(manifest.KeyOptionalPermissions, true)
	if err != nil {
		return err
	}
	l.required = required
	l.optional = optional
	return nil
}

func (l *loader) parsePermissions(key string, optional bool) (parsedPermissions, error) {
	var out parsedPermissions
	if !l.m.Has(key) {
		return out, nil
	}

	listMsg, entryMsg := MsgInvalidPermissions, MsgInvalidPermission
	if optional {
		listMsg, entryMsg = MsgInvalidOptionalPermissions, MsgInvalidOptionalPermission
	}
	list, ok := l.m.GetList(key)
	if !ok {
		return out, loadError(key, listMsg)
	}

	experimental := l.experimentalGranted()
	for i := range list.Len() {
		entry, ok := list.GetString(i)
		if !ok {
			return out, loadError(key, entryMsg, strconv.Itoa(i))
		}

		if p := l.registry.ByName(entry); p != nil {
			keep, err := l.checkAPIPermission(key, p, optional)
			if err != nil {
				return out, err
			}
			if keep && !slices.Contains(out.apis, p.ID()) {
				out.apis = append(out.apis, p.ID())
			}
			continue
		}

		valid := HostPermissionSchemes
		if l.ext.CanExecuteScriptEverywhere() {
			valid = urlpattern.SchemeAll
		}
		pattern := urlpattern.New(valid)
		if pattern.Parse(entry, l.parseOption()) == urlpattern.ParseSuccess {
			if !l.canSpecifyHostPermission(pattern, experimental) {
				return out, loadError(key, MsgInvalidPermissionScheme, key, strconv.Itoa(i))
			}
			// The path of a host grant is meaningless.
			pattern.SetPath("/*")
			l.applyFileAccess(&pattern)
			out.hosts.Add(pattern)
			continue
		}

		if !IsLegacyUnknownPermissionTolerated(entry) {
			return out, loadError(key, entryMsg, strconv.Itoa(i))
		}
		l.logger.Debug("ignoring unknown permission", "key", key, "index", i, "permission", entry)
	}
	return out, nil
}

// checkAPIPermission decides whether a known API permission may be listed.
// It returns keep=false without an error when the entry is dropped.
func (l *loader) checkAPIPermission(key string, p *permissions.APIPermission, optional bool) (bool, error) {
	if l.ext.location == LocationComponent {
		return true, nil
	}

	if err := l.canSpecifyAPIPermission(key, p); err != nil {
		return false, err
	}

	if !p.SupportsType(l.ext.typ) {
		if IsHostedAppTypeMismatchTolerated(l.ext.typ, l.flags) {
			l.logger.Warn("dropping permission unsupported by hosted apps", "permission", p.Name())
			return false, nil
		}
		return false, loadError(key, MsgPermissionNotAllowed, p.Name())
	}

	if optional && p.CannotBeOptional() {
		return false, loadError(key, MsgPermissionCannotBeOptional, p.Name())
	}
	return true, nil
}

func (l *loader) canSpecifyAPIPermission(key string, p *permissions.APIPermission) error {
	if p.HasWhitelist() {
		if p.IsWhitelisted(l.ext.id) {
			return nil
		}
		return loadError(key, MsgPermissionNotAllowed, p.Name())
	}
	if p.IsComponentOnly() {
		return loadError(key, MsgPermissionNotAllowed, p.Name())
	}
	if p.RequiresExperimentalFlag() && !l.ext.canSpecifyExperimentalPermission() {
		return loadError(key, MsgExperimentalFlagRequired)
	}
	return nil
}

// canSpecifyHostPermission limits chrome:// hosts to the favicon service,
// the thumbnail service for experimental extensions, and anything for
// extensions that can script everywhere.
func (l *loader) canSpecifyHostPermission(p urlpattern.Pattern, experimental bool) bool {
	if p.MatchAllURLs() || !p.MatchesScheme(chromeUIScheme) {
		return true
	}
	switch {
	case p.Host() == chromeUIFaviconHost:
		return true
	case p.Host() == chromeUIThumbnailHost && experimental:
		return true
	default:
		return l.ext.CanExecuteScriptEverywhere()
	}
}

// experimentalGranted reports whether the required permissions list
// experimental and the extension may use it.
func (l *loader) experimentalGranted() bool {
	list, ok := l.m.GetList(manifest.KeyPermissions)
	if !ok {
		return false
	}
	names, _, _ := list.Strings()
	if p := l.registry.ByID(permissions.Experimental); p == nil || !slices.Contains(names, p.Name()) {
		return false
	}
	return l.ext.canSpecifyExperimentalPermission()
}

// applyFileAccess records a request for file:// access and, unless file
// access was granted, removes file from the pattern's schemes.
func (l *loader) applyFileAccess(p *urlpattern.Pattern) {
	if !p.MatchesScheme("file") || l.ext.CanExecuteScriptEverywhere() {
		return
	}
	l.ext.wantsFileAccess = true
	if !l.flags.Has(AllowFileAccess) {
		p.SetValidSchemes(p.ValidSchemes() &^ urlpattern.SchemeFile)
	}
}

// buildPermissionSets assembles the required and optional sets, adding the
// APIs implied by other manifest sections and the content script hosts.
func (l *loader) buildPermissionSets() {
	apis := slices.Clone(l.required.apis)
	if len(l.ext.plugins) > 0 {
		apis = append(apis, permissions.Plugin)
	}
	if l.ext.devtoolsURL != nil {
		apis = append(apis, permissions.Devtools)
	}

	var scriptable urlpattern.Set
	for _, s := range l.ext.contentScripts {
		scriptable.AddSet(s.URLPatterns)
	}

	l.ext.requiredPermissions = permissions.NewSet(l.registry, apis, l.required.hosts, scriptable)
	l.ext.optionalPermissions = permissions.NewSet(l.registry, l.optional.apis, l.optional.hosts, urlpattern.Set{})
	l.ext.activePermissions = l.ext.requiredPermissions
}
