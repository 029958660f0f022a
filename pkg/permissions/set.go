// SPDX-License-Identifier: MPL-2.0

package permissions

import (
	"net/url"
	"sort"

	"github.com/Crystalnix/BitPop-sub015/pkg/urlpattern"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Set is an immutable bundle of API permissions and host patterns. Explicit
// hosts come from the permissions key and always carry the path "/*";
// scriptable hosts come from content scripts. The zero value is an empty
// set without a registry, which answers every flag query with false.
type Set struct {
	registry        *Registry
	apis            map[ID]struct{}
	explicitHosts   urlpattern.Set
	scriptableHosts urlpattern.Set
	effectiveHosts  urlpattern.Set
}

// NewSet builds a set. Unknown ids are dropped. The host sets are copied.
func NewSet(reg *Registry, apis []ID, explicitHosts, scriptableHosts urlpattern.Set) *Set {
	s := &Set{registry: reg, apis: make(map[ID]struct{}, len(apis))}
	for _, id := range apis {
		if reg != nil && reg.ByID(id) == nil {
			continue
		}
		s.apis[id] = struct{}{}
	}
	for _, p := range explicitHosts.Patterns() {
		p.SetPath("/*")
		s.explicitHosts.Add(p)
	}
	s.scriptableHosts = scriptableHosts.Clone()
	s.effectiveHosts = urlpattern.Union(s.explicitHosts, s.scriptableHosts)
	return s
}

// EmptySet returns a set with no permissions bound to reg.
func EmptySet(reg *Registry) *Set {
	return NewSet(reg, nil, urlpattern.Set{}, urlpattern.Set{})
}

// Registry returns the registry the set resolves ids against.
func (s *Set) Registry() *Registry { return s.registry }

// APIs returns the API permission ids in ascending order.
func (s *Set) APIs() []ID {
	ids := make([]ID, 0, len(s.apis))
	for id := range s.apis {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// APINames returns the sorted names of the API permissions.
func (s *Set) APINames() []string {
	names := make([]string, 0, len(s.apis))
	for _, id := range s.APIs() {
		if p := s.permission(id); p != nil {
			names = append(names, p.Name())
		}
	}
	sort.Strings(names)
	return names
}

// ExplicitHosts returns a copy of the explicit host patterns.
func (s *Set) ExplicitHosts() urlpattern.Set { return s.explicitHosts.Clone() }

// ScriptableHosts returns a copy of the content script host patterns.
func (s *Set) ScriptableHosts() urlpattern.Set { return s.scriptableHosts.Clone() }

// EffectiveHosts returns a copy of the union of explicit and scriptable hosts.
func (s *Set) EffectiveHosts() urlpattern.Set { return s.effectiveHosts.Clone() }

// IsEmpty reports whether the set holds no APIs and no hosts.
func (s *Set) IsEmpty() bool {
	return len(s.apis) == 0 && s.explicitHosts.IsEmpty() && s.scriptableHosts.IsEmpty()
}

// HasAPIPermission reports whether id is in the set.
func (s *Set) HasAPIPermission(id ID) bool {
	_, ok := s.apis[id]
	return ok
}

// HasAccessToFunction reports whether an API member such as "tabs.create"
// may be called. Some modules and functions need no permission.
func (s *Set) HasAccessToFunction(functionName string) bool {
	if slices.Contains(nonPermissionFunctions, functionName) {
		return true
	}

	name := PermissionName(functionName)
	if s.registry != nil {
		if p := s.registry.ByName(name); p != nil && s.HasAPIPermission(p.ID()) {
			return true
		}
	}
	return slices.Contains(nonPermissionModules, name)
}

// HasAnyAccessToAPI reports whether any member of the named API is usable.
func (s *Set) HasAnyAccessToAPI(apiName string) bool {
	if s.HasAccessToFunction(apiName) {
		return true
	}
	for _, fn := range nonPermissionFunctions {
		if apiName == PermissionName(fn) {
			return true
		}
	}
	return false
}

// HasExplicitAccessToOrigin reports whether an explicit host matches origin.
func (s *Set) HasExplicitAccessToOrigin(origin *url.URL) bool {
	return s.explicitHosts.MatchesURL(origin)
}

// HasScriptableAccessToURL reports whether a content script host matches u.
func (s *Set) HasScriptableAccessToURL(u *url.URL) bool {
	return s.scriptableHosts.MatchesURL(u)
}

// HasEffectiveAccessToURL reports whether any host pattern matches u.
func (s *Set) HasEffectiveAccessToURL(u *url.URL) bool {
	return s.effectiveHosts.MatchesURL(u)
}

// HasEffectiveAccessToAllHosts reports whether the set reaches every host,
// either through an all-hosts pattern or an API that implies it.
func (s *Set) HasEffectiveAccessToAllHosts() bool {
	for _, p := range s.effectiveHosts.Patterns() {
		if p.MatchAllURLs() || (p.MatchSubdomains() && p.Host() == "") {
			return true
		}
	}
	return s.anyAPI((*APIPermission).ImpliesFullURLAccess)
}

// HasEffectiveFullAccess reports whether an API grants native code access.
func (s *Set) HasEffectiveFullAccess() bool {
	return s.anyAPI((*APIPermission).ImpliesFullAccess)
}

// HasPrivatePermissions reports whether a component-only API is present.
func (s *Set) HasPrivatePermissions() bool {
	return s.anyAPI((*APIPermission).IsComponentOnly)
}

// Contains reports whether every permission of other is also in s.
func (s *Set) Contains(other *Set) bool {
	if other == nil || other.IsEmpty() {
		return true
	}
	for id := range other.apis {
		if !s.HasAPIPermission(id) {
			return false
		}
	}
	return s.explicitHosts.Contains(other.explicitHosts) &&
		s.scriptableHosts.Contains(other.scriptableHosts)
}

// Equal reports whether both sets hold the same APIs and hosts.
func (s *Set) Equal(other *Set) bool {
	if other == nil {
		return s.IsEmpty()
	}
	return maps.Equal(s.apis, other.apis) &&
		s.explicitHosts.Equal(other.explicitHosts) &&
		s.scriptableHosts.Equal(other.scriptableHosts)
}

// Union returns the permissions in a or b. Either may be nil.
func Union(a, b *Set) *Set {
	a, b = orEmpty(a, b), orEmpty(b, a)
	apis := append(a.APIs(), b.APIs()...)
	return NewSet(pickRegistry(a, b), apis,
		urlpattern.Union(a.explicitHosts, b.explicitHosts),
		urlpattern.Union(a.scriptableHosts, b.scriptableHosts))
}

// Intersection returns the permissions present in both a and b.
func Intersection(a, b *Set) *Set {
	a, b = orEmpty(a, b), orEmpty(b, a)
	var apis []ID
	for id := range a.apis {
		if b.HasAPIPermission(id) {
			apis = append(apis, id)
		}
	}
	return NewSet(pickRegistry(a, b), apis,
		urlpattern.Intersection(a.explicitHosts, b.explicitHosts),
		urlpattern.Intersection(a.scriptableHosts, b.scriptableHosts))
}

// Difference returns the permissions of a that are not in b.
func Difference(a, b *Set) *Set {
	a, b = orEmpty(a, b), orEmpty(b, a)
	var apis []ID
	for id := range a.apis {
		if !b.HasAPIPermission(id) {
			apis = append(apis, id)
		}
	}
	return NewSet(pickRegistry(a, b), apis,
		urlpattern.Difference(a.explicitHosts, b.explicitHosts),
		urlpattern.Difference(a.scriptableHosts, b.scriptableHosts))
}

// DistinctHostsForDisplay returns the effective hosts as shown in install
// warnings: one entry per host with its best registry domain, file URLs
// excluded.
func (s *Set) DistinctHostsForDisplay() []string {
	return DistinctHosts(s.effectiveHosts, true, true)
}

// PermissionMessages returns the install warnings for the set. Full access
// hides every other warning. Host access comes next, followed by the API
// warnings in id order.
func (s *Set) PermissionMessages() []Message {
	if s.HasEffectiveFullAccess() {
		return []Message{{ID: MessageFullAccess, Text: simpleMessageText[MessageFullAccess]}}
	}

	var msgs []Message
	if s.HasEffectiveAccessToAllHosts() {
		msgs = append(msgs, Message{ID: MessageHostsAll, Text: simpleMessageText[MessageHostsAll]})
	} else if hosts := s.DistinctHostsForDisplay(); len(hosts) > 0 {
		msgs = append(msgs, HostListMessage(hosts))
	}
	return append(msgs, s.simpleMessages()...)
}

// WarningMessages returns the text of PermissionMessages.
func (s *Set) WarningMessages() []string {
	msgs := s.PermissionMessages()
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}

// HasLessPrivilegesThan reports whether moving from s to other would grant
// new privileges and so needs the user's consent again.
func (s *Set) HasLessPrivilegesThan(other *Set) bool {
	if other == nil {
		return false
	}
	if s.HasEffectiveFullAccess() {
		return false
	}
	if other.HasEffectiveFullAccess() {
		return true
	}
	return s.HasLessHostPrivilegesThan(other) || s.HasLessAPIPrivilegesThan(other)
}

// HasLessHostPrivilegesThan reports whether other reaches hosts s does not.
// Paths, schemes and registry domains are ignored.
func (s *Set) HasLessHostPrivilegesThan(other *Set) bool {
	if other == nil || s.HasEffectiveAccessToAllHosts() {
		return false
	}
	if other.HasEffectiveAccessToAllHosts() {
		return true
	}

	old := DistinctHosts(s.effectiveHosts, false, false)
	for _, h := range DistinctHosts(other.effectiveHosts, false, false) {
		if !slices.Contains(old, h) {
			return true
		}
	}
	return false
}

// HasLessAPIPrivilegesThan reports whether other carries API warnings that
// s does not.
func (s *Set) HasLessAPIPrivilegesThan(other *Set) bool {
	if other == nil {
		return false
	}
	current := s.simpleMessages()
	for _, m := range other.simpleMessages() {
		if !slices.Contains(current, m) {
			return true
		}
	}
	return false
}

// simpleMessages returns the distinct API warnings sorted by id.
func (s *Set) simpleMessages() []Message {
	var msgs []Message
	for id := range s.apis {
		p := s.permission(id)
		if p == nil || p.MessageID() <= MessageNone {
			continue
		}
		if m := p.Message(); !slices.Contains(msgs, m) {
			msgs = append(msgs, m)
		}
	}
	sortMessages(msgs)
	return msgs
}

func (s *Set) anyAPI(pred func(*APIPermission) bool) bool {
	for id := range s.apis {
		if p := s.permission(id); p != nil && pred(p) {
			return true
		}
	}
	return false
}

func (s *Set) permission(id ID) *APIPermission {
	if s.registry == nil {
		return nil
	}
	return s.registry.ByID(id)
}

func orEmpty(s, fallback *Set) *Set {
	if s != nil {
		return s
	}
	var reg *Registry
	if fallback != nil {
		reg = fallback.registry
	}
	return EmptySet(reg)
}

func pickRegistry(a, b *Set) *Registry {
	if a.registry != nil {
		return a.registry
	}
	return b.registry
}
