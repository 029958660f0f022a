// SPDX-License-Identifier: MPL-2.0

package urlpattern

import (
	"cmp"
	"net/url"
	"slices"
)

// Set is an unordered collection of patterns, de-duplicated by their
// canonical string together with their valid-scheme mask. Two patterns that
// print alike but accept different schemes, such as one with file access
// masked away, are distinct members. The zero value is an empty set ready
// to use.
type Set struct {
	patterns map[setKey]Pattern
}

type setKey struct {
	text    string
	schemes Scheme
}

func keyOf(p Pattern) setKey {
	return setKey{text: p.String(), schemes: p.validSchemes}
}

// NewSet returns a set holding the given patterns.
func NewSet(patterns ...Pattern) Set {
	var s Set
	for _, p := range patterns {
		s.Add(p)
	}
	return s
}

// Add inserts p, replacing any pattern with the same canonical string and
// scheme mask.
func (s *Set) Add(p Pattern) {
	if s.patterns == nil {
		s.patterns = make(map[setKey]Pattern)
	}
	s.patterns[keyOf(p)] = p
}

// AddSet inserts every pattern of other.
func (s *Set) AddSet(other Set) {
	for _, p := range other.patterns {
		s.Add(p)
	}
}

// ClearPatterns empties the set.
func (s *Set) ClearPatterns() {
	s.patterns = nil
}

// Len returns the number of distinct patterns.
func (s Set) Len() int { return len(s.patterns) }

// IsEmpty reports whether the set holds no patterns.
func (s Set) IsEmpty() bool { return len(s.patterns) == 0 }

// Patterns returns the patterns sorted by canonical string, then by mask.
func (s Set) Patterns() []Pattern {
	keys := make([]setKey, 0, len(s.patterns))
	for k := range s.patterns {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b setKey) int {
		if c := cmp.Compare(a.text, b.text); c != 0 {
			return c
		}
		return cmp.Compare(a.schemes, b.schemes)
	})
	out := make([]Pattern, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.patterns[k])
	}
	return out
}

// Strings returns the sorted canonical strings of the patterns, one per
// member.
func (s Set) Strings() []string {
	out := make([]string, 0, len(s.patterns))
	for _, p := range s.Patterns() {
		out = append(out, p.String())
	}
	return out
}

// Has reports whether a pattern with the same canonical string and scheme
// mask is present.
func (s Set) Has(p Pattern) bool {
	_, ok := s.patterns[keyOf(p)]
	return ok
}

// MatchesURL reports whether any pattern matches u.
func (s Set) MatchesURL(u *url.URL) bool {
	for _, p := range s.patterns {
		if p.MatchesURL(u) {
			return true
		}
	}
	return false
}

// MatchesString parses raw as a URL and matches it against the set.
func (s Set) MatchesString(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return s.MatchesURL(u)
}

// OverlapsWith reports whether any pattern of s overlaps any pattern of other.
func (s Set) OverlapsWith(other Set) bool {
	for _, a := range s.patterns {
		for _, b := range other.patterns {
			if a.OverlapsWith(b) {
				return true
			}
		}
	}
	return false
}

// Contains reports whether every pattern of other is also in s.
func (s Set) Contains(other Set) bool {
	for k := range other.patterns {
		if _, ok := s.patterns[k]; !ok {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold the same patterns.
func (s Set) Equal(other Set) bool {
	return s.Len() == other.Len() && s.Contains(other)
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	var c Set
	c.AddSet(s)
	return c
}

// Union returns the patterns in a or b.
func Union(a, b Set) Set {
	out := a.Clone()
	out.AddSet(b)
	return out
}

// Intersection returns the patterns present in both a and b.
func Intersection(a, b Set) Set {
	var out Set
	for k, p := range a.patterns {
		if _, ok := b.patterns[k]; ok {
			out.Add(p)
		}
	}
	return out
}

// Difference returns the patterns of a that are not in b.
func Difference(a, b Set) Set {
	var out Set
	for k, p := range a.patterns {
		if _, ok := b.patterns[k]; !ok {
			out.Add(p)
		}
	}
	return out
}
