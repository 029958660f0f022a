// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"sort"
	"strconv"

	"github.com/Crystalnix/BitPop-sub015/pkg/manifest"

	"golang.org/x/exp/maps"
)

// Standard icon sizes, in pixels.
const (
	IconBitty    = 16
	IconSmallish = 24
	IconSmall    = 32
	IconMedium   = 48
	IconLarge    = 128
)

// Icon lookup modes for IconSet.Get.
const (
	MatchExactly IconMatch = iota
	MatchBigger
	MatchSmaller
)

// IconSizes are the sizes read from the icons key, largest first.
var IconSizes = []int{IconLarge, IconMedium, IconSmall, IconSmallish, IconBitty}

type (
	// IconMatch selects how IconSet.Get treats a missing size.
	IconMatch int

	// IconSet maps icon sizes to paths relative to the extension root.
	IconSet struct {
		paths map[int]string
	}
)

// Add records path for size.
func (s *IconSet) Add(size int, path string) {
	if s.paths == nil {
		s.paths = make(map[int]string)
	}
	s.paths[size] = path
}

// Len returns the number of icons.
func (s IconSet) Len() int { return len(s.paths) }

// Sizes returns the sizes present, ascending.
func (s IconSet) Sizes() []int {
	sizes := make([]int, 0, len(s.paths))
	for size := range s.paths {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	return sizes
}

// Map returns a copy of the size to path mapping.
func (s IconSet) Map() map[int]string { return maps.Clone(s.paths) }

// Get returns the path for size. With MatchBigger it falls back to the
// smallest larger icon, with MatchSmaller to the largest smaller one. An
// empty string means no icon qualifies.
func (s IconSet) Get(size int, match IconMatch) string {
	if p, ok := s.paths[size]; ok {
		return p
	}
	sizes := s.Sizes()
	switch match {
	case MatchBigger:
		for _, sz := range sizes {
			if sz > size {
				return s.paths[sz]
			}
		}
	case MatchSmaller:
		for i := len(sizes) - 1; i >= 0; i-- {
			if sizes[i] < size {
				return s.paths[sizes[i]]
			}
		}
	}
	return ""
}

// ContainsPath reports whether any size maps to path.
func (s IconSet) ContainsPath(path string) bool {
	for _, p := range s.paths {
		if p == path {
			return true
		}
	}
	return false
}

func (l *loader) loadIcons() error {
	if !l.m.Has(manifest.KeyIcons) {
		return nil
	}
	icons, ok := l.m.GetDict(manifest.KeyIcons)
	if !ok {
		return loadError(manifest.KeyIcons, MsgInvalidIcons)
	}
	for _, size := range IconSizes {
		key := strconv.Itoa(size)
		v := icons.Field(key)
		if !v.Exists() {
			continue
		}
		path, ok := v.AsString()
		if ok && len(path) > 0 && path[0] == '/' {
			path = path[1:]
		}
		if !ok || path == "" {
			return loadError(manifest.KeyIcons, MsgInvalidIconPath, key)
		}
		l.ext.icons.Add(size, path)
	}
	return nil
}
