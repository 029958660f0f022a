// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"github.com/Crystalnix/BitPop-sub015/pkg/manifest"

	"golang.org/x/exp/maps"
)

// Keys inside the theme dictionary.
const (
	themeImages            = "images"
	themeColors            = "colors"
	themeTints             = "tints"
	themeDisplayProperties = "display_properties"
)

type (
	// Theme is the parsed theme section of a theme package.
	Theme struct {
		// Images maps an image id to a path inside the package.
		Images map[string]string
		Colors map[string]Color
		Tints  map[string]Tint
		// DisplayProperties are passed through unchanged.
		DisplayProperties map[string]any
	}

	// Color is an RGB color with an optional alpha in [0, 1].
	Color struct {
		R, G, B  int
		A        float64
		HasAlpha bool
	}

	// Tint is an HSL shift. Negative components leave the channel alone.
	Tint struct {
		H, S, L float64
	}
)

// Clone returns a deep copy.
func (t *Theme) Clone() *Theme {
	if t == nil {
		return nil
	}
	return &Theme{
		Images:            maps.Clone(t.Images),
		Colors:            maps.Clone(t.Colors),
		Tints:             maps.Clone(t.Tints),
		DisplayProperties: maps.Clone(t.DisplayProperties),
	}
}

// containsNonThemeKeys reports the first manifest key a theme may not use.
func (l *loader) containsNonThemeKeys() (string, bool) {
	for _, key := range l.m.Keys() {
		if !IsBaseKey(key) && key != manifest.KeyTheme {
			return key, true
		}
	}
	return "", false
}

func (l *loader) loadTheme() error {
	if _, bad := l.containsNonThemeKeys(); bad {
		return loadError(manifest.KeyTheme, MsgThemesCannotContainExtensions)
	}
	d, ok := l.m.GetDict(manifest.KeyTheme)
	if !ok {
		return loadError(manifest.KeyTheme, MsgInvalidTheme)
	}

	theme := &Theme{}
	var err error
	if theme.Images, err = loadThemeImages(d); err != nil {
		return err
	}
	if theme.Colors, err = loadThemeColors(d); err != nil {
		return err
	}
	if theme.Tints, err = loadThemeTints(d); err != nil {
		return err
	}
	if props, ok := d.Field(themeDisplayProperties).Interface().(map[string]any); ok {
		theme.DisplayProperties = props
	}
	l.ext.theme = theme
	return nil
}

func loadThemeImages(d manifest.Dict) (map[string]string, error) {
	images, ok := d.GetDict(themeImages)
	if !ok {
		return nil, nil
	}
	out := make(map[string]string, images.Len())
	for _, k := range images.Keys() {
		path, ok := images.Field(k).AsString()
		if !ok {
			return nil, loadError(manifest.KeyTheme, MsgInvalidThemeImages)
		}
		out[k] = path
	}
	return out, nil
}

// loadThemeColors accepts [r, g, b] or [r, g, b, a] lists.
func loadThemeColors(d manifest.Dict) (map[string]Color, error) {
	colors, ok := d.GetDict(themeColors)
	if !ok {
		return nil, nil
	}
	out := make(map[string]Color, colors.Len())
	for _, k := range colors.Keys() {
		list, ok := colors.Field(k).AsList()
		if !ok || (list.Len() != 3 && list.Len() != 4) {
			return nil, loadError(manifest.KeyTheme, MsgInvalidThemeColors)
		}
		var c Color
		rgb := []*int{&c.R, &c.G, &c.B}
		for i, dst := range rgb {
			if *dst, ok = list.GetInt(i); !ok {
				return nil, loadError(manifest.KeyTheme, MsgInvalidThemeColors)
			}
		}
		if list.Len() == 4 {
			a, ok := list.At(3).Interface().(float64)
			if !ok {
				return nil, loadError(manifest.KeyTheme, MsgInvalidThemeColors)
			}
			c.A, c.HasAlpha = a, true
		}
		out[k] = c
	}
	return out, nil
}

func loadThemeTints(d manifest.Dict) (map[string]Tint, error) {
	tints, ok := d.GetDict(themeTints)
	if !ok {
		return nil, nil
	}
	out := make(map[string]Tint, tints.Len())
	for _, k := range tints.Keys() {
		list, ok := tints.Field(k).AsList()
		if !ok || list.Len() != 3 {
			return nil, loadError(manifest.KeyTheme, MsgInvalidThemeTints)
		}
		var hsl [3]float64
		for i := range hsl {
			n, ok := list.At(i).Interface().(float64)
			if !ok {
				return nil, loadError(manifest.KeyTheme, MsgInvalidThemeTints)
			}
			hsl[i] = n
		}
		out[k] = Tint{H: hsl[0], S: hsl[1], L: hsl[2]}
	}
	return out, nil
}
