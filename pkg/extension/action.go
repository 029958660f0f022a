// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"strconv"

	"github.com/Crystalnix/BitPop-sub015/pkg/manifest"

	"golang.org/x/exp/slices"
)

// missingPopupPath stands in for the path of a popup dictionary without one.
const missingPopupPath = "<missing>"

// Action is a browser action or page action: the toolbar or address bar
// button of an extension.
type Action struct {
	// ID is the legacy page action id.
	ID string
	// Title is the tooltip.
	Title string
	// IconPaths are the legacy icon list, in manifest order.
	IconPaths []string
	// DefaultIconPath is the icon shown until the extension sets another.
	DefaultIconPath string
	// PopupURL is the resolved popup page, empty when there is none.
	PopupURL string
}

// Clone returns a deep copy.
func (a *Action) Clone() *Action {
	if a == nil {
		return nil
	}
	c := *a
	c.IconPaths = slices.Clone(a.IconPaths)
	return &c
}

func (l *loader) loadActions() error {
	var (
		pageDict  manifest.Dict
		hasPage   bool
		hasList   = l.m.Has(manifest.KeyPageActions)
		hasSingle = l.m.Has(manifest.KeyPageAction)
	)

	switch {
	case hasList && hasSingle:
		return loadError(manifest.KeyPageActions, MsgInvalidPageActionsList)
	case hasList:
		list, ok := l.m.GetList(manifest.KeyPageActions)
		if !ok {
			return loadError(manifest.KeyPageActions, MsgInvalidPageActionsList)
		}
		switch list.Len() {
		case 0:
			// Same as no page action at all.
		case 1:
			if pageDict, ok = list.GetDict(0); !ok {
				return loadError(manifest.KeyPageActions, MsgInvalidPageAction)
			}
			hasPage = true
		default:
			return loadError(manifest.KeyPageActions, MsgInvalidPageActionsListSize)
		}
	case hasSingle:
		var ok bool
		if pageDict, ok = l.m.GetDict(manifest.KeyPageAction); !ok {
			return loadError(manifest.KeyPageAction, MsgInvalidPageAction)
		}
		hasPage = true
	}

	if hasPage {
		a, err := l.loadAction(pageDict, manifest.KeyPageAction, true)
		if err != nil {
			return err
		}
		l.ext.pageAction = a
	}

	if l.m.Has(manifest.KeyBrowserAction) {
		d, ok := l.m.GetDict(manifest.KeyBrowserAction)
		if !ok {
			return loadError(manifest.KeyBrowserAction, MsgInvalidBrowserAction)
		}
		a, err := l.loadAction(d, manifest.KeyBrowserAction, false)
		if err != nil {
			return err
		}
		l.ext.browserAction = a
	}
	return nil
}

func (l *loader) loadAction(d manifest.Dict, key string, pageAction bool) (*Action, error) {
	a := &Action{}

	if d.Has(manifest.KeyActionIcons) {
		iconPathError := func(i int) error {
			if pageAction && l.ext.manifestVersion < 2 {
				return loadError(key, MsgInvalidPageActionIconPaths)
			}
			return loadError(key, MsgInvalidIconPath, strconv.Itoa(i))
		}
		icons, ok := d.GetList(manifest.KeyActionIcons)
		if !ok {
			return nil, iconPathError(0)
		}
		for i := range icons.Len() {
			path, ok := icons.GetString(i)
			if !ok || path == "" {
				return nil, iconPathError(i)
			}
			a.IconPaths = append(a.IconPaths, path)
		}
	}

	if d.Has(manifest.KeyActionID) {
		id, ok := d.GetString(manifest.KeyActionID)
		if !ok {
			return nil, loadError(key, MsgInvalidPageActionID)
		}
		a.ID = id
	}

	if d.Has(manifest.KeyActionDefaultIcon) {
		icon, ok := d.GetString(manifest.KeyActionDefaultIcon)
		if !ok || icon == "" {
			return nil, loadError(key, MsgInvalidPageActionIconPath)
		}
		a.DefaultIconPath = icon
	}

	switch {
	case d.Has(manifest.KeyActionDefaultTitle):
		title, ok := d.GetString(manifest.KeyActionDefaultTitle)
		if !ok {
			return nil, loadError(key, MsgInvalidPageActionDefaultTitle)
		}
		a.Title = title
	case d.Has(manifest.KeyActionName):
		name, ok := d.GetString(manifest.KeyActionName)
		if !ok {
			return nil, loadError(key, MsgInvalidPageActionName)
		}
		a.Title = name
	}

	popup, err := l.loadActionPopup(d, key)
	if err != nil {
		return nil, err
	}
	a.PopupURL = popup
	return a, nil
}

// loadActionPopup returns the resolved popup URL from default_popup or the
// legacy popup key. Both forms accept a path string or, in the legacy form,
// a dictionary with a path.
func (l *loader) loadActionPopup(d manifest.Dict, key string) (string, error) {
	hasNew, hasOld := d.Has(manifest.KeyActionDefaultPopup), d.Has(manifest.KeyActionPopup)
	var popupKey string
	switch {
	case hasNew && hasOld:
		return "", loadError(key, MsgInvalidPageActionOldAndNewKeys,
			manifest.KeyActionDefaultPopup, manifest.KeyActionPopup)
	case hasNew:
		popupKey = manifest.KeyActionDefaultPopup
	case hasOld:
		popupKey = manifest.KeyActionPopup
	default:
		return "", nil
	}

	v := d.Field(popupKey)
	var path string
	if s, ok := v.AsString(); ok {
		path = s
	} else if pd, ok := v.AsDict(); ok {
		if path, ok = pd.GetString(manifest.KeyActionPopupPath); !ok {
			return "", loadError(key, MsgInvalidPageActionPopupPath, missingPopupPath)
		}
	} else {
		return "", loadError(key, MsgInvalidPageActionPopup)
	}

	if path == "" {
		return "", nil
	}
	u := l.ext.GetResourceURL(path)
	if u == nil {
		return "", loadError(key, MsgInvalidPageActionPopupPath, path)
	}
	return u.String(), nil
}
