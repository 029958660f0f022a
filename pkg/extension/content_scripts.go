// SPDX-License-Identifier: MPL-2.0

package extension

import (
	"strconv"

	"github.com/Crystalnix/BitPop-sub015/pkg/manifest"
	"github.com/Crystalnix/BitPop-sub015/pkg/urlpattern"
	"github.com/Crystalnix/BitPop-sub015/pkg/userscript"
)

// ContentScriptSchemes are the schemes content script matches may use.
const ContentScriptSchemes = urlpattern.SchemeHTTP | urlpattern.SchemeHTTPS |
	urlpattern.SchemeFile | urlpattern.SchemeFTP | urlpattern.SchemeChromeUI

func (l *loader) loadContentScripts() error {
	if !l.m.Has(manifest.KeyContentScripts) {
		return nil
	}
	list, ok := l.m.GetList(manifest.KeyContentScripts)
	if !ok {
		return loadError(manifest.KeyContentScripts, MsgInvalidContentScriptsList)
	}

	for i := range list.Len() {
		d, ok := list.GetDict(i)
		if !ok {
			return loadError(manifest.KeyContentScripts, MsgInvalidContentScript, strconv.Itoa(i))
		}
		script, err := l.loadUserScript(d, i)
		if err != nil {
			return err
		}
		script.ExtensionID = l.ext.id
		if l.ext.convertedFromUserScript {
			// Greasemonkey scripts run in every frame.
			script.EmulateGreasemonkey = true
			script.MatchAllFrames = true
		}
		l.ext.contentScripts = append(l.ext.contentScripts, script)
	}
	return nil
}

func (l *loader) loadUserScript(d manifest.Dict, idx int) (*userscript.Script, error) {
	index := strconv.Itoa(idx)
	fail := func(format string, args ...string) error {
		return loadError(manifest.KeyContentScripts, format, append([]string{index}, args...)...)
	}

	script := &userscript.Script{}

	if d.Has(manifest.KeyRunAt) {
		s, ok := d.GetString(manifest.KeyRunAt)
		if !ok {
			return nil, fail(MsgInvalidRunAt)
		}
		loc, err := userscript.ParseRunLocation(s)
		if err != nil {
			return nil, fail(MsgInvalidRunAt)
		}
		script.RunLocation = loc
	}

	if d.Has(manifest.KeyAllFrames) {
		all, ok := d.GetBool(manifest.KeyAllFrames)
		if !ok {
			return nil, fail(MsgInvalidAllFrames)
		}
		script.MatchAllFrames = all
	}

	matches, ok := d.GetList(manifest.KeyMatches)
	if !ok {
		return nil, fail(MsgInvalidMatches)
	}
	if matches.Len() == 0 {
		return nil, fail(MsgInvalidMatchCount)
	}
	set, err := l.loadScriptPatterns(matches, MsgInvalidMatch, index)
	if err != nil {
		return nil, err
	}
	script.URLPatterns = set

	if d.Has(manifest.KeyExcludeMatches) {
		excludes, ok := d.GetList(manifest.KeyExcludeMatches)
		if !ok {
			return nil, fail(MsgInvalidExcludeMatches)
		}
		set, err := l.loadScriptPatterns(excludes, MsgInvalidExcludeMatch, index)
		if err != nil {
			return nil, err
		}
		script.ExcludeURLPatterns = set
	}

	if script.IncludeGlobs, err = loadGlobs(d, index, manifest.KeyIncludeGlobs); err != nil {
		return nil, err
	}
	if script.ExcludeGlobs, err = loadGlobs(d, index, manifest.KeyExcludeGlobs); err != nil {
		return nil, err
	}

	var js, css manifest.List
	if d.Has(manifest.KeyJS) {
		if js, ok = d.GetList(manifest.KeyJS); !ok {
			return nil, fail(MsgInvalidJSList)
		}
	}
	if d.Has(manifest.KeyCSS) {
		if css, ok = d.GetList(manifest.KeyCSS); !ok {
			return nil, fail(MsgInvalidCSSList)
		}
	}
	if js.Len()+css.Len() == 0 {
		return nil, fail(MsgMissingFile)
	}

	if script.JS, err = l.loadScriptFiles(js, MsgInvalidJS, index); err != nil {
		return nil, err
	}
	if script.CSS, err = l.loadScriptFiles(css, MsgInvalidCSS, index); err != nil {
		return nil, err
	}
	return script, nil
}

// loadScriptPatterns parses a matches or exclude_matches list. format takes
// the script index, the entry index and the reason.
func (l *loader) loadScriptPatterns(list manifest.List, format, index string) (urlpattern.Set, error) {
	valid := ContentScriptSchemes
	if l.ext.CanExecuteScriptEverywhere() {
		valid = urlpattern.SchemeAll
	}

	var set urlpattern.Set
	for j := range list.Len() {
		s, ok := list.GetString(j)
		if !ok {
			return urlpattern.Set{}, loadError(manifest.KeyContentScripts, format, index, strconv.Itoa(j), MsgExpectString)
		}
		p := urlpattern.New(valid)
		if r := p.Parse(s, l.parseOption()); r != urlpattern.ParseSuccess {
			return urlpattern.Set{}, loadError(manifest.KeyContentScripts, format, index, strconv.Itoa(j), r.String())
		}
		l.applyFileAccess(&p)
		set.Add(p)
	}
	return set, nil
}

func (l *loader) loadScriptFiles(list manifest.List, format, index string) ([]userscript.File, error) {
	files := make([]userscript.File, 0, list.Len())
	for j := range list.Len() {
		rel, ok := list.GetString(j)
		if !ok {
			return nil, loadError(manifest.KeyContentScripts, format, index, strconv.Itoa(j))
		}
		u := l.ext.GetResourceURL(rel)
		if u == nil {
			return nil, loadError(manifest.KeyContentScripts, format, index, strconv.Itoa(j))
		}
		files = append(files, userscript.File{
			ExtensionRoot: l.ext.path,
			RelativePath:  rel,
			URL:           u.String(),
		})
	}
	return files, nil
}

func loadGlobs(d manifest.Dict, index, key string) ([]string, error) {
	if !d.Has(key) {
		return nil, nil
	}
	list, ok := d.GetList(key)
	if !ok {
		return nil, loadError(manifest.KeyContentScripts, MsgInvalidGlobList, index, key)
	}
	globs, bad, ok := list.Strings()
	if !ok {
		return nil, loadError(manifest.KeyContentScripts, MsgInvalidGlob, index, key, strconv.Itoa(bad))
	}
	return globs, nil
}
