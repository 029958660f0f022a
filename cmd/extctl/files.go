// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/Crystalnix/BitPop-sub015/pkg/extension"
	"github.com/Crystalnix/BitPop-sub015/pkg/urlpattern"

	"github.com/bmatcuk/doublestar/v4"
)

// fileReport is the outcome of checking manifest references against the
// files in the extension directory.
type fileReport struct {
	// Missing lists content script files that do not exist. Each one fails
	// validation.
	Missing []string
	// Unmatched lists web_accessible_resources entries that expose no file.
	Unmatched []string
}

// checkFiles walks root and reports content script files that are absent
// and web accessible entries that match nothing.
func checkFiles(root string, ext *extension.Extension) (fileReport, error) {
	var files []string
	err := doublestar.GlobWalk(os.DirFS(root), "**", func(p string, _ fs.DirEntry) error {
		files = append(files, p)
		return nil
	}, doublestar.WithFilesOnly())
	if err != nil {
		return fileReport{}, err
	}
	slices.Sort(files)

	var report fileReport
	for _, script := range ext.ContentScripts() {
		for _, f := range slices.Concat(script.JS, script.CSS) {
			rel := path.Clean(strings.TrimPrefix(f.RelativePath, "/"))
			if _, found := slices.BinarySearch(files, rel); !found && !slices.Contains(report.Missing, rel) {
				report.Missing = append(report.Missing, rel)
			}
		}
	}
	for _, entry := range ext.WebAccessibleResources() {
		exposed := slices.ContainsFunc(files, func(f string) bool {
			return urlpattern.MatchPath(entry, "/"+f)
		})
		if !exposed {
			report.Unmatched = append(report.Unmatched, entry)
		}
	}
	return report, nil
}
