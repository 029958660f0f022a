// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Crystalnix/BitPop-sub015/pkg/types"
)

const filesManifest = `{
	"name": "Files",
	"version": "1.0",
	"content_scripts": [{"matches": ["http://*/*"], "js": ["js/a.js", "/js/a.js"], "css": ["style.css"]}],
	"web_accessible_resources": ["img/*.png"]
}`

func TestValidateFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		files    []string
		wantCode types.ExitCode
		want     []string
		notWant  []string
	}{
		{
			name:     "all present",
			files:    []string{"js/a.js", "style.css", "img/deep/logo.png"},
			wantCode: types.ExitSuccess,
			want:     []string{"✓ files", "Manifest is valid"},
			notWant:  []string{"matches no file"},
		},
		{
			name:     "missing script reported once",
			files:    []string{"style.css", "img/logo.png"},
			wantCode: types.ExitInvalidManifest,
			want:     []string{"content script js/a.js does not exist"},
			notWant:  []string{"✓ files"},
		},
		{
			name:     "unmatched resource only warns",
			files:    []string{"js/a.js", "style.css", "img/logo.gif"},
			wantCode: types.ExitSuccess,
			want:     []string{"web accessible /img/*.png matches no file", "Manifest is valid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := writeManifest(t, filesManifest)
			for _, f := range tt.files {
				p := filepath.Join(dir, filepath.FromSlash(f))
				if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(p, nil, 0o644); err != nil {
					t.Fatal(err)
				}
			}

			res := runCLI(t, nil, "validate", dir)
			if got := exitCode(res.err); got != tt.wantCode {
				t.Fatalf("exit code = %v, want %v (err = %v)\n%s", got, tt.wantCode, res.err, res.stdout)
			}
			for _, want := range tt.want {
				if !strings.Contains(res.stdout, want) {
					t.Errorf("stdout missing %q:\n%s", want, res.stdout)
				}
			}
			for _, bad := range tt.notWant {
				if strings.Contains(res.stdout, bad) {
					t.Errorf("stdout contains %q:\n%s", bad, res.stdout)
				}
			}
			if n := strings.Count(res.stdout, "does not exist"); n > 1 {
				t.Errorf("missing files reported %d times:\n%s", n, res.stdout)
			}
		})
	}
}
