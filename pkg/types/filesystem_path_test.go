// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestFilesystemPath_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    FilesystemPath
		wantErr bool
	}{
		{"absolute path", FilesystemPath("/home/user/ext/manifest.json"), false},
		{"relative path", FilesystemPath("ext"), false},
		{"windows style", FilesystemPath("C:\\Extensions\\ext"), false},
		{"path with spaces", FilesystemPath("/path/to/my ext"), false},
		{"dot path", FilesystemPath("."), false},
		{"empty means unset", FilesystemPath(""), false},
		{"whitespace only is invalid", FilesystemPath("   "), true},
		{"tab only is invalid", FilesystemPath("\t"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.path.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("FilesystemPath(%q).Validate() error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			if !errors.Is(err, ErrInvalidFilesystemPath) {
				t.Errorf("error should wrap ErrInvalidFilesystemPath, got: %v", err)
			}
			var fpErr *InvalidFilesystemPathError
			if !errors.As(err, &fpErr) {
				t.Errorf("error should be *InvalidFilesystemPathError, got: %T", err)
			}
		})
	}
}

func TestFilesystemPath_Clean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   FilesystemPath
		want FilesystemPath
	}{
		{"", ""},
		{"ext/", "ext"},
		{"./ext/../ext/manifest.json", "ext/manifest.json"},
	}
	for _, tt := range tests {
		if got := tt.in.Clean(); got != tt.want {
			t.Errorf("FilesystemPath(%q).Clean() = %q, want %q", tt.in, got, tt.want)
		}
	}
	if FilesystemPath("").IsSet() || !FilesystemPath("x").IsSet() {
		t.Error("IsSet() should report non-empty paths only")
	}
}
