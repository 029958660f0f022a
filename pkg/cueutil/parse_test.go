// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Doc: {
	name:  string
	size?: int & >=0
	...
}
`

type testDoc struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	result, err := ParseAndDecodeString[testDoc](testSchema, []byte(`{"name": "a", "size": 3}`), "#Doc", WithFilename("doc.json"))
	if err != nil {
		t.Fatalf("ParseAndDecode() error = %v", err)
	}
	if result.Value.Name != "a" || result.Value.Size != 3 {
		t.Errorf("ParseAndDecode() = %+v", result.Value)
	}

	_, err = ParseAndDecodeString[testDoc](testSchema, []byte(`{"name": 1}`), "#Doc", WithFilename("doc.json"))
	if err == nil || !strings.Contains(err.Error(), "doc.json") {
		t.Errorf("expected error mentioning doc.json, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		wantErr  bool
		wantPath string
	}{
		{"valid", `{"name": "a"}`, false, ""},
		{"unknown keys allowed", `{"name": "a", "extra": true}`, false, ""},
		{"wrong type", `{"name": "a", "size": "big"}`, false, "size"},
		{"negative", `{"name": "a", "size": -1}`, false, "size"},
		{"syntax error", `{"name": `, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			violations, err := Check([]byte(testSchema), []byte(tt.data), "#Doc", WithFilename("doc.json"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantPath == "" {
				if !tt.wantErr && len(violations) != 0 {
					t.Errorf("Check() violations = %v, want none", violations)
				}
				return
			}
			if len(violations) == 0 {
				t.Fatal("Check() returned no violations")
			}
			if violations[0].CUEPath != tt.wantPath {
				t.Errorf("CUEPath = %q, want %q", violations[0].CUEPath, tt.wantPath)
			}
			if msg := violations[0].Message; msg == "" || strings.HasPrefix(msg, "#Doc") || strings.HasPrefix(msg, tt.wantPath+":") {
				t.Errorf("Message = %q, want the bare violation", msg)
			}
		})
	}
}

func TestCheckRejectsOversizedInput(t *testing.T) {
	t.Parallel()

	_, err := Check([]byte(testSchema), []byte(`{"name": "abcdef"}`), "#Doc", WithMaxFileSize(4))
	if err == nil {
		t.Fatal("expected size error")
	}
}
