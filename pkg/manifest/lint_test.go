// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"strings"
	"testing"
)

func TestLint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      string
		wantValid bool
		wantType  ValidationIssueType
		wantPath  string
	}{
		{
			name:      "minimal",
			data:      `{"name": "x", "version": "1.0"}`,
			wantValid: true,
		},
		{
			name:      "comments and unknown keys",
			data:      `{"name": "x", "version": "1", /* c */ "future_key": [1],}`,
			wantValid: true,
		},
		{
			name:     "bad version",
			data:     `{"name": "x", "version": "1.0.0.0.0"}`,
			wantType: IssueTypeSchema,
			wantPath: "version",
		},
		{
			name:     "bad run_at",
			data:     `{"name": "x", "version": "1", "content_scripts": [{"matches": ["http://a/*"], "run_at": "later"}]}`,
			wantType: IssueTypeSchema,
			wantPath: "content_scripts[0].run_at",
		},
		{
			name:     "empty name",
			data:     `{"name": "", "version": "1"}`,
			wantType: IssueTypeSchema,
			wantPath: "name",
		},
		{
			name:     "syntax",
			data:     `{"name": `,
			wantType: IssueTypeSyntax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := Lint([]byte(tt.data))
			if result.Valid != tt.wantValid {
				t.Fatalf("Lint().Valid = %v, want %v (issues: %v)", result.Valid, tt.wantValid, result.Issues)
			}
			if tt.wantValid {
				return
			}
			if len(result.Issues) == 0 {
				t.Fatal("expected issues")
			}
			issue := result.Issues[0]
			if issue.Type != tt.wantType {
				t.Errorf("issue type = %q, want %q", issue.Type, tt.wantType)
			}
			if issue.Path != tt.wantPath {
				t.Errorf("issue path = %q, want %q", issue.Path, tt.wantPath)
			}
			if strings.Contains(issue.Error(), "#Manifest") {
				t.Errorf("issue %q should not mention the schema definition", issue.Error())
			}
		})
	}
}

func TestValidationIssueError(t *testing.T) {
	t.Parallel()

	withPath := ValidationIssue{Type: IssueTypeSchema, Path: "name", Message: "empty"}
	if got := withPath.Error(); got != "[schema] name: empty" {
		t.Errorf("Error() = %q", got)
	}
	bare := ValidationIssue{Type: IssueTypeSyntax, Message: "bad"}
	if got := bare.Error(); got != "[syntax] bad" {
		t.Errorf("Error() = %q", got)
	}
}
