// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"fmt"

	"github.com/Crystalnix/BitPop-sub015/pkg/cueutil"

	"github.com/tailscale/hujson"
)

// Lint issue types.
const (
	// IssueTypeSyntax marks a document that could not be parsed at all.
	IssueTypeSyntax ValidationIssueType = "syntax"
	// IssueTypeSchema marks a structural violation of the manifest schema.
	IssueTypeSchema ValidationIssueType = "schema"
)

//go:embed manifest_schema.cue
var manifestSchema []byte

type (
	// ValidationIssueType categorizes a lint finding.
	ValidationIssueType string

	// ValidationIssue is a single lint finding.
	//
	//nolint:errname // a collected finding, not a returned error
	ValidationIssue struct {
		Type    ValidationIssueType
		Path    string
		Message string
	}

	// ValidationResult collects the findings of Lint.
	ValidationResult struct {
		Valid  bool
		Issues []ValidationIssue
	}
)

// Error implements the error interface for ValidationIssue.
func (v ValidationIssue) Error() string {
	if v.Path != "" {
		return fmt.Sprintf("[%s] %s: %s", v.Type, v.Path, v.Message)
	}
	return fmt.Sprintf("[%s] %s", v.Type, v.Message)
}

// AddIssue records a finding and marks the result invalid.
func (r *ValidationResult) AddIssue(issueType ValidationIssueType, path, message string) {
	r.Issues = append(r.Issues, ValidationIssue{Type: issueType, Path: path, Message: message})
	r.Valid = false
}

// Lint checks the structure of a manifest against the embedded schema.
// It reports every violation it finds and never stops at the first.
func Lint(data []byte) ValidationResult {
	result := ValidationResult{Valid: true}

	standardized, err := hujson.Standardize(append([]byte(nil), data...))
	if err != nil {
		result.AddIssue(IssueTypeSyntax, "", err.Error())
		return result
	}

	violations, err := cueutil.Check(manifestSchema, standardized, "#Manifest", cueutil.WithFilename(FileName), cueutil.WithConcrete(true))
	if err != nil {
		result.AddIssue(IssueTypeSyntax, "", err.Error())
		return result
	}
	for _, v := range violations {
		result.AddIssue(IssueTypeSchema, v.CUEPath, v.Message)
	}
	return result
}
