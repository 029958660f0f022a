// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ValidationError is a single CUE violation located by its JSON path.
type ValidationError struct {
	// FilePath is the document being validated.
	FilePath string

	// CUEPath is the JSON path to the invalid value (e.g. "icons.16").
	CUEPath string

	// Message is the violation without its path prefix.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.CUEPath != "" {
		return fmt.Sprintf("%s: %s: %s", e.FilePath, e.CUEPath, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// ValidationErrors splits a CUE error into its individual violations.
// A non-CUE error becomes a single entry without a path.
func ValidationErrors(err error, filePath string) []*ValidationError {
	if err == nil {
		return nil
	}

	if !isCUEError(err) {
		return []*ValidationError{{FilePath: filePath, Message: err.Error()}}
	}

	cueErrors := cueerrors.Errors(err)
	out := make([]*ValidationError, 0, len(cueErrors))
	for _, e := range cueErrors {
		format, args := e.Msg()
		out = append(out, &ValidationError{
			FilePath: filePath,
			CUEPath:  formatPath(cueerrors.Path(e)),
			Message:  fmt.Sprintf(format, args...),
		})
	}
	return out
}

// isCUEError reports whether err carries CUE positions and paths.
// cueerrors.Errors wraps plain errors too, so it cannot tell them apart.
func isCUEError(err error) bool {
	var ce cueerrors.Error
	return errors.As(err, &ce)
}

// FormatError flattens a CUE error into one error whose lines read
// "<json-path>: <message>", prefixed by the file path.
//
// Examples:
//   - manifest.json: icons.16: conflicting values 16 and string
//   - config.cue: engine.host_version: invalid value "x"
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	if !isCUEError(err) {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	violations := ValidationErrors(err, filePath)
	lines := make([]string, 0, len(violations))
	for _, v := range violations {
		if v.CUEPath != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", v.CUEPath, v.Message))
		} else {
			lines = append(lines, v.Message)
		}
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// formatPath converts a CUE error path (["#Manifest", "content_scripts", "0",
// "js"]) to JSON-path notation ("content_scripts[0].js"). A leading schema
// definition is not part of the document and is dropped.
func formatPath(path []string) string {
	if len(path) > 0 && strings.HasPrefix(path[0], "#") {
		path = path[1:]
	}
	if len(path) == 0 {
		return ""
	}

	var result strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			result.WriteString("[")
			result.WriteString(part)
			result.WriteString("]")
			continue
		}
		if i > 0 {
			result.WriteString(".")
		}
		result.WriteString(part)
	}
	return result.String()
}

func isIndex(part string) bool {
	if part == "" {
		return false
	}
	for _, c := range part {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize returns an error when data is larger than maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
