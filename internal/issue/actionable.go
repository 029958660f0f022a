// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing failure: the operation that failed,
	// the file or directory it was working on, hints for fixing it and,
	// optionally, the catalog entry that explains it.
	ActionableError struct {
		// Operation is a verb phrase such as "load extension".
		Operation string
		// Resource is the path involved, if any.
		Resource string
		// Suggestions are printed one per line under the message.
		Suggestions []string
		// Cause is the error being explained.
		Cause error
		// IssueID links a catalog entry; zero means none.
		IssueID Id
	}

	// ErrorContext accumulates the parts of an ActionableError. A context
	// may be shared by several failure paths of one operation:
	//
	//	ctx := issue.NewErrorContext().
	//		WithOperation("read manifest").
	//		WithResource(path)
	//	return ctx.WithIssue(issue.ManifestNotFoundId).Wrap(err).BuildError()
	ErrorContext struct {
		operation   string
		resource    string
		suggestions []string
		cause       error
		issueID     Id
	}
)

// NewErrorContext returns an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error renders "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the message followed by a bulleted list of suggestions.
// Verbose output also numbers every error in the cause chain.
func (e *ActionableError) Format(verbose bool) string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		sb.WriteString("\n")
		for _, s := range e.Suggestions {
			sb.WriteString("\n  • ")
			sb.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		sb.WriteString("\n\nError chain:")
		for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
			fmt.Fprintf(&sb, "\n  %d. %s", depth, err)
		}
	}
	return sb.String()
}

// Issue returns the linked catalog entry, or nil.
func (e *ActionableError) Issue() *Issue {
	if e.IssueID == 0 {
		return nil
	}
	return Get(e.IssueID)
}

// HasSuggestions reports whether any fix hint is attached.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// WithOperation sets the failed operation. It is required.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

// WithResource sets the path the operation was working on.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion appends a fix hint.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.suggestions = append(c.suggestions, sug)
	return c
}

// WithIssue links the catalog entry that explains the failure.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.issueID = id
	return c
}

// Wrap sets the underlying cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// BuildError returns the accumulated ActionableError, or nil when no
// operation was set.
func (c *ErrorContext) BuildError() error {
	if c.operation == "" {
		return nil
	}
	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: append([]string(nil), c.suggestions...),
		Cause:       c.cause,
		IssueID:     c.issueID,
	}
}

// IssueOf returns the first catalog entry linked anywhere in err's chain.
func IssueOf(err error) (*Issue, bool) {
	var ae *ActionableError
	for err != nil {
		if !errors.As(err, &ae) {
			return nil, false
		}
		if i := ae.Issue(); i != nil {
			return i, true
		}
		err = ae.Cause
	}
	return nil, false
}
