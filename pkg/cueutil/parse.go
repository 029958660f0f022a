// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ParseResult contains the result of a successful CUE parse operation.
type ParseResult[T any] struct {
	// Value is the decoded Go value.
	Value *T

	// Unified is the unified CUE value.
	Unified cue.Value
}

// ParseAndDecode compiles data, unifies it with the definition at
// schemaPath inside schema, validates it and decodes it into T.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	options := resolveOptions(opts)

	unified, err := unify(schema, data, schemaPath, options)
	if err != nil {
		return nil, err
	}

	if err := unified.Validate(cue.Concrete(options.concrete)); err != nil {
		return nil, FormatError(err, options.filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, options.filename)
	}

	return &ParseResult[T]{
		Value:   &result,
		Unified: unified,
	}, nil
}

// ParseAndDecodeString is ParseAndDecode with the schema given as a string.
func ParseAndDecodeString[T any](schema string, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	return ParseAndDecode[T]([]byte(schema), data, schemaPath, opts...)
}

// Check validates data against the definition at schemaPath and returns
// one ValidationError per violation. The error return is reserved for
// problems that prevent validation from running: an oversized document,
// a syntax error or a broken schema.
func Check(schema, data []byte, schemaPath string, opts ...Option) ([]*ValidationError, error) {
	options := resolveOptions(opts)

	unified, err := unify(schema, data, schemaPath, options)
	if err != nil {
		return nil, err
	}

	if err := unified.Validate(cue.Concrete(options.concrete)); err != nil {
		return ValidationErrors(err, options.filename), nil
	}
	return nil, nil
}

func resolveOptions(opts []Option) options {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.filename == "" {
		options.filename = "<input>"
	}
	return options
}

func unify(schema, data []byte, schemaPath string, options options) (cue.Value, error) {
	if err := CheckFileSize(data, options.maxFileSize, options.filename); err != nil {
		return cue.Value{}, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(options.filename))
	if userValue.Err() != nil {
		return cue.Value{}, FormatError(userValue.Err(), options.filename)
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	return schemaRoot.Unify(userValue), nil
}
