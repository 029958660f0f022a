// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"golang.org/x/exp/slices"
)

// These tests verify that Go struct JSON tags match the CUE schema field
// names, so a renamed key cannot silently stop being parsed.

// extractCUEFields extracts all field names from a CUE struct definition.
// It returns a map of field names to whether the field is optional.
// Only top-level fields of the given definition are returned.
func extractCUEFields(t *testing.T, val cue.Value) map[string]bool {
	t.Helper()

	fields := make(map[string]bool)

	iter, err := val.Fields(cue.Definitions(false), cue.Optional(true))
	if err != nil {
		t.Fatalf("failed to iterate CUE fields: %v", err)
	}

	for iter.Next() {
		sel := iter.Selector()
		if sel.LabelType().IsHidden() || sel.IsDefinition() {
			continue
		}

		// The selector string may include the "?" suffix for optional fields.
		fieldName := strings.TrimSuffix(sel.String(), "?")
		fields[fieldName] = iter.IsOptional()
	}

	return fields
}

// extractGoJSONTags extracts all JSON field names from a Go struct using reflection.
// It returns a map of JSON tag names to whether the field has "omitempty".
func extractGoJSONTags(t *testing.T, typ reflect.Type) map[string]bool {
	t.Helper()

	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct {
		t.Fatalf("expected struct type, got %s", typ.Kind())
	}

	fields := make(map[string]bool)

	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}

		parts := strings.Split(tag, ",")
		name := parts[0]
		if name == "" || name == "-" {
			continue
		}

		fields[name] = slices.Contains(parts[1:], "omitempty")
	}

	return fields
}

// assertFieldsSync verifies that every CUE field has a Go JSON tag and vice versa.
func assertFieldsSync(t *testing.T, structName string, cueFields, goFields map[string]bool) {
	t.Helper()

	for field := range cueFields {
		if _, exists := goFields[field]; !exists {
			t.Errorf("[%s] CUE field %q not found in Go struct (missing JSON tag)", structName, field)
		}
	}

	for field := range goFields {
		if _, exists := cueFields[field]; !exists {
			t.Errorf("[%s] Go JSON tag %q not found in CUE schema (missing CUE field)", structName, field)
		}
	}
}

func getCUESchema(t *testing.T) cue.Value {
	t.Helper()

	schema := cuecontext.New().CompileString(configSchema)
	if schema.Err() != nil {
		t.Fatalf("failed to compile CUE schema: %v", schema.Err())
	}

	return schema
}

func lookupDefinition(t *testing.T, schema cue.Value, defPath string) cue.Value {
	t.Helper()

	def := schema.LookupPath(cue.ParsePath(defPath))
	if def.Err() != nil {
		t.Fatalf("failed to lookup CUE definition %s: %v", defPath, def.Err())
	}

	return def
}

func TestSchemaSync(t *testing.T) {
	t.Parallel()

	tests := []struct {
		def string
		typ reflect.Type
	}{
		{"#Config", reflect.TypeFor[Config]()},
		{"#EngineConfig", reflect.TypeFor[EngineConfig]()},
		{"#LoadConfig", reflect.TypeFor[LoadConfig]()},
		{"#UIConfig", reflect.TypeFor[UIConfig]()},
	}

	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			t.Parallel()

			schema := getCUESchema(t)
			cueFields := extractCUEFields(t, lookupDefinition(t, schema, tt.def))
			goFields := extractGoJSONTags(t, tt.typ)
			assertFieldsSync(t, tt.typ.Name(), cueFields, goFields)
		})
	}
}

// validateCUE compiles CUE test data against the embedded #Config definition.
func validateCUE(t *testing.T, cueData string) error {
	t.Helper()

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		t.Fatalf("failed to compile schema: %v", schemaValue.Err())
	}

	userValue := ctx.CompileString(cueData)
	if userValue.Err() != nil {
		return fmt.Errorf("CUE compile error: %w", userValue.Err())
	}

	schemaDef := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schemaDef.Unify(userValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("CUE validation error: %w", err)
	}

	return nil
}

func TestSchemaConstraints(t *testing.T) {
	t.Parallel()

	validID := strings.Repeat("a", 16) + strings.Repeat("p", 16)

	tests := []struct {
		name    string
		cueData string
		wantErr bool
	}{
		{"empty config", ``, false},
		{"unknown top-level key", `container_engine: "docker"`, true},
		{"unknown engine key", `engine: { turbo: true }`, true},
		{"experimental flag", `engine: { experimental_apis: true }`, false},
		{"experimental flag type", `engine: { experimental_apis: "yes" }`, true},
		{"allowlist id", `engine: { experimental_allowlist: ["` + validID + `"] }`, false},
		{"allowlist id out of alphabet", `engine: { experimental_allowlist: ["` + strings.Repeat("z", 32) + `"] }`, true},
		{"allowlist id too short", `engine: { scripting_whitelist: ["abc"] }`, true},
		{"whitelisted id", `engine: { whitelisted_id: "` + validID + `" }`, false},
		{"webstore url", `engine: { webstore_url: "https://store.example.com/" }`, false},
		{"webstore url scheme", `engine: { webstore_url: "ftp://store.example.com/" }`, true},
		{"host version", `engine: { host_version: "16.0.912.0" }`, false},
		{"host version too long", `engine: { host_version: "1.2.3.4.5" }`, true},
		{"host version letters", `engine: { host_version: "16.beta" }`, true},
		{"load flags", `load: { strict_error_checks: true, allow_file_access: false, require_key: true }`, false},
		{"color scheme", `ui: { color_scheme: "dark" }`, false},
		{"bad color scheme", `ui: { color_scheme: "blue" }`, true},
		{"output toml", `ui: { output: "toml" }`, false},
		{"bad output", `ui: { output: "yaml" }`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateCUE(t, tt.cueData)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got: %v", err)
			}
		})
	}
}

// TestGeneratedCUEValidates checks that the default file written by
// 'config init' passes the schema.
func TestGeneratedCUEValidates(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Engine.ExperimentalAllowlist = []ExtensionID{ExtensionID(strings.Repeat("b", 32))}
	cfg.Engine.WhitelistedID = ExtensionID(strings.Repeat("c", 32))

	for _, c := range []*Config{DefaultConfig(), cfg} {
		if err := validateCUE(t, GenerateCUE(c)); err != nil {
			t.Errorf("GenerateCUE() output does not validate: %v\n%s", err, GenerateCUE(c))
		}
	}
}
