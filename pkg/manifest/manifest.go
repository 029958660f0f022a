// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Crystalnix/BitPop-sub015/pkg/cueutil"

	"github.com/tailscale/hujson"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FileName is the manifest file inside an extension directory.
const FileName = "manifest.json"

var (
	// ErrNotAnObject is returned when the document root is not a JSON object.
	ErrNotAnObject = errors.New("manifest is not a dictionary")
	// ErrInvalidJSON is returned when the document cannot be parsed.
	ErrInvalidJSON = errors.New("manifest is not valid JSON")
	// ErrManifestNotFound is returned by Load when no manifest file exists.
	ErrManifestNotFound = errors.New("manifest file not found")
)

// Manifest is a parsed, read-only manifest document. The embedded Dict is
// the root object.
type Manifest struct {
	Dict
	raw []byte
}

// Parse reads a manifest. Comments and trailing commas are accepted and
// stripped before parsing.
func Parse(data []byte) (*Manifest, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, FileName); err != nil {
		return nil, err
	}

	standardized, err := hujson.Standardize(append([]byte(nil), data...))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return fromJSON(standardized)
}

// Load reads the manifest at path. When path is a directory the manifest
// file inside it is read.
func Load(path string) (*Manifest, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

// New builds a manifest from an in-memory value.
func New(values map[string]any) (*Manifest, error) {
	if values == nil {
		values = map[string]any{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	return fromJSON(data)
}

// MustNew is New for literals known to marshal.
func MustNew(values map[string]any) *Manifest {
	m, err := New(values)
	if err != nil {
		panic(err)
	}
	return m
}

func fromJSON(data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, ErrNotAnObject
	}
	return &Manifest{Dict: Dict{r: root}, raw: data}, nil
}

// Raw returns a copy of the standardized JSON text.
func (m *Manifest) Raw() []byte {
	return append([]byte(nil), m.raw...)
}

// ManifestVersion returns manifest_version, or 1 when absent.
func (m *Manifest) ManifestVersion() int {
	if v, ok := m.GetInt(KeyManifestVersion); ok {
		return v
	}
	return 1
}

// With returns a copy of the manifest with value stored at the dotted path.
// The receiver is unchanged.
func (m *Manifest) With(path string, value any) (*Manifest, error) {
	updated, err := sjson.SetBytes(m.Raw(), escapePath(path), value)
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", path, err)
	}
	return fromJSON(updated)
}

// WithRaw is With for a value given as JSON text.
func (m *Manifest) WithRaw(path, rawJSON string) (*Manifest, error) {
	if !gjson.Valid(rawJSON) {
		return nil, fmt.Errorf("set %s: %w", path, ErrInvalidJSON)
	}
	updated, err := sjson.SetRawBytes(m.Raw(), escapePath(path), []byte(rawJSON))
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", path, err)
	}
	return fromJSON(updated)
}

// Without returns a copy of the manifest with the dotted path removed.
func (m *Manifest) Without(path string) (*Manifest, error) {
	updated, err := sjson.DeleteBytes(m.Raw(), escapePath(path))
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", path, err)
	}
	return fromJSON(updated)
}

// Map returns the whole document as plain Go data.
func (m *Manifest) Map() map[string]any {
	out, _ := m.r.Value().(map[string]any)
	return out
}
