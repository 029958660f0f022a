// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind classifies a manifest value.
const (
	KindAbsent Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindList
	KindDict
)

// gjsonSpecial lists the bytes that carry meaning inside a gjson path
// component and must be escaped to be taken literally.
const gjsonSpecial = `\*?@#|!=<>%.`

type (
	// Kind is the JSON type of a manifest value.
	Kind int

	// Value is a single node of the manifest tree. The zero value is absent.
	Value struct {
		r gjson.Result
	}

	// Dict is a JSON object. Keys passed to its accessors are dotted paths
	// ("app.launch.web_url").
	Dict struct {
		r gjson.Result
	}

	// List is a JSON array.
	List struct {
		items []gjson.Result
	}
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindDict:
		return "dictionary"
	default:
		return "absent"
	}
}

// Kind returns the JSON type of the value.
func (v Value) Kind() Kind { return kindOf(v.r) }

// Exists reports whether the value is present in the document.
func (v Value) Exists() bool { return v.r.Exists() }

// AsString returns the value when it is a JSON string.
func (v Value) AsString() (string, bool) {
	if v.r.Type != gjson.String {
		return "", false
	}
	return v.r.Str, true
}

// AsBool returns the value when it is a JSON boolean.
func (v Value) AsBool() (bool, bool) {
	switch v.r.Type {
	case gjson.True:
		return true, true
	case gjson.False:
		return false, true
	default:
		return false, false
	}
}

// AsInt returns the value when it is an integral JSON number written
// without fraction or exponent.
func (v Value) AsInt() (int, bool) {
	if v.r.Type != gjson.Number {
		return 0, false
	}
	n, err := strconv.Atoi(v.r.Raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AsList returns the value when it is a JSON array.
func (v Value) AsList() (List, bool) {
	if !v.r.IsArray() {
		return List{}, false
	}
	return List{items: v.r.Array()}, true
}

// AsDict returns the value when it is a JSON object.
func (v Value) AsDict() (Dict, bool) {
	if !v.r.IsObject() {
		return Dict{}, false
	}
	return Dict{r: v.r}, true
}

// Raw returns the JSON text of the value.
func (v Value) Raw() string { return v.r.Raw }

// Interface returns the value as plain Go data (map[string]any, []any,
// string, float64, bool or nil).
func (v Value) Interface() any { return v.r.Value() }

// Get returns the value at a dotted path.
func (d Dict) Get(path string) Value {
	if !d.r.IsObject() {
		return Value{}
	}
	return Value{r: d.r.Get(escapePath(path))}
}

// Field returns the value stored under key exactly, without splitting on dots.
func (d Dict) Field(key string) Value {
	if !d.r.IsObject() {
		return Value{}
	}
	return Value{r: d.r.Get(escapeComponent(key))}
}

// Has reports whether a value exists at path.
func (d Dict) Has(path string) bool { return d.Get(path).Exists() }

// Kind returns the kind of the value at path.
func (d Dict) Kind(path string) Kind { return d.Get(path).Kind() }

// GetString returns the string at path. ok is false when the value is
// absent or not a string.
func (d Dict) GetString(path string) (string, bool) { return d.Get(path).AsString() }

// GetBool returns the boolean at path.
func (d Dict) GetBool(path string) (bool, bool) { return d.Get(path).AsBool() }

// GetInt returns the integer at path. Non-integral numbers are rejected.
func (d Dict) GetInt(path string) (int, bool) { return d.Get(path).AsInt() }

// GetList returns the list at path.
func (d Dict) GetList(path string) (List, bool) { return d.Get(path).AsList() }

// GetDict returns the dictionary at path.
func (d Dict) GetDict(path string) (Dict, bool) { return d.Get(path).AsDict() }

// Keys returns the top-level keys of the dictionary in document order.
func (d Dict) Keys() []string {
	var keys []string
	d.Each(func(key string, _ Value) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Len returns the number of top-level keys.
func (d Dict) Len() int { return len(d.Keys()) }

// Each calls fn for every top-level entry until fn returns false.
func (d Dict) Each(fn func(key string, v Value) bool) {
	if !d.r.IsObject() {
		return
	}
	d.r.ForEach(func(key, value gjson.Result) bool {
		return fn(key.Str, Value{r: value})
	})
}

// Len returns the number of elements.
func (l List) Len() int { return len(l.items) }

// At returns element i, or an absent value when out of range.
func (l List) At(i int) Value {
	if i < 0 || i >= len(l.items) {
		return Value{}
	}
	return Value{r: l.items[i]}
}

// Kind returns the kind of element i.
func (l List) Kind(i int) Kind { return l.At(i).Kind() }

// GetString returns element i when it is a string.
func (l List) GetString(i int) (string, bool) { return l.At(i).AsString() }

// GetBool returns element i when it is a boolean.
func (l List) GetBool(i int) (bool, bool) { return l.At(i).AsBool() }

// GetInt returns element i when it is an integer.
func (l List) GetInt(i int) (int, bool) { return l.At(i).AsInt() }

// GetDict returns element i when it is a dictionary.
func (l List) GetDict(i int) (Dict, bool) { return l.At(i).AsDict() }

// Strings returns every element as a string. ok is false, with the index of
// the first offending element, when any element is not a string.
func (l List) Strings() (out []string, badIndex int, ok bool) {
	out = make([]string, 0, len(l.items))
	for i := range l.items {
		s, isString := l.GetString(i)
		if !isString {
			return nil, i, false
		}
		out = append(out, s)
	}
	return out, -1, true
}

func kindOf(r gjson.Result) Kind {
	if !r.Exists() {
		return KindAbsent
	}
	switch r.Type {
	case gjson.Null:
		return KindNull
	case gjson.True, gjson.False:
		return KindBool
	case gjson.Number:
		return KindNumber
	case gjson.String:
		return KindString
	}
	if r.IsArray() {
		return KindList
	}
	return KindDict
}

// escapePath escapes every component of a dotted path.
func escapePath(path string) string {
	parts := strings.Split(path, ".")
	for i, p := range parts {
		parts[i] = escapeComponent(p)
	}
	return strings.Join(parts, ".")
}

func escapeComponent(key string) string {
	if !strings.ContainsAny(key, gjsonSpecial) {
		return key
	}
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		if strings.IndexByte(gjsonSpecial, key[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(key[i])
	}
	return b.String()
}
