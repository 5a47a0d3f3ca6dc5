package frontmatter

import (
	"fmt"
	"time"
)

// Map is a parsed front matter mapping. A nil Map means the document had no
// front matter; all accessors treat it as empty.
//
// The lenient accessors return the default when the key is absent or holds a
// different variant. The Require accessors report a present value of the wrong
// variant as a TypeError.
type Map map[string]Value

// TypeError reports a present front matter key holding an unexpected variant.
type TypeError struct {
	Key  string
	Want string
	Got  Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("front matter key %q: want %s, got %s", e.Key, e.Want, e.Got)
}

// Get returns the value stored at key.
func (m Map) Get(key string) (Value, bool) {
	v, ok := m[key]
	return v, ok
}

// Has reports whether key is present.
func (m Map) Has(key string) bool {
	_, ok := m[key]
	return ok
}

func (m Map) String(key, def string) string {
	if s, ok := m[key].AsString(); ok {
		return s
	}
	return def
}

func (m Map) Bool(key string, def bool) bool {
	if b, ok := m[key].AsBool(); ok {
		return b
	}
	return def
}

func (m Map) Int(key string, def int64) int64 {
	if i, ok := m[key].AsInt(); ok {
		return i
	}
	return def
}

// Time returns the timestamp at key; ok is false when absent or not a timestamp.
func (m Map) Time(key string) (time.Time, bool) {
	v, present := m[key]
	if !present {
		return time.Time{}, false
	}
	return v.AsTime()
}

// Strings returns the string sequence at key, or nil.
func (m Map) Strings(key string) []string {
	if s, ok := m[key].AsStrings(); ok {
		return s
	}
	return nil
}

// RequireString returns the string at key. present is false for an absent or null key.
func (m Map) RequireString(key string) (s string, present bool, err error) {
	v, ok := m[key]
	if !ok || v.IsNull() {
		return "", false, nil
	}
	if s, ok := v.AsString(); ok {
		return s, true, nil
	}
	return "", true, &TypeError{Key: key, Want: "string", Got: v.Kind()}
}

// RequireBool returns the bool at key.
func (m Map) RequireBool(key string) (b bool, present bool, err error) {
	v, ok := m[key]
	if !ok || v.IsNull() {
		return false, false, nil
	}
	if b, ok := v.AsBool(); ok {
		return b, true, nil
	}
	return false, true, &TypeError{Key: key, Want: "bool", Got: v.Kind()}
}

// RequireTime returns the timestamp at key.
func (m Map) RequireTime(key string) (t time.Time, present bool, err error) {
	v, ok := m[key]
	if !ok || v.IsNull() {
		return time.Time{}, false, nil
	}
	if t, ok := v.AsTime(); ok {
		return t, true, nil
	}
	return time.Time{}, true, &TypeError{Key: key, Want: "timestamp", Got: v.Kind()}
}

// RequireStrings returns the sequence of scalars at key.
func (m Map) RequireStrings(key string) (s []string, present bool, err error) {
	v, ok := m[key]
	if !ok || v.IsNull() {
		return nil, false, nil
	}
	if s, ok := v.AsStrings(); ok {
		return s, true, nil
	}
	return nil, true, &TypeError{Key: key, Want: "sequence of scalars", Got: v.Kind()}
}

// Interface converts the mapping to map[string]any for templates.
func (m Map) Interface() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Interface()
	}
	return out
}
