// Package payload gives explicit present-or-missing access to loosely typed webhook payloads.
// Every lookup returns an Opt so that the caller has to state its own fallback.
package payload

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Opt is a value that is either present or missing.
type Opt[T any] struct {
	val T
	ok  bool
}

// Some wraps a present value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{val: v, ok: true}
}

// Missing returns an absent value.
func Missing[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it was present.
func (o Opt[T]) Get() (T, bool) {
	return o.val, o.ok
}

// Present reports whether the value was present.
func (o Opt[T]) Present() bool {
	return o.ok
}

// Or returns the value if present, def otherwise.
func (o Opt[T]) Or(def T) T {
	if o.ok {
		return o.val
	}
	return def
}

// Object is a decoded JSON object.
type Object map[string]any

// Lookup walks path through nested objects. Nil values count as missing.
func (o Object) Lookup(path ...string) Opt[any] {
	if len(path) == 0 {
		return Missing[any]()
	}
	var cur any = map[string]any(o)
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return Missing[any]()
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return Missing[any]()
		}
	}
	return Some(cur)
}

// String returns the value at path as a trimmed string. Numbers are formatted
// without a trailing fraction, so 12558 and "12558" read the same.
func (o Object) String(path ...string) Opt[string] {
	v, ok := o.Lookup(path...).Get()
	if !ok {
		return Missing[string]()
	}
	if _, isMap := asMap(v); isMap {
		return Missing[string]()
	}
	if _, isList := v.([]any); isList {
		return Missing[string]()
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return Missing[string]()
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing[string]()
	}
	return Some(s)
}

// Int64 returns the value at path as an integer. Numeric strings are accepted;
// numbers with a fractional part are missing rather than truncated.
func (o Object) Int64(path ...string) Opt[int64] {
	v, ok := o.Lookup(path...).Get()
	if !ok {
		return Missing[int64]()
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return Missing[int64]()
	}
	if f, err := cast.ToFloat64E(v); err == nil && f != math.Trunc(f) {
		return Missing[int64]()
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return Missing[int64]()
	}
	return Some(n)
}

// Float64 returns the value at path as a float. Numeric strings are accepted.
func (o Object) Float64(path ...string) Opt[float64] {
	v, ok := o.Lookup(path...).Get()
	if !ok {
		return Missing[float64]()
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return Missing[float64]()
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return Missing[float64]()
	}
	return Some(f)
}

// Bool returns the value at path as a boolean.
func (o Object) Bool(path ...string) Opt[bool] {
	v, ok := o.Lookup(path...).Get()
	if !ok {
		return Missing[bool]()
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return Missing[bool]()
	}
	return Some(b)
}

// Object returns the nested object at path.
func (o Object) Object(path ...string) Opt[Object] {
	v, ok := o.Lookup(path...).Get()
	if !ok {
		return Missing[Object]()
	}
	m, ok := asMap(v)
	if !ok {
		return Missing[Object]()
	}
	return Some(Object(m))
}

// Objects returns the list at path. Elements that are not objects become empty objects
// so that list length is preserved.
func (o Object) Objects(path ...string) Opt[[]Object] {
	v, ok := o.Lookup(path...).Get()
	if !ok {
		return Missing[[]Object]()
	}
	list, ok := v.([]any)
	if !ok {
		return Missing[[]Object]()
	}
	out := make([]Object, 0, len(list))
	for _, item := range list {
		m, _ := asMap(item)
		out = append(out, Object(m))
	}
	return Some(out)
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Object:
		return m, true
	default:
		return nil, false
	}
}
