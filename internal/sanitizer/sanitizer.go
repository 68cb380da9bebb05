// Package sanitizer strips template and serialization artifacts out of
// untrusted nested data before it is validated, rendered or persisted.
package sanitizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/raiigauravv/WanderWhiz/internal/types"
)

// undefinedMarker identifies values left behind by an unresolved template
// variable.
const undefinedMarker = "Undefined"

var nullLiterals = map[string]struct{}{
	"undefined": {},
	"null":      {},
	"nan":       {},
}

// sanitized is the internal result of cleaning one value. A dropped value is
// distinct from a kept nil.
type sanitized struct {
	value   any
	dropped bool
}

func keep(v any) sanitized { return sanitized{value: v} }

var drop = sanitized{dropped: true}

// Sanitize returns a cleaned copy of v, or nil when v itself is an artifact.
// Mappings and sequences are cleaned recursively; the function is idempotent.
func Sanitize(v any) any {
	r := sanitizeValue(v)
	if r.dropped {
		return nil
	}
	return r.value
}

// SanitizeMap is Sanitize for a single record.
func SanitizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return sanitizeMap(m)
}

// Clean round-trips in through JSON, sanitizes the generic form and decodes
// the result into out.
func Clean(in any, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrSerialization, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return fmt.Errorf("%w: %v", types.ErrSerialization, err)
	}

	cleaned, err := json.Marshal(Sanitize(generic))
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrSerialization, err)
	}
	if err := json.Unmarshal(cleaned, out); err != nil {
		return fmt.Errorf("%w: %v", types.ErrSerialization, err)
	}
	return nil
}

func sanitizeValue(v any) sanitized {
	if v == nil {
		return drop
	}
	if strings.Contains(fmt.Sprintf("%T", v), undefinedMarker) {
		return drop
	}

	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return drop
		}
		return keep(sanitizeMap(t))
	case []any:
		if t == nil {
			return drop
		}
		return keep(sanitizeSlice(t))
	case []byte:
		return sanitizeScalar(v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return drop
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key()
			key := fmt.Sprint(k.Interface())
			if k.Kind() == reflect.String {
				key = k.String()
			}
			m[key] = iter.Value().Interface()
		}
		return keep(sanitizeMap(m))
	case reflect.Slice:
		if rv.IsNil() {
			return drop
		}
		fallthrough
	case reflect.Array:
		s := make([]any, rv.Len())
		for i := range s {
			s[i] = rv.Index(i).Interface()
		}
		return keep(sanitizeSlice(s))
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return drop
		}
		return sanitizeValue(rv.Elem().Interface())
	}

	return sanitizeScalar(v)
}

func sanitizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, raw := range m {
		key := sanitizeScalar(k)
		if key.dropped {
			continue
		}
		r := sanitizeValue(raw)
		switch {
		case !r.dropped:
			out[k] = r.value
		case raw == nil:
			// explicit nulls survive
			out[k] = nil
		}
	}
	return out
}

func sanitizeSlice(s []any) []any {
	out := make([]any, 0, len(s))
	for _, item := range s {
		r := sanitizeValue(item)
		if r.dropped || r.value == nil {
			continue
		}
		out = append(out, r.value)
	}
	return out
}

func sanitizeScalar(v any) sanitized {
	switch t := v.(type) {
	case string:
		return sanitizeString(t)
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return keep(v)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return drop
		}
		return keep(v)
	case float32:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return drop
		}
		return keep(v)
	}

	str := fmt.Sprint(v)
	if strings.Contains(str, undefinedMarker) {
		return drop
	}
	if _, err := json.Marshal(v); err == nil {
		return keep(v)
	}
	return sanitizeString(str)
}

func sanitizeString(s string) sanitized {
	if strings.Contains(s, undefinedMarker) {
		return drop
	}
	if _, ok := nullLiterals[strings.ToLower(s)]; ok {
		return drop
	}
	return keep(s)
}
