package sanitizer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type templateUndefined struct{}

type stringer struct{ s string }

func (s stringer) String() string { return s.s }

func TestSanitize(t *testing.T) {
	t.Run("drops null-like strings from mappings", func(t *testing.T) {
		got := Sanitize(map[string]any{"a": "undefined", "b": 5})
		assert.Equal(t, map[string]any{"b": 5}, got)
	})

	t.Run("drops nulls and null-like strings from sequences", func(t *testing.T) {
		got := Sanitize([]any{"x", nil, "NULL", "y"})
		assert.Equal(t, []any{"x", "y"}, got)
	})

	t.Run("null-like literals are case insensitive", func(t *testing.T) {
		for _, s := range []string{"undefined", "UNDEFINED", "Null", "NaN", "nan"} {
			assert.Nil(t, Sanitize(s), s)
		}
		assert.Equal(t, "nano", Sanitize("nano"))
	})

	t.Run("values carrying the undefined marker are dropped", func(t *testing.T) {
		assert.Nil(t, Sanitize("jinja2.Undefined object"))
		assert.Nil(t, Sanitize(templateUndefined{}))
		assert.Nil(t, Sanitize(stringer{s: "<Undefined>"}))
	})

	t.Run("keys carrying the marker or null-like keys are removed", func(t *testing.T) {
		got := Sanitize(map[string]any{
			"Undefined_key": 1,
			"null":          2,
			"name":          "Louvre",
		})
		assert.Equal(t, map[string]any{"name": "Louvre"}, got)
	})

	t.Run("explicit nulls are preserved in mappings", func(t *testing.T) {
		got := Sanitize(map[string]any{"rating": nil, "bad": "null"})
		assert.Equal(t, map[string]any{"rating": nil}, got)
	})

	t.Run("recurses into nested containers", func(t *testing.T) {
		in := map[string]any{
			"geometry": map[string]any{
				"location": map[string]any{"lat": 48.86, "lng": "undefined"},
			},
			"types": []any{"museum", "NaN", "point_of_interest"},
		}
		want := map[string]any{
			"geometry": map[string]any{
				"location": map[string]any{"lat": 48.86},
			},
			"types": []any{"museum", "point_of_interest"},
		}
		assert.Equal(t, want, Sanitize(in))
	})

	t.Run("typed containers are normalized", func(t *testing.T) {
		got := Sanitize(map[string]string{"a": "x", "b": "null"})
		assert.Equal(t, map[string]any{"a": "x"}, got)

		assert.Equal(t, []any{"a", "b"}, Sanitize([]string{"a", "undefined", "b"}))
	})

	t.Run("non-finite floats are dropped", func(t *testing.T) {
		assert.Nil(t, Sanitize(math.NaN()))
		assert.Nil(t, Sanitize(math.Inf(1)))
		assert.Equal(t, 4.5, Sanitize(4.5))
	})

	t.Run("serializable opaque values pass through", func(t *testing.T) {
		type point struct {
			Lat float64 `json:"lat"`
		}
		assert.Equal(t, point{Lat: 1}, Sanitize(point{Lat: 1}))
	})

	t.Run("unserializable opaque values become text", func(t *testing.T) {
		ch := make(chan int)
		got := Sanitize(ch)
		_, isString := got.(string)
		assert.True(t, isString)
	})

	t.Run("nil and nil containers yield nil", func(t *testing.T) {
		var m map[string]any
		var s []any
		var p *int
		assert.Nil(t, Sanitize(nil))
		assert.Nil(t, Sanitize(m))
		assert.Nil(t, Sanitize(s))
		assert.Nil(t, Sanitize(p))
	})
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []any{
		map[string]any{"a": "undefined", "b": 5, "c": nil, "d": []any{"x", nil, "NULL"}},
		[]any{map[string]any{"Undefined": 1}, "y", math.NaN(), stringer{s: "ok"}},
		"plain",
		make(chan int),
	}

	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		assert.Equal(t, once, twice)
	}
}

func TestClean(t *testing.T) {
	type record struct {
		Name    string   `json:"name"`
		Vicinit string   `json:"vicinity,omitempty"`
		Tags    []string `json:"tags"`
	}

	var out record
	err := Clean(record{Name: "Tower", Vicinit: "undefined", Tags: []string{"a", "null", "b"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, record{Name: "Tower", Tags: []string{"a", "b"}}, out)

	t.Run("unserializable input reports a serialization error", func(t *testing.T) {
		var dst map[string]any
		err := Clean(map[string]any{"ch": make(chan int)}, &dst)
		require.Error(t, err)
	})

	t.Run("numbers keep their precision", func(t *testing.T) {
		var dst struct {
			N int64 `json:"n"`
		}
		require.NoError(t, Clean(map[string]any{"n": int64(9007199254740993)}, &dst))
		assert.Equal(t, int64(9007199254740993), dst.N)
	})
}
