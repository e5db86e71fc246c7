package marshal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload(t *testing.T) {
	t.Parallel()

	t.Run("zero value is absent", func(t *testing.T) {
		var p Payload
		assert.True(t, p.IsAbsent())
		assert.Equal(t, Absent(), p)
		assert.Empty(t, p.String())
	})

	t.Run("empty raw string is present", func(t *testing.T) {
		p := Raw("")
		assert.False(t, p.IsAbsent())
		assert.NotEqual(t, Absent(), p)
	})

	t.Run("GoString hides contents", func(t *testing.T) {
		p := Raw(`{"token":"s3cr3t"}`)
		assert.NotContains(t, p.GoString(), "s3cr3t")
		assert.Equal(t, "marshal.Absent()", Absent().GoString())
	})
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
	}{
		{name: "null", value: nil},
		{name: "bool", value: true},
		{name: "integer", value: int64(42)},
		{name: "negative integer", value: int64(-7)},
		{name: "large integer", value: int64(math.MaxInt64)},
		{name: "fraction", value: 3.25},
		{name: "string", value: "привет, \"world\""},
		{name: "empty object", value: map[string]any{}},
		{name: "empty array", value: []any{}},
		{
			name: "interval",
			value: map[string]any{
				"from": "2024-01-01",
				"to":   "2024-01-07",
			},
		},
		{
			name: "nested",
			value: map[string]any{
				"series": []any{
					map[string]any{"name": "a", "data": []any{int64(1), 2.5, nil}},
				},
				"enabled": false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := Encode(tt.value)
			require.NoError(t, err)
			require.False(t, p.IsAbsent())

			got, present, err := Decode(p)
			require.NoError(t, err)
			assert.True(t, present)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	t.Run("deterministic key order", func(t *testing.T) {
		p, err := Encode(map[string]any{"b": 1, "a": 2, "c": 3})
		require.NoError(t, err)
		assert.Equal(t, `{"a":2,"b":1,"c":3}`, p.String())
	})

	t.Run("whole number float canonicalises to int64", func(t *testing.T) {
		p, err := Encode(2.0)
		require.NoError(t, err)
		got, _, err := Decode(p)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got)
	})

	t.Run("markup is not escaped", func(t *testing.T) {
		p, err := Encode(map[string]any{WrappedHTMLKey: "<b>a & b</b>"})
		require.NoError(t, err)
		assert.Equal(t, `{"__wrappedHTML__":"<b>a & b</b>"}`, p.String())
	})

	t.Run("non serializable values", func(t *testing.T) {
		cyclic := map[string]any{}
		cyclic["self"] = cyclic

		for name, v := range map[string]any{
			"func":    func() {},
			"channel": make(chan int),
			"nan":     math.NaN(),
			"cycle":   cyclic,
		} {
			_, err := Encode(v)
			require.ErrorIs(t, err, ErrNotSerializable, name)
		}
	})
}

func TestEncodeAs(t *testing.T) {
	t.Parallel()

	t.Run("raw strings are not double encoded", func(t *testing.T) {
		p, err := EncodeAs(ShapeRaw, `he said "hi"`)
		require.NoError(t, err)
		assert.Equal(t, `he said "hi"`, p.String())
	})

	t.Run("raw requires a string", func(t *testing.T) {
		_, err := EncodeAs(ShapeRaw, 12)
		require.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("json shape", func(t *testing.T) {
		p, err := EncodeAs(ShapeJSON, "text")
		require.NoError(t, err)
		assert.Equal(t, `"text"`, p.String())
	})

	t.Run("none shape", func(t *testing.T) {
		p, err := EncodeAs(ShapeNone, map[string]any{"ignored": true})
		require.NoError(t, err)
		assert.True(t, p.IsAbsent())
	})
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("absent", func(t *testing.T) {
		v, present, err := Decode(Absent())
		require.NoError(t, err)
		assert.False(t, present)
		assert.Nil(t, v)
	})

	t.Run("json null is present", func(t *testing.T) {
		v, present, err := Decode(Raw("null"))
		require.NoError(t, err)
		assert.True(t, present)
		assert.Nil(t, v)
	})

	t.Run("numbers", func(t *testing.T) {
		tests := []struct {
			name    string
			in      any
			want    any
			wantErr bool
		}{
			{name: "whole float", in: float64(2), want: int64(2)},
			{name: "negative zero", in: math.Copysign(0, -1), want: int64(0)},
			{name: "fraction", in: 0.1, want: 0.1},
			{name: "min int64", in: int64(math.MinInt64), want: int64(math.MinInt64)},
			{name: "exact large float", in: 1e20, want: 1e20},
			{name: "exponent form", in: 1e300, want: 1e300},
			{name: "max uint64 loses precision", in: uint64(math.MaxUint64), wantErr: true},
			{name: "just past int64", in: uint64(math.MaxInt64) + 1, want: float64(1 << 63)},
		}
		for _, tt := range tests {
			p, err := Encode(tt.in)
			require.NoError(t, err, tt.name)
			got, present, err := Decode(p)
			assert.True(t, present, tt.name)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedPayload, tt.name)
				continue
			}
			require.NoError(t, err, tt.name)
			assert.Equal(t, tt.want, got, tt.name)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		for _, in := range []string{"", "{", "{'a': 1}", "undefined", `{"a":1} {"b":2}`} {
			_, _, err := Decode(Raw(in))
			require.ErrorIs(t, err, ErrMalformedPayload, in)
		}
	})
}

func TestDecodeObject(t *testing.T) {
	t.Parallel()

	obj, err := DecodeObject(Raw(`{"a":{"b":[1,2]}}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": []any{int64(1), int64(2)}}}, obj)

	obj, err = DecodeObject(Absent())
	require.NoError(t, err)
	assert.Nil(t, obj)

	obj, err = DecodeObject(Raw("null"))
	require.NoError(t, err)
	assert.Nil(t, obj)

	_, err = DecodeObject(Raw(`[1,2]`))
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.Contains(t, err.Error(), "array")
}

func TestCompact(t *testing.T) {
	t.Parallel()

	p, err := Compact(Raw("{ \"a\" : [ 1, 2 ] }"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,2]}`, p.String())

	_, err = Compact(Raw("{"))
	require.ErrorIs(t, err, ErrMalformedPayload)
}
