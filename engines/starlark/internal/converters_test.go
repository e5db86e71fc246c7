package internal

import (
	"math"
	"net/url"
	"testing"

	"github.com/robbyt/go-chartbridge/platform/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

func mustDict(t *testing.T, kv ...starlarkLib.Value) *starlarkLib.Dict {
	t.Helper()
	d := starlarkLib.NewDict(len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		require.NoError(t, d.SetKey(kv[i], kv[i+1]))
	}
	return d
}

func TestConvertStarlarkValueToInterface(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    starlarkLib.Value
		expected any
		wantErr  bool
	}{
		{name: "nil value", input: nil, expected: nil},
		{name: "none", input: starlarkLib.None, expected: nil},
		{name: "bool", input: starlarkLib.Bool(true), expected: true},
		{name: "int", input: starlarkLib.MakeInt(42), expected: int64(42)},
		{name: "float", input: starlarkLib.Float(3.14), expected: 3.14},
		{name: "string", input: starlarkLib.String("hello"), expected: "hello"},
		{name: "empty list", input: starlarkLib.NewList(nil), expected: []any{}},
		{
			name: "mixed list",
			input: starlarkLib.NewList([]starlarkLib.Value{
				starlarkLib.MakeInt(1), starlarkLib.String("two"), starlarkLib.Bool(true),
			}),
			expected: []any{int64(1), "two", true},
		},
		{
			name:     "tuple",
			input:    starlarkLib.Tuple{starlarkLib.MakeInt(1), starlarkLib.None},
			expected: []any{int64(1), nil},
		},
		{name: "empty dict", input: starlarkLib.NewDict(0), expected: map[string]any{}},
		{
			name: "nested dict",
			input: mustDict(t,
				starlarkLib.String("outer"),
				mustDict(t, starlarkLib.String("inner"), starlarkLib.MakeInt(1)),
			),
			expected: map[string]any{"outer": map[string]any{"inner": int64(1)}},
		},
		{
			name: "struct",
			input: starlarkstruct.FromStringDict(starlarkstruct.Default, starlarkLib.StringDict{
				"a": starlarkLib.String("x"),
			}),
			expected: map[string]any{"a": "x"},
		},
		{
			name:    "non-string dict key",
			input:   mustDict(t, starlarkLib.MakeInt(1), starlarkLib.None),
			wantErr: true,
		},
		{
			name:    "function",
			input:   starlarkLib.NewBuiltin("f", nil),
			wantErr: true,
		},
		{
			name:    "non-finite float",
			input:   starlarkLib.Float(math.Inf(1)),
			wantErr: true,
		},
		{
			name:    "huge int",
			input:   starlarkLib.MakeInt64(math.MaxInt64).Add(starlarkLib.MakeInt(1)),
			wantErr: true,
		},
		{
			name:    "function nested in a list",
			input:   starlarkLib.NewList([]starlarkLib.Value{starlarkLib.NewBuiltin("f", nil)}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, err := ConvertStarlarkValueToInterface(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNotConvertible)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConvertToStarlarkValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   any
		want    string
		wantErr bool
	}{
		{name: "nil", input: nil, want: "None"},
		{name: "bool", input: false, want: "False"},
		{name: "int", input: 42, want: "42"},
		{name: "int64", input: int64(-7), want: "-7"},
		{name: "uint64", input: uint64(7), want: "7"},
		{name: "float", input: 1.5, want: "1.5"},
		{name: "string", input: "hi", want: `"hi"`},
		{name: "list", input: []any{int64(1), "a"}, want: `[1, "a"]`},
		{name: "string list", input: []string{"a", "b"}, want: `["a", "b"]`},
		{
			name:  "nested map with sorted keys",
			input: map[string]any{"b": 1, "a": map[string]any{"c": nil}},
			want:  `{"a": {"c": None}, "b": 1}`,
		},
		{name: "string map", input: map[string]string{"k": "v"}, want: `{"k": "v"}`},
		{name: "multi map", input: map[string][]string{"k": {"v"}}, want: `{"k": ["v"]}`},
		{name: "stringer", input: &url.URL{Scheme: "https", Host: "example.com"}, want: `"https://example.com"`},
		{name: "starlark value", input: starlarkLib.MakeInt(3), want: "3"},
		{name: "unsupported", input: make(chan int), wantErr: true},
		{name: "unsupported nested", input: map[string]any{"c": make(chan int)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, err := ConvertToStarlarkValue(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.String())
		})
	}
}

func TestConvertToStarlarkFormat(t *testing.T) {
	t.Parallel()

	globals, err := ConvertToStarlarkFormat(map[string]any{"region": "emea"})
	require.NoError(t, err)
	require.Contains(t, globals, constants.Ctx)

	dict, ok := globals[constants.Ctx].(*starlarkLib.Dict)
	require.True(t, ok)
	v, found, err := dict.Get(starlarkLib.String("region"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, starlarkLib.String("emea"), v)
	require.Error(t, dict.SetKey(starlarkLib.String("x"), starlarkLib.None), "ctx must be frozen")

	empty, err := ConvertToStarlarkFormat(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty[constants.Ctx].(*starlarkLib.Dict).Len())

	_, err = ConvertToStarlarkFormat(map[string]any{"bad": make(chan int)})
	require.Error(t, err)
}

func TestStarlarkModules(t *testing.T) {
	t.Parallel()

	assert.NotContains(t, StarlarkModules(false), "json")
	assert.Contains(t, StarlarkModules(true), "json")
	for _, name := range []string{"math", "time", "struct"} {
		assert.Contains(t, StarlarkModules(false), name)
	}
}
