package internal

import (
	"context"
	"math"
	"testing"

	"github.com/risor-io/risor/object"
	"github.com/robbyt/go-chartbridge/bridge/prelude"
	"github.com/robbyt/go-chartbridge/platform/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertRisorValueToInterface(t *testing.T) {
	t.Parallel()

	builtin := object.NewBuiltin("f", func(context.Context, ...object.Object) object.Object { return object.Nil })

	tests := []struct {
		name     string
		input    object.Object
		expected any
		wantErr  bool
	}{
		{name: "nil", input: nil, expected: nil},
		{name: "risor nil", input: object.Nil, expected: nil},
		{name: "bool", input: object.True, expected: true},
		{name: "int", input: object.NewInt(7), expected: int64(7)},
		{name: "float", input: object.NewFloat(2.5), expected: 2.5},
		{name: "string", input: object.NewString("x"), expected: "x"},
		{
			name:     "list",
			input:    object.NewList([]object.Object{object.NewInt(1), object.NewString("a"), object.Nil}),
			expected: []any{int64(1), "a", nil},
		},
		{
			name: "nested map",
			input: object.NewMap(map[string]object.Object{
				"outer": object.NewMap(map[string]object.Object{"inner": object.False}),
			}),
			expected: map[string]any{"outer": map[string]any{"inner": false}},
		},
		{name: "builtin", input: builtin, wantErr: true},
		{name: "nested builtin", input: object.NewList([]object.Object{builtin}), wantErr: true},
		{name: "nan", input: object.NewFloat(math.NaN()), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, err := ConvertRisorValueToInterface(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNotConvertible)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConvertToRisorValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   any
		want    any
		wantErr bool
	}{
		{name: "nil", input: nil, want: nil},
		{name: "int", input: 3, want: int64(3)},
		{name: "uint64", input: uint64(3), want: int64(3)},
		{name: "float32", input: float32(0.5), want: 0.5},
		{name: "string list", input: []string{"a"}, want: []any{"a"}},
		{name: "string map", input: map[string]string{"k": "v"}, want: map[string]any{"k": "v"}},
		{
			name:  "nested",
			input: map[string]any{"a": []any{true, nil, int64(2)}},
			want:  map[string]any{"a": []any{true, nil, int64(2)}},
		},
		{name: "uint64 overflow", input: uint64(math.MaxUint64), wantErr: true},
		{name: "unsupported", input: make(chan int), wantErr: true},
		{name: "unsupported nested", input: []any{struct{}{}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			obj, err := ConvertToRisorValue(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			back, err := ConvertRisorValueToInterface(obj)
			require.NoError(t, err)
			assert.Equal(t, tt.want, back)
		})
	}
}

func TestConvertToRisorOptions(t *testing.T) {
	t.Parallel()

	opts, err := ConvertToRisorOptions(constants.Ctx, map[string]any{"region": "emea"})
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	opts, err = ConvertToRisorOptions(constants.Ctx, nil)
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	_, err = ConvertToRisorOptions(constants.Ctx, map[string]any{"c": make(chan int)})
	require.Error(t, err)
}

func TestGuestNames(t *testing.T) {
	t.Parallel()

	off := GuestNames(false)
	on := GuestNames(true)
	for _, name := range []string{prelude.FacadeGlobal, prelude.ChartValueGlobal, constants.Ctx, PrintGlobal, "len", "math"} {
		assert.Contains(t, off, name)
		assert.Contains(t, on, name)
	}
	for _, name := range []string{prelude.JSONHelper, "json"} {
		assert.NotContains(t, off, name)
		assert.Contains(t, on, name)
	}
	for _, name := range []string{"os", "exec", "http", "spawn", "chan"} {
		assert.NotContains(t, on, name)
	}
	assert.IsNonDecreasing(t, on)
}
