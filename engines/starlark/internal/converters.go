// Package internal converts between Go values and Starlark values for the chart guest.
package internal

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/robbyt/go-chartbridge/platform/constants"
	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// ErrNotConvertible is returned for values that have no plain-data form, such as functions.
var ErrNotConvertible = errors.New("value cannot leave the guest")

// ConvertToStarlarkFormat exposes the script input data as the ctx global. The dict is
// frozen: scripts read their input, they do not change it.
func ConvertToStarlarkFormat(input map[string]any) (starlarkLib.StringDict, error) {
	if input == nil {
		input = map[string]any{}
	}
	v, err := ConvertToStarlarkValue(input)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", constants.Ctx, err)
	}
	v.Freeze()
	return starlarkLib.StringDict{constants.Ctx: v}, nil
}

// ConvertToStarlarkValue converts decoded JSON-like Go data into a Starlark value.
func ConvertToStarlarkValue(v any) (starlarkLib.Value, error) {
	switch v := v.(type) {
	case nil:
		return starlarkLib.None, nil
	case starlarkLib.Value:
		return v, nil
	case bool:
		return starlarkLib.Bool(v), nil
	case string:
		return starlarkLib.String(v), nil
	case int:
		return starlarkLib.MakeInt(v), nil
	case int32:
		return starlarkLib.MakeInt64(int64(v)), nil
	case int64:
		return starlarkLib.MakeInt64(v), nil
	case uint:
		return starlarkLib.MakeUint(v), nil
	case uint32:
		return starlarkLib.MakeUint64(uint64(v)), nil
	case uint64:
		return starlarkLib.MakeUint64(v), nil
	case float32:
		return starlarkLib.Float(v), nil
	case float64:
		return starlarkLib.Float(v), nil
	case []any:
		items := make([]starlarkLib.Value, len(v))
		for i, item := range v {
			sv, err := ConvertToStarlarkValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = sv
		}
		return starlarkLib.NewList(items), nil
	case []string:
		items := make([]starlarkLib.Value, len(v))
		for i, item := range v {
			items[i] = starlarkLib.String(item)
		}
		return starlarkLib.NewList(items), nil
	case map[string]any:
		dict := starlarkLib.NewDict(len(v))
		for _, k := range sortedKeys(v) {
			sv, err := ConvertToStarlarkValue(v[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			if err := dict.SetKey(starlarkLib.String(k), sv); err != nil {
				return nil, err
			}
		}
		return dict, nil
	case map[string]string:
		dict := starlarkLib.NewDict(len(v))
		for _, k := range sortedKeys(v) {
			if err := dict.SetKey(starlarkLib.String(k), starlarkLib.String(v[k])); err != nil {
				return nil, err
			}
		}
		return dict, nil
	case map[string][]string:
		dict := starlarkLib.NewDict(len(v))
		for _, k := range sortedKeys(v) {
			list, _ := ConvertToStarlarkValue(v[k])
			if err := dict.SetKey(starlarkLib.String(k), list); err != nil {
				return nil, err
			}
		}
		return dict, nil
	case fmt.Stringer:
		return starlarkLib.String(v.String()), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

// ConvertStarlarkValueToInterface converts a guest value back into plain Go data: nil, bool,
// int64, float64, string, []any and map[string]any. Structs become maps.
func ConvertStarlarkValueToInterface(v starlarkLib.Value) (any, error) {
	switch v := v.(type) {
	case nil, starlarkLib.NoneType:
		return nil, nil
	case starlarkLib.Bool:
		return bool(v), nil
	case starlarkLib.Int:
		if i, ok := v.Int64(); ok {
			return i, nil
		}
		return nil, fmt.Errorf("%w: integer %s overflows int64", ErrNotConvertible, v)
	case starlarkLib.Float:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: non-finite float", ErrNotConvertible)
		}
		return f, nil
	case starlarkLib.String:
		return string(v), nil
	case *starlarkLib.List:
		return convertIterable(v, v.Len())
	case starlarkLib.Tuple:
		return convertIterable(v, v.Len())
	case *starlarkLib.Dict:
		out := make(map[string]any, v.Len())
		for _, item := range v.Items() {
			key, ok := item[0].(starlarkLib.String)
			if !ok {
				return nil, fmt.Errorf("%w: dict key of type %s", ErrNotConvertible, item[0].Type())
			}
			val, err := ConvertStarlarkValueToInterface(item[1])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", string(key), err)
			}
			out[string(key)] = val
		}
		return out, nil
	case *starlarkstruct.Struct:
		names := v.AttrNames()
		out := make(map[string]any, len(names))
		for _, name := range names {
			attr, err := v.Attr(name)
			if err != nil {
				return nil, err
			}
			val, err := ConvertStarlarkValueToInterface(attr)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}
			out[name] = val
		}
		return out, nil
	case starlarkLib.Callable:
		return nil, fmt.Errorf("%w: %s %s, use ChartEditor.wrapFn", ErrNotConvertible, v.Type(), v.Name())
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotConvertible, v.Type())
	}
}

func convertIterable(it starlarkLib.Indexable, n int) ([]any, error) {
	out := make([]any, n)
	for i := range n {
		val, err := ConvertStarlarkValueToInterface(it.Index(i))
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = val
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
