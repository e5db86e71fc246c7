// Package internal converts between Go values and Risor objects for the chart guest.
package internal

import (
	"errors"
	"fmt"
	"math"

	risorLib "github.com/risor-io/risor"
	"github.com/risor-io/risor/object"
)

// ErrNotConvertible is returned for objects that have no plain-data form, such as functions.
var ErrNotConvertible = errors.New("value cannot leave the guest")

// ConvertToRisorOptions exposes the script input data under ctxKey.
//
// For example, if the inputData is {"foo": "bar", "baz": 123}, the output will be:
//
//	[]risorLib.Option{
//	  risorLib.WithGlobal("ctx", <map {"baz": 123, "foo": "bar"}>),
//	}
func ConvertToRisorOptions(ctxKey string, inputData map[string]any) ([]risorLib.Option, error) {
	if inputData == nil {
		inputData = map[string]any{}
	}
	v, err := ConvertToRisorValue(inputData)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", ctxKey, err)
	}
	return []risorLib.Option{risorLib.WithGlobal(ctxKey, v)}, nil
}

// ConvertToRisorValue converts decoded JSON-like Go data into a Risor object.
func ConvertToRisorValue(v any) (object.Object, error) {
	switch v := v.(type) {
	case nil:
		return object.Nil, nil
	case object.Object:
		return v, nil
	case bool:
		return object.NewBool(v), nil
	case string:
		return object.NewString(v), nil
	case int:
		return object.NewInt(int64(v)), nil
	case int32:
		return object.NewInt(int64(v)), nil
	case int64:
		return object.NewInt(v), nil
	case uint32:
		return object.NewInt(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", v)
		}
		return object.NewInt(int64(v)), nil
	case float32:
		return object.NewFloat(float64(v)), nil
	case float64:
		return object.NewFloat(v), nil
	case []any:
		items := make([]object.Object, len(v))
		for i, item := range v {
			obj, err := ConvertToRisorValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = obj
		}
		return object.NewList(items), nil
	case []string:
		items := make([]object.Object, len(v))
		for i, item := range v {
			items[i] = object.NewString(item)
		}
		return object.NewList(items), nil
	case map[string]any:
		items := make(map[string]object.Object, len(v))
		for k, item := range v {
			obj, err := ConvertToRisorValue(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			items[k] = obj
		}
		return object.NewMap(items), nil
	case map[string]string:
		items := make(map[string]object.Object, len(v))
		for k, item := range v {
			items[k] = object.NewString(item)
		}
		return object.NewMap(items), nil
	case fmt.Stringer:
		return object.NewString(v.String()), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

// ConvertRisorValueToInterface converts a guest object back into plain Go data: nil, bool,
// int64, float64, string, []any and map[string]any.
func ConvertRisorValueToInterface(obj object.Object) (any, error) {
	switch obj := obj.(type) {
	case nil, *object.NilType:
		return nil, nil
	case *object.Bool:
		return obj.Value(), nil
	case *object.Int:
		return obj.Value(), nil
	case *object.Float:
		f := obj.Value()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: non-finite float", ErrNotConvertible)
		}
		return f, nil
	case *object.String:
		return obj.Value(), nil
	case *object.List:
		items := obj.Value()
		out := make([]any, len(items))
		for i, item := range items {
			v, err := ConvertRisorValueToInterface(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	case *object.Map:
		items := obj.Value()
		out := make(map[string]any, len(items))
		for _, k := range SortedKeys(items) {
			v, err := ConvertRisorValueToInterface(items[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = v
		}
		return out, nil
	case *object.Function, *object.Builtin:
		return nil, fmt.Errorf("%w: %s, use ChartEditor.wrapFn", ErrNotConvertible, obj.Type())
	case *object.Error:
		return nil, fmt.Errorf("%w: error value %s", ErrNotConvertible, obj.Inspect())
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotConvertible, obj.Type())
	}
}
