package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/risor-io/risor/object"
	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/bridge/marshal"
	"github.com/robbyt/go-chartbridge/bridge/prelude"
	"github.com/robbyt/go-chartbridge/engines/risor/internal"
)

// guestGlobals assembles everything a script sees for one evaluation. Risor has no prelude:
// the ChartEditor module is built host-side from the same bindings the Starlark prelude reads.
func guestGlobals(b *bridge.Bridge, logger *slog.Logger) map[string]any {
	globals := make(map[string]any)
	for name, obj := range internal.SafeGlobals(b.JSONHelper()) {
		globals[name] = obj
	}
	globals[prelude.FacadeGlobal] = facadeModule(b)
	globals[prelude.ChartValueGlobal] = chartValueModule()
	if b.JSONHelper() {
		globals[prelude.JSONHelper] = jsonHelperModule()
	}
	globals[internal.PrintGlobal] = printBuiltin(logger)
	return globals
}

// facadeModule exposes exactly the installed operations under their logical names.
func facadeModule(b *bridge.Bridge) *object.Module {
	contents := make(map[string]object.Object)
	for _, binding := range b.Bindings() {
		name := binding.Op.Name
		switch {
		case binding.Op.Marker && name == bridge.OpWrapFn:
			contents[name] = wrapFnBuiltin(binding.Value)
		case binding.Op.Marker && name == bridge.OpWrapHTML:
			contents[name] = wrapHTMLBuiltin(binding.Value)
		case binding.IsConstant():
			contents[name] = object.NewString(binding.Value)
		default:
			contents[name] = callBuiltin(binding)
		}
	}
	return object.NewBuiltinsModule(prelude.FacadeGlobal, contents)
}

// callBuiltin adapts a binding to Risor. Raw arguments must be strings (nil means absent);
// structured arguments are encoded to JSON. Omitted trailing arguments are absent, while an
// explicit nil for a structured argument is sent as JSON null.
func callBuiltin(binding bridge.Binding) *object.Builtin {
	op := binding.Op
	required := 0
	for _, arg := range op.Args {
		if !arg.Optional {
			required++
		}
	}

	return object.NewBuiltin(op.Name, func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < required || len(args) > len(op.Args) {
			return object.Errorf("type error: %s() takes %d to %d arguments (%d given)",
				op.Name, required, len(op.Args), len(args))
		}
		payloads := make([]marshal.Payload, len(args))
		for i, arg := range args {
			p, err := encodeArg(op.Args[i], arg)
			if err != nil {
				return object.NewError(&bridge.CallError{Op: op.Name, Class: bridge.ErrMarshal, Err: err})
			}
			payloads[i] = p
		}

		out, err := binding.Call(ctx, payloads...)
		if err != nil {
			return object.NewError(err)
		}
		obj, err := decodeResult(op, out)
		if err != nil {
			return object.NewError(&bridge.CallError{Op: op.Name, Class: bridge.ErrMarshal, Err: err})
		}
		return obj
	})
}

func encodeArg(arg bridge.Arg, obj object.Object) (marshal.Payload, error) {
	if arg.Shape == marshal.ShapeRaw {
		switch obj := obj.(type) {
		case *object.NilType:
			return marshal.Absent(), nil
		case *object.String:
			return marshal.Raw(obj.Value()), nil
		default:
			return marshal.Absent(), fmt.Errorf("%s must be a string, got %s", arg.Name, obj.Type())
		}
	}
	v, err := internal.ConvertRisorValueToInterface(obj)
	if err != nil {
		return marshal.Absent(), fmt.Errorf("%s: %w", arg.Name, err)
	}
	return marshal.Encode(v)
}

func decodeResult(op bridge.Operation, out marshal.Payload) (object.Object, error) {
	if out.IsAbsent() || op.Result == marshal.ShapeNone {
		return object.Nil, nil
	}
	if op.Result == marshal.ShapeRaw {
		return object.NewString(out.String()), nil
	}
	v, _, err := marshal.Decode(out)
	if err != nil {
		return nil, err
	}
	return internal.ConvertToRisorValue(v)
}

func wrapFnBuiltin(key string) *object.Builtin {
	return object.NewBuiltin(bridge.OpWrapFn, func(_ context.Context, args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 3 {
			return object.Errorf("type error: wrapFn() takes 1 to 3 arguments (%d given)", len(args))
		}
		src, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("wrapFn: expected function source text, got %s", args[0].Type())
		}
		body := map[string]any{"fn": src.Value()}
		for i, field := range []string{"args", "libs"} {
			if len(args) <= i+1 || args[i+1] == object.Nil {
				continue
			}
			v, err := internal.ConvertRisorValueToInterface(args[i+1])
			if err != nil {
				return object.Errorf("wrapFn: %s: %v", field, err)
			}
			body[field] = v
		}
		return mustObject(map[string]any{key: body})
	})
}

func wrapHTMLBuiltin(key string) *object.Builtin {
	return object.NewBuiltin(bridge.OpWrapHTML, func(_ context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.Errorf("type error: wrapHtml() takes exactly 1 argument (%d given)", len(args))
		}
		html, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("wrapHtml: expected a string, got %s", args[0].Type())
		}
		return object.NewMap(map[string]object.Object{key: html})
	})
}

// chartValueModule holds the tagged-variant helpers. Classification is marshal.Classify, the
// same rule the host applies to results.
func chartValueModule() *object.Module {
	return object.NewBuiltinsModule(prelude.ChartValueGlobal, map[string]object.Object{
		"FUNCTION": object.NewString(marshal.KindFunction.String()),
		"HTML":     object.NewString(marshal.KindHTML.String()),
		"VALUE":    object.NewString(marshal.KindValue.String()),
		"kindOf": object.NewBuiltin("kindOf", func(_ context.Context, args ...object.Object) object.Object {
			if len(args) != 1 {
				return object.Errorf("type error: kindOf() takes exactly 1 argument (%d given)", len(args))
			}
			return object.NewString(classify(args[0]).Kind.String())
		}),
		"unwrap": object.NewBuiltin("unwrap", func(_ context.Context, args ...object.Object) object.Object {
			if len(args) != 1 {
				return object.Errorf("type error: unwrap() takes exactly 1 argument (%d given)", len(args))
			}
			tagged := classify(args[0])
			switch tagged.Kind {
			case marshal.KindHTML:
				return object.NewString(tagged.HTML)
			case marshal.KindFunction:
				return args[0].(*object.Map).Value()[marshal.WrappedFnKey]
			default:
				return args[0]
			}
		}),
	})
}

func classify(obj object.Object) marshal.Tagged {
	v, err := internal.ConvertRisorValueToInterface(obj)
	if err != nil {
		return marshal.Tagged{Kind: marshal.KindValue}
	}
	return marshal.Classify(v)
}

func jsonHelperModule() *object.Module {
	return object.NewBuiltinsModule(prelude.JSONHelper, map[string]object.Object{
		"stringify": object.NewBuiltin("stringify", func(_ context.Context, args ...object.Object) object.Object {
			if len(args) != 1 {
				return object.Errorf("type error: stringify() takes exactly 1 argument (%d given)", len(args))
			}
			v, err := internal.ConvertRisorValueToInterface(args[0])
			if err != nil {
				return object.NewError(err)
			}
			p, err := marshal.Encode(v)
			if err != nil {
				return object.NewError(err)
			}
			return object.NewString(p.String())
		}),
		"parse": object.NewBuiltin("parse", func(_ context.Context, args ...object.Object) object.Object {
			if len(args) != 1 {
				return object.Errorf("type error: parse() takes exactly 1 argument (%d given)", len(args))
			}
			s, ok := args[0].(*object.String)
			if !ok {
				return object.Errorf("parse: expected a string, got %s", args[0].Type())
			}
			v, _, err := marshal.Decode(marshal.Raw(s.Value()))
			if err != nil {
				return object.NewError(err)
			}
			return mustObject(v)
		}),
	})
}

// printBuiltin sends guest output to the log instead of stdout.
func printBuiltin(logger *slog.Logger) *object.Builtin {
	return object.NewBuiltin(internal.PrintGlobal, func(ctx context.Context, args ...object.Object) object.Object {
		parts := make([]string, len(args))
		for i, arg := range args {
			if s, ok := arg.(*object.String); ok {
				parts[i] = s.Value()
			} else {
				parts[i] = arg.Inspect()
			}
		}
		logger.InfoContext(ctx, strings.Join(parts, " "), "source", "guest")
		return object.Nil
	})
}

// mustObject converts data that was produced by the decoder or by guest objects, which always
// has an object form.
func mustObject(v any) object.Object {
	obj, err := internal.ConvertToRisorValue(v)
	if err != nil {
		return object.NewError(err)
	}
	return obj
}
