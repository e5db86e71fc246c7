package evaluator

import (
	"context"
	"fmt"

	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/bridge/marshal"
	"github.com/robbyt/go-chartbridge/bridge/prelude"
	"github.com/robbyt/go-chartbridge/engines/starlark/internal"
	starlarkLib "go.starlark.net/starlark"
)

const contextLocal = "chartbridge.context"

// threadContext returns the context of the evaluation running on thread.
func threadContext(thread *starlarkLib.Thread) context.Context {
	if ctx, ok := thread.Local(contextLocal).(context.Context); ok {
		return ctx
	}
	return context.Background()
}

// bindingsDict exposes the bridge under wire names: constants as strings, calls as builtins
// taking strings or None and returning a string or None.
func bindingsDict(b *bridge.Bridge) *starlarkLib.Dict {
	bindings := b.Bindings()
	dict := starlarkLib.NewDict(len(bindings))
	for _, binding := range bindings {
		var v starlarkLib.Value
		if binding.IsConstant() {
			v = starlarkLib.String(binding.Value)
		} else {
			v = callBuiltin(binding)
		}
		// keys are unique strings, SetKey cannot fail on an unfrozen dict
		_ = dict.SetKey(starlarkLib.String(binding.Name), v)
	}
	dict.Freeze()
	return dict
}

func callBuiltin(binding bridge.Binding) *starlarkLib.Builtin {
	return starlarkLib.NewBuiltin(binding.Name, func(
		thread *starlarkLib.Thread,
		fn *starlarkLib.Builtin,
		args starlarkLib.Tuple,
		kwargs []starlarkLib.Tuple,
	) (starlarkLib.Value, error) {
		if len(kwargs) > 0 {
			return nil, fmt.Errorf("%s: unexpected keyword arguments", binding.Op.Name)
		}
		payloads := make([]marshal.Payload, len(args))
		for i, arg := range args {
			switch arg := arg.(type) {
			case starlarkLib.NoneType:
				payloads[i] = marshal.Absent()
			case starlarkLib.String:
				payloads[i] = marshal.Raw(string(arg))
			default:
				return nil, fmt.Errorf("%s: argument %d must be a string or None, got %s",
					binding.Op.Name, i+1, arg.Type())
			}
		}

		out, err := binding.Call(threadContext(thread), payloads...)
		if err != nil {
			return nil, err
		}
		if out.IsAbsent() {
			return starlarkLib.None, nil
		}
		return starlarkLib.String(out.String()), nil
	})
}

// runPrelude builds the facade for b and returns the globals user code may see.
func runPrelude(
	thread *starlarkLib.Thread,
	prog *starlarkLib.Program,
	b *bridge.Bridge,
) (starlarkLib.StringDict, error) {
	globals, err := prog.Init(thread, starlarkLib.StringDict{
		prelude.BridgeGlobal: bindingsDict(b),
		prelude.JSONGlobal:   internal.JSONModule(),
		prelude.NoJSONGlobal: starlarkLib.Bool(!b.JSONHelper()),
		prelude.StructGlobal: internal.StructBuiltin,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrelude, err)
	}
	globals.Freeze()

	exports := make(starlarkLib.StringDict, len(prelude.Exports()))
	for _, name := range prelude.Exports() {
		if v, ok := globals[name]; ok && v != starlarkLib.None {
			exports[name] = v
		}
	}
	return exports, nil
}
