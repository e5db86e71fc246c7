package bridge

import (
	"fmt"

	"github.com/robbyt/go-chartbridge/bridge/marshal"
)

// WirePrefix is prepended to every logical operation name to form the name bound in the
// guest. The prelude locates operations by these names, so they must stay stable.
const WirePrefix = "_ChartEditor_"

// Logical operation names.
const (
	OpGetTranslation    = "getTranslation"
	OpGetSharedData     = "getSharedData"
	OpUserLang          = "userLang"
	OpUserLogin         = "userLogin"
	OpAttachHandler     = "attachHandler"
	OpAttachFormatter   = "attachFormatter"
	OpGetSecrets        = "getSecrets"
	OpResolveRelative   = "resolveRelative"
	OpResolveInterval   = "resolveInterval"
	OpResolveOperation  = "resolveOperation"
	OpSetError          = "setError"
	OpSetChartsInsights = "setChartsInsights"
	OpGetWidgetConfig   = "getWidgetConfig"
	OpGetActionParams   = "getActionParams"
	OpWrapFn            = "wrapFn"
	OpWrapHTML          = "wrapHtml"

	OpUpdateActionParams = "updateActionParams"
	OpGetLoadedData      = "getLoadedData"
	OpGetLoadedDataStats = "getLoadedDataStats"
	OpSetDataSourceInfo  = "setDataSourceInfo"

	OpUpdateConfig           = "updateConfig"
	OpUpdateHighchartsConfig = "updateHighchartsConfig"
	OpSetSideHTML            = "setSideHtml"
	OpSetSideMarkdown        = "setSideMarkdown"
	OpSetExtra               = "setExtra"
	OpSetExportFilename      = "setExportFilename"
)

// Direction says how an operation crosses the boundary.
type Direction int

const (
	// DirectionConstant values are pushed into the guest once, as plain values.
	DirectionConstant Direction = iota
	// DirectionCall operations are functions the guest calls synchronously.
	DirectionCall
)

func (d Direction) String() string {
	switch d {
	case DirectionConstant:
		return "constant"
	case DirectionCall:
		return "call"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// NullPolicy declares how an operation treats an absent argument versus a JSON null.
type NullPolicy int

const (
	// NullIsAbsent treats an absent payload and JSON null alike: no value.
	NullIsAbsent NullPolicy = iota
	// NullIsValue keeps JSON null as an explicit value, distinct from an absent payload.
	NullIsValue
)

// Arg describes one positional argument of a call operation.
type Arg struct {
	Name     string
	Shape    marshal.Shape
	Optional bool
}

// Operation describes one host capability as seen by the guest.
type Operation struct {
	Name      string
	Direction Direction
	Args      []Arg
	// Result is marshal.ShapeNone for operations that return nothing.
	Result marshal.Shape
	// Optional operations are installed only when the adapter implements them.
	Optional   bool
	NullPolicy NullPolicy
	// Marker constants hold a marker token rather than adapter data.
	Marker bool
	// wire overrides the default prefixed name.
	wire string
}

// WireName returns the name the operation is bound under inside the guest.
func (o Operation) WireName() string {
	if o.wire != "" {
		return o.wire
	}
	return WirePrefix + o.Name
}

// ReturnsValue reports whether a call operation produces a result.
func (o Operation) ReturnsValue() bool {
	return o.Direction == DirectionCall && o.Result != marshal.ShapeNone
}

func (o Operation) String() string {
	return fmt.Sprintf("%s(%s, %d args, result %s)", o.Name, o.Direction, len(o.Args), o.Result)
}

func constant(name string) Operation {
	return Operation{Name: name, Direction: DirectionConstant, Result: marshal.ShapeRaw}
}

func marker(name, wire string) Operation {
	return Operation{
		Name:      name,
		Direction: DirectionConstant,
		Result:    marshal.ShapeRaw,
		Marker:    true,
		wire:      wire,
	}
}

func call(name string, result marshal.Shape, args ...Arg) Operation {
	return Operation{Name: name, Direction: DirectionCall, Args: args, Result: result}
}

func optional(op Operation) Operation {
	op.Optional = true
	return op
}

func raw(name string) Arg         { return Arg{Name: name, Shape: marshal.ShapeRaw} }
func rawOptional(name string) Arg { return Arg{Name: name, Shape: marshal.ShapeRaw, Optional: true} }
func jsonOptional(name string) Arg {
	return Arg{Name: name, Shape: marshal.ShapeJSON, Optional: true}
}

// Operation tiers. Each role's capability set is a concatenation of these.
var (
	baseTier = []Operation{
		call(OpGetTranslation, marshal.ShapeRaw, raw("keyset"), raw("key"), jsonOptional("params")),
		call(OpGetSharedData, marshal.ShapeJSON),
		constant(OpUserLang),
		constant(OpUserLogin),
		call(OpAttachHandler, marshal.ShapeJSON, jsonOptional("handlerConfig")),
		call(OpAttachFormatter, marshal.ShapeJSON, jsonOptional("formatterConfig")),
		optional(call(OpGetSecrets, marshal.ShapeJSON)),
		call(OpResolveRelative, marshal.ShapeJSON, raw("relative"), rawOptional("intervalPart")),
		call(OpResolveInterval, marshal.ShapeJSON, raw("interval")),
		call(OpResolveOperation, marshal.ShapeJSON, raw("operation")),
		call(OpSetError, marshal.ShapeNone, jsonOptional("error")),
		call(OpSetChartsInsights, marshal.ShapeNone, jsonOptional("insights")),
		optional(call(OpGetWidgetConfig, marshal.ShapeJSON)),
		optional(call(OpGetActionParams, marshal.ShapeJSON)),
		marker(OpWrapFn, WirePrefix+"wrapFn_WRAPPED_FN_KEY"),
		marker(OpWrapHTML, WirePrefix+"wrapHtml_WRAPPED_HTML_KEY"),
	}

	dataTier = []Operation{
		call(OpUpdateActionParams, marshal.ShapeNone, jsonOptional("params")),
		call(OpGetLoadedData, marshal.ShapeJSON),
		call(OpGetLoadedDataStats, marshal.ShapeJSON),
		call(OpSetDataSourceInfo, marshal.ShapeNone, raw("dataSourceKey"), jsonOptional("info")),
	}

	configTier = []Operation{
		call(OpUpdateConfig, marshal.ShapeNone, jsonOptional("fragment")),
		call(OpUpdateHighchartsConfig, marshal.ShapeNone, jsonOptional("fragment")),
		call(OpSetSideHTML, marshal.ShapeNone, raw("html")),
		call(OpSetSideMarkdown, marshal.ShapeNone, raw("markdown")),
		withNullPolicy(
			call(OpSetExtra, marshal.ShapeNone, raw("key"), jsonOptional("value")),
			NullIsValue,
		),
		call(OpSetExportFilename, marshal.ShapeNone, raw("filename")),
	}
)

func withNullPolicy(op Operation, policy NullPolicy) Operation {
	op.NullPolicy = policy
	return op
}

// BaseTier returns the operations available to every role.
func BaseTier() []Operation { return cloneOps(baseTier) }

// DataTier returns the loaded-data and parameter mutation operations.
func DataTier() []Operation { return cloneOps(dataTier) }

// ConfigTier returns the full config mutation operations.
func ConfigTier() []Operation { return cloneOps(configTier) }

func cloneOps(tiers ...[]Operation) []Operation {
	var out []Operation
	for _, tier := range tiers {
		for _, op := range tier {
			op.Args = append([]Arg(nil), op.Args...)
			out = append(out, op)
		}
	}
	return out
}
