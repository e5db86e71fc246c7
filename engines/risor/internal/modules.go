package internal

import (
	"sort"

	"github.com/risor-io/risor/builtins"
	modjson "github.com/risor-io/risor/modules/json"
	modmath "github.com/risor-io/risor/modules/math"
	modstrings "github.com/risor-io/risor/modules/strings"
	modtime "github.com/risor-io/risor/modules/time"
	"github.com/risor-io/risor/object"
	"github.com/robbyt/go-chartbridge/bridge/prelude"
	"github.com/robbyt/go-chartbridge/platform/constants"
)

// safeBuiltins are the core builtins left to chart scripts. Anything touching goroutines,
// channels or the host environment is excluded.
var safeBuiltins = []string{
	"all", "any", "bool", "chr", "coalesce", "delete", "error", "float", "getattr", "int",
	"iter", "keys", "len", "list", "map", "ord", "reversed", "set", "sorted", "sprintf",
	"string", "try", "type",
}

// SafeGlobals returns the builtins and modules user scripts may see. The json module is only
// present when the JSON helper is enabled.
func SafeGlobals(jsonHelper bool) map[string]object.Object {
	all := builtins.Builtins()
	globals := make(map[string]object.Object, len(safeBuiltins)+4)
	for _, name := range safeBuiltins {
		if b, ok := all[name]; ok {
			globals[name] = b
		}
	}
	globals["math"] = modmath.Module()
	globals["strings"] = modstrings.Module()
	globals["time"] = modtime.Module()
	if jsonHelper {
		globals["json"] = modjson.Module()
	}
	return globals
}

// SortedKeys returns the keys of m in order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PrintGlobal is the name of the logging print builtin.
const PrintGlobal = "print"

// GuestNames returns every global name a chart script can reference: the facade exports,
// ctx, print and the safe builtins and modules.
func GuestNames(jsonHelper bool) []string {
	names := map[string]struct{}{
		prelude.FacadeGlobal:     {},
		prelude.ChartValueGlobal: {},
		constants.Ctx:            {},
		PrintGlobal:              {},
	}
	if jsonHelper {
		names[prelude.JSONHelper] = struct{}{}
	}
	for name := range SafeGlobals(jsonHelper) {
		names[name] = struct{}{}
	}
	return SortedKeys(names)
}
