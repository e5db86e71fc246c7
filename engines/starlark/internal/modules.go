package internal

import (
	starlarkjson "go.starlark.net/lib/json"
	starlarkmath "go.starlark.net/lib/math"
	starlarktime "go.starlark.net/lib/time"
	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// StructBuiltin is the struct constructor given to the prelude and to user scripts.
var StructBuiltin = starlarkLib.NewBuiltin("struct", starlarkstruct.Make)

// StarlarkModules returns the modules user scripts may see on top of the Starlark universe.
// The json module is only present when the JSON helper is enabled.
func StarlarkModules(jsonHelper bool) starlarkLib.StringDict {
	modules := starlarkLib.StringDict{
		"math":   starlarkmath.Module,
		"time":   starlarktime.Module,
		"struct": StructBuiltin,
	}
	if jsonHelper {
		modules["json"] = starlarkjson.Module
	}
	return modules
}

// JSONModule is the json module the prelude uses to encode and decode payloads.
func JSONModule() starlarkLib.Value {
	return starlarkjson.Module
}
