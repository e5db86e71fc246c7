// Package prelude holds the guest bootstrap script shared verbatim by every Starlark guest
// context, and the names it expects the host to predeclare.
package prelude

import _ "embed"

//go:embed prelude.star
var source string

// Names the host predeclares for the prelude module.
const (
	BridgeGlobal = "__bridge"
	JSONGlobal   = "__json"
	NoJSONGlobal = "__noJsonFn"
	StructGlobal = "__struct"
)

// Names the prelude exports to user code.
const (
	FacadeGlobal     = "ChartEditor"
	ChartValueGlobal = "ChartValue"
	JSONHelper       = "JSON"
)

// Filename is used in guest stack traces.
const Filename = "chart-editor-prelude.star"

// Source returns the prelude script.
func Source() string {
	return source
}

// Exports lists the globals the prelude may export, in a stable order. JSON is only present
// when the JSON helper is enabled.
func Exports() []string {
	return []string{FacadeGlobal, ChartValueGlobal, JSONHelper}
}
