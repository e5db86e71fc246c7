// Package constants holds the keys shared between hosts, data providers and guest engines.
package constants

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// EvalData is the context key under which ContextProvider stores per-evaluation chart
	// parameters.
	EvalData ContextKey = "chart_eval_data"

	// Ctx is the guest global that exposes the script input data.
	Ctx = "ctx"

	// Result is the guest global read back as the script result. A callable is invoked with
	// no arguments first.
	Result = "result"
)
