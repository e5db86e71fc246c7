// Package adapters narrows the Extism SDK types to what the chart engine needs, so the
// evaluator can be exercised without a real WASM module.
package adapters

import (
	"context"

	extismSDK "github.com/extism/go-sdk"
)

// CompiledPlugin is an interface for abstracting the extismSDK.CompiledPlugin
type CompiledPlugin interface {
	Instance(ctx context.Context, config extismSDK.PluginInstanceConfig) (PluginInstance, error)
	Close(ctx context.Context) error
}

// PluginInstance is an interface for abstracting the extismSDK.Plugin
type PluginInstance interface {
	CallWithContext(ctx context.Context, name string, data []byte) (uint32, []byte, error)
	FunctionExists(name string) bool
	// SetConfig adds values readable by the guest through the Extism config API.
	SetConfig(values map[string]string)
	Close(ctx context.Context) error
}
