// Package extism runs chart modules compiled to WebAssembly. Bridge operations are host
// functions in the extism:host/user namespace and constants are Extism config values; WASI
// is disabled.
package extism

import (
	"fmt"
	"log/slog"

	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/engines/extism/compiler"
	"github.com/robbyt/go-chartbridge/engines/extism/evaluator"
	"github.com/robbyt/go-chartbridge/platform/constants"
	"github.com/robbyt/go-chartbridge/platform/data"
	"github.com/robbyt/go-chartbridge/platform/script/loader"
)

// FromExtismLoader creates an Extism evaluator from a loader with dynamic data only.
//
// Input parameters:
// - logHandler: logger handler for logging
// - role: the chart role the module runs as
// - ldr: loader implementation for loading the WASM content
// - entryPoint: exported function to call in the WASM module
func FromExtismLoader(
	logHandler slog.Handler,
	role bridge.Role,
	ldr loader.Loader,
	entryPoint string,
	opts ...evaluator.FunctionalOption,
) (*evaluator.Evaluator, error) {
	return NewEvaluator(logHandler, role, ldr, data.NewContextProvider(constants.EvalData), entryPoint, opts...)
}

// FromExtismLoaderWithData creates an Extism evaluator with both static and dynamic data.
// To add runtime data, use AddDataToContext on the evaluator.
func FromExtismLoaderWithData(
	logHandler slog.Handler,
	role bridge.Role,
	ldr loader.Loader,
	staticData map[string]any,
	entryPoint string,
	opts ...evaluator.FunctionalOption,
) (*evaluator.Evaluator, error) {
	staticProvider := data.NewStaticProvider(staticData)
	dynamicProvider := data.NewContextProvider(constants.EvalData)
	compositeProvider := data.NewCompositeProvider(staticProvider, dynamicProvider)
	return NewEvaluator(logHandler, role, ldr, compositeProvider, entryPoint, opts...)
}

// NewCompiler creates an Extism compiler for role.
func NewCompiler(role bridge.Role, opts ...compiler.FunctionalOption) (*compiler.Compiler, error) {
	return compiler.New(role, opts...)
}

// NewEvaluator compiles the module from ldr and returns an evaluator ready to run it.
func NewEvaluator(
	logHandler slog.Handler,
	role bridge.Role,
	ldr loader.Loader,
	dataProvider data.Provider,
	entryPoint string,
	opts ...evaluator.FunctionalOption,
) (*evaluator.Evaluator, error) {
	if dataProvider == nil {
		return nil, fmt.Errorf("provider is nil")
	}

	compilerOpts := []compiler.FunctionalOption{compiler.WithEntryPoint(entryPoint)}
	evalOpts := []evaluator.FunctionalOption{evaluator.WithDataProvider(dataProvider)}
	if logHandler != nil {
		compilerOpts = append(compilerOpts, compiler.WithLogHandler(logHandler))
		evalOpts = append(evalOpts, evaluator.WithLogHandler(logHandler))
	}

	c, err := NewCompiler(role, compilerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Extism compiler: %w", err)
	}
	exe, err := c.Compile(ldr)
	if err != nil {
		return nil, err
	}
	return evaluator.New(exe, append(evalOpts, opts...)...)
}
