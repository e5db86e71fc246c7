// Package risor runs chart scripts written in Risor. Scripts see a ChartEditor module built
// host-side from the bridge bindings, a ChartValue module, ctx and a small safe set of
// builtins; the default Risor globals are not installed.
package risor

import (
	"fmt"
	"log/slog"

	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/engines/risor/compiler"
	"github.com/robbyt/go-chartbridge/engines/risor/evaluator"
	"github.com/robbyt/go-chartbridge/platform/constants"
	"github.com/robbyt/go-chartbridge/platform/data"
	"github.com/robbyt/go-chartbridge/platform/script/loader"
)

// FromRisorLoader creates an evaluator whose ctx input is added per evaluation with
// AddDataToContext.
func FromRisorLoader(
	logHandler slog.Handler,
	role bridge.Role,
	ldr loader.Loader,
	opts ...evaluator.FunctionalOption,
) (*evaluator.Evaluator, error) {
	return NewEvaluator(logHandler, role, ldr, data.NewContextProvider(constants.EvalData), opts...)
}

// FromRisorLoaderWithData creates an evaluator with both static and dynamic data. To add
// runtime data, use AddDataToContext on the evaluator.
func FromRisorLoaderWithData(
	logHandler slog.Handler,
	role bridge.Role,
	ldr loader.Loader,
	staticData map[string]any,
	opts ...evaluator.FunctionalOption,
) (*evaluator.Evaluator, error) {
	staticProvider := data.NewStaticProvider(staticData)
	dynamicProvider := data.NewContextProvider(constants.EvalData)
	compositeProvider := data.NewCompositeProvider(staticProvider, dynamicProvider)
	return NewEvaluator(logHandler, role, ldr, compositeProvider, opts...)
}

// NewCompiler creates a Risor compiler for role.
func NewCompiler(role bridge.Role, opts ...compiler.FunctionalOption) (*compiler.Compiler, error) {
	return compiler.New(role, opts...)
}

// NewEvaluator compiles the script from ldr and returns an evaluator ready to run it.
func NewEvaluator(
	logHandler slog.Handler,
	role bridge.Role,
	ldr loader.Loader,
	dataProvider data.Provider,
	opts ...evaluator.FunctionalOption,
) (*evaluator.Evaluator, error) {
	if dataProvider == nil {
		return nil, fmt.Errorf("provider is nil")
	}

	var compilerOpts []compiler.FunctionalOption
	evalOpts := []evaluator.FunctionalOption{evaluator.WithDataProvider(dataProvider)}
	if logHandler != nil {
		compilerOpts = append(compilerOpts, compiler.WithLogHandler(logHandler))
		evalOpts = append(evalOpts, evaluator.WithLogHandler(logHandler))
	}

	c, err := NewCompiler(role, compilerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Risor compiler: %w", err)
	}
	exe, err := c.Compile(ldr)
	if err != nil {
		return nil, err
	}
	return evaluator.New(exe, append(evalOpts, opts...)...)
}
