// Package starlark runs chart scripts written in Starlark. This is the primary guest: scripts
// see the ChartEditor facade built by the shared guest prelude and nothing else of the host.
package starlark

import (
	"fmt"
	"log/slog"

	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/engines/starlark/compiler"
	"github.com/robbyt/go-chartbridge/engines/starlark/evaluator"
	"github.com/robbyt/go-chartbridge/platform/constants"
	"github.com/robbyt/go-chartbridge/platform/data"
	"github.com/robbyt/go-chartbridge/platform/script/loader"
)

// FromStarlarkLoader creates an evaluator whose ctx input is added per evaluation with
// AddDataToContext.
func FromStarlarkLoader(
	logHandler slog.Handler,
	role bridge.Role,
	ldr loader.Loader,
	opts ...evaluator.FunctionalOption,
) (*evaluator.Evaluator, error) {
	return NewEvaluator(logHandler, role, ldr, data.NewContextProvider(constants.EvalData), opts...)
}

// FromStarlarkLoaderWithData creates an evaluator whose ctx input starts from staticData;
// values added with AddDataToContext take precedence.
func FromStarlarkLoaderWithData(
	logHandler slog.Handler,
	role bridge.Role,
	ldr loader.Loader,
	staticData map[string]any,
	opts ...evaluator.FunctionalOption,
) (*evaluator.Evaluator, error) {
	provider := data.NewCompositeProvider(
		data.NewStaticProvider(staticData),
		data.NewContextProvider(constants.EvalData),
	)
	return NewEvaluator(logHandler, role, ldr, provider, opts...)
}

// NewCompiler creates a Starlark compiler for role.
func NewCompiler(role bridge.Role, opts ...compiler.FunctionalOption) (*compiler.Compiler, error) {
	return compiler.New(role, opts...)
}

// NewEvaluator compiles the script from ldr and returns an evaluator ready to run it.
func NewEvaluator(
	logHandler slog.Handler,
	role bridge.Role,
	ldr loader.Loader,
	provider data.Provider,
	opts ...evaluator.FunctionalOption,
) (*evaluator.Evaluator, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is nil")
	}

	var compilerOpts []compiler.FunctionalOption
	evalOpts := []evaluator.FunctionalOption{evaluator.WithDataProvider(provider)}
	if logHandler != nil {
		compilerOpts = append(compilerOpts, compiler.WithLogHandler(logHandler))
		evalOpts = append(evalOpts, evaluator.WithLogHandler(logHandler))
	}

	c, err := NewCompiler(role, compilerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Starlark compiler: %w", err)
	}
	exe, err := c.Compile(ldr)
	if err != nil {
		return nil, err
	}
	return evaluator.New(exe, append(evalOpts, opts...)...)
}
