// Package evaluator runs compiled WASM chart modules. Each evaluation gets a fresh plugin
// instance and a fresh bridge; host functions reach that bridge through the call context.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/engines/extism/adapters"
	"github.com/robbyt/go-chartbridge/engines/extism/compiler"
	"github.com/robbyt/go-chartbridge/engines/extism/internal"
	"github.com/robbyt/go-chartbridge/internal/helpers"
	"github.com/robbyt/go-chartbridge/platform"
	"github.com/robbyt/go-chartbridge/platform/constants"
	"github.com/robbyt/go-chartbridge/platform/data"
)

// Evaluator executes compiled WASM modules with provided runtime data
type Evaluator struct {
	exe      *compiler.Executable
	provider data.Provider
	observer bridge.Observer
	timeout  time.Duration
	required []string

	logHandler slog.Handler
	logger     *slog.Logger
}

var _ platform.Evaluator = (*Evaluator)(nil)

// New creates an Evaluator for exe.
func New(exe *compiler.Executable, opts ...FunctionalOption) (*Evaluator, error) {
	if exe == nil {
		return nil, ErrExecutable
	}
	e := &Evaluator{exe: exe}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}
	if e.provider == nil {
		e.provider = data.NewContextProvider(constants.EvalData)
	}
	e.logHandler, e.logger = helpers.SetupLogger(e.logHandler, "extism", "Evaluator")
	return e, nil
}

func (e *Evaluator) String() string {
	return "extism.Evaluator"
}

func (e *Evaluator) bridgeOptions() []bridge.Option {
	opts := []bridge.Option{
		bridge.WithRegistry(e.exe.Registry()),
		bridge.WithJSONHelper(e.exe.JSONHelper()),
		bridge.WithLogHandler(e.logHandler),
	}
	if e.observer != nil {
		opts = append(opts, bridge.WithObserver(e.observer))
	}
	if len(e.required) > 0 {
		opts = append(opts, bridge.WithRequired(e.required...))
	}
	return opts
}

// loadInputData retrieves input data using the data provider.
func (e *Evaluator) loadInputData(ctx context.Context) (map[string]any, error) {
	logger := e.logger.WithGroup("loadInputData")
	inputData, err := e.provider.GetData(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get input data from provider", "error", err)
		return nil, err
	}
	if len(inputData) == 0 {
		logger.DebugContext(ctx, "empty input data returned from provider")
	}
	return inputData, nil
}

// execHelper calls the entry point and decodes its output.
func execHelper(
	ctx context.Context,
	instance adapters.PluginInstance,
	entryPoint string,
	inputJSON []byte,
) (any, error) {
	exit, output, err := instance.CallWithContext(ctx, entryPoint, inputJSON)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("execution cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("execution failed: %w", err)
	}
	if exit != 0 {
		return nil, fmt.Errorf("%w: %d", ErrExitCode, exit)
	}
	return internal.ConvertFromExtismOutput(output), nil
}

// Eval runs the module entry point once against api. The entry point receives the ctx input
// as JSON; its output is the result.
func (e *Evaluator) Eval(ctx context.Context, api bridge.HostAPI) (platform.EvaluatorResponse, error) {
	exeID := uuid.NewString()
	logger := e.logger.WithGroup("Eval").With("exeID", exeID, "role", e.exe.Role())
	start := time.Now()

	plugin := e.exe.GetExtismByteCode()
	if plugin == nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutable, compiler.ErrExecutableClosed)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	b, err := bridge.New(e.exe.Role(), api, e.bridgeOptions()...)
	if err != nil {
		return nil, fmt.Errorf("building bridge: %w", err)
	}

	input, err := e.loadInputData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get input data: %w", err)
	}
	inputJSON, err := internal.ConvertToExtismFormat(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input data: %w", err)
	}

	instance, err := plugin.Instance(ctx, adapters.NewPluginInstanceConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create plugin instance: %w", err)
	}
	defer func() {
		if err := instance.Close(ctx); err != nil {
			logger.Warn("failed to close Extism plugin instance", "error", err)
		}
	}()
	instance.SetConfig(internal.InstanceConfig(b))

	value, err := execHelper(internal.WithBridge(ctx, b), instance, e.exe.GetEntryPoint(), inputJSON)
	if err != nil {
		logger.WarnContext(ctx, "module failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	elapsed := time.Since(start)
	logger.DebugContext(ctx, "exec complete", "elapsed", elapsed)
	return platform.NewResponse(value, exeID, elapsed), nil
}

// AddDataToContext stores ctx input for the next evaluation.
func (e *Evaluator) AddDataToContext(ctx context.Context, d ...map[string]any) (context.Context, error) {
	return data.AddDataToContextHelper(ctx, e.logger.WithGroup("AddDataToContext"), e.provider, d...)
}

// Close releases the compiled module. Evaluations after Close fail with ErrExecutable.
func (e *Evaluator) Close(ctx context.Context) error {
	return e.exe.Close(ctx)
}
