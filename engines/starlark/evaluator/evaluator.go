// Package evaluator runs compiled chart scripts. Each evaluation gets its own guest context:
// a fresh bridge for the adapter passed in, a fresh prelude run and a fresh thread.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/engines/starlark/compiler"
	"github.com/robbyt/go-chartbridge/engines/starlark/internal"
	"github.com/robbyt/go-chartbridge/internal/helpers"
	"github.com/robbyt/go-chartbridge/platform"
	"github.com/robbyt/go-chartbridge/platform/constants"
	"github.com/robbyt/go-chartbridge/platform/data"
	starlarkLib "go.starlark.net/starlark"
)

// Evaluator evaluates a compiled chart script on the Starlark engine.
type Evaluator struct {
	exe      *compiler.Executable
	provider data.Provider
	observer bridge.Observer
	maxSteps uint64
	timeout  time.Duration
	required []string

	logHandler slog.Handler
	logger     *slog.Logger
}

var _ platform.Evaluator = (*Evaluator)(nil)

// New creates an Evaluator for exe. Script input comes from a ContextProvider on
// constants.EvalData unless WithDataProvider says otherwise.
func New(exe *compiler.Executable, opts ...FunctionalOption) (*Evaluator, error) {
	if exe == nil {
		return nil, ErrExecutable
	}
	e := &Evaluator{
		exe:      exe,
		maxSteps: DefaultMaxExecutionSteps,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}
	if e.provider == nil {
		e.provider = data.NewContextProvider(constants.EvalData)
	}
	e.logHandler, e.logger = helpers.SetupLogger(e.logHandler, "starlark", "Evaluator")
	return e, nil
}

func (e *Evaluator) String() string {
	return "starlark.Evaluator"
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

func (e *Evaluator) loadInputData(ctx context.Context) (map[string]any, error) {
	logger := e.logger.WithGroup("loadInputData")
	inputData, err := e.provider.GetData(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get input data from provider", "error", err)
		return nil, err
	}
	logger.DebugContext(ctx, "input data loaded from provider", "keys", len(inputData))
	return inputData, nil
}

// Eval runs the script once against api. Host failures raised inside the script are returned
// as errors that unwrap to *bridge.CallError.
func (e *Evaluator) Eval(ctx context.Context, api bridge.HostAPI) (platform.EvaluatorResponse, error) {
	exeID := uuid.NewString()
	logger := e.logger.WithGroup("Eval").With("exeID", exeID, "role", e.exe.Role())
	start := time.Now()

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
	globals, err := internal.ConvertToStarlarkFormat(input)
	if err != nil {
		return nil, fmt.Errorf("failed to convert input data: %w", err)
	}

	thread := e.newThread(ctx, exeID, logger)
	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})
	defer stop()

	exports, err := runPrelude(thread, e.exe.Prelude(), b)
	if err != nil {
		return nil, err
	}
	predeclared := internal.StarlarkModules(e.exe.JSONHelper())
	maps.Copy(predeclared, exports)
	maps.Copy(predeclared, globals)

	final, err := e.exe.GetByteCode().Init(thread, predeclared)
	if err != nil {
		logger.WarnContext(ctx, "script failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	value, err := e.result(thread, final)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	logger.DebugContext(ctx, "exec complete", "elapsed", elapsed, "steps", thread.ExecutionSteps())
	return platform.NewResponse(value, exeID, elapsed), nil
}

func (e *Evaluator) newThread(
	ctx context.Context,
	exeID string,
	logger *slog.Logger,
) *starlarkLib.Thread {
	thread := &starlarkLib.Thread{
		Name: exeID,
		Print: func(_ *starlarkLib.Thread, msg string) {
			logger.InfoContext(ctx, msg, "source", "guest")
		},
	}
	thread.SetLocal(contextLocal, ctx)
	if e.maxSteps > 0 {
		thread.SetMaxExecutionSteps(e.maxSteps)
	}
	return thread
}

// result reads the result global, calling it first when it is callable.
func (e *Evaluator) result(thread *starlarkLib.Thread, globals starlarkLib.StringDict) (any, error) {
	v, ok := globals[constants.Result]
	if !ok {
		return nil, nil
	}
	if fn, ok := v.(starlarkLib.Callable); ok {
		out, err := starlarkLib.Call(thread, fn, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: calling %s: %w", ErrExecution, constants.Result, err)
		}
		v = out
	}
	out, err := internal.ConvertStarlarkValueToInterface(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResult, err)
	}
	return out, nil
}

// AddDataToContext stores ctx input for the next evaluation.
func (e *Evaluator) AddDataToContext(ctx context.Context, d ...map[string]any) (context.Context, error) {
	return data.AddDataToContextHelper(ctx, e.logger.WithGroup("AddDataToContext"), e.provider, d...)
}
