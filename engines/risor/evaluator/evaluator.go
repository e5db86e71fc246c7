// Package evaluator runs compiled chart scripts on the Risor VM. Each evaluation gets its own
// guest context: a fresh bridge for the adapter passed in and a fresh VM with no default
// globals.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	risorLib "github.com/risor-io/risor"
	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/engines/risor/compiler"
	"github.com/robbyt/go-chartbridge/engines/risor/internal"
	"github.com/robbyt/go-chartbridge/internal/helpers"
	"github.com/robbyt/go-chartbridge/platform"
	"github.com/robbyt/go-chartbridge/platform/constants"
	"github.com/robbyt/go-chartbridge/platform/data"
)

// Evaluator evaluates a compiled chart script on the Risor engine. The script result is the
// value of its last expression.
type Evaluator struct {
	// ctxKey is the variable name used to access input data inside the engine (ctx)
	ctxKey string

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
	e := &Evaluator{
		ctxKey: constants.Ctx,
		exe:    exe,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}
	if e.provider == nil {
		e.provider = data.NewContextProvider(constants.EvalData)
	}
	e.logHandler, e.logger = helpers.SetupLogger(e.logHandler, "risor", "Evaluator")
	return e, nil
}

func (e *Evaluator) String() string {
	return "risor.Evaluator"
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

// loadInputData retrieves the ctx input from the data provider.
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

// Eval runs the script once against api.
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
	ctxOptions, err := internal.ConvertToRisorOptions(e.ctxKey, input)
	if err != nil {
		return nil, fmt.Errorf("failed to convert input data: %w", err)
	}

	options := append([]risorLib.Option{
		risorLib.WithoutDefaultGlobals(),
		risorLib.WithGlobals(guestGlobals(b, logger)),
	}, ctxOptions...)

	obj, err := risorLib.EvalCode(ctx, e.exe.GetByteCode(), options...)
	if err != nil {
		logger.WarnContext(ctx, "script failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrExecution, err)
	}

	value, err := internal.ConvertRisorValueToInterface(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResult, err)
	}
	elapsed := time.Since(start)
	logger.DebugContext(ctx, "exec complete", "elapsed", elapsed)
	return platform.NewResponse(value, exeID, elapsed), nil
}

// AddDataToContext stores ctx input for the next evaluation.
func (e *Evaluator) AddDataToContext(ctx context.Context, d ...map[string]any) (context.Context, error) {
	return data.AddDataToContextHelper(ctx, e.logger.WithGroup("AddDataToContext"), e.provider, d...)
}
