// Package chartbridge compiles chart scripts for one of the supported guest engines and
// returns an evaluator that runs them against a Host Api Adapter.
package chartbridge

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/config"
	extismCompiler "github.com/robbyt/go-chartbridge/engines/extism/compiler"
	extismEvaluator "github.com/robbyt/go-chartbridge/engines/extism/evaluator"
	risorCompiler "github.com/robbyt/go-chartbridge/engines/risor/compiler"
	risorEvaluator "github.com/robbyt/go-chartbridge/engines/risor/evaluator"
	starlarkCompiler "github.com/robbyt/go-chartbridge/engines/starlark/compiler"
	starlarkEvaluator "github.com/robbyt/go-chartbridge/engines/starlark/evaluator"
	"github.com/robbyt/go-chartbridge/internal/helpers"
	"github.com/robbyt/go-chartbridge/platform"
	"github.com/robbyt/go-chartbridge/platform/constants"
	"github.com/robbyt/go-chartbridge/platform/data"
	"github.com/robbyt/go-chartbridge/platform/script/loader"
)

// ErrUnknownEngine is returned for an engine name New does not know.
var ErrUnknownEngine = errors.New("unknown engine")

// Option configures New.
type Option func(*options) error

type options struct {
	logHandler slog.Handler
	observer   bridge.Observer
	staticData map[string]any
}

// WithLogHandler sets the handler shared by the compiler, the evaluator and every bridge.
func WithLogHandler(handler slog.Handler) Option {
	return func(o *options) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		o.logHandler = handler
		return nil
	}
}

// WithObserver reports every bridge call, for example to internal/metrics.
func WithObserver(observer bridge.Observer) Option {
	return func(o *options) error {
		if observer == nil {
			return fmt.Errorf("observer cannot be nil")
		}
		o.observer = observer
		return nil
	}
}

// WithStaticData seeds the ctx input of every evaluation. Data added with
// AddDataToContext takes precedence.
func WithStaticData(d map[string]any) Option {
	return func(o *options) error {
		o.staticData = d
		return nil
	}
}

func (o *options) provider() data.Provider {
	ctxProvider := data.NewContextProvider(constants.EvalData)
	if len(o.staticData) == 0 {
		return ctxProvider
	}
	return data.NewCompositeProvider(data.NewStaticProvider(o.staticData), ctxProvider)
}

// New compiles the script from ldr with the engine, role and limits in cfg.
func New(cfg *config.Config, ldr loader.Loader, opts ...Option) (platform.Evaluator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}
	o.logHandler, _ = helpers.SetupLogger(o.logHandler, "chartbridge", "")

	role, err := cfg.ParsedRole()
	if err != nil {
		return nil, err
	}

	switch cfg.Engine {
	case config.EngineStarlark:
		return newStarlark(cfg, role, ldr, o)
	case config.EngineRisor:
		return newRisor(cfg, role, ldr, o)
	case config.EngineExtism:
		return newExtism(cfg, role, ldr, o)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}

func newStarlark(
	cfg *config.Config,
	role bridge.Role,
	ldr loader.Loader,
	o *options,
) (*starlarkEvaluator.Evaluator, error) {
	compilerOpts := []starlarkCompiler.FunctionalOption{starlarkCompiler.WithLogHandler(o.logHandler)}
	if enabled, ok := cfg.JSONHelperOverride(); ok {
		compilerOpts = append(compilerOpts, starlarkCompiler.WithJSONHelper(enabled))
	}
	c, err := starlarkCompiler.New(role, compilerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Starlark compiler: %w", err)
	}
	exe, err := c.Compile(ldr)
	if err != nil {
		return nil, err
	}

	evalOpts := []starlarkEvaluator.FunctionalOption{
		starlarkEvaluator.WithLogHandler(o.logHandler),
		starlarkEvaluator.WithDataProvider(o.provider()),
		starlarkEvaluator.WithMaxExecutionSteps(cfg.Limits.MaxSteps),
		starlarkEvaluator.WithTimeout(cfg.Limits.Timeout),
	}
	if o.observer != nil {
		evalOpts = append(evalOpts, starlarkEvaluator.WithObserver(o.observer))
	}
	return starlarkEvaluator.New(exe, evalOpts...)
}

func newRisor(
	cfg *config.Config,
	role bridge.Role,
	ldr loader.Loader,
	o *options,
) (*risorEvaluator.Evaluator, error) {
	compilerOpts := []risorCompiler.FunctionalOption{risorCompiler.WithLogHandler(o.logHandler)}
	if enabled, ok := cfg.JSONHelperOverride(); ok {
		compilerOpts = append(compilerOpts, risorCompiler.WithJSONHelper(enabled))
	}
	c, err := risorCompiler.New(role, compilerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Risor compiler: %w", err)
	}
	exe, err := c.Compile(ldr)
	if err != nil {
		return nil, err
	}

	evalOpts := []risorEvaluator.FunctionalOption{
		risorEvaluator.WithLogHandler(o.logHandler),
		risorEvaluator.WithDataProvider(o.provider()),
		risorEvaluator.WithTimeout(cfg.Limits.Timeout),
	}
	if o.observer != nil {
		evalOpts = append(evalOpts, risorEvaluator.WithObserver(o.observer))
	}
	return risorEvaluator.New(exe, evalOpts...)
}

func newExtism(
	cfg *config.Config,
	role bridge.Role,
	ldr loader.Loader,
	o *options,
) (*extismEvaluator.Evaluator, error) {
	compilerOpts := []extismCompiler.FunctionalOption{
		extismCompiler.WithLogHandler(o.logHandler),
		extismCompiler.WithEntryPoint(cfg.Extism.EntryPoint),
		extismCompiler.WithWASI(cfg.Extism.WASI),
	}
	if enabled, ok := cfg.JSONHelperOverride(); ok {
		compilerOpts = append(compilerOpts, extismCompiler.WithJSONHelper(enabled))
	}
	c, err := extismCompiler.New(role, compilerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Extism compiler: %w", err)
	}
	exe, err := c.Compile(ldr)
	if err != nil {
		return nil, err
	}

	evalOpts := []extismEvaluator.FunctionalOption{
		extismEvaluator.WithLogHandler(o.logHandler),
		extismEvaluator.WithDataProvider(o.provider()),
		extismEvaluator.WithTimeout(cfg.Limits.Timeout),
	}
	if o.observer != nil {
		evalOpts = append(evalOpts, extismEvaluator.WithObserver(o.observer))
	}
	return extismEvaluator.New(exe, evalOpts...)
}

// FromStarlarkString compiles a Starlark chart script with the default configuration.
func FromStarlarkString(role bridge.Role, content string, opts ...Option) (platform.Evaluator, error) {
	return fromString(config.EngineStarlark, role, content, opts...)
}

// FromRisorString compiles a Risor chart script with the default configuration.
func FromRisorString(role bridge.Role, content string, opts ...Option) (platform.Evaluator, error) {
	return fromString(config.EngineRisor, role, content, opts...)
}

// FromExtismFile compiles a WASM chart module from disk. The module must export entryPoint.
func FromExtismFile(role bridge.Role, path, entryPoint string, opts ...Option) (platform.Evaluator, error) {
	ldr, err := loader.NewFromDisk(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk loader: %w", err)
	}
	cfg := config.Default()
	cfg.Engine = config.EngineExtism
	cfg.Role = role.String()
	cfg.Extism.EntryPoint = entryPoint
	return New(cfg, ldr, opts...)
}

func fromString(engine string, role bridge.Role, content string, opts ...Option) (platform.Evaluator, error) {
	ldr, err := loader.NewFromString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to create string loader: %w", err)
	}
	cfg := config.Default()
	cfg.Engine = engine
	cfg.Role = role.String()
	return New(cfg, ldr, opts...)
}
