// Package compiler compiles WASM chart modules with the Extism SDK. Every call operation the
// role may use is registered as a host function; constants reach the guest through the
// Extism config API.
package compiler

import (
	"context"
	"fmt"
	"log/slog"

	extismSDK "github.com/extism/go-sdk"
	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/engines/extism/adapters"
	"github.com/robbyt/go-chartbridge/engines/extism/internal"
	"github.com/robbyt/go-chartbridge/internal/helpers"
	"github.com/robbyt/go-chartbridge/platform/script/loader"
	"github.com/tetratelabs/wazero"
)

// Compiler compiles WASM chart modules for one role.
type Compiler struct {
	role          bridge.Role
	registry      *bridge.Registry
	jsonHelper    *bool
	entryPoint    string
	runtimeConfig wazero.RuntimeConfig
	enableWASI    bool

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a Compiler for role.
func New(role bridge.Role, opts ...FunctionalOption) (*Compiler, error) {
	c := &Compiler{role: role, entryPoint: DefaultEntryPoint}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}
	if c.registry == nil {
		c.registry = bridge.DefaultRegistry()
	}
	if c.runtimeConfig == nil {
		c.runtimeConfig = wazero.NewRuntimeConfig()
	}
	if _, err := c.registry.Capabilities(role); err != nil {
		return nil, err
	}
	c.logHandler, c.logger = helpers.SetupLogger(c.logHandler, "extism", "Compiler")
	return c, nil
}

func (c *Compiler) String() string {
	return fmt.Sprintf("extism.Compiler{Role: %s, EntryPoint: %s}", c.role, c.entryPoint)
}

// Compile loads the module bytes, compiles them and checks the entry point is exported.
func (c *Compiler) Compile(l loader.Loader) (*Executable, error) {
	logger := c.logger.WithGroup("Compile")
	if l == nil {
		return nil, ErrContentNil
	}
	src, err := loader.Load(l)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContentNil, err)
	}
	if len(src.Body) == 0 {
		return nil, ErrContentNil
	}

	caps, err := c.registry.Capabilities(c.role)
	if err != nil {
		return nil, err
	}
	jsonHelper := caps.JSONHelper
	if c.jsonHelper != nil {
		jsonHelper = *c.jsonHelper
	}
	ops, err := c.registry.ForRole(c.role)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	plugin, err := c.compile(ctx, src.Body, ops)
	if err != nil {
		logger.Warn("compile failed", "source", src.Name(), "error", err)
		return nil, err
	}
	if err := c.validate(ctx, plugin); err != nil {
		if closeErr := plugin.Close(ctx); closeErr != nil {
			logger.Warn("failed to close plugin", "error", closeErr)
		}
		return nil, err
	}
	logger.Debug("compiled", "source", src.Name(), "checksum", helpers.ShortChecksum(src.Checksum))

	return NewExecutable(src, plugin, c.entryPoint, c.role, c.registry, jsonHelper), nil
}

func (c *Compiler) compile(
	ctx context.Context,
	wasmBytes []byte,
	ops []bridge.Operation,
) (adapters.CompiledPlugin, error) {
	manifest := extismSDK.Manifest{
		Wasm:   []extismSDK.Wasm{extismSDK.WasmData{Data: wasmBytes}},
		Config: internal.StaticConfig(ops),
	}
	config := extismSDK.PluginConfig{
		EnableWasi:    c.enableWASI,
		RuntimeConfig: c.runtimeConfig,
	}

	plugin, err := extismSDK.NewCompiledPlugin(ctx, manifest, config, internal.HostFunctions(ops))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	return adapters.NewCompiledPluginAdapter(plugin), nil
}

func (c *Compiler) validate(ctx context.Context, plugin adapters.CompiledPlugin) error {
	instance, err := plugin.Instance(ctx, adapters.NewPluginInstanceConfig())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	defer func() {
		if err := instance.Close(ctx); err != nil {
			c.logger.Warn("failed to close validation instance", "error", err)
		}
	}()
	if !instance.FunctionExists(c.entryPoint) {
		return fmt.Errorf("%w: function %q not found", ErrValidationFailed, c.entryPoint)
	}
	return nil
}
