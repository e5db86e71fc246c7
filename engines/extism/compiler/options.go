package compiler

import (
	"fmt"
	"log/slog"

	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/tetratelabs/wazero"
)

// DefaultEntryPoint is the export called when no other is configured.
const DefaultEntryPoint = "run"

// FunctionalOption configures a Compiler.
type FunctionalOption func(*Compiler) error

// WithEntryPoint sets the exported function each evaluation calls.
func WithEntryPoint(entryPoint string) FunctionalOption {
	return func(c *Compiler) error {
		if entryPoint == "" {
			return fmt.Errorf("entry point cannot be empty")
		}
		c.entryPoint = entryPoint
		return nil
	}
}

// WithRegistry replaces the default capability registry.
func WithRegistry(r *bridge.Registry) FunctionalOption {
	return func(c *Compiler) error {
		if r == nil {
			return fmt.Errorf("registry cannot be nil")
		}
		c.registry = r
		return nil
	}
}

// WithJSONHelper overrides the JSON helper flag reported to guests.
func WithJSONHelper(enabled bool) FunctionalOption {
	return func(c *Compiler) error {
		c.jsonHelper = &enabled
		return nil
	}
}

// WithWASI exposes the WASI preview 1 imports to the module. Modules built with the standard Go
// toolchain (GOOS=wasip1) need them; no directories or environment are ever mounted.
func WithWASI(enabled bool) FunctionalOption {
	return func(c *Compiler) error {
		c.enableWASI = enabled
		return nil
	}
}

// WithRuntimeConfig sets the wazero runtime configuration, for example to bound memory.
func WithRuntimeConfig(cfg wazero.RuntimeConfig) FunctionalOption {
	return func(c *Compiler) error {
		if cfg == nil {
			return fmt.Errorf("runtime config cannot be nil")
		}
		c.runtimeConfig = cfg
		return nil
	}
}

// WithLogHandler sets the log handler for the compiler.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(c *Compiler) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		c.logHandler = handler
		return nil
	}
}

// WithLogger sets a logger whose handler is used by the compiler.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(c *Compiler) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logHandler = logger.Handler()
		return nil
	}
}
