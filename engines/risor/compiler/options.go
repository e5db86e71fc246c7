package compiler

import (
	"fmt"
	"log/slog"

	"github.com/robbyt/go-chartbridge/bridge"
)

// FunctionalOption configures a Compiler.
type FunctionalOption func(*Compiler) error

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

// WithJSONHelper overrides whether scripts get the JSON helper and the json module.
func WithJSONHelper(enabled bool) FunctionalOption {
	return func(c *Compiler) error {
		c.jsonHelper = &enabled
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
