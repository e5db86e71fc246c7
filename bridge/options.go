package bridge

import (
	"fmt"
	"log/slog"
)

// Option configures a Bridge.
type Option func(*config) error

type config struct {
	registry   *Registry
	handler    slog.Handler
	observer   Observer
	jsonHelper *bool
	required   []string
}

// WithRegistry replaces the default capability table.
func WithRegistry(r *Registry) Option {
	return func(c *config) error {
		if r == nil {
			return fmt.Errorf("registry cannot be nil")
		}
		c.registry = r
		return nil
	}
}

// WithLogHandler sets the slog handler used by the bridge.
func WithLogHandler(h slog.Handler) Option {
	return func(c *config) error {
		if h == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		c.handler = h
		return nil
	}
}

// WithObserver registers a call observer, such as the prometheus collector in
// internal/metrics.
func WithObserver(o Observer) Option {
	return func(c *config) error {
		if o == nil {
			return fmt.Errorf("observer cannot be nil")
		}
		c.observer = o
		return nil
	}
}

// WithJSONHelper overrides the role's JSON helper flag from the registry.
func WithJSONHelper(enabled bool) Option {
	return func(c *config) error {
		c.jsonHelper = &enabled
		return nil
	}
}

// WithRequired makes New fail unless every named operation ends up installed. Use it when
// the host knows a script needs a capability the role might not grant.
func WithRequired(ops ...string) Option {
	return func(c *config) error {
		c.required = append(c.required, ops...)
		return nil
	}
}
