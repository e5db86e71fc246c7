package evaluator

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/platform/data"
)

// DefaultMaxExecutionSteps bounds a single evaluation. Zero disables the limit.
const DefaultMaxExecutionSteps uint64 = 10_000_000

// FunctionalOption configures an Evaluator.
type FunctionalOption func(*Evaluator) error

// WithLogHandler sets the log handler shared by the evaluator and the bridges it builds.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(e *Evaluator) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		e.logHandler = handler
		return nil
	}
}

// WithObserver reports every bridge call.
func WithObserver(o bridge.Observer) FunctionalOption {
	return func(e *Evaluator) error {
		if o == nil {
			return fmt.Errorf("observer cannot be nil")
		}
		e.observer = o
		return nil
	}
}

// WithDataProvider sets where the ctx global comes from.
func WithDataProvider(p data.Provider) FunctionalOption {
	return func(e *Evaluator) error {
		if p == nil {
			return fmt.Errorf("data provider cannot be nil")
		}
		e.provider = p
		return nil
	}
}

// WithMaxExecutionSteps bounds the Starlark steps of one evaluation.
func WithMaxExecutionSteps(steps uint64) FunctionalOption {
	return func(e *Evaluator) error {
		e.maxSteps = steps
		return nil
	}
}

// WithTimeout bounds the wall time of one evaluation on top of the step budget. Zero
// disables it.
func WithTimeout(d time.Duration) FunctionalOption {
	return func(e *Evaluator) error {
		if d < 0 {
			return fmt.Errorf("timeout cannot be negative")
		}
		e.timeout = d
		return nil
	}
}

// WithRequired fails evaluation up front when the adapter lacks one of the operations.
func WithRequired(ops ...string) FunctionalOption {
	return func(e *Evaluator) error {
		e.required = append(e.required, ops...)
		return nil
	}
}
