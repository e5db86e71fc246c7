// Package platform defines what every guest engine offers the host: evaluation against a
// fresh Host Api Adapter, and a uniform view of the script result.
package platform

import (
	"context"

	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/platform/data"
)

// EvalOnly runs a compiled chart script once. Every call builds a fresh guest context bound
// to api; nothing but the compiled script is shared between calls.
type EvalOnly interface {
	Eval(ctx context.Context, api bridge.HostAPI) (EvaluatorResponse, error)
}

// Evaluator combines evaluation with preparing the ctx input of the next evaluation.
type Evaluator interface {
	EvalOnly
	data.Setter
}
