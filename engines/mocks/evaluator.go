package mocks

import (
	"context"

	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/platform"
	"github.com/stretchr/testify/mock"
)

// Evaluator is a mock implementation of platform.Evaluator for testing purposes.
type Evaluator struct {
	mock.Mock
}

var _ platform.Evaluator = (*Evaluator)(nil)

// Eval is a mock implementation of the Eval method.
func (m *Evaluator) Eval(ctx context.Context, api bridge.HostAPI) (platform.EvaluatorResponse, error) {
	args := m.Called(ctx, api)
	resp, _ := args.Get(0).(platform.EvaluatorResponse)
	return resp, args.Error(1)
}

// AddDataToContext is a mock implementation of the AddDataToContext method.
func (m *Evaluator) AddDataToContext(ctx context.Context, d ...map[string]any) (context.Context, error) {
	args := m.Called(ctx, d)
	out, _ := args.Get(0).(context.Context)
	return out, args.Error(1)
}
