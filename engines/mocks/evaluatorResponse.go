package mocks

import (
	"github.com/robbyt/go-chartbridge/bridge/marshal"
	"github.com/robbyt/go-chartbridge/platform"
	"github.com/robbyt/go-chartbridge/platform/data"
	"github.com/stretchr/testify/mock"
)

// EvaluatorResponse is a mock implementation of the platform.EvaluatorResponse interface.
type EvaluatorResponse struct {
	mock.Mock
}

var _ platform.EvaluatorResponse = (*EvaluatorResponse)(nil)

// Type returns a mockable Type. A mock set up with a plain value reports that value's type.
func (m *EvaluatorResponse) Type() data.Types {
	val := m.Called().Get(0)
	if t, ok := val.(data.Types); ok {
		return t
	}
	return data.TypeOf(val)
}

// Inspect returns a mockable string.
func (m *EvaluatorResponse) Inspect() string {
	return m.Called().String(0)
}

// Interface returns a mockable value of "any" type, and must be type asserted to the correct type.
func (m *EvaluatorResponse) Interface() any {
	return m.Called().Get(0)
}

// Tagged returns a mockable tagged value. A mock set up with a plain value classifies it.
func (m *EvaluatorResponse) Tagged() marshal.Tagged {
	val := m.Called().Get(0)
	if t, ok := val.(marshal.Tagged); ok {
		return t
	}
	return marshal.Classify(val)
}

// GetScriptExeID returns a mockable execution ID.
func (m *EvaluatorResponse) GetScriptExeID() string {
	return m.Called().String(0)
}

// GetExecTime returns a mockable execution time.
func (m *EvaluatorResponse) GetExecTime() string {
	return m.Called().String(0)
}
