package data

import (
	"context"
	"maps"
)

// StaticProvider returns the same input for every evaluation, e.g. chart parameters that are
// known when the evaluator is built.
type StaticProvider struct {
	data map[string]any
}

// NewStaticProvider creates a StaticProvider. A nil map is treated as empty.
func NewStaticProvider(data map[string]any) *StaticProvider {
	if data == nil {
		data = make(map[string]any)
	}
	return &StaticProvider{data: data}
}

// GetData returns a shallow copy of the static input.
func (p *StaticProvider) GetData(_ context.Context) (map[string]any, error) {
	return maps.Clone(p.data), nil
}

// AddDataToContext always fails: static input cannot change at runtime.
func (p *StaticProvider) AddDataToContext(
	ctx context.Context,
	_ ...map[string]any,
) (context.Context, error) {
	return ctx, ErrStaticProviderNoRuntimeUpdates
}
