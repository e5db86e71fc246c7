package data

import (
	"context"
	"errors"
	"fmt"

	"dario.cat/mergo"
	"github.com/robbyt/go-chartbridge/platform/constants"
)

// ContextProvider stores script input in the context under a key.
type ContextProvider struct {
	contextKey constants.ContextKey
}

// NewContextProvider creates a ContextProvider that reads and writes contextKey.
func NewContextProvider(contextKey constants.ContextKey) *ContextProvider {
	return &ContextProvider{contextKey: contextKey}
}

// GetData returns the input stored under the provider's key, or an empty map.
func (p *ContextProvider) GetData(ctx context.Context) (map[string]any, error) {
	if p.contextKey == "" {
		return nil, errors.New("context key is empty")
	}

	value := ctx.Value(p.contextKey)
	if value == nil {
		return make(map[string]any), nil
	}

	d, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid input data type: expected map[string]any, got %T", value)
	}
	return d, nil
}

// AddDataToContext deep-merges the maps into whatever the context already holds, later maps
// winning on conflicts, and returns a derived context. Empty keys are rejected; the other
// entries are still stored.
func (p *ContextProvider) AddDataToContext(
	ctx context.Context,
	data ...map[string]any,
) (context.Context, error) {
	if p.contextKey == "" {
		return ctx, errors.New("context key is empty")
	}

	toStore := make(map[string]any)
	if existing, ok := ctx.Value(p.contextKey).(map[string]any); ok {
		if err := mergo.Merge(&toStore, deepCopy(existing)); err != nil {
			return ctx, fmt.Errorf("copying existing data: %w", err)
		}
	}

	var errz []error
	for _, m := range data {
		clean, err := validKeys(m)
		if err != nil {
			errz = append(errz, err)
		}
		if len(clean) == 0 {
			continue
		}
		if err := mergo.Merge(&toStore, clean, mergo.WithOverride); err != nil {
			errz = append(errz, fmt.Errorf("merging data: %w", err))
		}
	}

	return context.WithValue(ctx, p.contextKey, toStore), errors.Join(errz...)
}

// validKeys copies m, dropping entries with empty keys at any depth.
func validKeys(m map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, nil
	}
	var errz []error
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == "" {
			errz = append(errz, errors.New("empty keys are not allowed"))
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			cleaned, err := validKeys(nested)
			if err != nil {
				errz = append(errz, fmt.Errorf("key %q: %w", k, err))
			}
			v = cleaned
		}
		out[k] = v
	}
	return out, errors.Join(errz...)
}

// deepCopy copies nested maps so merging never writes into a map held by a parent context.
func deepCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = deepCopy(nested)
		}
		out[k] = v
	}
	return out
}
