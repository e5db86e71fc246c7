package data

import (
	"context"
	"errors"
	"fmt"

	"dario.cat/mergo"
)

// CompositeProvider chains providers. Reads deep-merge every provider's data with later
// providers winning; writes go to every provider that accepts them.
type CompositeProvider struct {
	providers []Provider
}

// NewCompositeProvider creates a CompositeProvider. Nil entries are skipped.
func NewCompositeProvider(providers ...Provider) *CompositeProvider {
	return &CompositeProvider{providers: providers}
}

// GetData merges the data of all providers in order and stops at the first failure.
func (p *CompositeProvider) GetData(ctx context.Context) (map[string]any, error) {
	result := make(map[string]any)
	for i, provider := range p.providers {
		if provider == nil {
			continue
		}
		d, err := provider.GetData(ctx)
		if err != nil {
			return nil, fmt.Errorf("error from provider %d: %w", i, err)
		}
		if err := mergo.Merge(&result, deepCopy(d), mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging provider %d: %w", i, err)
		}
	}
	return result, nil
}

// AddDataToContext hands the data to every provider. Static providers are expected to refuse
// and only matter when nothing else is in the chain. The call fails when no writable
// provider accepted the data.
func (p *CompositeProvider) AddDataToContext(
	ctx context.Context,
	data ...map[string]any,
) (context.Context, error) {
	out := ctx
	var errs, staticErrs []error
	writable, accepted := 0, 0

	for i, provider := range p.providers {
		if provider == nil {
			continue
		}
		next, err := provider.AddDataToContext(out, data...)
		if errors.Is(err, ErrStaticProviderNoRuntimeUpdates) {
			staticErrs = append(staticErrs, fmt.Errorf("error from provider %d: %w", i, err))
			continue
		}
		writable++
		if err != nil {
			errs = append(errs, fmt.Errorf("error from provider %d: %w", i, err))
			continue
		}
		out = next
		accepted++
	}

	switch {
	case writable == 0 && len(staticErrs) > 0:
		return ctx, errors.Join(staticErrs...)
	case writable > 0 && accepted == 0:
		return ctx, errors.Join(errs...)
	}
	return out, nil
}
