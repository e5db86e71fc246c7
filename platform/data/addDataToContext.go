package data

import (
	"context"
	"fmt"
	"log/slog"
)

// AddDataToContextHelper is the shared AddDataToContext body of the guest evaluators.
func AddDataToContextHelper(
	ctx context.Context,
	logger *slog.Logger,
	provider Provider,
	d ...map[string]any,
) (context.Context, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if provider == nil {
		logger.WarnContext(ctx, "no data provider available for context preparation")
		return ctx, ErrNoProvider
	}

	enriched, err := provider.AddDataToContext(ctx, d...)
	if err != nil {
		return ctx, fmt.Errorf("failed to prepare context: %w", err)
	}
	return enriched, nil
}
