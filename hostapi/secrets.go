package hostapi

import (
	"context"
	"maps"

	"github.com/robbyt/go-chartbridge/bridge"
)

// SecretsEditor is a ChartEditor that also hands secrets to scripts.
type SecretsEditor struct {
	*ChartEditor
	secrets map[string]string
}

var _ bridge.SecretsProvider = (*SecretsEditor)(nil)

// WithSecrets adds getSecrets to e.
func WithSecrets(e *ChartEditor, secrets map[string]string) *SecretsEditor {
	return &SecretsEditor{ChartEditor: e, secrets: secrets}
}

func (s *SecretsEditor) GetSecrets(_ context.Context) (map[string]string, error) {
	if s.secrets == nil {
		return map[string]string{}, nil
	}
	return maps.Clone(s.secrets), nil
}
