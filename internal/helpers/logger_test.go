package helpers

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	t.Parallel()

	t.Run("nil handler falls back to default", func(t *testing.T) {
		handler, logger := SetupLogger(nil, "starlark", "Evaluator")
		require.NotNil(t, handler)
		require.NotNil(t, logger)
	})

	t.Run("custom handler is kept and grouped", func(t *testing.T) {
		var buf bytes.Buffer
		custom := slog.NewTextHandler(&buf, nil)

		handler, logger := SetupLogger(custom, "bridge", "Installer")
		assert.Equal(t, custom, handler)

		logger.Info("bound", "op", "getTranslation")
		assert.Contains(t, buf.String(), "Installer.op=getTranslation")
	})

	t.Run("empty group name", func(t *testing.T) {
		var buf bytes.Buffer
		_, logger := SetupLogger(slog.NewTextHandler(&buf, nil), "bridge", "")

		logger.Info("bound", "op", "userLang")
		assert.Contains(t, buf.String(), "op=userLang")
		assert.NotContains(t, buf.String(), ".op=")
	})
}
