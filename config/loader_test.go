package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv() []string { return nil }

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chartbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(WithEnviron(noEnv))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	role, err := cfg.ParsedRole()
	require.NoError(t, err)
	assert.Equal(t, bridge.RoleJavaScript, role)
	_, forced := cfg.JSONHelperOverride()
	assert.False(t, forced)
}

func TestLoadLayers(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
engine: risor
role: UI
limits:
  timeout: 1d
markdown:
  cache_size: 16
`)
	environ := func() []string {
		return []string{
			"CHARTBRIDGE_ROLE=Urls",
			"CHARTBRIDGE_LIMITS_MAX_STEPS=500",
			"CHARTBRIDGE_JSON_HELPER=off",
			"CHARTBRIDGE_LOG_JSON=true",
			"CHARTBRIDGE_EXTISM_WASI=true",
			"OTHER_ROLE=Params",
		}
	}

	cfg, err := Load(WithFile(path), WithEnviron(environ))
	require.NoError(t, err)

	assert.Equal(t, EngineRisor, cfg.Engine, "from file")
	assert.Equal(t, "Urls", cfg.Role, "env wins over file")
	assert.Equal(t, 24*time.Hour, cfg.Limits.Timeout)
	assert.Equal(t, uint64(500), cfg.Limits.MaxSteps)
	assert.Equal(t, 16, cfg.Markdown.CacheSize)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "info", cfg.Log.Level, "untouched default")
	assert.True(t, cfg.Extism.WASI)
	assert.Equal(t, "run", cfg.Extism.EntryPoint)

	enabled, forced := cfg.JSONHelperOverride()
	assert.True(t, forced)
	assert.False(t, enabled)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		environ []string
		want    error
	}{
		{name: "unknown engine", environ: []string{"CHARTBRIDGE_ENGINE=lua"}, want: ErrInvalidConfig},
		{name: "unknown role", file: "role: Widget\n", want: ErrInvalidConfig},
		{name: "bad json helper", environ: []string{"CHARTBRIDGE_JSON_HELPER=maybe"}, want: ErrInvalidConfig},
		{name: "bad duration", environ: []string{"CHARTBRIDGE_LIMITS_TIMEOUT=soon"}, want: ErrInvalidConfig},
		{name: "zero cache", file: "markdown:\n  cache_size: 0\n", want: ErrInvalidConfig},
		{name: "bad yaml", file: "engine: [\n", want: ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := []Option{WithEnviron(func() []string { return tt.environ })}
			if tt.file != "" {
				opts = append(opts, WithFile(writeFile(t, tt.file)))
			}
			_, err := Load(opts...)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(WithEnviron(noEnv), WithFile(filepath.Join(t.TempDir(), "nope.yaml")))
		require.ErrorIs(t, err, ErrReadFile)
	})

	t.Run("nil environ", func(t *testing.T) {
		t.Parallel()
		_, err := Load(WithEnviron(nil))
		require.Error(t, err)
	})
}

func TestTransformEnvKey(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"CHARTBRIDGE_ENGINE":              "engine",
		"CHARTBRIDGE_JSON_HELPER":         "json_helper",
		"CHARTBRIDGE_LIMITS_MAX_STEPS":    "limits.max_steps",
		"CHARTBRIDGE_MARKDOWN_CACHE_SIZE": "markdown.cache_size",
	} {
		got, _ := transformEnvKey(in, "x")
		assert.Equal(t, want, got, in)
	}
}
