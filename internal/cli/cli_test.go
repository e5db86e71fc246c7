package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, environ []string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(&stdout, &stderr, func() []string { return environ })
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func TestRunStarlark(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, nil, "run", "testdata/sales.star",
		"--fixture", "testdata/fixture.yaml", "--log-level", "error")
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "function", out["kind"])
	assert.Equal(t, map[string]any{
		"fn":   "function () { return this.y; }",
		"args": nil,
		"libs": []any{"d3"},
	}, out["result"])

	effects := out["effects"].(map[string]any)
	assert.Equal(t, map[string]any{"title": map[string]any{"text": "Umsatz EMEA"}}, effects["config"])
	assert.Equal(t, "<p>Rows: 3</p>", effects["sideHtml"])
	assert.Equal(t, "sales-emea", effects["exportFilename"])
	assert.Equal(t, map[string]any{"legend": nil}, effects["extras"])
	assert.NotEmpty(t, out["exeId"])
}

func TestRunStdin(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand(&stdout, &stderr, func() []string { return nil })
	cmd.SetIn(strings.NewReader("result = ChartEditor.userLogin + \"@\" + ctx[\"region\"]\n"))
	cmd.SetArgs([]string{"run", "-", "-r", "Params", "-f", "testdata/fixture.yaml", "--log-level", "error"})
	require.NoError(t, cmd.ExecuteContext(t.Context()))

	var out map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, "value", out["kind"])
	assert.Equal(t, "ann@EMEA", out["result"])
}

func TestRunRisorYAML(t *testing.T) {
	t.Parallel()

	environ := []string{"CHARTBRIDGE_ENGINE=risor", "CHARTBRIDGE_ROLE=JavaScript", "CHARTBRIDGE_LOG_LEVEL=error"}
	stdout, _, err := execute(t, environ, "run", "testdata/sales.risor",
		"-f", "testdata/fixture.yaml", "-o", "yaml")
	require.NoError(t, err)

	var out runOutput
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "html", out.Kind)
	assert.Equal(t, "<b>ann</b>", out.Result)
	assert.Equal(t, map[string]any{"title": "Umsatz EMEA"}, out.Effects.Config)
}

func TestRunMetrics(t *testing.T) {
	t.Parallel()

	_, stderr, err := execute(t, nil, "run", "testdata/sales.star",
		"-f", "testdata/fixture.yaml", "--metrics", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stderr,
		`chartbridge_bridge_calls_total{operation="getTranslation",outcome="ok",role="JavaScript"} 1`)
	assert.Contains(t, stderr,
		`chartbridge_bridge_call_duration_seconds{operation="updateConfig",role="JavaScript"} 1`)
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.star")
	require.NoError(t, os.WriteFile(broken, []byte("result = undefined_name\n"), 0o600))

	tests := []struct {
		name    string
		environ []string
		args    []string
		wantErr string
	}{
		{name: "missing script arg", args: []string{"run"}, wantErr: "accepts 1 arg"},
		{name: "missing script file", args: []string{"run", filepath.Join(dir, "nope.star")}},
		{name: "missing fixture", args: []string{"run", "testdata/sales.star", "-f", filepath.Join(dir, "nope.yaml")}, wantErr: "reading fixture"},
		{name: "compile error", args: []string{"run", broken}, wantErr: "undefined_name"},
		{name: "bad output format", args: []string{"run", "testdata/sales.star", "-o", "xml"}, wantErr: "unknown output format"},
		{name: "bad role flag", args: []string{"run", "testdata/sales.star", "-r", "Widget"}, wantErr: "unknown role"},
		{name: "bad env config", environ: []string{"CHARTBRIDGE_ENGINE=lua"}, args: []string{"capabilities"}, wantErr: "invalid configuration"},
		{name: "bad log level", args: []string{"capabilities", "--log-level", "loud"}, wantErr: "invalid"},
		{
			name:    "capability outside role",
			args:    []string{"run", "testdata/sales.star", "-f", "testdata/fixture.yaml", "-r", "Params", "--log-level", "error"},
			wantErr: "updateConfig",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := execute(t, tt.environ, tt.args...)
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCapabilities(t *testing.T) {
	t.Parallel()

	t.Run("table", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := execute(t, nil, "capabilities", "--role", "Urls")
		require.NoError(t, err)
		assert.Contains(t, stdout, "role Urls, JSON helper false")
		assert.Contains(t, stdout, "getTranslation")
		assert.Contains(t, stdout, "keyset, key, params?")
		assert.NotContains(t, stdout, "updateConfig")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := execute(t, []string{"CHARTBRIDGE_ROLE=JavaScript"}, "capabilities", "--json")
		require.NoError(t, err)

		var out struct {
			Role       string          `json:"role"`
			JSONHelper bool            `json:"jsonHelper"`
			Operations []capabilityRow `json:"operations"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))
		assert.Equal(t, "JavaScript", out.Role)
		assert.True(t, out.JSONHelper)

		byName := map[string]capabilityRow{}
		for _, row := range out.Operations {
			byName[row.Name] = row
		}
		assert.Equal(t, "_ChartEditor_setExtra", byName["setExtra"].Wire)
		assert.Equal(t, "marker", byName["wrapFn"].Direction)
		assert.Equal(t, "_ChartEditor_wrapFn_WRAPPED_FN_KEY", byName["wrapFn"].Wire)
		assert.True(t, byName["getSecrets"].Optional)
		assert.Equal(t, "json", byName["getLoadedData"].Result)
	})
}

func TestLoadFixture(t *testing.T) {
	t.Parallel()

	f, err := loadFixture("")
	require.NoError(t, err)
	assert.Equal(t, &Fixture{}, f)

	f, err = loadFixture("testdata/fixture.yaml")
	require.NoError(t, err)
	assert.Equal(t, "ann", f.Login)
	assert.Equal(t, "Umsatz {{region}}", f.Translations["chart"]["de"]["title"])

	api, editor, err := f.editor(nil, nil)
	require.Error(t, err, "nil handler and cache are rejected")
	assert.Nil(t, api)
	assert.Nil(t, editor)
}
