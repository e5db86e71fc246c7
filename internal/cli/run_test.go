package cli

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/bridge/marshal"
	"github.com/robbyt/go-chartbridge/engines/mocks"
	"github.com/robbyt/go-chartbridge/hostapi"
	"github.com/robbyt/go-chartbridge/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tagged   marshal.Tagged
		wantKind string
		want     any
	}{
		{
			name:     "value",
			tagged:   marshal.Tagged{Kind: marshal.KindValue, Value: map[string]any{"a": int64(1)}},
			wantKind: "value",
			want:     map[string]any{"a": int64(1)},
		},
		{
			name:     "html",
			tagged:   marshal.Tagged{Kind: marshal.KindHTML, HTML: "<b>x</b>"},
			wantKind: "html",
			want:     "<b>x</b>",
		},
		{
			name: "function",
			tagged: marshal.Tagged{Kind: marshal.KindFunction, Function: marshal.WrappedFunction{
				Source: "f", Args: []any{int64(1)}, Libs: []string{"d3"},
			}},
			wantKind: "function",
			want:     map[string]any{"fn": "f", "args": []any{int64(1)}, "libs": []string{"d3"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp := &mocks.EvaluatorResponse{}
			resp.On("Tagged").Return(tt.tagged)
			resp.On("GetScriptExeID").Return("exe-1")
			resp.On("GetExecTime").Return("1ms")

			out := newRunOutput(resp, hostapi.Snapshot{SideHTML: "<p>x</p>"})
			assert.Equal(t, tt.wantKind, out.Kind)
			assert.Equal(t, tt.want, out.Result)
			assert.Equal(t, "exe-1", out.ExeID)
			assert.Equal(t, "1ms", out.ExecTime)
			assert.Equal(t, "<p>x</p>", out.Effects.SideHTML)
			resp.AssertExpectations(t)
		})
	}
}

func TestWriteMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	require.NoError(t, err)
	c.ObserveCall(bridge.RoleUI, bridge.OpSetError, 0, nil)

	var buf bytes.Buffer
	require.NoError(t, writeMetrics(&buf, reg))
	assert.Equal(t,
		"chartbridge_bridge_call_duration_seconds{operation=\"setError\",role=\"UI\"} 1\n"+
			"chartbridge_bridge_calls_total{operation=\"setError\",outcome=\"ok\",role=\"UI\"} 1\n",
		buf.String())
}
