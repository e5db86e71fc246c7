package evaluator

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	extismSDK "github.com/extism/go-sdk"
	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/bridge/marshal"
	"github.com/robbyt/go-chartbridge/engines/extism/adapters"
	"github.com/robbyt/go-chartbridge/engines/extism/compiler"
	"github.com/robbyt/go-chartbridge/engines/extism/internal"
	"github.com/robbyt/go-chartbridge/hostapi"
	"github.com/robbyt/go-chartbridge/platform/script/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPlugin struct {
	mock.Mock
}

func (m *mockPlugin) Instance(ctx context.Context, cfg extismSDK.PluginInstanceConfig) (adapters.PluginInstance, error) {
	args := m.Called(ctx, cfg)
	if inst := args.Get(0); inst != nil {
		return inst.(adapters.PluginInstance), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlugin) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// guestFunc plays the part of the WASM entry point.
type guestFunc func(ctx context.Context, config map[string]string, input []byte) (uint32, []byte, error)

type fakeInstance struct {
	guest  guestFunc
	config map[string]string
	closed bool
}

func (f *fakeInstance) CallWithContext(ctx context.Context, _ string, data []byte) (uint32, []byte, error) {
	return f.guest(ctx, f.config, data)
}

func (f *fakeInstance) FunctionExists(string) bool { return true }

func (f *fakeInstance) SetConfig(values map[string]string) { f.config = values }

func (f *fakeInstance) Close(context.Context) error {
	f.closed = true
	return nil
}

func newExecutable(t *testing.T, role bridge.Role, guest guestFunc) (*compiler.Executable, *fakeInstance) {
	t.Helper()
	inst := &fakeInstance{guest: guest}
	plugin := &mockPlugin{}
	plugin.On("Instance", mock.Anything, mock.Anything).Return(inst, nil)
	plugin.On("Close", mock.Anything).Return(nil)

	src := &loader.Source{Body: []byte("\x00asm"), Checksum: "abc"}
	exe := compiler.NewExecutable(src, plugin, "run", role, bridge.DefaultRegistry(), false)
	require.NotNil(t, exe)
	return exe, inst
}

func newEditor(t *testing.T) *hostapi.ChartEditor {
	t.Helper()
	api, err := hostapi.New(hostapi.WithLogHandler(slog.DiscardHandler), hostapi.WithLogin("ann"))
	require.NoError(t, err)
	return api
}

func TestEval(t *testing.T) {
	t.Parallel()

	exe, inst := newExecutable(t, bridge.RoleJavaScript,
		func(ctx context.Context, cfg map[string]string, input []byte) (uint32, []byte, error) {
			if _, err := internal.CallOperation(ctx, bridge.WirePrefix+bridge.OpUpdateConfig, marshal.Raw(string(input))); err != nil {
				return 1, nil, err
			}
			fnKey := cfg[bridge.WirePrefix+"wrapFn_WRAPPED_FN_KEY"]
			return 0, []byte(`{"` + fnKey + `":{"fn":"function(){return '` + cfg[bridge.WirePrefix+bridge.OpUserLogin] + `'}"}}`), nil
		})
	e, err := New(exe, WithLogHandler(slog.DiscardHandler), WithTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "extism.Evaluator", e.String())

	ctx, err := e.AddDataToContext(t.Context(), map[string]any{"title": "Sales"})
	require.NoError(t, err)

	api := newEditor(t)
	resp, err := e.Eval(ctx, api)
	require.NoError(t, err)
	assert.Equal(t, marshal.KindFunction, resp.Tagged().Kind)
	assert.Equal(t, "function(){return 'ann'}", resp.Tagged().Function.Source)
	assert.NotEmpty(t, resp.GetScriptExeID())
	assert.Equal(t, map[string]any{"title": "Sales"}, api.Snapshot().Config)
	assert.True(t, inst.closed)
	assert.Equal(t, "JavaScript", inst.config[internal.ConfigRole])
}

func TestEvalFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		guest guestFunc
		want  error
	}{
		{
			name: "non-zero exit",
			guest: func(context.Context, map[string]string, []byte) (uint32, []byte, error) {
				return 3, nil, nil
			},
			want: ErrExitCode,
		},
		{
			name: "trap from host function",
			guest: func(ctx context.Context, _ map[string]string, _ []byte) (uint32, []byte, error) {
				_, err := internal.CallOperation(ctx, bridge.WirePrefix+bridge.OpGetLoadedData)
				return 0, nil, err
			},
			want: internal.ErrNotInstalled,
		},
		{
			name: "guest error",
			guest: func(context.Context, map[string]string, []byte) (uint32, []byte, error) {
				return 0, nil, errors.New("unreachable")
			},
			want: ErrExecution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			exe, _ := newExecutable(t, bridge.RoleParams, tt.guest)
			e, err := New(exe, WithLogHandler(slog.DiscardHandler))
			require.NoError(t, err)
			_, err = e.Eval(t.Context(), newEditor(t))
			require.ErrorIs(t, err, ErrExecution)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEvalClosedExecutable(t *testing.T) {
	t.Parallel()

	exe, _ := newExecutable(t, bridge.RoleParams, nil)
	e, err := New(exe)
	require.NoError(t, err)
	require.NoError(t, e.Close(t.Context()))
	require.NoError(t, exe.Close(t.Context()))

	_, err = e.Eval(t.Context(), newEditor(t))
	require.ErrorIs(t, err, ErrExecutable)
	require.ErrorIs(t, err, compiler.ErrExecutableClosed)
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.ErrorIs(t, err, ErrExecutable)

	exe, _ := newExecutable(t, bridge.RoleParams, nil)
	for _, opt := range []FunctionalOption{
		WithLogHandler(nil),
		WithObserver(nil),
		WithDataProvider(nil),
		WithTimeout(-time.Second),
	} {
		_, err := New(exe, opt)
		require.Error(t, err)
	}
}

func TestInstanceFailure(t *testing.T) {
	t.Parallel()

	plugin := &mockPlugin{}
	plugin.On("Instance", mock.Anything, mock.Anything).Return(nil, errors.New("oom"))
	src := &loader.Source{Body: []byte("\x00asm")}
	exe := compiler.NewExecutable(src, plugin, "run", bridge.RoleUI, bridge.DefaultRegistry(), true)
	e, err := New(exe)
	require.NoError(t, err)

	_, err = e.Eval(t.Context(), newEditor(t))
	require.ErrorContains(t, err, "failed to create plugin instance")
	plugin.AssertExpectations(t)
}
