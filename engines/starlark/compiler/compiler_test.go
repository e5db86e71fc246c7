package compiler

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/platform/script/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompiler(t *testing.T, role bridge.Role, opts ...FunctionalOption) *Compiler {
	t.Helper()
	c, err := New(role, append([]FunctionalOption{WithLogHandler(slog.DiscardHandler)}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestPrelude(t *testing.T) {
	t.Parallel()

	prog, err := compilePrelude()
	require.NoError(t, err)
	again, err := compilePrelude()
	require.NoError(t, err)
	assert.Same(t, prog, again)
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New("Widget")
	require.ErrorIs(t, err, bridge.ErrUnknownRole)

	_, err = New(bridge.RoleUI, WithRegistry(nil))
	require.Error(t, err)

	_, err = New(bridge.RoleUI, WithLogHandler(nil))
	require.Error(t, err)
}

func TestCompile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		role    bridge.Role
		src     string
		wantErr error
	}{
		{
			name: "facade and ctx",
			role: bridge.RoleParams,
			src:  `result = ChartEditor.userLang + str(ctx)`,
		},
		{
			name: "modules",
			role: bridge.RoleUI,
			src:  "result = struct(a = math.floor(1.5), t = time.now())",
		},
		{
			name: "json helper for UI",
			role: bridge.RoleUI,
			src:  `result = JSON.parse(json.encode([1]))`,
		},
		{
			name:    "no json helper for Urls",
			role:    bridge.RoleURLs,
			src:     `result = JSON`,
			wantErr: ErrCompileFailed,
		},
		{
			name:    "syntax error",
			role:    bridge.RoleParams,
			src:     `result = (`,
			wantErr: ErrCompileFailed,
		},
		{
			name:    "undefined name",
			role:    bridge.RoleParams,
			src:     `result = chartEditor`,
			wantErr: ErrCompileFailed,
		},
		{
			name: "top level control flow",
			role: bridge.RoleParams,
			src:  "x = 0\nfor i in range(3):\n    x += i\nresult = x\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ldr, err := loader.NewFromString(tt.src)
			require.NoError(t, err)

			exe, err := newCompiler(t, tt.role).Compile(ldr)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.role, exe.Role())
			assert.NotNil(t, exe.GetByteCode())
			assert.NotNil(t, exe.Prelude())
			// string loaders trim surrounding whitespace
			assert.Equal(t, strings.TrimSpace(tt.src), exe.GetSource())
			assert.Len(t, exe.Checksum(), 64)
		})
	}

	t.Run("nil loader", func(t *testing.T) {
		t.Parallel()
		_, err := newCompiler(t, bridge.RoleUI).Compile(nil)
		require.ErrorIs(t, err, ErrContentNil)
	})
}

func TestJSONHelperFlag(t *testing.T) {
	t.Parallel()

	ldr, err := loader.NewFromString(`result = 1`)
	require.NoError(t, err)

	tests := []struct {
		role bridge.Role
		opts []FunctionalOption
		want bool
	}{
		{role: bridge.RoleJavaScript, want: true},
		{role: bridge.RoleUI, want: true},
		{role: bridge.RoleParams, want: false},
		{role: bridge.RoleURLs, want: false},
		{role: bridge.RoleURLs, opts: []FunctionalOption{WithJSONHelper(true)}, want: true},
		{role: bridge.RoleUI, opts: []FunctionalOption{WithJSONHelper(false)}, want: false},
	}
	for _, tt := range tests {
		exe, err := newCompiler(t, tt.role, tt.opts...).Compile(ldr)
		require.NoError(t, err)
		assert.Equal(t, tt.want, exe.JSONHelper(), tt.role)
	}
}
