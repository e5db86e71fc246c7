package bridge

import (
	"testing"

	"github.com/robbyt/go-chartbridge/bridge/marshal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(ops []Operation) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.Name
	}
	return out
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, role := range Roles() {
		got, err := ParseRole(string(role))
		require.NoError(t, err)
		assert.Equal(t, role, got)
	}

	_, err := ParseRole("Shared")
	require.ErrorIs(t, err, ErrUnknownRole)
	_, err = ParseRole("javascript")
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()
	r := DefaultRegistry()

	base := names(BaseTier())
	data := names(DataTier())
	cfg := names(ConfigTier())

	tests := []struct {
		role       Role
		want       []string
		jsonHelper bool
	}{
		{role: RoleParams, want: base},
		{role: RoleURLs, want: base},
		{role: RoleUI, want: append(append([]string{}, base...), data...), jsonHelper: true},
		{
			role:       RoleJavaScript,
			want:       append(append(append([]string{}, base...), data...), cfg...),
			jsonHelper: true,
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			t.Parallel()
			ops, err := r.ForRole(tt.role)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(ops))

			caps, err := r.Capabilities(tt.role)
			require.NoError(t, err)
			assert.Equal(t, tt.jsonHelper, caps.JSONHelper)
		})
	}

	assert.Equal(t, []Role{RoleJavaScript, RoleParams, RoleUI, RoleURLs}, r.Roles())
	assert.Equal(t, []Role{RoleJavaScript}, r.RolesFor(OpSetExtra))
	assert.Equal(t, []Role{RoleJavaScript, RoleUI}, r.RolesFor(OpGetLoadedData))
	assert.Len(t, r.RolesFor(OpGetTranslation), 4)
	assert.True(t, r.Has(RoleUI, OpSetDataSourceInfo))
	assert.False(t, r.Has(RoleUI, OpSetExportFilename))
	assert.False(t, r.Has("Nope", OpGetTranslation))

	_, err := r.ForRole("Nope")
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestRegistryIsImmutable(t *testing.T) {
	t.Parallel()
	r := DefaultRegistry()

	ops, err := r.ForRole(RoleParams)
	require.NoError(t, err)
	ops[0].Name = "tampered"
	ops[0].Args[0].Name = "tampered"

	again, err := r.ForRole(RoleParams)
	require.NoError(t, err)
	assert.Equal(t, OpGetTranslation, again[0].Name)
	assert.Equal(t, "keyset", again[0].Args[0].Name)
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	t.Run("a new role is one row", func(t *testing.T) {
		r, err := NewRegistry(map[Role]Capabilities{
			"Preview": {Operations: BaseTier()[:2]},
		})
		require.NoError(t, err)
		ops, err := r.ForRole("Preview")
		require.NoError(t, err)
		assert.Equal(t, []string{OpGetTranslation, OpGetSharedData}, names(ops))
	})

	t.Run("unknown operation", func(t *testing.T) {
		_, err := NewRegistry(map[Role]Capabilities{
			RoleParams: {Operations: []Operation{call("readFile", marshal.ShapeRaw, raw("path"))}},
		})
		require.ErrorIs(t, err, ErrUnknownOperation)
	})

	t.Run("known name with a different shape", func(t *testing.T) {
		_, err := NewRegistry(map[Role]Capabilities{
			RoleParams: {Operations: []Operation{call(OpGetSharedData, marshal.ShapeRaw)}},
		})
		require.ErrorIs(t, err, ErrUnknownOperation)
	})

	t.Run("duplicate operation", func(t *testing.T) {
		dup := BaseTier()[0]
		_, err := NewRegistry(map[Role]Capabilities{
			RoleParams: {Operations: []Operation{dup, dup}},
		})
		require.ErrorIs(t, err, ErrDuplicateOperation)
	})

	t.Run("empty role", func(t *testing.T) {
		_, err := NewRegistry(map[Role]Capabilities{"": {}})
		require.ErrorIs(t, err, ErrUnknownRole)
	})
}

func TestOperationDescriptors(t *testing.T) {
	t.Parallel()

	for _, op := range ConfigTier() {
		assert.Equal(t, DirectionCall, op.Direction, op.Name)
		assert.False(t, op.ReturnsValue(), op.Name)
	}

	byName := map[string]Operation{}
	for _, op := range BaseTier() {
		byName[op.Name] = op
	}

	assert.Equal(t, "_ChartEditor_getTranslation", byName[OpGetTranslation].WireName())
	assert.Equal(t, "_ChartEditor_wrapFn_WRAPPED_FN_KEY", byName[OpWrapFn].WireName())
	assert.Equal(t, "_ChartEditor_wrapHtml_WRAPPED_HTML_KEY", byName[OpWrapHTML].WireName())
	assert.True(t, byName[OpWrapFn].Marker)
	assert.True(t, byName[OpGetSecrets].Optional)
	assert.True(t, byName[OpGetWidgetConfig].Optional)
	assert.True(t, byName[OpGetActionParams].Optional)
	assert.False(t, byName[OpGetTranslation].Optional)
	assert.Equal(t, DirectionConstant, byName[OpUserLang].Direction)
	assert.True(t, byName[OpResolveInterval].ReturnsValue())
	assert.Contains(t, byName[OpGetTranslation].String(), "getTranslation(call, 3 args")
}
