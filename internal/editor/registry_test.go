package editor

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/conneroisu/templgrid/internal/dom"
	gerrors "github.com/conneroisu/templgrid/internal/errors"
	"github.com/conneroisu/templgrid/internal/future"
	"github.com/conneroisu/templgrid/internal/logging"
	"github.com/conneroisu/templgrid/internal/widgets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFuture(t *testing.T, f *future.Future) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := f.Wait(ctx)
	return err
}

func columns(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func newTestRegistry(t *testing.T, buf *bytes.Buffer) (*Registry, *StaticResolver) {
	t.Helper()
	resolver := NewStaticResolver()
	var logger logging.Logger = logging.Discard()
	if buf != nil {
		logger = logging.NewLogger(&logging.LoggerConfig{Level: logging.LevelDebug, Output: buf})
	}
	reg := NewRegistry(Config{
		Renderer:  dom.NewRenderer(),
		Resolver:  resolver,
		Logger:    logger,
		HasColumn: columns("status", "name", "actions", "kind", "flag"),
	})
	return reg, resolver
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		parsed, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("carousel")
	assert.Error(t, err)

	assert.False(t, KindIcon.Interactive())
	assert.True(t, KindToggle.Interactive())
	assert.Equal(t, []string{"checked", "disabled", "label"}, KindToggle.Props())
}

func TestAddOptionsUnknownColumnIsFatal(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)

	err := reg.AddOptions(context.Background(), map[string]Descriptor{
		"status":  {Module: KindToggle},
		"missing": {Module: KindToggle},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, gerrors.ErrUnknownColumn)
	assert.Empty(t, reg.Columns())
}

func TestReplaceOptionsKeepsPreviousOnUnknownColumn(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	ctx := context.Background()

	require.NoError(t, reg.AddOptions(ctx, map[string]Descriptor{"status": {Module: KindToggle}}))

	err := reg.ReplaceOptions(ctx, map[string]Descriptor{"missing": {Module: KindToggle}})
	assert.ErrorIs(t, err, gerrors.ErrUnknownColumn)
	_, ok := reg.Descriptor("status")
	assert.True(t, ok)

	require.NoError(t, reg.ReplaceOptions(ctx, map[string]Descriptor{"name": {Module: KindIcon}}))
	_, ok = reg.Descriptor("status")
	assert.False(t, ok)
	_, ok = reg.Descriptor("name")
	assert.True(t, ok)
}

func TestAddOptionsPartialFailure(t *testing.T) {
	var buf bytes.Buffer
	reg, _ := newTestRegistry(t, &buf)

	err := reg.AddOptions(context.Background(), map[string]Descriptor{
		"status":  {Module: KindToggle},
		"name":    {Module: "carousel"},
		"actions": {Module: KindActionMenu},
		"kind":    {Module: KindIcon},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"kind", "status"}, reg.Columns())
	assert.Equal(t, []string{"actions", "name"}, reg.Rejected())
	assert.Contains(t, buf.String(), "Rejected cell option")
	assert.Contains(t, buf.String(), "column=actions")
	assert.Contains(t, buf.String(), "column=name")
	assert.Equal(t, []Kind{KindToggle}, reg.Kinds())
}

func TestRequireModulesResolvesOncePerKind(t *testing.T) {
	reg, resolver := newTestRegistry(t, nil)
	ctx := context.Background()

	f := reg.RequireModules(ctx, []Kind{KindToggle, KindTextEditor, KindIcon, KindToggle})
	require.NoError(t, waitFuture(t, f))
	assert.True(t, reg.Resolved(KindToggle))
	assert.True(t, reg.Resolved(KindTextEditor))
	assert.False(t, reg.Resolved(KindIcon))

	again := reg.RequireModules(ctx, []Kind{KindToggle, KindTextEditor})
	assert.True(t, again.Settled(), "cached kinds complete synchronously")

	assert.Equal(t, 1, resolver.Calls(KindToggle))
	assert.Equal(t, 1, resolver.Calls(KindTextEditor))
	assert.Equal(t, 0, resolver.Calls(KindIcon))
}

type failingResolver struct{}

func (failingResolver) Resolve(ctx context.Context, kind Kind) *future.Future {
	return future.Rejected(errors.New("module bundle unavailable"))
}

func TestRequireModulesFailure(t *testing.T) {
	reg := NewRegistry(Config{Resolver: failingResolver{}})

	err := waitFuture(t, reg.RequireModules(context.Background(), []Kind{KindToggle}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module bundle unavailable")
	assert.False(t, reg.Resolved(KindToggle))
}

func TestCreateModulePrecedence(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	ctx := context.Background()

	require.NoError(t, reg.AddOptions(ctx, map[string]Descriptor{
		"name": {
			Module:     KindTextEditor,
			Properties: map[string]string{"placeholder": "hint"},
			Forced:     map[string]interface{}{"readonly": true},
			Presets:    map[string]interface{}{"placeholder": "preset", "maxLength": 4},
		},
	}))
	require.NoError(t, waitFuture(t, reg.RequireModules(ctx, reg.Kinds())))

	// Row-supplied option beats the preset; forced beats the row.
	m, err := reg.CreateModule("name", "g1-0", map[string]interface{}{
		"value":    "abcdefgh",
		"hint":     "from row",
		"readonly": false,
	})
	require.NoError(t, err)
	out := dom.RenderString(m.Node())
	assert.Contains(t, out, `placeholder="from row"`)
	assert.Contains(t, out, "readonly")
	assert.Contains(t, out, `maxlength="4"`)
	assert.Equal(t, "abcd", m.(widgets.Valuer).Value())
	assert.Contains(t, out, `data-row="g1-0"`)

	// Without row options the preset applies.
	m, err = reg.CreateModule("name", "g1-1", "plain")
	require.NoError(t, err)
	assert.Contains(t, dom.RenderString(m.Node()), `placeholder="preset"`)
	assert.Equal(t, "plai", m.(widgets.Valuer).Value())

	// Missing values render empty.
	m, err = reg.CreateModule("name", "g1-2", nil)
	require.NoError(t, err)
	assert.Equal(t, "", m.(widgets.Valuer).Value())

	assert.Equal(t, int64(3), reg.Instances())
}

func TestCreateModuleErrors(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	ctx := context.Background()

	_, err := reg.CreateModule("status", "r", true)
	assert.ErrorIs(t, err, gerrors.ErrUnknownColumn)

	require.NoError(t, reg.AddOptions(ctx, map[string]Descriptor{
		"status": {Module: KindToggle},
		"kind":   {Module: KindIcon},
	}))

	_, err = reg.CreateModule("status", "r", true)
	assert.Error(t, err, "constructor not resolved yet")

	_, err = reg.CreateModule("kind", "r", "ok")
	assert.Error(t, err, "icons are not modules")

	require.NoError(t, waitFuture(t, reg.RequireModules(ctx, reg.Kinds())))
	m, err := reg.CreateModule("status", "r", true)
	require.NoError(t, err)
	assert.Equal(t, true, m.(widgets.Valuer).Value())
}

func TestCreateModuleRowOptionRejected(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	ctx := context.Background()

	require.NoError(t, reg.AddOptions(ctx, map[string]Descriptor{
		"actions": {Module: KindActionMenu, Presets: map[string]interface{}{"items": []interface{}{"edit"}}},
	}))
	require.NoError(t, waitFuture(t, reg.RequireModules(ctx, reg.Kinds())))

	_, err := reg.CreateModule("actions", "r", map[string]interface{}{"items": "not-a-list"})
	require.Error(t, err)
	assert.True(t, gerrors.IsRecoverable(err))
}

func TestCreateIcon(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	require.NoError(t, reg.AddOptions(context.Background(), map[string]Descriptor{
		"kind": {Module: KindIcon, Presets: map[string]interface{}{"color": "red"}},
	}))

	node := reg.CreateIcon("kind", "g1-3", map[string]interface{}{"name": "warning", "title": "Heads up"})
	out := dom.RenderString(node)
	assert.Contains(t, out, "grid-icon-warning")
	assert.Contains(t, out, `style="color: red"`)
	assert.Contains(t, out, `title="Heads up"`)

	node = reg.CreateIcon("kind", "g1-4", "info")
	assert.Contains(t, dom.RenderString(node), "grid-icon-info")
	assert.Equal(t, int64(0), reg.Instances())
}

func TestClear(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	ctx := context.Background()
	require.NoError(t, reg.AddOptions(ctx, map[string]Descriptor{"status": {Module: KindToggle}}))
	require.NoError(t, waitFuture(t, reg.RequireModules(ctx, reg.Kinds())))

	reg.Clear()
	assert.Empty(t, reg.Columns())
	assert.True(t, reg.Resolved(KindToggle))
	_, ok := reg.Descriptor("status")
	assert.False(t, ok)
}

func TestAddOptionsNormalizesKeys(t *testing.T) {
	reg, _ := newTestRegistry(t, nil)
	require.NoError(t, reg.AddOptions(context.Background(), map[string]Descriptor{
		"name": {
			Module:  "Text-Editor",
			Presets: map[string]interface{}{"maxlength": 3},
		},
	}))

	desc, ok := reg.Descriptor("name")
	require.True(t, ok)
	assert.Equal(t, KindTextEditor, desc.Module)
	assert.Equal(t, 3, desc.Presets["maxLength"])
}
