package column

import (
	"errors"
	"testing"

	"github.com/conneroisu/templgrid/internal/dom"
	gerrors "github.com/conneroisu/templgrid/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func newRow(r dom.Renderer, item *Item, n int) []*html.Node {
	cells := make([]*html.Node, 0, n)
	for i := 0; i < n; i++ {
		row := r.Create("tr")
		cell := r.Create("td", dom.A("data-column", item.Name()))
		r.Append(row, cell)
		item.AddCellNode(cell)
		cells = append(cells, cell)
	}
	return cells
}

func TestRegister(t *testing.T) {
	reg := NewRegistry(nil)

	item, err := reg.Register("created_at", "")
	require.NoError(t, err)
	assert.Equal(t, "Created At", item.Value())
	assert.Equal(t, "th", item.Header().Data)
	assert.Equal(t, "Created At", item.Header().FirstChild.Data)

	_, err = reg.Register("created_at", "Again")
	assert.True(t, errors.Is(err, gerrors.ErrDuplicateColumn))

	_, err = reg.Register("  ", "Blank")
	assert.True(t, errors.Is(err, gerrors.ErrInvalidColumn))

	assert.Equal(t, 1, reg.Len())
}

func TestRegistryOrder(t *testing.T) {
	reg := NewRegistry(nil)
	for _, name := range []string{"id", "name", "status"} {
		_, err := reg.Register(name, "")
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"id", "name", "status"}, reg.AllNames())
	all := reg.All()
	require.Len(t, all, 3)
	assert.Equal(t, "status", all[2].Name())

	reg.Remove("name")
	assert.Equal(t, []string{"id", "status"}, reg.AllNames())
	assert.False(t, reg.Has("name"))

	reg.Remove("missing")
	assert.Equal(t, 2, reg.Len())
}

func TestSetHidden(t *testing.T) {
	r := dom.NewRenderer()
	reg := NewRegistry(r)
	item, err := reg.Register("type", "Type")
	require.NoError(t, err)
	cells := newRow(r, item, 3)

	assert.False(t, item.IsHidden())
	assert.True(t, item.SetHidden(true))
	assert.True(t, item.IsHidden())
	for _, cell := range cells {
		assert.True(t, dom.IsHidden(r, cell))
	}

	assert.True(t, item.SetHidden(false))
	for _, cell := range cells {
		assert.False(t, dom.IsHidden(r, cell))
	}
}

func TestSetHiddenValueRejectsNonBool(t *testing.T) {
	item, err := NewRegistry(nil).Register("type", "")
	require.NoError(t, err)

	assert.False(t, item.SetHiddenValue("yes"))
	assert.False(t, item.SetHiddenValue(1))
	assert.False(t, item.IsHidden())

	assert.True(t, item.SetHiddenValue(true))
	assert.True(t, item.IsHidden())
}

func TestAddCellNodeAppliesHiddenState(t *testing.T) {
	r := dom.NewRenderer()
	item, err := NewRegistry(r).Register("id", "Id")
	require.NoError(t, err)

	item.SetHidden(true)
	cells := newRow(r, item, 2)
	for _, cell := range cells {
		assert.True(t, dom.IsHidden(r, cell))
	}
	assert.Len(t, item.CellNodes(), 2)

	item.AddCellNode(nil)
	assert.Len(t, item.CellNodes(), 2)

	item.ResetCells()
	assert.Empty(t, item.CellNodes())
}

func TestDestroy(t *testing.T) {
	r := dom.NewRenderer()
	reg := NewRegistry(r)
	head := r.Create("tr")

	item, err := reg.Register("name", "Name")
	require.NoError(t, err)
	r.Append(head, item.Header())
	cells := newRow(r, item, 4)

	item.Destroy()

	assert.Nil(t, item.Header().Parent)
	for _, cell := range cells {
		assert.Nil(t, cell.Parent)
	}
	assert.Empty(t, item.CellNodes())
	assert.False(t, reg.Has("name"))
	assert.Nil(t, head.FirstChild)
}

func TestHeaderTitle(t *testing.T) {
	assert.Equal(t, "Id", HeaderTitle("id"))
	assert.Equal(t, "User Name", HeaderTitle("user-name"))
	assert.Equal(t, "Created At", HeaderTitle("created_at"))
}
