package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestCreateAndRender(t *testing.T) {
	r := NewRenderer()
	table := r.Create("table", A("class", "grid"))
	row := r.Create("tr")
	cell := r.Create("td")
	r.Append(cell, r.Text("alpha"))
	r.Append(row, cell)
	r.Append(table, row)

	assert.Equal(t, `<table class="grid"><tr><td>alpha</td></tr></table>`, RenderString(table))
	assert.Equal(t, "", RenderString(nil))
}

func TestAppendReparents(t *testing.T) {
	r := NewRenderer()
	a := r.Create("div")
	b := r.Create("div")
	child := r.Create("span")

	r.Append(a, child)
	r.Reparent(child, b)

	assert.Nil(t, a.FirstChild)
	assert.Equal(t, child, b.FirstChild)
	assert.Equal(t, b, child.Parent)
}

func TestInsertBefore(t *testing.T) {
	r := NewRenderer()
	parent := r.Create("ul")
	first := r.Create("li", A("id", "1"))
	second := r.Create("li", A("id", "2"))
	r.Append(parent, second)
	r.InsertBefore(parent, first, second)

	assert.Equal(t, []*html.Node{first, second}, Children(parent))

	third := r.Create("li", A("id", "3"))
	r.InsertBefore(parent, third, nil)
	assert.Equal(t, third, parent.LastChild)
}

func TestRemove(t *testing.T) {
	r := NewRenderer()
	parent := r.Create("div")
	child := r.Create("span")
	r.Append(parent, child)

	r.Remove(child)
	assert.Nil(t, parent.FirstChild)
	assert.Nil(t, child.Parent)
	assert.NotPanics(t, func() { r.Remove(child) })
}

func TestToggleClass(t *testing.T) {
	r := NewRenderer()
	node := r.Create("tr", A("class", "grid-row"))

	r.ToggleClass(node, "selected", true)
	r.ToggleClass(node, "selected", true)
	v, _ := r.Attr(node, "class")
	assert.Equal(t, "grid-row selected", v)
	assert.True(t, r.HasClass(node, "selected"))

	r.ToggleClass(node, "grid-row", false)
	r.ToggleClass(node, "selected", false)
	_, ok := r.Attr(node, "class")
	assert.False(t, ok)
}

func TestAttributes(t *testing.T) {
	r := NewRenderer()
	node := r.Create("th")

	r.SetAttr(node, "data-column", "Id")
	r.SetAttr(node, "data-column", "name")
	v, ok := r.Attr(node, "data-column")
	require.True(t, ok)
	assert.Equal(t, "name", v)
	assert.Len(t, node.Attr, 1)

	SetHidden(r, node, true)
	assert.True(t, IsHidden(r, node))
	SetHidden(r, node, false)
	assert.False(t, IsHidden(r, node))
}

func TestFind(t *testing.T) {
	r := NewRenderer()
	root := r.Create("tbody")
	for _, id := range []string{"a", "b", "c"} {
		r.Append(root, r.Create("tr", A("data-row", id)))
	}

	found := Find(root, ByAttr("data-row", "b"))
	require.NotNil(t, found)
	assert.True(t, Contains(root, found))
	assert.Len(t, FindAll(root, ByAttr("data-row", "c")), 1)
	assert.Nil(t, Find(root, ByAttr("data-row", "z")))
}

func TestFragmentRoundTrip(t *testing.T) {
	r := NewRenderer()
	body := r.Create("tbody")
	rows := []*html.Node{r.Create("tr"), r.Create("tr"), r.Create("tr")}
	for _, row := range rows {
		r.Append(body, row)
	}

	frag := Detach(body)
	assert.Nil(t, body.FirstChild)
	assert.Equal(t, 3, frag.Len())

	other := r.Create("tbody")
	frag.Attach(other)
	assert.Equal(t, rows, Children(other))

	var nilFrag *Fragment
	assert.Equal(t, 0, nilFrag.Len())
	assert.Nil(t, nilFrag.Nodes())
}

func TestEventsDeduplicate(t *testing.T) {
	r := NewRenderer()
	events := NewEvents()
	row := r.Create("tr")
	calls := 0

	assert.True(t, events.On("grid-1", row, "click", "select", func(*html.Node) { calls++ }))
	assert.False(t, events.On("grid-1", row, "click", "select", func(*html.Node) { calls += 100 }))
	assert.True(t, events.On("grid-2", row, "click", "select", func(*html.Node) { calls += 10 }))

	assert.Equal(t, 2, events.Dispatch(row, "click"))
	assert.Equal(t, 11, calls)

	events.Off("grid-2", row, "click", "select")
	assert.Equal(t, 1, events.Count("grid-1"))
	assert.Equal(t, 0, events.Count("grid-2"))
}

func TestEventsBubble(t *testing.T) {
	r := NewRenderer()
	events := NewEvents()
	row := r.Create("tr")
	cell := r.Create("td")
	r.Append(row, cell)

	var target *html.Node
	events.On("g", row, "click", "select", func(n *html.Node) { target = n })

	assert.Equal(t, 1, events.Dispatch(cell, "click"))
	assert.Equal(t, cell, target)
	assert.Equal(t, 0, events.Dispatch(cell, "dblclick"))
}

func TestEventsOffNodeAndOwner(t *testing.T) {
	r := NewRenderer()
	events := NewEvents()
	body := r.Create("tbody")
	a := r.Create("tr")
	b := r.Create("tr")
	r.Append(body, a)
	r.Append(body, b)
	outside := r.Create("nav")

	noop := func(*html.Node) {}
	events.On("g", a, "click", "select", noop)
	events.On("g", b, "click", "select", noop)
	events.On("g", outside, "click", "next", noop)

	events.OffNode("g", body)
	assert.Equal(t, 1, events.Count("g"))

	events.OffOwner("g")
	assert.Equal(t, 0, events.Count("g"))
}

func TestWindow(t *testing.T) {
	w := NewWindow()
	var got []int

	w.OnResize("a", func(width, height int) { got = append(got, width) })
	w.OnResize("b", func(width, height int) { got = append(got, height) })
	assert.Equal(t, 2, w.Observers())
	assert.True(t, w.Observing("a"))

	w.Resize(800, 600)
	assert.Equal(t, []int{800, 600}, got)
	width, height := w.Size()
	assert.Equal(t, 800, width)
	assert.Equal(t, 600, height)

	w.OffResize("a")
	assert.False(t, w.Observing("a"))
	assert.Equal(t, 1, w.Observers())
}
