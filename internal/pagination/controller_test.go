package pagination

import (
	"errors"
	"testing"

	"github.com/conneroisu/templgrid/internal/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

type recordingOwner struct {
	calls [][2]int
	err   error
}

func (o *recordingOwner) LoadBody(prev, next int) error {
	o.calls = append(o.calls, [2]int{prev, next})
	return o.err
}

func linkPages(t *testing.T, c *Controller) []string {
	t.Helper()
	var out []string
	for _, link := range dom.FindAll(c.Node(), dom.ByAttr("class", "grid-page-link")) {
		page, _ := dom.NewRenderer().Attr(link, "data-page")
		out = append(out, page)
	}
	return out
}

func activeLink(c *Controller) string {
	r := dom.NewRenderer()
	node := dom.Find(c.Node(), func(n *html.Node) bool {
		return n.Type == html.ElementNode && r.HasClass(n, "active")
	})
	page, _ := r.Attr(node, "data-page")
	return page
}

func TestConfigure(t *testing.T) {
	testCases := []struct {
		name        string
		enabled     bool
		rowsPerPage int
		total       int
		wantRows    int
		wantNeeded  bool
	}{
		{"disabled", false, 30, 200, 0, false},
		{"unbounded", true, 0, 200, 0, false},
		{"fits on one page", true, 30, 30, 30, false},
		{"needs paging", true, 30, 31, 30, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rows, needed := Configure(tc.enabled, tc.rowsPerPage, tc.total)
			assert.Equal(t, tc.wantRows, rows)
			assert.Equal(t, tc.wantNeeded, needed)
		})
	}
}

func TestTwoHundredRecords(t *testing.T) {
	c := New(30, 200, nil, nil)

	assert.Equal(t, 7, c.NumberOfPages())
	assert.Equal(t, 5, c.NumberOfLinks())
	assert.Equal(t, 1, c.AlignFirst(1))
	assert.Equal(t, 2, c.AlignFirst(4))
	assert.Equal(t, 3, c.AlignFirst(7))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, linkPages(t, c))
}

func TestSetPageNoOps(t *testing.T) {
	owner := &recordingOwner{}
	c := New(10, 50, owner, nil)

	for _, n := range []int{0, -1, 6, 1} {
		changed, err := c.SetPage(n)
		require.NoError(t, err)
		assert.False(t, changed, "page %d", n)
	}
	assert.Empty(t, owner.calls)
	assert.Equal(t, 1, c.Page())
}

func TestSetPageValue(t *testing.T) {
	c := New(10, 50, nil, nil)

	changed, err := c.SetPageValue("3")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, _ = c.SetPageValue(2.5)
	assert.False(t, changed)

	changed, _ = c.SetPageValue(3.0)
	assert.True(t, changed)
	assert.Equal(t, 3, c.Page())

	changed, _ = c.SetPageValue(int64(4))
	assert.True(t, changed)
	assert.Equal(t, 4, c.Page())
	changed, _ = c.SetPageValue(true)
	assert.False(t, changed)

	changed, _ = c.SetPageValue(float32(1.5))
	assert.False(t, changed)

	changed, _ = c.SetPageValue(uint8(2))
	assert.True(t, changed)
	assert.Equal(t, 2, c.Page())

	changed, _ = c.SetPageValue(nil)
	assert.False(t, changed)
}

func TestSetPageTransitions(t *testing.T) {
	owner := &recordingOwner{}
	c := New(30, 200, owner, nil)
	r := dom.NewRenderer()

	_, disabled := r.Attr(c.prevArrow, "disabled")
	assert.True(t, disabled)

	changed, err := c.SetPage(2)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, [][2]int{{1, 2}}, owner.calls)
	assert.Equal(t, 1, c.First())
	assert.Equal(t, "2", activeLink(c))

	_, disabled = r.Attr(c.prevArrow, "disabled")
	assert.False(t, disabled)

	_, err = c.SetPage(5)
	require.NoError(t, err)
	assert.Equal(t, 3, c.First())
	assert.Equal(t, Increase, c.Direction())
	assert.Equal(t, []string{"3", "4", "5", "6", "7"}, linkPages(t, c))

	_, err = c.SetPage(7)
	require.NoError(t, err)
	_, disabled = r.Attr(c.nextArrow, "disabled")
	assert.True(t, disabled)

	_, err = c.SetPage(1)
	require.NoError(t, err)
	assert.Equal(t, Decrease, c.Direction())
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, linkPages(t, c))
}

func TestSetPageRollsBackOnOwnerError(t *testing.T) {
	boom := errors.New("not loaded")
	owner := &recordingOwner{err: boom}
	c := New(30, 200, owner, nil)

	changed, err := c.SetPage(6)
	assert.ErrorIs(t, err, boom)
	assert.False(t, changed)
	assert.Equal(t, 1, c.Page())
	assert.Equal(t, 1, c.First())
	assert.Equal(t, "1", activeLink(c))
}

func TestArrowsAndLinks(t *testing.T) {
	c := New(10, 100, nil, nil)

	require.NoError(t, c.Previous())
	assert.Equal(t, 1, c.Page())

	require.NoError(t, c.Next())
	assert.Equal(t, 2, c.Page())

	require.NoError(t, c.ClickLink(4))
	assert.Equal(t, 5, c.Page())

	require.NoError(t, c.ClickLink(9))
	assert.Equal(t, 5, c.Page())
}

func TestClickEventsNavigate(t *testing.T) {
	events := dom.NewEvents()
	var requested []int
	c := New(10, 100, nil, nil)
	c.Bind(events, "grid-1", func(page int) error {
		requested = append(requested, page)
		_, err := c.SetPage(page)
		return err
	})

	events.Dispatch(c.nextArrow, "click")
	assert.Equal(t, 2, c.Page())

	third := dom.Find(c.Node(), dom.ByAttr("data-page", "3"))
	require.NotNil(t, third)
	events.Dispatch(third.FirstChild, "click")
	assert.Equal(t, 3, c.Page())

	// moving to page 6 re-renders the window; the new links must be live
	_, err := c.SetPage(6)
	require.NoError(t, err)
	eight := dom.Find(c.Node(), dom.ByAttr("data-page", "8"))
	require.NotNil(t, eight)
	events.Dispatch(eight, "click")
	assert.Equal(t, 8, c.Page())
	assert.Equal(t, []int{2, 3, 8}, requested)

	c.Destroy()
	assert.Zero(t, events.Count("grid-1"))
}

func TestSetTotalClampsCurrent(t *testing.T) {
	c := New(10, 100, nil, nil)
	_, err := c.SetPage(10)
	require.NoError(t, err)

	c.SetTotal(35)
	assert.Equal(t, 4, c.NumberOfPages())
	assert.Equal(t, 4, c.NumberOfLinks())
	assert.Equal(t, 4, c.Page())
	assert.Equal(t, []string{"1", "2", "3", "4"}, linkPages(t, c))
}

func TestWindow(t *testing.T) {
	c := New(30, 200, nil, nil)
	start, count := c.Window(3)
	assert.Equal(t, 60, start)
	assert.Equal(t, 30, count)
}

func TestParseArea(t *testing.T) {
	area, err := ParseArea("")
	require.NoError(t, err)
	assert.Equal(t, AreaNone, area)
	assert.False(t, area.Enabled())

	area, err = ParseArea("Below")
	require.NoError(t, err)
	assert.Equal(t, AreaBelow, area)
	assert.True(t, area.Enabled())

	_, err = ParseArea("sideways")
	assert.Error(t, err)
}

func TestPageCache(t *testing.T) {
	r := dom.NewRenderer()
	cache := NewPageCache()

	cache.Put(1, dom.NewFragment())
	assert.Zero(t, cache.Len())

	frag := dom.NewFragment(r.Create("tr"), r.Create("tr"))
	cache.Put(3, frag)
	cache.Put(1, dom.NewFragment(r.Create("tr")))

	got, ok := cache.Get(3)
	require.True(t, ok)
	assert.Same(t, frag, got)
	assert.True(t, cache.Has(1))
	assert.Equal(t, []int{1, 3}, cache.Pages())

	cache.Clear()
	assert.Zero(t, cache.Len())
	assert.False(t, cache.Has(3))
}
