// Package pagination computes page counts and the sliding window of page
// links, and drives page transitions for a grid.
package pagination

import (
	"math"
	"strconv"

	"github.com/conneroisu/templgrid/internal/dom"
	"github.com/spf13/cast"
	"golang.org/x/net/html"
)

// MaxLinks is the largest number of page links shown at once.
const MaxLinks = 5

// Owner renders pages on behalf of the controller. LoadBody is called after
// the current page moved from prev to next; an error rolls the move back.
type Owner interface {
	LoadBody(prev, next int) error
}

// OwnerFunc adapts a function to Owner.
type OwnerFunc func(prev, next int) error

// LoadBody calls f.
func (f OwnerFunc) LoadBody(prev, next int) error { return f(prev, next) }

// Configure decides the effective rows per page and whether a controller is
// needed at all. Disabled pagination or a non-positive rowsPerPage puts every
// row on one page. A total that fits on one page needs no controller.
func Configure(enabled bool, rowsPerPage, total int) (int, bool) {
	if !enabled || rowsPerPage <= 0 {
		return 0, false
	}
	if total <= rowsPerPage {
		return rowsPerPage, false
	}
	return rowsPerPage, true
}

// Pages returns ceil(total/rowsPerPage), or 1 when rowsPerPage is unbounded.
func Pages(rowsPerPage, total int) int {
	if rowsPerPage <= 0 {
		return 1
	}
	if total <= 0 {
		return 0
	}
	return (total + rowsPerPage - 1) / rowsPerPage
}

// Controller is the page state machine plus its pagination bar. It is not
// safe for concurrent use; the grid serializes access.
type Controller struct {
	rowsPerPage int
	total       int
	pages       int
	links       int
	current     int
	first       int
	direction   Direction

	owner    Owner
	renderer dom.Renderer
	events   *dom.Events
	eventID  string
	navigate func(page int) error

	root      *html.Node
	prevArrow *html.Node
	nextArrow *html.Node
	linkList  *html.Node
	linkNodes []*html.Node
}

// New creates a controller positioned on page 1 and builds its bar.
func New(rowsPerPage, total int, owner Owner, r dom.Renderer) *Controller {
	if r == nil {
		r = dom.NewRenderer()
	}
	c := &Controller{
		rowsPerPage: rowsPerPage,
		owner:       owner,
		renderer:    r,
		current:     1,
	}
	c.navigate = c.setPage
	c.build()
	c.SetTotal(total)
	return c
}

// Bind registers click handlers for the arrows and links under eventID.
// navigate replaces the target of those handlers; nil keeps SetPage.
func (c *Controller) Bind(events *dom.Events, eventID string, navigate func(page int) error) {
	c.unbind()
	c.events = events
	c.eventID = eventID
	if navigate != nil {
		c.navigate = navigate
	}
	if c.events == nil {
		return
	}
	c.events.On(c.eventID, c.prevArrow, "click", "previous", func(*html.Node) { _ = c.Previous() })
	c.events.On(c.eventID, c.nextArrow, "click", "next", func(*html.Node) { _ = c.Next() })
	c.bindLinks()
}

// SetTotal recomputes the page and link counts for a new row total. The
// current page is clamped into range.
func (c *Controller) SetTotal(total int) {
	c.total = total
	c.pages = Pages(c.rowsPerPage, total)
	c.links = c.pages
	if c.links > MaxLinks {
		c.links = MaxLinks
	}
	if c.current > c.pages {
		c.current = c.pages
	}
	if c.current < 1 {
		c.current = 1
	}
	c.first = c.AlignFirst(c.current)
	c.renderLinks(Still)
	c.updateArrows()
}

// Page returns the current page.
func (c *Controller) Page() int { return c.current }

// NumberOfPages returns the page count.
func (c *Controller) NumberOfPages() int { return c.pages }

// NumberOfLinks returns the size of the link window.
func (c *Controller) NumberOfLinks() int { return c.links }

// RowsPerPage returns the page size.
func (c *Controller) RowsPerPage() int { return c.rowsPerPage }

// First returns the leftmost page link currently shown.
func (c *Controller) First() int { return c.first }

// Direction returns the direction of the last link window move.
func (c *Controller) Direction() Direction { return c.direction }

// Window returns the start index and row count of page in the record store.
func (c *Controller) Window(page int) (start, count int) {
	return (page - 1) * c.rowsPerPage, c.rowsPerPage
}

// AlignFirst returns the leftmost page link of the window that shows page.
func (c *Controller) AlignFirst(page int) int {
	half := c.links / 2
	switch {
	case page <= half:
		return 1
	case page >= c.pages-half:
		first := c.pages - c.links + 1
		if first < 1 {
			return 1
		}
		return first
	default:
		return page - half
	}
}

// SetPage moves to page n. It reports false without error when n is out of
// range or already current. If the owner fails to render the page the move
// is undone and the owner's error returned.
func (c *Controller) SetPage(n int) (bool, error) {
	if n < 1 || n > c.pages || n == c.current {
		return false, nil
	}

	prev := c.current
	c.current = n
	if c.owner != nil {
		if err := c.owner.LoadBody(prev, n); err != nil {
			c.current = prev
			return false, err
		}
	}

	c.updateArrows()
	if first := c.AlignFirst(n); first != c.AlignFirst(prev) {
		c.first = first
		if n > prev {
			c.renderLinks(Increase)
		} else {
			c.renderLinks(Decrease)
		}
	} else {
		c.markActive()
	}
	return true, nil
}

// SetPageValue is SetPage for untyped input. Non-numeric and fractional
// values are ignored.
func (c *Controller) SetPageValue(v interface{}) (bool, error) {
	n, ok := pageNumber(v)
	if !ok {
		return false, nil
	}
	return c.SetPage(n)
}

// Previous moves one page back.
func (c *Controller) Previous() error {
	if c.current <= 1 {
		return nil
	}
	return c.navigate(c.current - 1)
}

// Next moves one page forward.
func (c *Controller) Next() error {
	if c.current >= c.pages {
		return nil
	}
	return c.navigate(c.current + 1)
}

// ClickLink navigates to the i-th link of the current window, counted
// from zero.
func (c *Controller) ClickLink(i int) error {
	if i < 0 || i >= c.links {
		return nil
	}
	return c.navigate(c.first + i)
}

// Node returns the pagination bar.
func (c *Controller) Node() *html.Node { return c.root }

// Destroy detaches the bar and drops its handlers.
func (c *Controller) Destroy() {
	c.unbind()
	c.renderer.Remove(c.root)
}

func (c *Controller) setPage(n int) error {
	_, err := c.SetPage(n)
	return err
}

func (c *Controller) build() {
	r := c.renderer
	c.root = r.Create("nav", dom.A("class", "grid-pagination"), dom.A("aria-label", "pagination"))
	c.prevArrow = r.Create("button", dom.A("type", "button"), dom.A("class", "grid-page-prev"), dom.A("data-page-action", "previous"))
	r.Append(c.prevArrow, r.Text("‹"))
	c.linkList = r.Create("ul", dom.A("class", "grid-page-links"))
	c.nextArrow = r.Create("button", dom.A("type", "button"), dom.A("class", "grid-page-next"), dom.A("data-page-action", "next"))
	r.Append(c.nextArrow, r.Text("›"))

	r.Append(c.root, c.prevArrow)
	r.Append(c.root, c.linkList)
	r.Append(c.root, c.nextArrow)
}

func (c *Controller) renderLinks(direction Direction) {
	r := c.renderer
	if c.events != nil {
		for _, link := range c.linkNodes {
			c.events.OffNode(c.eventID, link)
		}
	}
	for _, item := range dom.Children(c.linkList) {
		r.Remove(item)
	}

	c.direction = direction
	r.SetAttr(c.linkList, "data-direction", direction.String())

	c.linkNodes = c.linkNodes[:0]
	for i := 0; i < c.links; i++ {
		page := strconv.Itoa(c.first + i)
		item := r.Create("li")
		link := r.Create("a", dom.A("class", "grid-page-link"), dom.A("data-page", page), dom.A("href", "#"))
		r.Append(link, r.Text(page))
		r.Append(item, link)
		r.Append(c.linkList, item)
		c.linkNodes = append(c.linkNodes, link)
	}
	c.bindLinks()
	c.markActive()
}

func (c *Controller) bindLinks() {
	if c.events == nil {
		return
	}
	for i, link := range c.linkNodes {
		i := i
		c.events.On(c.eventID, link, "click", "link", func(*html.Node) { _ = c.ClickLink(i) })
	}
}

func (c *Controller) unbind() {
	if c.events != nil {
		c.events.OffNode(c.eventID, c.root)
	}
}

func (c *Controller) markActive() {
	for i, link := range c.linkNodes {
		active := c.first+i == c.current
		c.renderer.ToggleClass(link, "active", active)
		if active {
			c.renderer.SetAttr(link, "aria-current", "page")
		} else {
			c.renderer.RemoveAttr(link, "aria-current")
		}
	}
}

func (c *Controller) updateArrows() {
	setDisabled(c.renderer, c.prevArrow, c.current <= 1)
	setDisabled(c.renderer, c.nextArrow, c.current >= c.pages)
}

func setDisabled(r dom.Renderer, node *html.Node, disabled bool) {
	if disabled {
		r.SetAttr(node, "disabled", "")
		return
	}
	r.RemoveAttr(node, "disabled")
}

func pageNumber(v interface{}) (int, bool) {
	switch t := v.(type) {
	case nil, bool, string:
		return 0, false
	case float32:
		if float64(t) != math.Trunc(float64(t)) {
			return 0, false
		}
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
	}
	n, err := cast.ToIntE(v)
	return n, err == nil
}
