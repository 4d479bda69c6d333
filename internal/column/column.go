// Package column holds the grid's column registry. Each Item owns a header
// node and tracks every cell node produced for it, so hiding or destroying a
// column reaches cells on every page, rendered or cached.
package column

import (
	"strings"
	"sync"

	"github.com/conneroisu/templgrid/internal/dom"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Hideable is implemented by everything the grid can show and hide.
type Hideable interface {
	SetHidden(hidden bool) bool
	IsHidden() bool
}

// owner is the non-owning back reference an Item uses to unregister itself.
type owner interface {
	Remove(name string)
}

// Item is one column: its header node, the cell nodes it produced and its
// hidden state.
type Item struct {
	name     string
	value    string
	header   *html.Node
	cells    []*html.Node
	renderer dom.Renderer
	owner    owner
	mutex    sync.RWMutex
}

var _ Hideable = (*Item)(nil)

// Name returns the column name.
func (c *Item) Name() string { return c.name }

// Value returns the header content.
func (c *Item) Value() string { return c.value }

// Header returns the header node.
func (c *Item) Header() *html.Node { return c.header }

// CellNodes returns the tracked cell nodes.
func (c *Item) CellNodes() []*html.Node {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	out := make([]*html.Node, len(c.cells))
	copy(out, c.cells)
	return out
}

// SetHidden hides or shows the header and every tracked cell. It always
// reports true.
func (c *Item) SetHidden(hidden bool) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	dom.SetHidden(c.renderer, c.header, hidden)
	for _, cell := range c.cells {
		dom.SetHidden(c.renderer, cell, hidden)
	}
	return true
}

// SetHiddenValue is SetHidden for untyped input. Anything but a bool is
// rejected with false.
func (c *Item) SetHiddenValue(v interface{}) bool {
	hidden, ok := v.(bool)
	if !ok {
		return false
	}
	return c.SetHidden(hidden)
}

// IsHidden reflects the header's hidden flag.
func (c *Item) IsHidden() bool {
	return dom.IsHidden(c.renderer, c.header)
}

// AddCellNode tracks node and applies the column's current hidden state.
func (c *Item) AddCellNode(node *html.Node) {
	if node == nil {
		return
	}
	hidden := c.IsHidden()
	c.mutex.Lock()
	c.cells = append(c.cells, node)
	c.mutex.Unlock()
	dom.SetHidden(c.renderer, node, hidden)
}

// ResetCells forgets every tracked cell without touching the nodes.
func (c *Item) ResetCells() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cells = nil
}

// Destroy removes the header and every tracked cell from the tree, then
// unregisters the column from its registry.
func (c *Item) Destroy() {
	c.mutex.Lock()
	cells := c.cells
	c.cells = nil
	c.mutex.Unlock()

	c.renderer.Remove(c.header)
	for _, cell := range cells {
		c.renderer.Remove(cell)
	}
	if c.owner != nil {
		c.owner.Remove(c.name)
	}
}

// HeaderTitle derives header content from a column name: "created_at"
// becomes "Created At".
func HeaderTitle(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}
