package pagination

import (
	"sort"
	"sync"

	"github.com/conneroisu/templgrid/internal/dom"
)

// PageCache keeps the detached fragment of every page the user navigated
// away from during one load generation.
type PageCache struct {
	pages map[int]*dom.Fragment
	mutex sync.RWMutex
}

// NewPageCache creates an empty cache.
func NewPageCache() *PageCache {
	return &PageCache{pages: make(map[int]*dom.Fragment)}
}

// Put stores frag under page, replacing any previous entry. Empty fragments
// are not stored.
func (c *PageCache) Put(page int, frag *dom.Fragment) {
	if frag.Len() == 0 {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.pages[page] = frag
}

// Get returns the fragment cached for page.
func (c *PageCache) Get(page int) (*dom.Fragment, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	frag, ok := c.pages[page]
	return frag, ok
}

// Has reports whether page is cached.
func (c *PageCache) Has(page int) bool {
	_, ok := c.Get(page)
	return ok
}

// Len returns the number of cached pages.
func (c *PageCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.pages)
}

// Pages returns the cached page numbers in ascending order.
func (c *PageCache) Pages() []int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	out := make([]int, 0, len(c.pages))
	for p := range c.pages {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// Clear drops every entry.
func (c *PageCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.pages = make(map[int]*dom.Fragment)
}
