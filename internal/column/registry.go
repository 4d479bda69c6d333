package column

import (
	"strings"
	"sync"

	"github.com/conneroisu/templgrid/internal/dom"
	gerrors "github.com/conneroisu/templgrid/internal/errors"
)

// Registry is the ordered set of columns of one grid, keyed by name.
type Registry struct {
	renderer dom.Renderer
	items    map[string]*Item
	order    []string
	mutex    sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry(r dom.Renderer) *Registry {
	if r == nil {
		r = dom.NewRenderer()
	}
	return &Registry{
		renderer: r,
		items:    make(map[string]*Item),
	}
}

// Register adds a column. Empty or duplicate names are contract violations.
// An empty value is derived from the name.
func (r *Registry) Register(name, value string) (*Item, error) {
	if strings.TrimSpace(name) == "" {
		return nil, gerrors.NewContractError(gerrors.CodeInvalidColumn, "column name must not be empty")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, exists := r.items[name]; exists {
		return nil, gerrors.DuplicateColumn(name)
	}

	if value == "" {
		value = HeaderTitle(name)
	}
	header := r.renderer.Create("th", dom.A("data-column", name), dom.A("scope", "col"))
	r.renderer.Append(header, r.renderer.Text(value))

	item := &Item{
		name:     name,
		value:    value,
		header:   header,
		renderer: r.renderer,
		owner:    r,
	}
	r.items[name] = item
	r.order = append(r.order, name)
	return item, nil
}

// Get returns the column called name.
func (r *Registry) Get(name string) (*Item, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	item, ok := r.items[name]
	return item, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// All returns every column in registration order.
func (r *Registry) All() []*Item {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]*Item, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.items[name])
	}
	return out
}

// AllNames returns every column name in registration order.
func (r *Registry) AllNames() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of columns.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.order)
}

// Remove unregisters name. Items call it from Destroy.
func (r *Registry) Remove(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.items[name]; !ok {
		return
	}
	delete(r.items, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// ResetCells forgets the tracked cells of every column.
func (r *Registry) ResetCells() {
	for _, item := range r.All() {
		item.ResetCells()
	}
}

// DestroyAll destroys every column.
func (r *Registry) DestroyAll() {
	for _, item := range r.All() {
		item.Destroy()
	}
}
