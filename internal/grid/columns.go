package grid

import (
	"github.com/conneroisu/templgrid/internal/column"
)

// GetColumn returns the column called name.
func (g *Grid) GetColumn(name string) (*column.Item, bool) {
	return g.columns.Get(name)
}

// GetColumns returns every column in header order.
func (g *Grid) GetColumns() []*column.Item {
	return g.columns.All()
}

// DestroyColumn removes a column with its header and every cell it produced
// in the current load generation, cached pages included.
func (g *Grid) DestroyColumn(name string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	item, ok := g.columns.Get(name)
	if !ok {
		return false
	}
	item.Destroy()
	return true
}

// SetHiddenColumn hides or shows the named columns, or every column when no
// name is given. Unknown names are skipped.
func (g *Grid) SetHiddenColumn(hidden bool, names ...string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if len(names) == 0 {
		names = g.columns.AllNames()
	}
	for _, name := range names {
		if item, ok := g.columns.Get(name); ok {
			item.SetHidden(hidden)
		}
	}
	return true
}

// SetHiddenColumnValue is SetHiddenColumn for untyped input. A non-bool
// value is rejected with false.
func (g *Grid) SetHiddenColumnValue(v interface{}, names ...string) bool {
	hidden, ok := v.(bool)
	if !ok {
		return false
	}
	return g.SetHiddenColumn(hidden, names...)
}

// IsHiddenColumn reports whether the named column is hidden. Unknown columns
// are reported visible.
func (g *Grid) IsHiddenColumn(name string) bool {
	item, ok := g.columns.Get(name)
	if !ok {
		return false
	}
	return item.IsHidden()
}
