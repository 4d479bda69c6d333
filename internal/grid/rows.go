package grid

import (
	"context"
	"sort"

	"github.com/conneroisu/templgrid/internal/model"
)

// AddRow appends record to the model. The grid is left not loaded.
func (g *Grid) AddRow(record model.Row) {
	g.AddRows(record)
}

// AddRows appends records to the model, creating one if none is attached.
// The grid is left not loaded.
func (g *Grid) AddRows(records ...model.Row) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.destroyed {
		return
	}
	if g.store == nil {
		g.store = model.NewRecordStore()
		g.state = stateAttached
	}
	g.store.AddAll(records...)
	g.configurePagination()
	g.invalidate()
}

// RemoveRow removes the row with the given id from the view and the model.
// It reports false for ids not on the current page.
func (g *Grid) RemoveRow(rowID string) bool {
	return g.RemoveRows(rowID) > 0
}

// RemoveRows removes the given rows from the view and the model and returns
// how many were removed. Called without ids it removes every row. The grid
// is left not loaded.
func (g *Grid) RemoveRows(rowIDs ...string) int {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.removeRows(rowIDs...)
}

func (g *Grid) removeRows(rowIDs ...string) int {
	if g.destroyed || g.store == nil {
		return 0
	}

	if len(rowIDs) == 0 {
		removed := g.store.Len()
		g.generation++
		g.resetBody()
		g.store.Clear()
		g.configurePagination()
		g.invalidate()
		return removed
	}

	var refs []*rowRef
	for _, id := range rowIDs {
		ref, ok := g.rows[id]
		if !ok {
			continue
		}
		delete(g.rows, id)
		if id == g.selected {
			g.clearSelection()
		}
		g.events.OffNode(g.id, ref.node)
		g.renderer.Remove(ref.node)
		refs = append(refs, ref)
	}
	if len(refs) == 0 {
		return 0
	}

	// indices shift on removal, so go from the back
	sort.Slice(refs, func(i, j int) bool { return refs[i].index > refs[j].index })
	for _, ref := range refs {
		g.store.RemoveAt(ref.index)
	}
	g.configurePagination()
	g.invalidate()

	g.logger.Debug(context.Background(), "Rows removed", "count", len(refs))
	return len(refs)
}

// RemoveSelected removes the selected row. It reports false when nothing is
// selected.
func (g *Grid) RemoveSelected() bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.selected == "" {
		return false
	}
	return g.removeRows(g.selected) > 0
}

// RowIDs returns the ids of the rows currently on screen, in index order.
func (g *Grid) RowIDs() []string {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	refs := make([]*rowRef, 0, len(g.rows))
	ids := make(map[*rowRef]string, len(g.rows))
	for id, ref := range g.rows {
		refs = append(refs, ref)
		ids[ref] = id
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].index < refs[j].index })

	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = ids[ref]
	}
	return out
}

// Select highlights the row with the given id and clears any previous
// selection. It reports false when selection is disabled or the row is not
// on screen.
func (g *Grid) Select(rowID string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if !g.selection || g.destroyed {
		return false
	}
	ref, ok := g.rows[rowID]
	if !ok {
		return false
	}
	g.clearSelection()
	g.renderer.ToggleClass(ref.node, "selected", true)
	g.renderer.SetAttr(ref.node, "aria-selected", "true")
	g.selected = rowID
	return true
}

// GetSelected returns the selected row.
func (g *Grid) GetSelected() (Selection, bool) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.selected == "" {
		return Selection{}, false
	}
	ref, ok := g.rows[g.selected]
	if !ok {
		return Selection{}, false
	}
	sel := Selection{ID: g.selected, Index: ref.index, Node: ref.node}
	if g.store != nil {
		sel.Record, _ = g.store.Get(ref.index)
	}
	return sel, true
}

func (g *Grid) clearSelection() {
	if g.selected == "" {
		return
	}
	if ref, ok := g.rows[g.selected]; ok {
		g.renderer.ToggleClass(ref.node, "selected", false)
		g.renderer.RemoveAttr(ref.node, "aria-selected")
	}
	g.selected = ""
}
