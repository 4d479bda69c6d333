package grid

import (
	"context"
	"fmt"
	"strconv"

	"github.com/conneroisu/templgrid/internal/dom"
	"github.com/conneroisu/templgrid/internal/editor"
	"github.com/conneroisu/templgrid/internal/logging"
	"github.com/conneroisu/templgrid/internal/model"
	"golang.org/x/net/html"
)

// loadBody is the pagination owner callback. It runs with g.mutex held,
// from inside SetPage.
func (g *Grid) loadBody(prev, next int) error {
	if err := g.requireLoaded("setPage"); err != nil {
		return err
	}
	if prev > 0 && g.body.FirstChild != nil {
		g.cache.Put(prev, dom.Detach(g.body))
	}
	g.clearSelection()
	g.rows = make(map[string]*rowRef)
	g.showPage(next)
	return nil
}

// showPage attaches page to the body, reusing its cached fragment when
// there is one.
func (g *Grid) showPage(page int) {
	op := logging.StartOperation(g.logger, "render_page")

	if frag, ok := g.cache.Get(page); ok {
		frag.Attach(g.body)
		g.restoreRows(frag)
		op.End(context.Background(), "page", page, "cached", true, "rows", frag.Len())
		return
	}

	if g.store == nil {
		op.End(context.Background(), "page", page, "rows", 0)
		return
	}
	start, count := 0, model.ToEnd
	if g.pageSize > 0 {
		start, count = (page-1)*g.pageSize, g.pageSize
	}
	records := g.store.Slice(start, count)
	for i, record := range records {
		g.buildRow(start+i, record)
	}
	op.End(context.Background(), "page", page, "cached", false, "rows", len(records))
}

func (g *Grid) buildRow(index int, record model.Row) {
	r := g.renderer
	id := g.rowID(index)
	tr := r.Create("tr", dom.A("data-row", id), dom.A("data-index", strconv.Itoa(index)))

	for _, item := range g.columns.All() {
		name := item.Name()
		td := r.Create("td", dom.A("data-column", name))
		r.Append(td, g.cellContent(name, id, record[name]))
		r.Append(tr, td)
		item.AddCellNode(td)
	}

	g.bindRow(id, tr)
	g.rows[id] = &rowRef{index: index, node: tr}
	r.Append(g.body, tr)
}

func (g *Grid) bindRow(id string, tr *html.Node) {
	if !g.selection {
		return
	}
	g.events.On(g.id, tr, "click", "select", func(*html.Node) {
		g.Select(id)
	})
}

func (g *Grid) cellContent(name, rowID string, value interface{}) *html.Node {
	desc, ok := g.options.Descriptor(name)
	if !ok {
		return g.renderer.Text(cellText(value))
	}
	if desc.Module == editor.KindIcon {
		return g.options.CreateIcon(name, rowID, value)
	}

	module, err := g.options.CreateModule(name, rowID, value)
	if err != nil {
		g.logger.Warn(context.Background(), err, "Cell editor not built", "column", name, "row", rowID)
		return g.renderer.Text(cellText(value))
	}
	return module.Node()
}

// restoreRows rebuilds the row map from a reattached fragment.
func (g *Grid) restoreRows(frag *dom.Fragment) {
	for _, node := range frag.Nodes() {
		id, ok := g.renderer.Attr(node, "data-row")
		if !ok {
			continue
		}
		raw, _ := g.renderer.Attr(node, "data-index")
		index, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		g.rows[id] = &rowRef{index: index, node: node}
	}
}

// resetBody ends the current load generation's rendering state: the body,
// the page cache, the row map, the selection and the cells tracked by every
// column.
func (g *Grid) resetBody() {
	for _, page := range g.cache.Pages() {
		frag, _ := g.cache.Get(page)
		for _, node := range frag.Nodes() {
			g.events.OffNode(g.id, node)
		}
	}
	g.cache.Clear()

	for c := g.body.FirstChild; c != nil; {
		next := c.NextSibling
		g.events.OffNode(g.id, c)
		g.renderer.Remove(c)
		c = next
	}
	g.clearSelection()
	g.rows = make(map[string]*rowRef)
	g.columns.ResetCells()
}

func cellText(v interface{}) string {
	if opts, ok := v.(map[string]interface{}); ok {
		v = opts["value"]
	}
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
