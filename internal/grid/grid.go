// Package grid implements the paginated data table.
//
// A Grid renders a window of a RecordStore one page at a time. Rows are built
// from the column registry and the cell-editor registry; pages the user leaves
// are detached and cached so that returning to them reuses the same nodes.
// The cache and the cell bookkeeping of the columns belong to one load
// generation: every Load or SetModel starts a new one.
//
// Structural changes (SetModel, ClearOption, adding or removing rows) leave
// the grid not loaded. Paging or rendering a not-loaded grid fails with
// errors.ErrNotLoaded until Load is called again.
package grid

import (
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/a-h/templ"
	"github.com/conneroisu/templgrid/internal/column"
	"github.com/conneroisu/templgrid/internal/dom"
	"github.com/conneroisu/templgrid/internal/editor"
	gerrors "github.com/conneroisu/templgrid/internal/errors"
	"github.com/conneroisu/templgrid/internal/future"
	"github.com/conneroisu/templgrid/internal/logging"
	"github.com/conneroisu/templgrid/internal/model"
	"github.com/conneroisu/templgrid/internal/pagination"
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// DefaultRowsPerPage is the page size used when none is configured.
const DefaultRowsPerPage = 50

// compactWidth is the viewport width below which the grid is marked compact.
const compactWidth = 640

// HeaderEntry declares one column.
type HeaderEntry struct {
	Name  string `yaml:"name" json:"name" mapstructure:"name"`
	Value string `yaml:"value" json:"value" mapstructure:"value"`
}

// Config holds construction parameters. Zero-valued collaborators are
// replaced with defaults by New.
type Config struct {
	Header         []HeaderEntry
	Model          *model.RecordStore
	RowsPerPage    int
	PaginationArea pagination.Area
	Selection      bool

	Logger   logging.Logger
	Renderer dom.Renderer
	Events   *dom.Events
	Window   *dom.Window
	Resolver editor.Resolver
}

// DefaultConfig returns a config for header with the default page size and
// no pagination bar.
func DefaultConfig(header []HeaderEntry) Config {
	return Config{
		Header:         header,
		RowsPerPage:    DefaultRowsPerPage,
		PaginationArea: pagination.AreaNone,
	}
}

type state int

const (
	stateUnattached state = iota
	stateAttached
	stateLoaded
)

// Selection is the selected row.
type Selection struct {
	ID     string
	Index  int
	Record model.Row
	Node   *html.Node
}

type rowRef struct {
	index int
	node  *html.Node
}

// Grid is the table controller.
type Grid struct {
	id        string
	renderer  dom.Renderer
	events    *dom.Events
	window    *dom.Window
	logger    logging.Logger
	selection bool
	area      pagination.Area

	rowsPerPage int
	pageSize    int

	store   *model.RecordStore
	columns *column.Registry
	options *editor.Registry
	pager   *pagination.Controller
	cache   *pagination.PageCache

	rows       map[string]*rowRef
	selected   string
	state      state
	generation uint64
	destroyed  bool

	root    *html.Node
	table   *html.Node
	headRow *html.Node
	body    *html.Node

	mutex sync.Mutex
}

// New builds a grid with one column per header entry. An empty header or a
// duplicate column name is an error.
func New(cfg Config) (*Grid, error) {
	if len(cfg.Header) == 0 {
		return nil, gerrors.ErrEmptyHeader
	}
	if cfg.Renderer == nil {
		cfg.Renderer = dom.NewRenderer()
	}
	if cfg.Events == nil {
		cfg.Events = dom.NewEvents()
	}
	if cfg.Window == nil {
		cfg.Window = dom.DefaultWindow
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.RowsPerPage < 0 {
		cfg.RowsPerPage = 0
	}

	id := uuid.NewString()
	g := &Grid{
		id:          id,
		renderer:    cfg.Renderer,
		events:      cfg.Events,
		window:      cfg.Window,
		logger:      cfg.Logger.WithComponent("grid").With("grid_id", id),
		selection:   cfg.Selection,
		area:        cfg.PaginationArea,
		rowsPerPage: cfg.RowsPerPage,
		columns:     column.NewRegistry(cfg.Renderer),
		cache:       pagination.NewPageCache(),
		rows:        make(map[string]*rowRef),
	}
	g.options = editor.NewRegistry(editor.Config{
		Renderer:  cfg.Renderer,
		Resolver:  cfg.Resolver,
		Logger:    cfg.Logger,
		HasColumn: g.columns.Has,
	})

	g.build()
	for _, h := range cfg.Header {
		item, err := g.columns.Register(h.Name, h.Value)
		if err != nil {
			return nil, err
		}
		g.renderer.Append(g.headRow, item.Header())
	}

	if cfg.Model != nil {
		g.store = cfg.Model
		g.state = stateAttached
	}
	g.configurePagination()
	g.window.OnResize(g.id, g.onResize)

	g.logger.Debug(context.Background(), "Grid created",
		"columns", g.columns.Len(), "rows_per_page", g.rowsPerPage, "area", string(g.area))
	return g, nil
}

// ID returns the grid's owner id. Row ids are derived from it.
func (g *Grid) ID() string { return g.id }

// Loaded reports whether the grid may page and render.
func (g *Grid) Loaded() bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.state == stateLoaded
}

// Attached reports whether a record store is attached.
func (g *Grid) Attached() bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.state != stateUnattached
}

// GetModel returns the attached record store.
func (g *Grid) GetModel() *model.RecordStore {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.store
}

// SetModel attaches store, dropping every page, row, selection and
// pagination state of the previous one. A nil store is ignored. The grid is
// left not loaded.
func (g *Grid) SetModel(store *model.RecordStore) {
	if store == nil {
		return
	}
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.destroyed {
		return
	}

	g.generation++
	g.resetBody()
	if g.pager != nil {
		g.pager.Destroy()
		g.pager = nil
	}
	g.store = store
	g.state = stateAttached
	g.configurePagination()

	g.logger.Info(context.Background(), "Model attached", "rows", store.Len())
}

// Load stores options, starts a new load generation and renders the current
// page once the editor modules the options need are resolved. A nil options
// map keeps the options of the previous load.
//
// An option naming an unknown column fails synchronously and leaves the grid
// unchanged. The returned future resolves with the rendered page number, or
// rejects when module resolution fails or a newer load superseded this one.
func (g *Grid) Load(ctx context.Context, options map[string]editor.Descriptor) (*future.Future, error) {
	g.mutex.Lock()
	if g.destroyed {
		g.mutex.Unlock()
		return nil, gerrors.ErrDestroyed
	}
	if options != nil {
		if err := g.options.ReplaceOptions(ctx, options); err != nil {
			g.mutex.Unlock()
			return nil, err
		}
	}

	g.generation++
	generation := g.generation
	g.resetBody()
	g.state = stateLoaded
	kinds := g.options.Kinds()
	g.mutex.Unlock()

	op := logging.StartOperation(g.logger, "load")
	result := future.New()
	g.options.RequireModules(ctx, kinds).Then(func(_ interface{}, err error) {
		if err != nil {
			op.EndWithError(ctx, err)
			result.Reject(err)
			return
		}

		g.mutex.Lock()
		page, err := g.completeLoad(generation)
		g.mutex.Unlock()

		if err != nil {
			g.logger.Warn(ctx, err, "Load not rendered", "generation", generation)
			result.Reject(err)
			return
		}
		op.End(ctx, "page", page, "generation", generation)
		result.Resolve(page)
	})
	return result, nil
}

func (g *Grid) completeLoad(generation uint64) (int, error) {
	switch {
	case g.destroyed:
		return 0, gerrors.ErrDestroyed
	case generation != g.generation:
		return 0, gerrors.ErrStaleLoad
	case g.state != stateLoaded:
		return 0, gerrors.NotLoaded("load")
	}
	page := g.page()
	g.showPage(page)
	return page, nil
}

// ClearOption drops every cell-editor option. The grid is left not loaded.
func (g *Grid) ClearOption() {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.options.Clear()
	g.invalidate()
}

// Options returns the cell-editor registry.
func (g *Grid) Options() *editor.Registry { return g.options }

// SetPage moves to page n. Out of range pages and the current page are
// ignored. A not-loaded grid fails with ErrNotLoaded.
func (g *Grid) SetPage(n int) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if err := g.requireLoaded("setPage"); err != nil {
		return err
	}
	if g.pager == nil {
		return nil
	}
	_, err := g.pager.SetPage(n)
	return err
}

// SetPageValue is SetPage for untyped input; non-numeric values are ignored.
func (g *Grid) SetPageValue(v interface{}) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if err := g.requireLoaded("setPage"); err != nil {
		return err
	}
	if g.pager == nil {
		return nil
	}
	_, err := g.pager.SetPageValue(v)
	return err
}

// Page returns the current page number.
func (g *Grid) Page() int {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.page()
}

// NumberOfPages returns the page count; an unpaged grid has one page.
func (g *Grid) NumberOfPages() int {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.pager == nil {
		return 1
	}
	return g.pager.NumberOfPages()
}

// Pagination returns the pagination controller, or nil when every row fits
// on one page.
func (g *Grid) Pagination() *pagination.Controller {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.pager
}

// CachedPages returns the page numbers held in the page cache.
func (g *Grid) CachedPages() []int {
	return g.cache.Pages()
}

// Show attaches the grid's root node to container.
func (g *Grid) Show(container *html.Node) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.renderer.Append(container, g.root)
}

// Render makes sure the current page is on screen. It fails with
// ErrNotLoaded on a not-loaded grid.
func (g *Grid) Render() error {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if err := g.requireLoaded("render"); err != nil {
		return err
	}
	if g.body.FirstChild == nil {
		g.showPage(g.page())
	}
	return nil
}

// Node returns the grid's root node.
func (g *Grid) Node() *html.Node { return g.root }

// HTML serializes the grid.
func (g *Grid) HTML() string {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return dom.RenderString(g.root)
}

// Component exposes the grid as a templ component.
func (g *Grid) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, g.HTML())
		return err
	})
}

// Destroy releases the grid: the resize observer, every event handler, the
// caches, the pagination bar and every column.
func (g *Grid) Destroy() {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.destroyed {
		return
	}

	g.window.OffResize(g.id)
	g.generation++
	g.resetBody()
	if g.pager != nil {
		g.pager.Destroy()
		g.pager = nil
	}
	g.events.OffOwner(g.id)
	g.columns.DestroyAll()
	g.options.Clear()
	g.renderer.Remove(g.root)
	g.destroyed = true
	g.state = stateUnattached

	g.logger.Debug(context.Background(), "Grid destroyed")
}

func (g *Grid) build() {
	r := g.renderer
	g.root = r.Create("div", dom.A("class", "grid"), dom.A("id", "grid-"+g.id))
	g.table = r.Create("table", dom.A("class", "grid-table"))
	thead := r.Create("thead")
	g.headRow = r.Create("tr")
	g.body = r.Create("tbody")

	r.Append(thead, g.headRow)
	r.Append(g.table, thead)
	r.Append(g.table, g.body)
	r.Append(g.root, g.table)
	if g.selection {
		r.SetAttr(g.table, "data-selectable", "true")
	}
}

// configurePagination recomputes the page size and creates, updates or
// drops the controller for the current row total.
func (g *Grid) configurePagination() {
	total := 0
	if g.store != nil {
		total = g.store.Len()
	}

	size, needed := pagination.Configure(g.area.Enabled(), g.rowsPerPage, total)
	g.pageSize = size
	if !needed {
		if g.pager != nil {
			g.pager.Destroy()
			g.pager = nil
		}
		return
	}
	if g.pager != nil {
		g.pager.SetTotal(total)
		return
	}

	g.pager = pagination.New(size, total, pagination.OwnerFunc(g.loadBody), g.renderer)
	g.pager.Bind(g.events, g.id, g.SetPage)
	if g.area == pagination.AreaAbove {
		g.renderer.InsertBefore(g.root, g.pager.Node(), g.table)
	} else {
		g.renderer.Append(g.root, g.pager.Node())
	}
}

func (g *Grid) page() int {
	if g.pager == nil {
		return 1
	}
	return g.pager.Page()
}

func (g *Grid) requireLoaded(operation string) error {
	if g.destroyed {
		return gerrors.ErrDestroyed
	}
	if g.state != stateLoaded {
		return gerrors.NotLoaded(operation)
	}
	return nil
}

// invalidate drops the loaded state after a structural change.
func (g *Grid) invalidate() {
	if g.state == stateLoaded {
		g.state = stateAttached
	}
	if g.store == nil {
		g.state = stateUnattached
	}
}

func (g *Grid) onResize(width, _ int) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	if g.destroyed {
		return
	}
	g.renderer.ToggleClass(g.root, "grid-compact", width > 0 && width < compactWidth)
}

func (g *Grid) rowID(index int) string {
	return g.id + "-" + strconv.Itoa(index)
}
