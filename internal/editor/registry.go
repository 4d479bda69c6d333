package editor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/conneroisu/templgrid/internal/dom"
	gerrors "github.com/conneroisu/templgrid/internal/errors"
	"github.com/conneroisu/templgrid/internal/future"
	"github.com/conneroisu/templgrid/internal/logging"
	"github.com/conneroisu/templgrid/internal/widgets"
	"golang.org/x/net/html"
)

// Config configures a Registry.
type Config struct {
	Renderer dom.Renderer
	Resolver Resolver
	Logger   logging.Logger
	// HasColumn reports whether a column exists. Options naming a column it
	// rejects fail the whole batch.
	HasColumn func(name string) bool
}

// Registry holds the cell-editor descriptors of one grid and the
// constructors resolved so far.
type Registry struct {
	renderer     dom.Renderer
	resolver     Resolver
	logger       logging.Logger
	hasColumn    func(string) bool
	descriptors  map[string]Descriptor
	constructors map[Kind]Constructor
	pending      map[Kind]*future.Future
	rejected     []string
	instances    int64
	mutex        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config) *Registry {
	if cfg.Renderer == nil {
		cfg.Renderer = dom.NewRenderer()
	}
	if cfg.Resolver == nil {
		cfg.Resolver = NewStaticResolver()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Registry{
		renderer:     cfg.Renderer,
		resolver:     cfg.Resolver,
		logger:       cfg.Logger.WithComponent("grid_option"),
		hasColumn:    cfg.HasColumn,
		descriptors:  make(map[string]Descriptor),
		constructors: make(map[Kind]Constructor),
		pending:      make(map[Kind]*future.Future),
	}
}

// AddOptions stores a batch of descriptors keyed by column name.
//
// An option naming an unknown column fails the whole batch before anything
// is stored. A descriptor with an unsupported kind, or one its module
// rejects, is logged and skipped; the remaining entries are still stored.
func (r *Registry) AddOptions(ctx context.Context, options map[string]Descriptor) error {
	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)

	if err := r.checkColumns(names); err != nil {
		return err
	}

	collector := gerrors.NewCollector()
	for _, name := range names {
		desc := options[name].Normalize()
		if err := r.validate(desc); err != nil {
			collector.Add(name, err)
			r.logger.Warn(ctx, err, "Rejected cell option", "column", name, "module", string(desc.Module))
			continue
		}
		r.mutex.Lock()
		r.descriptors[name] = desc
		r.mutex.Unlock()
	}

	r.mutex.Lock()
	r.rejected = collector.Keys()
	r.mutex.Unlock()
	return nil
}

// ReplaceOptions swaps the stored descriptors for options. An unknown column
// fails before anything is cleared, so the previous set stays in place.
func (r *Registry) ReplaceOptions(ctx context.Context, options map[string]Descriptor) error {
	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	if err := r.checkColumns(names); err != nil {
		return err
	}
	r.Clear()
	return r.AddOptions(ctx, options)
}

func (r *Registry) checkColumns(names []string) error {
	if r.hasColumn == nil {
		return nil
	}
	sort.Strings(names)
	for _, name := range names {
		if !r.hasColumn(name) {
			return gerrors.UnknownColumn(name)
		}
	}
	return nil
}

// validate checks the kind and, for interactive kinds, builds and discards
// one instance from the descriptor's forced and preset values.
func (r *Registry) validate(desc Descriptor) error {
	if !desc.Module.Valid() {
		return gerrors.NewDataError(gerrors.CodeUnsupportedModule,
			fmt.Sprintf("unsupported cell editor module %q", desc.Module), nil)
	}
	if !desc.Module.Interactive() {
		return nil
	}

	ctor := r.constructor(desc.Module)
	if ctor == nil {
		return nil
	}
	if _, err := ctor(r.renderer, desc.resolveArgs(nil)); err != nil {
		return gerrors.NewDataError(gerrors.CodeInvalidDescriptor, "invalid cell editor descriptor", err)
	}
	return nil
}

// constructor returns the resolved constructor for kind, falling back to
// the bundled one for validation before resolution.
func (r *Registry) constructor(kind Kind) Constructor {
	r.mutex.RLock()
	ctor, ok := r.constructors[kind]
	r.mutex.RUnlock()
	if ok {
		return ctor
	}
	ctor, _ = Builtin(kind)
	return ctor
}

// Rejected returns the columns whose descriptors the last AddOptions batch
// rejected.
func (r *Registry) Rejected() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return append([]string(nil), r.rejected...)
}

// Descriptor returns the descriptor stored for column.
func (r *Registry) Descriptor(column string) (Descriptor, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	d, ok := r.descriptors[column]
	return d, ok
}

// Columns returns the columns that have a descriptor, sorted.
func (r *Registry) Columns() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Kinds returns the interactive kinds the stored descriptors use.
func (r *Registry) Kinds() []Kind {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	seen := make(map[Kind]bool)
	var out []Kind
	for _, d := range r.descriptors {
		if d.Module.Interactive() && !seen[d.Module] {
			seen[d.Module] = true
			out = append(out, d.Module)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Resolved reports whether kind's constructor is cached.
func (r *Registry) Resolved(kind Kind) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, ok := r.constructors[kind]
	return ok
}

// RequireModules resolves the constructors of kinds that are not cached
// yet. Each kind is resolved at most once; concurrent requests share the
// in-flight resolution. When everything is already cached the returned
// future is resolved synchronously.
func (r *Registry) RequireModules(ctx context.Context, kinds []Kind) *future.Future {
	var waits []*future.Future
	started := make(map[Kind]*future.Future)

	r.mutex.Lock()
	for _, kind := range kinds {
		if !kind.Interactive() {
			continue
		}
		if _, ok := r.constructors[kind]; ok {
			continue
		}
		if p, ok := r.pending[kind]; ok {
			waits = append(waits, p)
			continue
		}
		// p settles only after the constructor has been cached, so every
		// waiter observes the cache filled.
		p := future.New()
		r.pending[kind] = p
		started[kind] = p
		waits = append(waits, p)
	}
	r.mutex.Unlock()

	for kind, p := range started {
		kind, p := kind, p
		r.resolver.Resolve(ctx, kind).Then(func(v interface{}, err error) {
			r.mutex.Lock()
			delete(r.pending, kind)
			if err == nil {
				if ctor, ok := v.(Constructor); ok {
					r.constructors[kind] = ctor
				} else {
					err = fmt.Errorf("resolver returned %T for module %q", v, kind)
				}
			}
			r.mutex.Unlock()

			if err != nil {
				p.Reject(err)
				return
			}
			p.Resolve(nil)
		})
	}

	if len(waits) == 0 {
		return future.Resolved(nil)
	}

	all := future.New()
	remaining := int32(len(waits))
	for _, w := range waits {
		w.Then(func(_ interface{}, err error) {
			if err != nil {
				all.Reject(gerrors.NewInternalError(gerrors.CodeResolveFailed, "resolving cell editor modules", err))
				return
			}
			if atomic.AddInt32(&remaining, -1) == 0 {
				all.Resolve(nil)
			}
		})
	}
	r.logger.Debug(ctx, "Resolving cell editor modules", "count", len(waits))
	return all
}

// CreateModule instantiates the editor configured for column and applies
// the cell value to it. A missing value is shown as empty.
func (r *Registry) CreateModule(column, rowID string, cellValue interface{}) (widgets.Module, error) {
	r.mutex.RLock()
	desc, ok := r.descriptors[column]
	var ctor Constructor
	if ok {
		ctor = r.constructors[desc.Module]
	}
	r.mutex.RUnlock()

	if !ok {
		return nil, gerrors.UnknownColumn(column)
	}
	if !desc.Module.Interactive() {
		return nil, gerrors.NewDataError(gerrors.CodeInvalidDescriptor,
			fmt.Sprintf("module %q is not interactive", desc.Module), nil).WithColumn(column)
	}
	if ctor == nil {
		return nil, gerrors.NewInternalError(gerrors.CodeResolveFailed,
			fmt.Sprintf("module %q has not been resolved", desc.Module), nil).WithColumn(column)
	}

	rowOpts, value := cellOptions(cellValue)
	module, err := ctor(r.renderer, desc.resolveArgs(rowOpts))
	if err != nil {
		return nil, gerrors.NewDataError(gerrors.CodeInvalidDescriptor, "building cell editor", err).
			WithColumn(column).WithContext("row", rowID)
	}
	if setter, ok := module.(widgets.ValueSetter); ok {
		if value == nil {
			value = ""
		}
		setter.SetValue(value)
	}
	r.renderer.SetAttr(module.Node(), "data-row", rowID)
	atomic.AddInt64(&r.instances, 1)
	return module, nil
}

// CreateIcon builds the static marker for an icon column.
func (r *Registry) CreateIcon(column, rowID string, cellValue interface{}) *html.Node {
	r.mutex.RLock()
	desc := r.descriptors[column]
	r.mutex.RUnlock()
	desc.Module = KindIcon

	rowOpts, value := cellOptions(cellValue)
	args := desc.resolveArgs(rowOpts)

	name := args.String("name")
	if name == "" {
		name = display(value)
	}

	class := "grid-icon"
	if name != "" {
		class += " grid-icon-" + name
	}
	node := r.renderer.Create("span", dom.A("class", class), dom.A("data-row", rowID), dom.A("aria-hidden", "true"))
	if color := args.String("color"); color != "" {
		r.renderer.SetAttr(node, "style", "color: "+color)
	}
	if title := args.String("title"); title != "" {
		r.renderer.SetAttr(node, "title", title)
	}
	return node
}

// Clear drops every descriptor. Resolved constructors stay cached.
func (r *Registry) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.descriptors = make(map[string]Descriptor)
	r.rejected = nil
}

// Instances returns how many modules CreateModule has built.
func (r *Registry) Instances() int64 {
	return atomic.LoadInt64(&r.instances)
}

func display(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
