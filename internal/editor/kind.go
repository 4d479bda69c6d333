// Package editor implements the per-grid cell option registry: it maps a
// column name to a declarative cell-editor descriptor, resolves the editor
// constructors a batch of descriptors needs (asynchronously and at most once
// per kind), and builds the cell nodes for each row.
package editor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conneroisu/templgrid/internal/dom"
	"github.com/conneroisu/templgrid/internal/widgets"
)

// Kind names a supported cell-editor module.
type Kind string

const (
	KindIcon       Kind = "icon"
	KindToggle     Kind = "toggle"
	KindTextEditor Kind = "text-editor"
	KindActionMenu Kind = "action-menu"
	KindCheckbox   Kind = "checkbox"
	KindButton     Kind = "button"
	KindDropdown   Kind = "dropdown"
)

// Constructor instantiates a module from resolved properties.
type Constructor func(r dom.Renderer, args widgets.Args) (widgets.Module, error)

// moduleTable is the property table of one kind.
type moduleTable struct {
	props []string
	// finalize adjusts resolved properties before instantiation.
	finalize func(widgets.Args)
	factory  Constructor
}

var moduleTables = map[Kind]moduleTable{
	KindIcon: {
		props: []string{"name", "color", "title"},
	},
	KindToggle: {
		props:    []string{"checked", "disabled", "label"},
		finalize: coerceBools("checked", "disabled"),
		factory:  widgets.NewToggle,
	},
	KindTextEditor: {
		props: []string{"placeholder", "maxLength", "readonly", "multiline"},
		finalize: func(a widgets.Args) {
			if a["placeholder"] == nil {
				a["placeholder"] = ""
			}
			coerceBools("readonly", "multiline")(a)
		},
		factory: widgets.NewTextEditor,
	},
	KindActionMenu: {
		props:    []string{"items", "label", "disabled"},
		finalize: coerceBools("disabled"),
		factory:  widgets.NewActionMenu,
	},
	KindCheckbox: {
		props:    []string{"checked", "disabled", "label"},
		finalize: coerceBools("checked", "disabled"),
		factory:  widgets.NewCheckbox,
	},
	KindButton: {
		props:   []string{"label", "variant", "disabled"},
		factory: widgets.NewButton,
	},
	KindDropdown: {
		props:    []string{"items", "placeholder", "disabled"},
		finalize: coerceBools("disabled"),
		factory:  widgets.NewDropdown,
	},
}

func coerceBools(keys ...string) func(widgets.Args) {
	return func(a widgets.Args) {
		for _, k := range keys {
			if a[k] != nil {
				a[k] = a.Bool(k)
			}
		}
	}
}

// Kinds returns every supported kind in name order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(moduleTables))
	for k := range moduleTables {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseKind validates a module name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSpace(s))
	if _, ok := moduleTables[k]; !ok {
		return "", fmt.Errorf("unsupported module %q", s)
	}
	return k, nil
}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	_, ok := moduleTables[k]
	return ok
}

// Interactive reports whether k needs a module constructor. Icons are
// rendered statically.
func (k Kind) Interactive() bool {
	return k.Valid() && k != KindIcon
}

// Props returns the property names of k.
func (k Kind) Props() []string {
	return append([]string(nil), moduleTables[k].props...)
}

// Builtin returns the bundled constructor for k.
func Builtin(k Kind) (Constructor, bool) {
	table, ok := moduleTables[k]
	if !ok || table.factory == nil {
		return nil, false
	}
	return table.factory, true
}
