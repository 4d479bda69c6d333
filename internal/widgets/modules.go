package widgets

import (
	"fmt"
	"unicode/utf8"

	"github.com/conneroisu/templgrid/internal/dom"
	"golang.org/x/net/html"
)

// Toggle is an on/off switch.
type Toggle struct {
	r     dom.Renderer
	root  *html.Node
	input *html.Node
}

// NewToggle builds a toggle from checked, disabled and label.
func NewToggle(r dom.Renderer, args Args) (Module, error) {
	t := &Toggle{r: r}
	t.root = r.Create("label", dom.A("class", "grid-toggle"))
	t.input = r.Create("input", dom.A("type", "checkbox"), dom.A("role", "switch"))
	r.Append(t.root, t.input)
	if label := args.String("label"); label != "" {
		span := r.Create("span")
		r.Append(span, r.Text(label))
		r.Append(t.root, span)
	}
	if args.Bool("disabled") {
		r.SetAttr(t.input, "disabled", "")
	}
	t.SetValue(args["checked"])
	return t, nil
}

// Node implements Module.
func (t *Toggle) Node() *html.Node { return t.root }

// SetValue switches the toggle on for truthy values.
func (t *Toggle) SetValue(v interface{}) {
	if truthy(v) {
		t.r.SetAttr(t.input, "checked", "")
		return
	}
	t.r.RemoveAttr(t.input, "checked")
}

// Value reports whether the toggle is on.
func (t *Toggle) Value() interface{} {
	_, on := t.r.Attr(t.input, "checked")
	return on
}

// TextEditor is an inline text input.
type TextEditor struct {
	r         dom.Renderer
	root      *html.Node
	maxLength int
	multiline bool
}

// NewTextEditor builds a text editor from placeholder, maxLength, readonly
// and multiline.
func NewTextEditor(r dom.Renderer, args Args) (Module, error) {
	maxLength, hasMax, err := args.Int("maxLength")
	if err != nil {
		return nil, err
	}
	if hasMax && maxLength < 0 {
		return nil, fmt.Errorf("maxLength must not be negative, got %d", maxLength)
	}

	e := &TextEditor{r: r, maxLength: maxLength, multiline: args.Bool("multiline")}
	if e.multiline {
		e.root = r.Create("textarea", dom.A("class", "grid-text-editor"))
	} else {
		e.root = r.Create("input", dom.A("type", "text"), dom.A("class", "grid-text-editor"))
	}
	if p := args.String("placeholder"); p != "" {
		r.SetAttr(e.root, "placeholder", p)
	}
	if hasMax {
		r.SetAttr(e.root, "maxlength", fmt.Sprint(maxLength))
	}
	if args.Bool("readonly") {
		r.SetAttr(e.root, "readonly", "")
	}
	return e, nil
}

// Node implements Module.
func (e *TextEditor) Node() *html.Node { return e.root }

// SetValue displays v, truncated to maxLength runes when one is set.
func (e *TextEditor) SetValue(v interface{}) {
	s := display(v)
	if e.maxLength > 0 && utf8.RuneCountInString(s) > e.maxLength {
		s = string([]rune(s)[:e.maxLength])
	}
	if e.multiline {
		for c := e.root.FirstChild; c != nil; c = e.root.FirstChild {
			e.root.RemoveChild(c)
		}
		e.r.Append(e.root, e.r.Text(s))
		return
	}
	e.r.SetAttr(e.root, "value", s)
}

// Value returns the displayed text.
func (e *TextEditor) Value() interface{} {
	if e.multiline {
		if e.root.FirstChild != nil {
			return e.root.FirstChild.Data
		}
		return ""
	}
	v, _ := e.r.Attr(e.root, "value")
	return v
}

// ActionMenu is a button that opens a list of row actions. It holds no
// value.
type ActionMenu struct {
	root  *html.Node
	items []Item
}

// NewActionMenu builds a menu from items (required), label and disabled.
func NewActionMenu(r dom.Renderer, args Args) (Module, error) {
	items, err := args.Items("items")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("items must not be empty")
	}

	label := args.String("label")
	if label == "" {
		label = "Actions"
	}

	m := &ActionMenu{items: items}
	m.root = r.Create("div", dom.A("class", "grid-action-menu"))
	button := r.Create("button", dom.A("type", "button"), dom.A("aria-haspopup", "menu"))
	if args.Bool("disabled") {
		r.SetAttr(button, "disabled", "")
	}
	r.Append(button, r.Text(label))
	r.Append(m.root, button)

	list := r.Create("ul", dom.A("role", "menu"), dom.A("hidden", ""))
	for _, item := range items {
		li := r.Create("li", dom.A("role", "menuitem"), dom.A("data-action", item.Name))
		r.Append(li, r.Text(item.Label))
		r.Append(list, li)
	}
	r.Append(m.root, list)
	return m, nil
}

// Node implements Module.
func (m *ActionMenu) Node() *html.Node { return m.root }

// Items returns the menu entries.
func (m *ActionMenu) Items() []Item { return m.items }

// Checkbox is a plain checkbox.
type Checkbox struct {
	r     dom.Renderer
	root  *html.Node
	input *html.Node
}

// NewCheckbox builds a checkbox from checked, disabled and label.
func NewCheckbox(r dom.Renderer, args Args) (Module, error) {
	c := &Checkbox{r: r}
	c.root = r.Create("label", dom.A("class", "grid-checkbox"))
	c.input = r.Create("input", dom.A("type", "checkbox"))
	r.Append(c.root, c.input)
	if label := args.String("label"); label != "" {
		r.Append(c.root, r.Text(label))
	}
	if args.Bool("disabled") {
		r.SetAttr(c.input, "disabled", "")
	}
	c.SetValue(args["checked"])
	return c, nil
}

// Node implements Module.
func (c *Checkbox) Node() *html.Node { return c.root }

// SetValue checks the box for truthy values.
func (c *Checkbox) SetValue(v interface{}) {
	if truthy(v) {
		c.r.SetAttr(c.input, "checked", "")
		return
	}
	c.r.RemoveAttr(c.input, "checked")
}

// Value reports whether the box is checked.
func (c *Checkbox) Value() interface{} {
	_, on := c.r.Attr(c.input, "checked")
	return on
}

// Button is a static action button. It holds no value.
type Button struct {
	root *html.Node
}

var buttonVariants = map[string]bool{"": true, "primary": true, "secondary": true, "danger": true, "link": true}

// NewButton builds a button from label (required), variant and disabled.
func NewButton(r dom.Renderer, args Args) (Module, error) {
	label := args.String("label")
	if label == "" {
		return nil, fmt.Errorf("label must not be empty")
	}
	variant := args.String("variant")
	if !buttonVariants[variant] {
		return nil, fmt.Errorf("unknown button variant %q", variant)
	}

	class := "grid-button"
	if variant != "" {
		class += " grid-button-" + variant
	}
	b := &Button{root: r.Create("button", dom.A("type", "button"), dom.A("class", class))}
	if args.Bool("disabled") {
		r.SetAttr(b.root, "disabled", "")
	}
	r.Append(b.root, r.Text(label))
	return b, nil
}

// Node implements Module.
func (b *Button) Node() *html.Node { return b.root }

// Dropdown is a select box over a fixed list of items.
type Dropdown struct {
	r       dom.Renderer
	root    *html.Node
	options map[string]*html.Node
	value   string
}

// NewDropdown builds a dropdown from items (required), placeholder and
// disabled.
func NewDropdown(r dom.Renderer, args Args) (Module, error) {
	items, err := args.Items("items")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("items must not be empty")
	}

	d := &Dropdown{r: r, options: make(map[string]*html.Node, len(items))}
	d.root = r.Create("select", dom.A("class", "grid-dropdown"))
	if args.Bool("disabled") {
		r.SetAttr(d.root, "disabled", "")
	}
	if p := args.String("placeholder"); p != "" {
		opt := r.Create("option", dom.A("value", ""))
		r.Append(opt, r.Text(p))
		r.Append(d.root, opt)
	}
	for _, item := range items {
		opt := r.Create("option", dom.A("value", item.Name))
		r.Append(opt, r.Text(item.Label))
		r.Append(d.root, opt)
		d.options[item.Name] = opt
	}
	return d, nil
}

// Node implements Module.
func (d *Dropdown) Node() *html.Node { return d.root }

// SetValue selects the item named v. Unknown values clear the selection.
func (d *Dropdown) SetValue(v interface{}) {
	name := display(v)
	for key, opt := range d.options {
		if key == name {
			d.r.SetAttr(opt, "selected", "")
		} else {
			d.r.RemoveAttr(opt, "selected")
		}
	}
	if _, ok := d.options[name]; ok {
		d.value = name
	} else {
		d.value = ""
	}
}

// Value returns the selected item name.
func (d *Dropdown) Value() interface{} { return d.value }
