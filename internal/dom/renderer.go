package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Renderer creates and manipulates view nodes.
type Renderer interface {
	Create(tag string, attrs ...html.Attribute) *html.Node
	Text(s string) *html.Node
	Append(parent, child *html.Node)
	InsertBefore(parent, child, ref *html.Node)
	Remove(node *html.Node)
	Reparent(node, parent *html.Node)
	ToggleClass(node *html.Node, class string, on bool)
	HasClass(node *html.Node, class string) bool
	SetAttr(node *html.Node, key, value string)
	Attr(node *html.Node, key string) (string, bool)
	RemoveAttr(node *html.Node, key string)
}

// HTMLRenderer is the Renderer backed by golang.org/x/net/html.
type HTMLRenderer struct{}

var _ Renderer = HTMLRenderer{}

// NewRenderer returns the default renderer.
func NewRenderer() Renderer {
	return HTMLRenderer{}
}

// A builds an attribute.
func A(key, value string) html.Attribute {
	return html.Attribute{Key: key, Val: value}
}

// Create returns a new detached element.
func (HTMLRenderer) Create(tag string, attrs ...html.Attribute) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if len(attrs) > 0 {
		n.Attr = append(make([]html.Attribute, 0, len(attrs)), attrs...)
	}
	return n
}

// Text returns a new text node.
func (HTMLRenderer) Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Append adds child as the last child of parent, detaching it first.
func (HTMLRenderer) Append(parent, child *html.Node) {
	if parent == nil || child == nil {
		return
	}
	detach(child)
	parent.AppendChild(child)
}

// InsertBefore inserts child before ref. A nil ref appends.
func (r HTMLRenderer) InsertBefore(parent, child, ref *html.Node) {
	if parent == nil || child == nil {
		return
	}
	if ref == nil || ref.Parent != parent {
		r.Append(parent, child)
		return
	}
	detach(child)
	parent.InsertBefore(child, ref)
}

// Remove detaches node from its parent.
func (HTMLRenderer) Remove(node *html.Node) {
	detach(node)
}

// Reparent moves node under parent.
func (r HTMLRenderer) Reparent(node, parent *html.Node) {
	r.Append(parent, node)
}

// ToggleClass adds or removes class on node.
func (r HTMLRenderer) ToggleClass(node *html.Node, class string, on bool) {
	if node == nil || class == "" {
		return
	}
	current, _ := r.Attr(node, "class")
	classes := strings.Fields(current)

	out := classes[:0]
	found := false
	for _, c := range classes {
		if c == class {
			found = true
			if !on {
				continue
			}
		}
		out = append(out, c)
	}
	if on && !found {
		out = append(out, class)
	}

	if len(out) == 0 {
		r.RemoveAttr(node, "class")
		return
	}
	r.SetAttr(node, "class", strings.Join(out, " "))
}

// HasClass reports whether node carries class.
func (r HTMLRenderer) HasClass(node *html.Node, class string) bool {
	current, _ := r.Attr(node, "class")
	for _, c := range strings.Fields(current) {
		if c == class {
			return true
		}
	}
	return false
}

// SetAttr sets or replaces an attribute.
func (HTMLRenderer) SetAttr(node *html.Node, key, value string) {
	if node == nil {
		return
	}
	for i := range node.Attr {
		if node.Attr[i].Key == key {
			node.Attr[i].Val = value
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: key, Val: value})
}

// Attr reads an attribute.
func (HTMLRenderer) Attr(node *html.Node, key string) (string, bool) {
	if node == nil {
		return "", false
	}
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// RemoveAttr deletes an attribute.
func (HTMLRenderer) RemoveAttr(node *html.Node, key string) {
	if node == nil {
		return
	}
	out := node.Attr[:0]
	for _, a := range node.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	node.Attr = out
}

// SetHidden toggles the boolean hidden attribute.
func SetHidden(r Renderer, node *html.Node, hidden bool) {
	if hidden {
		r.SetAttr(node, "hidden", "")
		return
	}
	r.RemoveAttr(node, "hidden")
}

// IsHidden reports whether node carries the hidden attribute.
func IsHidden(r Renderer, node *html.Node) bool {
	_, ok := r.Attr(node, "hidden")
	return ok
}

// Children returns the element children of node in order.
func Children(node *html.Node) []*html.Node {
	if node == nil {
		return nil
	}
	var out []*html.Node
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the first descendant of root (root included) matching fn.
func Find(root *html.Node, fn func(*html.Node) bool) *html.Node {
	if root == nil {
		return nil
	}
	if fn(root) {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := Find(c, fn); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant of root (root included) matching fn.
func FindAll(root *html.Node, fn func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if fn(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// ByAttr matches element nodes whose attribute key equals value.
func ByAttr(key, value string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, a := range n.Attr {
			if a.Key == key && a.Val == value {
				return true
			}
		}
		return false
	}
}

// Contains reports whether node is root or one of its descendants.
func Contains(root, node *html.Node) bool {
	for n := node; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

// RenderString serializes node and its subtree.
func RenderString(node *html.Node) string {
	if node == nil {
		return ""
	}
	var sb strings.Builder
	if err := html.Render(&sb, node); err != nil {
		return ""
	}
	return sb.String()
}

func detach(node *html.Node) {
	if node != nil && node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
}
