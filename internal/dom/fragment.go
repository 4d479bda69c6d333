package dom

import "golang.org/x/net/html"

// Fragment is an ordered group of detached nodes that can be reattached
// verbatim. The page cache stores one per rendered page.
type Fragment struct {
	nodes []*html.Node
}

// Detach removes every child of parent and returns them as a fragment.
func Detach(parent *html.Node) *Fragment {
	f := &Fragment{}
	if parent == nil {
		return f
	}
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		parent.RemoveChild(c)
		f.nodes = append(f.nodes, c)
		c = next
	}
	return f
}

// NewFragment wraps already detached nodes.
func NewFragment(nodes ...*html.Node) *Fragment {
	return &Fragment{nodes: nodes}
}

// Attach appends the fragment's nodes to parent in their original order.
func (f *Fragment) Attach(parent *html.Node) {
	if f == nil || parent == nil {
		return
	}
	for _, n := range f.nodes {
		detach(n)
		parent.AppendChild(n)
	}
}

// Nodes returns the fragment's nodes.
func (f *Fragment) Nodes() []*html.Node {
	if f == nil {
		return nil
	}
	out := make([]*html.Node, len(f.nodes))
	copy(out, f.nodes)
	return out
}

// Len returns the number of top-level nodes.
func (f *Fragment) Len() int {
	if f == nil {
		return 0
	}
	return len(f.nodes)
}
