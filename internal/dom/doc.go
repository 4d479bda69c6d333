// Package dom holds the view-node collaborators the grid renders through:
// a Renderer that creates and rearranges golang.org/x/net/html nodes, detached
// Fragments used by the page cache, an Events registrar for click handlers and
// a Window that fans resize notifications out to registered observers.
//
// Nodes are plain *html.Node values, so any part of the tree can be
// serialized with RenderString and served as HTML.
package dom
