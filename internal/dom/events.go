package dom

import (
	"sort"
	"sync"

	"golang.org/x/net/html"
)

// Handler is invoked with the node the event was dispatched on.
type Handler func(target *html.Node)

type eventKey struct {
	owner string
	node  *html.Node
	event string
	key   string
}

// Events attaches named callbacks to nodes. Registrations are deduplicated
// per owner, node, event and callback key.
type Events struct {
	handlers map[eventKey]Handler
	mutex    sync.RWMutex
}

// NewEvents creates an empty registrar.
func NewEvents() *Events {
	return &Events{handlers: make(map[eventKey]Handler)}
}

// On registers fn. It returns false when the same owner, node, event and key
// are already registered; the existing handler is kept.
func (e *Events) On(owner string, node *html.Node, event, key string, fn Handler) bool {
	if node == nil || fn == nil {
		return false
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()

	k := eventKey{owner: owner, node: node, event: event, key: key}
	if _, exists := e.handlers[k]; exists {
		return false
	}
	e.handlers[k] = fn
	return true
}

// Off removes one registration.
func (e *Events) Off(owner string, node *html.Node, event, key string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.handlers, eventKey{owner: owner, node: node, event: event, key: key})
}

// OffNode removes every registration on node and its descendants made by
// owner.
func (e *Events) OffNode(owner string, node *html.Node) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for k := range e.handlers {
		if k.owner == owner && Contains(node, k.node) {
			delete(e.handlers, k)
		}
	}
}

// OffOwner removes every registration made by owner.
func (e *Events) OffOwner(owner string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for k := range e.handlers {
		if k.owner == owner {
			delete(e.handlers, k)
		}
	}
}

// Count returns the number of registrations held for owner.
func (e *Events) Count(owner string) int {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	n := 0
	for k := range e.handlers {
		if k.owner == owner {
			n++
		}
	}
	return n
}

// Dispatch fires event on node and bubbles it up through the node's
// ancestors. Handlers run outside the registrar lock, innermost node first
// and in owner/key order per node. It returns the number of handlers run.
func (e *Events) Dispatch(node *html.Node, event string) int {
	type match struct {
		k  eventKey
		fn Handler
	}

	var calls []match
	e.mutex.RLock()
	for n := node; n != nil; n = n.Parent {
		var level []match
		for k, fn := range e.handlers {
			if k.node == n && k.event == event {
				level = append(level, match{k, fn})
			}
		}
		sort.Slice(level, func(i, j int) bool {
			if level[i].k.owner != level[j].k.owner {
				return level[i].k.owner < level[j].k.owner
			}
			return level[i].k.key < level[j].k.key
		})
		calls = append(calls, level...)
	}
	e.mutex.RUnlock()

	for _, c := range calls {
		c.fn(node)
	}
	return len(calls)
}
