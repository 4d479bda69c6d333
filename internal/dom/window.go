package dom

import (
	"sort"
	"sync"
)

// ResizeFunc receives the new viewport size.
type ResizeFunc func(width, height int)

// Window is a process-wide resize notifier. Each observer registers under its
// own id and must deregister when it goes away.
type Window struct {
	observers map[string]ResizeFunc
	width     int
	height    int
	mutex     sync.RWMutex
}

// DefaultWindow is the shared window used when a grid is not given one.
var DefaultWindow = NewWindow()

// NewWindow creates a window with no observers.
func NewWindow() *Window {
	return &Window{observers: make(map[string]ResizeFunc)}
}

// OnResize registers fn under id, replacing any previous registration.
func (w *Window) OnResize(id string, fn ResizeFunc) {
	if fn == nil {
		return
	}
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.observers[id] = fn
}

// OffResize removes the observer registered under id.
func (w *Window) OffResize(id string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	delete(w.observers, id)
}

// Observing reports whether id is registered.
func (w *Window) Observing(id string) bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	_, ok := w.observers[id]
	return ok
}

// Observers returns the number of registered observers.
func (w *Window) Observers() int {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return len(w.observers)
}

// Size returns the last reported size.
func (w *Window) Size() (int, int) {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.width, w.height
}

// Resize records the new size and notifies every observer in id order.
func (w *Window) Resize(width, height int) {
	w.mutex.Lock()
	w.width, w.height = width, height
	ids := make([]string, 0, len(w.observers))
	for id := range w.observers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	fns := make([]ResizeFunc, len(ids))
	for i, id := range ids {
		fns[i] = w.observers[id]
	}
	w.mutex.Unlock()

	for _, fn := range fns {
		fn(width, height)
	}
}
