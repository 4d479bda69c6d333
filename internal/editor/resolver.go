package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/conneroisu/templgrid/internal/future"
)

// Resolver looks up module constructors by kind. Resolution is
// asynchronous: the returned future settles with a Constructor.
type Resolver interface {
	Resolve(ctx context.Context, kind Kind) *future.Future
}

// StaticResolver resolves kinds against a fixed factory table on a separate
// goroutine.
type StaticResolver struct {
	factories map[Kind]Constructor
	calls     map[Kind]int
	mutex     sync.Mutex
}

// NewStaticResolver returns a resolver over the bundled widget factories.
func NewStaticResolver() *StaticResolver {
	factories := make(map[Kind]Constructor)
	for _, k := range Kinds() {
		if ctor, ok := Builtin(k); ok {
			factories[k] = ctor
		}
	}
	return &StaticResolver{factories: factories, calls: make(map[Kind]int)}
}

// Register overrides or adds the constructor for kind.
func (s *StaticResolver) Register(kind Kind, ctor Constructor) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.factories[kind] = ctor
}

// Resolve implements Resolver.
func (s *StaticResolver) Resolve(ctx context.Context, kind Kind) *future.Future {
	s.mutex.Lock()
	s.calls[kind]++
	ctor, ok := s.factories[kind]
	s.mutex.Unlock()

	f := future.New()
	go func() {
		if err := ctx.Err(); err != nil {
			f.Reject(err)
			return
		}
		if !ok {
			f.Reject(fmt.Errorf("no constructor registered for module %q", kind))
			return
		}
		f.Resolve(ctor)
	}()
	return f
}

// Calls returns how many times kind was resolved.
func (s *StaticResolver) Calls(kind Kind) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.calls[kind]
}
