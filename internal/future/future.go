// Package future provides a single-resolution completion object.
//
// A Future settles exactly once, either resolved with a value or rejected
// with an error. There is no way to cancel the producer; Wait only stops
// waiting when its context ends.
package future

import (
	"context"
	"sync"
)

// Future is a one-shot completion signal carrying a value or an error.
type Future struct {
	done      chan struct{}
	once      sync.Once
	mutex     sync.Mutex
	value     interface{}
	err       error
	callbacks []func(interface{}, error)
}

// New creates a pending future.
func New() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a future already resolved with v.
func Resolved(v interface{}) *Future {
	f := New()
	f.Resolve(v)
	return f
}

// Rejected returns a future already rejected with err.
func Rejected(err error) *Future {
	f := New()
	f.Reject(err)
	return f
}

// Resolve settles the future with v. It reports false if the future was
// already settled.
func (f *Future) Resolve(v interface{}) bool {
	return f.settle(v, nil)
}

// Reject settles the future with err. It reports false if the future was
// already settled.
func (f *Future) Reject(err error) bool {
	return f.settle(nil, err)
}

func (f *Future) settle(v interface{}, err error) bool {
	settled := false
	f.once.Do(func() {
		f.mutex.Lock()
		f.value, f.err = v, err
		callbacks := f.callbacks
		f.callbacks = nil
		close(f.done)
		f.mutex.Unlock()

		for _, cb := range callbacks {
			cb(v, err)
		}
		settled = true
	})
	return settled
}

// Done is closed once the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has been resolved or rejected.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the future settles or ctx ends.
func (f *Future) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the settled value and error. Before settlement both are nil.
func (f *Future) Result() (interface{}, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.value, f.err
}

// Then registers fn to run once the future settles. If it already has, fn
// runs immediately on the calling goroutine; otherwise it runs on the
// goroutine that settles the future.
func (f *Future) Then(fn func(interface{}, error)) {
	if fn == nil {
		return
	}
	f.mutex.Lock()
	select {
	case <-f.done:
		v, err := f.value, f.err
		f.mutex.Unlock()
		fn(v, err)
		return
	default:
	}
	f.callbacks = append(f.callbacks, fn)
	f.mutex.Unlock()
}
