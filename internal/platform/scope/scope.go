// Package scope binds in-flight requests to the lifetime of whatever started
// them. Closing a Scope cancels its context and guarantees that no result is
// delivered afterwards.
package scope

import (
	"context"
	"sync"
)

type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc

	// mu is held for reading while a result is delivered, so Close waits
	// for in-progress deliveries and blocks later ones.
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func New(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context is cancelled when the scope closes.
func (s *Scope) Context() context.Context { return s.ctx }

// Close cancels outstanding work and drops any result not yet delivered. It
// must not be called from inside a deliver callback.
func (s *Scope) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

func (s *Scope) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Wait blocks until every goroutine started with Go has returned.
func (s *Scope) Wait() { s.wg.Wait() }

// Go runs fn in its own goroutine with the scope's context and passes the
// result to deliver, unless the scope was closed first. It reports whether
// the work was started.
func Go[T any](s *Scope, fn func(ctx context.Context) (T, error), deliver func(T, error)) bool {
	if s.Closed() {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		v, err := fn(s.ctx)

		s.mu.RLock()
		defer s.mu.RUnlock()
		if s.closed {
			return
		}
		deliver(v, err)
	}()
	return true
}
