package async

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
)

// A Channel is a multi-producer/multi-consumer message pipe, backed by
// either a bounded [RingQueue] or an [UnboundedQueue]. Writers and readers
// never touch each other directly; they only ever touch the backing queue
// and a condition variable used solely for the wait-for-data handshake.
//
// Once closed, a Channel never reopens. Writes after close are rejected
// silently (see [Channel.TryWrite]); reads continue to drain whatever is
// still queued before finally reporting the empty sentinel.
//
// The zero value is not usable; construct one with [NewUnboundedChannel] or
// [NewBoundedChannel].
type Channel[V any] struct {
	backend queueBackend[V]
	mu      sync.Mutex
	cond    *sync.Cond
	closed  atomic.Bool
}

type queueBackend[V any] interface {
	push(v V) bool
	pop() (V, bool)
	len() int
}

type ringBackend[V any] struct{ r *RingQueue[V] }

func (b ringBackend[V]) push(v V) bool  { return b.r.Push(v) == nil }
func (b ringBackend[V]) pop() (V, bool) { v, err := b.r.Pop(); return v, err == nil }
func (b ringBackend[V]) len() int       { return b.r.Len() }

type unboundedBackend[V any] struct{ q *UnboundedQueue[V] }

func (b unboundedBackend[V]) push(v V) bool  { b.q.Push(v); return true }
func (b unboundedBackend[V]) pop() (V, bool) { v, err := b.q.Pop(); return v, err == nil }
func (b unboundedBackend[V]) len() int       { return b.q.Len() }

// NewUnboundedChannel creates a Channel whose capacity grows on demand, via
// an [UnboundedQueue].
func NewUnboundedChannel[V any]() *Channel[V] {
	return newChannel[V](unboundedBackend[V]{NewUnboundedQueue[V]()})
}

// NewBoundedChannel creates a Channel with a fixed capacity, via a
// [RingQueue]. Writes fail (see [Channel.TryWrite]) once capacity is
// reached and no reader has caught up.
func NewBoundedChannel[V any](capacity int) *Channel[V] {
	return newChannel[V](ringBackend[V]{NewRingQueue[V](capacity)})
}

func newChannel[V any](backend queueBackend[V]) *Channel[V] {
	c := &Channel[V]{backend: backend}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// TryWrite enqueues v and reports true, unless c is closed or (for a
// bounded Channel) full, in which case it reports false and v is
// discarded. TryWrite never blocks.
func (c *Channel[V]) TryWrite(v V) bool {
	if c.closed.Load() {
		return false
	}

	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return false
	}
	ok := c.backend.push(v)
	c.mu.Unlock()

	if ok {
		c.cond.Signal()
	}
	return ok
}

// TryRead returns a value immediately if one is available, without
// blocking. The second return value is false if c currently has nothing to
// read, regardless of whether c is closed.
func (c *Channel[V]) TryRead() (V, bool) {
	c.mu.Lock()
	v, ok := c.backend.pop()
	c.mu.Unlock()
	return v, ok
}

// Wait blocks until a value is available or c is closed, whichever comes
// first. It returns (value, true) in the former case, (zero, false) in the
// latter. A Wait on a closed Channel still drains any residual elements
// before returning the empty sentinel.
func (c *Channel[V]) Wait() (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if v, ok := c.backend.pop(); ok {
			return v, true
		}
		if c.closed.Load() {
			var zero V
			return zero, false
		}
		c.cond.Wait()
	}
}

// WaitContext behaves like [Channel.Wait], except it also returns early
// with ctx.Err() if ctx is canceled before a value or close arrives.
func (c *Channel[V]) WaitContext(ctx context.Context) (V, bool, error) {
	if done := ctx.Done(); done != nil {
		stop := make(chan struct{})
		defer close(stop)
		go func() {
			select {
			case <-done:
				c.mu.Lock()
				c.cond.Broadcast()
				c.mu.Unlock()
			case <-stop:
			}
		}()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if v, ok := c.backend.pop(); ok {
			return v, true, nil
		}
		if c.closed.Load() {
			var zero V
			return zero, false, nil
		}
		if err := ctx.Err(); err != nil {
			var zero V
			return zero, false, err
		}
		c.cond.Wait()
	}
}

// Close marks c as closed. Close is idempotent: closing an already-closed
// Channel has no further effect. Every waiter blocked in [Channel.Wait] or
// [Channel.WaitContext] is woken.
func (c *Channel[V]) Close() {
	c.mu.Lock()
	c.closed.Store(true)
	c.mu.Unlock()
	c.cond.Broadcast()
}

// Closed reports whether c has been closed.
func (c *Channel[V]) Closed() bool {
	return c.closed.Load()
}

// Len returns an approximate count of elements currently queued in c.
func (c *Channel[V]) Len() int {
	c.mu.Lock()
	n := c.backend.len()
	c.mu.Unlock()
	return n
}

// Range presents c as a finite iterator that yields every value read from
// c until c is closed and drained. It is the channel's "iterator adapter".
func (c *Channel[V]) Range() iter.Seq[V] {
	return func(yield func(V) bool) {
		for {
			v, ok := c.Wait()
			if !ok || !yield(v) {
				return
			}
		}
	}
}
