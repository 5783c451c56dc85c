package core

import "context"

// Call is the non-blocking execution mode: the same engine loop running
// on its own goroutine, exposed as a one-shot future. Retry counts,
// delays, and error classification are identical to the blocking mode
// because both run the same code path; only the scheduling differs.
type Call[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// DoAsync starts a non-streaming request without blocking the caller.
// Cancel ctx to abandon the call; the in-flight attempt observes the
// cancellation and the call completes with a cancelled error.
func DoAsync[T any](ctx context.Context, b *Backend, req *Request) *Call[T] {
	c := &Call[T]{done: make(chan struct{})}
	go func() {
		defer close(c.done)
		c.val, c.err = Do[T](ctx, b, req)
	}()
	return c
}

// Done is closed when the call has completed.
func (c *Call[T]) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the call completes or ctx is cancelled. A Wait
// cancelled by its own ctx does not cancel the underlying call; cancel
// the ctx passed to DoAsync for that.
func (c *Call[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		var zero T
		return zero, classifyTransport(ctx, ctx.Err())
	}
}
