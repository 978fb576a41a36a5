package authflow

import (
	"context"
	"sync"
)

type outcome struct {
	resp *Response
	err  error
}

// Completion is the single-resolution handle through which one request's
// eventual outcome reaches its original caller. Exactly one of Resolve or
// Reject takes effect; later calls are no-ops and the first outcome is the
// one every waiter observes. A handle that is never settled (an abandoned
// parked request) simply never delivers.
type Completion struct {
	once sync.Once
	done chan struct{}
	out  outcome
}

// NewCompletion returns an unsettled completion handle.
func NewCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Resolve settles the handle with a successful response.
func (c *Completion) Resolve(resp *Response) {
	c.settle(outcome{resp: resp})
}

// Reject settles the handle with a failure.
func (c *Completion) Reject(err error) {
	c.settle(outcome{err: err})
}

func (c *Completion) settle(o outcome) {
	c.once.Do(func() {
		c.out = o
		close(c.done)
	})
}

// Settled reports whether the handle has been resolved or rejected.
func (c *Completion) Settled() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the handle settles or ctx is done. Cancellation releases
// the waiter but does not settle the handle; a later Resolve/Reject still
// records the outcome for anyone who asks again.
func (c *Completion) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-c.done:
		return c.out.resp, c.out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
