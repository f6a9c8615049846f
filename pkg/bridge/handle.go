package bridge

import (
	"context"
	"sync"
)

// cancelCell is the single-assignment cancellation slot attached to one
// in-flight query. It starts empty, is bound exactly once when the native
// statement is created, and consumed at most once by invoke. Binding and
// consumption race by nature; the mutex makes the outcome well defined.
type cancelCell struct {
	mu   sync.Mutex
	fn   func() error
	used bool
}

func (c *cancelCell) bind(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fn == nil {
		c.fn = fn
	}
}

func (c *cancelCell) invoke() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fn == nil {
		return ErrStatementNotReady
	}
	if c.used {
		return nil
	}
	c.used = true
	return c.fn()
}

// QueryHandle is one submitted query. Wait blocks for the result; Cancel
// asks the database to abandon the work.
type QueryHandle struct {
	cell *cancelCell
	done chan struct{}

	rowSet *RowSet
	err    error
}

// Wait blocks until the query finishes or ctx is done. If ctx expires
// first the query keeps running; call Cancel to stop it.
func (h *QueryHandle) Wait(ctx context.Context) (*RowSet, error) {
	select {
	case <-h.done:
		return h.rowSet, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel interrupts the in-flight query. Cancellation is asynchronous and
// best-effort: it races with normal completion, and either outcome is
// valid. Cancel fails with ErrStatementNotReady when the native statement
// has not been created yet, and repeated calls after a successful one are
// no-ops.
func (h *QueryHandle) Cancel() error {
	return h.cell.invoke()
}

// Done is closed when the query has finished, for use in select loops.
func (h *QueryHandle) Done() <-chan struct{} {
	return h.done
}
