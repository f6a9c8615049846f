// Package pool provides a bounded connection pool with idle eviction.
//
// The pool owns physical connections but knows nothing about how they are
// made: creation, validation and teardown are delegated to Hooks. Acquire
// hands out single-owner connections; Release returns them. A background
// evictor trims connections that idle past their timeouts, and shutdown
// waits for every borrowed connection to come home before destroying it.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrClosed is returned by Acquire once shutdown has begun.
	ErrClosed = errors.New("pool is closed")

	// ErrAcquireTimeout is returned when no connection slot became free
	// within Options.AcquireTimeout.
	ErrAcquireTimeout = errors.New("timed out waiting for a pooled connection")
)

// Pool is a bounded set of database connections. Sizing stays inside
// [Options.Min, Options.Max]: Acquire queues on a semaphore once Max
// connections are out or idle, and the evictor trims idle connections down
// to the Min floor.
type Pool struct {
	hooks Hooks
	opts  Options
	log   *zap.Logger

	// sem holds Max permits; one is held for the lifetime of every
	// borrowed connection, so collecting all permits proves quiescence.
	sem *semaphore.Weighted

	mu      sync.Mutex
	idle    []*Conn // LIFO: most recently released on top
	numOpen int     // idle + borrowed
	closed  bool

	stopChan chan struct{}
}

// New creates a pool and starts its eviction goroutine. The pool opens no
// connections up front; the first Acquire does.
func New(hooks Hooks, opts Options, log *zap.Logger) (*Pool, error) {
	if hooks.Create == nil {
		return nil, errors.New("pool: Create hook is required")
	}
	opts = opts.normalized()
	if opts.Min > opts.Max {
		return nil, fmt.Errorf("pool: min %d exceeds max %d", opts.Min, opts.Max)
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := &Pool{
		hooks:    hooks,
		opts:     opts,
		log:      log,
		sem:      semaphore.NewWeighted(int64(opts.Max)),
		stopChan: make(chan struct{}),
	}

	if opts.EvictionInterval > 0 {
		go p.evictLoop()
	}
	return p, nil
}

// Acquire returns a connection for exclusive use, reusing an idle one when
// possible. It waits up to Options.AcquireTimeout for a slot when the pool
// is at capacity, then fails with ErrAcquireTimeout. Cancellation of ctx is
// reported as the context's own error.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	waitCtx := ctx
	if p.opts.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, p.opts.AcquireTimeout)
		defer cancel()
	}

	if err := p.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrAcquireTimeout
	}

	conn, err := p.connForPermit(waitCtx)
	if err != nil {
		p.sem.Release(1)
		return nil, err
	}
	return conn, nil
}

// connForPermit redeems one held semaphore permit for a connection: idle
// ones first, validated when TestOnBorrow is set, otherwise a fresh one
// from the Create hook. Create errors propagate unchanged and leave the
// pool usable.
func (p *Pool) connForPermit(ctx context.Context) (*Conn, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrClosed
		}
		var conn *Conn
		if n := len(p.idle); n > 0 {
			conn = p.idle[n-1]
			p.idle[n-1] = nil
			p.idle = p.idle[:n-1]
		}
		p.mu.Unlock()

		if conn == nil {
			break
		}
		if p.opts.TestOnBorrow && p.hooks.Validate != nil && !p.hooks.Validate(ctx, conn.Connection) {
			p.log.Debug("discarding idle connection that failed validation",
				zap.String("connID", conn.ID()),
			)
			p.closeConn(conn)
			continue
		}
		return conn, nil
	}

	raw, err := p.hooks.Create(ctx)
	if err != nil {
		return nil, err
	}
	conn := newConn(raw)

	p.mu.Lock()
	p.numOpen++
	open := p.numOpen
	p.mu.Unlock()

	p.log.Debug("opened connection",
		zap.String("connID", conn.ID()),
		zap.Int("open", open),
	)
	return conn, nil
}

// Release returns a borrowed connection to the idle set. Call it exactly
// once per successful Acquire. After shutdown has begun the connection is
// destroyed instead of idled.
func (p *Pool) Release(conn *Conn) {
	if conn == nil {
		return
	}

	p.mu.Lock()
	if p.closed {
		p.numOpen--
		p.mu.Unlock()
		p.destroy(conn)
		p.sem.Release(1)
		return
	}
	conn.lastUsed = time.Now()
	p.idle = append(p.idle, conn)
	p.mu.Unlock()
	p.sem.Release(1)
}

// closeConn destroys a connection and drops it from the open count.
func (p *Pool) closeConn(conn *Conn) {
	p.mu.Lock()
	p.numOpen--
	p.mu.Unlock()
	p.destroy(conn)
}

func (p *Pool) destroy(conn *Conn) {
	if p.hooks.Destroy != nil {
		p.hooks.Destroy(conn.Connection)
		return
	}
	_ = conn.Connection.Close()
}

// evictLoop runs until Drain closes stopChan.
func (p *Pool) evictLoop() {
	ticker := time.NewTicker(p.opts.EvictionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.evictIdle()
		case <-p.stopChan:
			return
		}
	}
}

// evictIdle removes idle connections past their timeouts. IdleTimeout always
// evicts; SoftIdleTimeout only evicts while the pool stays above Min open
// connections.
func (p *Pool) evictIdle() {
	now := time.Now()
	var victims []*Conn

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	kept := p.idle[:0]
	for _, conn := range p.idle {
		idleFor := now.Sub(conn.lastUsed)
		hard := p.opts.IdleTimeout > 0 && idleFor >= p.opts.IdleTimeout
		soft := p.opts.SoftIdleTimeout > 0 && idleFor >= p.opts.SoftIdleTimeout &&
			p.numOpen-len(victims) > p.opts.Min
		if hard || soft {
			victims = append(victims, conn)
		} else {
			kept = append(kept, conn)
		}
	}
	for i := len(kept); i < len(p.idle); i++ {
		p.idle[i] = nil
	}
	p.idle = kept
	p.numOpen -= len(victims)
	remaining := p.numOpen
	p.mu.Unlock()

	for _, conn := range victims {
		p.destroy(conn)
	}
	if len(victims) > 0 {
		p.log.Debug("evicted idle connections",
			zap.Int("count", len(victims)),
			zap.Int("remaining", remaining),
		)
	}
}

// Drain stops the evictor, rejects new acquisitions, and waits until every
// borrowed connection has been returned. It never force-closes a connection
// mid-use; ctx bounds how long to wait. Idempotent.
func (p *Pool) Drain(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	close(p.stopChan)

	// Collecting every permit proves all borrowed connections came back.
	if err := p.sem.Acquire(ctx, int64(p.opts.Max)); err != nil {
		return fmt.Errorf("drain interrupted with connections still in use: %w", err)
	}
	p.sem.Release(int64(p.opts.Max))
	return nil
}

// Clear destroys everything in the idle set. Call it after Drain;
// connections still borrowed at Drain time are destroyed on their Release
// instead.
func (p *Pool) Clear() {
	p.mu.Lock()
	victims := p.idle
	p.idle = nil
	p.numOpen -= len(victims)
	p.mu.Unlock()

	for _, conn := range victims {
		p.destroy(conn)
	}
}

// Close drains the pool and then clears the idle set. Safe to call multiple
// times.
func (p *Pool) Close(ctx context.Context) error {
	if err := p.Drain(ctx); err != nil {
		return err
	}
	p.Clear()
	p.log.Debug("pool closed")
	return nil
}

// Stats returns a point-in-time snapshot of pool occupancy.
// Safe to call concurrently.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	s := Stats{
		Open:  p.numOpen,
		Idle:  len(p.idle),
		InUse: p.numOpen - len(p.idle),
		Min:   p.opts.Min,
		Max:   p.opts.Max,
	}
	for _, conn := range p.idle {
		if idle := int(now.Sub(conn.lastUsed).Seconds()); idle > s.OldestIdleSeconds {
			s.OldestIdleSeconds = idle
		}
	}
	return s
}

// Stats contains a snapshot of pool occupancy.
type Stats struct {
	Open              int `json:"open"`
	Idle              int `json:"idle"`
	InUse             int `json:"in_use"`
	Min               int `json:"min"`
	Max               int `json:"max"`
	OldestIdleSeconds int `json:"oldest_idle_seconds"`
}
