package bridge

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ekaya-inc/sqlbridge/pkg/gateway"
)

// fakeFactory is an in-memory gateway with scriptable failures and gates.
// Gates are channels the fake blocks on until the test closes them; the
// matching *Started channels signal that a call reached the gate.
type fakeFactory struct {
	mu        sync.Mutex
	opened    int
	openErr   error
	queryErr  error
	conns     []*fakeGatewayConn
	lastURL   string
	lastProps map[string]string
	cancels   int
	timeout   time.Duration

	openGate     chan struct{}
	openStarted  chan struct{}
	queryGate    chan struct{}
	queryStarted chan struct{}
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		openStarted:  make(chan struct{}, 16),
		queryStarted: make(chan struct{}, 16),
	}
}

func (f *fakeFactory) Open(ctx context.Context, url string, props map[string]string) (gateway.Connection, error) {
	f.mu.Lock()
	gate := f.openGate
	f.mu.Unlock()

	f.openStarted <- struct{}{}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.opened++
	f.lastURL = url
	f.lastProps = props
	c := &fakeGatewayConn{factory: f}
	f.conns = append(f.conns, c)
	return c, nil
}

func (f *fakeFactory) openedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened
}

func (f *fakeFactory) cancelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancels
}

func (f *fakeFactory) conn(i int) *fakeGatewayConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conns[i]
}

func (f *fakeFactory) setOpenErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openErr = err
}

func (f *fakeFactory) setQueryErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryErr = err
}

func (f *fakeFactory) lastProperties() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastProps
}

func (f *fakeFactory) lastOpenURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastURL
}

func (f *fakeFactory) lastTimeout() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timeout
}

func (f *fakeFactory) noteCancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeFactory) noteTimeout(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeout = d
}

type fakeGatewayConn struct {
	factory *fakeFactory
	closed  atomic.Bool
	invalid atomic.Bool

	mu      sync.Mutex
	queries []string
}

func (c *fakeGatewayConn) recordQuery(sql string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, sql)
}

func (c *fakeGatewayConn) recorded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.queries...)
}

func (c *fakeGatewayConn) NewStatement() gateway.Statement {
	return &fakeStatement{conn: c}
}

func (c *fakeGatewayConn) Valid(context.Context, time.Duration) bool {
	return !c.closed.Load() && !c.invalid.Load()
}

func (c *fakeGatewayConn) Close() error {
	c.closed.Store(true)
	return nil
}

type fakeStatement struct {
	conn    *fakeGatewayConn
	timeout time.Duration

	mu       sync.Mutex
	cancel   context.CancelFunc
	canceled bool
}

func (s *fakeStatement) SetTimeout(d time.Duration) {
	s.timeout = d
	s.conn.factory.noteTimeout(d)
}

func (s *fakeStatement) Query(ctx context.Context, sql string) (*gateway.Result, error) {
	s.conn.recordQuery(sql)

	f := s.conn.factory
	f.mu.Lock()
	queryErr := f.queryErr
	gate := f.queryGate
	f.mu.Unlock()

	if queryErr != nil {
		return nil, queryErr
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return nil, context.Canceled
	}
	s.cancel = cancel
	s.mu.Unlock()

	f.queryStarted <- struct{}{}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &gateway.Result{
		Columns: []gateway.Column{{Name: "result", Type: "INT4"}},
		Rows:    [][]any{{int64(1)}},
	}, nil
}

func (s *fakeStatement) Cancel() error {
	s.mu.Lock()
	s.canceled = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.conn.factory.noteCancel()
	return nil
}
