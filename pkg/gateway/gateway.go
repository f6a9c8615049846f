// Package gateway defines the boundary between the connection pool and the
// native database drivers. Implementations live in subpackages (postgres,
// stdsql) and register themselves at init time, mirroring how database/sql
// drivers are wired in.
package gateway

import (
	"context"
	"fmt"
	"time"
)

// ConnectionFactory opens physical database connections. A factory is bound
// to one driver and one target database; the pool calls Open whenever it
// needs to grow.
type ConnectionFactory interface {
	// Open establishes a new physical connection. The URL carries the
	// target location and the properties carry driver options (user,
	// password, TLS mode). Open must respect ctx cancellation and return
	// a *ConnError on failure.
	Open(ctx context.Context, url string, properties map[string]string) (Connection, error)
}

// Connection is one live session with the database. Connections are not safe
// for concurrent use; the pool guarantees single-owner access between
// Acquire and Release.
type Connection interface {
	// NewStatement creates a statement bound to this connection. Creation
	// never touches the network; errors surface when the statement runs.
	NewStatement() Statement

	// Valid reports whether the session is still usable, bounded by the
	// given timeout. Implementations must not panic on a dead session.
	Valid(ctx context.Context, timeout time.Duration) bool

	// Close tears down the physical session.
	Close() error
}

// Statement runs a single query on a connection. A statement is used for
// exactly one execution; cancellation may arrive from another goroutine.
type Statement interface {
	// SetTimeout caps the execution time of the next Query call.
	SetTimeout(d time.Duration)

	// Query executes sql and materializes the full result. Parameters are
	// already inlined into the text by the caller.
	Query(ctx context.Context, sql string) (*Result, error)

	// Cancel interrupts a running Query from another goroutine. Calling
	// Cancel before Query arms the statement so a later Query returns
	// immediately with a cancellation error. Safe to call more than once.
	Cancel() error
}

// Column describes one column of a result set.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"` // driver-reported type name ("TEXT", "INT4")
}

// Result is the materialized outcome of one query. Rows are positional and
// align with Columns.
type Result struct {
	Columns []Column
	Rows    [][]any
}

// ConnError reports a failure to establish or maintain a physical
// connection. Op names the stage that failed ("open", "ping").
type ConnError struct {
	Op  string
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("%s connection: %v", e.Op, e.Err)
}

func (e *ConnError) Unwrap() error {
	return e.Err
}
