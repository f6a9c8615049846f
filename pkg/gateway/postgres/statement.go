package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ekaya-inc/sqlbridge/pkg/gateway"
	"github.com/ekaya-inc/sqlbridge/pkg/logging"
)

const cancelRequestTimeout = 5 * time.Second

// Statement executes one query on a pgx session.
type Statement struct {
	conn    *pgx.Conn
	log     *zap.Logger
	timeout time.Duration

	mu       sync.Mutex
	cancel   context.CancelFunc
	canceled bool
}

var _ gateway.Statement = (*Statement)(nil)

// SetTimeout bounds the next Query call. Zero means no limit.
func (s *Statement) SetTimeout(d time.Duration) {
	s.timeout = d
}

// Query runs the SQL and collects every row. If Cancel armed the statement
// before execution started, Query returns immediately without touching the
// server.
func (s *Statement) Query(ctx context.Context, query string) (*gateway.Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
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

	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
	}()

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]gateway.Column, len(fields))
	for i, fd := range fields {
		columns[i] = gateway.Column{
			Name: fd.Name,
			Type: typeNameFromOID(fd.DataTypeOID),
		}
	}

	var data [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		row := make([]any, len(values))
		copy(row, values)
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}

	return &gateway.Result{Columns: columns, Rows: data}, nil
}

// Cancel stops the running query, or arms the statement so a later Query
// fails fast. For a running query it first asks the server to abandon the
// work with a wire-level cancel request, then tears down the local call.
// The wire request is best-effort: local cancellation happens regardless.
func (s *Statement) Cancel() error {
	s.mu.Lock()
	cancel := s.cancel
	s.canceled = true
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}

	ctx, done := context.WithTimeout(context.Background(), cancelRequestTimeout)
	defer done()
	if err := s.conn.PgConn().CancelRequest(ctx); err != nil {
		s.log.Debug("cancel request failed, falling back to local cancellation",
			zap.String("error", logging.SanitizeError(err)))
	}
	cancel()
	return nil
}
