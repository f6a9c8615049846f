package stdsql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/sqlbridge/pkg/gateway"
)

// Statement executes one query through database/sql.
type Statement struct {
	db      *sql.DB
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
// before execution started, Query returns immediately.
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

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("read column types: %w", err)
	}
	columns := make([]gateway.Column, len(colTypes))
	for i, ct := range colTypes {
		columns[i] = gateway.Column{Name: ct.Name(), Type: ct.DatabaseTypeName()}
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			values[i] = normalizeValue(v, columns[i].Type)
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}

	return &gateway.Result{Columns: columns, Rows: data}, nil
}

// Cancel stops the running query via its context, or arms the statement so
// a later Query fails fast. database/sql has no wire-level cancel of its
// own; drivers are expected to react to context cancellation.
func (s *Statement) Cancel() error {
	s.mu.Lock()
	cancel := s.cancel
	s.canceled = true
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

// normalizeValue converts driver []byte payloads for textual columns into
// strings. The MySQL text protocol in particular returns []byte for nearly
// every column, which marshals to base64 in JSON output. Genuinely binary
// column types keep their raw bytes.
func normalizeValue(v any, dbType string) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	if isBinaryType(dbType) {
		return b
	}
	return string(b)
}

func isBinaryType(dbType string) bool {
	t := strings.ToUpper(dbType)
	return strings.Contains(t, "BLOB") ||
		strings.Contains(t, "BINARY") ||
		t == "BYTEA" ||
		t == "IMAGE"
}
