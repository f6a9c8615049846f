package bridge

import (
	"context"
	"time"

	"github.com/ekaya-inc/sqlbridge/pkg/pool"
)

// StatementTimeout is the hard upper bound on any single statement. It
// applies independently of caller cancellation, as a backstop against
// queries nothing ever cancels.
const StatementTimeout = 600 * time.Second

// executor runs the preparatory statements and the main query on one
// acquired connection. Statements are scoped to a single execution; there
// is no statement reuse across calls.
type executor struct {
	prepare []string
}

func (e *executor) run(ctx context.Context, conn *pool.Conn, query string, cell *cancelCell) (*RowSet, error) {
	// Preparatory statements run in order, fail-fast, with no
	// cancellation wiring of their own.
	for _, prep := range e.prepare {
		stmt := conn.NewStatement()
		stmt.SetTimeout(StatementTimeout)
		if _, err := stmt.Query(ctx, prep); err != nil {
			return nil, newExecError(err)
		}
	}

	stmt := conn.NewStatement()
	if cell != nil {
		cell.bind(stmt.Cancel)
	}
	stmt.SetTimeout(StatementTimeout)

	res, err := stmt.Query(ctx, query)
	if err != nil {
		return nil, newExecError(err)
	}
	return rowSetFromResult(res), nil
}
