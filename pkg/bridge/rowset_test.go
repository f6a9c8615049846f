package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/sqlbridge/pkg/gateway"
)

func TestRowSetFromResult_MapsColumnsByName(t *testing.T) {
	rs := rowSetFromResult(&gateway.Result{
		Columns: []gateway.Column{{Name: "id", Type: "INT4"}, {Name: "name", Type: "TEXT"}},
		Rows: [][]any{
			{int64(1), "alice"},
			{int64(2), "bob"},
		},
	})

	require.Equal(t, 2, rs.RowCount)
	assert.Equal(t, []ColumnInfo{{Name: "id", Type: "INT4"}, {Name: "name", Type: "TEXT"}}, rs.Columns)
	assert.Equal(t, Row{"id": int64(1), "name": "alice"}, rs.Rows[0])
	assert.Equal(t, Row{"id": int64(2), "name": "bob"}, rs.Rows[1])
}

func TestRowSetFromResult_EmptyResult(t *testing.T) {
	rs := rowSetFromResult(&gateway.Result{
		Columns: []gateway.Column{{Name: "id", Type: "INT4"}},
	})

	assert.Equal(t, 0, rs.RowCount)
	assert.Empty(t, rs.Rows)
	assert.Len(t, rs.Columns, 1)
}

func TestRowSetFromResult_DuplicateColumnNamesRightmostWins(t *testing.T) {
	rs := rowSetFromResult(&gateway.Result{
		Columns: []gateway.Column{{Name: "v", Type: "INT4"}, {Name: "v", Type: "TEXT"}},
		Rows:    [][]any{{int64(1), "one"}},
	})

	assert.Equal(t, Row{"v": "one"}, rs.Rows[0])
}

func TestRowSetFromResult_ShortRowLeavesMissingColumnsOut(t *testing.T) {
	rs := rowSetFromResult(&gateway.Result{
		Columns: []gateway.Column{{Name: "a", Type: "INT4"}, {Name: "b", Type: "INT4"}},
		Rows:    [][]any{{int64(1)}},
	})

	assert.Equal(t, Row{"a": int64(1)}, rs.Rows[0])
}
