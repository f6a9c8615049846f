package bridge

import "github.com/ekaya-inc/sqlbridge/pkg/gateway"

// ColumnInfo describes one result column.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Row maps column names to values. With duplicate column names the
// rightmost column wins; select with aliases to keep both.
type Row map[string]any

// RowSet is the uniform result of one executed query. It is produced once
// and holds all rows in memory; it is not a cursor.
type RowSet struct {
	Columns  []ColumnInfo `json:"columns"`
	Rows     []Row        `json:"rows"`
	RowCount int          `json:"row_count"`
}

func rowSetFromResult(res *gateway.Result) *RowSet {
	columns := make([]ColumnInfo, len(res.Columns))
	for i, c := range res.Columns {
		columns[i] = ColumnInfo{Name: c.Name, Type: c.Type}
	}

	rows := make([]Row, 0, len(res.Rows))
	for _, values := range res.Rows {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(values) {
				row[col.Name] = values[i]
			}
		}
		rows = append(rows, row)
	}

	return &RowSet{Columns: columns, Rows: rows, RowCount: len(rows)}
}
