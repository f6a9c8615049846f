package sqlfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "no semicolon unchanged",
			query: "SELECT 1",
			want:  "SELECT 1",
		},
		{
			name:  "trailing semicolon stripped",
			query: "SELECT 1;",
			want:  "SELECT 1",
		},
		{
			name:  "trailing semicolon with whitespace",
			query: "SELECT 1 ;  ",
			want:  "SELECT 1",
		},
		{
			name:  "surrounding whitespace trimmed",
			query: "  SELECT *\nFROM users\nWHERE id = 1;\n",
			want:  "SELECT *\nFROM users\nWHERE id = 1",
		},
		{
			name:  "semicolon inside string literal is data",
			query: "SELECT * FROM users WHERE name = 'a;b'",
			want:  "SELECT * FROM users WHERE name = 'a;b'",
		},
		{
			name:  "semicolon inside quoted identifier is data",
			query: `SELECT * FROM "odd;table"`,
			want:  `SELECT * FROM "odd;table"`,
		},
		{
			name:  "doubled quote escape does not end the literal",
			query: "SELECT * FROM users WHERE name = 'O''Brien; Esq.'",
			want:  "SELECT * FROM users WHERE name = 'O''Brien; Esq.'",
		},
		{
			name:  "empty query passes through",
			query: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_RejectsMultipleStatements(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{
			name:  "two statements",
			query: "SELECT 1; SELECT 2",
		},
		{
			name:  "two statements with trailing semicolon",
			query: "SELECT 1; SELECT 2;",
		},
		{
			name:  "piggybacked drop",
			query: "SELECT * FROM users; DROP TABLE users",
		},
		{
			name:  "interior semicolon after string literal",
			query: "SELECT 'done'; DELETE FROM audit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.query)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMultipleStatements)
		})
	}
}
