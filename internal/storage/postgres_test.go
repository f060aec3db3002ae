package storage

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  sql.NullInt64
	}{
		{limit: 5, want: sql.NullInt64{Int64: 5, Valid: true}},
		{limit: 0, want: sql.NullInt64{}},
	}
	for _, tt := range tests {
		limit, _ := pageBounds(tt.limit, 0)
		require.Equal(t, tt.want, sqlLimit(limit))
	}

	limit, offset := pageBounds(-2, -7)
	require.Equal(t, sql.NullInt64{}, sqlLimit(limit))
	require.Zero(t, offset)
}
