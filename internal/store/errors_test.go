package store

import (
	"database/sql"
	"errors"
	"testing"
)

func TestDecodeErr(t *testing.T) {
	passthrough := errors.New("disk I/O error")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"unique constraint", errors.New("constraint failed: UNIQUE constraint failed: tickets.primary_key (1555)"), ErrConflict},
		// SQLite phrases a missing column differently per statement kind.
		{"missing column in query", errors.New("SQL logic error: no such column: repository (1)"), ErrLegacySchema},
		{"missing column in insert", errors.New("SQL logic error: table tickets has no column named primary_key (1)"), ErrLegacySchema},
		{"anything else", passthrough, passthrough},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeErr(tt.in); !errors.Is(got, tt.want) {
				t.Errorf("decodeErr(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
