package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by Store methods. Callers branch on these
// with errors.Is; the raw driver error stays wrapped underneath.
var (
	// ErrNotFound means no ticket matched the lookup.
	ErrNotFound = errors.New("ticket not found")

	// ErrConflict means an insert collided with an existing identifier.
	// The identifier allocator retries on this.
	ErrConflict = errors.New("identifier already taken")

	// ErrLegacySchema means the database predates the repository-scoped
	// schema: the query referenced a column the table does not have.
	// Callers fall back to the legacy access path for that operation.
	ErrLegacySchema = errors.New("legacy schema")
)

// decodeErr classifies a driver error at the store boundary. The
// modernc driver exposes SQLite failures only through the message
// text, so the conditions callers must distinguish are matched by
// their fixed message phrasings. SQLite reports a missing column as
// "no such column" in queries but as "table ... has no column named"
// in INSERTs, so the legacy-schema case needs both. Everything else
// passes through unchanged.
func decodeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case strings.Contains(msg, "no such column"),
		strings.Contains(msg, "has no column named"):
		return fmt.Errorf("%w: %v", ErrLegacySchema, err)
	}
	return err
}
