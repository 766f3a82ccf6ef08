// Package store persists tickets in SQLite.
//
// Two schema generations exist in the wild. The current one keys
// tickets by a uuid primary_key and scopes sequence numbers per
// repository; the original one keys them by a zero-padded global id
// and knows nothing about repositories. A database keeps whichever
// generation it was created with — the store never alters an existing
// table — so every accessor has a legacy twin and reports
// ErrLegacySchema when a current-generation query hits an old table.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/boardwalklabs/boardwalk/internal/ticket"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Config holds store configuration.
type Config struct {
	DataDir string
}

// Store is the ticket database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the ticket database under cfg.DataDir with
// WAL mode, and creates the current-generation schema when no tickets
// table exists yet.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "tickets.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the schema for a fresh database. An existing tickets
// table — either generation — is left exactly as it is: adding
// repository columns to a legacy table would silently upgrade data the
// user may still read with older tooling.
func (s *Store) migrate() error {
	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='tickets'",
	).Scan(&name)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}

	schema := `
		CREATE TABLE tickets (
			primary_key     TEXT    PRIMARY KEY,
			repository      TEXT    NOT NULL,
			sequence_number INTEGER NOT NULL,
			display_id      TEXT    NOT NULL,
			legacy_id       TEXT    NOT NULL DEFAULT '',
			filename        TEXT    NOT NULL,
			title           TEXT    NOT NULL,
			body_markdown   TEXT    NOT NULL,
			column_id       TEXT    NOT NULL DEFAULT 'unassigned',
			position        INTEGER NOT NULL DEFAULT 0,
			moved_at        TEXT    NOT NULL DEFAULT '',
			created_at      TEXT    NOT NULL,
			updated_at      TEXT    NOT NULL,
			UNIQUE (repository, sequence_number)
		);

		CREATE INDEX idx_tickets_repo_column ON tickets(repository, column_id, position);
		CREATE INDEX idx_tickets_display     ON tickets(display_id);
	`
	_, err = s.db.Exec(schema)
	return err
}

// ─── Current-generation accessors ────────────────────────────────────────────

const ticketColumns = `primary_key, repository, sequence_number, display_id, legacy_id,
	filename, title, body_markdown,
	COALESCE(NULLIF(column_id, ''), 'unassigned'), position,
	COALESCE(moved_at, ''), created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*ticket.Ticket, error) {
	var t ticket.Ticket
	err := row.Scan(
		&t.PrimaryKey, &t.Repository, &t.SequenceNumber, &t.DisplayID, &t.LegacyID,
		&t.Filename, &t.Title, &t.Body,
		&t.Column, &t.Position,
		&t.MovedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, decodeErr(err)
	}
	return &t, nil
}

// GetByRepoNumber looks a ticket up by repository and sequence number.
func (s *Store) GetByRepoNumber(ctx context.Context, repository string, number int) (*ticket.Ticket, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE repository = ? AND sequence_number = ?`,
		repository, number,
	)
	return scanTicket(row)
}

// MaxSequence returns the highest sequence number allocated in a
// repository, or 0 when the repository has no tickets.
func (s *Store) MaxSequence(ctx context.Context, repository string) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence_number), 0) FROM tickets WHERE repository = ?`,
		repository,
	).Scan(&max)
	if err != nil {
		return 0, decodeErr(err)
	}
	return max, nil
}

// Insert writes a new ticket. A sequence number collision within the
// repository surfaces as ErrConflict.
func (s *Store) Insert(ctx context.Context, t *ticket.Ticket) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tickets (primary_key, repository, sequence_number, display_id, legacy_id,
			filename, title, body_markdown, column_id, position, moved_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.PrimaryKey, t.Repository, t.SequenceNumber, t.DisplayID, t.LegacyID,
		t.Filename, t.Title, t.Body, string(t.Column), t.Position, t.MovedAt, t.CreatedAt, t.UpdatedAt,
	)
	return decodeErr(err)
}

// UpdateBody replaces a ticket's body.
func (s *Store) UpdateBody(ctx context.Context, primaryKey, body, updatedAt string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tickets SET body_markdown = ?, updated_at = ? WHERE primary_key = ?`,
		body, updatedAt, primaryKey,
	)
	return checkUpdated(res, err)
}

// UpdatePlacement moves a ticket to a column position.
func (s *Store) UpdatePlacement(ctx context.Context, primaryKey string, column ticket.Column, position int, movedAt string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tickets SET column_id = ?, position = ?, moved_at = ?, updated_at = ? WHERE primary_key = ?`,
		string(column), position, movedAt, movedAt, primaryKey,
	)
	return checkUpdated(res, err)
}

// SetPosition adjusts a ticket's position without touching its column
// or moved_at. Used when reindexing siblings around an insertion.
func (s *Store) SetPosition(ctx context.Context, primaryKey string, position int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tickets SET position = ? WHERE primary_key = ?`,
		position, primaryKey,
	)
	return checkUpdated(res, err)
}

// MaxPosition returns the highest position in a repository's column,
// or -1 when the column is empty.
func (s *Store) MaxPosition(ctx context.Context, repository string, column ticket.Column) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) FROM tickets
		 WHERE repository = ? AND COALESCE(NULLIF(column_id, ''), 'unassigned') = ?`,
		repository, string(column),
	).Scan(&max)
	if err != nil {
		return 0, decodeErr(err)
	}
	return max, nil
}

// ListColumn returns a repository's column members in position order.
func (s *Store) ListColumn(ctx context.Context, repository string, column ticket.Column) ([]*ticket.Ticket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets
		 WHERE repository = ? AND COALESCE(NULLIF(column_id, ''), 'unassigned') = ?
		 ORDER BY position ASC, sequence_number ASC`,
		repository, string(column),
	)
	if err != nil {
		return nil, decodeErr(err)
	}
	defer func() { _ = rows.Close() }()

	var out []*ticket.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, decodeErr(rows.Err())
}

// ApplyMigration rewrites a ticket's repository identity and placement
// in a single statement, so a partial cross-repository move can never
// be observed.
func (s *Store) ApplyMigration(ctx context.Context, primaryKey, repository string, sequenceNumber int, displayID, filename, body string, column ticket.Column, position int, movedAt string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tickets
		 SET repository = ?, sequence_number = ?, display_id = ?, filename = ?,
		     body_markdown = ?, column_id = ?, position = ?, moved_at = ?, updated_at = ?
		 WHERE primary_key = ?`,
		repository, sequenceNumber, displayID, filename,
		body, string(column), position, movedAt, movedAt,
		primaryKey,
	)
	return checkUpdated(res, err)
}

// RepositoryKnown reports whether any ticket already belongs to the
// repository.
func (s *Store) RepositoryKnown(ctx context.Context, repository string) (bool, error) {
	var known bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tickets WHERE repository = ?)`,
		repository,
	).Scan(&known)
	if err != nil {
		return false, decodeErr(err)
	}
	return known, nil
}

// ─── Legacy accessors ────────────────────────────────────────────────────────

const legacyColumns = `id, filename, title, body_markdown,
	COALESCE(NULLIF(column_id, ''), 'unassigned'), position,
	COALESCE(moved_at, ''), created_at, updated_at`

func scanLegacy(row rowScanner) (*ticket.Ticket, error) {
	var t ticket.Ticket
	err := row.Scan(
		&t.LegacyID, &t.Filename, &t.Title, &t.Body,
		&t.Column, &t.Position,
		&t.MovedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, decodeErr(err)
	}
	return &t, nil
}

// GetByLegacyID looks a ticket up by its zero-padded global id.
func (s *Store) GetByLegacyID(ctx context.Context, legacyID string) (*ticket.Ticket, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+legacyColumns+` FROM tickets WHERE id = ?`,
		legacyID,
	)
	return scanLegacy(row)
}

// MaxLegacyNumber returns the highest numeric id in a legacy table, or
// 0 when it is empty.
func (s *Store) MaxLegacyNumber(ctx context.Context) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(CAST(id AS INTEGER)), 0) FROM tickets`,
	).Scan(&max)
	if err != nil {
		return 0, decodeErr(err)
	}
	return max, nil
}

// InsertLegacy writes a new ticket into a legacy table. An id
// collision surfaces as ErrConflict.
func (s *Store) InsertLegacy(ctx context.Context, t *ticket.Ticket) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tickets (id, filename, title, body_markdown, column_id, position, moved_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.LegacyID, t.Filename, t.Title, t.Body, string(t.Column), t.Position, t.MovedAt, t.CreatedAt, t.UpdatedAt,
	)
	return decodeErr(err)
}

// UpdateBodyLegacy replaces a legacy ticket's body.
func (s *Store) UpdateBodyLegacy(ctx context.Context, legacyID, body, updatedAt string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tickets SET body_markdown = ?, updated_at = ? WHERE id = ?`,
		body, updatedAt, legacyID,
	)
	return checkUpdated(res, err)
}

// UpdatePlacementLegacy moves a legacy ticket to a column position.
func (s *Store) UpdatePlacementLegacy(ctx context.Context, legacyID string, column ticket.Column, position int, movedAt string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tickets SET column_id = ?, position = ?, moved_at = ?, updated_at = ? WHERE id = ?`,
		string(column), position, movedAt, movedAt, legacyID,
	)
	return checkUpdated(res, err)
}

// SetPositionLegacy adjusts a legacy ticket's position.
func (s *Store) SetPositionLegacy(ctx context.Context, legacyID string, position int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tickets SET position = ? WHERE id = ?`,
		position, legacyID,
	)
	return checkUpdated(res, err)
}

// MaxPositionLegacy returns the highest position in a legacy column,
// or -1 when the column is empty. Legacy tables predate repositories,
// so the column is global.
func (s *Store) MaxPositionLegacy(ctx context.Context, column ticket.Column) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) FROM tickets
		 WHERE COALESCE(NULLIF(column_id, ''), 'unassigned') = ?`,
		string(column),
	).Scan(&max)
	if err != nil {
		return 0, decodeErr(err)
	}
	return max, nil
}

// ListColumnLegacy returns a legacy column's members in position order.
func (s *Store) ListColumnLegacy(ctx context.Context, column ticket.Column) ([]*ticket.Ticket, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+legacyColumns+` FROM tickets
		 WHERE COALESCE(NULLIF(column_id, ''), 'unassigned') = ?
		 ORDER BY position ASC, CAST(id AS INTEGER) ASC`,
		string(column),
	)
	if err != nil {
		return nil, decodeErr(err)
	}
	defer func() { _ = rows.Close() }()

	var out []*ticket.Ticket
	for rows.Next() {
		t, err := scanLegacy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, decodeErr(rows.Err())
}

func checkUpdated(res sql.Result, err error) error {
	if err != nil {
		return decodeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
