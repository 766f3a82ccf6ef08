// Package ticket defines the Kanban ticket domain: the persisted
// Ticket record, board columns, ticket references, display-id
// derivation, and the pure functions that validate and shape ticket
// bodies (placeholder scanning, normalization, readiness evaluation).
//
// Everything here is free of I/O — persistence lives in
// internal/store, orchestration in internal/engine.
package ticket

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Ticket is the core persisted entity. Tickets are partitioned by
// repository for numbering; PrimaryKey is the opaque write key and is
// empty only for records that still live in the legacy schema
// generation (which keys on the zero-padded LegacyID instead).
// Timestamps are RFC3339 strings.
type Ticket struct {
	PrimaryKey     string `json:"primary_key,omitempty"`
	Repository     string `json:"repository,omitempty"`
	SequenceNumber int    `json:"sequence_number,omitempty"`
	DisplayID      string `json:"display_id,omitempty"`
	LegacyID       string `json:"legacy_id,omitempty"`
	Filename       string `json:"filename,omitempty"`
	Title          string `json:"title"`
	Body           string `json:"body_markdown"`
	Column         Column `json:"column_id"`
	Position       int    `json:"position"`
	MovedAt        string `json:"moved_at,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// ID returns the identifier to show users: the display id for
// repository-scoped records, the zero-padded legacy id otherwise.
func (t *Ticket) ID() string {
	if t.DisplayID != "" {
		return t.DisplayID
	}
	return t.LegacyID
}

// --- Columns ---

// Column is a named bucket on the Kanban board. Tickets in a column
// are ordered by their integer position, ascending.
type Column string

const (
	ColumnUnassigned       Column = "unassigned"
	ColumnTodo             Column = "todo"
	ColumnQA               Column = "qa"
	ColumnHumanInTheLoop   Column = "human-in-the-loop"
	ColumnWillNotImplement Column = "will-not-implement"
)

// Columns lists the well-known board columns in rendering order.
var Columns = []Column{
	ColumnUnassigned,
	ColumnTodo,
	ColumnQA,
	ColumnHumanInTheLoop,
	ColumnWillNotImplement,
}

// ColumnName returns the display name for a column id.
func ColumnName(c Column) string {
	switch c {
	case ColumnUnassigned:
		return "Unassigned"
	case ColumnTodo:
		return "To Do"
	case ColumnQA:
		return "QA"
	case ColumnHumanInTheLoop:
		return "Human in the Loop"
	case ColumnWillNotImplement:
		return "Will Not Implement"
	}
	return string(c)
}

// columnAliases maps the display names agents and board UIs use to
// canonical column ids.
var columnAliases = map[string]Column{
	"unassigned":         ColumnUnassigned,
	"backlog":            ColumnUnassigned,
	"todo":               ColumnTodo,
	"to do":              ColumnTodo,
	"to-do":              ColumnTodo,
	"qa":                 ColumnQA,
	"human-in-the-loop":  ColumnHumanInTheLoop,
	"human in the loop":  ColumnHumanInTheLoop,
	"hitl":               ColumnHumanInTheLoop,
	"will-not-implement": ColumnWillNotImplement,
	"will not implement": ColumnWillNotImplement,
}

// NormalizeColumn maps the empty column of legacy records to
// unassigned. Every read path goes through this so NULL and ""
// behave identically to "unassigned".
func NormalizeColumn(c Column) Column {
	if strings.TrimSpace(string(c)) == "" {
		return ColumnUnassigned
	}
	return c
}

var columnSlugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ResolveColumn resolves a column id or display name. Known aliases
// map to their canonical ids; anything else is accepted as a custom
// column as long as it slugs cleanly, since boards may define extra
// columns beyond the well-known set.
func ResolveColumn(s string) (Column, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", fmt.Errorf("column is required (e.g. %q or %q)", ColumnTodo, ColumnQA)
	}
	if col, ok := columnAliases[key]; ok {
		return col, nil
	}
	slug := strings.Join(strings.Fields(key), "-")
	if !columnSlugPattern.MatchString(slug) {
		return "", fmt.Errorf("invalid column %q", s)
	}
	return Column(slug), nil
}

// --- Ticket references ---

// Ref is a parsed ticket reference. Agents hand tickets back in three
// shapes: a bare number ("7"), a zero-padded number ("0007"), or a
// display id ("ACME-0007"). All three resolve to the same ticket.
type Ref struct {
	Prefix string
	Number int
}

func (r Ref) String() string {
	if r.Prefix != "" {
		return fmt.Sprintf("%s-%04d", r.Prefix, r.Number)
	}
	return strconv.Itoa(r.Number)
}

var refPattern = regexp.MustCompile(`^(?:([A-Za-z][A-Za-z0-9]*)-)?0*([0-9]{1,9})$`)

// ParseRef parses a ticket reference. Ticket numbers start at 1.
func ParseRef(s string) (Ref, error) {
	m := refPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Ref{}, fmt.Errorf("malformed ticket reference %q: want a number, a zero-padded number, or a display id like ACME-0042", s)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n == 0 {
		return Ref{}, fmt.Errorf("malformed ticket reference %q: ticket numbers start at 1", s)
	}
	return Ref{Prefix: strings.ToUpper(m[1]), Number: n}, nil
}

// --- Display ids ---

var prefixStrip = regexp.MustCompile(`[^A-Za-z0-9]`)

// RepoPrefix derives the display-id prefix from a repository
// identifier: the owner segment of "owner/name", stripped to
// alphanumerics and uppercased. "acme/web" and "acme/mobile" share
// the ACME prefix, so tickets keep a stable prefix across a
// same-owner migration.
func RepoPrefix(repository string) string {
	owner := repository
	if i := strings.IndexByte(repository, '/'); i >= 0 {
		owner = repository[:i]
	}
	p := strings.ToUpper(prefixStrip.ReplaceAllString(owner, ""))
	if p == "" {
		return "TICKET"
	}
	return p
}

// FormatDisplayID builds the human-facing id, PREFIX-NNNN.
func FormatDisplayID(repository string, number int) string {
	return fmt.Sprintf("%s-%04d", RepoPrefix(repository), number)
}

// FormatLegacyID zero-pads a global sequence number the way the
// legacy schema generation stores it.
func FormatLegacyID(number int) string {
	return fmt.Sprintf("%04d", number)
}

var repoPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*/[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateRepository checks the owner/name shape used to partition
// tickets.
func ValidateRepository(repository string) error {
	if !repoPattern.MatchString(repository) {
		return fmt.Errorf("invalid repository %q: want owner/name", repository)
	}
	return nil
}
