// Package engine implements the ticket lifecycle: creation with
// optimistic identifier allocation, body updates, Kanban moves, and
// cross-repository migration. Every operation is a short synchronous
// sequence of store round-trips; the store is the only shared state
// and a uniqueness conflict is the only concurrency primitive.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/boardwalklabs/boardwalk/internal/probe"
	"github.com/boardwalklabs/boardwalk/internal/store"
	"github.com/boardwalklabs/boardwalk/internal/ticket"
)

// Store is the persistence surface the engine drives. Every method
// pair exists in a current-generation and a legacy flavor; the engine
// switches to the legacy flavor only when the current one reports
// store.ErrLegacySchema, and only for that operation.
type Store interface {
	GetByRepoNumber(ctx context.Context, repository string, number int) (*ticket.Ticket, error)
	GetByLegacyID(ctx context.Context, legacyID string) (*ticket.Ticket, error)
	MaxSequence(ctx context.Context, repository string) (int, error)
	MaxLegacyNumber(ctx context.Context) (int, error)
	Insert(ctx context.Context, t *ticket.Ticket) error
	InsertLegacy(ctx context.Context, t *ticket.Ticket) error
	UpdateBody(ctx context.Context, primaryKey, body, updatedAt string) error
	UpdateBodyLegacy(ctx context.Context, legacyID, body, updatedAt string) error
	UpdatePlacement(ctx context.Context, primaryKey string, column ticket.Column, position int, movedAt string) error
	UpdatePlacementLegacy(ctx context.Context, legacyID string, column ticket.Column, position int, movedAt string) error
	SetPosition(ctx context.Context, primaryKey string, position int) error
	SetPositionLegacy(ctx context.Context, legacyID string, position int) error
	MaxPosition(ctx context.Context, repository string, column ticket.Column) (int, error)
	MaxPositionLegacy(ctx context.Context, column ticket.Column) (int, error)
	ListColumn(ctx context.Context, repository string, column ticket.Column) ([]*ticket.Ticket, error)
	ListColumnLegacy(ctx context.Context, column ticket.Column) ([]*ticket.Ticket, error)
	ApplyMigration(ctx context.Context, primaryKey, repository string, sequenceNumber int, displayID, filename, body string, column ticket.Column, position int, movedAt string) error
}

// timeNow is a package-level var to allow test injection.
var timeNow = time.Now

func nowRFC3339() string {
	return timeNow().UTC().Format(time.RFC3339)
}

const defaultTimeout = 20 * time.Second

// Options configures a Manager.
type Options struct {
	// Probe vouches for migration targets. When nil and the store can
	// answer repository questions itself, a store-backed probe is used.
	Probe probe.Probe

	// Timeout bounds each operation end to end. Zero means the default
	// of 20 seconds.
	Timeout time.Duration
}

// Manager orchestrates ticket lifecycle operations over a Store.
type Manager struct {
	store   Store
	probe   probe.Probe
	timeout time.Duration
}

// New creates a Manager.
func New(st Store, opts Options) *Manager {
	m := &Manager{store: st, probe: opts.Probe, timeout: opts.Timeout}
	if m.timeout <= 0 {
		m.timeout = defaultTimeout
	}
	if m.probe == nil {
		if rs, ok := st.(probe.RepositoryStore); ok {
			m.probe = probe.StoreBacked(rs)
		}
	}
	return m
}

func (m *Manager) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}

// ─── Create ──────────────────────────────────────────────────────────────────

// CreateResult is the payload of a successful ticket creation.
type CreateResult struct {
	PrimaryKey     string        `json:"primary_key,omitempty"`
	DisplayID      string        `json:"display_id"`
	SequenceNumber int           `json:"sequence_number"`
	Column         ticket.Column `json:"column"`
	Ready          bool          `json:"ready"`
	MissingItems   []string      `json:"missing_items,omitempty"`
	AutoFixed      bool          `json:"auto_fixed,omitempty"`
	MovedToTodo    bool          `json:"moved_to_todo,omitempty"`
	MoveError      string        `json:"move_error,omitempty"`
}

// Create validates and normalizes a new ticket body, allocates the
// next free sequence number with bounded optimistic retry, persists
// the ticket in the unassigned column, and — when the body already
// satisfies the Definition of Ready — appends it to todo. A failed
// todo append does not fail the creation; it is reported in MoveError.
func (m *Manager) Create(ctx context.Context, repository, title, body string) (*CreateResult, error) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	if err := ticket.ValidateRepository(repository); err != nil {
		return nil, validationf("%v", err)
	}
	if title == "" {
		return nil, validationf("title must not be empty")
	}
	if tokens := ticket.Placeholders(body); len(tokens) > 0 {
		return nil, placeholderError(tokens)
	}
	body = ticket.Normalize(body, "", title)

	legacy := false
	start, err := m.store.MaxSequence(ctx, repository)
	if errors.Is(err, store.ErrLegacySchema) {
		legacy = true
		start, err = m.store.MaxLegacyNumber(ctx)
	}
	if err != nil {
		return nil, err
	}

	now := nowRFC3339()
	var created *ticket.Ticket
	seq, err := allocateWithRetry(maxAllocateAttempts,
		func(attempt int) int { return start + 1 + attempt },
		func(number int) error {
			t := &ticket.Ticket{
				Title:     title,
				Column:    ticket.ColumnUnassigned,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if legacy {
				t.LegacyID = ticket.FormatLegacyID(number)
			} else {
				t.PrimaryKey = uuid.NewString()
				t.Repository = repository
				t.SequenceNumber = number
				t.DisplayID = ticket.FormatDisplayID(repository, number)
			}
			t.Filename = t.ID() + ".md"
			t.Body = ticket.Normalize(body, t.ID(), title)
			if tokens := ticket.Placeholders(t.Body); len(tokens) > 0 {
				return placeholderError(tokens)
			}
			var ierr error
			if legacy {
				ierr = m.store.InsertLegacy(ctx, t)
			} else {
				ierr = m.store.Insert(ctx, t)
			}
			if ierr == nil {
				created = t
			}
			return ierr
		})
	if err != nil {
		return nil, err
	}

	res := &CreateResult{
		PrimaryKey:     created.PrimaryKey,
		DisplayID:      created.ID(),
		SequenceNumber: seq,
		Column:         ticket.ColumnUnassigned,
	}

	readiness := m.evaluateWithAutoFix(ctx, created, res)
	res.Ready = readiness.Ready
	res.MissingItems = readiness.MissingItems

	if readiness.Ready {
		if err := m.appendToColumn(ctx, created, ticket.ColumnTodo); err != nil {
			res.MoveError = err.Error()
		} else {
			res.MovedToTodo = true
			res.Column = ticket.ColumnTodo
		}
	}
	return res, nil
}

// evaluateWithAutoFix runs the Definition of Ready checklist and, when
// the acceptance-criteria checkbox item is the sole failure, tries the
// bullet-to-checkbox rewrite. The rewrite is kept only if it flips the
// ticket to ready; otherwise the stored body stays untouched.
func (m *Manager) evaluateWithAutoFix(ctx context.Context, t *ticket.Ticket, res *CreateResult) ticket.ReadinessResult {
	readiness := ticket.EvaluateReadiness(t.Body)
	if readiness.Ready || !onlyFailure(readiness, ticket.CheckAcceptance) {
		return readiness
	}

	fixed, changed := ticket.RewriteBulletsAsCheckboxes(t.Body)
	if !changed {
		return readiness
	}
	fixed = ticket.Normalize(fixed, t.ID(), t.Title)
	if len(ticket.Placeholders(fixed)) > 0 {
		return readiness
	}
	again := ticket.EvaluateReadiness(fixed)
	if !again.Ready {
		return readiness
	}
	if err := m.updateBody(ctx, t, fixed, nowRFC3339()); err != nil {
		return readiness
	}
	t.Body = fixed
	res.AutoFixed = true
	return again
}

// onlyFailure reports whether item is the single failing entry of the
// checklist.
func onlyFailure(res ticket.ReadinessResult, item ticket.CheckItem) bool {
	if res.Checklist[item] {
		return false
	}
	for check, ok := range res.Checklist {
		if check != item && !ok {
			return false
		}
	}
	return true
}

// ─── Update ──────────────────────────────────────────────────────────────────

// UpdateResult is the payload of a successful body update.
type UpdateResult struct {
	DisplayID    string   `json:"display_id"`
	Ready        bool     `json:"ready"`
	MissingItems []string `json:"missing_items,omitempty"`
}

// Update replaces a ticket's body. The placeholder gate runs before
// the ticket is even looked up, so an invalid body never touches the
// store. The column is never changed by an update.
func (m *Manager) Update(ctx context.Context, repository, ref, body string) (*UpdateResult, error) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	parsed, err := ticket.ParseRef(ref)
	if err != nil {
		return nil, validationf("%v", err)
	}
	if err := ticket.ValidateRepository(repository); err != nil {
		return nil, validationf("%v", err)
	}
	if tokens := ticket.Placeholders(body); len(tokens) > 0 {
		return nil, placeholderError(tokens)
	}

	t, err := m.resolveTicket(ctx, repository, parsed)
	if err != nil {
		return nil, err
	}

	body = ticket.Normalize(body, t.ID(), t.Title)
	if tokens := ticket.Placeholders(body); len(tokens) > 0 {
		return nil, placeholderError(tokens)
	}
	if err := m.updateBody(ctx, t, body, nowRFC3339()); err != nil {
		return nil, err
	}

	readiness := ticket.EvaluateReadiness(body)
	return &UpdateResult{
		DisplayID:    t.ID(),
		Ready:        readiness.Ready,
		MissingItems: readiness.MissingItems,
	}, nil
}

// ─── Readiness check ─────────────────────────────────────────────────────────

// ReadinessReport is the payload of a read-only readiness check.
type ReadinessReport struct {
	DisplayID string                    `json:"display_id"`
	Column    ticket.Column             `json:"column"`
	Ready     bool                      `json:"ready"`
	Missing   []string                  `json:"missing_items,omitempty"`
	Checklist map[ticket.CheckItem]bool `json:"checklist"`
}

// CheckReady evaluates the Definition of Ready for a stored ticket
// without mutating anything.
func (m *Manager) CheckReady(ctx context.Context, repository, ref string) (*ReadinessReport, error) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	parsed, err := ticket.ParseRef(ref)
	if err != nil {
		return nil, validationf("%v", err)
	}
	if err := ticket.ValidateRepository(repository); err != nil {
		return nil, validationf("%v", err)
	}
	t, err := m.resolveTicket(ctx, repository, parsed)
	if err != nil {
		return nil, err
	}

	readiness := ticket.EvaluateReadiness(t.Body)
	return &ReadinessReport{
		DisplayID: t.ID(),
		Column:    ticket.NormalizeColumn(t.Column),
		Ready:     readiness.Ready,
		Missing:   readiness.MissingItems,
		Checklist: readiness.Checklist,
	}, nil
}

// ─── Move ────────────────────────────────────────────────────────────────────

// MoveResult is the payload of a successful move.
type MoveResult struct {
	DisplayID string        `json:"display_id"`
	Column    ticket.Column `json:"column"`
	Position  int           `json:"position"`
}

// Move places a ticket into a column at the requested position
// ("top", "bottom", the default bottom, or a 0-based index), rewriting
// sibling positions as needed to keep the column contiguous.
func (m *Manager) Move(ctx context.Context, repository, ref, column, position string) (*MoveResult, error) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	parsed, err := ticket.ParseRef(ref)
	if err != nil {
		return nil, validationf("%v", err)
	}
	if err := ticket.ValidateRepository(repository); err != nil {
		return nil, validationf("%v", err)
	}
	col, err := ticket.ResolveColumn(column)
	if err != nil {
		return nil, validationf("%v", err)
	}
	place, err := parsePlacement(position)
	if err != nil {
		return nil, err
	}

	t, err := m.resolveTicket(ctx, repository, parsed)
	if err != nil {
		return nil, err
	}
	return m.moveTicket(ctx, t, col, place)
}

// PromoteToTodo is the guarded move used after an external readiness
// check: it refuses to touch a ticket that has already left the
// unassigned column, and never evaluates readiness itself.
func (m *Manager) PromoteToTodo(ctx context.Context, repository, ref, position string) (*MoveResult, error) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	parsed, err := ticket.ParseRef(ref)
	if err != nil {
		return nil, validationf("%v", err)
	}
	if err := ticket.ValidateRepository(repository); err != nil {
		return nil, validationf("%v", err)
	}
	place, err := parsePlacement(position)
	if err != nil {
		return nil, err
	}

	t, err := m.resolveTicket(ctx, repository, parsed)
	if err != nil {
		return nil, err
	}
	if got := ticket.NormalizeColumn(t.Column); got != ticket.ColumnUnassigned {
		return nil, preconditionf("ticket %s is in column %q, not %q", t.ID(), got, ticket.ColumnUnassigned)
	}
	return m.moveTicket(ctx, t, ticket.ColumnTodo, place)
}

func (m *Manager) moveTicket(ctx context.Context, t *ticket.Ticket, col ticket.Column, place placement) (*MoveResult, error) {
	legacy := t.PrimaryKey == ""

	var peers []*ticket.Ticket
	var err error
	if legacy {
		peers, err = m.store.ListColumnLegacy(ctx, col)
	} else {
		peers, err = m.store.ListColumn(ctx, t.Repository, col)
	}
	if err != nil {
		return nil, err
	}
	peers = withoutTicket(peers, t)

	pos, moves := planPosition(peers, place)

	// Sibling rewrites first, the mover's own write last. A failure in
	// between leaves position drift that the next append self-heals,
	// never a half-moved ticket.
	for _, mv := range moves {
		if legacy {
			err = m.store.SetPositionLegacy(ctx, mv.ticket.LegacyID, mv.position)
		} else {
			err = m.store.SetPosition(ctx, mv.ticket.PrimaryKey, mv.position)
		}
		if err != nil {
			return nil, err
		}
	}

	movedAt := nowRFC3339()
	if legacy {
		err = m.store.UpdatePlacementLegacy(ctx, t.LegacyID, col, pos, movedAt)
	} else {
		err = m.store.UpdatePlacement(ctx, t.PrimaryKey, col, pos, movedAt)
	}
	if err != nil {
		return nil, err
	}
	t.Column = col
	t.Position = pos
	t.MovedAt = movedAt

	return &MoveResult{DisplayID: t.ID(), Column: col, Position: pos}, nil
}

func withoutTicket(peers []*ticket.Ticket, t *ticket.Ticket) []*ticket.Ticket {
	out := peers[:0]
	for _, p := range peers {
		if t.PrimaryKey != "" && p.PrimaryKey == t.PrimaryKey {
			continue
		}
		if t.PrimaryKey == "" && p.LegacyID == t.LegacyID {
			continue
		}
		out = append(out, p)
	}
	return out
}

// appendToColumn puts a ticket at the end of a column using the live
// max. Two concurrent appends can pick the same position; that is an
// accepted cosmetic glitch, not a correctness problem.
func (m *Manager) appendToColumn(ctx context.Context, t *ticket.Ticket, col ticket.Column) error {
	legacy := t.PrimaryKey == ""

	var max int
	var err error
	if legacy {
		max, err = m.store.MaxPositionLegacy(ctx, col)
	} else {
		max, err = m.store.MaxPosition(ctx, t.Repository, col)
	}
	if err != nil {
		return err
	}

	pos := max + 1
	movedAt := nowRFC3339()
	if legacy {
		err = m.store.UpdatePlacementLegacy(ctx, t.LegacyID, col, pos, movedAt)
	} else {
		err = m.store.UpdatePlacement(ctx, t.PrimaryKey, col, pos, movedAt)
	}
	if err != nil {
		return err
	}
	t.Column = col
	t.Position = pos
	t.MovedAt = movedAt
	return nil
}

// ─── Migrate ─────────────────────────────────────────────────────────────────

// MigrateResult is the payload of a successful cross-repository
// migration.
type MigrateResult struct {
	FromDisplayID  string `json:"from_display_id"`
	DisplayID      string `json:"display_id"`
	Repository     string `json:"repository"`
	SequenceNumber int    `json:"sequence_number"`
	Position       int    `json:"position"`
}

// Migrate moves a ticket into another repository: a fresh sequence
// number is allocated there, the body's title line is rewritten with
// the new display id, and the ticket lands at the end of the target's
// todo column. Repository identity, number, display id, body, and
// placement change in one store write, so a crash can waste an
// allocated number but never duplicate a ticket.
func (m *Manager) Migrate(ctx context.Context, repository, ref, targetRepository string) (*MigrateResult, error) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	parsed, err := ticket.ParseRef(ref)
	if err != nil {
		return nil, validationf("%v", err)
	}
	if err := ticket.ValidateRepository(repository); err != nil {
		return nil, validationf("%v", err)
	}
	if err := ticket.ValidateRepository(targetRepository); err != nil {
		return nil, validationf("%v", err)
	}

	t, err := m.resolveTicket(ctx, repository, parsed)
	if err != nil {
		return nil, err
	}
	if t.PrimaryKey == "" {
		return nil, preconditionf("ticket %s predates repository support and cannot be migrated", t.ID())
	}
	if t.Repository == targetRepository {
		return nil, preconditionf("ticket %s is already in %s", t.ID(), targetRepository)
	}

	if m.probe == nil {
		return nil, preconditionf("no repository probe configured; cannot verify %s", targetRepository)
	}
	known, err := m.probe.Known(ctx, targetRepository)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, preconditionf("target repository %s is not known", targetRepository)
	}

	start, err := m.store.MaxSequence(ctx, targetRepository)
	if errors.Is(err, store.ErrLegacySchema) {
		return nil, preconditionf("the ticket store predates repository support; migration is unavailable")
	}
	if err != nil {
		return nil, err
	}
	maxPos, err := m.store.MaxPosition(ctx, targetRepository, ticket.ColumnTodo)
	if err != nil {
		return nil, err
	}
	pos := maxPos + 1

	fromID := t.ID()
	movedAt := nowRFC3339()
	var displayID string
	seq, err := allocateWithRetry(maxAllocateAttempts,
		func(attempt int) int { return start + 1 + attempt },
		func(number int) error {
			candidateID := ticket.FormatDisplayID(targetRepository, number)
			body := ticket.Normalize(t.Body, candidateID, t.Title)
			if tokens := ticket.Placeholders(body); len(tokens) > 0 {
				return placeholderError(tokens)
			}
			ierr := m.store.ApplyMigration(ctx, t.PrimaryKey, targetRepository, number,
				candidateID, candidateID+".md", body, ticket.ColumnTodo, pos, movedAt)
			if ierr == nil {
				displayID = candidateID
			}
			return ierr
		})
	if err != nil {
		return nil, err
	}

	return &MigrateResult{
		FromDisplayID:  fromID,
		DisplayID:      displayID,
		Repository:     targetRepository,
		SequenceNumber: seq,
		Position:       pos,
	}, nil
}

// ─── Resolution ──────────────────────────────────────────────────────────────

// resolveTicket finds a ticket by reference. A prefixed reference must
// name this repository's board; a bare number is accepted as-is. The
// repository-scoped lookup runs first; the legacy lookup runs only
// when the store reports the legacy schema, never on ordinary
// failures.
func (m *Manager) resolveTicket(ctx context.Context, repository string, ref ticket.Ref) (*ticket.Ticket, error) {
	if want := ticket.RepoPrefix(repository); ref.Prefix != "" && ref.Prefix != want {
		return nil, validationf("ticket reference %s does not belong to %s (expected prefix %s)",
			ref.String(), repository, want)
	}
	t, err := m.store.GetByRepoNumber(ctx, repository, ref.Number)
	if errors.Is(err, store.ErrLegacySchema) {
		t, err = m.store.GetByLegacyID(ctx, ticket.FormatLegacyID(ref.Number))
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, preconditionf("ticket %s not found in %s", ref.String(), repository)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (m *Manager) updateBody(ctx context.Context, t *ticket.Ticket, body, updatedAt string) error {
	if t.PrimaryKey == "" {
		return m.store.UpdateBodyLegacy(ctx, t.LegacyID, body, updatedAt)
	}
	return m.store.UpdateBody(ctx, t.PrimaryKey, body, updatedAt)
}
