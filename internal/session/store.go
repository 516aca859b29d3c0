package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tegflow/tegflow/internal/rules"
	tegerrors "github.com/tegflow/tegflow/pkg/errors"
)

const timeFormat = time.RFC3339Nano

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	variant       TEXT NOT NULL,
	phase         TEXT NOT NULL,
	current_turn  INTEGER NOT NULL DEFAULT 0,
	updated_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS session_participants (
	session_id      TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	position        INTEGER NOT NULL,
	participant_id  TEXT NOT NULL,
	name            TEXT NOT NULL,
	active          INTEGER NOT NULL,
	available_units INTEGER NOT NULL,
	PRIMARY KEY (session_id, position)
);
CREATE TABLE IF NOT EXISTS session_fields (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	field_id   TEXT NOT NULL,
	owner      TEXT NOT NULL DEFAULT '',
	units      INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (session_id, field_id)
);
CREATE TABLE IF NOT EXISTS session_context (
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	field      TEXT NOT NULL,
	kind       TEXT NOT NULL,
	value      TEXT NOT NULL,
	PRIMARY KEY (session_id, field)
);
`

// ErrNotFound reports a session id with no stored row.
var ErrNotFound = errors.New("session not found")

// Store is a SQLite-backed session store. One store may hold many
// sessions; each session row carries the phase and turn, with participant,
// field, and context rows keyed by session id.
type Store struct {
	db *sql.DB
}

// Snapshot is one persisted session.
type Snapshot struct {
	ID        string
	Variant   string
	State     *State
	Attrs     map[string]rules.Value
	UpdatedAt time.Time
}

// Info is the listing row for a stored session.
type Info struct {
	ID        string
	Variant   string
	Phase     string
	UpdatedAt time.Time
}

// Open opens (or creates) the session store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, tegerrors.NewStoreError("open", fmt.Errorf("storage path is required"))
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, tegerrors.NewStoreError("open", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, tegerrors.NewStoreError("ping", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, tegerrors.NewStoreError("migrate", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save persists the session state and context attributes, replacing any
// previous snapshot under the same id.
func (s *Store) Save(ctx context.Context, id, variant string, state *State, attrs map[string]rules.Value) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return tegerrors.NewStoreError("save", fmt.Errorf("store is not open"))
	}
	if strings.TrimSpace(id) == "" {
		return tegerrors.NewStoreError("save", fmt.Errorf("session id is required"))
	}
	if state == nil {
		return tegerrors.NewStoreError("save", fmt.Errorf("state is required"))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return tegerrors.NewStoreError("save", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(timeFormat)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, variant, phase, current_turn, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			variant = excluded.variant,
			phase = excluded.phase,
			current_turn = excluded.current_turn,
			updated_at = excluded.updated_at`,
		id, variant, state.Phase, state.Current, now); err != nil {
		return tegerrors.NewStoreError("save session", err)
	}

	for _, table := range []string{"session_participants", "session_fields", "session_context"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE session_id = ?", id); err != nil {
			return tegerrors.NewStoreError("clear "+table, err)
		}
	}

	for i, p := range state.Participants {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_participants (session_id, position, participant_id, name, active, available_units)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, p.ID, p.Name, boolToInt(p.Active), p.AvailableUnits); err != nil {
			return tegerrors.NewStoreError("save participant", err)
		}
	}

	for fieldID, status := range state.Fields {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_fields (session_id, field_id, owner, units)
			VALUES (?, ?, ?, ?)`,
			id, fieldID, status.Owner, status.Units); err != nil {
			return tegerrors.NewStoreError("save field", err)
		}
	}

	for field, value := range attrs {
		kind, text := encodeValue(value)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session_context (session_id, field, kind, value)
			VALUES (?, ?, ?, ?)`,
			id, field, kind, text); err != nil {
			return tegerrors.NewStoreError("save context", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return tegerrors.NewStoreError("save", err)
	}
	return nil
}

// Load restores a session snapshot by id. Returns ErrNotFound when the id
// has no stored row.
func (s *Store) Load(ctx context.Context, id string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, tegerrors.NewStoreError("load", fmt.Errorf("store is not open"))
	}

	var (
		variant   string
		phase     string
		turn      int
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT variant, phase, current_turn, updated_at FROM sessions WHERE id = ?", id).
		Scan(&variant, &phase, &turn, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, tegerrors.NewStoreError("load session", err)
	}

	state := &State{
		Phase:   phase,
		Current: turn,
		Fields:  make(map[string]FieldStatus),
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT participant_id, name, active, available_units
		FROM session_participants WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, tegerrors.NewStoreError("load participants", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p Participant
		var active int
		if err := rows.Scan(&p.ID, &p.Name, &active, &p.AvailableUnits); err != nil {
			return nil, tegerrors.NewStoreError("load participants", err)
		}
		p.Active = active != 0
		state.Participants = append(state.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, tegerrors.NewStoreError("load participants", err)
	}

	fieldRows, err := s.db.QueryContext(ctx,
		"SELECT field_id, owner, units FROM session_fields WHERE session_id = ?", id)
	if err != nil {
		return nil, tegerrors.NewStoreError("load fields", err)
	}
	defer fieldRows.Close()
	for fieldRows.Next() {
		var fieldID string
		var status FieldStatus
		if err := fieldRows.Scan(&fieldID, &status.Owner, &status.Units); err != nil {
			return nil, tegerrors.NewStoreError("load fields", err)
		}
		state.Fields[fieldID] = status
	}
	if err := fieldRows.Err(); err != nil {
		return nil, tegerrors.NewStoreError("load fields", err)
	}

	attrs := make(map[string]rules.Value)
	ctxRows, err := s.db.QueryContext(ctx,
		"SELECT field, kind, value FROM session_context WHERE session_id = ?", id)
	if err != nil {
		return nil, tegerrors.NewStoreError("load context", err)
	}
	defer ctxRows.Close()
	for ctxRows.Next() {
		var field, kind, text string
		if err := ctxRows.Scan(&field, &kind, &text); err != nil {
			return nil, tegerrors.NewStoreError("load context", err)
		}
		value, err := decodeValue(kind, text)
		if err != nil {
			return nil, tegerrors.NewStoreError("load context", err)
		}
		attrs[field] = value
	}
	if err := ctxRows.Err(); err != nil {
		return nil, tegerrors.NewStoreError("load context", err)
	}

	ts, err := time.Parse(timeFormat, updatedAt)
	if err != nil {
		return nil, tegerrors.NewStoreError("load session", err)
	}

	return &Snapshot{ID: id, Variant: variant, State: state, Attrs: attrs, UpdatedAt: ts}, nil
}

// List returns the stored sessions, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, tegerrors.NewStoreError("list", fmt.Errorf("store is not open"))
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, variant, phase, updated_at FROM sessions ORDER BY updated_at DESC")
	if err != nil {
		return nil, tegerrors.NewStoreError("list", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		var updatedAt string
		if err := rows.Scan(&info.ID, &info.Variant, &info.Phase, &updatedAt); err != nil {
			return nil, tegerrors.NewStoreError("list", err)
		}
		ts, err := time.Parse(timeFormat, updatedAt)
		if err != nil {
			return nil, tegerrors.NewStoreError("list", err)
		}
		info.UpdatedAt = ts
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, tegerrors.NewStoreError("list", err)
	}
	return out, nil
}

// Delete removes a stored session and its dependent rows.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return tegerrors.NewStoreError("delete", fmt.Errorf("store is not open"))
	}

	for _, table := range []string{"session_participants", "session_fields", "session_context", "sessions"} {
		column := "session_id"
		if table == "sessions" {
			column = "id"
		}
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE "+column+" = ?", id); err != nil {
			return tegerrors.NewStoreError("delete", err)
		}
	}
	return nil
}

func encodeValue(v rules.Value) (kind, text string) {
	switch v.Kind {
	case rules.Number:
		return "number", strconv.FormatFloat(v.Number, 'g', -1, 64)
	case rules.Bool:
		return "bool", strconv.FormatBool(v.Bool)
	default:
		return "string", v.Str
	}
}

func decodeValue(kind, text string) (rules.Value, error) {
	switch kind {
	case "number":
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return rules.Value{}, fmt.Errorf("invalid number %q: %w", text, err)
		}
		return rules.NumberValue(n), nil
	case "bool":
		b, err := strconv.ParseBool(text)
		if err != nil {
			return rules.Value{}, fmt.Errorf("invalid bool %q: %w", text, err)
		}
		return rules.BoolValue(b), nil
	case "string":
		return rules.StringValue(text), nil
	}
	return rules.Value{}, fmt.Errorf("unknown value kind %q", kind)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
