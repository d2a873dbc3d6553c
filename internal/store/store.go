// Package store persists finalized profiles in a local SQLite database so
// profiling sessions can be listed, inspected and re-used later.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chimera-data/fieldscope"
)

// ErrNotFound is returned when a session ID has no row.
var ErrNotFound = errors.New("store: session not found")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	records     INTEGER NOT NULL,
	fields      INTEGER NOT NULL,
	profile     BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions (created_at DESC);
`

// Session is a stored profiling run.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Source    string    `json:"source"`
	Records   int64     `json:"records"`
	Fields    int       `json:"fields"`
}

// Store wraps the sessions database.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the sessions database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// modernc sqlite serializes writes itself; a single connection avoids
	// SQLITE_BUSY under concurrent use.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewID mints a session identifier like "sess-20260829-153001-a1b2c3d4".
func NewID(now time.Time) string {
	return fmt.Sprintf("sess-%s-%s", now.UTC().Format("20060102-150405"), uuid.NewString()[:8])
}

// Save stores a finalized profile under a fresh session ID and returns it.
func (s *Store) Save(ctx context.Context, name, source string, p *fieldscope.Profile) (Session, error) {
	if p == nil {
		return Session{}, errors.New("store: nil profile")
	}

	blob, err := json.Marshal(p)
	if err != nil {
		return Session{}, fmt.Errorf("store: encode profile: %w", err)
	}

	sess := Session{
		ID:        NewID(time.Now()),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Source:    source,
		Records:   p.TotalRecords,
		Fields:    len(p.DiscoveredFields),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, name, created_at, source, records, fields, profile)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, sess.CreatedAt, sess.Source, sess.Records, sess.Fields, blob)
	if err != nil {
		return Session{}, fmt.Errorf("store: insert session: %w", err)
	}
	return sess, nil
}

// List returns stored sessions, newest first.
func (s *Store) List(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, source, records, fields
		 FROM sessions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.CreatedAt, &sess.Source, &sess.Records, &sess.Fields); err != nil {
			return nil, fmt.Errorf("store: scan session: %w", err)
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate sessions: %w", err)
	}
	return out, nil
}

// Get loads a stored session and its profile by ID.
func (s *Store) Get(ctx context.Context, id string) (Session, *fieldscope.Profile, error) {
	var (
		sess Session
		blob []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, source, records, fields, profile
		 FROM sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.Name, &sess.CreatedAt, &sess.Source, &sess.Records, &sess.Fields, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, nil, ErrNotFound
	}
	if err != nil {
		return Session{}, nil, fmt.Errorf("store: load session %s: %w", id, err)
	}

	var p fieldscope.Profile
	if err := json.Unmarshal(blob, &p); err != nil {
		return Session{}, nil, fmt.Errorf("store: decode profile %s: %w", id, err)
	}
	return sess, &p, nil
}

// Delete removes a stored session.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete session %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
