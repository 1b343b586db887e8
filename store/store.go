// SPDX-License-Identifier: MIT

// Package store persists named ensembles in a SQLite database.
//
// Each ensemble is one row of the ensembles table; the payload is the
// binary ensemble encoding (native-space values), so anything saved here can
// also be exported with ensemble.ReadBinary.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/aymanalz/pyemu/control"
	"github.com/aymanalz/pyemu/ensemble"
)

// ErrNotFound indicates no ensemble is stored under the requested name.
var ErrNotFound = errors.New("store: ensemble not found")

const schema = `CREATE TABLE IF NOT EXISTS ensembles (
	name       TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	n_rows     INTEGER NOT NULL,
	n_cols     INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	payload    BLOB NOT NULL
)`

// Entry describes a stored ensemble without decoding it.
type Entry struct {
	Name      string
	Kind      ensemble.Kind
	Rows      int
	Cols      int
	CreatedAt time.Time
}

// Store is a SQLite-backed ensemble catalogue. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path. Use ":memory:" for a
// private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "ensembles.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("store: create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create ensembles table: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Save stores e under name, replacing any previous ensemble of that name.
func (s *Store) Save(ctx context.Context, name string, e *ensemble.Ensemble) error {
	if name == "" || e == nil {
		return fmt.Errorf("store: save %q: %w", name, ensemble.ErrInvalidArgument)
	}
	var buf bytes.Buffer
	if err := e.WriteBinary(&buf); err != nil {
		return fmt.Errorf("store: encode %q: %w", name, err)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO ensembles (name, kind, n_rows, n_cols, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			kind = excluded.kind, n_rows = excluded.n_rows, n_cols = excluded.n_cols,
			created_at = excluded.created_at, payload = excluded.payload`,
		name, e.Kind().String(), e.Rows(), e.Cols(),
		s.now().UTC().Format(time.RFC3339Nano), buf.Bytes())
	if err != nil {
		return fmt.Errorf("store: save %q: %w", name, err)
	}

	return nil
}

// Load decodes the ensemble stored under name against p.
func (s *Store) Load(ctx context.Context, name string, p *control.Problem) (*ensemble.Ensemble, error) {
	var (
		kindName string
		payload  []byte
	)
	err := s.db.QueryRowContext(ctx, `SELECT kind, payload FROM ensembles WHERE name = ?`, name).
		Scan(&kindName, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %q: %w", name, err)
	}
	kind, err := parseKind(kindName)
	if err != nil {
		return nil, fmt.Errorf("store: load %q: %w", name, err)
	}
	e, err := ensemble.ReadBinary(p, kind, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("store: decode %q: %w", name, err)
	}

	return e, nil
}

// List returns the stored ensembles ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, kind, n_rows, n_cols, created_at FROM ensembles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var (
			en       Entry
			kindName string
			created  string
		)
		if err := rows.Scan(&en.Name, &kindName, &en.Rows, &en.Cols, &created); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		if en.Kind, err = parseKind(kindName); err != nil {
			return nil, fmt.Errorf("store: %q: %w", en.Name, err)
		}
		if en.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("store: %q created_at: %w", en.Name, err)
		}
		out = append(out, en)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}

	return out, nil
}

// Delete removes the ensemble stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ensembles WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("store: delete %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("store: %q: %w", name, ErrNotFound)
	}

	return nil
}

func parseKind(s string) (ensemble.Kind, error) {
	switch s {
	case ensemble.Parameters.String():
		return ensemble.Parameters, nil
	case ensemble.Observations.String():
		return ensemble.Observations, nil
	default:
		return 0, fmt.Errorf("kind %q: %w", s, ensemble.ErrKindMismatch)
	}
}
