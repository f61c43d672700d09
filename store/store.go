// Package store persists serialized editor states in SQLite.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no document has the requested ID.
var ErrNotFound = errors.New("store: document not found")

// Document is one saved editor state.
type Document struct {
	ID        string
	Title     string
	State     []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	state      BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_updated ON documents(updated_at);
`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// Store is a SQLite-backed document store. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// Option customises Open.
type Option func(*Store)

// WithLogger sets the logger. The default logs nowhere.
func WithLogger(l zerolog.Logger) Option { return func(s *Store) { s.logger = l } }

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// Open opens or creates the database at path and applies the schema.
// ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "store: open")
	}
	if path == ":memory:" {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db, logger: zerolog.Nop(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "store: %s", p)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "store: schema")
	}
	s.logger.Debug().Str("path", path).Msg("store opened")
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save inserts d, or replaces the document with the same ID. An empty ID
// gets a new ULID. The saved document is returned with its timestamps.
func (s *Store) Save(ctx context.Context, d Document) (Document, error) {
	if d.State == nil {
		return Document{}, errors.New("store: empty state")
	}
	now := s.now().UTC().Truncate(time.Millisecond)
	if d.ID == "" {
		d.ID = ulid.Make().String()
	}
	d.UpdatedAt = now
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO documents (id, title, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			state = excluded.state,
			updated_at = excluded.updated_at
		RETURNING created_at`,
		d.ID, d.Title, d.State, now.UnixMilli(), now.UnixMilli())
	var created int64
	if err := row.Scan(&created); err != nil {
		return Document{}, errors.Wrapf(err, "store: save %s", d.ID)
	}
	d.CreatedAt = time.UnixMilli(created).UTC()
	s.logger.Info().Str("id", d.ID).Int("bytes", len(d.State)).Msg("document saved")
	return d, nil
}

// Get returns the document with id.
func (s *Store) Get(ctx context.Context, id string) (Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, state, created_at, updated_at FROM documents WHERE id = ?`, id)
	d, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, errors.Wrapf(ErrNotFound, "%s", id)
	}
	if err != nil {
		return Document{}, errors.Wrapf(err, "store: get %s", id)
	}
	return d, nil
}

// List returns every document without its state, most recently updated
// first.
func (s *Store) List(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, NULL, created_at, updated_at FROM documents ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "store: list")
	}
	defer rows.Close()
	var out []Document
	for rows.Next() {
		d, err := scan(rows)
		if err != nil {
			return nil, errors.Wrap(err, "store: list")
		}
		out = append(out, d)
	}
	return out, errors.Wrap(rows.Err(), "store: list")
}

// Delete removes the document with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "store: delete %s", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(ErrNotFound, "%s", id)
	}
	s.logger.Info().Str("id", id).Msg("document deleted")
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (Document, error) {
	var (
		d                Document
		created, updated int64
	)
	if err := r.Scan(&d.ID, &d.Title, &d.State, &created, &updated); err != nil {
		return Document{}, err
	}
	d.CreatedAt = time.UnixMilli(created).UTC()
	d.UpdatedAt = time.UnixMilli(updated).UTC()
	return d, nil
}
