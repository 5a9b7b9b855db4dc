// Package store persists learner state in a single SQLite file: a key-value
// table for the mutable records, an append-only event log, and snapshot
// backups taken before destructive resets.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	_ "modernc.org/sqlite"
)

// pragmas are applied by the driver to every new connection.
var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(ON)",
	"synchronous(NORMAL)",
}

// Store owns the database handle.
type Store struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Open opens or creates the database at path and brings its schema up to
// date.
func Open(path string) (*Store, error) {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	fail := func(step string, err error) (*Store, error) {
		return nil, errors.Join(fmt.Errorf("store: %s: %w", step, err), db.Close())
	}
	if err := db.Ping(); err != nil {
		return fail("connect", err)
	}
	if err := migrate(context.Background(), db); err != nil {
		return fail("migrate", err)
	}
	seq, err := newSequenceCounter(db)
	if err != nil {
		return fail("sequence", err)
	}
	return &Store{db: db, seq: seq}, nil
}

// DB exposes the handle for ad hoc queries in tests and tools.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// KV returns the key-value repository.
func (s *Store) KV() KV { return &kvRepo{db: s.db} }

// EventRepo returns the append-only event log.
func (s *Store) EventRepo() EventRepo { return &eventRepo{db: s.db, seq: s.seq} }

// BackupRepo returns the snapshot repository.
func (s *Store) BackupRepo() BackupRepo { return &backupRepo{db: s.db} }

func sqlite() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// DefaultDBPath returns $KIOKU_DB when set, otherwise kioku/kioku.db under
// $XDG_DATA_HOME or ~/.local/share. The parent directory is created.
func DefaultDBPath() (string, error) {
	p := os.Getenv("KIOKU_DB")
	if p == "" {
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("store: home dir: %w", err)
			}
			base = filepath.Join(home, ".local", "share")
		}
		p = filepath.Join(base, "kioku", "kioku.db")
	}
	return p, EnsureDir(p)
}

// EnsureDir creates the directory that will hold path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
