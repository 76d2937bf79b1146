package dedup

import (
	"database/sql"
	"os"
	"path/filepath"

	// Pure Go SQLite driver registered as "sqlite".
	_ "modernc.org/sqlite"

	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/errors"
)

const (
	createIdentities = `CREATE TABLE IF NOT EXISTS identities (
	identity TEXT PRIMARY KEY,
	ordinal  INTEGER NOT NULL
) WITHOUT ROWID`

	insertIdentity = `INSERT OR IGNORE INTO identities (identity, ordinal) VALUES (?, ?)`
)

// SQLiteIndex spills identities to an on-disk SQLite database so the set of
// distinct identities need not fit in memory. The database file is removed
// on Close.
type SQLiteIndex struct {
	db   *sql.DB
	path string
	size int
}

// NewSQLiteIndex creates a temporary index database inside dir. An empty dir
// uses the system temporary directory.
func NewSQLiteIndex(dir string) (*SQLiteIndex, error) {
	f, err := os.CreateTemp(dir, "dedup-*.db")
	if err != nil {
		return nil, errors.WrapIO("create", filepath.Join(dir, "dedup-*.db"), err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return nil, errors.WrapIO("close", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = os.Remove(path)
		return nil, errors.WrapIO("open", path, err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode = OFF",
		"PRAGMA synchronous = OFF",
		createIdentities,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			_ = os.Remove(path)
			return nil, errors.WrapIO("initialize", path, err)
		}
	}

	return &SQLiteIndex{db: db, path: path}, nil
}

// SQLiteIndexFactory opens SQLite indexes in dir.
func SQLiteIndexFactory(dir string) IndexFactory {
	return func() (Index, error) {
		return NewSQLiteIndex(dir)
	}
}

// Path returns the database file location.
func (s *SQLiteIndex) Path() string { return s.path }

// Claim implements Index. Entries are inserted in transactions of at most
// constants.SQLiteBatchSize rows.
func (s *SQLiteIndex) Claim(batch []Entry) ([]bool, error) {
	out := make([]bool, 0, len(batch))
	for start := 0; start < len(batch); start += constants.SQLiteBatchSize {
		end := min(start+constants.SQLiteBatchSize, len(batch))
		claimed, err := s.claim(batch[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, claimed...)
	}
	return out, nil
}

func (s *SQLiteIndex) claim(batch []Entry) ([]bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, errors.WrapIO("begin", s.path, err)
	}
	stmt, err := tx.Prepare(insertIdentity)
	if err != nil {
		_ = tx.Rollback()
		return nil, errors.WrapIO("prepare", s.path, err)
	}
	defer stmt.Close() //nolint:errcheck

	out := make([]bool, len(batch))
	for i, e := range batch {
		res, err := stmt.Exec(e.Identity, e.Ordinal)
		if err != nil {
			_ = tx.Rollback()
			return nil, errors.WrapIO("insert", s.path, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return nil, errors.WrapIO("insert", s.path, err)
		}
		if n == 1 {
			out[i] = true
			s.size++
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.WrapIO("commit", s.path, err)
	}
	return out, nil
}

// Size implements Index.
func (s *SQLiteIndex) Size() int { return s.size }

// Close implements Index.
func (s *SQLiteIndex) Close() error {
	err := s.db.Close()
	if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return errors.WrapIO("close", s.path, err)
}
