package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/dataset"
	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/normalize"
)

// SQLite writes datasets as tables of one SQLite database. All columns are
// stored as TEXT.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("open", path, err)
	}
	return &SQLite{db: db, path: path}, nil
}

// Path returns the database file.
func (s *SQLite) Path() string { return s.path }

// DB exposes the handle for queries.
func (s *SQLite) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// TableName derives a table name such as asic_fx from parts.
func TableName(parts ...string) string {
	return normalize.SanitizeColumn(strings.Join(parts, "_"))
}

// Write replaces table with the contents of ds.
func (s *SQLite) Write(ctx context.Context, table string, ds *dataset.Dataset) error {
	fields := ds.Fields()
	if len(fields) == 0 {
		return errors.NewValidationError("dataset", ds.Name(), "no columns to write")
	}

	quoted := make([]string, len(fields))
	defs := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = quoteIdent(f)
		defs[i] = quoted[i] + " TEXT"
	}
	qTable := quoteIdent(table)

	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+qTable); err != nil {
		return errors.WrapIO("write", s.path, err)
	}
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE `+qTable+` (`+strings.Join(defs, ",")+`)`); err != nil {
		return errors.WrapIO("write", s.path, err)
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(fields)), ",")
	insert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, qTable, strings.Join(quoted, ","), ph)

	for w := range ds.Windows(constants.SQLiteBatchSize) {
		if err := s.insert(ctx, insert, ds, w); err != nil {
			return errors.WrapIO("write", s.path, err)
		}
	}
	return nil
}

func (s *SQLite) insert(ctx context.Context, query string, ds *dataset.Dataset, w dataset.Window) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close() //nolint:errcheck

	for i := w.Start; i < w.End; i++ {
		values := ds.Record(i).Values()
		args := make([]any, len(values))
		for j, v := range values {
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
