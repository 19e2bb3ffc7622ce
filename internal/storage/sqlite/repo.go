// Package sqlite implements the storage.Repository interface on
// modernc.org/sqlite via database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"ddlgen/internal/render"
	"ddlgen/internal/storage"
	"ddlgen/internal/tablemodel"
)

func init() {
	storage.Register("sqlite", New)
}

type Repo struct {
	db *sql.DB
}

// New opens (or creates) the database file named by the DSN.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	// Single writer; modernc.org/sqlite serializes anyway and this avoids
	// SQLITE_BUSY under concurrent inserts.
	db.SetMaxOpenConns(1)
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) EnsureTables(ctx context.Context, root *tablemodel.Table, opt render.Options) error {
	d, err := render.Get("sqlite")
	if err != nil {
		return err
	}
	ddl := opt
	ddl.Creates = true
	ddl.Inserts = false
	for _, stmt := range render.Statements(d, root, ddl) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: exec %q: %w", stmt, err)
		}
	}
	return nil
}

// InsertRows inserts row-by-row inside one transaction; SQLite gains nothing
// from multi-row VALUES at these batch sizes and the error points at the
// exact row.
func (r *Repo) InsertRows(ctx context.Context, t *tablemodel.Table) (int64, error) {
	table := t.Name
	columns, rows := storage.TableRows(t)
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = `"` + c + `"`
		marks[i] = "?"
	}
	q := fmt.Sprintf(
		`INSERT INTO "%s" (%s) VALUES (%s)`,
		table, strings.Join(quoted, ", "), strings.Join(marks, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert %s: %w", table, err)
	}
	defer stmt.Close()

	var n int64
	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("sqlite: insert %s row %d: %w", table, i+1, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit %s: %w", table, err)
	}
	return n, nil
}
