// Package mssql implements the storage.Repository interface on SQL Server
// via database/sql and the go-mssqldb driver.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"ddlgen/internal/render"
	"ddlgen/internal/storage"
	"ddlgen/internal/tablemodel"
)

func init() {
	storage.Register("mssql", New)
}

type Repo struct {
	db *sql.DB
}

// New connects using the go-mssqldb URL or ADO DSN form and validates
// connectivity.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) EnsureTables(ctx context.Context, root *tablemodel.Table, opt render.Options) error {
	d, err := render.Get("mssql")
	if err != nil {
		return err
	}
	ddl := opt
	ddl.Creates = true
	ddl.Inserts = false
	for _, stmt := range render.Statements(d, root, ddl) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("mssql: exec %q: %w", stmt, err)
		}
	}
	return nil
}

// InsertRows inserts inside one transaction. Synthesized keys are identity
// columns on SQL Server and carry explicit values from the model, so the
// batch is wrapped in SET IDENTITY_INSERT for tables that have one.
func (r *Repo) InsertRows(ctx context.Context, t *tablemodel.Table) (int64, error) {
	table := t.Name
	columns, rows := storage.TableRows(t)
	if len(rows) == 0 {
		return 0, nil
	}

	identity := false
	if pk := t.Column(t.PrimaryKey); pk != nil && pk.Synthesized {
		identity = true
	}

	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = "[" + c + "]"
		marks[i] = fmt.Sprintf("@p%d", i+1)
	}
	q := fmt.Sprintf(
		"INSERT INTO [%s] (%s) VALUES (%s)",
		table, strings.Join(quoted, ", "), strings.Join(marks, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if identity {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET IDENTITY_INSERT [%s] ON", table)); err != nil {
			return 0, fmt.Errorf("mssql: identity insert %s: %w", table, err)
		}
	}

	var n int64
	for i, row := range rows {
		args := make([]any, len(row))
		for j, v := range row {
			args[j] = sql.Named(fmt.Sprintf("p%d", j+1), v)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return 0, fmt.Errorf("mssql: insert %s row %d: %w", table, i+1, err)
		}
		n++
	}
	if identity {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET IDENTITY_INSERT [%s] OFF", table)); err != nil {
			return 0, fmt.Errorf("mssql: identity insert %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit %s: %w", table, err)
	}
	return n, nil
}
