// Package postgres implements the storage.Repository interface on a pgx
// connection pool.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"ddlgen/internal/render"
	"ddlgen/internal/storage"
	"ddlgen/internal/tablemodel"
)

func init() {
	storage.Register("postgres", New)
}

type Repo struct {
	pool *pgxpool.Pool
}

// New opens a pgx pool and validates connectivity.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

// EnsureTables runs the rendered DDL statement by statement so the failing
// statement is named in the error.
func (r *Repo) EnsureTables(ctx context.Context, root *tablemodel.Table, opt render.Options) error {
	d, err := render.Get("postgres")
	if err != nil {
		return err
	}
	ddl := opt
	ddl.Creates = true
	ddl.Inserts = false
	for _, stmt := range render.Statements(d, root, ddl) {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// InsertRows bulk-inserts with one multi-row statement per table.
func (r *Repo) InsertRows(ctx context.Context, t *tablemodel.Table) (int64, error) {
	columns, rows := storage.TableRows(t)
	if len(rows) == 0 {
		return 0, nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgIdent(t.Name))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	n := 1
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", n)
			n++
			args = append(args, v)
		}
		b.WriteString(")")
	}

	tag, err := r.pool.Exec(ctx, b.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("postgres: insert into %s: %w", t.Name, err)
	}
	return tag.RowsAffected(), nil
}

func pgIdent(id string) string { return `"` + id + `"` }

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "..."
	}
	return s
}
