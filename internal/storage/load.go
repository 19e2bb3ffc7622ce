package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"ddlgen/internal/render"
	"ddlgen/internal/tablemodel"
)

// Logger is the minimal logging interface used by the loader. *log.Logger
// satisfies this interface.
type Logger interface {
	Printf(format string, v ...any)
}

// Loader runs a full model load against one repository.
type Loader struct {
	Repo Repository

	// Logger receives per-table progress. Nil means silent.
	Logger Logger
}

func (l *Loader) logf(format string, v ...any) {
	if l.Logger != nil {
		l.Logger.Printf(format, v...)
	}
}

// Run creates the model's tables and inserts every sampled row, parents
// before children so foreign key targets exist first. Returns the total rows
// written.
func (l *Loader) Run(ctx context.Context, root *tablemodel.Table, opt render.Options) (int64, error) {
	if err := l.Repo.EnsureTables(ctx, root, opt); err != nil {
		return 0, err
	}
	l.logf("ensured tables for %s", root.Name)

	var (
		total int64
		order []*tablemodel.Table
	)
	root.Walk(func(t *tablemodel.Table) { order = append(order, t) })
	for _, t := range order {
		if len(t.Rows) == 0 {
			continue
		}
		n, err := l.Repo.InsertRows(ctx, t)
		if err != nil {
			return total, fmt.Errorf("storage: load %s: %w", t.Name, err)
		}
		l.logf("loaded %d rows into %s", n, t.Name)
		total += n
	}
	return total, nil
}

// Load is the silent convenience form of Loader.Run.
func Load(ctx context.Context, repo Repository, root *tablemodel.Table, opt render.Options) (int64, error) {
	l := Loader{Repo: repo}
	return l.Run(ctx, root, opt)
}

// TableRows flattens a table's sampled records into driver-ready positional
// rows aligned to the returned column list. Decimals pass as strings so every
// driver can bind them without special-casing the type.
func TableRows(t *tablemodel.Table) ([]string, [][]any) {
	cols := t.ColumnNames()
	rows := make([][]any, 0, len(t.Rows))
	for _, rec := range t.Rows {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = driverValue(rec[c])
		}
		rows = append(rows, row)
	}
	return cols, rows
}

func driverValue(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.String()
	}
	return v
}
