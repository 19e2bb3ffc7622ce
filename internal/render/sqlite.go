package render

import (
	"fmt"

	"ddlgen/internal/lattice"
)

func init() { register(sqliteDialect{}) }

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) ColumnType(t lattice.Type, textMode bool) string {
	switch t.Kind {
	case lattice.Bool:
		// SQLite has no boolean type; stored as 0/1.
		return "INTEGER"
	case lattice.Integer:
		return "INTEGER"
	case lattice.Decimal:
		return fmt.Sprintf("DECIMAL(%d, %d)", t.Precision, t.Scale)
	case lattice.Float:
		return "REAL"
	case lattice.Date:
		return "DATE"
	case lattice.DateTime:
		return "TIMESTAMP"
	case lattice.Text:
		if textMode || t.Length == 0 {
			return "TEXT"
		}
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	default:
		return "TEXT"
	}
}

func (sqliteDialect) SerialType() string { return "INTEGER" }

func (sqliteDialect) QuoteIdent(name string) string { return `"` + name + `"` }

func (sqliteDialect) Literal(v any) string {
	if b, ok := v.(bool); ok {
		if b {
			return "1"
		}
		return "0"
	}
	if s, ok := literal(v); ok {
		return s
	}
	return quoteString(fmt.Sprint(v))
}
