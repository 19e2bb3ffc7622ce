package render

import (
	"fmt"

	"ddlgen/internal/lattice"
)

func init() { register(postgresDialect{}) }

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) ColumnType(t lattice.Type, textMode bool) string {
	switch t.Kind {
	case lattice.Bool:
		return "BOOLEAN"
	case lattice.Integer:
		return "BIGINT"
	case lattice.Decimal:
		return fmt.Sprintf("DECIMAL(%d, %d)", t.Precision, t.Scale)
	case lattice.Float:
		return "DOUBLE PRECISION"
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
		// Never observed non-null: text is the only safe choice.
		return "TEXT"
	}
}

func (postgresDialect) SerialType() string { return "SERIAL" }

func (postgresDialect) QuoteIdent(name string) string { return `"` + name + `"` }

func (postgresDialect) Literal(v any) string {
	if b, ok := v.(bool); ok {
		if b {
			return "TRUE"
		}
		return "FALSE"
	}
	if s, ok := literal(v); ok {
		return s
	}
	return quoteString(fmt.Sprint(v))
}
