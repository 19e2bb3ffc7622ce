package render

import (
	"fmt"

	"ddlgen/internal/lattice"
)

func init() { register(mssqlDialect{}) }

type mssqlDialect struct{}

func (mssqlDialect) Name() string { return "mssql" }

func (mssqlDialect) ColumnType(t lattice.Type, textMode bool) string {
	switch t.Kind {
	case lattice.Bool:
		return "BIT"
	case lattice.Integer:
		return "BIGINT"
	case lattice.Decimal:
		return fmt.Sprintf("DECIMAL(%d, %d)", t.Precision, t.Scale)
	case lattice.Float:
		return "FLOAT"
	case lattice.Date:
		return "DATE"
	case lattice.DateTime:
		return "DATETIME2"
	case lattice.Text:
		if textMode || t.Length == 0 {
			return "NVARCHAR(MAX)"
		}
		return fmt.Sprintf("NVARCHAR(%d)", t.Length)
	default:
		return "NVARCHAR(MAX)"
	}
}

func (mssqlDialect) SerialType() string { return "INT IDENTITY(1,1)" }

func (mssqlDialect) IdentityInsert(table string, on bool) string {
	state := "OFF"
	if on {
		state = "ON"
	}
	return "SET IDENTITY_INSERT [" + table + "] " + state
}

func (mssqlDialect) QuoteIdent(name string) string { return "[" + name + "]" }

func (mssqlDialect) Literal(v any) string {
	if b, ok := v.(bool); ok {
		if b {
			return "1"
		}
		return "0"
	}
	if s, ok := v.(string); ok {
		// National character literal.
		return "N" + quoteString(s)
	}
	if s, ok := literal(v); ok {
		return s
	}
	return "N" + quoteString(fmt.Sprint(v))
}
