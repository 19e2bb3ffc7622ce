// Package render turns an inferred table model into SQL for a concrete
// dialect: CREATE TABLE statements, DROP statements, and INSERTs for the
// sampled rows.
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ddlgen/internal/lattice"
)

// Dialect captures what differs between target databases: type names, the
// auto-incrementing key column form, identifier quoting, and literal syntax.
type Dialect interface {
	Name() string

	// ColumnType maps an inferred type to the dialect's column type. textMode
	// forces unbounded text for text columns.
	ColumnType(t lattice.Type, textMode bool) string

	// SerialType is the column type of a synthesized auto-incrementing key.
	SerialType() string

	QuoteIdent(name string) string
	Literal(v any) string
}

var dialects = map[string]Dialect{}

func register(d Dialect) {
	if _, dup := dialects[d.Name()]; dup {
		panic(fmt.Sprintf("render: dialect %q registered twice", d.Name()))
	}
	dialects[d.Name()] = d
}

// Get returns the named dialect.
func Get(name string) (Dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("render: unknown dialect %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return d, nil
}

// Names lists registered dialects, sorted.
func Names() []string {
	out := make([]string, 0, len(dialects))
	for n := range dialects {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// quoteString produces a standard single-quoted SQL string literal.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// timeLiteral renders a timestamp, using the date-only form when the clock
// part is zero.
func timeLiteral(t time.Time) string {
	if h, m, s := t.Clock(); h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 {
		return "'" + t.Format("2006-01-02") + "'"
	}
	return "'" + t.Format("2006-01-02 15:04:05") + "'"
}

// literal renders the dialect-independent literals. Booleans differ per
// dialect and are handled by the callers.
func literal(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "NULL", true
	case string:
		return quoteString(t), true
	case int64:
		return fmt.Sprintf("%d", t), true
	case float64:
		return fmt.Sprintf("%g", t), true
	case decimal.Decimal:
		return t.String(), true
	case time.Time:
		return timeLiteral(t), true
	default:
		return "", false
	}
}
