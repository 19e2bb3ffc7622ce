package render

import (
	"strings"

	"ddlgen/internal/tablemodel"
)

// Options selects which statements Script emits and how text columns render.
type Options struct {
	Creates  bool
	Drops    bool
	Inserts  bool
	Uniques  bool
	TextMode bool
}

// CreateTable renders one CREATE TABLE statement.
func CreateTable(d Dialect, t *tablemodel.Table, opt Options) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(d.QuoteIdent(t.Name))
	b.WriteString(" (\n")

	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("\t")
		b.WriteString(d.QuoteIdent(c.Name))
		b.WriteString(" ")

		switch {
		case c.Name == t.PrimaryKey && c.Synthesized:
			b.WriteString(d.SerialType())
			b.WriteString(" PRIMARY KEY")
		case c.Name == t.PrimaryKey:
			b.WriteString(d.ColumnType(c.Type, opt.TextMode))
			b.WriteString(" PRIMARY KEY")
		default:
			b.WriteString(d.ColumnType(c.Type, opt.TextMode))
			if !c.Nullable {
				b.WriteString(" NOT NULL")
			}
			if opt.Uniques && c.Unique && c.Name != t.ForeignKey {
				b.WriteString(" UNIQUE")
			}
			if c.Name == t.ForeignKey && t.References != "" {
				b.WriteString(" REFERENCES ")
				b.WriteString(quoteReferences(d, t.References))
			}
		}
	}
	b.WriteString("\n)")
	return b.String()
}

// DropTable renders a guarded DROP statement.
func DropTable(d Dialect, t *tablemodel.Table) string {
	return "DROP TABLE IF EXISTS " + d.QuoteIdent(t.Name)
}

// Inserts renders one INSERT per sampled row, columns in model order.
func Inserts(d Dialect, t *tablemodel.Table) []string {
	if len(t.Rows) == 0 {
		return nil
	}
	cols := t.ColumnNames()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = d.QuoteIdent(c)
	}
	head := "INSERT INTO " + d.QuoteIdent(t.Name) + " (" + strings.Join(quoted, ", ") + ") VALUES ("

	out := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		vals := make([]string, len(cols))
		for i, c := range cols {
			vals[i] = d.Literal(row[c])
		}
		out = append(out, head+strings.Join(vals, ", ")+")")
	}
	return out
}

// Statements renders the full statement sequence for a table tree: drops
// children-first, creates parents-first, then inserts parents-first so
// foreign key targets exist before their referents.
func Statements(d Dialect, root *tablemodel.Table, opt Options) []string {
	var stmts []string

	if opt.Drops {
		var order []*tablemodel.Table
		root.Walk(func(t *tablemodel.Table) { order = append(order, t) })
		for i := len(order) - 1; i >= 0; i-- {
			stmts = append(stmts, DropTable(d, order[i]))
		}
	}
	if opt.Creates {
		root.Walk(func(t *tablemodel.Table) {
			stmts = append(stmts, CreateTable(d, t, opt))
		})
	}
	if opt.Inserts {
		root.Walk(func(t *tablemodel.Table) {
			stmts = append(stmts, insertBlock(d, t)...)
		})
	}
	return stmts
}

// Script joins Statements into one executable SQL text.
func Script(d Dialect, root *tablemodel.Table, opt Options) string {
	var b strings.Builder
	for _, s := range Statements(d, root, opt) {
		b.WriteString(s)
		b.WriteString(";\n")
	}
	return b.String()
}

// identityInserter is implemented by dialects whose auto-incrementing keys
// reject explicit values unless toggled (SQL Server).
type identityInserter interface {
	IdentityInsert(table string, on bool) string
}

func insertBlock(d Dialect, t *tablemodel.Table) []string {
	ins := Inserts(d, t)
	if len(ins) == 0 {
		return nil
	}
	pk := t.Column(t.PrimaryKey)
	ii, ok := d.(identityInserter)
	if !ok || pk == nil || !pk.Synthesized {
		return ins
	}
	out := make([]string, 0, len(ins)+2)
	out = append(out, ii.IdentityInsert(t.Name, true))
	out = append(out, ins...)
	out = append(out, ii.IdentityInsert(t.Name, false))
	return out
}

// quoteReferences rewrites "table(column)" with dialect quoting.
func quoteReferences(d Dialect, ref string) string {
	open := strings.IndexByte(ref, '(')
	if open < 0 || !strings.HasSuffix(ref, ")") {
		return ref
	}
	table := ref[:open]
	column := ref[open+1 : len(ref)-1]
	return d.QuoteIdent(table) + " (" + d.QuoteIdent(column) + ")"
}
