// Package tablemodel builds a canonical, typed table model from a batch of
// loosely-typed records.
//
// The builder walks the batch, profiles each scalar field, recursively spins
// nested structures off into child tables linked by a synthesized key, and
// hands the assembled model to the resolver before callers see it. One build
// is a pure function of its input batch and configuration; independent builds
// share no mutable state, so concurrent builds over separate batches are safe
// without locking.
package tablemodel

import (
	"errors"
	"fmt"

	"ddlgen/internal/profile"
	"ddlgen/pkg/records"
)

// Configuration errors reject malformed input outright: no partial model is
// returned for them.
var (
	ErrEmptyBatch  = errors.New("tablemodel: empty record batch")
	ErrKeyNotFound = errors.New("tablemodel: configured key not present in any record")
)

// Config controls one build.
type Config struct {
	// Table is the base table name. Empty defaults to "generated_table".
	Table string

	// Key names the field to use as the primary key. Empty means none is
	// configured and one is synthesized only when nesting demands it.
	Key string

	// ForceKey gives every table a primary key even without children.
	ForceKey bool

	// Reorder sorts columns alphabetically with the key first. Purely a
	// presentation transform: it never alters types or constraints.
	Reorder bool

	// Uniques controls whether renderers assert UNIQUE constraints from
	// observed distinctness. Uniqueness is always computed either way.
	Uniques bool

	// TextMode forces variable-length text columns instead of sized ones.
	// Consumed by renderers; recorded here so one Config travels the whole
	// pipeline.
	TextMode bool

	// Cushion is extra length/precision padding applied to every observed
	// column's size bounds.
	Cushion int

	// Limit caps how many records ingestion reads. The builder itself always
	// consumes the batch it is given.
	Limit int
}

// Table is the fully inferred, renderer-agnostic model for one table and its
// nested children.
//
// After Build returns, the model is immutable by convention: renderers and
// storage backends only read it.
type Table struct {
	Name string `json:"name"`

	// Path is the position in the nesting tree, e.g. "planets.moons".
	// Parent/child linkage is by value (no back-references), keeping the
	// tree cycle-free and trivially serializable.
	Path string `json:"path"`

	Columns []*profile.Column `json:"columns"`

	// PrimaryKey names the key column, "" when the table has none.
	PrimaryKey string `json:"primary_key,omitempty"`

	// ForeignKey names this table's column referencing the parent key, ""
	// on the root.
	ForeignKey string `json:"foreign_key,omitempty"`
	// References is "parent_table(parent_key)" for child tables.
	References string `json:"references,omitempty"`

	Children []*Table `json:"children,omitempty"`

	// Warnings collects soft inconsistencies (root table only): the build
	// completed but observed data contradicted configured intent.
	Warnings []string `json:"warnings,omitempty"`

	// Rows holds the scalar record values (synthesized keys included) that
	// produced the model. They exist for INSERT rendering and data loading
	// and are excluded from snapshots.
	Rows []records.Record `json:"-"`
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *profile.Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ColumnNames returns column names in model order.
func (t *Table) ColumnNames() []string {
	out := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		out = append(out, c.Name)
	}
	return out
}

// Walk visits the table and every descendant, parents before children.
func (t *Table) Walk(fn func(*Table)) {
	fn(t)
	for _, c := range t.Children {
		c.Walk(fn)
	}
}

func (t *Table) warnf(format string, v ...any) {
	t.Warnings = append(t.Warnings, fmt.Sprintf(format, v...))
}
