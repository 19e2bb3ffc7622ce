// Package profile accumulates per-column type, size, nullability, and
// uniqueness state across a record batch.
package profile

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"ddlgen/internal/coerce"
	"ddlgen/internal/lattice"
)

// Column is the accumulated state for one field across all records seen.
//
// The inferred type only ever generalizes (the lattice join is monotonic),
// Nullable only flips false-to-true, and Unique only flips true-to-false, so
// the final profile is independent of observation order.
type Column struct {
	Name string       `json:"name"`
	Type lattice.Type `json:"type"`

	Nullable bool `json:"nullable"`
	Unique   bool `json:"unique"`

	// Synthesized marks columns invented by the engine (serial keys, foreign
	// keys) rather than observed in the data.
	Synthesized bool `json:"synthesized,omitempty"`

	// seen tracks distinct non-null values until the first duplicate.
	// It grows with the number of distinct values in the batch; that
	// unbounded auxiliary memory is the documented cost of exact uniqueness
	// tracking. Once uniqueness is lost the set is dropped to release memory.
	seen map[string]struct{}
}

// New returns an empty profile for a named field. Columns start unique: a
// single observed row cannot contradict uniqueness.
func New(name string) *Column {
	return &Column{
		Name:   name,
		Unique: true,
		seen:   make(map[string]struct{}),
	}
}

// Observe folds one raw field value into the profile: coerce, join the type,
// update size bounds, nullability, and the uniqueness set.
//
// A null or missing value contributes no type information and flips Nullable.
func (c *Column) Observe(raw any) {
	v := coerce.Coerce(raw)
	if v.Null {
		c.Nullable = true
		return
	}

	c.Type = lattice.Join(c.Type, v.Type)

	if !c.Unique {
		return
	}
	if c.seen == nil {
		// Snapshot-loaded profiles carry no distinct-value set.
		c.seen = make(map[string]struct{})
	}
	key := uniqKey(v.Norm)
	if _, dup := c.seen[key]; dup {
		c.Unique = false
		c.seen = nil
		return
	}
	c.seen[key] = struct{}{}
}

// ForceKey marks the column as an explicit primary key: unique and non-null
// regardless of what the data showed. Callers surface the contradiction (if
// any) as a warning before calling this.
func (c *Column) ForceKey() {
	c.Unique = true
	c.Nullable = false
	c.seen = nil
}

// Pad widens size bounds by cushion characters/digits. Zero is a no-op.
func (c *Column) Pad(cushion int) {
	if cushion <= 0 || c.Type.Kind == lattice.Unknown {
		return
	}
	c.Type.Length += cushion
	if c.Type.Kind == lattice.Integer || c.Type.Kind == lattice.Decimal {
		c.Type.Precision += cushion
	}
}

// uniqKey produces a canonical string form of a normalized value for the
// distinct-value set, so 7, "7", and 7.0 from different records compare the
// way their joined column type would compare them.
func uniqKey(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case decimal.Decimal:
		return t.String()
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}
