package tablemodel

import (
	"sort"

	"ddlgen/internal/profile"
)

// Resolve finalizes a built model: it enforces the configured key intent,
// applies size cushioning, and reorders columns when asked. Reordering is
// idempotent; cushioning is applied exactly once, by Build.
func Resolve(root *Table, cfg Config) error {
	resolveKey(root, cfg)
	root.Walk(func(t *Table) {
		for _, c := range t.Columns {
			c.Pad(cfg.Cushion)
		}
		if cfg.Reorder {
			reorder(t)
		}
	})
	return nil
}

// resolveKey applies the explicit-key rule on the root table: configuration
// wins over observation, and the contradiction is surfaced as a warning
// rather than an error or a silent fix.
func resolveKey(root *Table, cfg Config) {
	if root.PrimaryKey == "" {
		return
	}
	col := root.Column(root.PrimaryKey)
	if col == nil || col.Synthesized {
		return
	}
	if !col.Unique {
		root.warnf("key column %q has duplicate values", col.Name)
	}
	if col.Nullable {
		root.warnf("key column %q has missing values", col.Name)
	}
	col.ForceKey()
}

// reorder sorts columns alphabetically with the primary key first. The sort
// is a pure permutation of the existing columns, so applying it again is a
// no-op.
func reorder(t *Table) {
	sort.SliceStable(t.Columns, func(i, j int) bool {
		a, b := t.Columns[i], t.Columns[j]
		if ak, bk := a.Name == t.PrimaryKey, b.Name == t.PrimaryKey; ak != bk {
			return ak
		}
		return a.Name < b.Name
	})
}

// Reorder exposes the key-first alphabetical ordering for callers that sort
// without a full resolve pass.
func Reorder(t *Table) []*profile.Column {
	reorder(t)
	return t.Columns
}
