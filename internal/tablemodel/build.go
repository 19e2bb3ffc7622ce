package tablemodel

import (
	"fmt"

	"ddlgen/internal/coerce"
	"ddlgen/internal/ident"
	"ddlgen/internal/profile"
	"ddlgen/pkg/records"
)

// Build assembles the full table model for a batch: clean field names,
// profile scalar columns, peel nested structures into child tables, and run
// the key/ordering resolver. The returned root is ready for rendering.
func Build(batch records.Batch, cfg Config) (*Table, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	name := cfg.Table
	if name == "" {
		name = "generated_table"
	}
	name = ident.Clean(name)

	cleaned, err := cleanBatch(batch)
	if err != nil {
		return nil, err
	}

	root := &Table{Name: name, Path: name}
	if err := buildInto(root, cleaned, cfg, true); err != nil {
		return nil, err
	}
	if err := Resolve(root, cfg); err != nil {
		return nil, err
	}
	return root, nil
}

// buildInto profiles one table's batch in place. Key synthesis happens here
// because child rows need concrete key values to carry as foreign keys.
func buildInto(t *Table, batch records.Batch, cfg Config, isRoot bool) error {
	fields := batch.FieldSet()

	nested := make(map[string]bool)
	for _, r := range batch {
		for f, v := range r {
			if records.IsNested(v) {
				nested[f] = true
			}
		}
	}

	var scalar, children []string
	for _, f := range fields {
		if nested[f] {
			children = append(children, f)
		} else {
			scalar = append(scalar, f)
		}
	}

	// Scalar columns and rows.
	cols := make(map[string]*profile.Column, len(scalar))
	for _, f := range scalar {
		cols[f] = profile.New(f)
	}
	t.Rows = make([]records.Record, len(batch))
	for i, r := range batch {
		row := make(records.Record, len(scalar))
		for _, f := range scalar {
			raw, ok := r[f]
			if !ok {
				cols[f].Observe(nil)
				row[f] = nil
				continue
			}
			v := coerce.Coerce(raw)
			cols[f].Observe(raw)
			if v.Null {
				row[f] = nil
			} else {
				row[f] = v.Norm
			}
		}
		t.Rows[i] = row
	}
	for _, f := range scalar {
		t.Columns = append(t.Columns, cols[f])
	}

	// A table needs a key when it has children to reference it, or when the
	// configuration forces one. The explicit key applies to the root only;
	// nested tables have no natural field to promote.
	explicit := isRoot && cfg.Key != ""
	needKey := len(children) > 0 || cfg.ForceKey || explicit
	var keyVals []any
	if needKey {
		var err error
		keyVals, err = buildKey(t, cfg, explicit)
		if err != nil {
			return err
		}
	}

	// Child tables, one per nested field.
	for _, f := range children {
		childBatch := make(records.Batch, 0, len(batch))
		fkVals := make([]any, 0, len(batch))
		for i, r := range batch {
			v, ok := r[f]
			if !ok || v == nil {
				continue
			}
			for _, cr := range records.AsRecords(f, v) {
				childBatch = append(childBatch, cr)
				fkVals = append(fkVals, keyVals[i])
			}
		}
		if len(childBatch) == 0 {
			continue
		}

		child := &Table{
			Name: ident.Truncate(t.Name + "_" + f),
			Path: t.Path + "." + f,
		}
		if err := buildInto(child, childBatch, cfg, false); err != nil {
			return err
		}
		if err := attachForeignKey(child, t, fkVals); err != nil {
			return err
		}
		t.Children = append(t.Children, child)
	}
	return nil
}

// buildKey establishes the table's primary key and returns the per-record key
// values used to stamp child rows.
//
// An explicit key must exist somewhere in the batch; violations of its
// implied constraints are reported as warnings by the resolver, never by
// mutating the observed profile here.
func buildKey(t *Table, cfg Config, explicit bool) ([]any, error) {
	if explicit {
		keyName := ident.Clean(cfg.Key)
		if t.Column(keyName) == nil {
			return nil, fmt.Errorf("%w: %q in table %q", ErrKeyNotFound, cfg.Key, t.Name)
		}
		t.PrimaryKey = keyName
		vals := make([]any, len(t.Rows))
		for i, row := range t.Rows {
			vals[i] = row[keyName]
		}
		return vals, nil
	}

	// Synthesize a serial integer key.
	keyName := serialKeyName(t)
	col := profile.New(keyName)
	col.Synthesized = true
	vals := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		v := int64(i + 1)
		col.Observe(v)
		row[keyName] = v
		vals[i] = v
	}
	t.Columns = append(t.Columns, col)
	t.PrimaryKey = keyName
	return vals, nil
}

// serialKeyName picks "<table>_id", stepping around field-name collisions
// with underscore prefixes.
func serialKeyName(t *Table) string {
	name := ident.Truncate(t.Name + "_id")
	for t.Column(name) != nil {
		name = ident.Truncate("_" + name)
	}
	return name
}

// attachForeignKey adds the parent-reference column to a freshly built child.
// The column copies the parent key's type verbatim so the reference is always
// type-compatible, whatever the child rows alone would have inferred.
func attachForeignKey(child, parent *Table, fkVals []any) error {
	parentKey := parent.Column(parent.PrimaryKey)
	candidates := []string{
		parent.Name + "_" + parent.PrimaryKey,
		parent.Name + "_id",
		"_" + parent.Name + "_id",
		"parent_id",
	}
	if parentKey.Synthesized {
		// The synthesized key is already "<parent>_id"; reuse the name.
		candidates = append([]string{parent.PrimaryKey}, candidates...)
	}
	fkName := ""
	for _, cand := range candidates {
		cand = ident.Truncate(cand)
		if child.Column(cand) == nil {
			fkName = cand
			break
		}
	}
	if fkName == "" {
		return fmt.Errorf("tablemodel: no usable foreign key name in table %q", child.Name)
	}

	col := profile.New(fkName)
	for _, v := range fkVals {
		col.Observe(v)
	}
	col.Type = parentKey.Type
	col.Nullable = false
	col.Synthesized = true

	child.Columns = append(child.Columns, col)
	child.ForeignKey = fkName
	child.References = parent.Name + "(" + parent.PrimaryKey + ")"
	for i, row := range child.Rows {
		row[fkName] = fkVals[i]
	}
	return nil
}

// cleanBatch rewrites every field name (recursively) into a safe SQL
// identifier. Two distinct raw names collapsing to the same identifier is a
// hard error: silently merging columns would corrupt the inference.
func cleanBatch(batch records.Batch) (records.Batch, error) {
	out := make(records.Batch, len(batch))
	for i, r := range batch {
		cr, err := cleanRecord(r)
		if err != nil {
			return nil, err
		}
		out[i] = cr
	}
	return out, nil
}

func cleanRecord(r records.Record) (records.Record, error) {
	out := make(records.Record, len(r))
	for k, v := range r {
		ck := ident.Clean(k)
		if _, dup := out[ck]; dup {
			return nil, fmt.Errorf("tablemodel: field names collide after cleaning: %q", ck)
		}
		cv, err := cleanValue(v)
		if err != nil {
			return nil, err
		}
		out[ck] = cv
	}
	return out, nil
}

func cleanValue(v any) (any, error) {
	switch t := v.(type) {
	case records.Record:
		return cleanRecord(t)
	case map[string]any:
		return cleanRecord(records.Record(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			ce, err := cleanValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = ce
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			ce, err := cleanRecord(records.Record(e))
			if err != nil {
				return nil, err
			}
			out[i] = ce
		}
		return out, nil
	default:
		return v, nil
	}
}
