// Package records defines the generic record shape shared by the ingestion
// layer and the inference engine.
//
// A Record is a field-name-to-value mapping decoded from any supported input
// format. Values are loosely typed: strings, json.Number, bools, numbers,
// nested Records, or slices of nested Records. Field order is irrelevant;
// records in one batch need not share the same field set.
package records

import "sort"

// Record is one sample data item.
type Record map[string]any

// Batch is an ordered sequence of records, as produced by ingestion.
type Batch []Record

// FieldSet returns the sorted union of field names across all records in the
// batch. Sorting keeps downstream column order deterministic regardless of
// map iteration order.
func (b Batch) FieldSet() []string {
	set := make(map[string]struct{})
	for _, r := range b {
		for k := range r {
			set[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsNested reports whether v is a nested record or a non-empty sequence.
// Sequences of scalars count: each element becomes a single-field child
// record, so a list field always decomposes into a child table. Scalars and
// empty slices are not nested.
func IsNested(v any) bool {
	switch t := v.(type) {
	case Record:
		return true
	case map[string]any:
		return true
	case []Record:
		return len(t) > 0
	case []map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return false
	}
}

// AsRecords normalizes a nested value into a flat []Record:
//
//   - a single nested record becomes a sequence of length one
//   - sequence elements that are scalars are wrapped into a single-field
//     record keyed by field (nesting dominates shape conflicts)
//   - nil elements are skipped
func AsRecords(field string, v any) []Record {
	switch t := v.(type) {
	case Record:
		return []Record{t}
	case map[string]any:
		return []Record{Record(t)}
	case []Record:
		return t
	case []map[string]any:
		out := make([]Record, 0, len(t))
		for _, m := range t {
			out = append(out, Record(m))
		}
		return out
	case []any:
		out := make([]Record, 0, len(t))
		for _, e := range t {
			switch m := e.(type) {
			case nil:
				continue
			case Record:
				out = append(out, m)
			case map[string]any:
				out = append(out, Record(m))
			default:
				out = append(out, Record{field: m})
			}
		}
		return out
	case nil:
		return nil
	default:
		// Scalar occurrence of a field that is nested elsewhere.
		return []Record{{field: t}}
	}
}
