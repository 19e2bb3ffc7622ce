package records

import (
	"reflect"
	"testing"
)

func TestFieldSet(t *testing.T) {
	t.Parallel()

	b := Batch{
		{"b": 1, "a": 2},
		{"c": 3},
		{"a": nil},
	}
	want := []string{"a", "b", "c"}
	if got := b.FieldSet(); !reflect.DeepEqual(got, want) {
		t.Errorf("FieldSet = %v, want %v", got, want)
	}
	if got := (Batch{}).FieldSet(); len(got) != 0 {
		t.Errorf("empty batch FieldSet = %v", got)
	}
}

func TestIsNested(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		v    any
		want bool
	}{
		{"record", Record{"a": 1}, true},
		{"raw map", map[string]any{"a": 1}, true},
		{"slice of maps", []any{map[string]any{"a": 1}}, true},
		{"mixed slice", []any{"x", map[string]any{"a": 1}}, true},
		{"scalar slice", []any{1, 2}, true},
		{"string slice", []any{"rocky", "inhabited"}, true},
		{"empty slice", []any{}, false},
		{"string", "x", false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := IsNested(tc.v); got != tc.want {
			t.Errorf("%s: IsNested = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAsRecords(t *testing.T) {
	t.Parallel()

	// A single nested record is a sequence of length one.
	got := AsRecords("x", map[string]any{"a": 1})
	if len(got) != 1 || got[0]["a"] != 1 {
		t.Errorf("single record = %v", got)
	}

	// Scalar elements wrap into single-field records; nils are skipped.
	got = AsRecords("tag", []any{"red", nil, map[string]any{"tag": "blue"}})
	if len(got) != 2 {
		t.Fatalf("records = %v, want 2", got)
	}
	if got[0]["tag"] != "red" || got[1]["tag"] != "blue" {
		t.Errorf("records = %v", got)
	}

	// A scalar occurrence of an elsewhere-nested field wraps too.
	got = AsRecords("tag", "green")
	if len(got) != 1 || got[0]["tag"] != "green" {
		t.Errorf("scalar occurrence = %v", got)
	}

	if AsRecords("x", nil) != nil {
		t.Error("AsRecords(nil) should be nil")
	}
}
