package ident

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClean(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"First Name", "first_name"},
		{"Zip-Code", "zip_code"},
		{"Québec", "quebec"},
		{"äöü", "aou"},
		{"a  b--c", "a_b_c"},
		{"path/to.field", "path_to_field"},
		{"1st_place", "_1st_place"},
		{"select", "_select"},
		{"order", "_order"},
		{"already_clean", "already_clean"},
		{"__wrapped__", "wrapped"},
		{"  spaced  ", "spaced"},
		{"£$%", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Clean(tc.in); got != tc.want {
			t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanIdempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"First Name", "Québec", "1st_place", "select"} {
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Errorf("Clean(Clean(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 100)
	if got := Truncate(long); len(got) != maxLen {
		t.Errorf("len = %d, want %d", len(got), maxLen)
	}
	if got := Truncate("short"); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}

	// Cutting must never split a multi-byte rune.
	multi := strings.Repeat("é", 40)
	got := Truncate(multi)
	if !utf8.ValidString(got) {
		t.Errorf("Truncate produced invalid UTF-8: %q", got)
	}
	if len(got) > maxLen {
		t.Errorf("len = %d, want <= %d", len(got), maxLen)
	}
}
