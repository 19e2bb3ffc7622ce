// Package ident normalizes arbitrary field and table names into safe SQL
// identifiers.
package ident

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxLen matches the tightest backend identifier limit (Postgres: 63 bytes).
const maxLen = 63

// A deliberately small set: only words that commonly collide with data field
// names. A full per-dialect list buys little for generated schemas.
var reservedWords = map[string]struct{}{
	"all": {}, "and": {}, "as": {}, "asc": {}, "between": {}, "by": {},
	"case": {}, "check": {}, "column": {}, "create": {}, "default": {},
	"delete": {}, "desc": {}, "distinct": {}, "drop": {}, "else": {},
	"end": {}, "from": {}, "group": {}, "having": {}, "in": {}, "index": {},
	"insert": {}, "into": {}, "is": {}, "join": {}, "key": {}, "like": {},
	"not": {}, "null": {}, "on": {}, "or": {}, "order": {}, "primary": {},
	"references": {}, "select": {}, "set": {}, "table": {}, "then": {},
	"to": {}, "union": {}, "unique": {}, "update": {}, "user": {},
	"values": {}, "when": {}, "where": {},
}

// foldAccents strips combining marks after NFD decomposition, so "Québec"
// normalizes to "quebec" instead of dropping the accented rune entirely.
var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Clean converts an arbitrary input string into a safe, lowercase identifier
// suitable for column and table names:
//
//  1. accents are folded to their base letters
//  2. separator runes become single underscores
//  3. anything outside [a-z0-9_] is dropped
//  4. a leading digit gets an underscore prefix
//  5. reserved words get an underscore prefix
//
// Empty input yields "". Callers decide whether that is an error.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if folded, _, err := transform.String(foldAccents, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))

	lastUnderscore := false
	for _, r := range s {
		if r == ' ' || r == '-' || r == '.' || r == '/' || r == '\\' || r == ':' || r == ';' {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}

		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
			lastUnderscore = (r == '_')
			continue
		}

		// Drop everything else.
	}

	out := strings.Trim(b.String(), "_")
	if out == "" {
		return ""
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	if _, ok := reservedWords[out]; ok {
		out = "_" + out
	}
	return Truncate(out)
}

// Truncate enforces backend identifier length limits while preserving UTF-8
// validity.
func Truncate(s string) string {
	if len(s) <= maxLen {
		return s
	}
	b := []byte(s)
	cut := maxLen
	for cut > 0 && !utf8.Valid(b[:cut]) {
		cut--
	}
	if cut <= 0 {
		return s[:maxLen]
	}
	return string(b[:cut])
}
