// Package coerce interprets raw field values as candidate scalar types.
//
// Coerce tries the candidates in the lattice's specific-to-general order
// (boolean, integer, decimal, float, date, datetime) and the first matcher
// that accepts the value wins. The matcher list is an explicit ordered slice
// of pure predicate+parse functions so the precedence is auditable and
// testable in isolation.
//
// Coercion fails closed: a value that matches no pattern is classified as
// text sized to its character length, never rejected.
package coerce

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"ddlgen/internal/lattice"
)

// Value is the result of coercing one raw field value.
//
// Null values carry no type contribution (Type.Kind == lattice.Unknown); the
// profile layer uses Null to flip nullability instead.
type Value struct {
	Type lattice.Type
	// Norm is the normalized typed value: bool, int64, decimal.Decimal,
	// float64, time.Time, or string.
	Norm any
	Null bool
}

// Coerce classifies a raw value from a decoded record.
//
// Raw values arrive as whatever the ingestion decoders produce: nil, bool,
// string, json.Number, float64, int variants, or time.Time (YAML). Empty and
// whitespace-only strings are treated as null, matching how sampling treats
// blank CSV cells.
func Coerce(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Value{Null: true}

	case bool:
		return boolValue(t)

	case int:
		return intValue(int64(t))
	case int32:
		return intValue(int64(t))
	case int64:
		return intValue(t)

	case json.Number:
		return coerceString(t.String())

	case float64:
		// Root decoders use json.Number, so a float64 here came from a
		// source without literal text (e.g. YAML). Shortest-representation
		// decimal keeps the inferred scale deterministic.
		return decimalValue(decimal.NewFromFloat(t))
	case float32:
		return decimalValue(decimal.NewFromFloat32(t))

	case time.Time:
		return timeValue(t)

	case string:
		return coerceString(t)

	case []byte:
		return coerceString(string(t))

	default:
		return textValue(fmt.Sprint(t))
	}
}

// matcher is one entry of the ordered specific-to-general candidate list.
type matcher func(s string) (Value, bool)

// matchers is the authoritative precedence order. Date is tried before
// datetime so date-only literals stay dates until a timestamp forces a join.
var matchers = []matcher{
	matchBool,
	matchInteger,
	matchDecimal,
	matchFloat,
	matchDate,
	matchDateTime,
}

func coerceString(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Value{Null: true}
	}
	for _, m := range matchers {
		if v, ok := m(trimmed); ok {
			return v
		}
	}
	return textValue(trimmed)
}

//
// boolean
//

func matchBool(s string) (Value, bool) {
	switch strings.ToLower(s) {
	case "1", "t", "true", "yes", "y":
		return boolValue(true), true
	case "0", "f", "false", "no", "n":
		return boolValue(false), true
	default:
		return Value{}, false
	}
}

func boolValue(b bool) Value {
	n := 4
	if !b {
		n = 5
	}
	return Value{Type: lattice.Type{Kind: lattice.Bool, Length: n}, Norm: b}
}

//
// integer
//

var thousandsInt = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+$`)

func matchInteger(s string) (Value, bool) {
	if thousandsInt.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Value{}, false
	}
	return intValue(n), true
}

func intValue(n int64) Value {
	repr := strconv.FormatInt(n, 10)
	digits := len(repr)
	if n < 0 {
		digits--
	}
	return Value{
		Type: lattice.Type{Kind: lattice.Integer, Length: len(repr), Precision: digits},
		Norm: n,
	}
}

//
// decimal
//

var thousandsDec = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+\.\d+$`)

func matchDecimal(s string) (Value, bool) {
	if thousandsDec.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Value{}, false
	}
	return decimalValue(d), true
}

// decimalValue derives precision and scale from the normalized literal's
// digit counts, not from a binary float representation, so "0.0691" always
// infers scale 4.
func decimalValue(d decimal.Decimal) Value {
	repr := d.String()

	scale := 0
	intDigits := len(repr)
	if i := strings.IndexByte(repr, '.'); i >= 0 {
		scale = len(repr) - i - 1
		intDigits = i
	}
	if strings.HasPrefix(repr, "-") || strings.HasPrefix(repr, "+") {
		intDigits--
	}
	// "0.0691" has no meaningful digits before the point.
	if intDigits == 1 && strings.Trim(repr, "-+")[0] == '0' && scale > 0 {
		intDigits = 0
	}

	return Value{
		Type: lattice.Type{
			Kind:      lattice.Decimal,
			Length:    len(repr),
			Precision: intDigits + scale,
			Scale:     scale,
		},
		Norm: d,
	}
}

//
// float
//

// matchFloat catches what the exact-decimal path cannot: infinities, NaN,
// and exponents outside decimal range. Ordinary numeric literals never reach
// it because integer and decimal run first.
func matchFloat(s string) (Value, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, false
	}
	return Value{
		Type: lattice.Type{Kind: lattice.Float, Length: len(s)},
		Norm: f,
	}, true
}

//
// date / datetime
//

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
	"02.01.2006 15:04:05",
	"2006-01-02 15:04",
}

func matchDate(s string) (Value, bool) {
	for _, lay := range dateLayouts {
		if t, err := time.Parse(lay, s); err == nil {
			return Value{
				Type: lattice.Type{Kind: lattice.Date, Length: utf8.RuneCountInString(s)},
				Norm: t,
			}, true
		}
	}
	return Value{}, false
}

func matchDateTime(s string) (Value, bool) {
	for _, lay := range dateTimeLayouts {
		if t, err := time.Parse(lay, s); err == nil {
			return Value{
				Type: lattice.Type{Kind: lattice.DateTime, Length: utf8.RuneCountInString(s)},
				Norm: t,
			}, true
		}
	}
	return Value{}, false
}

// timeValue classifies decoder-native timestamps (YAML). A zero clock is
// treated as a plain date; anything else is a datetime.
func timeValue(t time.Time) Value {
	h, m, s := t.Clock()
	if h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 {
		return Value{Type: lattice.Type{Kind: lattice.Date, Length: len("2006-01-02")}, Norm: t}
	}
	return Value{Type: lattice.Type{Kind: lattice.DateTime, Length: len(time.RFC3339)}, Norm: t}
}

//
// text
//

func textValue(s string) Value {
	return Value{
		Type: lattice.Type{Kind: lattice.Text, Length: utf8.RuneCountInString(s)},
		Norm: s,
	}
}
