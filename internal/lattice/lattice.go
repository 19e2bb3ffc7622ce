// Package lattice defines the ordered set of candidate scalar types and the
// promotion rule used to unify conflicting observations into one type per
// column.
//
// Candidate types form a partial order of increasing generality:
//
//	boolean < integer < decimal(p,s) < floating < date < datetime < text(n)
//
// Boolean and the numeric/temporal families are mutually incomparable except
// through promotion to text, which accepts everything. Join returns the least
// upper bound of two types and is commutative, associative, and monotonic, so
// the final column type never depends on record order.
package lattice

import "fmt"

// Kind is a closed enumeration of candidate scalar types.
type Kind int

const (
	// Unknown is the state of a column with no non-null observations yet.
	// It is the identity element of Join.
	Unknown Kind = iota
	Bool
	Integer
	Decimal
	Float
	Date
	DateTime
	Text
)

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "unknown"
	case Bool:
		return "boolean"
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case Float:
		return "float"
	case Date:
		return "date"
	case DateTime:
		return "datetime"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type is a candidate type tag plus the size metadata observed so far.
//
// Length is the maximum textual-representation length seen for the column and
// is maintained for every kind, so promotion to text never has to re-derive
// it. Precision/Scale are meaningful for Integer (digit count, scale 0) and
// Decimal only.
type Type struct {
	Kind      Kind `json:"kind"`
	Length    int  `json:"length,omitempty"`
	Precision int  `json:"precision,omitempty"`
	Scale     int  `json:"scale,omitempty"`
}

func (t Type) String() string {
	switch t.Kind {
	case Decimal:
		return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Scale)
	case Text:
		return fmt.Sprintf("text(%d)", t.Length)
	default:
		return t.Kind.String()
	}
}

// Join returns the least general type both a and b are assignable to.
//
// Promotion rules:
//   - integer ⊔ decimal  → decimal sized to cover both exactly
//   - {integer,decimal} ⊔ float → float
//   - date ⊔ datetime → datetime
//   - boolean ⊔ anything-non-boolean → text (0/1 flags must not silently
//     become booleans, so booleans are not numerically promotable)
//   - any ⊔ text, and any incomparable pair → text, length = max of both
//
// Numeric joins widen precision and scale to the maximum needed to represent
// every observed value with no silent precision loss.
func Join(a, b Type) Type {
	if a.Kind == Unknown {
		return b
	}
	if b.Kind == Unknown {
		return a
	}

	maxLen := maxInt(a.Length, b.Length)

	if a.Kind == b.Kind {
		out := Type{Kind: a.Kind, Length: maxLen}
		switch a.Kind {
		case Integer:
			out.Precision = maxInt(a.Precision, b.Precision)
		case Decimal:
			out.Precision, out.Scale = widenDecimal(a, b)
		}
		return out
	}

	lo, hi := a, b
	if lo.Kind > hi.Kind {
		lo, hi = hi, lo
	}

	switch {
	case hi.Kind == Text:
		return Type{Kind: Text, Length: maxLen}

	case lo.Kind == Integer && hi.Kind == Decimal:
		p, s := widenDecimal(lo, hi)
		return Type{Kind: Decimal, Length: maxLen, Precision: p, Scale: s}

	case (lo.Kind == Integer || lo.Kind == Decimal) && hi.Kind == Float:
		return Type{Kind: Float, Length: maxLen}

	case lo.Kind == Date && hi.Kind == DateTime:
		return Type{Kind: DateTime, Length: maxLen}
	}

	// Incomparable pair (boolean vs anything, numeric vs temporal, ...):
	// only text accepts both.
	return Type{Kind: Text, Length: maxLen}
}

// widenDecimal computes the precision/scale covering both operands exactly.
// Integers participate with scale 0 and precision = digit count, so an
// integer ⊔ decimal join keeps enough places on both sides of the point.
func widenDecimal(a, b Type) (precision, scale int) {
	before := maxInt(a.Precision-a.Scale, b.Precision-b.Scale)
	scale = maxInt(a.Scale, b.Scale)
	return before + scale, scale
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
