package ranking

type valueKind int

const (
	kindNumber valueKind = iota
	kindNone
	kindUnavailable
)

// Value is a table cell amount that may be a real number or one of two
// placeholder states: None (no row above the leader) and Unavailable
// (no reference player to compare against). Keeping the states tagged
// instead of overloading an int keeps formatting type-safe.
type Value struct {
	kind valueKind
	n    int64
}

// Number wraps an integer amount.
func Number(n int64) Value {
	return Value{kind: kindNumber, n: n}
}

// None is the placeholder for "no value exists" (the top-ranked row's gap).
func None() Value {
	return Value{kind: kindNone}
}

// Unavailable is the placeholder for "cannot be computed" (reference unset
// or not present in the current snapshot).
func Unavailable() Value {
	return Value{kind: kindUnavailable}
}

// Int returns the numeric amount and whether the value holds one.
func (v Value) Int() (int64, bool) {
	return v.n, v.kind == kindNumber
}

// IsNone reports whether the value is the None placeholder.
func (v Value) IsNone() bool {
	return v.kind == kindNone
}

// IsUnavailable reports whether the value is the Unavailable placeholder.
func (v Value) IsUnavailable() bool {
	return v.kind == kindUnavailable
}
