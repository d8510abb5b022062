package sortable

import "facette.io/natsort"

// Natural is a key compared in natural order: embedded numbers are compared
// by value rather than digit by digit.
//
// Example:
//
//	sortable.Natural("2024-1-5-item9").LessThan("2024-1-5-item10") // true
//	sortable.String("2024-1-5-item9").LessThan("2024-1-5-item10")  // false
type Natural string

// Compile-time check that Natural implements Sortable[Natural].
var _ Sortable[Natural] = (*Natural)(nil)

// Equals reports exact string equality. Keys such as "a01" and "a1" are
// distinct even though natural ordering places them next to each other.
func (n Natural) Equals(other Natural) bool {
	return string(n) == string(other)
}

// LessThan reports whether n sorts before other in natural order.
// natsort.Compare answers true both ways for keys it cannot tell apart
// ("a01" and "a1", or equal strings); those fall back to byte order so
// LessThan stays irreflexive and asymmetric.
func (n Natural) LessThan(other Natural) bool {
	a, b := string(n), string(other)
	if a == b {
		return false
	}

	ab, ba := natsort.Compare(a, b), natsort.Compare(b, a)
	if ab != ba {
		return ab
	}

	return a < b
}
