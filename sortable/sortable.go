package sortable

// Sortable is implemented by types that can be totally ordered.
// LessThan must be a strict weak ordering consistent with Equals.
type Sortable[T any] interface {
	Equals(other T) bool
	LessThan(other T) bool
}

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal to,
// or after b.
func Compare[T Sortable[T]](a, b T) int {
	switch {
	case a.Equals(b):
		return 0
	case a.LessThan(b):
		return -1
	default:
		return 1
	}
}
