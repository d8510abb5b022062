package keysort

// Record is implemented by values that expose the two fields the sort key
// is built from. The boolean reports presence; an absent field makes the
// record invalid.
type Record interface {
	DueDate() (any, bool)
	ID() (any, bool)
}

// Fields tells the sorter how to read the due date and identifier of an R.
// Use it for types that cannot implement Record, such as maps or types from
// another package.
type Fields[R any] struct {
	DueDate func(R) (any, bool)
	ID      func(R) (any, bool)
}

// RecordFields returns accessors for a type implementing Record.
func RecordFields[R Record]() Fields[R] {
	return Fields[R]{
		DueDate: func(r R) (any, bool) { return r.DueDate() },
		ID:      func(r R) (any, bool) { return r.ID() },
	}
}
