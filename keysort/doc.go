// Package keysort orders records by a composite key built from a due date and
// a unique identifier.
//
// For every record the sorter derives
//
//	key = textual(dueDate) + separator + textual(id)
//
// puts (key, record) into an ordered index and reads the index back in
// ascending key order. Appending the identifier keeps keys unique when due
// dates collide, so the result is a total order.
//
//	in := []Task{
//	    {Due: "2024-01-05", Id: "b"},
//	    {Due: "2024-01-01", Id: "a"},
//	    {Due: "2024-01-05", Id: "a"},
//	}
//
//	out, err := keysort.Sort(ctx, in)
//	// out: (2024-01-01, a), (2024-01-05, a), (2024-01-05, b)
//
// # Dates
//
// Key comparison is on strings, so dates must have a fixed width for string
// order to match calendar order. By default every due date is rewritten to
// 2006-01-02 before it becomes part of a key: time.Time values are formatted,
// strings are parsed with a list of accepted layouts and reformatted. Use
// WithCanonicalDates(false) to take strings verbatim, or CompareNatural when
// the data cannot be normalized.
//
// # Duplicates
//
// Identical keys only appear when identifiers repeat. The policy decides:
//   - DuplicateFail (default) stops with ErrDuplicateKey.
//   - DuplicateKeepOrder keeps every record; equal keys keep input order.
//   - DuplicateLastWins keeps only the last record for a key and drops the
//     earlier ones, logging each drop.
//
// # Errors
//
// A record without a due date or identifier fails the whole call with a
// *RecordError wrapping ErrInvalidRecord. No partial result is returned.
//
// Records are never copied or modified; the result shares them with the input.
package keysort
