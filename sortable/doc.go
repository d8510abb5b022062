// Package sortable defines the ordering contract used by the ordered index in
// [github.com/amp-labs/duesort/maps] and the two key types the sorter builds.
//
// # Key types
//
// [String] orders keys by plain byte-wise string comparison. This is the
// default, and it matches chronological order only when the date part of a
// key has a fixed width (for example "2024-01-05", never "2024-1-5").
//
// [Natural] orders keys the way a person would read them: runs of digits are
// compared numerically, so "2024-1-5-item9" sorts before "2024-1-5-item10".
// Use it when neither dates nor identifiers can be canonicalized upstream.
//
// # Custom types
//
// Anything with Equals and LessThan can key the index:
//
//	type Slot struct {
//	    Day  int
//	    Name string
//	}
//
//	func (s Slot) Equals(o Slot) bool { return s == o }
//
//	func (s Slot) LessThan(o Slot) bool {
//	    if s.Day != o.Day {
//	        return s.Day < o.Day
//	    }
//
//	    return s.Name < o.Name
//	}
package sortable
