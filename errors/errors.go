// Package errors defines the error kinds reported while deriving keys and
// ordering records, plus a small accumulator for reporting several at once.
package errors

import "errors"

var (
	// ErrInvalidRecord means a record is missing its due date or identifier.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidDate means a due date could not be read as a date. It always
	// travels together with ErrInvalidRecord.
	ErrInvalidDate = errors.New("invalid due date")

	// ErrDuplicateKey means two records produced the same sort key, which
	// only happens when identifiers are not unique.
	ErrDuplicateKey = errors.New("duplicate sort key")

	ErrUnknownPolicy     = errors.New("unknown duplicate policy")
	ErrUnknownComparison = errors.New("unknown comparison")
	ErrUnknownFormat     = errors.New("unknown record format")
)

// Collection is a thread-unsafe utility for accumulating multiple errors.
// Use it when every problem should be reported instead of stopping at the
// first one.
type Collection struct {
	errors []error
}

// Add appends an error to the collection. Nil errors are ignored.
func (c *Collection) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// HasError returns true if the collection contains at least one error.
func (c *Collection) HasError() bool {
	return len(c.errors) > 0
}

// Len returns the number of collected errors.
func (c *Collection) Len() int {
	return len(c.errors)
}

// GetError returns nil for an empty collection, the error itself when there
// is only one, and errors.Join of all of them otherwise.
func (c *Collection) GetError() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}
