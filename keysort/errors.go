package keysort

import (
	"fmt"

	duerrors "github.com/amp-labs/duesort/errors"
)

// Re-exported so callers only need this package for errors.Is checks.
var (
	ErrInvalidRecord = duerrors.ErrInvalidRecord
	ErrInvalidDate   = duerrors.ErrInvalidDate
	ErrDuplicateKey  = duerrors.ErrDuplicateKey

	ErrUnknownPolicy     = duerrors.ErrUnknownPolicy
	ErrUnknownComparison = duerrors.ErrUnknownComparison
)

const (
	FieldDueDate = "dueDate"
	FieldID      = "id"
)

// RecordError reports which record and which field could not be turned into
// a key.
type RecordError struct {
	Index int
	Field string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %s: %v", e.Index, e.Field, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// DuplicateKeyError reports two input positions that produced the same key.
type DuplicateKeyError struct {
	Key    string
	First  int
	Second int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%v: %q from records %d and %d", duerrors.ErrDuplicateKey, e.Key, e.First, e.Second)
}

func (e *DuplicateKeyError) Unwrap() error {
	return duerrors.ErrDuplicateKey
}
