// Package records reads and writes loosely typed records, the shape data
// usually has when it comes from exports, APIs or spreadsheets: a list of
// objects whose field names are only known at run time.
package records

import "github.com/amp-labs/duesort/keysort"

// Default field names.
const (
	DefaultDueField = "Due_Date"
	DefaultIDField  = "id"
)

// Map is a record with named fields.
type Map map[string]any

// Get returns the named field. A nil value counts as absent.
func (m Map) Get(field string) (any, bool) {
	v, ok := m[field]
	if !ok || v == nil {
		return nil, false
	}

	return v, true
}

// Fields returns accessors that read the due date and id from the given
// field names. Empty names fall back to the defaults.
func Fields(dueField, idField string) keysort.Fields[Map] {
	if dueField == "" {
		dueField = DefaultDueField
	}

	if idField == "" {
		idField = DefaultIDField
	}

	return keysort.Fields[Map]{
		DueDate: func(m Map) (any, bool) { return m.Get(dueField) },
		ID:      func(m Map) (any, bool) { return m.Get(idField) },
	}
}
