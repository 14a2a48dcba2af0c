package schema

import (
	"errors"
	"fmt"
)

// Sort is an object type, typically a table name. The zero value is the
// unbound sort, meaning "not yet typed".
type Sort string

// Unbound is the bottom of the sort order.
const Unbound Sort = ""

// Bound reports whether s is a concrete sort.
func (s Sort) Bound() bool { return s != Unbound }

// String renders the unbound sort as "<unbound>".
func (s Sort) String() string {
	if !s.Bound() {
		return "<unbound>"
	}
	return string(s)
}

// ErrSupremumUndefined is returned when two distinct bound sorts are joined.
var ErrSupremumUndefined = errors.New("supremum undefined")

// SortLeq reports a ≤ b in the flat sort order: unbound is below every sort
// and distinct bound sorts are incomparable.
func SortLeq(a, b Sort) bool {
	return !a.Bound() || a == b
}

// SortSup returns the least upper bound of a and b.
func SortSup(a, b Sort) (Sort, error) {
	switch {
	case SortLeq(a, b):
		return b, nil
	case SortLeq(b, a):
		return a, nil
	default:
		return Unbound, fmt.Errorf("%w: sorts %s and %s", ErrSupremumUndefined, a, b)
	}
}
