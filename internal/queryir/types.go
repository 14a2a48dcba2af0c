package queryir

import "github.com/roach88/dbnav/internal/ir"

// Placeholder is the token standing for the constrained value expression in
// rendered templates.
const Placeholder = "{0}"

// Predicate represents a constraint on one value expression.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// IsNotNull holds when the value expression is not NULL.
//
//	{0} IS NOT NULL
type IsNotNull struct{}

func (IsNotNull) predicateNode() {}

// EqualsOne holds when the value expression equals the integer 1. Boolean
// columns are compared numerically so MySQL TINYINT(1) and SQLite integers
// behave alike.
//
//	{0} = 1
type EqualsOne struct{}

func (EqualsOne) predicateNode() {}

// HasPrefix holds when the value expression starts with Prefix.
//
//	{0} LIKE 'Prefix%'
//
// Prefix must be non-empty; the empty prefix is IsNotNull. Backends escape
// LIKE wildcards occurring inside Prefix.
type HasPrefix struct {
	Prefix string
}

func (HasPrefix) predicateNode() {}

// Between holds when Low <= {0} <= High.
//
//	{0} BETWEEN 'Low' AND 'High'
//
// Low and High must have the same IR type.
type Between struct {
	Low  ir.IRValue
	High ir.IRValue
}

func (Between) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
// An empty Predicates slice means "always true".
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}
