// Package scale implements the strategies that turn a many-valued
// attribute's value domain into constraint predicates and statistics.
//
// A Scale is bound to at most one MVA. Every relation instance of that MVA
// carries a label, an ir.IRValue that the scale understands:
//
//	Boolean       IRString("1")
//	Prefix        IRString(prefix), "" meaning IS NOT NULL
//	DateInterval  IRArray{IRInt(minYear), IRInt(maxYear)}
//
// Scales form a closed set. Backends dispatch with a type switch or through
// the Scale interface, never by class name.
package scale
