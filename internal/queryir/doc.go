// Package queryir provides the predicate intermediate representation that
// scales produce and query backends consume.
//
// A scale turns a constraint label into a Predicate over a single value
// expression, written {0} in templates. The SQL compiler substitutes the
// relation's value expression instantiated over its endpoints and renders
// the predicate with bound parameters:
//
//	[scale.Pattern(label)] → [Predicate] → [querysql: WHERE ... ?]
//	                                    → [Template: "{0} LIKE 'Tol%'"]
//
// PREDICATES:
//
//   - IsNotNull: the weakest constraint, {0} IS NOT NULL
//   - EqualsOne: boolean truth, {0} = 1
//   - HasPrefix: string prefix match, {0} LIKE 'p%'
//   - Between: closed range, {0} BETWEEN 'a' AND 'b'
//   - And: conjunction (empty = always true)
//
// SEALED INTERFACE:
//
// Predicate is sealed using the marker method pattern so backends can switch
// exhaustively:
//
//	switch p := pred.(type) {
//	case IsNotNull:
//	case HasPrefix:
//	...
//	}
//
// Literal values are ir.IRValue (no floats), so rendered templates are
// deterministic and can be compared byte for byte in tests.
package queryir
