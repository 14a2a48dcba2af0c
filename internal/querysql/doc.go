// Package querysql compiles navigation graphs to SQL and runs them against
// a live database.
//
// A graph compiles to one SELECT DISTINCT statement:
//
//   - one FROM entry per node, the node's sort aliased by the node id
//   - one SELECT column per window node (the sort's print expression), per
//     window relation instance (the attribute's value expression) and, for a
//     single-node window, per displayed attribute
//   - one WHERE conjunct per relation instance: its scale's predicate over
//     the attribute's value expression
//
// Label values are always bound as parameters, never spliced into the SQL
// text. Every statement is ordered by all of its columns so result tables
// are deterministic.
//
// Column aliases carry provenance ("node:x1", "rnode:e1",
// "display:2:x1:m3") and are decoded back to result.Column when rows are
// read. The display form length-prefixes the node id so the split is
// unambiguous whatever the ids contain.
package querysql
