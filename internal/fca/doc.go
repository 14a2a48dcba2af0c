// Package fca is the in-memory query backend: a family of formal contexts
// and a backtracking matcher that embeds a navigation graph into it.
//
// The object context relates objects to their sorts. Every relation
// attribute owns a relation context of object tuples, each incident to one
// or more labels. A relation instance with label L matches the tuples having
// some label that L admits under the attribute's scale.
//
// Matching finds every assignment of graph nodes to objects under which each
// relation instance maps onto a matching tuple, and projects the
// assignments onto the requested window.
package fca
