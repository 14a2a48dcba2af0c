// Package bootstrap derives a schema model from a live database.
//
// Introspect reads the table, column and key catalog of a database; Build
// turns that catalog into a schema.Model with one sort per table, one
// column attribute per column, one foreign-key attribute per reference and
// the default scale each data type admits. Run does both and sizes date
// scales to the years actually stored.
package bootstrap
