// Package compiler turns CUE navigation specs into a schema model and an
// in-memory context family.
//
// A spec has a schema block and an optional data block:
//
//	schema: {
//		sorts: Author: print: "{0}.name"
//		sorts: Book: print:   "{0}.title"
//		attributes: {
//			name: {sort: "Author", datatype: "varchar(64)", scale: "prefix"}
//			published: {
//				sort:     "Book"
//				datatype: "date"
//				scale: {kind: "date_interval", min: 1800, max: 2000, step: 10}
//			}
//			author_id: {
//				from:  {sort: "Book", column: "author_id"}
//				to:    {sort: "Author", column: "id"}
//				scale: "boolean"
//			}
//			wrote: {
//				sorts:    ["Author", "Book"]
//				roles:    ["author", "book"]
//				datatype: "varchar"
//				expr:     "CASE WHEN {1}.author_id = {0}.id THEN {1}.title END"
//				scale:    "prefix"
//			}
//		}
//	}
//	data: {
//		objects: tolkien: {name: "Tolkien", sorts: ["Author"]}
//		objects: hobbit: {name: "The Hobbit", sorts: ["Book"]}
//		tuples: [
//			{attribute: "wrote", endpoints: ["tolkien", "hobbit"], label: "The Hobbit"},
//			{attribute: "published", endpoints: ["hobbit"], label: "1937-09-21"},
//		]
//	}
//
// Attribute kinds are inferred: from/to makes a foreign key, sorts makes a
// derived attribute and sort makes a column attribute. Attribute labels
// become attribute ids.
package compiler
