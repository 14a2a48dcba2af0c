// Package harness runs navigation scenarios against a compiled spec.
//
// A scenario replays a sequence of session operations, queries the final
// graph and checks the result table.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: authors_of_the_books
//	description: "Authors of books whose title starts with The"
//	spec: ../specs/literature.cue
//	backend: sqlite            # memory (default) or sqlite
//	seed: ../specs/literature.sql
//	steps:
//	  - op: set_sort
//	    node: x1
//	    sort: Author
//	  - op: add_relation
//	    mva: wrote
//	    endpoints: [x1, ""]
//	  - op: set_label
//	    rnode: e1
//	    label: "The "
//	  - op: set_sort
//	    node: x1
//	    sort: Book
//	    expect_error: SORT_LOCKED
//	window: [x1, x2]
//	assertions:
//	  - type: row_count
//	    count: 2
//	  - type: rows_contain
//	    row: ["Tolkien", "The Hobbit"]
//
// Paths are relative to the scenario file. The memory backend answers from
// the spec's data block; the sqlite backend loads the seed script into a
// private in-memory database.
//
// # Assertion Types
//
//   - row_count: the table has exactly count rows
//   - rows_contain: some row renders exactly as row
//   - rows_exclude: no row renders as row
//   - columns: the column headers equal names
//   - node_sort: node has sort
//   - sort_count: the statistics of node report count objects of sort
//
// # Deterministic Testing
//
// Every scenario runs on a fresh session with a fixed session id, so node
// and relation ids are reproducible and result tables can be compared
// against golden files (see RunWithGolden).
package harness
