// Package ir provides the value and record types shared by every dbnav layer.
//
// This package imports nothing internal. All other internal packages import
// ir, which keeps it the foundational layer with no circular dependencies.
//
// Three concerns live here:
//
//   - Values: a sealed IRValue union (string, int, bool, array, object, null).
//     Scale labels, record fields and content hashes are all built from it.
//   - Records: the tagged-record protocol used to persist schema models and
//     navigation graphs. Every non-primitive record carries a "_cls" tag so
//     the decoder can rebuild the exact variant, including dates and sets.
//   - Canonical JSON: RFC 8785 serialization, so that encoding a decoded
//     record reproduces byte-identical output.
//
// Key design constraints:
//   - NO float types anywhere; numbers are int64
//   - Canonical output forbids null; optional fields are omitted instead
//   - All record keys use snake_case
package ir
