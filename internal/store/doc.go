// Package store provides SQLite-backed persistence for bindings and
// navigation sessions.
//
// A binding names a backend (a MySQL or SQLite DSN, or an in-memory context
// family) together with the schema model navigated over it. A session is a
// navigation graph saved under its id and tied to a binding; deleting the
// binding deletes its sessions.
//
// Models, families and graphs are stored as RFC 8785 canonical JSON of
// their tagged records, with a domain-separated fingerprint beside each
// model and graph. Listings are ordered by name or id COLLATE BINARY.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
