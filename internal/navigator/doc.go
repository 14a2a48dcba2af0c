// Package navigator is the command surface over one navigation session.
//
// A Session owns a graph and the backend that answers its queries. Every
// structural edit takes the session's exclusive lock; queries and
// statistics take the shared lock, so they run concurrently against a
// consistent graph while edits are serialized.
//
// Backends are interchangeable: querysql.Backend answers from a live
// database, fca.Family from an in-memory formal context family. Both
// produce result.Table values with the same column conventions.
package navigator
