// Package history provides an optional SQLite log of compile runs.
//
// Each row records one pipeline run of one session: the selection it
// compiled, the digests of its workspace and result, and its outcome. Rows are
// append-only and keyed by (session_id, seq), so recording the same run twice
// is a no-op.
//
// Queries order rows by insertion id, which follows run order because a
// session records its runs sequentially.
//
// The database is configured with WAL mode, synchronous=NORMAL, a 5 second
// busy timeout and a single connection.
package history
