// Package store persists recorded query executions in SQLite.
//
// A recording is one rendered query (text plus canonical parameters) run
// with one fetch method, keyed by canonical.QueryKey. Its pages are the
// responses the container returned, in order. Recordings made in one run of
// the recorder share a session.
//
// # Ordering
//
// Sessions are ordered by their logical seq, recordings by insertion id and
// pages by page_index. No wall-clock time is stored, so two recordings of the
// same traffic produce identical databases apart from session ids.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
