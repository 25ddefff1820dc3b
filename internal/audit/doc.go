// Package audit is the SQLite journal of applied fixes.
//
// The in-memory store forgets everything on the next load; the journal keeps
// a durable, append-only record of which fixes were applied in which session.
// It is written by the CLI after each successful fix and never read back into
// a store.
//
// # Ordering
//
// Every query orders by (seq ASC, token COLLATE BINARY) so listings are
// stable across runs. seq is the position of the fix in its session's fix
// log, starting at 1.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Fixes must reference an existing session
package audit
