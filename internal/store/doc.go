// Package store holds the geometric state of one loaded dataset.
//
// The store keeps three things:
//   - Original: the records as parsed, written once by Load
//   - Working: an index-aligned copy that fixes mutate
//   - Fix log: every applied fix in application order, append only
//
// # Invariants
//
//   - len(Original) == len(Working) at all times after Load
//   - index i in Working is the same source statement as index i in Original
//   - a slot is never removed; deletion replaces it with a tombstone
//   - the fix log only grows until the next Load
//
// # Concurrency
//
// A single sync.RWMutex guards all three fields. Load and every mutation take
// the write lock, so a reload is observed either fully before or fully after
// by any other call. View runs a read-only pass (diagnostics, export) under the
// read lock; Update runs a whole read-modify-write (one applied fix) under the
// write lock.
package store
