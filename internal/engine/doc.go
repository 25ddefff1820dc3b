// Package engine is the core facade over one loaded dataset.
//
// An Engine owns a geometry store and wires the statement parser, the
// diagnostics pass, the fix dispatcher and the exporters around it. It is the
// only place in the core that logs.
//
// # Concurrency
//
// One Engine is safe for concurrent use. Load and fixes take the store's
// write lock; Diagnose and the exporters run under its read lock, so a pass
// sees either the dataset before a reload or the one after it, never a mix.
//
// # Sessions
//
// Registry keeps one Engine per session token. Sessions never share state;
// tokens are UUIDv7 strings in production and fixed sequences in tests.
//
// # Finding identifiers
//
// ApplyFix first looks the identifier up in the findings of the latest
// Diagnose call for the current dataset and uses the structured Ref it
// carries. Identifiers that are not found fall back to the numeric-token rule
// of fix.ResolveIndex.
package engine
