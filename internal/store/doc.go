// Package store provides the SQLite-backed versioned object store that
// timelens facades project over.
//
// The store records three things:
//   - Objects: nodes of the trace's object tree, each with a canonical
//     path, a role, and a lifespan (the span of snaps it exists over).
//   - Attribute values: (object, key, span, value) triples. For a fixed
//     object and key, spans of stored values never overlap; writes carve
//     prior intervals apart to keep that invariant.
//   - Comments: user text keyed by (address, comment kind, span) rather
//     than by object, so that comments survive object reuse.
//
// # Locking
//
// The store is shared by arbitrarily many facades. Callers bracket each
// logical operation with LockRead or LockWrite and hold the returned
// guard for the operation's duration. Data methods do NOT acquire locks
// themselves: a write-scoped operation may freely perform reads under
// its own guard without reentrant acquisition. Nothing read under one
// guard may be assumed still valid after the guard is released.
//
// # Change notifications
//
// Every mutation raises exactly one event.Change to subscribed
// listeners, synchronously and in mutation order. Listeners must not
// call back into the store; enqueue and return.
//
// # Database configuration
//
//   - WAL mode for concurrent reads during writes
//   - synchronous=NORMAL (balance durability/performance)
//   - busy_timeout=5000 for lock contention
//   - foreign keys ON (attribute values cascade with their object)
//
// A meta row carries the trace token (a UUID identifying this trace)
// and the default address-space name, plus the schema version.
package store
