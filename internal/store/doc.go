// Package store provides SQLite-backed durable storage for fairway.
//
// The store is the only path to persistence and enforces both entity
// families' invariants:
//
//   - Hash-addressed entities (templates, courses + course_holes): primary
//     key is the SHA-256 of canonical content. Insert canonicalizes and
//     hashes exactly once; re-inserting identical content is a no-op that
//     returns the existing record. Rows are never updated or deleted.
//   - Append-log entities (sessions, shots, facts): surrogate ids, rows are
//     never updated or deleted. A correction is a new fact row with the same
//     logical key and a later recorded_at; the current value is a read-time
//     fold (latest wins, row id breaks ties).
//
// # Critical contracts
//
//   - Insert paths invoke the canon codec exactly once per logical insert.
//   - Fetch paths never invoke the codec; the stored hash is authoritative.
//     Tests assert this with a call-counting codec.
//   - Immutability is enforced at the storage boundary by constraint
//     triggers (see schema.sql), so ad hoc SQL is blocked too.
//   - Multi-row inserts (course + holes, shot batches) are atomic.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// A single-connection pool serializes writers; idempotent-insert races
// resolve inside one transaction as insert-on-conflict-do-nothing followed
// by a re-read of the existing row.
package store
