// Package store provides SQLite-backed durable storage for localizable text.
//
// The store owns five record kinds and their lifecycle:
//   - Documents: named containers, created on first upload
//   - Source strings: per-document keyed values, soft-deleted on re-upload
//   - Additional fields: per-string metadata with the same soft-delete rules
//   - Translations: one row per (source string, language)
//   - History: append-only log of every value change
//
// # Invariants
//
// Staleness is derived, never stored: a translation needs work when its
// value_last_updated_date is strictly older than its source string's.
// Timestamps only advance when a value actually changes, so re-uploading an
// identical document is a no-op for staleness and history.
//
// Every mutation runs inside a single transaction. Readers never observe a
// document with only part of an upload applied.
//
// # Pagination
//
// List queries page by descending id with an exclusive id offset
// (id < offset). Pass the last id of one page as the offset of the next.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity and cascades
//
// The store does not log; callers own observability.
package store
