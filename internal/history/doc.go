// Package history persists per-run and per-batch records in SQLite.
//
// The store keeps one row per content-extraction run (source, status,
// transcription method, subtitle count, artifact paths) plus one row per
// batch session. Writes retry briefly on SQLITE_BUSY so a batch worker pool
// and the CLI can share the database.
package history
