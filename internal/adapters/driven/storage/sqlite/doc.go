// Package sqlite provides a persistent response cache on SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files;
// applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.kbrag/data/cache.db
// (distill.cache_dir overrides the directory).
//
// # Thread Safety
//
// All operations are safe for concurrent use. The store relies on the
// database-level locking SQLite provides in WAL mode.
package sqlite
