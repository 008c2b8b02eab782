// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - DocumentStore: Document metadata, content hashes, and MinHash signatures
//   - PageStore: Page fingerprints and review decisions
//   - VectorStore: Versioned TF-IDF vectors
//   - DuplicateStore: Document- and page-level duplicate edges
//   - SchedulerStore: Scheduled task state and run history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.meddedup/data/dedup.db
//
// # Thread Safety
//
// All operations are thread-safe. Connections open with _txlock=immediate so
// read-then-write transactions such as content-hash claims serialise at BEGIN,
// and the store uses database-level locking provided by SQLite in WAL mode.
package sqlite
