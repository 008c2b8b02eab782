// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Document and fingerprint persistence
//   - PageStore: Per-page fingerprint and review persistence
//   - VectorStore: TF-IDF vector persistence
//   - DuplicateStore: Duplicate relationship persistence
//   - SnapshotStore: Vectorizer and LSH index snapshots
//   - TextExtractor: PDF text extraction
//   - ConfigStore: Application configuration
//   - SchedulerStore: Background task state
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
