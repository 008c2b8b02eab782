// Package domain defines the core business entities for the deduplication
// pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested document with its fingerprints and verdict
//   - Page: A single page of a document with its content hash
//   - DuplicateRelationship / PageDuplicate: Directed duplicate edges
//   - Vector: A sparse TF-IDF vector
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
