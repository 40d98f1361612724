// Package domain defines the core business entities for ragcore.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested document with metadata
//   - Chunk: A sentence-aligned segment of a document, the unit of
//     embedding and retrieval
//   - ChunkMatch: A chunk paired with its distance to a query
//
// Documents and chunks are immutable after construction. Metadata
// accessors return defensive copies so callers cannot mutate stored
// state through a shared map.
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
