// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - DocumentStore: authoritative storage for documents and their
//     derived chunks, including deterministic chunking
//   - EmbeddingService: generates fixed-dimension vector embeddings
//   - VectorIndex: stores vectors and answers k-nearest-neighbour
//     queries by distance
//
// None of these contracts is assumed internally thread-safe. The
// retrieval service provides the serialization; a VectorIndex that
// documents its own locking may additionally be shared directly.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
