// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The two services here are the ChunkEmbedder, a memoizing layer over
// an embedding capability, and the RetrievalService, the only
// component permitted to call across the document store, the embedding
// cache and the vector index. The RetrievalService keeps the three
// stores consistent under partial failure with a compensating-action
// protocol.
//
// Services are pure Go with no CGO or external dependencies.
package services
