package domain

// NoDistanceLimit disables distance-threshold filtering on a similarity
// search. Any negative value has the same effect; zero is a legitimate
// (if strict) threshold and must not be treated as "unset".
const NoDistanceLimit float64 = -1

// DefaultTopK is the number of results a query returns when the caller
// does not say otherwise.
const DefaultTopK = 5

// ChunkMatch is a single retrieval result: a chunk and its distance to
// the query vector. Smaller distances mean closer matches.
type ChunkMatch struct {
	Chunk    Chunk
	Distance float64
}
