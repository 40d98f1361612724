package domain

// Document represents a full ingested document.
// It is immutable once created; the chunk set derived from it is fixed
// for the document's lifetime.
type Document struct {
	id       string
	content  string
	metadata map[string]any
}

// NewDocument creates a document with the given identity and content.
// The metadata map is copied so later mutation by the caller has no effect.
func NewDocument(id, content string, metadata map[string]any) Document {
	return Document{
		id:       id,
		content:  content,
		metadata: copyMetadata(metadata),
	}
}

// ID returns the document's unique identifier.
func (d Document) ID() string { return d.id }

// Content returns the document's full text content.
func (d Document) Content() string { return d.content }

// Metadata returns a copy of the document's metadata.
func (d Document) Metadata() map[string]any { return copyMetadata(d.metadata) }

// Equal reports whether two documents have the same identity and content.
// Metadata is not part of document identity.
func (d Document) Equal(other Document) bool {
	return d.id == other.id && d.content == other.content
}

// Chunk represents a bounded-size, sentence-aligned segment of a document.
// A chunk belongs to exactly one document for its entire lifetime; chunks
// are never re-parented or merged after creation.
type Chunk struct {
	id         string
	documentID string
	text       string
	position   int
	metadata   map[string]any
}

// NewChunk creates a chunk belonging to the given document.
// Position is the ordinal position within the document's chunk sequence.
func NewChunk(id, text, documentID string, position int, metadata map[string]any) Chunk {
	return Chunk{
		id:         id,
		documentID: documentID,
		text:       text,
		position:   position,
		metadata:   copyMetadata(metadata),
	}
}

// ID returns the chunk's unique identifier.
func (c Chunk) ID() string { return c.id }

// DocumentID returns the identifier of the owning document.
func (c Chunk) DocumentID() string { return c.documentID }

// Text returns the chunk's text content.
func (c Chunk) Text() string { return c.text }

// Position returns the chunk's ordinal position within its document.
func (c Chunk) Position() int { return c.position }

// Metadata returns a copy of the chunk's metadata.
func (c Chunk) Metadata() map[string]any { return copyMetadata(c.metadata) }

// Equal reports whether two chunks have the same identity and content.
func (c Chunk) Equal(other Chunk) bool {
	return c.id == other.id &&
		c.text == other.text &&
		c.documentID == other.documentID
}

func copyMetadata(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
