package domain

// DocumentChunk is a fixed-size, overlapping window of a document's text,
// the unit indexed for semantic search. ChunkID is unique within a document
// (stem + sequential index).
type DocumentChunk struct {
	ChunkID      string         `json:"chunk_id"`
	DocumentName string         `json:"document_name"`
	ChunkText    string         `json:"chunk_text"`
	ChunkIndex   int            `json:"chunk_index"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// ChunkFilter narrows a semantic search to one source document.
type ChunkFilter struct {
	DocumentName string
}

// SearchResult is one ranked hit from the vector index. Higher score means
// closer match (cosine similarity).
type SearchResult struct {
	ChunkID      string         `json:"chunk_id"`
	DocumentName string         `json:"document_name"`
	ChunkText    string         `json:"chunk_text"`
	Score        float64        `json:"score"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type CollectionStats struct {
	Collection string `json:"collection"`
	Chunks     int    `json:"chunks"`
}
