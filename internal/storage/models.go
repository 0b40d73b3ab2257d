package storage

// Metadata tracks where a chunk came from, for later source attribution.
type Metadata struct {
	// Source is the sanitized artifact name the chunk was cut from,
	// e.g. "example.com_docs_intro.txt".
	Source string
	// ChunkIndex is the chunk's position within its source document.
	ChunkIndex int
	// TotalChunks is how many chunks the source document produced.
	TotalChunks int
}

// ScoredChunk is one retrieval hit: the chunk text, its provenance, and the
// cosine similarity to the query vector.
type ScoredChunk struct {
	Chunk    string
	Metadata Metadata
	Score    float64
}

// DefaultCollection is the logical collection indexed chunks live in.
const DefaultCollection = "documents"

// VectorDimension is the embedding size for text-embedding-3-small.
const VectorDimension = 1536
