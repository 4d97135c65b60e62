// Package knowledge provides retrieval over Swellbot's hosted vector store:
// a search service the agent queries and an indexer that keeps the store in
// sync with a local directory of markdown documents.
package knowledge

import "errors"

// Knowledge errors.
var (
	// ErrStoreNotReady indicates the vector store does not exist yet; run
	// the indexer first.
	ErrStoreNotReady = errors.New("knowledge store not initialized")
)

// Document is one retrieved chunk with its provenance.
type Document struct {
	// Source is the originating filename, e.g. "surfboards.md".
	Source string
	// Content is the chunk text.
	Content string
	// Score is the retrieval relevance score.
	Score float64
	// FileID is the hosted store's file identifier.
	FileID string
}

// DefaultTopK is the number of chunks retrieved when the caller does not ask
// for a specific count.
const DefaultTopK = 5
