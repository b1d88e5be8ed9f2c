// Package retriever answers query-time nearest-neighbor lookups against a
// tenant's persisted index bundle.
package retriever

import (
	"context"

	"chatbot-rag/internal/embedding"
	"chatbot-rag/internal/models"
)

// Status describes the serving state of a tenant's index.
type Status int

const (
	// StatusNotReady: the bundle is absent or corrupt; refuse to serve.
	StatusNotReady Status = iota
	// StatusEmpty: the bundle exists but has zero rows.
	StatusEmpty
	// StatusReady: the bundle is loaded and searchable.
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusReady:
		return "ready"
	default:
		return "not ready"
	}
}

// Retriever embeds a query with the same model used at index-build time and
// searches the tenant's flat index for the closest chunks.
type Retriever struct {
	cache    *Cache
	embedder embedding.Embedder
}

func New(cache *Cache, embedder embedding.Embedder) *Retriever {
	return &Retriever{cache: cache, embedder: embedder}
}

// Retrieve returns the topK most similar chunks, best first. A topK beyond
// the row count returns all rows. The error distinguishes "not initialized"
// (ErrIndexNotReady, ErrCorruptIndex) from embedding failures; an empty
// index returns an empty slice and no error.
func (r *Retriever) Retrieve(ctx context.Context, botID, query string, topK int) ([]models.ScoredChunk, error) {
	store, err := r.cache.Get(botID)
	if err != nil {
		return nil, err
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	return store.Search(ctx, vec, topK)
}

// Status reports whether botID can be served. Corrupt bundles count as not
// ready; serving is refused rather than guessed.
func (r *Retriever) Status(botID string) Status {
	store, err := r.cache.Get(botID)
	if err != nil {
		return StatusNotReady
	}
	if store.Len() == 0 {
		return StatusEmpty
	}
	return StatusReady
}
