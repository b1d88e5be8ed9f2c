// Package source contains the ingestion front-ends: thin adapters that turn
// a website, an uploaded document, or a literal text into chunks.
package source

import (
	"context"

	"chatbot-rag/internal/models"
)

// Source extracts raw text from one origin and normalizes it through the
// chunker. A failing source is isolated by the ingestion pipeline; it never
// aborts the run on its own.
type Source interface {
	Name() string
	Chunks(ctx context.Context) ([]models.Chunk, error)
}
