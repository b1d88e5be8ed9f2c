// Package vectordb owns the per-tenant index bundle: a flat exact-search
// vector index (chromem-go) plus the parallel chunk metadata list. Row i of
// the index always corresponds to element i of the metadata list.
package vectordb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"chatbot-rag/internal/models"
)

const (
	indexFile      = "index.chromem"
	metaFile       = "meta.json"
	collectionName = "chunks"
)

// Store is one tenant's loaded index bundle. Read-only after creation;
// concurrent searches are safe without coordination.
type Store struct {
	db     *chromem.DB
	col    *chromem.Collection
	chunks []models.Chunk
}

// Build constructs an in-memory flat index over vectors, with chunks[i]
// describing row i. All vectors must share the dimension of the first one;
// a mismatch is fatal and nothing is built.
func Build(ctx context.Context, chunks []models.Chunk, vectors [][]float32) (*Store, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("%w: %d chunks, %d vectors", models.ErrCorruptIndex, len(chunks), len(vectors))
	}
	if len(vectors) > 0 {
		dim := len(vectors[0])
		for i, v := range vectors {
			if len(v) != dim {
				return nil, &models.DimensionMismatchError{Want: dim, Got: len(v), Row: i}
			}
		}
	}

	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	if len(chunks) > 0 {
		docs := make([]chromem.Document, len(chunks))
		for i, chunk := range chunks {
			docs[i] = chromem.Document{
				ID:      strconv.Itoa(i),
				Content: chunk.Text,
				Metadata: map[string]string{
					"source_type": string(chunk.SourceType),
					"source_name": chunk.SourceName,
				},
				Embedding: vectors[i],
			}
		}
		if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return nil, fmt.Errorf("failed to add documents: %w", err)
		}
	}

	return &Store{db: db, col: col, chunks: chunks}, nil
}

// Persist writes the index bundle under dir. Both files are staged as temp
// files and renamed only at the end, so a reader never observes a
// half-written pair; a crash in between leaves the bundle "not ready".
func (s *Store) Persist(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	indexTmp := filepath.Join(dir, indexFile+".tmp")
	if err := s.db.ExportToFile(indexTmp, false, "", collectionName); err != nil {
		return fmt.Errorf("failed to export index: %w", err)
	}

	metaTmp := filepath.Join(dir, metaFile+".tmp")
	data, err := json.MarshalIndent(s.chunks, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(metaTmp, data, 0o644); err != nil {
		return err
	}

	if err := os.Rename(indexTmp, filepath.Join(dir, indexFile)); err != nil {
		return err
	}
	if err := os.Rename(metaTmp, filepath.Join(dir, metaFile)); err != nil {
		return err
	}

	log.Debug().Str("dir", dir).Int("rows", len(s.chunks)).Msg("persisted index bundle")
	return nil
}

// Load reads a persisted bundle. A missing file means the bundle was never
// (fully) created and yields ErrIndexNotReady; a row-count mismatch between
// index and metadata yields ErrCorruptIndex. Neither is guessed around.
func Load(dir string) (*Store, error) {
	indexPath := filepath.Join(dir, indexFile)
	metaPath := filepath.Join(dir, metaFile)
	for _, p := range []string{indexPath, metaPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, models.ErrIndexNotReady
		}
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}
	var chunks []models.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCorruptIndex, err)
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(indexPath, ""); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrCorruptIndex, err)
	}
	col := db.GetCollection(collectionName, nil)
	if col == nil {
		return nil, models.ErrCorruptIndex
	}
	if col.Count() != len(chunks) {
		return nil, fmt.Errorf("%w: index has %d rows, metadata has %d", models.ErrCorruptIndex, col.Count(), len(chunks))
	}

	return &Store{db: db, col: col, chunks: chunks}, nil
}

// Len reports the number of indexed rows.
func (s *Store) Len() int { return len(s.chunks) }

// Chunks returns the metadata list, ordered by index row.
func (s *Store) Chunks() []models.Chunk { return s.chunks }

// Search returns the topK rows most similar to the query vector, best first,
// mapped back to their chunks. topK larger than the row count is clamped; an
// empty index yields an empty result.
func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]models.ScoredChunk, error) {
	if len(s.chunks) == 0 {
		return nil, nil
	}
	if topK <= 0 || topK > len(s.chunks) {
		topK = len(s.chunks)
	}

	results, err := s.col.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       topK,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}

	scored := make([]models.ScoredChunk, 0, len(results))
	for _, res := range results {
		row, err := strconv.Atoi(res.ID)
		if err != nil || row < 0 || row >= len(s.chunks) {
			return nil, fmt.Errorf("%w: unexpected row id %q", models.ErrCorruptIndex, res.ID)
		}
		scored = append(scored, models.ScoredChunk{Chunk: s.chunks[row], Score: res.Similarity})
	}
	return scored, nil
}

// Remove deletes a tenant's bundle directory as a single unit.
func Remove(dir string) error {
	return os.RemoveAll(dir)
}
