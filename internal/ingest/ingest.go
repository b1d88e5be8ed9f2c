// Package ingest runs the index-build pipeline: sources -> chunker ->
// embeddings -> persisted index bundle. One synchronous run per chatbot; no
// internal concurrency.
package ingest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"chatbot-rag/internal/embedding"
	"chatbot-rag/internal/models"
	"chatbot-rag/internal/source"
	"chatbot-rag/internal/vectordb"
)

// SourceReport records what a single source contributed to the run.
type SourceReport struct {
	Name    string `json:"name"`
	Chunks  int    `json:"chunks"`
	Warning string `json:"warning,omitempty"`
}

// Report is the pass/fail summary handed back to the caller. A run with some
// failed sources is still a success as long as the combined chunk count is
// positive.
type Report struct {
	BotID       string         `json:"bot_id"`
	TotalChunks int            `json:"total_chunks"`
	Sources     []SourceReport `json:"sources"`
}

type Pipeline struct {
	embedder embedding.Embedder
	dataDir  string
}

func NewPipeline(embedder embedding.Embedder, dataDir string) *Pipeline {
	return &Pipeline{embedder: embedder, dataDir: dataDir}
}

// Run extracts and chunks every source, embeds all chunks and persists the
// index bundle for botID. Source failures are isolated and reported as
// warnings; embedding and index errors are fatal and leave any prior bundle
// untouched.
func (p *Pipeline) Run(ctx context.Context, botID string, sources []source.Source) (*Report, error) {
	report := &Report{BotID: botID}

	var all []models.Chunk
	for _, s := range sources {
		chunks, err := s.Chunks(ctx)
		sr := SourceReport{Name: s.Name(), Chunks: len(chunks)}
		if err != nil {
			log.Warn().Err(err).Str("source", s.Name()).Msg("source failed, continuing with remaining sources")
			sr.Chunks = 0
			sr.Warning = err.Error()
		} else if len(chunks) == 0 {
			log.Warn().Str("source", s.Name()).Msg("source produced no usable chunks")
			sr.Warning = "no usable chunks extracted"
		} else {
			all = append(all, chunks...)
		}
		report.Sources = append(report.Sources, sr)
	}

	if len(all) == 0 {
		return report, models.ErrNoChunks
	}
	for i := range all {
		all[i].ChunkIndex = i
	}

	texts := make([]string, len(all))
	for i, c := range all {
		texts[i] = c.Text
	}
	log.Info().Str("bot", botID).Int("chunks", len(all)).Msg("embedding chunks")
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return report, err
	}

	store, err := vectordb.Build(ctx, all, vectors)
	if err != nil {
		return report, err
	}

	dir := p.BundleDir(botID)
	if err := store.Persist(dir); err != nil {
		return report, err
	}
	p.writeRawChunks(dir, all)

	report.TotalChunks = len(all)
	log.Info().Str("bot", botID).Int("chunks", len(all)).Msg("ingestion complete")
	return report, nil
}

// BundleDir is where botID's index bundle lives.
func (p *Pipeline) BundleDir(botID string) string {
	return filepath.Join(p.dataDir, botID)
}

// writeRawChunks keeps a human-readable copy of all chunks next to the
// bundle. Debug artifact only; the query path never reads it.
func (p *Pipeline) writeRawChunks(dir string, chunks []models.Chunk) {
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err == nil {
		err = os.WriteFile(filepath.Join(dir, "chunks.json"), data, 0o644)
	}
	if err != nil {
		log.Warn().Err(err).Msg("failed to write raw chunk list")
	}
}
