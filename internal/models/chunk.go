package models

import "unicode/utf8"

// SourceType identifies where a chunk's text came from.
type SourceType string

const (
	SourceWebsite    SourceType = "website"
	SourceDocument   SourceType = "document"
	SourceManualText SourceType = "manual_text"
)

// Chunk is the atomic retrieval unit: a bounded span of source text plus
// provenance. ChunkIndex is unique within one ingestion run and matches the
// row of the vector index built from that run.
type Chunk struct {
	Text       string            `json:"text"`
	SourceType SourceType        `json:"source_type"`
	SourceName string            `json:"source_name"`
	ChunkIndex int               `json:"chunk_index"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ScoredChunk is a retrieval result: a chunk plus its similarity to the query.
type ScoredChunk struct {
	Chunk
	Score float32 `json:"score"`
}

// SourceRef is the citation shape handed back to the end-user-facing layer.
type SourceRef struct {
	Title   string     `json:"title"`
	Type    SourceType `json:"type"`
	URL     string     `json:"url,omitempty"`
	Snippet string     `json:"snippet"`
}

const snippetLen = 200

// Ref builds the citation for a chunk, truncating the text to a short snippet.
// The cut lands on a rune boundary so multi-byte text stays valid UTF-8.
func (c Chunk) Ref() SourceRef {
	snippet := c.Text
	if len(snippet) > snippetLen {
		cut := snippetLen
		for cut > 0 && !utf8.RuneStart(snippet[cut]) {
			cut--
		}
		snippet = snippet[:cut] + "..."
	}
	return SourceRef{
		Title:   c.SourceName,
		Type:    c.SourceType,
		URL:     c.Metadata["url"],
		Snippet: snippet,
	}
}
