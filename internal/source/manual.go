package source

import (
	"context"

	"chatbot-rag/internal/chunker"
	"chatbot-rag/internal/models"
)

const defaultManualLabel = "manual text"

// ManualText passes a literal string straight through the chunker.
type ManualText struct {
	label    string
	text     string
	splitter *chunker.Splitter
}

func NewManualText(label, text string, splitter *chunker.Splitter) *ManualText {
	if label == "" {
		label = defaultManualLabel
	}
	return &ManualText{label: label, text: text, splitter: splitter}
}

func (m *ManualText) Name() string { return m.label }

func (m *ManualText) Chunks(ctx context.Context) ([]models.Chunk, error) {
	parts := m.splitter.Chunk(m.text)
	chunks := make([]models.Chunk, 0, len(parts))
	for _, part := range parts {
		chunks = append(chunks, models.Chunk{
			Text:       part,
			SourceType: models.SourceManualText,
			SourceName: m.label,
			Metadata:   map[string]string{"source": "manual_input"},
		})
	}
	return chunks, nil
}
