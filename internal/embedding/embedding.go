// Package embedding converts text into fixed-dimension vectors via an
// external OpenAI-compatible embedding endpoint.
package embedding

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"chatbot-rag/internal/config"
	"chatbot-rag/internal/models"
	"chatbot-rag/internal/retry"
)

// Embedder is the embedding contract consumed by ingestion and retrieval.
// EmbedBatch preserves input order: vector i belongs to texts[i].
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Client wraps a langchaingo embedder with retry-with-backoff and a
// per-attempt timeout. Retry exhaustion surfaces as *models.EmbeddingError,
// which is fatal for the whole ingestion run.
type Client struct {
	impl       *embeddings.EmbedderImpl
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration
}

func NewClient(llmCfg *config.LLMConfig, ragCfg *config.RAGConfig) (*Client, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmCfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmCfg.Key, "Bearer ")),
		openai.WithModel(llmCfg.Model),
	)
	if err != nil {
		return nil, err
	}
	impl, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, err
	}
	return &Client{
		impl:       impl,
		maxRetries: ragCfg.MaxRetries,
		baseDelay:  time.Duration(ragCfg.BaseDelayMs) * time.Millisecond,
		timeout:    time.Duration(llmCfg.TimeoutSecs) * time.Second,
	}, nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	attempts := 0
	err := retry.Do(ctx, c.maxRetries, c.baseDelay, func(ctx context.Context) error {
		attempts++
		actx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		v, err := c.impl.EmbedQuery(actx, text)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempts).Msg("embedding call failed")
			return err
		}
		vec = v
		return nil
	})
	if err != nil {
		// A context cancelled before the first attempt is not retry
		// exhaustion; hand it back as-is.
		if attempts == 0 {
			return nil, err
		}
		return nil, &models.EmbeddingError{Attempts: attempts, Err: err}
	}
	return vec, nil
}

// EmbedBatch embeds texts one at a time; the backing endpoint takes a single
// input per request. The first exhausted retry budget aborts the batch.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := c.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}
