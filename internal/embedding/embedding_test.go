package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tmc/langchaingo/embeddings"

	"chatbot-rag/internal/models"
)

// fakeBackend fails the first failures calls, then returns one vector per
// input text with vector[0] encoding the text length.
type fakeBackend struct {
	failures int
	calls    int
}

func (f *fakeBackend) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, fmt.Errorf("upstream unavailable")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 0}
	}
	return out, nil
}

func newTestClient(t *testing.T, backend *fakeBackend, maxRetries int) *Client {
	t.Helper()
	impl, err := embeddings.NewEmbedder(backend)
	if err != nil {
		t.Fatal(err)
	}
	return &Client{
		impl:       impl,
		maxRetries: maxRetries,
		baseDelay:  time.Millisecond,
		timeout:    time.Second,
	}
}

func TestEmbedRetriesTransientFailures(t *testing.T) {
	backend := &fakeBackend{failures: 2}
	c := newTestClient(t, backend, 3)

	vec, err := c.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if backend.calls != 3 {
		t.Errorf("expected 3 calls, got %d", backend.calls)
	}
	if len(vec) != 2 || vec[0] != 5 {
		t.Errorf("unexpected vector %v", vec)
	}
}

func TestEmbedExhaustsRetryBudget(t *testing.T) {
	backend := &fakeBackend{failures: 10}
	c := newTestClient(t, backend, 3)

	_, err := c.Embed(context.Background(), "hello")
	var embErr *models.EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("expected EmbeddingError, got %v", err)
	}
	if embErr.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", embErr.Attempts)
	}
	if backend.calls != 3 {
		t.Errorf("expected exactly 3 calls, got %d", backend.calls)
	}
}

func TestEmbedCancelledContext(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestClient(t, backend, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Embed(ctx, "hello")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var embErr *models.EmbeddingError
	if errors.As(err, &embErr) {
		t.Errorf("cancellation must not be reported as retry exhaustion: %v", err)
	}
	if backend.calls != 0 {
		t.Errorf("expected no calls after cancellation, got %d", backend.calls)
	}
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	c := newTestClient(t, &fakeBackend{}, 3)

	texts := []string{"a", "bb", "ccc"}
	vectors, err := c.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	for i, text := range texts {
		if vectors[i][0] != float32(len(text)) {
			t.Errorf("vector %d does not match text %q: %v", i, text, vectors[i])
		}
	}
}

func TestEmbedBatchAbortsOnFailure(t *testing.T) {
	c := newTestClient(t, &fakeBackend{failures: 100}, 2)

	if _, err := c.EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected batch to abort when embedding fails")
	}
}
