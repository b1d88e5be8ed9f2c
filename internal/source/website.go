package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chatbot-rag/internal/chunker"
	"chatbot-rag/internal/htmltext"
	"chatbot-rag/internal/models"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Website fetches one URL, strips non-content markup and chunks the result.
// The HTTP client carries a timeout; an unreachable URL surfaces as an error
// the pipeline records as a warning for this source only.
type Website struct {
	url      string
	client   *http.Client
	splitter *chunker.Splitter
}

func NewWebsite(rawURL string, timeout time.Duration, splitter *chunker.Splitter) *Website {
	return &Website{
		url:      NormalizeURL(rawURL),
		client:   &http.Client{Timeout: timeout},
		splitter: splitter,
	}
}

// NormalizeURL trims whitespace and prepends https:// when the scheme is
// missing, so "example.com" pasted into a wizard still resolves.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return u
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return u
}

func (w *Website) Name() string { return w.url }

func (w *Website) Chunks(ctx context.Context) ([]models.Chunk, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", w.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch %s: %s", w.url, resp.Status)
	}

	text, err := htmltext.Extract(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", w.url, err)
	}

	parts := w.splitter.Chunk(text)
	chunks := make([]models.Chunk, 0, len(parts))
	for _, part := range parts {
		chunks = append(chunks, models.Chunk{
			Text:       part,
			SourceType: models.SourceWebsite,
			SourceName: w.url,
			Metadata:   map[string]string{"url": w.url},
		})
	}
	return chunks, nil
}
