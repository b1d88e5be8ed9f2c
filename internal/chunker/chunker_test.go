package chunker

import (
	"strings"
	"testing"
)

func TestChunkAccumulatesSentences(t *testing.T) {
	s := New(1000, 10)
	chunks := s.Chunk("Sentence one. Sentence two. Sentence three.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "Sentence one. Sentence two. Sentence three." {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestChunkFlushesAtMaxLen(t *testing.T) {
	s := New(40, 10)
	chunks := s.Chunk("This is the first sentence here. This is the second sentence here.")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	for _, c := range chunks {
		if len(c) < 10 {
			t.Errorf("chunk below min length: %q", c)
		}
	}
}

func TestChunkShortTextFallsBackToWholeText(t *testing.T) {
	s := New(1000, 10)
	chunks := s.Chunk("Hi.")
	if len(chunks) != 1 || chunks[0] != "Hi." {
		t.Fatalf("expected single fallback chunk %q, got %v", "Hi.", chunks)
	}
}

func TestChunkDiscardsShortBuffers(t *testing.T) {
	// The trailing fragment is below min length and other chunks exist, so
	// it is dropped rather than flushed.
	s := New(60, 20)
	chunks := s.Chunk("This sentence is long enough to stand on its own here. No.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %v", len(chunks), chunks)
	}
	if strings.Contains(chunks[0], "No.") {
		t.Errorf("short trailing fragment should have been dropped: %q", chunks[0])
	}
}

func TestChunkParagraphFallback(t *testing.T) {
	// No terminal punctuation anywhere; blank lines split the text.
	text := "first paragraph without punctuation spanning enough characters to keep\n\nsecond paragraph also without punctuation and also long enough to keep"
	s := New(70, 10)
	chunks := s.Chunk(text)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 paragraph chunks, got %d: %v", len(chunks), chunks)
	}
}

func TestChunkWholeTextFallback(t *testing.T) {
	text := "no punctuation and no paragraph breaks at all"
	s := New(1000, 10)
	chunks := s.Chunk(text)
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("expected whole text as single chunk, got %v", chunks)
	}
}

func TestChunkEmptyInput(t *testing.T) {
	s := New(1000, 10)
	for _, input := range []string{"", "   ", "\n\n\t"} {
		if chunks := s.Chunk(input); chunks != nil {
			t.Errorf("expected nil for %q, got %v", input, chunks)
		}
	}
}

func TestChunkKeepsTrailingFragment(t *testing.T) {
	// Text after the last sentence boundary must not be lost.
	s := New(1000, 5)
	chunks := s.Chunk("A complete sentence. trailing words without punctuation")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %v", chunks)
	}
	if !strings.Contains(chunks[0], "trailing words") {
		t.Errorf("trailing fragment lost: %q", chunks[0])
	}
}
