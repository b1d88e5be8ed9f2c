// Package chunker splits raw source text into retrieval-sized segments.
package chunker

import (
	"regexp"
	"strings"
)

const (
	defaultMaxLen = 1000
	defaultMinLen = 50
)

var (
	sentenceRe  = regexp.MustCompile(`(?m)(?U)[^.!?]+[.!?]`)
	paragraphRe = regexp.MustCompile(`\n\s*\n`)
)

// Splitter accumulates sentences greedily into chunks of at most maxLen
// characters (soft target) and discards chunks shorter than minLen.
type Splitter struct {
	maxLen int
	minLen int
}

func New(maxLen, minLen int) *Splitter {
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}
	if minLen <= 0 {
		minLen = defaultMinLen
	}
	return &Splitter{maxLen: maxLen, minLen: minLen}
}

// Chunk splits text into chunks. The split falls back in a fixed order:
// sentence boundaries, then blank-line paragraphs, then the whole text as a
// single chunk. A source whose every candidate chunk is shorter than minLen
// yields the whole text as one fallback chunk rather than nothing. Chunk
// never fails; empty input yields nil.
func (s *Splitter) Chunk(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	segments := splitSentences(trimmed)
	if len(segments) == 0 {
		segments = paragraphRe.Split(trimmed, -1)
	}

	chunks := s.accumulate(segments)
	if len(chunks) == 0 {
		return []string{collapseWhitespace(trimmed)}
	}
	return chunks
}

// accumulate greedily packs segments into a running buffer, flushing when the
// next segment would push the buffer past maxLen. Buffers below minLen are
// dropped.
func (s *Splitter) accumulate(segments []string) []string {
	var chunks []string
	cur := ""
	for _, seg := range segments {
		seg = collapseWhitespace(seg)
		if seg == "" {
			continue
		}
		if cur == "" {
			cur = seg
			continue
		}
		if len(cur)+1+len(seg) <= s.maxLen {
			cur += " " + seg
			continue
		}
		if len(cur) >= s.minLen {
			chunks = append(chunks, cur)
		}
		cur = seg
	}
	if len(cur) >= s.minLen {
		chunks = append(chunks, cur)
	}
	return chunks
}

// splitSentences returns sentence-shaped segments, keeping any trailing text
// without terminal punctuation so no source content is lost. A nil result
// means the text has no sentence-ending punctuation at all.
func splitSentences(text string) []string {
	locs := sentenceRe.FindAllStringIndex(text, -1)
	if locs == nil {
		return nil
	}
	segments := make([]string, 0, len(locs)+1)
	for _, loc := range locs {
		segments = append(segments, text[loc[0]:loc[1]])
	}
	if end := locs[len(locs)-1][1]; end < len(text) {
		if rest := strings.TrimSpace(text[end:]); rest != "" {
			segments = append(segments, rest)
		}
	}
	return segments
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
