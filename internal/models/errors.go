package models

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexNotReady means the index bundle was never created (or only
	// partially exists). Distinct from an index with zero rows.
	ErrIndexNotReady = errors.New("index bundle not ready")

	// ErrCorruptIndex means the index row count and the metadata list
	// disagree. The bundle must not be served.
	ErrCorruptIndex = errors.New("index bundle corrupt: row count mismatch")

	// ErrNoChunks means every active source produced zero usable chunks.
	ErrNoChunks = errors.New("no usable chunks from any source")
)

// DimensionMismatchError reports an embedding vector whose length differs
// from the dimension established by the first vector of the run.
type DimensionMismatchError struct {
	Want int
	Got  int
	Row  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch at row %d: want %d, got %d", e.Row, e.Want, e.Got)
}

// EmbeddingError is returned after the embedding retry budget is exhausted.
// It is fatal for the whole ingestion run.
type EmbeddingError struct {
	Attempts int
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }
