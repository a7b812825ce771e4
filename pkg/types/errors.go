package types

import "errors"

// Configuration errors. These are fatal and surfaced to the caller before
// any store access or other side effect.
var (
	ErrInvalidRoot       = errors.New("invalid repository root")
	ErrInvalidMode       = errors.New("invalid query mode")
	ErrEmbeddingRequired = errors.New("semantic query requires an embedding")
)

// Domain errors for type validation
var (
	ErrInvalidChunkID  = errors.New("invalid chunk ID")
	ErrInvalidRank     = errors.New("rank must be >= 1")
	ErrMissingFilePath = errors.New("file path is required")
	ErrEmptyContent    = errors.New("content cannot be empty")
)
