package types

import (
	"crypto/sha256"
	"errors"
)

// ChunkType represents the kind of construct a chunk was cut from
type ChunkType string

const (
	ChunkFile     ChunkType = "file"     // Whole-file chunk
	ChunkFunction ChunkType = "function" // Function or method definition
	ChunkClass    ChunkType = "class"    // Class definition
	ChunkModule   ChunkType = "module"   // Module/namespace definition
	ChunkPart     ChunkType = "part"     // Fixed-window slice of a large file
)

// CodeChunk is the indexed unit: a bounded slice of source text with a
// stable identity used for change tracking across indexing runs
type CodeChunk struct {
	// Identification
	ID        int64
	ProjectID int64

	// Identity key within a project: (FilePath, ChunkType, Identifier)
	FilePath   string // Relative to project root, slash-separated
	ChunkType  ChunkType
	Identifier string // Construct name, file basename, or "part_N" label

	// Content
	Content     string
	ContentHash [32]byte // SHA-256, always consistent with Content

	// Metadata
	Language  Language
	StartLine int // 1-based, inclusive
	EndLine   int // 1-based, inclusive

	// Embedding is nil until computed, and cleared whenever Content changes
	Embedding []float32
}

// ChunkKey is the identity of a chunk within a project
type ChunkKey struct {
	FilePath   string
	ChunkType  ChunkType
	Identifier string
}

// Key returns the chunk's identity key
func (c *CodeChunk) Key() ChunkKey {
	return ChunkKey{
		FilePath:   c.FilePath,
		ChunkType:  c.ChunkType,
		Identifier: c.Identifier,
	}
}

// ComputeContentHash computes the SHA-256 hash of the chunk content
func (c *CodeChunk) ComputeContentHash() {
	c.ContentHash = sha256.Sum256([]byte(c.Content))
}

// HashContent computes the SHA-256 digest used for chunk change detection
func HashContent(content string) [32]byte {
	return sha256.Sum256([]byte(content))
}

// ValidateContent checks if the chunk content and line range are valid
func (c *CodeChunk) ValidateContent() error {
	if c.Content == "" {
		return errors.New("chunk content cannot be empty")
	}

	if c.StartLine <= 0 || c.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}

	if c.StartLine > c.EndLine {
		return errors.New("start line must be before or equal to end line")
	}

	return nil
}

// ValidateChunkType checks if the chunk type is valid
func (c *CodeChunk) ValidateChunkType() error {
	switch c.ChunkType {
	case ChunkFile, ChunkFunction, ChunkClass, ChunkModule, ChunkPart:
		return nil
	default:
		return errors.New("invalid chunk type")
	}
}

// Validate performs comprehensive validation of the chunk
func (c *CodeChunk) Validate() error {
	if err := c.ValidateContent(); err != nil {
		return err
	}

	if err := c.ValidateChunkType(); err != nil {
		return err
	}

	if c.FilePath == "" {
		return errors.New("file path is required")
	}

	if c.Identifier == "" {
		return errors.New("identifier is required")
	}

	// Verify content hash is computed
	var zeroHash [32]byte
	if c.ContentHash == zeroHash {
		return errors.New("content hash must be computed")
	}

	return nil
}
