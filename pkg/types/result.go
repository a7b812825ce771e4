package types

// SearchResult represents a single search result with relevance information
type SearchResult struct {
	// Identification
	ChunkID int64
	Rank    int // Position in result set (1-based)

	// Scoring. Zero for text-mode results, which carry no relevance score
	// and are ordered by (file path, start line) instead.
	RelevanceScore float64

	// Chunk data
	FilePath   string
	ChunkType  ChunkType
	Identifier string
	Language   Language
	StartLine  int
	EndLine    int
	Content    string
}

// Validate checks if the search result is valid
func (sr *SearchResult) Validate() error {
	if sr.ChunkID == 0 {
		return ErrInvalidChunkID
	}

	if sr.Rank < 1 {
		return ErrInvalidRank
	}

	if sr.FilePath == "" {
		return ErrMissingFilePath
	}

	if sr.Content == "" {
		return ErrEmptyContent
	}

	return nil
}
