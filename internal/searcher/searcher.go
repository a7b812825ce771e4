package searcher

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/repoctx/repoctx/internal/embedder"
	"github.com/repoctx/repoctx/internal/storage"
	"github.com/repoctx/repoctx/pkg/types"
)

const (
	// DefaultLimit is the result count when the request doesn't specify one
	DefaultLimit = 10
	// MaxLimit caps the result count regardless of the request
	MaxLimit = 100
	// DefaultMinTokenLength drops short query tokens before text matching
	DefaultMinTokenLength = 3
	// DefaultMaxTokens caps the number of tokens used per text query
	DefaultMaxTokens = 10
)

// Config contains configuration for a Searcher
type Config struct {
	MinTokenLength int // Shortest token kept for text matching (default 3)
	MaxTokens      int // Token count cap per text query (default 10)
}

// SearchRequest describes one query against an indexed project
type SearchRequest struct {
	ProjectID int64
	Query     string
	Mode      types.QueryMode // Empty resolves as QueryAuto
	Limit     int
	Embedding []float32 // Optional caller-supplied query vector
}

// SearchResponse carries ranked results plus the mode actually executed,
// which may differ from the requested one after auto resolution or
// embedding fallback
type SearchResponse struct {
	Results []*types.SearchResult
	Mode    types.QueryMode
	Total   int
}

// Searcher answers queries against the chunk store. The embedder may be
// nil; semantic ranking then requires a caller-supplied query vector.
type Searcher struct {
	store          storage.ChunkStore
	embedder       embedder.Embedder
	cache          *queryCache
	minTokenLength int
	maxTokens      int
}

// New creates a Searcher with default configuration
func New(store storage.ChunkStore, emb embedder.Embedder) *Searcher {
	return NewWithConfig(store, emb, Config{})
}

// NewWithConfig creates a Searcher with explicit configuration
func NewWithConfig(store storage.ChunkStore, emb embedder.Embedder, cfg Config) *Searcher {
	if cfg.MinTokenLength <= 0 {
		cfg.MinTokenLength = DefaultMinTokenLength
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &Searcher{
		store:          store,
		embedder:       emb,
		cache:          newQueryCache(DefaultCacheSize, DefaultCacheTTL),
		minTokenLength: cfg.MinTokenLength,
		maxTokens:      cfg.MaxTokens,
	}
}

// Search executes a query. Invalid modes and explicit semantic requests
// without an obtainable embedding fail before any store access; a blank
// query returns empty results, not an error, in every mode.
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	mode := req.Mode
	if mode == "" {
		mode = types.QueryAuto
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidMode, req.Mode)
	}
	limit := normalizeLimit(req.Limit)

	// A blank query matches nothing in any mode; return early before
	// embedding resolution or store access
	if strings.TrimSpace(req.Query) == "" {
		return &SearchResponse{Results: []*types.SearchResult{}, Mode: mode}, nil
	}

	var vector []float32
	if mode == types.QuerySemantic {
		vector = s.queryVector(ctx, req)
		if vector == nil {
			return nil, fmt.Errorf("%w: semantic mode needs a query embedding", types.ErrEmbeddingRequired)
		}
	}

	// Requests with a caller-supplied vector bypass the cache; the key
	// covers only the textual request fields
	cacheable := req.Embedding == nil
	if cacheable {
		if cached, ok := s.cache.get(req, limit); ok {
			return cached, nil
		}
	}

	if mode == types.QueryAuto {
		hasEmb, err := s.store.HasAnyEmbedding(ctx, req.ProjectID)
		if err != nil {
			return nil, err
		}
		if hasEmb {
			mode = types.QuerySemantic
			vector = s.queryVector(ctx, req)
			if vector == nil {
				mode = types.QueryText // provider down, degrade silently
			}
		} else {
			mode = types.QueryText
		}
	}

	resp, err := s.execute(ctx, req, mode, vector, limit)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.cache.put(req, limit, resp)
	}
	return resp, nil
}

// InvalidateCache drops all cached responses. The indexing surface calls
// this after a run so queries never serve pre-index results.
func (s *Searcher) InvalidateCache() {
	s.cache.purge()
}

func (s *Searcher) execute(ctx context.Context, req SearchRequest, mode types.QueryMode, vector []float32, limit int) (*SearchResponse, error) {
	var (
		results []*types.SearchResult
		err     error
	)
	switch mode {
	case types.QuerySemantic:
		results, err = s.searchSemantic(ctx, req.ProjectID, vector, limit)
	case types.QueryText:
		results, err = s.searchText(ctx, req.ProjectID, req.Query, limit)
	case types.QueryHybrid:
		results, mode, err = s.searchHybrid(ctx, req, limit)
	}
	if err != nil {
		return nil, err
	}

	return &SearchResponse{
		Results: results,
		Mode:    mode,
		Total:   len(results),
	}, nil
}

func (s *Searcher) searchSemantic(ctx context.Context, projectID int64, vector []float32, limit int) ([]*types.SearchResult, error) {
	chunks, err := s.store.SearchVector(ctx, projectID, vector, limit)
	if err != nil {
		return nil, err
	}

	results := make([]*types.SearchResult, 0, len(chunks))
	for i, chunk := range chunks {
		var score float64
		if d, derr := storage.CosineDistance(vector, chunk.Embedding); derr == nil {
			score = 1 - d
		}
		if score < 0 {
			score = 0
		}
		results = append(results, toResult(chunk, i+1, score))
	}
	return results, nil
}

func (s *Searcher) searchText(ctx context.Context, projectID int64, query string, limit int) ([]*types.SearchResult, error) {
	tokens := tokenize(query, s.minTokenLength, s.maxTokens)
	if len(tokens) == 0 {
		return []*types.SearchResult{}, nil
	}

	chunks, err := s.store.SearchText(ctx, projectID, tokens, limit)
	if err != nil {
		return nil, err
	}

	results := make([]*types.SearchResult, 0, len(chunks))
	for i, chunk := range chunks {
		results = append(results, toResult(chunk, i+1, 0))
	}
	return results, nil
}

// searchHybrid unions semantic and text results, semantic-first, each leg
// bounded by limit. Without an obtainable embedding it degrades to text
// search and reports that mode.
func (s *Searcher) searchHybrid(ctx context.Context, req SearchRequest, limit int) ([]*types.SearchResult, types.QueryMode, error) {
	vector := s.queryVector(ctx, req)
	if vector == nil {
		results, err := s.searchText(ctx, req.ProjectID, req.Query, limit)
		return results, types.QueryText, err
	}

	semantic, err := s.searchSemantic(ctx, req.ProjectID, vector, limit)
	if err != nil {
		return nil, "", err
	}
	text, err := s.searchText(ctx, req.ProjectID, req.Query, limit)
	if err != nil {
		return nil, "", err
	}

	seen := make(map[int64]struct{}, len(semantic))
	merged := make([]*types.SearchResult, 0, len(semantic)+len(text))
	for _, r := range semantic {
		seen[r.ChunkID] = struct{}{}
		merged = append(merged, r)
	}
	for _, r := range text {
		if _, dup := seen[r.ChunkID]; dup {
			continue
		}
		merged = append(merged, r)
	}
	if len(merged) > limit {
		merged = merged[:limit]
	}
	for i, r := range merged {
		r.Rank = i + 1
	}
	return merged, types.QueryHybrid, nil
}

// queryVector resolves the query embedding: the caller-supplied vector
// wins, otherwise the provider is asked. Any provider failure yields nil;
// callers decide whether that is fatal.
func (s *Searcher) queryVector(ctx context.Context, req SearchRequest) []float32 {
	if req.Embedding != nil {
		return req.Embedding
	}
	if s.embedder == nil {
		return nil
	}
	emb, err := s.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: req.Query})
	if err != nil {
		return nil
	}
	return emb.Vector
}

// Tokenize splits a query on whitespace and punctuation with the default
// token limits: tokens shorter than DefaultMinTokenLength are dropped,
// duplicates are folded case-insensitively, and the result is capped at
// DefaultMaxTokens
func Tokenize(query string) []string {
	return tokenize(query, DefaultMinTokenLength, DefaultMaxTokens)
}

func tokenize(query string, minLength, maxTokens int) []string {
	// Underscore stays inside a token so snake_case identifiers survive
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < minLength {
			continue
		}
		lower := strings.ToLower(f)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		tokens = append(tokens, lower)
		if len(tokens) == maxTokens {
			break
		}
	}
	return tokens
}

func toResult(chunk *types.CodeChunk, rank int, score float64) *types.SearchResult {
	return &types.SearchResult{
		ChunkID:        chunk.ID,
		Rank:           rank,
		RelevanceScore: score,
		FilePath:       chunk.FilePath,
		ChunkType:      chunk.ChunkType,
		Identifier:     chunk.Identifier,
		Language:       chunk.Language,
		StartLine:      chunk.StartLine,
		EndLine:        chunk.EndLine,
		Content:        chunk.Content,
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
