package storage

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/repoctx/repoctx/pkg/types"
)

// SearchVector returns the project's embedded chunks ordered by ascending
// cosine distance from the query vector, truncated to limit
func (s *SQLiteStore) SearchVector(ctx context.Context, projectID int64, vector []float32, limit int) ([]*types.CodeChunk, error) {
	if len(vector) == 0 || limit <= 0 {
		return []*types.CodeChunk{}, nil
	}
	if VectorExtensionAvailable {
		return s.searchVectorOptimized(ctx, projectID, vector, limit)
	}
	return s.searchVectorFallback(ctx, projectID, vector, limit)
}

// searchVectorOptimized computes cosine distance at the database layer via
// the sqlite-vec extension (cgo builds)
func (s *SQLiteStore) searchVectorOptimized(ctx context.Context, projectID int64, vector []float32, limit int) ([]*types.CodeChunk, error) {
	query := `
		SELECT ` + chunkColumns + `
		FROM chunks
		WHERE project_id = ? AND embedding IS NOT NULL
		ORDER BY vec_distance_cosine(embedding, ?) ASC
		LIMIT ?
	`
	return s.queryChunks(ctx, query, projectID, serializeVector(vector), limit)
}

// searchVectorFallback computes cosine distance in Go. Used when the
// sqlite-vec extension is not available (purego builds).
func (s *SQLiteStore) searchVectorFallback(ctx context.Context, projectID int64, vector []float32, limit int) ([]*types.CodeChunk, error) {
	query := `
		SELECT ` + chunkColumns + `
		FROM chunks
		WHERE project_id = ? AND embedding IS NOT NULL
	`
	chunks, err := s.queryChunks(ctx, query, projectID)
	if err != nil {
		return nil, err
	}

	type scored struct {
		chunk    *types.CodeChunk
		distance float64
	}
	ranked := make([]scored, 0, len(chunks))
	for _, chunk := range chunks {
		d, err := CosineDistance(vector, chunk.Embedding)
		if err != nil {
			continue // dimension mismatch: skip, don't fail the search
		}
		ranked = append(ranked, scored{chunk: chunk, distance: d})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].distance < ranked[j].distance
	})

	if limit > len(ranked) {
		limit = len(ranked)
	}
	results := make([]*types.CodeChunk, limit)
	for i := 0; i < limit; i++ {
		results[i] = ranked[i].chunk
	}
	return results, nil
}

// CosineDistance computes 1 - cosine similarity between two vectors.
// Lower is closer. Zero-magnitude vectors are maximally distant.
func CosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 1, nil
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)), nil
}

// serializeVector encodes a float32 vector as little-endian bytes, the
// layout sqlite-vec expects
func serializeVector(vector []float32) []byte {
	buf := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// deserializeVector decodes a little-endian byte blob into a float32 vector
func deserializeVector(data []byte) []float32 {
	vector := make([]float32, len(data)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vector
}
