package storage

import (
	"context"
	"errors"
	"time"

	"github.com/repoctx/repoctx/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// ChunkStore defines the persistence contract for indexed chunks. Every
// chunk operation is scoped to one project; an indexing pass never reads or
// mutates another project's chunks.
type ChunkStore interface {
	// Project operations
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, rootPath string) (*Project, error)
	GetProjectByID(ctx context.Context, projectID int64) (*Project, error)
	UpdateProject(ctx context.Context, project *Project) error

	// Chunk operations. FindChunk looks up by identity key and returns
	// ErrNotFound when absent. UpsertChunk writes the chunk's full state,
	// including its Embedding field: passing nil clears a stored embedding.
	FindChunk(ctx context.Context, projectID int64, key types.ChunkKey) (*types.CodeChunk, error)
	GetChunk(ctx context.Context, chunkID int64) (*types.CodeChunk, error)
	UpsertChunk(ctx context.Context, chunk *types.CodeChunk) error
	ListChunks(ctx context.Context, projectID int64) ([]*types.CodeChunk, error)

	// DeleteUnvisited prunes every chunk of the project whose key is absent
	// from visited, returning the number deleted
	DeleteUnvisited(ctx context.Context, projectID int64, visited map[types.ChunkKey]struct{}) (int, error)

	// Embedding operations
	SetEmbedding(ctx context.Context, chunkID int64, vector []float32) error
	HasAnyEmbedding(ctx context.Context, projectID int64) (bool, error)

	// Search operations. SearchText matches any token as a case-insensitive
	// substring of content, file path, or identifier, ordered by
	// (file_path, start_line). SearchVector orders embedded chunks by
	// ascending cosine distance from the query vector.
	SearchText(ctx context.Context, projectID int64, tokens []string, limit int) ([]*types.CodeChunk, error)
	SearchVector(ctx context.Context, projectID int64, vector []float32, limit int) ([]*types.CodeChunk, error)

	// Status operations
	CountChunks(ctx context.Context, projectID int64) (int, error)
	CountEmbedded(ctx context.Context, projectID int64) (int, error)

	// Database operations
	Close() error
}

// Project represents an indexed repository
type Project struct {
	ID            int64
	RootPath      string
	Name          string
	TotalFiles    int
	TotalChunks   int
	IndexVersion  string
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
