package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/repoctx/repoctx/internal/chunker"
	"github.com/repoctx/repoctx/internal/embedder"
	"github.com/repoctx/repoctx/internal/language"
	"github.com/repoctx/repoctx/internal/storage"
	"github.com/repoctx/repoctx/internal/walker"
	"github.com/repoctx/repoctx/pkg/types"
)

// ErrIndexInProgress is returned when another indexing run for the same
// project is already active in this process
var ErrIndexInProgress = errors.New("indexing already in progress for this project")

// Indexer coordinates the indexing pipeline: walk -> chunk -> hash-compare
// -> store mutation -> prune
type Indexer struct {
	store    storage.ChunkStore
	embedder embedder.Embedder

	mu    sync.Mutex
	locks map[int64]*IndexLock
}

// Config contains configuration for an indexing run
type Config struct {
	AllowedExtensions map[string]bool // Default: all classifiable extensions
	IgnoredPrefixes   []string        // Default: walker.DefaultIgnoredPrefixes
	MaxFileSize       int64           // Default: walker.DefaultMaxFileSize (1 MiB)
	MaxChunkSize      int             // Default: chunker.DefaultMaxChunkSize (4 KiB)
	ScanWindow        int             // Default: chunker.DefaultScanWindow (300 lines)
	Workers           int             // Chunk-computation parallelism (default: NumCPU)
}

// New creates a new Indexer. The embedder may be nil; created and updated
// chunks are then stored without embeddings.
func New(store storage.ChunkStore, emb embedder.Embedder) *Indexer {
	return &Indexer{
		store:    store,
		embedder: emb,
		locks:    make(map[int64]*IndexLock),
	}
}

// IndexProject indexes the repository rooted at rootPath, creating the
// project record on first run. It returns complete stats even when
// individual files were skipped; store errors propagate as-is and skip the
// pruning phase, so a failed run never deletes chunks for files it did not
// revisit.
func (idx *Indexer) IndexProject(ctx context.Context, rootPath string, config *Config) (*types.IndexStats, error) {
	if config == nil {
		config = &Config{}
	}
	allowed := config.AllowedExtensions
	if allowed == nil {
		allowed = language.Extensions()
	}
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Walk first: an invalid root must fail before any store mutation
	files, err := walker.Walk(rootPath, walker.Options{
		AllowedExtensions: allowed,
		IgnoredPrefixes:   config.IgnoredPrefixes,
		MaxFileSize:       config.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}

	project, err := idx.getOrCreateProject(ctx, rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create project: %w", err)
	}

	lock := idx.lockFor(project.ID)
	if !lock.TryAcquire() {
		return nil, ErrIndexInProgress
	}
	defer lock.Release()

	stats := &types.IndexStats{}
	visited := make(map[types.ChunkKey]struct{})

	// Chunk computation is parallel; store writes below stay strictly
	// sequential and in walk order, which keeps runs deterministic.
	fileChunks, err := idx.chunkFiles(ctx, files, config, workers)
	if err != nil {
		return nil, err
	}

	for i := range files {
		if fileChunks[i] == nil {
			continue // unreadable or non-text file, skipped
		}
		stats.FilesScanned++

		for _, chunk := range dedupeByKey(fileChunks[i]) {
			chunk.ProjectID = project.ID
			chunk.ComputeContentHash()
			key := chunk.Key()

			existing, err := idx.store.FindChunk(ctx, project.ID, key)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				chunk.Embedding = idx.embed(ctx, chunk.Content)
				if err := idx.store.UpsertChunk(ctx, chunk); err != nil {
					return nil, err
				}
				stats.ChunksCreated++
			case err != nil:
				return nil, err
			case existing.ContentHash == chunk.ContentHash:
				stats.ChunksUnchanged++
			default:
				// Content changed: the stored embedding is stale. Upsert
				// writes the chunk's Embedding field, so a failed embed
				// attempt clears it in the same update.
				chunk.Embedding = idx.embed(ctx, chunk.Content)
				if err := idx.store.UpsertChunk(ctx, chunk); err != nil {
					return nil, err
				}
				stats.ChunksUpdated++
			}

			visited[key] = struct{}{}
		}
	}

	// Prune only after the entire walk completed
	removed, err := idx.store.DeleteUnvisited(ctx, project.ID, visited)
	if err != nil {
		return nil, err
	}
	stats.ChunksRemoved = removed

	if err := idx.updateProjectStats(ctx, project, stats); err != nil {
		return nil, err
	}

	return stats, nil
}

// chunkFiles reads and chunks every walked file concurrently. A nil entry in
// the result marks a file skipped for a transient reason (unreadable,
// not valid UTF-8): skipped files count toward no stat and never fail the run.
func (idx *Indexer) chunkFiles(ctx context.Context, files []walker.FileInfo, config *Config, workers int) ([][]*types.CodeChunk, error) {
	c := chunker.NewWithConfig(chunker.Config{
		MaxChunkSize: config.MaxChunkSize,
		ScanWindow:   config.ScanWindow,
	})
	results := make([][]*types.CodeChunk, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			file := files[i]
			data, err := os.ReadFile(file.AbsPath)
			if err != nil {
				return nil // transient: skip the file, keep indexing
			}
			if !utf8.Valid(data) {
				return nil // binary or badly encoded content
			}

			lang := language.Classify(file.RelPath)
			results[i] = c.Chunk(string(data), lang, file.RelPath)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// dedupeByKey collapses same-key candidates within one file. Heuristic
// extraction can yield two constructs with the same identifier; the later
// one in scan order wins. This is accepted ambiguity, not a guarantee.
func dedupeByKey(chunks []*types.CodeChunk) []*types.CodeChunk {
	last := make(map[types.ChunkKey]int, len(chunks))
	for i, chunk := range chunks {
		last[chunk.Key()] = i
	}
	if len(last) == len(chunks) {
		return chunks
	}

	out := make([]*types.CodeChunk, 0, len(last))
	for i, chunk := range chunks {
		if last[chunk.Key()] == i {
			out = append(out, chunk)
		}
	}
	return out
}

// embed attempts to generate an embedding for chunk content. Any provider
// failure leaves the chunk unembedded; unavailability is never fatal to an
// indexing run.
func (idx *Indexer) embed(ctx context.Context, content string) []float32 {
	if idx.embedder == nil {
		return nil
	}
	emb, err := idx.embedder.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: content})
	if err != nil {
		return nil
	}
	return emb.Vector
}

// getOrCreateProject retrieves an existing project or creates a new one
func (idx *Indexer) getOrCreateProject(ctx context.Context, rootPath string) (*storage.Project, error) {
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrInvalidRoot, rootPath, err)
	}

	project, err := idx.store.GetProject(ctx, abs)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	project = &storage.Project{
		RootPath:     abs,
		Name:         filepath.Base(abs),
		IndexVersion: storage.CurrentSchemaVersion,
	}
	if err := idx.store.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// lockFor returns the in-process lock guarding a project's index runs
func (idx *Indexer) lockFor(projectID int64) *IndexLock {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	lock, ok := idx.locks[projectID]
	if !ok {
		lock = &IndexLock{}
		idx.locks[projectID] = lock
	}
	return lock
}

// updateProjectStats records totals on the project row after a run
func (idx *Indexer) updateProjectStats(ctx context.Context, project *storage.Project, stats *types.IndexStats) error {
	total, err := idx.store.CountChunks(ctx, project.ID)
	if err != nil {
		return err
	}

	project.TotalFiles = stats.FilesScanned
	project.TotalChunks = total
	project.LastIndexedAt = time.Now()

	return idx.store.UpdateProject(ctx, project)
}
