package indexer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repoctx/repoctx/internal/embedder"
	"github.com/repoctx/repoctx/internal/storage"
	"github.com/repoctx/repoctx/pkg/types"
)

// mockEmbedder returns a fixed vector, or ErrUnavailable when down
type mockEmbedder struct {
	down  bool
	calls int
}

func (m *mockEmbedder) GenerateEmbedding(ctx context.Context, req embedder.EmbeddingRequest) (*embedder.Embedding, error) {
	m.calls++
	if m.down {
		return nil, embedder.ErrUnavailable
	}
	return &embedder.Embedding{
		Vector:    []float32{0.1, 0.2, 0.3},
		Dimension: 3,
		Provider:  "mock",
		Model:     "mock-model",
	}, nil
}

func (m *mockEmbedder) GenerateBatch(ctx context.Context, req embedder.BatchEmbeddingRequest) (*embedder.BatchEmbeddingResponse, error) {
	embeddings := make([]*embedder.Embedding, len(req.Texts))
	for i := range req.Texts {
		emb, err := m.GenerateEmbedding(ctx, embedder.EmbeddingRequest{Text: req.Texts[i]})
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return &embedder.BatchEmbeddingResponse{Embeddings: embeddings, Provider: "mock", Model: "mock-model"}, nil
}

func (m *mockEmbedder) Dimension() int   { return 3 }
func (m *mockEmbedder) Provider() string { return "mock" }
func (m *mockEmbedder) Model() string    { return "mock-model" }
func (m *mockEmbedder) Close() error     { return nil }

func setupStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestIndexEmptyDirectory(t *testing.T) {
	store := setupStore(t)
	idx := New(store, nil)

	stats, err := idx.IndexProject(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, &types.IndexStats{}, stats)
}

func TestIndexInvalidRoot(t *testing.T) {
	store := setupStore(t)
	idx := New(store, nil)

	_, err := idx.IndexProject(context.Background(), filepath.Join(t.TempDir(), "missing"), nil)
	assert.ErrorIs(t, err, types.ErrInvalidRoot)
}

func TestIndexSingleRubyFunction(t *testing.T) {
	store := setupStore(t)
	idx := New(store, nil)
	ctx := context.Background()

	root := t.TempDir()
	writeFile(t, root, "lib/foo.rb", "def foo\n  1 + 1\nend\n")

	stats, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesScanned)
	assert.Equal(t, 1, stats.ChunksCreated)
	assert.Equal(t, 0, stats.ChunksUpdated)
	assert.Equal(t, 0, stats.ChunksRemoved)

	project, err := store.GetProject(ctx, mustAbs(t, root))
	require.NoError(t, err)

	chunk, err := store.FindChunk(ctx, project.ID, types.ChunkKey{
		FilePath:   "lib/foo.rb",
		ChunkType:  types.ChunkFunction,
		Identifier: "foo",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, chunk.StartLine)
	assert.Equal(t, 3, chunk.EndLine)
	assert.Equal(t, types.HashContent(chunk.Content), chunk.ContentHash)
	assert.Equal(t, types.LangRuby, chunk.Language)
}

func TestIndexIdempotent(t *testing.T) {
	store := setupStore(t)
	idx := New(store, nil)
	ctx := context.Background()

	root := t.TempDir()
	writeFile(t, root, "lib/foo.rb", "def foo\n  1 + 1\nend\n")
	writeFile(t, root, "lib/bar.py", "def bar():\n    return 2\n")

	first, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)
	created := first.ChunksCreated
	require.Greater(t, created, 0)

	second, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ChunksCreated)
	assert.Equal(t, 0, second.ChunksUpdated)
	assert.Equal(t, 0, second.ChunksRemoved)
	assert.Equal(t, created, second.ChunksUnchanged)
}

func TestIndexUpdateInvalidatesEmbedding(t *testing.T) {
	store := setupStore(t)
	idx := New(store, nil)
	ctx := context.Background()

	root := t.TempDir()
	writeFile(t, root, "lib/foo.rb", "def foo\n  1 + 1\nend\n")

	_, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)

	project, err := store.GetProject(ctx, mustAbs(t, root))
	require.NoError(t, err)
	key := types.ChunkKey{FilePath: "lib/foo.rb", ChunkType: types.ChunkFunction, Identifier: "foo"}

	chunk, err := store.FindChunk(ctx, project.ID, key)
	require.NoError(t, err)
	oldHash := chunk.ContentHash
	require.NoError(t, store.SetEmbedding(ctx, chunk.ID, []float32{1, 2, 3}))

	// Edit the body and re-index
	writeFile(t, root, "lib/foo.rb", "def foo\n  2 + 2\nend\n")
	stats, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ChunksUpdated)
	assert.Equal(t, 0, stats.ChunksCreated)

	chunk, err = store.FindChunk(ctx, project.ID, key)
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, chunk.ContentHash)
	assert.Nil(t, chunk.Embedding, "content change must clear the stored embedding")
}

func TestIndexPrunesDeletedFiles(t *testing.T) {
	store := setupStore(t)
	idx := New(store, nil)
	ctx := context.Background()

	root := t.TempDir()
	writeFile(t, root, "lib/keep.rb", "def keep\nend\n")
	writeFile(t, root, "lib/gone.rb", "def gone\nend\n\ndef also_gone\nend\n")

	first, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)
	require.Equal(t, 3, first.ChunksCreated)

	require.NoError(t, os.Remove(filepath.Join(root, "lib", "gone.rb")))

	second, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, second.ChunksRemoved, "exactly the deleted file's chunks are pruned")
	assert.Equal(t, 1, second.ChunksUnchanged)

	project, err := store.GetProject(ctx, mustAbs(t, root))
	require.NoError(t, err)
	count, err := store.CountChunks(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndexRenamedConstructReplacesKey(t *testing.T) {
	store := setupStore(t)
	idx := New(store, nil)
	ctx := context.Background()

	root := t.TempDir()
	writeFile(t, root, "lib/foo.rb", "def foo\nend\n")
	_, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)

	writeFile(t, root, "lib/foo.rb", "def renamed\nend\n")
	stats, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)

	// A rename is a new key plus a pruned old key, not an update
	assert.Equal(t, 1, stats.ChunksCreated)
	assert.Equal(t, 1, stats.ChunksRemoved)
	assert.Equal(t, 0, stats.ChunksUpdated)
}

func TestIndexEmbedsCreatedChunks(t *testing.T) {
	store := setupStore(t)
	emb := &mockEmbedder{}
	idx := New(store, emb)
	ctx := context.Background()

	root := t.TempDir()
	writeFile(t, root, "lib/foo.rb", "def foo\nend\n")

	_, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, emb.calls)

	project, err := store.GetProject(ctx, mustAbs(t, root))
	require.NoError(t, err)
	embedded, err := store.CountEmbedded(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, embedded)

	// Unchanged chunks are not re-embedded on the next run
	_, err = idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, emb.calls)
}

func TestIndexProviderUnavailableNeverFails(t *testing.T) {
	store := setupStore(t)
	idx := New(store, &mockEmbedder{down: true})
	ctx := context.Background()

	root := t.TempDir()
	writeFile(t, root, "lib/foo.rb", "def foo\nend\n")

	stats, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ChunksCreated)

	project, err := store.GetProject(ctx, mustAbs(t, root))
	require.NoError(t, err)
	embedded, err := store.CountEmbedded(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, embedded)
}

func TestIndexSkipsBinaryFiles(t *testing.T) {
	store := setupStore(t)
	idx := New(store, nil)
	ctx := context.Background()

	root := t.TempDir()
	writeFile(t, root, "lib/ok.rb", "def ok\nend\n")
	writeFile(t, root, "lib/junk.rb", "def x\n\xff\xfe\x00broken\nend\n")

	stats, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)

	// The non-UTF-8 file is skipped without failing the run and without
	// touching any chunk stat
	assert.Equal(t, 1, stats.FilesScanned)
	assert.Equal(t, 1, stats.ChunksCreated)
}

func TestIndexUpdatesProjectTotals(t *testing.T) {
	store := setupStore(t)
	idx := New(store, nil)
	ctx := context.Background()

	root := t.TempDir()
	writeFile(t, root, "a.rb", "def a\nend\n")
	writeFile(t, root, "b.rb", "def b\nend\n")

	_, err := idx.IndexProject(ctx, root, nil)
	require.NoError(t, err)

	project, err := store.GetProject(ctx, mustAbs(t, root))
	require.NoError(t, err)
	assert.Equal(t, 2, project.TotalFiles)
	assert.Equal(t, 2, project.TotalChunks)
	assert.False(t, project.LastIndexedAt.IsZero())
}

func TestIndexScanWindowConfig(t *testing.T) {
	store := setupStore(t)
	idx := New(store, nil)
	ctx := context.Background()

	root := t.TempDir()
	var sb strings.Builder
	sb.WriteString("def runaway\n")
	for i := 0; i < 50; i++ {
		sb.WriteString("  x = 1\n")
	}
	writeFile(t, root, "lib/runaway.rb", sb.String())

	_, err := idx.IndexProject(ctx, root, &Config{ScanWindow: 10})
	require.NoError(t, err)

	project, err := store.GetProject(ctx, mustAbs(t, root))
	require.NoError(t, err)
	chunk, err := store.FindChunk(ctx, project.ID, types.ChunkKey{
		FilePath:   "lib/runaway.rb",
		ChunkType:  types.ChunkFunction,
		Identifier: "runaway",
	})
	require.NoError(t, err)

	// The unterminated def is capped at the configured window
	assert.Equal(t, 1, chunk.StartLine)
	assert.Equal(t, 11, chunk.EndLine)
}

func TestIndexLock(t *testing.T) {
	var lock IndexLock
	assert.False(t, lock.IsHeld())
	assert.True(t, lock.TryAcquire())
	assert.True(t, lock.IsHeld())
	assert.False(t, lock.TryAcquire())
	lock.Release()
	assert.True(t, lock.TryAcquire())
}

func mustAbs(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return abs
}
