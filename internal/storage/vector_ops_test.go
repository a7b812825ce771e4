package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 0},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 1},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, 2},
		{"scaled", []float32{2, 0, 0}, []float32{5, 0, 0}, 0},
		{"zero magnitude", []float32{0, 0, 0}, []float32{1, 0, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := CosineDistance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, d, 1e-6)
		})
	}
}

func TestCosineDistanceDimensionMismatch(t *testing.T) {
	_, err := CosineDistance([]float32{1, 0}, []float32{1, 0, 0})
	assert.Error(t, err)
}

func TestVectorSerializationRoundTrip(t *testing.T) {
	vector := []float32{0.1, -2.5, 3.75, 0}
	got := deserializeVector(serializeVector(vector))
	assert.Equal(t, vector, got)
}

func TestSearchVector(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	project := testProject(t, store)

	// Three embedded chunks at increasing angles from the query vector,
	// plus one without an embedding
	vectors := map[string][]float32{
		"closest": {1, 0, 0},
		"middle":  {1, 1, 0},
		"distant": {0, 1, 0},
	}
	for name, vec := range vectors {
		chunk := testChunk(project.ID, name+".rb", name, "def "+name+"\nend")
		chunk.Embedding = vec
		require.NoError(t, store.UpsertChunk(ctx, chunk))
	}
	bare := testChunk(project.ID, "bare.rb", "bare", "def bare\nend")
	require.NoError(t, store.UpsertChunk(ctx, bare))

	results, err := store.SearchVector(ctx, project.ID, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3, "unembedded chunks are never semantic results")

	assert.Equal(t, "closest", results[0].Identifier)
	assert.Equal(t, "middle", results[1].Identifier)
	assert.Equal(t, "distant", results[2].Identifier)
}

func TestSearchVectorLimit(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	project := testProject(t, store)

	for _, name := range []string{"a", "b", "c"} {
		chunk := testChunk(project.ID, name+".rb", name, "def "+name+"\nend")
		chunk.Embedding = []float32{1, 0}
		require.NoError(t, store.UpsertChunk(ctx, chunk))
	}

	results, err := store.SearchVector(ctx, project.ID, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchVectorEmptyInputs(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	project := testProject(t, store)

	results, err := store.SearchVector(ctx, project.ID, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = store.SearchVector(ctx, project.ID, []float32{1}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchVectorSkipsMismatchedDimensions(t *testing.T) {
	if VectorExtensionAvailable {
		t.Skip("Go fallback path only")
	}

	store := setupTestDB(t)
	ctx := context.Background()
	project := testProject(t, store)

	good := testChunk(project.ID, "good.rb", "good", "def good\nend")
	good.Embedding = []float32{1, 0, 0}
	odd := testChunk(project.ID, "odd.rb", "odd", "def odd\nend")
	odd.Embedding = []float32{1, 0}
	require.NoError(t, store.UpsertChunk(ctx, good))
	require.NoError(t, store.UpsertChunk(ctx, odd))

	results, err := store.SearchVector(ctx, project.ID, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].Identifier)
}

func TestSearchVectorScopedToProject(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	first := testProject(t, store)

	second := &Project{RootPath: "/src/other", Name: "other", IndexVersion: CurrentSchemaVersion}
	require.NoError(t, store.CreateProject(ctx, second))

	mine := testChunk(first.ID, "mine.rb", "mine", "def mine\nend")
	mine.Embedding = []float32{1, 0}
	theirs := testChunk(second.ID, "theirs.rb", "theirs", "def theirs\nend")
	theirs.Embedding = []float32{1, 0}
	require.NoError(t, store.UpsertChunk(ctx, mine))
	require.NoError(t, store.UpsertChunk(ctx, theirs))

	results, err := store.SearchVector(ctx, first.ID, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "mine", results[0].Identifier)
}
