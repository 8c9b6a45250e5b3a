package vectordb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain/entities"
)

func TestMemoryIndex_EmptySearchReturnsEmpty(t *testing.T) {
	index := NewMemoryIndex()

	results, err := index.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err, "an empty index is not an error condition")
	assert.Empty(t, results)
}

func TestMemoryIndex_KLargerThanIndexReturnsAll(t *testing.T) {
	index := NewMemoryIndex()
	require.NoError(t, index.Store(context.Background(), []entities.Chunk{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{0, 1}},
	}))

	results, err := index.Search(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2, "no padding, no duplicates")
}

func TestMemoryIndex_RanksByCosineSimilarity(t *testing.T) {
	index := NewMemoryIndex()
	require.NoError(t, index.Store(context.Background(), []entities.Chunk{
		{ID: "orthogonal", Embedding: []float32{0, 1}},
		{ID: "exact", Embedding: []float32{1, 0}},
		{ID: "close", Embedding: []float32{1, 0.2}},
	}))

	results, err := index.Search(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].Chunk.ID)
	assert.Equal(t, "close", results[1].Chunk.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestMemoryIndex_TiesKeepInsertionOrder(t *testing.T) {
	index := NewMemoryIndex()
	// Identical embeddings tie exactly.
	require.NoError(t, index.Store(context.Background(), []entities.Chunk{
		{ID: "first", Embedding: []float32{1, 1}},
		{ID: "second", Embedding: []float32{1, 1}},
		{ID: "third", Embedding: []float32{1, 1}},
	}))

	results, err := index.Search(context.Background(), []float32{1, 1}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Chunk.ID)
	assert.Equal(t, "second", results[1].Chunk.ID)
	assert.Equal(t, "third", results[2].Chunk.ID)
}

func TestMemoryIndex_ByDocumentSequenceOrder(t *testing.T) {
	index := NewMemoryIndex()
	require.NoError(t, index.Store(context.Background(), []entities.Chunk{
		{ID: "b1", DocumentID: "other", Index: 0},
		{ID: "a2", DocumentID: "doc", Index: 1},
		{ID: "a1", DocumentID: "doc", Index: 0},
	}))

	chunks, err := index.ByDocument(context.Background(), "doc")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "a1", chunks[0].ID)
	assert.Equal(t, "a2", chunks[1].ID)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1}), "mismatched dimensions score zero")
	assert.Zero(t, cosineSimilarity(nil, nil))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}), "zero vector scores zero")
}
