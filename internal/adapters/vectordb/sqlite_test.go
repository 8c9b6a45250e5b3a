package vectordb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain/entities"
)

func newTestSQLiteIndex(t *testing.T) *SQLiteIndex {
	t.Helper()
	index, err := NewSQLiteIndex(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })
	return index
}

func TestSQLiteIndex_StoreAndSearch(t *testing.T) {
	index := newTestSQLiteIndex(t)

	require.NoError(t, index.Store(context.Background(), []entities.Chunk{
		{ID: "c1", DocumentID: "doc", Text: "alpha", Index: 0, Source: "a.txt", Embedding: []float32{1, 0}},
		{ID: "c2", DocumentID: "doc", Text: "beta", Index: 1, Source: "a.txt", Embedding: []float32{0, 1}},
	}))

	results, err := index.Search(context.Background(), []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].Chunk.ID)
	assert.Equal(t, "alpha", results[0].Chunk.Text)
	assert.Equal(t, "a.txt", results[0].Chunk.Source)
}

func TestSQLiteIndex_EmptySearch(t *testing.T) {
	index := newTestSQLiteIndex(t)

	results, err := index.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSQLiteIndex_ByDocumentOrder(t *testing.T) {
	index := newTestSQLiteIndex(t)

	require.NoError(t, index.Store(context.Background(), []entities.Chunk{
		{ID: "c2", DocumentID: "doc", Text: "second", Index: 1, Source: "a.txt", Embedding: []float32{1}},
		{ID: "c1", DocumentID: "doc", Text: "first", Index: 0, Source: "a.txt", Embedding: []float32{1}},
		{ID: "x", DocumentID: "other", Text: "noise", Index: 0, Source: "b.txt", Embedding: []float32{1}},
	}))

	chunks, err := index.ByDocument(context.Background(), "doc")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first", chunks[0].Text)
	assert.Equal(t, "second", chunks[1].Text)
}

func TestSQLiteIndex_StoreIsTransactional(t *testing.T) {
	index := newTestSQLiteIndex(t)

	require.NoError(t, index.Store(context.Background(), []entities.Chunk{
		{ID: "dup", DocumentID: "doc", Text: "one", Index: 0, Source: "a.txt", Embedding: []float32{1}},
	}))

	// The second batch violates the unique id constraint on its last
	// row; none of the batch may become visible.
	err := index.Store(context.Background(), []entities.Chunk{
		{ID: "new", DocumentID: "doc", Text: "two", Index: 1, Source: "a.txt", Embedding: []float32{1}},
		{ID: "dup", DocumentID: "doc", Text: "clash", Index: 2, Source: "a.txt", Embedding: []float32{1}},
	})
	require.Error(t, err)

	count, err := index.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLiteIndex_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	index, err := NewSQLiteIndex(dir)
	require.NoError(t, err)
	require.NoError(t, index.Store(context.Background(), []entities.Chunk{
		{ID: "c1", DocumentID: "doc", Text: "survives", Index: 0, Source: "a.txt", Embedding: []float32{1}},
	}))
	require.NoError(t, index.Close())

	reopened, err := NewSQLiteIndex(dir)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
