// Package vectordb provides vector index adapters implementing
// ports.VectorStore. The in-memory index is the default backend; the
// SQLite-backed variant can be selected via configuration.
package vectordb

import (
	"context"
	"math"
	"sort"
	"sync"

	"docqa/internal/domain/entities"
)

// MemoryIndex is an append-only in-memory chunk index. Chunks are kept
// in insertion order so equal-score search results rank stably.
type MemoryIndex struct {
	mu     sync.RWMutex
	chunks []entities.Chunk
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Store appends chunks under a single lock, so a batch becomes visible
// all at once or not at all.
func (s *MemoryIndex) Store(ctx context.Context, chunks []entities.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chunks = append(s.chunks, chunks...)
	return nil
}

// Search ranks all indexed chunks by cosine similarity, descending.
// Ties keep insertion order. An empty index returns an empty result,
// and topK larger than the index returns everything.
func (s *MemoryIndex) Search(ctx context.Context, embedding []float32, topK int) ([]entities.QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 || len(s.chunks) == 0 {
		return nil, nil
	}

	results := make([]entities.QueryResult, len(s.chunks))
	for i, chunk := range s.chunks {
		results[i] = entities.QueryResult{
			Chunk: chunk,
			Score: cosineSimilarity(embedding, chunk.Embedding),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// ByDocument returns a document's chunks in sequence order.
func (s *MemoryIndex) ByDocument(ctx context.Context, documentID string) ([]entities.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chunks []entities.Chunk
	for _, c := range s.chunks {
		if c.DocumentID == documentID {
			chunks = append(chunks, c)
		}
	}
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// Count reports the number of indexed chunks.
func (s *MemoryIndex) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// cosineSimilarity calculates cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
