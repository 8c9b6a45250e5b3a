package usecases

import (
	"context"
	"errors"

	"docqa/internal/domain/entities"
	"docqa/internal/domain/ports"
)

// mockEmbedder implements ports.EmbeddingService for testing.
type mockEmbedder struct {
	embedFn func(text string) ([]float32, error)
	calls   int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	if m.embedFn != nil {
		return m.embedFn(text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		emb, err := m.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		result[i] = emb
	}
	return result, nil
}

// mockLLM implements ports.GenerationService for testing.
type mockLLM struct {
	response   string
	err        error
	lastPrompt string
	history    []entities.Message
	calls      int
}

func (m *mockLLM) Complete(ctx context.Context, prompt string, history []entities.Message, opts ports.Options) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	m.history = history
	if m.err != nil {
		return "", m.err
	}
	if m.response != "" {
		return m.response, nil
	}
	return "mocked answer", nil
}

func (m *mockLLM) CompleteStream(ctx context.Context, prompt string, history []entities.Message, opts ports.Options) (<-chan ports.StreamToken, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastPrompt = prompt
	ch := make(chan ports.StreamToken, 2)
	ch <- ports.StreamToken{Content: m.response}
	ch <- ports.StreamToken{Done: true}
	close(ch)
	return ch, nil
}

// failingStore implements ports.VectorStore and fails every call.
type failingStore struct{}

var errStore = errors.New("store down")

func (failingStore) Store(ctx context.Context, chunks []entities.Chunk) error { return errStore }
func (failingStore) Search(ctx context.Context, embedding []float32, topK int) ([]entities.QueryResult, error) {
	return nil, errStore
}
func (failingStore) ByDocument(ctx context.Context, documentID string) ([]entities.Chunk, error) {
	return nil, errStore
}
func (failingStore) Count(ctx context.Context) (int, error) { return 0, errStore }
