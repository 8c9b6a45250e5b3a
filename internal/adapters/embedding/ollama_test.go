package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "hello world", req.Prompt)

		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "", nil)
	embedding, err := adapter.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, embedding)
}

func TestEmbed_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "", nil)
	_, err := adapter.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "4xx responses are not transient")
}

func TestEmbed_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{1}})
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "", nil)
	embedding, err := adapter.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, embedding)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		json.NewDecoder(r.Body).Decode(&req)
		// Encode the text length so order is observable.
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: []float32{float32(len(req.Prompt))}})
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "", nil)
	embeddings, err := adapter.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, embeddings, 3)
	assert.Equal(t, float32(1), embeddings[0][0])
	assert.Equal(t, float32(2), embeddings[1][0])
	assert.Equal(t, float32(3), embeddings[2][0])
}

func TestNewOllamaAdapter_Defaults(t *testing.T) {
	adapter := NewOllamaAdapter("", "", nil)
	assert.Equal(t, "http://localhost:11434", adapter.baseURL)
	assert.Equal(t, "nomic-embed-text", adapter.model)
}
