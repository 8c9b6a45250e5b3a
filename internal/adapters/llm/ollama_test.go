package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain/entities"
	"docqa/internal/domain/ports"
)

func TestComplete_SendsHistoryAsPriorTurns(t *testing.T) {
	var captured ollamaChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: "generated"},
			Done:    true,
		})
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "llama3.2")
	history := []entities.Message{
		{Role: entities.RoleUser, Content: "earlier question"},
		{Role: entities.RoleAssistant, Content: "earlier answer"},
	}

	text, err := adapter.Complete(context.Background(), "the prompt", history, ports.Options{
		Temperature: 0.5,
		MaxTokens:   100,
	})
	require.NoError(t, err)
	assert.Equal(t, "generated", text)

	require.Len(t, captured.Messages, 3)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "earlier question", captured.Messages[0].Content)
	assert.Equal(t, "assistant", captured.Messages[1].Role)
	assert.Equal(t, "the prompt", captured.Messages[2].Content)
	assert.False(t, captured.Stream)
	assert.EqualValues(t, 0.5, captured.Options["temperature"])
	assert.EqualValues(t, 100, captured.Options["num_predict"])
}

func TestComplete_TimeoutSurfacesError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "")
	_, err := adapter.Complete(context.Background(), "prompt", nil, ports.Options{
		Timeout: 50 * time.Millisecond,
	})
	assert.Error(t, err, "exceeding the budget is an error for the caller to absorb")
}

func TestComplete_ServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "")
	_, err := adapter.Complete(context.Background(), "prompt", nil, ports.Options{})
	assert.ErrorContains(t, err, "status 404")
}

func TestCompleteStream_EmitsTokensUntilDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.True(t, req.Stream)

		enc := json.NewEncoder(w)
		enc.Encode(ollamaChatResponse{Message: ollamaMessage{Content: "Hel"}})
		enc.Encode(ollamaChatResponse{Message: ollamaMessage{Content: "lo"}})
		enc.Encode(ollamaChatResponse{Done: true})
	}))
	defer server.Close()

	adapter := NewOllamaAdapter(server.URL, "")
	tokens, err := adapter.CompleteStream(context.Background(), "prompt", nil, ports.Options{})
	require.NoError(t, err)

	var full string
	var done bool
	for tok := range tokens {
		require.NoError(t, tok.Err)
		full += tok.Content
		done = tok.Done
	}
	assert.Equal(t, "Hello", full)
	assert.True(t, done)
}

func TestNewOllamaAdapter_Defaults(t *testing.T) {
	adapter := NewOllamaAdapter("", "")
	assert.Equal(t, "http://localhost:11434", adapter.baseURL)
	assert.Equal(t, "llama3.2", adapter.model)
}
