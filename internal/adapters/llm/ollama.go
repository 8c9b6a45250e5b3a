// Package llm provides the Ollama generation adapter implementing
// ports.GenerationService.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"docqa/internal/domain/entities"
	"docqa/internal/domain/ports"
)

// OllamaAdapter calls the Ollama chat API. Conversation history is sent
// as prior chat turns, never spliced into the prompt text.
type OllamaAdapter struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaAdapter creates a new Ollama generation adapter.
func NewOllamaAdapter(baseURL, model string) *OllamaAdapter {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaAdapter{
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: 300 * time.Second, // outer bound; per-call deadlines come via ctx
		},
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// Complete produces a single response. A non-zero opts.Timeout bounds
// the call; exceeding it surfaces as an error for the caller to absorb
// or propagate.
func (a *OllamaAdapter) Complete(ctx context.Context, prompt string, history []entities.Message, opts ports.Options) (string, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	resp, err := a.send(ctx, prompt, history, opts, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return chatResp.Message.Content, nil
}

// CompleteStream produces a token-by-token response over a channel.
func (a *OllamaAdapter) CompleteStream(ctx context.Context, prompt string, history []entities.Message, opts ports.Options) (<-chan ports.StreamToken, error) {
	resp, err := a.send(ctx, prompt, history, opts, true)
	if err != nil {
		return nil, err
	}

	ch := make(chan ports.StreamToken, 100)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				ch <- ports.StreamToken{Done: true, Err: ctx.Err()}
				return
			default:
			}

			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var chunk ollamaChatResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				continue // skip malformed lines
			}

			ch <- ports.StreamToken{Content: chunk.Message.Content, Done: chunk.Done}
			if chunk.Done {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			ch <- ports.StreamToken{Done: true, Err: err}
		}
	}()
	return ch, nil
}

func (a *OllamaAdapter) send(ctx context.Context, prompt string, history []entities.Message, opts ports.Options, stream bool) (*http.Response, error) {
	messages := make([]ollamaMessage, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, ollamaMessage{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, ollamaMessage{Role: string(entities.RoleUser), Content: prompt})

	options := make(map[string]any)
	if opts.Temperature > 0 {
		options["temperature"] = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}

	jsonData, err := json.Marshal(ollamaChatRequest{
		Model:    a.model,
		Messages: messages,
		Stream:   stream,
		Options:  options,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling generation service: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("generation service returned status %d", resp.StatusCode)
	}
	return resp, nil
}
