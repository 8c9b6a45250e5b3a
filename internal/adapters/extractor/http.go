// Package extractor provides the text-extraction collaborator client
// implementing ports.TextExtractor. Extraction itself (PDF parsing, OCR)
// runs in an external sidecar service reached over HTTP.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTPExtractor calls the extraction sidecar's /extract endpoint.
type HTTPExtractor struct {
	serviceURL string
	client     *http.Client
}

// NewHTTPExtractor creates an extractor client.
func NewHTTPExtractor(serviceURL string) *HTTPExtractor {
	if serviceURL == "" {
		serviceURL = "http://localhost:8081"
	}
	return &HTTPExtractor{
		serviceURL: serviceURL,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

// extractResponse is the sidecar response format.
type extractResponse struct {
	Pages []string `json:"pages"`
	Error string   `json:"error,omitempty"`
}

// Extract sends the raw document bytes and returns the page texts in
// order. Zero pages is a valid result for unreadable or scanned input.
func (e *HTTPExtractor) Extract(ctx context.Context, data []byte, filename string) ([]string, error) {
	endpoint := e.serviceURL + "/extract?filename=" + url.QueryEscape(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling extraction service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction service returned status %d", resp.StatusCode)
	}

	var result extractResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("extraction error: %s", result.Error)
	}
	return result.Pages, nil
}

// Healthy reports whether the extraction sidecar is reachable.
func (e *HTTPExtractor) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.serviceURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
