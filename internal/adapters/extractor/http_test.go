package extractor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_ReturnsPagesInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extract", r.URL.Path)
		assert.Equal(t, "report.pdf", r.URL.Query().Get("filename"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, []byte("%PDF-raw-bytes"), body)

		json.NewEncoder(w).Encode(extractResponse{Pages: []string{"page one", "page two"}})
	}))
	defer server.Close()

	ext := NewHTTPExtractor(server.URL)
	pages, err := ext.Extract(context.Background(), []byte("%PDF-raw-bytes"), "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"page one", "page two"}, pages)
}

func TestExtract_ZeroPagesIsValid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(extractResponse{Pages: []string{}})
	}))
	defer server.Close()

	ext := NewHTTPExtractor(server.URL)
	pages, err := ext.Extract(context.Background(), []byte("scanned"), "scan.pdf")
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestExtract_SidecarErrorField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(extractResponse{Error: "encrypted document"})
	}))
	defer server.Close()

	ext := NewHTTPExtractor(server.URL)
	_, err := ext.Extract(context.Background(), []byte("data"), "locked.pdf")
	assert.ErrorContains(t, err, "encrypted document")
}

func TestExtract_Non200Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	ext := NewHTTPExtractor(server.URL)
	_, err := ext.Extract(context.Background(), []byte("data"), "x.pdf")
	assert.ErrorContains(t, err, "status 500")
}

func TestHealthy(t *testing.T) {
	healthy := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	ext := NewHTTPExtractor(server.URL)
	assert.True(t, ext.Healthy(context.Background()))

	healthy = false
	assert.False(t, ext.Healthy(context.Background()))
}
