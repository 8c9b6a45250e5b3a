// Package http provides the HTTP shell over the core usecases. It is a
// thin, replaceable layer: request parsing and status mapping only.
package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"docqa/internal/domain/entities"
	"docqa/internal/domain/faults"
	"docqa/internal/domain/ports"
	"docqa/internal/domain/usecases"
)

// Server is the HTTP server for the document QA API.
type Server struct {
	ingest    *usecases.IngestUseCase
	answer    *usecases.AnswerUseCase
	summarize *usecases.SummarizeUseCase
	registry  ports.DocumentRegistry
	extractor ports.TextExtractor
	addr      string
	logger    *slog.Logger
}

// NewServer creates a new HTTP server over the core usecases.
func NewServer(
	ingest *usecases.IngestUseCase,
	answer *usecases.AnswerUseCase,
	summarize *usecases.SummarizeUseCase,
	registry ports.DocumentRegistry,
	extractor ports.TextExtractor,
	addr string,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		ingest:    ingest,
		answer:    answer,
		summarize: summarize,
		registry:  registry,
		extractor: extractor,
		addr:      addr,
		logger:    logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/documents", s.handleUpload)
	mux.HandleFunc("POST /api/documents/text", s.handleIngestText)
	mux.HandleFunc("POST /api/documents/base64", s.handleIngestBase64)
	mux.HandleFunc("GET /api/documents", s.handleListDocuments)
	mux.HandleFunc("POST /api/ask", s.handleAsk)
	mux.HandleFunc("GET /api/ask/stream", s.handleAskStream)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/summarize", s.handleSummarize)
	mux.HandleFunc("GET /api/memory", s.handleGetMemory)
	mux.HandleFunc("DELETE /api/memory", s.handleClearMemory)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	return corsMiddleware(loggingMiddleware(mux, s.logger))
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // streaming responses can run long
	}

	s.logger.Info("server starting", "addr", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// maxUploadBytes bounds a single document upload.
const maxUploadBytes = 32 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, fmt.Errorf("%w: parsing multipart form: %v", faults.ErrValidation, err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, fmt.Errorf("%w: missing file field", faults.ErrValidation))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, fmt.Errorf("reading upload: %w", err))
		return
	}
	s.ingestBinary(w, r, data, header.Filename)
}

func (s *Server) handleIngestText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: decoding body: %v", faults.ErrValidation, err))
		return
	}
	if req.Filename == "" {
		req.Filename = "untitled.txt"
	}

	doc, err := s.ingest.IngestText(r.Context(), req.Text, req.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, documentResponse(doc))
}

func (s *Server) handleIngestBase64(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Data     string `json:"data"`
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: decoding body: %v", faults.ErrValidation, err))
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid base64 data", faults.ErrValidation))
		return
	}
	s.ingestBinary(w, r, data, req.Filename)
}

// ingestBinary routes binary uploads through the extraction collaborator
// and text formats straight into the pipeline. All three ingestion entry
// points converge here.
func (s *Server) ingestBinary(w http.ResponseWriter, r *http.Request, data []byte, filename string) {
	if filename == "" {
		writeError(w, fmt.Errorf("%w: filename is required", faults.ErrValidation))
		return
	}

	var pages []string
	if isPlainText(filename) {
		pages = []string{string(data)}
	} else {
		if s.extractor == nil {
			writeError(w, fmt.Errorf("%w: extraction service not configured", faults.ErrUnavailable))
			return
		}
		var err error
		pages, err = s.extractor.Extract(r.Context(), data, filename)
		if err != nil {
			writeError(w, fmt.Errorf("%w: %v", faults.ErrExtraction, err))
			return
		}
	}

	doc, err := s.ingest.Ingest(r.Context(), pages, filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, documentResponse(doc))
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.registry.List()
	out := make([]map[string]any, len(docs))
	for i, d := range docs {
		out[i] = documentResponse(&d)
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"userId"`
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: decoding body: %v", faults.ErrValidation, err))
		return
	}

	answer, err := s.answer.Ask(r.Context(), req.UserID, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"answer":      answer.Text,
		"usedContext": answer.UsedContext,
	})
}

func (s *Server) handleAskStream(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("q")
	userID := r.URL.Query().Get("user")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	tokens, err := s.answer.AskStream(r.Context(), userID, question)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for tok := range tokens {
		if tok.Err != nil {
			sendSSE(w, flusher, map[string]any{"error": tok.Err.Error(), "done": true})
			return
		}
		sendSSE(w, flusher, map[string]any{"content": tok.Content, "done": tok.Done})
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string `json:"userId"`
		Message     string `json:"message"`
		ClearMemory bool   `json:"clearMemory"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: decoding body: %v", faults.ErrValidation, err))
		return
	}

	answer, err := s.answer.Chat(r.Context(), req.UserID, req.Message, req.ClearMemory)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reply": answer.Text})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text       string `json:"text"`
		DocumentID string `json:"documentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: decoding body: %v", faults.ErrValidation, err))
		return
	}

	switch {
	case req.DocumentID != "":
		result, err := s.summarize.SummarizeDocument(r.Context(), req.DocumentID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summaryResponse(result))
	case req.Text != "":
		result, err := s.summarize.SummarizeText(r.Context(), req.Text)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summaryResponse(result))
	default:
		writeError(w, fmt.Errorf("%w: either text or documentId is required", faults.ErrValidation))
	}
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	messages, ok := s.answer.Memory(userID)
	if !ok {
		writeError(w, fmt.Errorf("%w: no session for user", faults.ErrNotFound))
		return
	}

	out := make([]map[string]any, len(messages))
	for i, m := range messages {
		out[i] = map[string]any{
			"role":      m.Role,
			"content":   m.Content,
			"createdAt": m.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}

func (s *Server) handleClearMemory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	existed := s.answer.ClearMemory(userID)
	writeJSON(w, http.StatusOK, map[string]any{"cleared": existed})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}
	if s.extractor != nil {
		if h, ok := s.extractor.(interface{ Healthy(context.Context) bool }); ok {
			status["extractor"] = h.Healthy(r.Context())
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func documentResponse(d *entities.Document) map[string]any {
	return map[string]any{
		"id":         d.ID,
		"filename":   d.Filename,
		"chunkCount": d.ChunkCount,
		"sizeBytes":  d.SizeBytes,
		"uploadedAt": d.UploadedAt,
	}
}

func summaryResponse(sm *entities.Summary) map[string]any {
	return map[string]any{
		"summary":        sm.Text,
		"originalLength": sm.OriginalLength,
		"summaryLength":  sm.SummaryLength,
		"type":           sm.Type,
	}
}

func sendSSE(w http.ResponseWriter, flusher http.Flusher, data map[string]any) {
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps core error kinds to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case faults.IsValidation(err):
		status = http.StatusBadRequest
	case faults.IsNotFound(err):
		status = http.StatusNotFound
	case faults.IsUnavailable(err):
		status = http.StatusServiceUnavailable
	case faults.IsExtraction(err):
		status = http.StatusUnprocessableEntity
	case faults.IsGeneration(err):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func isPlainText(filename string) bool {
	switch {
	case len(filename) > 4 && filename[len(filename)-4:] == ".txt":
		return true
	case len(filename) > 3 && filename[len(filename)-3:] == ".md":
		return true
	}
	return false
}

func loggingMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
