// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces only.
package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"docqa/internal/domain/entities"
	"docqa/internal/domain/faults"
	"docqa/internal/domain/ports"
)

// Default chunking parameters, in characters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// IngestUseCase turns extracted page texts into indexed, registered chunks.
type IngestUseCase struct {
	embedder ports.EmbeddingService
	index    ports.VectorStore
	registry ports.DocumentRegistry
	size     int
	overlap  int
	logger   *slog.Logger
}

// NewIngestUseCase creates an IngestUseCase with injected dependencies.
func NewIngestUseCase(
	embedder ports.EmbeddingService,
	index ports.VectorStore,
	registry ports.DocumentRegistry,
	chunkSize, chunkOverlap int,
	logger *slog.Logger,
) *IngestUseCase {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestUseCase{
		embedder: embedder,
		index:    index,
		registry: registry,
		size:     chunkSize,
		overlap:  chunkOverlap,
		logger:   logger,
	}
}

// Ingest chunks the page texts, embeds every chunk, and only then writes
// the index and the registry, so a failed call leaves no partial state.
// Ingesting identical content twice produces two distinct documents.
func (uc *IngestUseCase) Ingest(ctx context.Context, pages []string, filename string) (*entities.Document, error) {
	if uc.embedder == nil || uc.index == nil || uc.registry == nil {
		return nil, fmt.Errorf("%w: ingestion pipeline not initialized", faults.ErrUnavailable)
	}

	text := joinPages(pages)
	if text == "" {
		return nil, fmt.Errorf("%w: document %q has no extractable text", faults.ErrExtraction, filename)
	}

	docID := uuid.New().String()
	now := time.Now()

	parts := uc.splitText(text)
	chunks := make([]entities.Chunk, len(parts))
	texts := make([]string, len(parts))
	for i, part := range parts {
		chunks[i] = entities.Chunk{
			ID:         uuid.New().String(),
			DocumentID: docID,
			Text:       part,
			Index:      i,
			Source:     filename,
			CreatedAt:  now,
		}
		texts[i] = part
	}

	embeddings, err := uc.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := uc.index.Store(ctx, chunks); err != nil {
		return nil, fmt.Errorf("storing chunks: %w", err)
	}

	doc := entities.Document{
		ID:         docID,
		Filename:   filename,
		ChunkCount: len(chunks),
		SizeBytes:  len(text),
		UploadedAt: now,
	}
	uc.registry.Register(doc)

	uc.logger.Info("document ingested",
		"id", docID,
		"filename", filename,
		"chunks", len(chunks),
		"bytes", len(text),
	)
	return &doc, nil
}

// IngestText ingests raw text as a single-page document.
func (uc *IngestUseCase) IngestText(ctx context.Context, text, filename string) (*entities.Document, error) {
	return uc.Ingest(ctx, []string{text}, filename)
}

// splitText cuts text into segments of at most uc.size characters, with
// consecutive segments sharing uc.overlap characters. The final segment
// may be shorter; order is preserved.
func (uc *IngestUseCase) splitText(text string) []string {
	if len(text) <= uc.size {
		return []string{text}
	}

	stride := uc.size - uc.overlap
	var parts []string
	for start := 0; start < len(text); start += stride {
		end := start + uc.size
		if end > len(text) {
			end = len(text)
		}
		parts = append(parts, text[start:end])
		if end == len(text) {
			break
		}
	}
	return parts
}

func joinPages(pages []string) string {
	var nonEmpty []string
	for _, p := range pages {
		if t := strings.TrimSpace(p); t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}
