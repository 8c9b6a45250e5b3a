// summarize.go produces single-shot summaries over raw text or a
// registered document's full content. No conversation memory involved.
package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docqa/internal/domain/entities"
	"docqa/internal/domain/faults"
	"docqa/internal/domain/ports"
)

// DefaultSummaryMaxInput caps the text handed to the generator, in
// characters. The truncation is a deliberate lossy policy bounding
// latency and cost; full-document recursive summarization is out of scope.
const DefaultSummaryMaxInput = 3000

const summaryInstructions = `Summarize the following text. Keep the summary short, factual, and self-contained.

Text:
`

// SummarizeUseCase is the stateless synthesis variant backing summaries.
type SummarizeUseCase struct {
	registry ports.DocumentRegistry
	index    ports.VectorStore
	llm      ports.GenerationService
	maxInput int
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSummarizeUseCase creates a SummarizeUseCase with injected dependencies.
func NewSummarizeUseCase(
	registry ports.DocumentRegistry,
	index ports.VectorStore,
	llm ports.GenerationService,
	maxInput int,
	timeout time.Duration,
	logger *slog.Logger,
) *SummarizeUseCase {
	if maxInput <= 0 {
		maxInput = DefaultSummaryMaxInput
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SummarizeUseCase{
		registry: registry,
		index:    index,
		llm:      llm,
		maxInput: maxInput,
		timeout:  timeout,
		logger:   logger,
	}
}

// SummarizeText summarizes literal text.
func (uc *SummarizeUseCase) SummarizeText(ctx context.Context, text string) (*entities.Summary, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text must not be empty", faults.ErrValidation)
	}
	return uc.summarize(ctx, text, entities.SummaryTypeText)
}

// SummarizeDocument summarizes a registered document by concatenating
// its indexed chunks in sequence order.
func (uc *SummarizeUseCase) SummarizeDocument(ctx context.Context, documentID string) (*entities.Summary, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, fmt.Errorf("%w: document id must not be empty", faults.ErrValidation)
	}
	if uc.registry == nil || uc.index == nil {
		return nil, fmt.Errorf("%w: document store not initialized", faults.ErrUnavailable)
	}

	doc, ok := uc.registry.Get(documentID)
	if !ok {
		return nil, fmt.Errorf("%w: document %q", faults.ErrNotFound, documentID)
	}

	chunks, err := uc.index.ByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("reading document chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document %q has no indexed content", faults.ErrNotFound, documentID)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return uc.summarize(ctx, strings.Join(texts, "\n"), entities.SummaryTypeDocument)
}

// summarize runs the single generation call. Unlike interactive answers
// there is no degraded fallback: failure here is a hard error.
func (uc *SummarizeUseCase) summarize(ctx context.Context, text, sourceType string) (*entities.Summary, error) {
	if uc.llm == nil {
		return nil, fmt.Errorf("%w: generation service not initialized", faults.ErrUnavailable)
	}

	originalLen := len(text)
	if len(text) > uc.maxInput {
		text = text[:uc.maxInput]
	}

	summary, err := uc.llm.Complete(ctx, summaryInstructions+text, nil, ports.Options{
		Temperature: 0.3,
		MaxTokens:   512,
		Timeout:     uc.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", faults.ErrGeneration, err)
	}

	uc.logger.Info("summary generated",
		"type", sourceType,
		"original_length", originalLen,
		"summary_length", len(summary),
	)
	return &entities.Summary{
		Text:           summary,
		OriginalLength: originalLen,
		SummaryLength:  len(summary),
		Type:           sourceType,
	}, nil
}
