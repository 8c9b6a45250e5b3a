// answer.go drives retrieval-grounded question answering and plain chat.
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

// DefaultUserID is used when the caller does not supply a user id.
const DefaultUserID = "default"

// degradedReply is returned when generation fails or times out during an
// interactive call. Generation failure is recoverable there, not fatal.
const degradedReply = "I'm having trouble generating a response right now. Please try again in a moment."

const systemInstructions = `You are a helpful assistant that answers questions about the user's documents.
Be conversational and concise. Use structured formatting (lists, short paragraphs) where it helps.
When context from documents is provided below, ground your answer in it and mention the source file when relevant.
If the context does not contain the answer, say so instead of inventing one.`

// AnswerUseCase assembles retrieved context and conversation history into
// a single generation request. The same primitive, invoked with an empty
// context set, implements plain chat.
type AnswerUseCase struct {
	embedder ports.EmbeddingService
	index    ports.VectorStore
	llm      ports.GenerationService
	memory   ports.MemoryStore
	locks    *keyedMutex
	inflight chan struct{}

	topK        int
	askTimeout  time.Duration
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// AnswerConfig bounds the orchestrator's behavior.
type AnswerConfig struct {
	TopK        int           // retrieved chunks per question; default 4
	AskTimeout  time.Duration // generation budget for question answering; default 10s
	MaxTokens   int           // token cap per generation; default 1024
	Temperature float64       // default 0.7
	MaxInflight int           // concurrent generation calls; default 4
}

// NewAnswerUseCase creates an AnswerUseCase with injected dependencies.
func NewAnswerUseCase(
	embedder ports.EmbeddingService,
	index ports.VectorStore,
	llm ports.GenerationService,
	memory ports.MemoryStore,
	cfg AnswerConfig,
	logger *slog.Logger,
) *AnswerUseCase {
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	if cfg.AskTimeout <= 0 {
		cfg.AskTimeout = 10 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxInflight <= 0 {
		cfg.MaxInflight = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerUseCase{
		embedder:    embedder,
		index:       index,
		llm:         llm,
		memory:      memory,
		locks:       newKeyedMutex(),
		inflight:    make(chan struct{}, cfg.MaxInflight),
		topK:        cfg.TopK,
		askTimeout:  cfg.AskTimeout,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Ask answers a question grounded in the indexed documents. Retrieval
// failures are absorbed: the question is still answered with no context.
func (uc *AnswerUseCase) Ask(ctx context.Context, userID, question string) (*entities.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", faults.ErrValidation)
	}
	chunks := uc.retrieve(ctx, question)
	return uc.Answer(ctx, userID, question, chunks, ports.Options{
		Temperature: uc.temperature,
		MaxTokens:   uc.maxTokens,
		Timeout:     uc.askTimeout,
	})
}

// Chat answers without retrieval. When clearMemory is set, the user's
// session is dropped before the turn runs.
func (uc *AnswerUseCase) Chat(ctx context.Context, userID, message string, clearMemory bool) (*entities.Answer, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message must not be empty", faults.ErrValidation)
	}
	if clearMemory && uc.memory != nil {
		uc.memory.Clear(normalizeUser(userID))
	}
	return uc.Answer(ctx, userID, message, nil, ports.Options{
		Temperature: uc.temperature,
		MaxTokens:   uc.maxTokens,
	})
}

// Answer runs one synthesis call: it reads the user's history, invokes
// the generation collaborator with the assembled prompt, and on success
// appends the user turn and the assistant turn contiguously.
func (uc *AnswerUseCase) Answer(ctx context.Context, userID, query string, contextChunks []entities.QueryResult, opts ports.Options) (*entities.Answer, error) {
	if uc.llm == nil || uc.memory == nil {
		return nil, fmt.Errorf("%w: generation service not initialized", faults.ErrUnavailable)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", faults.ErrValidation)
	}
	userID = normalizeUser(userID)

	unlock := uc.locks.lock(userID)
	defer unlock()

	history := uc.memory.GetOrCreate(userID)
	prompt := buildPrompt(query, contextChunks)
	usedContext := len(contextChunks) > 0

	if err := uc.acquire(ctx); err != nil {
		return nil, err
	}
	text, err := uc.llm.Complete(ctx, prompt, history, opts)
	uc.release()
	if err != nil {
		uc.logger.Warn("generation failed, returning degraded reply",
			"user", userID, "error", err)
		return &entities.Answer{Text: degradedReply, UsedContext: usedContext}, nil
	}

	uc.memory.Append(userID, entities.RoleUser, query)
	uc.memory.Append(userID, entities.RoleAssistant, text)

	return &entities.Answer{Text: text, UsedContext: usedContext}, nil
}

// AskStream answers a question as a token stream. The exchange is
// recorded in memory once the stream completes without error.
func (uc *AnswerUseCase) AskStream(ctx context.Context, userID, question string) (<-chan ports.StreamToken, error) {
	if uc.llm == nil || uc.memory == nil {
		return nil, fmt.Errorf("%w: generation service not initialized", faults.ErrUnavailable)
	}
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", faults.ErrValidation)
	}
	userID = normalizeUser(userID)

	chunks := uc.retrieve(ctx, question)
	history := uc.memory.GetOrCreate(userID)
	prompt := buildPrompt(question, chunks)

	src, err := uc.llm.CompleteStream(ctx, prompt, history, ports.Options{
		Temperature: uc.temperature,
		MaxTokens:   uc.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("starting generation stream: %w", err)
	}

	out := make(chan ports.StreamToken, 100)
	go func() {
		defer close(out)
		var full strings.Builder
		failed := false
		for tok := range src {
			if tok.Err != nil {
				failed = true
			}
			full.WriteString(tok.Content)
			out <- tok
		}
		if failed || full.Len() == 0 {
			return
		}
		unlock := uc.locks.lock(userID)
		uc.memory.Append(userID, entities.RoleUser, question)
		uc.memory.Append(userID, entities.RoleAssistant, full.String())
		unlock()
	}()
	return out, nil
}

// Memory returns the user's history and whether a session exists.
func (uc *AnswerUseCase) Memory(userID string) ([]entities.Message, bool) {
	return uc.memory.History(normalizeUser(userID))
}

// ClearMemory drops the user's session, reporting whether one existed.
func (uc *AnswerUseCase) ClearMemory(userID string) bool {
	return uc.memory.Clear(normalizeUser(userID))
}

// retrieve embeds the query and ranks indexed chunks. Failures here are
// never propagated: question answering must still run with no context.
func (uc *AnswerUseCase) retrieve(ctx context.Context, query string) []entities.QueryResult {
	if uc.embedder == nil || uc.index == nil {
		return nil
	}
	embedding, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		uc.logger.Warn("query embedding failed, answering without context", "error", err)
		return nil
	}
	results, err := uc.index.Search(ctx, embedding, uc.topK)
	if err != nil {
		uc.logger.Warn("retrieval failed, answering without context", "error", err)
		return nil
	}
	return results
}

func (uc *AnswerUseCase) acquire(ctx context.Context) error {
	select {
	case uc.inflight <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (uc *AnswerUseCase) release() {
	<-uc.inflight
}

// buildPrompt assembles system instructions, labelled context blocks,
// and the query into one generation request.
func buildPrompt(query string, contextChunks []entities.QueryResult) string {
	var sb strings.Builder
	sb.WriteString(systemInstructions)
	if len(contextChunks) > 0 {
		sb.WriteString("\n\nContext:\n")
		for _, r := range contextChunks {
			fmt.Fprintf(&sb, "[Source: %s]\n%s\n\n", r.Chunk.Source, r.Chunk.Text)
		}
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}

func normalizeUser(userID string) string {
	if strings.TrimSpace(userID) == "" {
		return DefaultUserID
	}
	return userID
}
