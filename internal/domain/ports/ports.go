// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions, not concrete implementations;
// adapters implement them.
package ports

import (
	"context"
	"time"

	"docqa/internal/domain/entities"
)

// EmbeddingService generates vector embeddings for text.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Options bounds a single generation call.
type Options struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // zero means no extra deadline
}

// GenerationService produces text from a language model. Conversation
// history is passed as prior turns, never re-embedded in the prompt.
type GenerationService interface {
	Complete(ctx context.Context, prompt string, history []entities.Message, opts Options) (string, error)

	// CompleteStream produces a token-by-token response for real-time UI.
	CompleteStream(ctx context.Context, prompt string, history []entities.Message, opts Options) (<-chan StreamToken, error)
}

// StreamToken is a single token in a streaming generation response.
type StreamToken struct {
	Content string
	Done    bool
	Err     error
}

// TextExtractor pulls page texts out of binary document formats.
// A zero-page result is valid; ingestion decides whether that is an error.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) ([]string, error)
}

// VectorStore persists chunk embeddings and answers similarity queries.
type VectorStore interface {
	// Store saves chunks with their embeddings. The write is atomic from
	// the caller's perspective: partial index state is never observable.
	Store(ctx context.Context, chunks []entities.Chunk) error

	// Search returns up to topK chunks ranked by similarity, descending.
	// Ties keep insertion order. An empty index yields an empty result.
	Search(ctx context.Context, embedding []float32, topK int) ([]entities.QueryResult, error)

	// ByDocument returns a document's chunks in sequence order.
	ByDocument(ctx context.Context, documentID string) ([]entities.Chunk, error)

	// Count reports the number of indexed chunks.
	Count(ctx context.Context) (int, error)
}

// DocumentRegistry catalogs ingested documents in insertion order.
type DocumentRegistry interface {
	Register(doc entities.Document)
	Get(id string) (entities.Document, bool)
	List() []entities.Document
}

// MemoryStore holds per-user conversation histories. Individual calls
// are safe for concurrent use; callers needing a consistent
// read-then-append sequence serialize per user id themselves.
type MemoryStore interface {
	// GetOrCreate returns the user's history, creating an empty session
	// on first use.
	GetOrCreate(userID string) []entities.Message

	// History returns the user's history and whether a session exists.
	History(userID string) ([]entities.Message, bool)

	// Append adds one message to the end of the user's session.
	Append(userID string, role entities.Role, content string)

	// Clear removes the session and reports whether one existed.
	Clear(userID string) bool
}

// LoadedFile is a document read from the filesystem, split into pages.
type LoadedFile struct {
	Filename string
	Pages    []string
	Size     int
}

// DocumentLoader reads documents of particular formats from disk.
type DocumentLoader interface {
	Load(ctx context.Context, path string) (*LoadedFile, error)
	SupportedExtensions() []string
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
