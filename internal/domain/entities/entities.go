// Package entities contains core business entities.
// Pure domain objects with no knowledge of storage or external services.
package entities

import "time"

// Document is the catalog record for one ingested document.
// Created exactly once per ingestion and never mutated afterwards.
type Document struct {
	ID         string
	Filename   string
	ChunkCount int
	SizeBytes  int
	UploadedAt time.Time
}

// Chunk is a bounded segment of a document's text, the unit of
// embedding and retrieval. Chunks are immutable once indexed.
type Chunk struct {
	ID         string
	DocumentID string
	Text       string
	Index      int // Position within the document
	Source     string
	Embedding  []float32
	CreatedAt  time.Time
}

// QueryResult is a retrieved chunk with its similarity score.
type QueryResult struct {
	Chunk Chunk
	Score float64
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a user's conversation history.
type Message struct {
	Role      Role
	Content   string
	CreatedAt time.Time
}

// Answer is the result of a grounded generation call.
type Answer struct {
	Text        string
	UsedContext bool
}

// Summary input source types.
const (
	SummaryTypeText     = "text"
	SummaryTypeDocument = "document"
)

// Summary is the result of a single-shot summarization call.
type Summary struct {
	Text           string
	OriginalLength int
	SummaryLength  int
	Type           string
}
