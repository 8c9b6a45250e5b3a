// sqlite.go is the SQLite-backed index variant. It keeps the chunk index
// on disk so a watch-folder corpus survives restarts; similarity is still
// computed brute force in Go over all rows.
package vectordb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"docqa/internal/domain/entities"
)

// SQLiteIndex implements ports.VectorStore on a local SQLite file.
type SQLiteIndex struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteIndex opens (or creates) the index database under dataDir.
func NewSQLiteIndex(dataDir string) (*SQLiteIndex, error) {
	if dataDir == "" {
		dataDir = "./data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataDir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteIndex{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteIndex) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		rowid_order INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		document_id TEXT NOT NULL,
		text TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		source TEXT NOT NULL,
		embedding BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Store writes all chunks in one transaction: either every chunk becomes
// visible or none do.
func (s *SQLiteIndex) Store(ctx context.Context, chunks []entities.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, text, chunk_index, source, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingJSON, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return fmt.Errorf("encoding embedding: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			chunk.ID, chunk.DocumentID, chunk.Text, chunk.Index, chunk.Source, embeddingJSON,
		); err != nil {
			return fmt.Errorf("inserting chunk: %w", err)
		}
	}

	return tx.Commit()
}

// Search loads all chunks and ranks them by cosine similarity in Go.
// Rows come back in insertion order, which the stable sort preserves
// for equal scores.
func (s *SQLiteIndex) Search(ctx context.Context, embedding []float32, topK int) ([]entities.QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, text, chunk_index, source, embedding, created_at
		FROM chunks ORDER BY rowid_order
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []entities.QueryResult
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			continue // corrupted embedding row
		}
		results = append(results, entities.QueryResult{
			Chunk: *chunk,
			Score: cosineSimilarity(embedding, chunk.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading chunks: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// ByDocument returns a document's chunks in sequence order.
func (s *SQLiteIndex) ByDocument(ctx context.Context, documentID string) ([]entities.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, text, chunk_index, source, embedding, created_at
		FROM chunks WHERE document_id = ? ORDER BY chunk_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying document chunks: %w", err)
	}
	defer rows.Close()

	var chunks []entities.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			continue
		}
		chunks = append(chunks, *chunk)
	}
	return chunks, rows.Err()
}

// Count reports the number of indexed chunks.
func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

func scanChunk(rows *sql.Rows) (*entities.Chunk, error) {
	var chunk entities.Chunk
	var embeddingJSON []byte
	if err := rows.Scan(
		&chunk.ID, &chunk.DocumentID, &chunk.Text, &chunk.Index,
		&chunk.Source, &embeddingJSON, &chunk.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scanning row: %w", err)
	}
	if err := json.Unmarshal(embeddingJSON, &chunk.Embedding); err != nil {
		return nil, nil
	}
	return &chunk, nil
}
