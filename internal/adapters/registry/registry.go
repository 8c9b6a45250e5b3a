// Package registry provides the in-memory document catalog.
package registry

import (
	"sync"

	"docqa/internal/domain/entities"
)

// Memory implements ports.DocumentRegistry. Records are kept in
// insertion order for listing; there is no update or delete, so
// documents accumulate for the process lifetime.
type Memory struct {
	mu    sync.RWMutex
	byID  map[string]entities.Document
	order []string
}

// NewMemory creates an empty document registry.
func NewMemory() *Memory {
	return &Memory{byID: make(map[string]entities.Document)}
}

// Register adds a document record. Re-registering an id overwrites the
// record but keeps its original list position.
func (r *Memory) Register(doc entities.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[doc.ID]; !exists {
		r.order = append(r.order, doc.ID)
	}
	r.byID[doc.ID] = doc
}

// Get looks up a document by id.
func (r *Memory) Get(id string) (entities.Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.byID[id]
	return doc, ok
}

// List returns all documents in insertion order.
func (r *Memory) List() []entities.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]entities.Document, 0, len(r.order))
	for _, id := range r.order {
		docs = append(docs, r.byID[id])
	}
	return docs
}
