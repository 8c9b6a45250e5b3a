// Package session provides the in-memory conversational memory store.
package session

import (
	"sync"
	"time"

	"docqa/internal/domain/entities"
)

// DefaultMaxMessages bounds a session's history so long-lived users
// cannot grow it without limit. Zero disables eviction.
const DefaultMaxMessages = 200

// Store implements ports.MemoryStore. Sessions are created lazily on
// first interaction and live until explicitly cleared.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*session
	maxMessages int
}

type session struct {
	mu       sync.Mutex
	messages []entities.Message
}

// New creates a memory store. maxMessages < 0 selects the default cap;
// 0 disables eviction entirely.
func New(maxMessages int) *Store {
	if maxMessages < 0 {
		maxMessages = DefaultMaxMessages
	}
	return &Store{
		sessions:    make(map[string]*session),
		maxMessages: maxMessages,
	}
}

// GetOrCreate returns a copy of the user's history, creating an empty
// session on first use.
func (s *Store) GetOrCreate(userID string) []entities.Message {
	sess := s.getOrCreate(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return copyMessages(sess.messages)
}

// History returns a copy of the user's history and whether a session
// exists. Unlike GetOrCreate it never creates one.
func (s *Store) History(userID string) ([]entities.Message, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return copyMessages(sess.messages), true
}

// Append adds one message to the end of the user's session. When the
// configured cap is exceeded the oldest messages are evicted in pairs,
// keeping user and assistant turns aligned.
func (s *Store) Append(userID string, role entities.Role, content string) {
	sess := s.getOrCreate(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.messages = append(sess.messages, entities.Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
	if s.maxMessages > 0 && len(sess.messages) > s.maxMessages {
		drop := len(sess.messages) - s.maxMessages
		if drop%2 != 0 {
			drop++
		}
		if drop > len(sess.messages) {
			drop = len(sess.messages)
		}
		sess.messages = append([]entities.Message(nil), sess.messages[drop:]...)
	}
}

// Clear removes the session and reports whether one existed.
func (s *Store) Clear(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	return ok
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// getOrCreate uses a read-lock fast path and double-checks under the
// write lock, since most calls hit an existing session.
func (s *Store) getOrCreate(userID string) *session {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[userID]; ok {
		return sess
	}
	sess = &session{}
	s.sessions[userID] = sess
	return sess
}

func copyMessages(msgs []entities.Message) []entities.Message {
	out := make([]entities.Message, len(msgs))
	copy(out, msgs)
	return out
}
