// Package session keeps conversation state: the bounded turn history, the
// pending action and the cached financial snapshot of every session.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/Veraticus/celengan/internal/common"
	"github.com/Veraticus/celengan/internal/model"
)

// Store persists conversation sessions. Callers serialize access to one
// session with a Locker; stores only guarantee their own consistency.
type Store interface {
	Create(ctx context.Context, sess *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, sess *model.Session) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

// MemoryStore keeps sessions in memory. Sessions are deep-copied on the way
// in and out so callers never share state with the store.
type MemoryStore struct {
	sessions map[string]*model.Session
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*model.Session)}
}

// Create adds a new session.
func (s *MemoryStore) Create(ctx context.Context, sess *model.Session) error {
	if err := validate(ctx, sess); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; exists {
		return fmt.Errorf("%w: %s", common.ErrSessionExists, sess.ID)
	}
	s.sessions[sess.ID] = deepCopy(sess)
	return nil
}

// Get returns a copy of the session.
func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", common.ErrSessionNotFound, id)
	}
	return deepCopy(sess), nil
}

// Save replaces an existing session.
func (s *MemoryStore) Save(ctx context.Context, sess *model.Session) error {
	if err := validate(ctx, sess); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; !exists {
		return fmt.Errorf("%w: %s", common.ErrSessionNotFound, sess.ID)
	}
	s.sessions[sess.ID] = deepCopy(sess)
	return nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return fmt.Errorf("%w: %s", common.ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

// List returns every session id in lexical order.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func validate(ctx context.Context, sess *model.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("session cannot be nil")
	}
	if sess.ID == "" {
		return fmt.Errorf("session ID is required")
	}
	return nil
}

// deepCopy round-trips through JSON; every session field is serializable.
func deepCopy(sess *model.Session) *model.Session {
	data, err := json.Marshal(sess)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal session for deep copy: %v", err))
	}

	var out model.Session
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("failed to unmarshal session for deep copy: %v", err))
	}
	return &out
}
