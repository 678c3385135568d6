package memory

import (
	"context"
	"sort"
	"sync"

	"interview-coach-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Records are copied on the way in and out so callers never share state with the store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	byUser   map[string][]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*domain.Session),
		byUser:   make(map[string][]string),
	}
}

// Put replaces the stored record if its version still matches s.Version.
func (s *SessionStore) Put(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[session.ID]
	switch {
	case !ok && session.Version != 0:
		return domain.ErrSessionNotFound
	case ok && current.Version != session.Version:
		return domain.ErrVersionConflict
	}

	stored := session.Clone()
	stored.Version = session.Version + 1
	s.sessions[session.ID] = stored
	if !ok {
		s.byUser[session.UserID] = append(s.byUser[session.UserID], session.ID)
	}
	session.Version = stored.Version
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// ListByUser returns the user's sessions ordered by creation time.
func (s *SessionStore) ListByUser(_ context.Context, userID string) ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byUser[userID]
	out := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.sessions[id].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
