package memory

import (
	"sync"
	"time"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/quiz"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	buffer   int
	mu       sync.RWMutex
	sessions map[quiz.Key]*app.Session
}

// NewSessionStore creates sessions whose subscribers buffer up to buffer updates.
func NewSessionStore(buffer int) *SessionStore {
	return &SessionStore{
		buffer:   buffer,
		sessions: make(map[quiz.Key]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(q *quiz.Quiz) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[q.Key()]; ok {
		return session
	}
	session := app.NewSession(q, s.buffer)
	s.sessions[q.Key()] = session
	return session
}

func (s *SessionStore) Get(key quiz.Key) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[key]
	return session, ok
}

func (s *SessionStore) Delete(key quiz.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}

func (s *SessionStore) EvictIdle(ttl time.Duration) []quiz.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	var evicted []quiz.Key
	for key, session := range s.sessions {
		if session.Idle(ttl) {
			delete(s.sessions, key)
			evicted = append(evicted, key)
		}
	}
	return evicted
}
