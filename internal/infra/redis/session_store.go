package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/quiz"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Aggregates still live in a local map; the lock inside each aggregate is what
//     serializes writers, and that only works within one process.
//   - Redis marks which quizzes are live on some instance, with the owner as value.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	buffer   int
	mu       sync.RWMutex
	sessions map[quiz.Key]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration, buffer int) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(q.Key()), q.Owner().Key(), s.ttl).Err()
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
	if _, ok := s.sessions[key]; !ok {
		return
	}
	delete(s.sessions, key)
	_ = s.client.Del(context.Background(), s.key(key)).Err()
}

func (s *SessionStore) key(key quiz.Key) string {
	return "quiz:session:" + string(key)
}

// EvictIdle drops idle sessions from this instance and clears their liveness markers.
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
	if len(evicted) == 0 {
		return nil
	}
	markers := make([]string, 0, len(evicted))
	for _, key := range evicted {
		markers = append(markers, s.key(key))
	}
	// best-effort, like the marker itself
	_ = s.client.Del(context.Background(), markers...).Err()
	return evicted
}
