package app

import (
	"sync"
	"sync/atomic"
	"time"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/quiz"
)

// Session is the in-process home of one quiz aggregate while it is being edited or played live.
// Every request for the same key resolves to the same Session, so the aggregate's lock is the
// single writer discipline for that key.
type Session struct {
	key    quiz.Key
	now    func() time.Time
	buffer int

	// commit serializes mutate-then-save sequences so snapshots reach the store in order.
	commit sync.Mutex
	// lastActive is the unix nano time of the last command, answer or subscription.
	lastActive atomic.Int64

	mu          sync.RWMutex
	quiz        *quiz.Quiz
	subscribers map[chan domain.TallyUpdate]struct{}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(q *quiz.Quiz, buffer int) *Session {
	return NewSessionWithClock(q, buffer, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(q *quiz.Quiz, buffer int, now func() time.Time) *Session {
	if buffer <= 0 {
		buffer = 8
	}
	s := &Session{
		key:         q.Key(),
		now:         now,
		buffer:      buffer,
		quiz:        q,
		subscribers: make(map[chan domain.TallyUpdate]struct{}),
	}
	s.touch()
	return s
}

func (s *Session) touch() { s.lastActive.Store(s.now().UnixNano()) }

// Idle reports whether the session has no subscribers, no commit in flight and no activity for ttl.
// Session stores evict idle sessions; the aggregate is reloaded from the quiz store on next use.
func (s *Session) Idle(ttl time.Duration) bool {
	if !s.commit.TryLock() {
		return false
	}
	defer s.commit.Unlock()
	if s.Subscribers() > 0 {
		return false
	}
	return s.now().Sub(time.Unix(0, s.lastActive.Load())) >= ttl
}

func (s *Session) Key() quiz.Key { return s.key }

// Quiz returns the current aggregate.
func (s *Session) Quiz() *quiz.Quiz {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quiz
}

func (s *Session) replace(q *quiz.Quiz) {
	s.mu.Lock()
	s.quiz = q
	s.mu.Unlock()
}

// Subscribers counts open tally subscriptions.
func (s *Session) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

func (s *Session) subscribe() (<-chan domain.TallyUpdate, func()) {
	ch := make(chan domain.TallyUpdate, s.buffer)
	s.touch()

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	q := s.quiz
	s.mu.Unlock()

	// initial snapshot: one update per interactive item that already has answers
	for _, item := range q.Items() {
		a, ok := item.(quiz.Answerable)
		if !ok {
			continue
		}
		tally := a.AllAnswers()
		if len(tally) == 0 {
			continue
		}
		s.offer(ch, s.update(item.Position(), tally))
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, ch)
			close(ch)
			s.mu.Unlock()
			s.touch()
		})
	}
	return ch, cancel
}

// broadcast only takes the read lock so participants answering different items, or the same
// item, never queue behind each other here.
func (s *Session) broadcast(position int, tally map[string][]string) domain.TallyUpdate {
	update := s.update(position, tally)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers {
		s.offer(ch, update)
	}
	return update
}

func (s *Session) offer(ch chan domain.TallyUpdate, update domain.TallyUpdate) {
	select {
	case ch <- update:
		return
	default:
	}
	// drop the oldest queued update so slow subscribers see the latest tally
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- update:
	default:
	}
}

func (s *Session) update(position int, tally map[string][]string) domain.TallyUpdate {
	return domain.TallyUpdate{
		QuizKey:   string(s.key),
		Position:  position,
		Answers:   tally,
		UpdatedAt: s.now(),
	}
}
