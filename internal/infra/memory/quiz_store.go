package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/quiz"
)

// QuizStore keeps serialized quiz documents in a map. Loads decode a fresh aggregate,
// mirroring what a document store would return.
type QuizStore struct {
	mu   sync.RWMutex
	docs map[quiz.Key]storedQuiz
}

type storedQuiz struct {
	owner domain.Participant
	data  []byte
}

func NewQuizStore() *QuizStore {
	return &QuizStore{docs: make(map[quiz.Key]storedQuiz)}
}

func (s *QuizStore) LoadQuiz(_ context.Context, key quiz.Key) (*quiz.Quiz, error) {
	s.mu.RLock()
	doc, ok := s.docs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.Errorf(domain.KindNotFound, "quiz %s not found", key)
	}
	return quiz.Decode(doc.data)
}

func (s *QuizStore) SaveQuiz(_ context.Context, q *quiz.Quiz) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[q.Key()] = storedQuiz{owner: q.Owner(), data: data}
	s.mu.Unlock()
	return nil
}

func (s *QuizStore) DeleteQuiz(_ context.Context, key quiz.Key) error {
	s.mu.Lock()
	delete(s.docs, key)
	s.mu.Unlock()
	return nil
}

func (s *QuizStore) ListQuizzes(_ context.Context, owner domain.Participant) ([]*quiz.Quiz, error) {
	s.mu.RLock()
	var raw [][]byte
	for _, doc := range s.docs {
		if doc.owner == owner {
			raw = append(raw, doc.data)
		}
	}
	s.mu.RUnlock()

	out := make([]*quiz.Quiz, 0, len(raw))
	for _, data := range raw {
		q, err := quiz.Decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}
