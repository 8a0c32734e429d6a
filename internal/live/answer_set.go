package live

import (
	"sync"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/validation"
)

// AnswerSet holds the latest answer of every participant for one interactive item.
// Writers for distinct participants never contend on a shared lock; a resubmission
// replaces the participant's previous tokens.
type AnswerSet struct {
	entries sync.Map // participant key -> []string
}

func NewAnswerSet() *AnswerSet {
	return &AnswerSet{}
}

// Submit validates tokens and overwrites the participant's entry.
func (s *AnswerSet) Submit(p domain.Participant, tokens []string) error {
	if err := validation.ValidateAnswerItems(tokens); err != nil {
		return err
	}
	s.Put(p.Key(), tokens)
	return nil
}

// Put stores tokens under a raw participant key without validation. Used when restoring
// persisted answers.
func (s *AnswerSet) Put(key string, tokens []string) {
	stored := make([]string, len(tokens))
	copy(stored, tokens)
	s.entries.Store(key, stored)
}

// Tally returns a snapshot of every participant's current answer.
func (s *AnswerSet) Tally() map[string][]string {
	out := make(map[string][]string)
	s.entries.Range(func(k, v any) bool {
		tokens := v.([]string)
		cp := make([]string, len(tokens))
		copy(cp, tokens)
		out[k.(string)] = cp
		return true
	})
	return out
}

// Answer returns the participant's current tokens.
func (s *AnswerSet) Answer(p domain.Participant) ([]string, bool) {
	v, ok := s.entries.Load(p.Key())
	if !ok {
		return nil, false
	}
	tokens := v.([]string)
	cp := make([]string, len(tokens))
	copy(cp, tokens)
	return cp, true
}

// Len counts participants that have answered.
func (s *AnswerSet) Len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
