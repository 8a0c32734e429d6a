package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"live-quiz-service/internal/catalog"
	"live-quiz-service/internal/config"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/metrics"
	"live-quiz-service/internal/quiz"
	"live-quiz-service/internal/validation"
)

// QuizStore persists quiz documents (Postgres, Redis cache, in-memory).
type QuizStore interface {
	LoadQuiz(ctx context.Context, key quiz.Key) (*quiz.Quiz, error)
	SaveQuiz(ctx context.Context, q *quiz.Quiz) error
	DeleteQuiz(ctx context.Context, key quiz.Key) error
	ListQuizzes(ctx context.Context, owner domain.Participant) ([]*quiz.Quiz, error)
}

// SessionRepository keeps the live aggregates of this process.
type SessionRepository interface {
	GetOrCreate(q *quiz.Quiz) *Session
	Get(key quiz.Key) (*Session, bool)
	Delete(key quiz.Key)
	// EvictIdle drops the sessions for which Session.Idle(ttl) holds and returns their keys.
	EvictIdle(ttl time.Duration) []quiz.Key
}

// AnswerMirror copies accepted live answers to storage shared between instances.
type AnswerMirror interface {
	MirrorAnswer(ctx context.Context, key quiz.Key, position int, p domain.Participant, tokens []string) error
	Answers(ctx context.Context, key quiz.Key, position int) (map[string][]string, error)
	DropItem(ctx context.Context, key quiz.Key, position int) error
	DropQuiz(ctx context.Context, key quiz.Key, positions []int) error
}

// QuizInput carries the header fields of a quiz. Items replaces the whole item collection when non-nil.
type QuizInput struct {
	Name       string
	Categories []string
	Items      []quiz.Item
}

// Tally is the current state of one interactive item.
type Tally struct {
	Position int                 `json:"position"`
	Answers  map[string][]string `json:"answers"`
	Grade    quiz.Grade          `json:"grade"`
}

// QuizService contains the quiz command and query use cases.
type QuizService struct {
	gate     *validation.Gate
	store    QuizStore
	sessions SessionRepository
	mirror   AnswerMirror
	metrics  *metrics.Collectors
	sf       singleflight.Group
}

type Option func(*QuizService)

func WithAnswerMirror(m AnswerMirror) Option {
	return func(s *QuizService) { s.mirror = m }
}

func WithMetrics(c *metrics.Collectors) Option {
	return func(s *QuizService) { s.metrics = c }
}

func NewQuizService(gate *validation.Gate, store QuizStore, sessions SessionRepository, opts ...Option) *QuizService {
	s := &QuizService{gate: gate, store: store, sessions: sessions}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}
	return s
}

// Catalog exposes the operation catalog gating this service.
func (s *QuizService) Catalog() *catalog.Catalog { return s.gate.Catalog() }

// CreateQuiz builds an empty quiz owned by the caller.
func (s *QuizService) CreateQuiz(ctx context.Context, caller domain.Caller, in QuizInput) (*quiz.Quiz, error) {
	if err := s.check(caller, catalog.CommandPostNewQuiz); err != nil {
		return nil, err
	}
	if err := validation.ValidateParticipant(caller.Participant); err != nil {
		return nil, err
	}
	q, err := quiz.NewBuilder().Owner(caller.Participant).Name(in.Name).Categories(in.Categories...).Build()
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveQuiz(ctx, q); err != nil {
		return nil, err
	}
	s.sessions.GetOrCreate(q)
	config.WithContext(ctx).WithFields(logrus.Fields{"quiz_key": q.Key(), "owner": caller.Key()}).Info("quiz created")
	return q, nil
}

// ReplaceQuiz rebuilds the aggregate with a new header and, when given, a new item collection.
func (s *QuizService) ReplaceQuiz(ctx context.Context, caller domain.Caller, key string, in QuizInput) (*quiz.Quiz, error) {
	session, err := s.owned(ctx, caller, catalog.CommandPutQuiz, key)
	if err != nil {
		return nil, err
	}
	session.commit.Lock()
	defer session.commit.Unlock()

	b := quiz.Rebuild(session.Quiz()).Name(in.Name).Categories(in.Categories...)
	if in.Items != nil {
		b.ClearItems()
		for _, item := range in.Items {
			b.Item(item.Position(), item)
		}
	}
	next, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveQuiz(ctx, next); err != nil {
		return nil, err
	}
	session.replace(next)
	config.WithContext(ctx).WithField("quiz_key", key).Info("quiz replaced")
	return next, nil
}

// DeleteQuiz removes the quiz from the store and drops its live session.
func (s *QuizService) DeleteQuiz(ctx context.Context, caller domain.Caller, key string) error {
	session, err := s.owned(ctx, caller, catalog.CommandDeleteQuiz, key)
	if err != nil {
		return err
	}
	session.commit.Lock()
	defer session.commit.Unlock()

	if err := s.store.DeleteQuiz(ctx, session.Key()); err != nil {
		return err
	}
	s.sessions.Delete(session.Key())
	if s.mirror != nil {
		var positions []int
		for _, item := range session.Quiz().Items() {
			positions = append(positions, item.Position())
		}
		if err := s.mirror.DropQuiz(ctx, session.Key(), positions); err != nil {
			return fmt.Errorf("drop mirrored answers: %w", err)
		}
	}
	config.WithContext(ctx).WithField("quiz_key", key).Info("quiz deleted")
	return nil
}

// AddItem places item at a free position.
func (s *QuizService) AddItem(ctx context.Context, caller domain.Caller, key string, position *int, item quiz.Item) error {
	return s.mutateItem(ctx, caller, catalog.CommandPostNewQuizItem, key, position, func(q *quiz.Quiz, p int) (func(), error) {
		if err := q.AddItem(p, item); err != nil {
			return nil, err
		}
		return func() { q.DeleteItem(p) }, nil
	})
}

// UpdateItem replaces the item at position, creating it when the position is free.
func (s *QuizService) UpdateItem(ctx context.Context, caller domain.Caller, key string, position *int, item quiz.Item) error {
	return s.mutateItem(ctx, caller, catalog.CommandPutQuizItem, key, position, func(q *quiz.Quiz, p int) (func(), error) {
		previous, existed := q.Item(p)
		if err := q.UpdateItem(p, item); err != nil {
			return nil, err
		}
		return func() {
			if existed {
				_ = q.UpdateItem(p, previous)
				return
			}
			q.DeleteItem(p)
		}, nil
	})
}

// DeleteItem removes the item at position; absent positions are not an error.
func (s *QuizService) DeleteItem(ctx context.Context, caller domain.Caller, key string, position *int) error {
	err := s.mutateItem(ctx, caller, catalog.CommandDeleteQuizItem, key, position, func(q *quiz.Quiz, p int) (func(), error) {
		previous, existed := q.Item(p)
		q.DeleteItem(p)
		return func() {
			if existed {
				_ = q.UpdateItem(p, previous)
			}
		}, nil
	})
	if err != nil || s.mirror == nil {
		return err
	}
	if err := s.mirror.DropItem(ctx, quiz.Key(key), *position); err != nil {
		return fmt.Errorf("drop mirrored answers: %w", err)
	}
	return nil
}

// mutateItem runs one structural change and persists it, undoing the change if the save fails.
func (s *QuizService) mutateItem(ctx context.Context, caller domain.Caller, op, key string, position *int, apply func(*quiz.Quiz, int) (func(), error)) error {
	session, err := s.owned(ctx, caller, op, key)
	if err != nil {
		return err
	}
	if err := validation.ValidatePosition(position); err != nil {
		return err
	}
	session.commit.Lock()
	defer session.commit.Unlock()

	q := session.Quiz()
	undo, err := apply(q, *position)
	if err != nil {
		return err
	}
	if err := s.store.SaveQuiz(ctx, q); err != nil {
		undo()
		return err
	}
	config.WithContext(ctx).WithFields(logrus.Fields{"quiz_key": key, "position": *position, "operation": op}).Debug("quiz item changed")
	return nil
}

// GetQuiz returns the full aggregate including answer keys and live answers.
func (s *QuizService) GetQuiz(ctx context.Context, caller domain.Caller, key string) (*quiz.Quiz, error) {
	session, err := s.owned(ctx, caller, catalog.QueryGetQuiz, key)
	if err != nil {
		return nil, err
	}
	return session.Quiz(), nil
}

// ListQuizzes returns the caller's quizzes from the store.
func (s *QuizService) ListQuizzes(ctx context.Context, caller domain.Caller) ([]*quiz.Quiz, error) {
	if err := s.check(caller, catalog.QueryGetQuizzesByOwner); err != nil {
		return nil, err
	}
	if err := validation.ValidateParticipant(caller.Participant); err != nil {
		return nil, err
	}
	return s.store.ListQuizzes(ctx, caller.Participant)
}

// GetProjection returns the participant view of a quiz.
func (s *QuizService) GetProjection(ctx context.Context, caller domain.Caller, key string) (quiz.Projection, error) {
	if err := s.check(caller, catalog.QueryGetQuizProjection); err != nil {
		return quiz.Projection{}, err
	}
	session, err := s.session(ctx, key)
	if err != nil {
		return quiz.Projection{}, err
	}
	return quiz.Project(session.Quiz()), nil
}

// GetItem returns one item of a quiz.
func (s *QuizService) GetItem(ctx context.Context, caller domain.Caller, key string, position *int) (quiz.Item, error) {
	session, err := s.owned(ctx, caller, catalog.QueryGetQuizItem, key)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidatePosition(position); err != nil {
		return nil, err
	}
	item, ok := session.Quiz().Item(*position)
	if !ok {
		return nil, domain.Errorf(domain.KindNotFound, "no item at position %d", *position)
	}
	return item, nil
}

// SubmitAnswer records the caller's answer to an interactive item and notifies tally subscribers.
// A mirror error is returned after the answer was recorded and broadcast; resubmitting is safe.
func (s *QuizService) SubmitAnswer(ctx context.Context, caller domain.Caller, key string, position *int, tokens []string) error {
	if err := s.check(caller, catalog.CommandPostLiveAnswer); err != nil {
		return err
	}
	if err := validation.ValidatePosition(position); err != nil {
		return err
	}
	if err := validation.ValidateParticipant(caller.Participant); err != nil {
		return err
	}
	if err := validation.ValidateAnswerItems(tokens); err != nil {
		return err
	}
	session, err := s.session(ctx, key)
	if err != nil {
		return err
	}

	item, err := session.Quiz().RecordAnswer(*position, caller.Participant, tokens)
	if err != nil {
		return err
	}
	s.metrics.AnswersAccepted.WithLabelValues(string(item.Kind())).Inc()
	session.broadcast(*position, item.AllAnswers())

	if s.mirror != nil {
		if err := s.mirror.MirrorAnswer(ctx, session.Key(), *position, caller.Participant, tokens); err != nil {
			return fmt.Errorf("mirror answer: %w", err)
		}
	}
	config.WithContext(ctx).WithFields(logrus.Fields{
		"quiz_key":    key,
		"position":    *position,
		"participant": caller.Key(),
	}).Debug("live answer recorded")
	return nil
}

// GetTally returns the current answers of an item and their grading.
func (s *QuizService) GetTally(ctx context.Context, caller domain.Caller, key string, position *int) (Tally, error) {
	item, err := s.ownedItem(ctx, caller, catalog.QueryGetLiveTally, key, position)
	if err != nil {
		return Tally{}, err
	}
	grade, err := quiz.GradeItem(item)
	if err != nil {
		return Tally{}, err
	}
	return Tally{Position: *position, Answers: item.(quiz.Answerable).AllAnswers(), Grade: grade}, nil
}

// Subscribe returns a channel that receives tally updates for a quiz.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context, caller domain.Caller, key string) (<-chan domain.TallyUpdate, func(), error) {
	session, err := s.owned(ctx, caller, catalog.QuerySubscribeLiveTally, key)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	s.metrics.LiveSubscribers.Inc()
	return ch, func() {
		cancel()
		s.metrics.LiveSubscribers.Dec()
	}, nil
}

func (s *QuizService) ownedItem(ctx context.Context, caller domain.Caller, op, key string, position *int) (quiz.Item, error) {
	session, err := s.owned(ctx, caller, op, key)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidatePosition(position); err != nil {
		return nil, err
	}
	item, ok := session.Quiz().Item(*position)
	if !ok {
		return nil, domain.Errorf(domain.KindNotFound, "no item at position %d", *position)
	}
	return item, nil
}

func (s *QuizService) check(caller domain.Caller, op string) error {
	if err := s.gate.Check(op, caller.Roles); err != nil {
		s.metrics.Rejections.WithLabelValues(op, domain.AsError(err).Code()).Inc()
		return err
	}
	s.metrics.Operations.WithLabelValues(op).Inc()
	return nil
}

// owned gates op, loads the session and requires the caller to be the quiz owner.
func (s *QuizService) owned(ctx context.Context, caller domain.Caller, op, key string) (*Session, error) {
	if err := s.check(caller, op); err != nil {
		return nil, err
	}
	session, err := s.session(ctx, key)
	if err != nil {
		return nil, err
	}
	if session.Quiz().Owner() != caller.Participant {
		return nil, domain.Errorf(domain.KindUnauthorized, "quiz %s belongs to another teacher", key)
	}
	return session, nil
}

// session returns the live session for key, loading the aggregate once per key on a miss.
func (s *QuizService) session(ctx context.Context, key string) (*Session, error) {
	if err := validation.ValidateKey(key); err != nil {
		return nil, err
	}
	k := quiz.Key(key)
	if session, ok := s.sessions.Get(k); ok {
		session.touch()
		return session, nil
	}
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if session, ok := s.sessions.Get(k); ok {
			return session, nil
		}
		q, err := s.store.LoadQuiz(ctx, k)
		if err != nil {
			return nil, err
		}
		if err := s.restoreAnswers(ctx, q); err != nil {
			return nil, err
		}
		return s.sessions.GetOrCreate(q), nil
	})
	if err != nil {
		return nil, err
	}
	session := result.(*Session)
	session.touch()
	return session, nil
}

// restoreAnswers merges the mirrored answers into a freshly loaded aggregate, so a quiz played
// on another instance, or evicted here, resumes with its current tallies.
func (s *QuizService) restoreAnswers(ctx context.Context, q *quiz.Quiz) error {
	if s.mirror == nil {
		return nil
	}
	for _, item := range q.Items() {
		if !item.Kind().Interactive() {
			continue
		}
		tally, err := s.mirror.Answers(ctx, q.Key(), item.Position())
		if err != nil {
			return fmt.Errorf("restore mirrored answers: %w", err)
		}
		if err := q.RestoreAnswers(item.Position(), tally); err != nil {
			return err
		}
	}
	return nil
}

// EvictIdleSessions drops sessions idle for ttl. Their aggregates stay in the quiz store.
func (s *QuizService) EvictIdleSessions(ctx context.Context, ttl time.Duration) int {
	evicted := s.sessions.EvictIdle(ttl)
	if len(evicted) > 0 {
		config.WithContext(ctx).WithField("sessions", len(evicted)).Info("evicted idle sessions")
	}
	return len(evicted)
}

// RunEviction sweeps idle sessions every interval until ctx is done.
func (s *QuizService) RunEviction(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdleSessions(ctx, ttl)
		}
	}
}
