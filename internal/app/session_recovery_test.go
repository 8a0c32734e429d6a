package app_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/catalog"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/memory"
	"live-quiz-service/internal/quiz"
	"live-quiz-service/internal/validation"
)

func TestFillSpaceSurvivesSaveAndReload(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizStore()
	service, _ := newTestServiceWith(store)
	q := mustCreate(t, service)
	key := string(q.Key())

	fill := quiz.NewFillSpace(quiz.FillSpaceContent{Text: "The ___ is blue", Answers: []string{"sky"}})
	if err := service.AddItem(ctx, teacher, key, pos(2), fill); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := service.SubmitAnswer(ctx, student(1), key, pos(2), []string{"sea"}); err != nil {
		t.Fatalf("answer: %v", err)
	}
	// a second item forces a save that carries the live answer
	if err := service.AddItem(ctx, teacher, key, pos(3), quiz.NewOpen(quiz.OpenContent{Question: "Why?"})); err != nil {
		t.Fatalf("add open: %v", err)
	}

	stored, err := store.LoadQuiz(ctx, q.Key())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	item, ok := stored.Item(2)
	if !ok {
		t.Fatalf("expected fill space item after reload")
	}
	reloaded, ok := item.(*quiz.FillSpace)
	if !ok {
		t.Fatalf("expected *quiz.FillSpace, got %T", item)
	}
	if reloaded.Text != "The ___ is blue" || len(reloaded.Answers) != 1 || reloaded.Answers[0] != "sky" {
		t.Fatalf("answer key lost on reload: %+v", reloaded.FillSpaceContent)
	}
	if got := reloaded.AllAnswers()[student(1).Key()]; len(got) != 1 || got[0] != "sea" {
		t.Fatalf("live answer lost on reload: %v", reloaded.AllAnswers())
	}

	fresh, _ := newTestServiceWith(store)
	grade, err := fresh.GetTally(ctx, teacher, key, pos(2))
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if grade.Grade.Participants != 1 || grade.Grade.Correct != 0 {
		t.Fatalf("expected one wrong answer graded against the reloaded key, got %+v", grade.Grade)
	}
}

func TestFreshSessionRestoresMirroredAnswers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizStore()
	mirror := newMemoryMirror()
	first := newMirroredService(store, mirror)
	q := mustCreate(t, first)
	key := string(q.Key())

	if err := first.AddItem(ctx, teacher, key, pos(0), quiz.NewPoll(quiz.PollContent{Question: "Which?", Options: []string{"a", "b"}})); err != nil {
		t.Fatalf("add: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := first.SubmitAnswer(ctx, student(i), key, pos(0), []string{"a"}); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	// another instance sharing the store and the mirror but with no session in memory
	second := newMirroredService(store, mirror)
	tally, err := second.GetTally(ctx, teacher, key, pos(0))
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if len(tally.Answers) != 3 || tally.Answers[student(2).Key()][0] != "a" {
		t.Fatalf("expected mirrored answers restored, got %v", tally.Answers)
	}
}

func TestEvictedSessionReloadsWithAnswers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizStore()
	mirror := newMemoryMirror()
	service := newMirroredService(store, mirror)
	q := mustCreate(t, service)
	key := string(q.Key())

	if err := service.AddItem(ctx, teacher, key, pos(1), quiz.NewWordCloud(quiz.WordCloudContent{Question: "One word"})); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := service.SubmitAnswer(ctx, student(7), key, pos(1), []string{"calm"}); err != nil {
		t.Fatalf("answer: %v", err)
	}

	updates, cancel, err := service.Subscribe(ctx, teacher, key)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	<-updates
	if n := service.EvictIdleSessions(ctx, 0); n != 0 {
		t.Fatalf("a watched session must not be evicted, evicted %d", n)
	}
	cancel()

	if n := service.EvictIdleSessions(ctx, 0); n != 1 {
		t.Fatalf("expected one eviction, got %d", n)
	}
	tally, err := service.GetTally(ctx, teacher, key, pos(1))
	if err != nil {
		t.Fatalf("tally after eviction: %v", err)
	}
	if got := tally.Answers[student(7).Key()]; len(got) != 1 || got[0] != "calm" {
		t.Fatalf("expected answer restored after eviction, got %v", tally.Answers)
	}
}

func TestMirrorFailureStillAppliesAnswer(t *testing.T) {
	ctx := context.Background()
	mirror := newMemoryMirror()
	service := newMirroredService(memory.NewQuizStore(), mirror)
	q := mustCreate(t, service)
	key := string(q.Key())
	if err := service.AddItem(ctx, teacher, key, pos(0), quiz.NewOpen(quiz.OpenContent{Question: "Why?"})); err != nil {
		t.Fatalf("add: %v", err)
	}

	mirror.fail = errors.New("redis down")
	err := service.SubmitAnswer(ctx, student(1), key, pos(0), []string{"because"})
	if !errors.Is(err, mirror.fail) {
		t.Fatalf("expected mirror error to surface, got %v", err)
	}
	tally, err := service.GetTally(ctx, teacher, key, pos(0))
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if len(tally.Answers) != 1 {
		t.Fatalf("answer must be applied even when mirroring fails, got %v", tally.Answers)
	}
}

func newMirroredService(store app.QuizStore, mirror app.AnswerMirror) *app.QuizService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	gate := validation.NewGate(catalog.Quiz(), log)
	return app.NewQuizService(gate, store, memory.NewSessionStore(8), app.WithAnswerMirror(mirror))
}

type memoryMirror struct {
	mu      sync.Mutex
	answers map[quiz.Key]map[int]map[string][]string
	fail    error
}

func newMemoryMirror() *memoryMirror {
	return &memoryMirror{answers: make(map[quiz.Key]map[int]map[string][]string)}
}

func (m *memoryMirror) MirrorAnswer(_ context.Context, key quiz.Key, position int, p domain.Participant, tokens []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	if m.answers[key] == nil {
		m.answers[key] = make(map[int]map[string][]string)
	}
	if m.answers[key][position] == nil {
		m.answers[key][position] = make(map[string][]string)
	}
	m.answers[key][position][p.Key()] = append([]string(nil), tokens...)
	return nil
}

func (m *memoryMirror) Answers(_ context.Context, key quiz.Key, position int) (map[string][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]string)
	for participant, tokens := range m.answers[key][position] {
		out[participant] = append([]string(nil), tokens...)
	}
	return out, nil
}

func (m *memoryMirror) DropItem(_ context.Context, key quiz.Key, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.answers[key], position)
	return nil
}

func (m *memoryMirror) DropQuiz(_ context.Context, key quiz.Key, _ []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.answers, key)
	return nil
}
