package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"live-quiz-service/internal/domain"
)

func TestAnswerMirrorOverwritesPerParticipant(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	mirror := NewAnswerMirror(newClient(mr), time.Hour)
	q := sampleQuiz(t)
	ana := domain.Participant{Login: "ana", Code: "1"}
	bob := domain.Participant{Login: "bob", Code: "2"}

	_ = mirror.MirrorAnswer(ctx, q.Key(), 0, ana, []string{"3"})
	_ = mirror.MirrorAnswer(ctx, q.Key(), 0, ana, []string{"4"})
	if err := mirror.MirrorAnswer(ctx, q.Key(), 0, bob, []string{"3"}); err != nil {
		t.Fatalf("mirror: %v", err)
	}

	answers, err := mirror.Answers(ctx, q.Key(), 0)
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if len(answers) != 2 || answers[ana.Key()][0] != "4" || answers[bob.Key()][0] != "3" {
		t.Fatalf("unexpected mirrored answers %v", answers)
	}
	if mr.TTL("live:"+string(q.Key())+":0") <= 0 {
		t.Fatalf("expected ttl on mirrored hash")
	}

	if err := mirror.DropQuiz(ctx, q.Key(), []int{0}); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if mr.Exists("live:" + string(q.Key()) + ":0") {
		t.Fatalf("expected hash removed")
	}
}
