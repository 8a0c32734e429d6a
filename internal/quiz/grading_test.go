package quiz

import (
	"errors"
	"testing"

	"live-quiz-service/internal/domain"
)

func answer(t *testing.T, item Answerable, login string, tokens ...string) {
	t.Helper()
	if err := item.RecordAnswer(domain.Participant{Login: login, Code: "c"}, tokens); err != nil {
		t.Fatalf("record %s: %v", login, err)
	}
}

func TestGradeTrueFalse(t *testing.T) {
	tf := NewTrueFalse(TrueFalseContent{Question: "2 is even", Answer: true})
	answer(t, tf, "a", "true")
	answer(t, tf, "b", "FALSE")
	answer(t, tf, "c", "T")
	answer(t, tf, "d", "maybe")

	g, _ := GradeItem(tf)
	if g.Participants != 4 || g.Correct != 2 {
		t.Fatalf("expected 2 correct of 4, got %+v", g)
	}
	if g.Frequencies["true"] != 2 || g.Frequencies["false"] != 1 {
		t.Fatalf("unexpected frequencies %v", g.Frequencies)
	}
}

func TestGradeFillSpace(t *testing.T) {
	fs := NewFillSpace(FillSpaceContent{Text: "_ and _", Answers: []string{"Salt", "pepper"}})
	answer(t, fs, "a", " salt", "PEPPER ")
	answer(t, fs, "b", "salt")
	answer(t, fs, "c", "pepper", "salt")

	g, _ := GradeItem(fs)
	if g.Correct != 1 || !g.Graded {
		t.Fatalf("expected 1 correct, got %+v", g)
	}
}

func TestGradePollAndWordCloudCountFrequencies(t *testing.T) {
	poll := NewPoll(PollContent{Question: "?", Options: []string{"x", "y"}})
	answer(t, poll, "a", "x")
	answer(t, poll, "b", "x")
	answer(t, poll, "c", "y")
	g, _ := GradeItem(poll)
	if g.Graded || g.Frequencies["x"] != 2 || g.Frequencies["y"] != 1 {
		t.Fatalf("unexpected poll grade %+v", g)
	}

	cloud := NewWordCloud(WordCloudContent{Question: "?"})
	answer(t, cloud, "a", "Fast", "simple")
	answer(t, cloud, "b", "fast ")
	g, _ = GradeItem(cloud)
	if g.Frequencies["fast"] != 2 || g.Frequencies["simple"] != 1 {
		t.Fatalf("unexpected word cloud frequencies %v", g.Frequencies)
	}
}

func TestGradeOpenCountsParticipants(t *testing.T) {
	open := NewOpen(OpenContent{Question: "?"})
	answer(t, open, "a", "because")
	answer(t, open, "a", "actually, because")
	g, _ := GradeItem(open)
	if g.Participants != 1 || g.Graded {
		t.Fatalf("unexpected open grade %+v", g)
	}
}

func TestGradeSlideIsUnsupported(t *testing.T) {
	if _, err := GradeItem(&SlideTitle1{}); !errors.Is(err, domain.ErrUnsupportedOperation) {
		t.Fatalf("expected unsupported operation, got %v", err)
	}
}
