package validation

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"live-quiz-service/internal/catalog"
	"live-quiz-service/internal/domain"
)

func newTestGate() *Gate {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewGate(catalog.Quiz(), log)
}

func TestCheckRejectsBlankAndUnknownNames(t *testing.T) {
	g := newTestGate()
	for _, op := range []string{"", "   ", "COMMAND_UNKNOWN", "command_post_new_quiz"} {
		err := g.Check(op, []domain.Role{domain.RoleTeacher})
		if !errors.Is(err, domain.ErrInvalidOperationFormat) {
			t.Fatalf("%q: expected invalid operation format, got %v", op, err)
		}
	}
}

func TestCheckRejectsOperationsOfOtherCatalogs(t *testing.T) {
	g := newTestGate()
	err := g.Check(catalog.CommandPostLogin, []domain.Role{domain.RoleTeacher})
	if !errors.Is(err, domain.ErrInvalidOperationFormat) {
		t.Fatalf("expected auth operation to be rejected by quiz gate, got %v", err)
	}
}

func TestCheckAuthorizes(t *testing.T) {
	g := newTestGate()
	if err := g.Check(catalog.CommandDeleteQuizItem, []domain.Role{domain.RoleStudent}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := g.Check(catalog.CommandPostLiveAnswer, []domain.Role{domain.RoleAnonymous}); err != nil {
		t.Fatalf("expected anonymous answer to pass, got %v", err)
	}
}

func TestFieldValidators(t *testing.T) {
	negative := -1
	zero := 0
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"blank key", ValidateKey(""), domain.ErrInvalidKey},
		{"malformed key", ValidateKey("not-a-uuid"), domain.ErrInvalidKey},
		{"valid key", ValidateKey("0b7e4d8c-6f0a-4d8e-9a57-5c2f0c8f1e11"), nil},
		{"missing position", ValidatePosition(nil), domain.ErrInvalidPosition},
		{"negative position", ValidatePosition(&negative), domain.ErrInvalidPosition},
		{"zero position", ValidatePosition(&zero), nil},
		{"empty answers", ValidateAnswerItems(nil), domain.ErrInvalidAnswerItem},
		{"answers", ValidateAnswerItems([]string{"B"}), nil},
		{"blank name", ValidateName(" "), domain.ErrInvalidName},
		{"participant without code", ValidateParticipant(domain.Participant{Login: "ana"}), domain.ErrInvalidParticipant},
		{"participant with separator", ValidateParticipant(domain.Participant{Login: "a#b", Code: "1"}), domain.ErrInvalidParticipant},
		{"participant", ValidateParticipant(domain.Participant{Login: "ana", Code: "1"}), nil},
	}
	for _, tc := range cases {
		if tc.want == nil {
			if tc.err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, tc.err)
			}
			continue
		}
		if !errors.Is(tc.err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, tc.err)
		}
	}
}
