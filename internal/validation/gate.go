package validation

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"live-quiz-service/internal/catalog"
	"live-quiz-service/internal/domain"
)

// Gate checks operation names and roles against one catalog before any mutation happens.
type Gate struct {
	catalog *catalog.Catalog
	log     logrus.FieldLogger
}

func NewGate(c *catalog.Catalog, log logrus.FieldLogger) *Gate {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gate{catalog: c, log: log}
}

// Catalog exposes the catalog the gate was built with.
func (g *Gate) Catalog() *catalog.Catalog { return g.catalog }

// Check rejects blank or unknown operation names before authorizing the roles.
func (g *Gate) Check(operation string, roles []domain.Role) error {
	if strings.TrimSpace(operation) == "" || !g.catalog.Contains(operation) {
		err := domain.Errorf(domain.KindInvalidOperationFormat, "operation %q is not a recognized %s operation", operation, g.catalog.Context())
		g.reject(operation, roles, err)
		return err
	}
	if err := g.catalog.Authorize(operation, roles...); err != nil {
		g.reject(operation, roles, err)
		return err
	}
	return nil
}

func (g *Gate) reject(operation string, roles []domain.Role, err error) {
	g.log.WithFields(logrus.Fields{
		"operation": operation,
		"roles":     roles,
		"code":      domain.AsError(err).Code(),
	}).Warn("operation rejected")
}

// ValidateKey requires a non-blank UUID quiz key.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return domain.Errorf(domain.KindInvalidKey, "quiz key is required")
	}
	if _, err := uuid.Parse(key); err != nil {
		return domain.Errorf(domain.KindInvalidKey, "quiz key %q is malformed", key)
	}
	return nil
}

// ValidatePosition requires a present, non-negative position.
func ValidatePosition(position *int) error {
	if position == nil {
		return domain.Errorf(domain.KindInvalidPosition, "position is required")
	}
	if *position < 0 {
		return domain.Errorf(domain.KindInvalidPosition, "position %d is negative", *position)
	}
	return nil
}

// ValidateAnswerItems requires at least one answer token.
func ValidateAnswerItems(tokens []string) error {
	if len(tokens) == 0 {
		return domain.Errorf(domain.KindInvalidAnswerItem, "answer list is empty")
	}
	return nil
}

// ValidateName requires a non-blank quiz name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.Errorf(domain.KindInvalidName, "quiz name is required")
	}
	return nil
}

// ValidateParticipant requires both halves of the participant identity.
func ValidateParticipant(p domain.Participant) error {
	if strings.TrimSpace(p.Login) == "" || strings.TrimSpace(p.Code) == "" {
		return domain.Errorf(domain.KindInvalidParticipant, "participant login and code are required")
	}
	if strings.Contains(p.Login, domain.ParticipantSeparator) {
		return domain.Errorf(domain.KindInvalidParticipant, "participant login may not contain %q", domain.ParticipantSeparator)
	}
	return nil
}
