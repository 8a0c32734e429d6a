package domain

import (
	"strings"
	"time"
)

// Role is the authorization category a caller acts under.
type Role string

const (
	RoleTeacher   Role = "TEACHER"
	RoleStudent   Role = "STUDENT"
	RoleAnonymous Role = "ANONYMOUS"
)

// ParseRole accepts the role name in any case.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleTeacher:
		return RoleTeacher, true
	case RoleStudent:
		return RoleStudent, true
	case RoleAnonymous:
		return RoleAnonymous, true
	}
	return "", false
}

// ParticipantSeparator joins login and code into a participant key.
const ParticipantSeparator = "#"

// Participant identifies a caller within one live session.
type Participant struct {
	Login string `json:"login"`
	Code  string `json:"code"`
}

// Key is the map key used for live answers.
func (p Participant) Key() string {
	return p.Login + ParticipantSeparator + p.Code
}

// Caller is a participant together with the roles it was verified for.
type Caller struct {
	Participant
	Roles []Role
}

// HasRole reports whether the caller carries role.
func (c Caller) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TallyUpdate is broadcast to live subscribers whenever an item receives an answer.
type TallyUpdate struct {
	QuizKey   string              `json:"quizKey"`
	Position  int                 `json:"position"`
	Answers   map[string][]string `json:"answers"`
	UpdatedAt time.Time           `json:"updatedAt"`
}
