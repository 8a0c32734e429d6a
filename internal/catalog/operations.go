package catalog

import "live-quiz-service/internal/domain"

// Quiz and live-session operation names.
const (
	CommandPostNewQuiz      = "COMMAND_POST_NEW_QUIZ"
	CommandPutQuiz          = "COMMAND_PUT_QUIZ"
	CommandDeleteQuiz       = "COMMAND_DELETE_QUIZ"
	CommandPostNewQuizItem  = "COMMAND_POST_NEW_QUIZ_ITEM"
	CommandPutQuizItem      = "COMMAND_PUT_QUIZ_ITEM"
	CommandDeleteQuizItem   = "COMMAND_DELETE_QUIZ_ITEM"
	CommandPostLiveAnswer   = "COMMAND_POST_LIVE_ANSWER"
	QueryGetQuiz            = "QUERY_GET_QUIZ"
	QueryGetQuizzesByOwner  = "QUERY_GET_QUIZZES_BY_OWNER"
	QueryGetQuizProjection  = "QUERY_GET_QUIZ_PROJECTION"
	QueryGetQuizItem        = "QUERY_GET_QUIZ_ITEM"
	QueryGetLiveTally       = "QUERY_GET_LIVE_TALLY"
	QuerySubscribeLiveTally = "QUERY_SUBSCRIBE_LIVE_TALLY"
)

// Auth operation names.
const (
	CommandPostLogin          = "COMMAND_POST_LOGIN"
	CommandPostAnonymousLogin = "COMMAND_POST_ANONYMOUS_LOGIN"
	CommandPostRefreshToken   = "COMMAND_POST_REFRESH_TOKEN"
	QueryGetTokenInfo         = "QUERY_GET_TOKEN_INFO"
)

// User operation names.
const (
	CommandPostNewUser = "COMMAND_POST_NEW_USER"
	CommandPutUser     = "COMMAND_PUT_USER"
	CommandDeleteUser  = "COMMAND_DELETE_USER"
	QueryGetUser       = "QUERY_GET_USER"
	QueryGetUsers      = "QUERY_GET_USERS"
)

var (
	teacherOnly = []domain.Role{domain.RoleTeacher}
	registered  = []domain.Role{domain.RoleTeacher, domain.RoleStudent}
	everyone    = []domain.Role{domain.RoleTeacher, domain.RoleStudent, domain.RoleAnonymous}
)

func command(name, description string, roles []domain.Role) OperationDescriptor {
	return OperationDescriptor{Name: name, Description: description, Type: TypeCommand, Roles: roles}
}

func query(name, description string, roles []domain.Role) OperationDescriptor {
	return OperationDescriptor{Name: name, Description: description, Type: TypeQuery, Roles: roles}
}

// Quiz returns the catalog gating the quiz aggregate and live answers.
func Quiz() *Catalog {
	return New("quiz",
		command(CommandPostNewQuiz, "Create a new quiz owned by the caller", teacherOnly),
		command(CommandPutQuiz, "Replace a quiz's name, categories and optionally its items", teacherOnly),
		command(CommandDeleteQuiz, "Delete a quiz", teacherOnly),
		command(CommandPostNewQuizItem, "Add an item at a free position", teacherOnly),
		command(CommandPutQuizItem, "Replace or create the item at a position", teacherOnly),
		command(CommandDeleteQuizItem, "Delete the item at a position", teacherOnly),
		command(CommandPostLiveAnswer, "Submit a live answer to an interactive item", everyone),
		query(QueryGetQuiz, "Fetch a quiz with answer keys and live answers", teacherOnly),
		query(QueryGetQuizzesByOwner, "List the caller's quizzes", teacherOnly),
		query(QueryGetQuizProjection, "Fetch the participant view of a quiz", everyone),
		query(QueryGetQuizItem, "Fetch one item of a quiz", teacherOnly),
		query(QueryGetLiveTally, "Fetch the current tally and grading of an item", teacherOnly),
		query(QuerySubscribeLiveTally, "Receive tally updates of a live quiz", teacherOnly),
	)
}

// Auth returns the catalog of the authentication context.
func Auth() *Catalog {
	return New("auth",
		command(CommandPostLogin, "Exchange credentials for a token", registered),
		command(CommandPostAnonymousLogin, "Obtain an anonymous participant token", []domain.Role{domain.RoleAnonymous}),
		command(CommandPostRefreshToken, "Refresh an issued token", everyone),
		query(QueryGetTokenInfo, "Describe the caller's token", everyone),
	)
}

// User returns the catalog of the user management context.
func User() *Catalog {
	return New("user",
		command(CommandPostNewUser, "Register a user", everyone),
		command(CommandPutUser, "Update the caller's profile", registered),
		command(CommandDeleteUser, "Delete the caller's account", registered),
		query(QueryGetUser, "Fetch the caller's profile", registered),
		query(QueryGetUsers, "List users", teacherOnly),
	)
}
