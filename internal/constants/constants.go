package constants

// Context keys shared between middleware and handlers
const (
	ContextKeyUserID    = "user_id"
	ContextKeyPrincipal = "principal"
	ContextKeyTask      = "task"
)

// Pagination
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// Auth
const (
	MinPasswordLength = 8
	SessionCookieName = "taskboard_session"
)

// Progress bounds
const (
	MinProgress = 0
	MaxProgress = 100
)
