package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID  = "user_id"
	ContextKeyTraceID = "trace_id"
	SessionCookieName = "task_session"
)

// Account policy
const (
	MinPasswordLength = 8
	MinUsernameLength = 3
	MaxUsernameLength = 150
)

// Query limits
const (
	UserSearchLimit = 10
	MaxTaskPageSize = 100
)

// Token defaults
const (
	DefaultTokenTTL = 24 * time.Hour
	TokenIssuer     = "team-task-api"
)

// MaxAIGeneratedTasks caps the number of drafts returned by the generator.
const MaxAIGeneratedTasks = 20
