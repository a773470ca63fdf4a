package constants

// Context keys set by the auth middleware
const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
)

// Pagination bounds
const (
	MinPage         = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// MinPasswordLength is the shortest password accepted anywhere a password is set.
const MinPasswordLength = 6

// TokenTTLHours is the validity window of an issued token. Role and status
// changes only take effect once the subject re-authenticates.
const TokenTTLHours = 24
