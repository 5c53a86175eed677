package domain

import "time"

// AuthEventType names a session state transition recorded in the audit trail.
type AuthEventType string

const (
	EventSignup          AuthEventType = "signup"
	EventLogin           AuthEventType = "login"
	EventLoginFailed     AuthEventType = "login_failed"
	EventLogout          AuthEventType = "logout"
	EventRefresh         AuthEventType = "refresh"
	EventRefreshReuse    AuthEventType = "refresh_reuse"
	EventPasswordChanged AuthEventType = "password_changed"
	EventProfileUpdated  AuthEventType = "profile_updated"
)

// AuthEvent is a single audit record. UserID is empty when the actor could
// not be resolved (for example a login against an unknown username).
type AuthEvent struct {
	Type       AuthEventType
	UserID     string
	Identifier string
	Detail     string
	OccurredAt time.Time
}
