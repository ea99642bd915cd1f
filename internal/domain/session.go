package domain

// SessionState represents the authentication lifecycle of the process.
type SessionState string

const (
	SessionAnonymous      SessionState = "ANONYMOUS"
	SessionAuthenticating SessionState = "AUTHENTICATING"
	SessionAuthenticated  SessionState = "AUTHENTICATED"
)

// Session is the at-most-one live identity bound to the running process.
type Session struct {
	State    SessionState
	Identity *Identity
}

// Authenticated reports whether a live identity is present.
func (s Session) Authenticated() bool {
	return s.State == SessionAuthenticated && s.Identity != nil
}
