package models

// Status is the authentication state of the session.
type Status int

const (
	StatusUnknown Status = iota
	StatusLoading
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Session is an immutable snapshot of the process-wide session.
// User is nil unless Status is StatusAuthenticated.
type Session struct {
	Token  string
	User   *User
	Status Status
}

// Authenticated reports whether the snapshot grants access to protected areas.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// UserID returns the user id or "" when there is no user.
func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}
