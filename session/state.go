package session

import "github.com/voyago/voyago-go/users"

// Status is the session lifecycle state.
type Status string

const (
	// StatusUnauthenticated means no usable token is held.
	StatusUnauthenticated Status = "unauthenticated"
	// StatusAuthenticating means a token is held and the user-fetch is in
	// flight.
	StatusAuthenticating Status = "authenticating"
	// StatusAuthenticated means the user-fetch succeeded.
	StatusAuthenticated Status = "authenticated"
)

// Snapshot is an immutable view of the session state, handed to observers
// and route guards. Reading a snapshot never blocks on session internals.
type Snapshot struct {
	Token     string
	User      *users.User
	Loading   bool
	LastError string
	Status    Status
}

// Authenticated reports whether the session is fully established. It is
// never true while a user-fetch or refresh is in flight, so guards reading
// it cannot make a premature redirect decision.
func (s Snapshot) Authenticated() bool {
	return s.Token != "" && s.User != nil && !s.Loading
}

// Observer receives a snapshot after every state change.
type Observer func(Snapshot)
