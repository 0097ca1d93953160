// Package guard turns a session snapshot into a navigation decision. While
// the session is still resolving, guards suspend rather than guess; once
// resolved they either allow or redirect.
package guard

import "github.com/voyago/voyago-go/session"

// Default navigation targets; mirrored from the application's route table.
const (
	DefaultSignInPath = "/signin"
	DefaultHomePath   = "/dashboard"
)

// Decision is the outcome of a guard check. Exactly one of Pending, Allow,
// or a non-empty RedirectTo applies.
type Decision struct {
	Allow      bool
	Pending    bool
	RedirectTo string
}

// Protected gates routes that require an established session. While the
// session is loading the decision is suspended; an anonymous session is
// redirected to signInPath.
func Protected(snapshot session.Snapshot, signInPath string) Decision {
	if signInPath == "" {
		signInPath = DefaultSignInPath
	}
	if snapshot.Loading {
		return Decision{Pending: true}
	}
	if !snapshot.Authenticated() {
		return Decision{RedirectTo: signInPath}
	}
	return Decision{Allow: true}
}

// Public gates routes meant only for anonymous visitors (sign-in, sign-up):
// an authenticated session is sent to homePath instead.
func Public(snapshot session.Snapshot, homePath string) Decision {
	if homePath == "" {
		homePath = DefaultHomePath
	}
	if snapshot.Loading {
		return Decision{Pending: true}
	}
	if snapshot.Authenticated() {
		return Decision{RedirectTo: homePath}
	}
	return Decision{Allow: true}
}
