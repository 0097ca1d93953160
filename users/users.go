// Package users holds the read-only user model as the backend reports it.
// The client never mutates a User directly; profile changes go through the
// backend and the session controller re-fetches.
package users

import "strings"

type User struct {
	ID        string `json:"id,omitempty"`        // Unique identifier for the user
	Email     string `json:"email,omitempty"`     // User's email address
	FirstName string `json:"firstName,omitempty"` // First name of the user
	LastName  string `json:"lastName,omitempty"`  // Last name of the user

	// Account flags
	IsOauth  bool `json:"isOauth,omitempty"`  // Account was created through an OAuth provider
	IsActive bool `json:"isActive,omitempty"` // Account has been activated
	IsAdmin  bool `json:"isAdmin,omitempty"`  // Account has administrative rights

	// OAuth provenance
	OauthProvider string `json:"oauthProvider,omitempty"` // e.g. "Google"
	OauthUID      string `json:"oauthUid,omitempty"`      // Provider-side user ID
	OauthPicture  string `json:"oauthPicture,omitempty"`  // Provider-side avatar URL
}

// FullName joins first and last name, tolerating either being empty.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
