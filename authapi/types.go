package authapi

// Credentials is the email/password login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up request.
type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// GoogleProfile carries the identity extracted from a verified Google
// sign-in, as the backend's oauth-google endpoint expects it.
type GoogleProfile struct {
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	OauthUID      string `json:"oauthUid"`
	OauthProvider string `json:"oauthProvider"`
	OauthPicture  string `json:"oauthPicture"`
}

// payload wraps request bodies the way the backend expects them:
// {"data": {...}} for all auth endpoints.
type payload struct {
	Data any `json:"data"`
}
