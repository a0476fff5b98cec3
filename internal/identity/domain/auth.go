package domain

// AccountCredentials is a username/password pair presented at login.
// The password is plaintext in transit only and is never persisted.
type AccountCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthToken is what a successful authenticate or refresh returns. The refresh
// token is empty when refresh tokens are disabled for the user. ExpiresIn is
// the access token lifetime in seconds, computed at issuance.
type AuthToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"` // "Bearer"
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthenticatedUser is the result of validating an access token: the subject
// plus the role snapshot that was embedded at issuance time. Role changes made
// after issuance are not reflected until the token is reissued.
type AuthenticatedUser struct {
	UserID   int64       `json:"user_id"`
	Username string      `json:"username"`
	Roles    []RoleGrant `json:"roles"`
}
