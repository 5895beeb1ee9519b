// Package auth holds the credential records exchanged with the backend's
// /api/auth endpoints and the registration rules checked before submission.
package auth

// Credentials is the body of POST /api/auth/login
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the registration form. Only the first three fields are
// sent to POST /api/auth/register.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

// User is the account summary returned with a successful login
type User struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Tokens is the login response
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Message      string `json:"message,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// RefreshRequest is the body of POST /api/auth/refresh-token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse is the refresh endpoint's answer
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// MessageResponse is the generic {"message": ...} body
type MessageResponse struct {
	Message string `json:"message"`
}
