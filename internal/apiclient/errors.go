package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSessionExpired means the access token was rejected and could not be
	// refreshed. The token store has been cleared; the caller should send the
	// user to the login page.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoRefreshToken is the refresh failure when no refresh token is stored
	ErrNoRefreshToken = errors.New("no refresh token")

	// ErrRefreshRejected is the refresh failure when the backend refuses the token
	ErrRefreshRejected = errors.New("token refresh failed")
)

// APIError is a non-2xx answer from the backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return e.Message
}

// IsUnauthorized reports whether the backend answered 401
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether the backend answered 404
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
