package session

import "errors"

var (
	// ErrEmptyAccessToken is returned when SetTokens is called without an access token
	ErrEmptyAccessToken = errors.New("access token is required")

	// ErrEmptySessionID is returned when scoping to a blank session id
	ErrEmptySessionID = errors.New("session id is required")
)
