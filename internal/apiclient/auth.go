package apiclient

import (
	"context"
	"errors"
	"net/http"

	"gallery-portal/internal/domain/auth"
)

// Login exchanges credentials for a token pair. It never refreshes: a 401
// here is a wrong password. The tokens are returned, not stored.
func (c *Client) Login(ctx context.Context, creds auth.Credentials) (*auth.Tokens, error) {
	body, err := jsonBody(creds)
	if err != nil {
		return nil, err
	}

	var tokens auth.Tokens
	if err := c.doJSON(ctx, EndpointLogin, RequestOptions{
		Method:  http.MethodPost,
		Body:    body,
		NoRetry: true,
	}, &tokens); err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Message: "login response carried no access token"}
	}
	return &tokens, nil
}

// Register creates an account and returns the server's message
func (c *Client) Register(ctx context.Context, reg auth.Registration) (string, error) {
	body, err := jsonBody(reg)
	if err != nil {
		return "", err
	}

	var out auth.MessageResponse
	if err := c.doJSON(ctx, EndpointRegister, RequestOptions{
		Method:  http.MethodPost,
		Body:    body,
		NoRetry: true,
	}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Logout notifies the backend. Callers clear tokens whatever it returns.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, EndpointLogout, RequestOptions{
		Method:  http.MethodPost,
		NoRetry: true,
	}, nil)
}

// CheckAuth reports whether the stored access token is accepted by the
// backend. A missing token is answered without a request.
func (c *Client) CheckAuth(ctx context.Context) (bool, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}

	err = c.doJSON(ctx, EndpointProtected, RequestOptions{NoRetry: true}, nil)
	if err == nil {
		return true, nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false, nil
	}
	return false, err
}
