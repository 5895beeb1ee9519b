package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"gallery-portal/internal/domain/auth"
)

// refreshAccessToken trades the stored refresh token for a new access token.
// stale is the access token the failed request carried. Concurrent callers
// holding the same refresh token share a single upstream call, and a caller
// whose token was already replaced reuses the stored one.
func (c *Client) refreshAccessToken(ctx context.Context, stale string) (string, error) {
	current, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	if current != "" && current != stale {
		c.metrics.recordRefresh(ctx, refreshReused)
		return current, nil
	}

	refreshToken, err := c.tokens.RefreshToken(ctx)
	if err != nil {
		return "", err
	}
	if refreshToken == "" {
		c.expire(ctx)
		c.metrics.recordRefresh(ctx, refreshMissing)
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, ErrNoRefreshToken)
	}

	// Detached so one canceled caller does not fail everyone sharing the flight
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := c.refreshes.Do(refreshToken, func() (any, error) {
		if latest, err := c.tokens.AccessToken(flightCtx); err == nil && latest != "" && latest != stale {
			return latest, nil
		}
		return c.postRefresh(flightCtx, refreshToken)
	})
	if err != nil {
		c.expire(ctx)
		c.metrics.recordRefresh(ctx, refreshFailed)
		c.logger.Warn(ctx).Err(err).Msg("Token refresh failed, session cleared")
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	if shared {
		c.metrics.recordRefresh(ctx, refreshShared)
	} else {
		c.metrics.recordRefresh(ctx, refreshSucceeded)
	}
	return v.(string), nil
}

func (c *Client) postRefresh(ctx context.Context, refreshToken string) (string, error) {
	body, err := jsonBody(auth.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+EndpointRefreshToken, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRefreshRejected, err)
	}

	var out auth.RefreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: invalid refresh response: %w", ErrRefreshRejected, err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrRefreshRejected)
	}

	if err := c.tokens.SetTokens(ctx, out.AccessToken, ""); err != nil {
		return "", fmt.Errorf("failed to store refreshed token: %w", err)
	}

	c.logger.Debug(ctx).Msg("Access token refreshed")
	return out.AccessToken, nil
}

// expire clears the token store after a failed refresh
func (c *Client) expire(ctx context.Context) {
	if err := c.tokens.Clear(ctx); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Error(ctx).Err(err).Msg("Failed to clear tokens")
	}
}
