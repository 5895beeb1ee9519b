package session

import (
	"context"
	"fmt"
)

// Storage keys for the token pair
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// TokenStore is the only owner of a client's credentials
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SetTokens(ctx context.Context, access, refresh string) error
	Clear(ctx context.Context) error
}

// Store keeps one token pair in a KV, optionally under a key prefix
type Store struct {
	kv     KV
	prefix string
}

// NewStore returns a store using the bare accessToken/refreshToken keys
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

// AccessToken returns the stored access token, or "" when there is none
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, AccessTokenKey)
}

// RefreshToken returns the stored refresh token, or "" when there is none
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, RefreshTokenKey)
}

func (s *Store) get(ctx context.Context, name string) (string, error) {
	value, _, err := s.kv.Get(ctx, s.key(name))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return value, nil
}

// SetTokens stores the access token and, when refresh is non-empty, the
// refresh token. An empty refresh keeps the existing one, rewritten so both
// keys share the same expiry.
func (s *Store) SetTokens(ctx context.Context, access, refresh string) error {
	if access == "" {
		return ErrEmptyAccessToken
	}
	if refresh == "" {
		existing, err := s.RefreshToken(ctx)
		if err != nil {
			return err
		}
		refresh = existing
	}
	if err := s.kv.Set(ctx, s.key(AccessTokenKey), access); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if refresh == "" {
		return nil
	}
	if err := s.kv.Set(ctx, s.key(RefreshTokenKey), refresh); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// Clear removes both tokens
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key(AccessTokenKey), s.key(RefreshTokenKey)); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

// HasSession reports whether an access token is stored
func (s *Store) HasSession(ctx context.Context) (bool, error) {
	token, err := s.AccessToken(ctx)
	return token != "", err
}

// Repository hands out token stores scoped to browser sessions
type Repository struct {
	kv KV
}

// NewRepository wraps a KV shared by all sessions
func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// Scope returns the store for one session; its keys are
// session:<id>:accessToken and session:<id>:refreshToken.
func (r *Repository) Scope(sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	return &Store{kv: r.kv, prefix: "session:" + sessionID + ":"}, nil
}

// KV exposes the underlying backend
func (r *Repository) KV() KV {
	return r.kv
}
