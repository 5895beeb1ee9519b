package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetTokens(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV(0)
	store := NewStore(kv)

	require.NoError(t, store.SetTokens(ctx, "access-1", "refresh-1"))

	access, err := store.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", access)

	refresh, err := store.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", refresh)

	value, ok, err := kv.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "access-1", value)
}

func TestStore_SetTokens_EmptyRefreshKeepsExisting(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV(0))

	require.NoError(t, store.SetTokens(ctx, "access-1", "refresh-1"))
	require.NoError(t, store.SetTokens(ctx, "access-2", ""))

	access, _ := store.AccessToken(ctx)
	refresh, _ := store.RefreshToken(ctx)
	assert.Equal(t, "access-2", access)
	assert.Equal(t, "refresh-1", refresh)
}

func TestStore_SetTokens_EmptyRefreshExtendsExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	kv := NewMemoryKV(time.Hour)
	kv.now = func() time.Time { return now }
	store := NewStore(kv)

	require.NoError(t, store.SetTokens(ctx, "access-1", "refresh-1"))
	now = now.Add(50 * time.Minute)
	require.NoError(t, store.SetTokens(ctx, "access-2", ""))

	// Past the first write's expiry but inside the second's
	now = now.Add(30 * time.Minute)
	access, _ := store.AccessToken(ctx)
	refresh, _ := store.RefreshToken(ctx)
	assert.Equal(t, "access-2", access)
	assert.Equal(t, "refresh-1", refresh)
}

func TestStore_SetTokens_RequiresAccess(t *testing.T) {
	store := NewStore(NewMemoryKV(0))
	err := store.SetTokens(context.Background(), "", "refresh")
	assert.ErrorIs(t, err, ErrEmptyAccessToken)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV(0))
	require.NoError(t, store.SetTokens(ctx, "a", "r"))

	require.NoError(t, store.Clear(ctx))

	access, _ := store.AccessToken(ctx)
	refresh, _ := store.RefreshToken(ctx)
	assert.Empty(t, access)
	assert.Empty(t, refresh)

	has, err := store.HasSession(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRepository_ScopeIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV(0)
	repo := NewRepository(kv)

	alice, err := repo.Scope("alice")
	require.NoError(t, err)
	bob, err := repo.Scope("bob")
	require.NoError(t, err)

	require.NoError(t, alice.SetTokens(ctx, "alice-access", "alice-refresh"))

	token, _ := bob.AccessToken(ctx)
	assert.Empty(t, token)

	value, ok, _ := kv.Get(ctx, "session:alice:accessToken")
	assert.True(t, ok)
	assert.Equal(t, "alice-access", value)

	require.NoError(t, bob.Clear(ctx))
	token, _ = alice.AccessToken(ctx)
	assert.Equal(t, "alice-access", token)
}

func TestRepository_ScopeRequiresID(t *testing.T) {
	_, err := NewRepository(NewMemoryKV(0)).Scope("")
	assert.ErrorIs(t, err, ErrEmptySessionID)
}

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingKV) Set(context.Context, string, string) error         { return f.err }
func (f failingKV) Delete(context.Context, ...string) error           { return f.err }

func TestStore_PropagatesBackendErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("backend down")
	store := NewStore(failingKV{err: boom})

	_, err := store.AccessToken(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.SetTokens(ctx, "a", "r"), boom)
	assert.ErrorIs(t, store.Clear(ctx), boom)
}

func TestMemoryKV_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	kv := NewMemoryKV(time.Minute)
	kv.now = func() time.Time { return now }

	require.NoError(t, kv.Set(ctx, "k", "v"))
	_, ok, _ := kv.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = kv.Get(ctx, "k")
	assert.False(t, ok)

	purged, err := kv.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Zero(t, kv.Len())
}
