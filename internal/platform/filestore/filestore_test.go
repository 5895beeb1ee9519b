package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gallery-portal/internal/session"
)

func TestStore_TokenLifecycle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := session.NewStore(New(path))

	access, err := store.AccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)

	require.NoError(t, store.SetTokens(ctx, "access-1", "refresh-1"))

	// A fresh instance sees what the previous one wrote
	reopened := session.NewStore(New(path))
	access, err = reopened.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", access)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, reopened.Clear(ctx))
	refresh, err := store.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, refresh)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := New(path).Get(context.Background(), session.AccessTokenKey)
	assert.Error(t, err)
}

func TestStore_DeleteMissingKeyDoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	require.NoError(t, New(path).Delete(context.Background(), "absent"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	kv := New(filepath.Join(dir, "session.json"))

	for i := 0; i < 5; i++ {
		require.NoError(t, kv.Set(context.Background(), "k", "v"))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
