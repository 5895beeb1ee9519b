package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetBuildsOnce(t *testing.T) {
	builds := 0
	r := NewRegistry(time.Minute, func(key string) (string, error) {
		builds++
		return "value-" + key, nil
	}, nil)

	v, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "value-a", v)

	v, err = r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "value-a", v)
	assert.Equal(t, 1, builds)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_BuildError(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry(time.Minute, func(string) (int, error) { return 0, boom }, nil)

	_, err := r.Get("a")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_EvictIdle(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var evicted []string
	r := NewRegistry(10*time.Minute, func(key string) (string, error) {
		return key, nil
	}, func(key, _ string) {
		evicted = append(evicted, key)
	})
	r.now = func() time.Time { return now }

	_, _ = r.Get("old")
	now = now.Add(8 * time.Minute)
	_, _ = r.Get("fresh")
	now = now.Add(5 * time.Minute)

	assert.Equal(t, 1, r.EvictIdle())
	assert.Equal(t, []string{"old"}, evicted)
	assert.Equal(t, 1, r.Len())

	r.Remove("fresh")
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_NoEvictionWithoutTimeout(t *testing.T) {
	r := NewRegistry(0, func(key string) (string, error) { return key, nil }, nil)
	_, _ = r.Get("a")
	assert.Equal(t, 0, r.EvictIdle())
	assert.Equal(t, 1, r.Len())
}
