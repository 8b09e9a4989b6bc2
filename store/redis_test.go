package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/cuisinekit/core"
)

// 需要真实 Redis：CUISINEKIT_REDIS_ADDR=127.0.0.1:6379 go test ./store/...
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("CUISINEKIT_REDIS_ADDR")
	if addr == "" {
		t.Skip("CUISINEKIT_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, addr, 0)
	require.NoError(t, err)
	defer s.Close()

	key := "cuisinekit:test:" + t.Name()
	require.NoError(t, s.Set(ctx, key, []byte("v"), 30))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.True(t, core.IsStoreNotFound(err))
}
