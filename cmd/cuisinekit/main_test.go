package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/cuisinekit/affinity"
	"github.com/rushteam/cuisinekit/config"
)

func TestJitterSource(t *testing.T) {
	assert.Equal(t, affinity.NoJitter, jitterSource(config.EngineConfig{Jitter: false, Seed: 7}))
	assert.Equal(t, affinity.ProcessJitter, jitterSource(config.EngineConfig{Jitter: true}))

	a := jitterSource(config.EngineConfig{Jitter: true, Seed: 7})
	b := jitterSource(config.EngineConfig{Jitter: true, Seed: 7})
	assert.Equal(t, a.Float64(), b.Float64())
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	st, err := openStore(ctx, config.CacheConfig{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, st)

	st, err = openStore(ctx, config.CacheConfig{Backend: "memory"})
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close()
	assert.Equal(t, "memory", st.Name())

	assert.Len(t, storeFilters(st, config.FilterConfig{BlacklistKey: "bl", BlockPrefix: "blk"}), 2)
	assert.Empty(t, storeFilters(st, config.FilterConfig{}))
}
