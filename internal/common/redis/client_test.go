package redis

import (
	"context"
	"testing"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), &config.RedisConfig{Addr: mr.Addr(), PoolSize: 4})
	require.NoError(t, err)
	defer Close(client)

	assert.Equal(t, 4, client.Options().PoolSize)
	assert.NoError(t, Ping(context.Background(), client))
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := Connect(context.Background(), &config.RedisConfig{Addr: addr})
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), addr)
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
