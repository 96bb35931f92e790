// Package redis Redis 客户端与 Streams 工具
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/common/config"

	"github.com/go-redis/redis/v8"
)

const pingTimeout = 3 * time.Second

// Connect 建立客户端并确认服务可达，失败时释放连接池
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	client := redis.NewClient(opts)

	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Ping 带超时的健康检查，同时用于 /health
func Ping(ctx context.Context, client *redis.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return client.Ping(pingCtx).Err()
}

// Close 关闭连接（允许 nil）
func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
