// Package database PostgreSQL 连接
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/common/config"

	_ "github.com/lib/pq"
)

// NewPostgresDB 打开连接池并 Ping 一次
func NewPostgresDB(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Close 关闭连接（允许 nil）
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
