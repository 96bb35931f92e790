// Package config 各服务共享的基础设施配置
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig PostgreSQL 配置
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConns        int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int // 0 使用 go-redis 默认值
}

// MQTTConfig MQTT 配置
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// GetDSN 数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// LoadFromEnv 用 prefix_HOST、prefix_PORT 等环境变量覆盖已有值
func (c *DatabaseConfig) LoadFromEnv(prefix string) {
	c.Host = envOr(prefix+"_HOST", c.Host)
	c.Port = envInt(prefix+"_PORT", c.Port)
	c.User = envOr(prefix+"_USER", c.User)
	c.Password = envOr(prefix+"_PASSWORD", c.Password)
	c.Database = envOr(prefix+"_NAME", c.Database)
	c.SSLMode = envOr(prefix+"_SSLMODE", c.SSLMode)
	c.MaxConns = envInt(prefix+"_MAX_CONNS", c.MaxConns)
	c.MaxIdle = envInt(prefix+"_MAX_IDLE", c.MaxIdle)
}

// LoadFromEnv 用 prefix_ADDR、prefix_PASSWORD、prefix_DB 覆盖已有值
func (c *RedisConfig) LoadFromEnv(prefix string) {
	c.Addr = envOr(prefix+"_ADDR", c.Addr)
	c.Password = envOr(prefix+"_PASSWORD", c.Password)
	c.DB = envInt(prefix+"_DB", c.DB)
	c.PoolSize = envInt(prefix+"_POOL_SIZE", c.PoolSize)
}

// LoadFromEnv 用 prefix_BROKER 等环境变量覆盖已有值
func (c *MQTTConfig) LoadFromEnv(prefix string) {
	c.Broker = envOr(prefix+"_BROKER", c.Broker)
	c.ClientID = envOr(prefix+"_CLIENT_ID", c.ClientID)
	c.Username = envOr(prefix+"_USERNAME", c.Username)
	c.Password = envOr(prefix+"_PASSWORD", c.Password)
	if qos := envInt(prefix+"_QOS", int(c.QoS)); qos >= 0 && qos <= 2 {
		c.QoS = byte(qos)
	}
}

func envOr(key, current string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return current
}

func envInt(key string, current int) int {
	v := os.Getenv(key)
	if v == "" {
		return current
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return current
	}
	return i
}
