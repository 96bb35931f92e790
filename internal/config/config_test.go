package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, ":8090", cfg.HTTP.Addr)

	assert.True(t, cfg.DBEnabled)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "owlrd", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.False(t, cfg.MQTTEnabled)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)

	assert.Equal(t, "artifacts/manifest.yaml", cfg.Diagnosis.ManifestPath)
	assert.Equal(t, 2*time.Second, cfg.Diagnosis.PredictorTimeout)
	assert.Equal(t, "diagnosis:request:stream", cfg.Diagnosis.Stream.Input)
	assert.Equal(t, "diagnosis:result:stream", cfg.Diagnosis.Stream.Output)
	assert.Equal(t, "diagnosis-group", cfg.Diagnosis.Stream.ConsumerGroup)
	assert.Equal(t, int64(10), cfg.Diagnosis.Stream.BatchSize)
	assert.Equal(t, "diagnosis:patient:", cfg.Diagnosis.Cache.LatestKeyPrefix)
	assert.Equal(t, 86400, cfg.Diagnosis.Cache.LatestTTL)
	assert.Equal(t, "vitals/+/reading", cfg.Diagnosis.Topic.Vitals)
	assert.Equal(t, "diagnosis/%s/result", cfg.Diagnosis.Topic.Result)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("REDIS_ADDR", "test-redis:6380")
	t.Setenv("MQTT_ENABLED", "true")
	t.Setenv("PREDICTOR_TIMEOUT", "750ms")
	t.Setenv("STREAM_INPUT", "custom:stream")
	t.Setenv("CACHE_LATEST_TTL", "60")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "test-redis:6380", cfg.Redis.Addr)
	assert.True(t, cfg.MQTTEnabled)
	assert.Equal(t, 750*time.Millisecond, cfg.Diagnosis.PredictorTimeout)
	assert.Equal(t, "custom:stream", cfg.Diagnosis.Stream.Input)
	assert.Equal(t, 60, cfg.Diagnosis.Cache.LatestTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ServicePrefixOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "shared-db")
	t.Setenv("DIAGNOSIS_DB_HOST", "diagnosis-db")
	t.Setenv("DIAGNOSIS_REDIS_ADDR", "diagnosis-redis:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "diagnosis-db", cfg.Database.Host)
	assert.Equal(t, "diagnosis-redis:6379", cfg.Redis.Addr)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("PREDICTOR_TIMEOUT", "-1s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 2*time.Second, cfg.Diagnosis.PredictorTimeout)
}
