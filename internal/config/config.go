package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/common/config"
)

// Config wisefido-diagnosis 配置
type Config struct {
	HTTP struct {
		Addr string
	}

	DBEnabled bool
	Database  commoncfg.DatabaseConfig

	RedisEnabled bool
	Redis        commoncfg.RedisConfig

	MQTTEnabled bool
	MQTT        commoncfg.MQTTConfig

	// 诊断流水线配置
	Diagnosis struct {
		ManifestPath     string        // 模型清单路径
		PredictorTimeout time.Duration // 单个上游预测器超时

		// Redis Streams 配置
		Stream struct {
			Input         string // 诊断请求流
			Output        string // 诊断结果流
			ConsumerGroup string
			ConsumerName  string
			BatchSize     int64
			Block         time.Duration
			MaxLen        int64 // 结果流近似长度上限
		}

		// Redis 缓存配置
		Cache struct {
			LatestKeyPrefix string // 最新诊断缓存键前缀，如 "diagnosis:patient:"
			LatestTTL       int    // 秒
		}

		// MQTT 主题
		Topic struct {
			Vitals string // 订阅，如 "vitals/+/reading"
			Result string // 发布模板，%s 为 patient_id
		}

		Export struct {
			MaxRows int
		}
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 从环境变量加载配置（带默认值）
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8090")

	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "owlrd")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)
	cfg.Database.ConnMaxLifetime = parseDuration(getEnv("DB_CONN_MAX_LIFETIME", "30m"), 30*time.Minute)

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)
	cfg.Redis.PoolSize = parseInt(getEnv("REDIS_POOL_SIZE", "0"), 0)

	// MQTT 默认禁用
	cfg.MQTTEnabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "wisefido-diagnosis")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = byte(parseInt(getEnv("MQTT_QOS", "1"), 1))

	cfg.Diagnosis.ManifestPath = getEnv("MODEL_MANIFEST", "artifacts/manifest.yaml")
	cfg.Diagnosis.PredictorTimeout = parseDuration(getEnv("PREDICTOR_TIMEOUT", "2s"), 2*time.Second)

	cfg.Diagnosis.Stream.Input = getEnv("STREAM_INPUT", "diagnosis:request:stream")
	cfg.Diagnosis.Stream.Output = getEnv("STREAM_OUTPUT", "diagnosis:result:stream")
	cfg.Diagnosis.Stream.ConsumerGroup = getEnv("CONSUMER_GROUP", "diagnosis-group")
	cfg.Diagnosis.Stream.ConsumerName = getEnv("CONSUMER_NAME", "diagnosis-1")
	cfg.Diagnosis.Stream.BatchSize = int64(parseInt(getEnv("STREAM_BATCH_SIZE", "10"), 10))
	cfg.Diagnosis.Stream.Block = parseDuration(getEnv("STREAM_BLOCK", "5s"), 5*time.Second)
	cfg.Diagnosis.Stream.MaxLen = int64(parseInt(getEnv("STREAM_OUTPUT_MAXLEN", "10000"), 10000))

	cfg.Diagnosis.Cache.LatestKeyPrefix = getEnv("CACHE_LATEST_PREFIX", "diagnosis:patient:")
	cfg.Diagnosis.Cache.LatestTTL = parseInt(getEnv("CACHE_LATEST_TTL", "86400"), 86400) // 1天

	cfg.Diagnosis.Topic.Vitals = getEnv("MQTT_TOPIC_VITALS", "vitals/+/reading")
	cfg.Diagnosis.Topic.Result = getEnv("MQTT_TOPIC_RESULT", "diagnosis/%s/result")

	cfg.Diagnosis.Export.MaxRows = parseInt(getEnv("EXPORT_MAX_ROWS", "5000"), 5000)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// 与其他服务共用一套 DB_*/REDIS_*/MQTT_* 时，可用 DIAGNOSIS_ 前缀单独覆盖
	cfg.Database.LoadFromEnv("DIAGNOSIS_DB")
	cfg.Redis.LoadFromEnv("DIAGNOSIS_REDIS")
	cfg.MQTT.LoadFromEnv("DIAGNOSIS_MQTT")

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
