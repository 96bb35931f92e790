package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/common/database"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/config"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/consumer"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/httpapi"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/registry"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/repository"

	mqttcommon "github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/common/mqtt"
	rediscommon "github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/common/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App 诊断服务进程：HTTP、Redis Streams 消费者、MQTT 消费者共用一条诊断流水线
// Postgres / Redis / MQTT 均可按配置关闭
type App struct {
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *mqttcommon.Client

	diagnosis      *DiagnosisService
	streamConsumer *consumer.StreamConsumer
	mqttConsumer   *consumer.MQTTConsumer
	router         *httpapi.Router
	server         *Server
}

// NewApp 加载模型并连接已启用的依赖
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	reg, err := registry.Load(cfg.Diagnosis.ManifestPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load models: %w", err)
	}

	a := &App{config: cfg, logger: logger}
	var sinks []ResultSink
	var store httpapi.DiagnosisStore
	var latest httpapi.LatestStore
	checks := map[string]httpapi.HealthCheck{}

	if cfg.DBEnabled {
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.db = db
		repo := repository.NewDiagnosisRepository(db, logger)
		sinks = append(sinks, repo)
		store = repo
		checks["postgres"] = db.PingContext
	}

	if cfg.RedisEnabled {
		redisClient, err := rediscommon.Connect(ctx, &cfg.Redis)
		if err != nil {
			a.closeConnections()
			return nil, err
		}
		a.redisClient = redisClient
		cache := consumer.NewCacheManager(cfg, redisClient, logger)
		sinks = append(sinks, cache)
		latest = cache
		checks["redis"] = func(ctx context.Context) error {
			return rediscommon.Ping(ctx, redisClient)
		}
	}

	a.diagnosis = NewDiagnosisService(reg, cfg.Diagnosis.PredictorTimeout, logger, sinks...)

	if a.redisClient != nil {
		a.streamConsumer = consumer.NewStreamConsumer(cfg, a.redisClient, a.diagnosis, logger)
	}

	if cfg.MQTTEnabled {
		mqttClient, err := mqttcommon.NewClient(&cfg.MQTT, logger)
		if err != nil {
			a.closeConnections()
			return nil, fmt.Errorf("failed to connect to mqtt: %w", err)
		}
		a.mqttClient = mqttClient
		a.mqttConsumer = consumer.NewMQTTConsumer(cfg, mqttClient, a.diagnosis, logger)
	}

	a.router = httpapi.NewRouter(logger)
	a.router.RegisterDiagnosisRoutes(httpapi.NewDiagnosisHandler(
		a.diagnosis, store, latest, reg, cfg.Diagnosis.Export.MaxRows, logger,
	))
	a.router.RegisterHealthRoutes(httpapi.NewHealthHandler(reg.Version(), checks))
	a.server = NewServer(cfg.HTTP.Addr, a.router, logger)

	logger.Info("Diagnosis app initialized",
		zap.String("model_version", reg.Version()),
		zap.Bool("postgres", a.db != nil),
		zap.Bool("redis", a.redisClient != nil),
		zap.Bool("mqtt", a.mqttClient != nil),
		zap.Int("sinks", len(sinks)),
	)
	return a, nil
}

// Diagnosis 诊断流水线
func (a *App) Diagnosis() *DiagnosisService {
	return a.diagnosis
}

// Handler HTTP 路由
func (a *App) Handler() http.Handler {
	return a.router
}

// Start 启动 HTTP 与消费者，阻塞直到 ctx 取消或任一组件失败
func (a *App) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	// 任一组件出错或 ctx 取消时关闭 HTTP，使 Wait 能返回
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error shutting down HTTP server", zap.Error(err))
		}
		return nil
	})
	if a.streamConsumer != nil {
		g.Go(func() error {
			if err := a.streamConsumer.Start(gctx); err != nil {
				return fmt.Errorf("stream consumer: %w", err)
			}
			return nil
		})
	}
	if a.mqttConsumer != nil {
		g.Go(func() error {
			if err := a.mqttConsumer.Start(gctx); err != nil {
				return fmt.Errorf("mqtt consumer: %w", err)
			}
			return nil
		})
	}

	a.logger.Info("Diagnosis service started", zap.String("addr", a.config.HTTP.Addr))
	return g.Wait()
}

// Stop 停止服务并关闭连接
func (a *App) Stop(ctx context.Context) error {
	a.logger.Info("Stopping diagnosis service")

	if a.server != nil {
		if err := a.server.Stop(ctx); err != nil {
			a.logger.Error("Error stopping HTTP server", zap.Error(err))
		}
	}
	if a.mqttConsumer != nil {
		if err := a.mqttConsumer.Stop(ctx); err != nil {
			a.logger.Error("Error stopping MQTT consumer", zap.Error(err))
		}
	}
	a.closeConnections()

	a.logger.Info("Diagnosis service stopped")
	return nil
}

func (a *App) closeConnections() {
	if a.mqttClient != nil {
		a.mqttClient.Disconnect()
	}
	if err := rediscommon.Close(a.redisClient); err != nil {
		a.logger.Error("Error closing Redis client", zap.Error(err))
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Error("Error closing database connection", zap.Error(err))
	}
}
