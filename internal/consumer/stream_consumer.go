package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/config"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

	rediscommon "github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/common/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// MetricsInterval 指标报告周期
const MetricsInterval = 60 * time.Second

// StreamConsumer Redis Streams 诊断请求消费者
// 从输入流读取 DiagnoseRequest，诊断后向输出流发布 DiagnoseResult
type StreamConsumer struct {
	config      *config.Config
	redisClient *redis.Client
	diagnoser   Diagnoser
	logger      *zap.Logger
	metrics     *Metrics
}

// NewStreamConsumer 创建 Streams 消费者
func NewStreamConsumer(
	cfg *config.Config,
	redisClient *redis.Client,
	diagnoser Diagnoser,
	logger *zap.Logger,
) *StreamConsumer {
	return &StreamConsumer{
		config:      cfg,
		redisClient: redisClient,
		diagnoser:   diagnoser,
		logger:      logger,
		metrics:     newMetrics(),
	}
}

// Metrics 当前指标快照
func (c *StreamConsumer) Metrics() Metrics {
	return c.metrics.GetSnapshot()
}

// Start 启动消费者，阻塞直到 ctx 取消
func (c *StreamConsumer) Start(ctx context.Context) error {
	stream := c.config.Diagnosis.Stream.Input
	if err := rediscommon.CreateConsumerGroup(ctx, c.redisClient, stream, c.config.Diagnosis.Stream.ConsumerGroup); err != nil {
		return fmt.Errorf("failed to create consumer group for %s: %w", stream, err)
	}

	c.logger.Info("Stream consumer started",
		zap.String("consumer_group", c.config.Diagnosis.Stream.ConsumerGroup),
		zap.String("consumer_name", c.config.Diagnosis.Stream.ConsumerName),
		zap.String("stream", stream),
	)

	metricsCtx, metricsCancel := context.WithCancel(ctx)
	defer metricsCancel()
	go reportMetrics(metricsCtx, c.metrics, MetricsInterval, "stream", c.logger)

	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.consumeStream(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Error("Failed to consume stream",
					zap.Error(err),
					zap.Duration("backoff", backoffDuration),
				)

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoffDuration):
					backoffDuration *= 2
					if backoffDuration > maxBackoff {
						backoffDuration = maxBackoff
					}
				}
			} else {
				backoffDuration = time.Second
			}
		}
	}
}

// consumeStream 读取一批消息并逐条处理
// 每条消息都会被确认，失败的请求以 success=false 的结果发布
func (c *StreamConsumer) consumeStream(ctx context.Context) error {
	cfg := c.config.Diagnosis.Stream
	messages, err := rediscommon.ReadFromStream(
		ctx,
		c.redisClient,
		cfg.Input,
		cfg.ConsumerGroup,
		cfg.ConsumerName,
		cfg.BatchSize,
		cfg.Block,
	)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, msg := range messages {
		c.metrics.IncrementProcessed()
		if err := c.processMessage(ctx, msg); err != nil {
			c.logger.Error("Failed to process message",
				zap.String("stream_id", msg.ID),
				zap.Error(err),
			)
		}
		if err := rediscommon.Ack(ctx, c.redisClient, msg.Stream, cfg.ConsumerGroup, msg.ID); err != nil {
			c.logger.Warn("Failed to ack message",
				zap.String("stream_id", msg.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// processMessage 处理单条诊断请求
func (c *StreamConsumer) processMessage(ctx context.Context, msg rediscommon.StreamMessage) error {
	start := time.Now()

	var req models.DiagnoseRequest
	data, err := msg.Data()
	if err == nil {
		err = json.Unmarshal([]byte(data), &req)
	}
	if err != nil {
		c.metrics.IncrementFailed(errorTypeParse)
		res := models.DiagnoseResult{Error: fmt.Sprintf("invalid request: %v", err)}
		if pubErr := c.publish(ctx, res); pubErr != nil {
			return pubErr
		}
		return fmt.Errorf("failed to parse request: %w", err)
	}

	d, diagErr := c.diagnoser.Diagnose(ctx, req)
	res := newResult(req, d, diagErr)
	if err := c.publish(ctx, res); err != nil {
		c.metrics.IncrementFailed(errorTypePublish)
		return err
	}

	if diagErr != nil {
		c.metrics.IncrementFailed(errorTypeDiagnosis)
		return fmt.Errorf("diagnosis failed: %w", diagErr)
	}

	c.metrics.IncrementSucceeded(time.Since(start))
	c.logger.Debug("Published diagnosis result",
		zap.String("stream_id", msg.ID),
		zap.String("diagnosis_id", d.ID),
		zap.String("patient_id", d.PatientID),
	)
	return nil
}

func (c *StreamConsumer) publish(ctx context.Context, res models.DiagnoseResult) error {
	cfg := c.config.Diagnosis.Stream
	if _, err := rediscommon.PublishJSONToStream(ctx, c.redisClient, cfg.Output, res, cfg.MaxLen); err != nil {
		return fmt.Errorf("failed to publish result to %s: %w", cfg.Output, err)
	}
	return nil
}
