package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/config"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrLatestNotFound 患者没有缓存的最新诊断
var ErrLatestNotFound = errors.New("latest diagnosis not found")

// CacheManager Redis 缓存管理器（每个患者最新一次诊断）
type CacheManager struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewCacheManager 创建缓存管理器
func NewCacheManager(
	cfg *config.Config,
	redisClient *redis.Client,
	logger *zap.Logger,
) *CacheManager {
	return &CacheManager{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Name 实现 service.ResultSink
func (c *CacheManager) Name() string {
	return "redis"
}

// Record 实现 service.ResultSink
func (c *CacheManager) Record(ctx context.Context, d *models.FinalDiagnosis) error {
	return c.UpdateLatest(ctx, d)
}

// UpdateLatest 覆盖患者最新诊断缓存
// 没有 patient_id 的诊断不缓存
func (c *CacheManager) UpdateLatest(ctx context.Context, d *models.FinalDiagnosis) error {
	if d == nil || d.PatientID == "" {
		return nil
	}

	key := c.latestKey(d.PatientID)
	jsonData, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal diagnosis: %w", err)
	}

	err = c.redisClient.Set(
		ctx,
		key,
		jsonData,
		time.Duration(c.config.Diagnosis.Cache.LatestTTL)*time.Second,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to set latest diagnosis cache: %w", err)
	}

	c.logger.Debug("Updated latest diagnosis cache",
		zap.String("patient_id", d.PatientID),
		zap.String("key", key),
		zap.Int("final_class", int(d.FinalClass)),
	)
	return nil
}

// GetLatest 读取患者最新诊断
func (c *CacheManager) GetLatest(ctx context.Context, patientID string) (*models.FinalDiagnosis, error) {
	val, err := c.redisClient.Get(ctx, c.latestKey(patientID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrLatestNotFound, patientID)
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var d models.FinalDiagnosis
	if err := json.Unmarshal([]byte(val), &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal latest diagnosis: %w", err)
	}
	return &d, nil
}

func (c *CacheManager) latestKey(patientID string) string {
	return fmt.Sprintf("%s%s:latest", c.config.Diagnosis.Cache.LatestKeyPrefix, patientID)
}
