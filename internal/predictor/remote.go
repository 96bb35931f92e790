package predictor

import (
	"context"
	"fmt"
	"time"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RemoteRequest 远程模型服务请求
type RemoteRequest struct {
	Model    string    `json:"model"`
	Features []float64 `json:"features"`
}

// RemoteResponse 远程模型服务响应
type RemoteResponse struct {
	Probabilities []float64 `json:"probabilities"`
	Error         string    `json:"error,omitempty"`
}

// RemoteModel 通过 HTTP 调用外部模型服务（如 Python 推理服务）
// 同时满足 BinaryModel 与 MulticlassModel
type RemoteModel struct {
	httpClient  *resty.Client
	name        string
	path        string
	numFeatures int
	numClasses  int
	logger      *zap.Logger
}

// RemoteModelOptions 远程模型配置
type RemoteModelOptions struct {
	BaseURL     string
	Path        string
	Name        string
	NumFeatures int
	NumClasses  int // 二分类为 2
	Timeout     time.Duration
	RetryCount  int
}

// NewRemoteModel 创建远程模型客户端
func NewRemoteModel(opts RemoteModelOptions, logger *zap.Logger) *RemoteModel {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.NumClasses == 0 {
		opts.NumClasses = 2
	}
	if opts.Path == "" {
		opts.Path = "/predict"
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RemoteModel{
		httpClient:  client,
		name:        opts.Name,
		path:        opts.Path,
		numFeatures: opts.NumFeatures,
		numClasses:  opts.NumClasses,
		logger:      logger,
	}
}

func (m *RemoteModel) NumFeatures() int {
	return m.numFeatures
}

func (m *RemoteModel) NumClasses() int {
	return m.numClasses
}

// PredictDistribution 请求远程服务并校验返回的分布长度
func (m *RemoteModel) PredictDistribution(ctx context.Context, x []float64) ([]float64, error) {
	if len(x) != m.numFeatures {
		return nil, &models.ShapeMismatchError{Component: "remote model " + m.name, Expected: m.numFeatures, Actual: len(x)}
	}

	var response RemoteResponse
	resp, err := m.httpClient.R().
		SetContext(ctx).
		SetBody(RemoteRequest{Model: m.name, Features: x}).
		SetResult(&response).
		SetError(&response).
		Post(m.path)
	if err != nil {
		m.logger.Error("Remote model call failed",
			zap.String("model", m.name),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to call remote model %s: %w", m.name, err)
	}
	if resp.IsError() {
		m.logger.Error("Remote model returned error",
			zap.String("model", m.name),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("error", response.Error),
		)
		return nil, fmt.Errorf("remote model %s error: %s (status: %d)", m.name, response.Error, resp.StatusCode())
	}
	if len(response.Probabilities) != m.numClasses {
		return nil, &models.ShapeMismatchError{
			Component: "remote model " + m.name + " output",
			Expected:  m.numClasses,
			Actual:    len(response.Probabilities),
		}
	}

	m.logger.Debug("Remote model prediction",
		zap.String("model", m.name),
		zap.Float64s("probabilities", response.Probabilities),
	)
	return response.Probabilities, nil
}

// PredictProba 二分类：取第二列（正类）概率
func (m *RemoteModel) PredictProba(ctx context.Context, x []float64) (float64, error) {
	dist, err := m.PredictDistribution(ctx, x)
	if err != nil {
		return 0, err
	}
	return dist[len(dist)-1], nil
}
