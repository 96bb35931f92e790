package consumer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// 失败分类
const (
	errorTypeParse     = "parse"
	errorTypeDiagnosis = "diagnosis"
	errorTypePublish   = "publish"
)

// Metrics 监控指标
type Metrics struct {
	mu sync.RWMutex

	// 消息处理统计
	MessagesProcessed int64 // 处理的消息总数
	MessagesSucceeded int64 // 成功诊断的消息数
	MessagesFailed    int64 // 失败的消息数

	// 错误分类统计
	ErrorsParse     int64 // 请求解析错误
	ErrorsDiagnosis int64 // 诊断流水线错误
	ErrorsPublish   int64 // 结果发布失败

	// 性能指标
	TotalProcessingTime time.Duration
	LastProcessTime     time.Time

	StartTime time.Time
}

func newMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

// GetSnapshot 获取指标快照（线程安全）
func (m *Metrics) GetSnapshot() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Metrics{
		MessagesProcessed:   m.MessagesProcessed,
		MessagesSucceeded:   m.MessagesSucceeded,
		MessagesFailed:      m.MessagesFailed,
		ErrorsParse:         m.ErrorsParse,
		ErrorsDiagnosis:     m.ErrorsDiagnosis,
		ErrorsPublish:       m.ErrorsPublish,
		TotalProcessingTime: m.TotalProcessingTime,
		LastProcessTime:     m.LastProcessTime,
		StartTime:           m.StartTime,
	}
}

// IncrementProcessed 增加处理计数
func (m *Metrics) IncrementProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesProcessed++
}

// IncrementSucceeded 增加成功计数
func (m *Metrics) IncrementSucceeded(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesSucceeded++
	m.TotalProcessingTime += duration
	m.LastProcessTime = time.Now()
}

// IncrementFailed 增加失败计数
func (m *Metrics) IncrementFailed(errorType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MessagesFailed++
	switch errorType {
	case errorTypeParse:
		m.ErrorsParse++
	case errorTypeDiagnosis:
		m.ErrorsDiagnosis++
	case errorTypePublish:
		m.ErrorsPublish++
	}
}

// reportMetrics 定期报告指标
func reportMetrics(ctx context.Context, m *Metrics, interval time.Duration, source string, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot := m.GetSnapshot()

			var avgProcessingTime time.Duration
			if snapshot.MessagesSucceeded > 0 {
				avgProcessingTime = snapshot.TotalProcessingTime / time.Duration(snapshot.MessagesSucceeded)
			}
			successRate := float64(0)
			if snapshot.MessagesProcessed > 0 {
				successRate = float64(snapshot.MessagesSucceeded) / float64(snapshot.MessagesProcessed) * 100
			}

			logger.Info("Metrics report",
				zap.String("source", source),
				zap.Int64("messages_processed", snapshot.MessagesProcessed),
				zap.Int64("messages_succeeded", snapshot.MessagesSucceeded),
				zap.Int64("messages_failed", snapshot.MessagesFailed),
				zap.Float64("success_rate", successRate),
				zap.Int64("errors_parse", snapshot.ErrorsParse),
				zap.Int64("errors_diagnosis", snapshot.ErrorsDiagnosis),
				zap.Int64("errors_publish", snapshot.ErrorsPublish),
				zap.Duration("avg_processing_time", avgProcessingTime),
				zap.Duration("uptime", time.Since(snapshot.StartTime)),
			)
		}
	}
}
