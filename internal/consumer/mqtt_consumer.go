package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/config"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"

	mqttcommon "github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/common/mqtt"

	"go.uber.org/zap"
)

// MQTTClient 消费者所需的 MQTT 能力（mqttcommon.Client 实现）
type MQTTClient interface {
	Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error
	Unsubscribe(topics ...string) error
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTConsumer 床旁设备生命体征消费者
// 订阅 vitals/{patient_id}/reading，诊断结果发布到 diagnosis/{patient_id}/result
type MQTTConsumer struct {
	config     *config.Config
	mqttClient MQTTClient
	diagnoser  Diagnoser
	logger     *zap.Logger
	metrics    *Metrics
	timeout    time.Duration
}

// NewMQTTConsumer 创建 MQTT 消费者
func NewMQTTConsumer(
	cfg *config.Config,
	mqttClient MQTTClient,
	diagnoser Diagnoser,
	logger *zap.Logger,
) *MQTTConsumer {
	return &MQTTConsumer{
		config:     cfg,
		mqttClient: mqttClient,
		diagnoser:  diagnoser,
		logger:     logger,
		metrics:    newMetrics(),
		timeout:    30 * time.Second,
	}
}

// Metrics 当前指标快照
func (c *MQTTConsumer) Metrics() Metrics {
	return c.metrics.GetSnapshot()
}

// Start 订阅生命体征主题，阻塞直到 ctx 取消
func (c *MQTTConsumer) Start(ctx context.Context) error {
	topic := c.config.Diagnosis.Topic.Vitals
	if err := c.mqttClient.Subscribe(topic, c.config.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to vitals topic: %w", err)
	}

	c.logger.Info("MQTT consumer started", zap.String("topic", topic))

	go reportMetrics(ctx, c.metrics, MetricsInterval, "mqtt", c.logger)

	<-ctx.Done()
	return nil
}

// Stop 取消订阅
func (c *MQTTConsumer) Stop(ctx context.Context) error {
	if err := c.mqttClient.Unsubscribe(c.config.Diagnosis.Topic.Vitals); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}
	c.logger.Info("MQTT consumer stopped")
	return nil
}

// handleMessage 处理一条生命体征消息
// 负载可以是完整的 DiagnoseRequest，也可以只是 vitals 对象
func (c *MQTTConsumer) handleMessage(topic string, payload []byte) error {
	c.logger.Debug("Received MQTT message",
		zap.String("topic", topic),
		zap.Int("payload_size", len(payload)),
	)
	c.metrics.IncrementProcessed()
	start := time.Now()

	// 主题格式: vitals/{patient_id}/reading
	parts := strings.Split(topic, "/")
	if len(parts) < 3 || parts[1] == "" {
		c.metrics.IncrementFailed(errorTypeParse)
		return fmt.Errorf("invalid topic format: %s", topic)
	}
	patientID := parts[1]

	req, err := parseVitalsPayload(payload)
	if err != nil {
		c.metrics.IncrementFailed(errorTypeParse)
		res := models.DiagnoseResult{PatientID: patientID, Error: fmt.Sprintf("invalid request: %v", err)}
		if pubErr := c.publish(patientID, res); pubErr != nil {
			return pubErr
		}
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	req.PatientID = patientID

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	d, diagErr := c.diagnoser.Diagnose(ctx, req)
	if err := c.publish(patientID, newResult(req, d, diagErr)); err != nil {
		c.metrics.IncrementFailed(errorTypePublish)
		return err
	}
	if diagErr != nil {
		c.metrics.IncrementFailed(errorTypeDiagnosis)
		return fmt.Errorf("diagnosis failed for patient %s: %w", patientID, diagErr)
	}

	c.metrics.IncrementSucceeded(time.Since(start))
	c.logger.Info("Published diagnosis result",
		zap.String("patient_id", patientID),
		zap.String("diagnosis_id", d.ID),
		zap.Int("final_class", int(d.FinalClass)),
	)
	return nil
}

func (c *MQTTConsumer) publish(patientID string, res models.DiagnoseResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	topic := fmt.Sprintf(c.config.Diagnosis.Topic.Result, patientID)
	return c.mqttClient.Publish(topic, c.config.MQTT.QoS, false, data)
}

func parseVitalsPayload(payload []byte) (models.DiagnoseRequest, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return models.DiagnoseRequest{}, err
	}

	var req models.DiagnoseRequest
	if _, ok := probe["vitals"]; ok {
		err := json.Unmarshal(payload, &req)
		return req, err
	}
	err := json.Unmarshal(payload, &req.Vitals)
	return req, err
}
