package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// StreamMessage Redis Streams 消息
type StreamMessage struct {
	Stream string
	ID     string
	Values map[string]interface{}
}

// Data 取出 data 字段（JSON 负载）
func (m StreamMessage) Data() (string, error) {
	val, ok := m.Values["data"]
	if !ok {
		return "", fmt.Errorf("missing data field in message %s", m.ID)
	}
	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("invalid data format in message %s", m.ID)
	}
	return str, nil
}

// PublishJSONToStream 以 {data, timestamp} 形式发布 JSON 消息
// maxLen > 0 时按近似长度裁剪 Stream
func PublishJSONToStream(ctx context.Context, client *redis.Client, stream string, data interface{}, maxLen int64) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal stream payload: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(payload),
			"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
		},
	}
	if maxLen > 0 {
		args.MaxLen = maxLen
		args.Approx = true
	}
	return client.XAdd(ctx, args).Result()
}

// ReadFromStream XREADGROUP 读取新消息，超时无消息时返回空切片
func ReadFromStream(ctx context.Context, client *redis.Client, stream, group, consumer string, count int64, block time.Duration) ([]StreamMessage, error) {
	streams, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []StreamMessage{}, nil
		}
		return nil, err
	}

	var messages []StreamMessage
	for _, s := range streams {
		for _, msg := range s.Messages {
			messages = append(messages, StreamMessage{
				Stream: s.Stream,
				ID:     msg.ID,
				Values: msg.Values,
			})
		}
	}
	return messages, nil
}

// Ack 确认消息
func Ack(ctx context.Context, client *redis.Client, stream, group string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return client.XAck(ctx, stream, group, ids...).Err()
}

// CreateConsumerGroup 创建消费者组（Stream 不存在时一并创建，组已存在视为成功）
func CreateConsumerGroup(ctx context.Context, client *redis.Client, stream, group string) error {
	err := client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}
