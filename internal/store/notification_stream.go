package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// NotificationStream 通知出站队列：消息发到 Redis Stream，
// 由进程外的投递 worker 消费（投递本身是 fire-and-forget）
const NotificationStream = "staywise:notifications"

// StreamPublisher Redis Streams 发布器
type StreamPublisher struct {
	c *redis.Client
}

func NewStreamPublisher(c *redis.Client) *StreamPublisher {
	return &StreamPublisher{c: c}
}

// PublishJSON 序列化为 JSON 后 XADD 到指定 stream
func (p *StreamPublisher) PublishJSON(ctx context.Context, stream string, data any) (string, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return p.c.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data":      string(jsonBytes),
			"timestamp": time.Now().Unix(),
		},
	}).Result()
}
