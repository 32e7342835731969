package service

import (
	"context"

	"staywise-data/internal/store"

	"go.uber.org/zap"
)

// QueuedMessage 出站通知消息
type QueuedMessage struct {
	OwnerID string `json:"ownerId"`
	UserID  string `json:"userId"`
	Channel string `json:"channel,omitempty"`
	Message string `json:"message"`
}

// Notifier 出站通知投递接口。Queue 不返回错误：
// 投递失败不能影响已提交的业务事务
type Notifier interface {
	Queue(ctx context.Context, msg QueuedMessage)
}

// NopNotifier Redis 未配置时的空实现
type NopNotifier struct{}

func (NopNotifier) Queue(ctx context.Context, msg QueuedMessage) {}

// StreamNotifier 将通知发布到 Redis Stream，由投递 worker 消费
type StreamNotifier struct {
	publisher *store.StreamPublisher
	logger    *zap.Logger
}

func NewStreamNotifier(publisher *store.StreamPublisher, logger *zap.Logger) *StreamNotifier {
	return &StreamNotifier{publisher: publisher, logger: logger}
}

func (n *StreamNotifier) Queue(ctx context.Context, msg QueuedMessage) {
	if msg.Channel == "" {
		msg.Channel = "WHATSAPP"
	}
	id, err := n.publisher.PublishJSON(ctx, store.NotificationStream, msg)
	if err != nil {
		n.logger.Warn("Notification publish failed",
			zap.String("user_id", msg.UserID),
			zap.Error(err),
		)
		return
	}
	n.logger.Debug("Notification queued",
		zap.String("user_id", msg.UserID),
		zap.String("stream_id", id),
	)
}

var (
	_ Notifier = (NopNotifier{})
	_ Notifier = (*StreamNotifier)(nil)
)
