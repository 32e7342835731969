package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WhatsAppSender 出站 WhatsApp 消息发送
type WhatsAppSender interface {
	SendText(ctx context.Context, phone, message string) error
}

// WhatsAppRequest 网关 API 请求
type WhatsAppRequest struct {
	To   string `json:"to"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// WhatsAppResponse 网关 API 响应
type WhatsAppResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	Error     string `json:"error,omitempty"`
}

// WhatsAppClient WhatsApp 网关客户端
type WhatsAppClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewWhatsAppClient 创建 WhatsApp 网关客户端
func NewWhatsAppClient(baseURL, apiKey string, logger *zap.Logger) *WhatsAppClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(apiKey)

	return &WhatsAppClient{
		httpClient: client,
		logger:     logger,
	}
}

// SendText 发送文本消息
func (c *WhatsAppClient) SendText(ctx context.Context, phone, message string) error {
	request := WhatsAppRequest{
		To:   phone,
		Type: "text",
		Text: message,
	}

	var response WhatsAppResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post("/messages")

	if err != nil {
		c.logger.Error("WhatsApp API call failed",
			zap.Error(err),
			zap.Int("status_code", resp.StatusCode()),
		)
		return fmt.Errorf("failed to call WhatsApp API: %w", err)
	}

	if !response.Success {
		c.logger.Error("WhatsApp API returned error",
			zap.String("error", response.Error),
		)
		return fmt.Errorf("WhatsApp API error: %s", response.Error)
	}

	c.logger.Info("WhatsApp message sent",
		zap.String("message_id", response.MessageID),
	)
	return nil
}

var _ WhatsAppSender = (*WhatsAppClient)(nil)

// NopWhatsAppSender 网关未配置时的空实现（消息只入库排队）
type NopWhatsAppSender struct{}

func (NopWhatsAppSender) SendText(ctx context.Context, phone, message string) error {
	return nil
}
