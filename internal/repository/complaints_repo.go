package repository

import (
	"context"
	"time"

	"staywise-data/internal/domain"
)

// ComplaintView 投诉列表视图（带租客展示信息）
type ComplaintView struct {
	domain.Complaint
	TenantName  string `json:"tenantName"`
	TenantEmail string `json:"tenantEmail"`
}

// ComplaintsRepository 投诉记录（按 owner_id 过滤）
type ComplaintsRepository interface {
	Create(ctx context.Context, ownerID, tenantID, title, description string) (*domain.Complaint, error)

	// List tenantID 非空时只返回该租客自己的投诉；按创建时间倒序分页
	List(ctx context.Context, ownerID, tenantID string, page, size int) ([]ComplaintView, int, error)

	SetStatus(ctx context.Context, ownerID, complaintID string, resolved bool, note string, at time.Time) (*domain.Complaint, error)
}

// NotificationsRepository 通知记录
type NotificationsRepository interface {
	Create(ctx context.Context, ownerID, userID, channel, message string) (*domain.Notification, error)
}
