package domain

import "time"

// 通知状态：QUEUED 入库即算成功，投递是异步的（fire-and-forget）
const (
	NotificationQueued = "QUEUED"
	NotificationSent   = "SENT"
)

// Notification 站内通知记录（对应 notifications 表）
// 租客创建时生成欢迎通知，收据发送时生成收据通知
type Notification struct {
	NotificationID string    `db:"notification_id"`
	OwnerID        string    `db:"owner_id"`
	UserID         string    `db:"user_id"`
	Channel        string    `db:"channel"`
	Message        string    `db:"message"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
}

// Principal 认证边界传入的已验证身份三元组，core 完全信任它
type Principal struct {
	UserID  string
	OwnerID string
	Role    string
}

// CanManage OWNER/MANAGER 拥有本业主全部资源的管理权限
func (p Principal) CanManage() bool {
	return p.Role == RoleOwner || p.Role == RoleManager
}

// CurrentPeriod 当前自然账期 (year, month)
func CurrentPeriod(now time.Time) (int, int) {
	return now.Year(), int(now.Month())
}
