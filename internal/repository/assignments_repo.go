package repository

import (
	"context"
	"database/sql"
	"time"

	"staywise-data/internal/domain"
)

// AssignParams 入住参数。TenantID 与 NewTenant 二选一
type AssignParams struct {
	TenantID  string
	NewTenant *NewTenantUser

	BedID      string // 可空（HOUSE 类物业直接挂楼栋）
	RoomID     string
	BuildingID string

	StartDate   time.Time
	MonthlyRent int64
	Deposit     sql.NullInt64
}

// AssignResult 入住结果。内联创建租客时带回新用户与编码
type AssignResult struct {
	Assignment domain.TenantAssignment
	TenantID   string
	TenantCode string // 仅内联创建时非空
}

// AssignmentView 在租列表视图（租客与位置展示数据）
type AssignmentView struct {
	AssignmentID string         `json:"assignmentId"`
	TenantID     string         `json:"tenantId"`
	TenantName   string         `json:"tenantName"`
	TenantEmail  string         `json:"tenantEmail"`
	TenantCode   string         `json:"tenantCode,omitempty"`
	BedNumber    string         `json:"bedNumber,omitempty"`
	RoomNumber   string         `json:"roomNumber,omitempty"`
	BuildingName string         `json:"buildingName,omitempty"`
	StartDate    time.Time      `json:"startDate"`
	MonthlyRent  int64          `json:"monthlyRent"`
	Deposit      *int64         `json:"deposit,omitempty"`
	Status       string         `json:"status"`
	EndedAt      *time.Time     `json:"endedAt,omitempty"`
}

// AssignmentsRepository 租约生命周期。
// Assign/Vacate 是本系统的原子性核心：租约变更、床位翻转、
// 租客绑定、序号分配必须在同一事务内提交
type AssignmentsRepository interface {
	// Assign 创建 ACTIVE 租约：
	//   - 校验床位属于业主且 AVAILABLE（行锁下复查），翻转为 OCCUPIED
	//   - 既有租客：未绑定则绑定本业主，绑定其他业主返回 Conflict
	//   - 内联租客：分配楼栋/租客序号、生成租客编码、写欢迎通知
	// 任一前置失败整体回滚，无部分状态
	Assign(ctx context.Context, ownerID string, p AssignParams) (*AssignResult, error)

	// Vacate 结束租约并释放床位。已 INACTIVE 或不存在返回 NotFound
	Vacate(ctx context.Context, ownerID, assignmentID, note string) (*domain.TenantAssignment, error)

	// ListActive 在租列表，按开始日期倒序
	ListActive(ctx context.Context, ownerID string) ([]AssignmentView, error)

	// ListActiveAssignments 账单物化用的裸租约集合
	ListActiveAssignments(ctx context.Context, ownerID string) ([]domain.TenantAssignment, error)

	// GetActiveByTenant 租客当前的 ACTIVE 租约（投诉门禁用，不限业主）
	GetActiveByTenant(ctx context.Context, tenantID string) (*domain.TenantAssignment, error)
}
