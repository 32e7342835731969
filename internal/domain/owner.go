package domain

import (
	"database/sql"
	"time"
)

// Owner 业主/管理机构（对应 owners 表）
// 所有运营数据（楼栋/房间/床位/租约/账单/投诉）都归属于唯一的 Owner，
// 每个查询和写入都必须按 owner_id 过滤 —— 多租户隔离的唯一边界
type Owner struct {
	OwnerID string `db:"owner_id"`
	Name    string `db:"name"`
	Email   string `db:"email"`
	Phone   sql.NullString `db:"phone"`

	// Serial 全局业主序号，用于租客编码（SW<owner>-<building>-<tenant>）
	Serial int `db:"serial"`

	// 每业主计数器：楼栋序号 / 租客序号，在消费它们的事务内自增，
	// 同一业主的并发分配被该行写锁串行化
	NextBuildingSerial int `db:"next_building_serial"`
	NextTenantSerial   int `db:"next_tenant_serial"`

	CreatedAt time.Time `db:"created_at"`
}
