package domain

import (
	"database/sql"
	"fmt"
	"time"
)

// 用户角色
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleOwner      = "OWNER"
	RoleManager    = "MANAGER"
	RoleTenant     = "TENANT"
)

// User 用户领域模型（对应 users 表）
// role=TENANT 的用户在被业主收编前 owner_id 为空（见 OwnerLink）
type User struct {
	UserID       string         `db:"user_id"`
	Owner        OwnerLink      `db:"owner_id"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	Phone        sql.NullString `db:"phone"`
	PasswordHash []byte         `db:"password_hash"`
	Role         string         `db:"role"`

	// 租客序号与编码：业主/楼栋/用户序号拼出的稳定可读 ID，
	// 仅对 assign 时内联创建的租客用户生成
	Serial     sql.NullInt64  `db:"serial"`
	TenantCode sql.NullString `db:"tenant_code"`

	CreatedAt time.Time `db:"created_at"`
}

// OwnerLink 租客与业主的绑定状态：{Unlinked, LinkedTo(ownerId)}
// 绑定是单向且一次性的，用显式状态而不是裸的 nullable 字段表达，
// 避免判空逻辑散落在各个调用点
type OwnerLink struct {
	ownerID string
	linked  bool
}

func Unlinked() OwnerLink { return OwnerLink{} }

func LinkedTo(ownerID string) OwnerLink {
	return OwnerLink{ownerID: ownerID, linked: true}
}

func (l OwnerLink) Linked() bool { return l.linked }

func (l OwnerLink) OwnerID() (string, bool) { return l.ownerID, l.linked }

// LinkTo 绑定到指定业主。规则：
//   - 未绑定 → 绑定成功
//   - 已绑定同一业主 → 幂等成功
//   - 已绑定其他业主 → Conflict（不允许跨业主复用租客）
func (l OwnerLink) LinkTo(ownerID string) (OwnerLink, error) {
	if !l.linked {
		return LinkedTo(ownerID), nil
	}
	if l.ownerID != ownerID {
		return l, Conflictf("tenant is already managed by a different owner")
	}
	return l, nil
}

// TenantCode 生成租客编码：SW<业主序号 3 位>-<楼栋序号 2 位>-<租客序号 4 位>
func TenantCode(ownerSerial, buildingSerial, tenantSerial int) string {
	return fmt.Sprintf("SW%03d-%02d-%04d", ownerSerial, buildingSerial, tenantSerial)
}
