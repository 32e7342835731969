package domain

import (
	"database/sql"
	"time"
)

// 租约状态。INACTIVE 为终态（不支持复活）
const (
	AssignmentActive   = "ACTIVE"
	AssignmentInactive = "INACTIVE"
)

// TenantAssignment 租约（对应 tenant_assignments 表）
// 占用目标按物业类型取床位/房间/楼栋之一（HOUSE 直接挂楼栋）；
// 同一床位同一时刻至多一条 ACTIVE 租约，由部分唯一索引兜底
type TenantAssignment struct {
	AssignmentID string         `db:"assignment_id"`
	OwnerID      string         `db:"owner_id"`
	TenantID     string         `db:"tenant_id"`
	BedID        sql.NullString `db:"bed_id"`
	RoomID       sql.NullString `db:"room_id"`
	BuildingID   sql.NullString `db:"building_id"`
	StartDate    time.Time      `db:"start_date"`
	MonthlyRent  int64          `db:"monthly_rent"`
	Deposit      sql.NullInt64  `db:"deposit"`
	Status       string         `db:"status"`
	EndedAt      sql.NullTime   `db:"ended_at"`
	EndedNote    sql.NullString `db:"ended_note"`
	CreatedAt    time.Time      `db:"created_at"`
}

// End ACTIVE → INACTIVE（退租，恰好一次）
func (a *TenantAssignment) End(at time.Time, note string) error {
	if a.Status != AssignmentActive {
		// 已退租与不存在对调用方不可区分，统一 NotFound
		return NotFoundf("active assignment not found")
	}
	a.Status = AssignmentInactive
	a.EndedAt = sql.NullTime{Time: at, Valid: true}
	if note != "" {
		a.EndedNote = sql.NullString{String: note, Valid: true}
	}
	return nil
}
