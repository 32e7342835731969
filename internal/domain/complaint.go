package domain

import (
	"database/sql"
	"time"
)

// Complaint 投诉记录（对应 complaints 表）
// 仅持有 ACTIVE 租约的租客可发起；解决后不再校验租约是否仍然有效
type Complaint struct {
	ComplaintID  string         `db:"complaint_id"`
	OwnerID      string         `db:"owner_id"`
	TenantID     string         `db:"tenant_id"`
	Title        string         `db:"title"`
	Description  string         `db:"description"`
	IsResolved   bool           `db:"is_resolved"`
	ResolvedNote sql.NullString `db:"resolved_note"`
	ResolvedAt   sql.NullTime   `db:"resolved_at"`
	CreatedAt    time.Time      `db:"created_at"`
}

// SetResolved 标记解决/取消解决；取消解决清 resolved_at
func (c *Complaint) SetResolved(resolved bool, note string, at time.Time) {
	c.IsResolved = resolved
	if note != "" {
		c.ResolvedNote = sql.NullString{String: note, Valid: true}
	}
	if resolved {
		c.ResolvedAt = sql.NullTime{Time: at, Valid: true}
	} else {
		c.ResolvedAt = sql.NullTime{}
	}
}
