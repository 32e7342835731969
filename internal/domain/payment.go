package domain

import (
	"database/sql"
	"time"
)

// 账单状态
const (
	PaymentUnpaid = "UNPAID"
	PaymentPaid   = "PAID"
)

// Payment 月度租金账单（对应 payments 表）
// 每 (assignment, period_year, period_month) 恰好 0 或 1 条，唯一约束兜底；
// amount 在创建时从租约 monthly_rent 拷贝，后续改租金不回溯
type Payment struct {
	PaymentID     string         `db:"payment_id"`
	OwnerID       string         `db:"owner_id"`
	AssignmentID  string         `db:"assignment_id"`
	PeriodYear    int            `db:"period_year"`
	PeriodMonth   int            `db:"period_month"`
	Amount        int64          `db:"amount"`
	Status        string         `db:"status"`
	PaidAt        sql.NullTime   `db:"paid_at"`
	PaymentMethod sql.NullString `db:"payment_method"`
	Reference     sql.NullString `db:"reference"`
	Note          sql.NullString `db:"note"`
	CreatedAt     time.Time      `db:"created_at"`
}

// MarkPaid 标记已缴。不校验金额或账期 —— 业主可补记任意已存在的账单
func (p *Payment) MarkPaid(at time.Time, method, reference, note string) {
	p.Status = PaymentPaid
	p.PaidAt = sql.NullTime{Time: at, Valid: true}
	p.PaymentMethod = nullString(method)
	p.Reference = nullString(reference)
	if note != "" {
		p.Note = sql.NullString{String: note, Valid: true}
	}
}

// MarkUnpaid 回退为未缴：清 paid_at/payment_method/reference，
// 但保留 note（历史备注跨切换保留，刻意的不对称）
func (p *Payment) MarkUnpaid() {
	p.Status = PaymentUnpaid
	p.PaidAt = sql.NullTime{}
	p.PaymentMethod = sql.NullString{}
	p.Reference = sql.NullString{}
}

// RentSummary 当期账单汇总（只统计已物化的账单）
type RentSummary struct {
	PeriodYear     int   `json:"periodYear"`
	PeriodMonth    int   `json:"periodMonth"`
	TotalExpected  int64 `json:"totalExpected"`
	TotalCollected int64 `json:"totalCollected"`
	PendingValue   int64 `json:"pendingValue"`
	CountPaid      int   `json:"countPaid"`
	CountUnpaid    int   `json:"countUnpaid"`
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
