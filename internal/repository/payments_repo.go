package repository

import (
	"context"
	"time"

	"staywise-data/internal/domain"
)

// RentRow 账单行视图：账单 + 租客/位置展示数据
type RentRow struct {
	Payment      domain.Payment
	TenantName   string
	TenantEmail  string
	TenantCode   string
	BedNumber    string
	RoomNumber   string
	BuildingName string
}

// ReceiptData 收据渲染所需的联查数据
type ReceiptData struct {
	Payment      domain.Payment
	OwnerName    string
	TenantID     string
	TenantName   string
	TenantPhone  string
	BedNumber    string
	RoomNumber   string
	BuildingName string
	Address      string
}

// PaymentsRepository 月度账单（按 owner_id 过滤）
type PaymentsRepository interface {
	// GetOrCreateForPeriod 惰性物化：该租约该账期无账单则按当前
	// monthly_rent 创建 UNPAID 记录。并发安全由
	// (assignment_id, period_year, period_month) 唯一约束兜底，
	// 输家观察到已存在的行而不是造出重复。返回 created 标记
	GetOrCreateForPeriod(ctx context.Context, ownerID string, a domain.TenantAssignment, year, month int) (*domain.Payment, bool, error)

	GetPayment(ctx context.Context, ownerID, paymentID string) (*domain.Payment, error)

	MarkPaid(ctx context.Context, ownerID, paymentID, method, reference, note string, at time.Time) (*domain.Payment, error)

	// MarkUnpaid 清 paid_at/payment_method/reference，保留 note
	MarkUnpaid(ctx context.Context, ownerID, paymentID string) (*domain.Payment, error)

	// SummaryForPeriod 只聚合已物化的账单，纯读
	SummaryForPeriod(ctx context.Context, ownerID string, year, month int) (*domain.RentSummary, error)

	// ListForPeriod 某账期全部账单行（导出用，不物化）
	ListForPeriod(ctx context.Context, ownerID string, year, month int) ([]RentRow, error)

	GetReceiptData(ctx context.Context, ownerID, paymentID string) (*ReceiptData, error)
}
