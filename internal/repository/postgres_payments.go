package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"staywise-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresPaymentsRepository 账单Repository实现
type PostgresPaymentsRepository struct {
	db *sql.DB
}

func NewPostgresPaymentsRepository(db *sql.DB) *PostgresPaymentsRepository {
	return &PostgresPaymentsRepository{db: db}
}

// 确保实现了接口
var _ PaymentsRepository = (*PostgresPaymentsRepository)(nil)

const paymentColumns = `
	payment_id::text,
	owner_id::text,
	assignment_id::text,
	period_year,
	period_month,
	amount,
	status,
	paid_at,
	payment_method,
	reference,
	note,
	created_at
`

func scanPayment(scan func(...any) error) (*domain.Payment, error) {
	var p domain.Payment
	err := scan(
		&p.PaymentID, &p.OwnerID, &p.AssignmentID,
		&p.PeriodYear, &p.PeriodMonth, &p.Amount, &p.Status,
		&p.PaidAt, &p.PaymentMethod, &p.Reference, &p.Note, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrCreateForPeriod 惰性物化账单。
// INSERT … ON CONFLICT DO NOTHING + 回读：并发下恰好一行落库，
// 输家直接读到赢家的行，绝不出现重复
func (r *PostgresPaymentsRepository) GetOrCreateForPeriod(ctx context.Context, ownerID string, a domain.TenantAssignment, year, month int) (*domain.Payment, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO payments
			(payment_id, owner_id, assignment_id, period_year, period_month, amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (assignment_id, period_year, period_month) DO NOTHING
		RETURNING `+paymentColumns+`
	`, uuid.NewString(), ownerID, a.AssignmentID, year, month, a.MonthlyRent, domain.PaymentUnpaid)

	p, err := scanPayment(row.Scan)
	if err == nil {
		return p, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, mapSQLError(err, "")
	}

	// 已存在：回读既有行
	row = r.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE assignment_id = $1 AND period_year = $2 AND period_month = $3 AND owner_id = $4
	`, a.AssignmentID, year, month, ownerID)
	p, err = scanPayment(row.Scan)
	if err != nil {
		return nil, false, mapSQLError(err, "payment not found")
	}
	return p, false, nil
}

func (r *PostgresPaymentsRepository) GetPayment(ctx context.Context, ownerID, paymentID string) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE payment_id = $1 AND owner_id = $2
	`, paymentID, ownerID)
	p, err := scanPayment(row.Scan)
	if err != nil {
		return nil, mapSQLError(err, "payment not found")
	}
	return p, nil
}

// MarkPaid 标记已缴。note 为空时保留原值
func (r *PostgresPaymentsRepository) MarkPaid(ctx context.Context, ownerID, paymentID, method, reference, note string, at time.Time) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE payments
		SET status = $1,
		    paid_at = $2,
		    payment_method = NULLIF($3, ''),
		    reference = NULLIF($4, ''),
		    note = COALESCE(NULLIF($5, ''), note)
		WHERE payment_id = $6 AND owner_id = $7
		RETURNING `+paymentColumns+`
	`, domain.PaymentPaid, at, method, reference, note, paymentID, ownerID)
	p, err := scanPayment(row.Scan)
	if err != nil {
		return nil, mapSQLError(err, "payment not found")
	}
	return p, nil
}

// MarkUnpaid 回退未缴：清 paid_at/payment_method/reference，note 保留
func (r *PostgresPaymentsRepository) MarkUnpaid(ctx context.Context, ownerID, paymentID string) (*domain.Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE payments
		SET status = $1,
		    paid_at = NULL,
		    payment_method = NULL,
		    reference = NULL
		WHERE payment_id = $2 AND owner_id = $3
		RETURNING `+paymentColumns+`
	`, domain.PaymentUnpaid, paymentID, ownerID)
	p, err := scanPayment(row.Scan)
	if err != nil {
		return nil, mapSQLError(err, "payment not found")
	}
	return p, nil
}

// SummaryForPeriod 聚合已物化账单，纯读
func (r *PostgresPaymentsRepository) SummaryForPeriod(ctx context.Context, ownerID string, year, month int) (*domain.RentSummary, error) {
	s := domain.RentSummary{PeriodYear: year, PeriodMonth: month}
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0),
		       COALESCE(SUM(amount) FILTER (WHERE status = 'PAID'), 0),
		       COUNT(*) FILTER (WHERE status = 'PAID'),
		       COUNT(*) FILTER (WHERE status = 'UNPAID')
		FROM payments
		WHERE owner_id = $1 AND period_year = $2 AND period_month = $3
	`, ownerID, year, month).Scan(&s.TotalExpected, &s.TotalCollected, &s.CountPaid, &s.CountUnpaid)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	s.PendingValue = s.TotalExpected - s.TotalCollected
	return &s, nil
}

// ListForPeriod 账期账单行（导出用，不物化）
func (r *PostgresPaymentsRepository) ListForPeriod(ctx context.Context, ownerID string, year, month int) ([]RentRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.payment_id::text, p.owner_id::text, p.assignment_id::text,
		       p.period_year, p.period_month, p.amount, p.status,
		       p.paid_at, p.payment_method, p.reference, p.note, p.created_at,
		       u.name, u.email, COALESCE(u.tenant_code, ''),
		       COALESCE(bd.bed_number, ''), COALESCE(r.room_number, ''), COALESCE(b.name, '')
		FROM payments p
		JOIN tenant_assignments ta ON ta.assignment_id = p.assignment_id
		JOIN users u ON u.user_id = ta.tenant_id
		LEFT JOIN beds bd ON bd.bed_id = ta.bed_id
		LEFT JOIN rooms r ON r.room_id = ta.room_id
		LEFT JOIN buildings b ON b.building_id = ta.building_id
		WHERE p.owner_id = $1 AND p.period_year = $2 AND p.period_month = $3
		ORDER BY b.name, r.room_number, bd.bed_number
	`, ownerID, year, month)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	defer rows.Close()

	items := make([]RentRow, 0)
	for rows.Next() {
		var v RentRow
		if err := rows.Scan(
			&v.Payment.PaymentID, &v.Payment.OwnerID, &v.Payment.AssignmentID,
			&v.Payment.PeriodYear, &v.Payment.PeriodMonth, &v.Payment.Amount, &v.Payment.Status,
			&v.Payment.PaidAt, &v.Payment.PaymentMethod, &v.Payment.Reference, &v.Payment.Note, &v.Payment.CreatedAt,
			&v.TenantName, &v.TenantEmail, &v.TenantCode,
			&v.BedNumber, &v.RoomNumber, &v.BuildingName,
		); err != nil {
			return nil, mapSQLError(err, "")
		}
		items = append(items, v)
	}
	return items, mapSQLError(rows.Err(), "")
}

// GetReceiptData 收据联查（不校验 PAID，门禁在 service 层）
func (r *PostgresPaymentsRepository) GetReceiptData(ctx context.Context, ownerID, paymentID string) (*ReceiptData, error) {
	var d ReceiptData
	err := r.db.QueryRowContext(ctx, `
		SELECT p.payment_id::text, p.owner_id::text, p.assignment_id::text,
		       p.period_year, p.period_month, p.amount, p.status,
		       p.paid_at, p.payment_method, p.reference, p.note, p.created_at,
		       o.name,
		       u.user_id::text, u.name, COALESCE(u.phone, ''),
		       COALESCE(bd.bed_number, ''), COALESCE(r.room_number, ''),
		       COALESCE(b.name, ''), COALESCE(b.address, '')
		FROM payments p
		JOIN owners o ON o.owner_id = p.owner_id
		JOIN tenant_assignments ta ON ta.assignment_id = p.assignment_id
		JOIN users u ON u.user_id = ta.tenant_id
		LEFT JOIN beds bd ON bd.bed_id = ta.bed_id
		LEFT JOIN rooms r ON r.room_id = ta.room_id
		LEFT JOIN buildings b ON b.building_id = ta.building_id
		WHERE p.payment_id = $1 AND p.owner_id = $2
	`, paymentID, ownerID).Scan(
		&d.Payment.PaymentID, &d.Payment.OwnerID, &d.Payment.AssignmentID,
		&d.Payment.PeriodYear, &d.Payment.PeriodMonth, &d.Payment.Amount, &d.Payment.Status,
		&d.Payment.PaidAt, &d.Payment.PaymentMethod, &d.Payment.Reference, &d.Payment.Note, &d.Payment.CreatedAt,
		&d.OwnerName,
		&d.TenantID, &d.TenantName, &d.TenantPhone,
		&d.BedNumber, &d.RoomNumber,
		&d.BuildingName, &d.Address,
	)
	if err != nil {
		return nil, mapSQLError(err, "payment not found")
	}
	return &d, nil
}
