package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"staywise-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresAssignmentsRepository 租约Repository实现。
// Assign/Vacate 把床位翻转、租客绑定、序号分配和租约写入收进同一个
// 数据库事务 —— 并发正确性完全依赖存储层的事务保证，进程内不加锁
type PostgresAssignmentsRepository struct {
	db *sql.DB
}

func NewPostgresAssignmentsRepository(db *sql.DB) *PostgresAssignmentsRepository {
	return &PostgresAssignmentsRepository{db: db}
}

// 确保实现了接口
var _ AssignmentsRepository = (*PostgresAssignmentsRepository)(nil)

// Assign 创建 ACTIVE 租约（入住）
func (r *PostgresAssignmentsRepository) Assign(ctx context.Context, ownerID string, p AssignParams) (*AssignResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	defer tx.Rollback()

	// 1. 床位：行锁下复查 AVAILABLE，并推导房间/楼栋
	bedID := sql.NullString{}
	roomID := sql.NullString{}
	buildingID := sql.NullString{}
	if p.BedID != "" {
		var bed domain.Bed
		err = tx.QueryRowContext(ctx, `
			SELECT bed_id::text, owner_id::text, room_id::text, bed_number, status
			FROM beds
			WHERE bed_id = $1 AND owner_id = $2
			FOR UPDATE
		`, p.BedID, ownerID).Scan(&bed.BedID, &bed.OwnerID, &bed.RoomID, &bed.BedNumber, &bed.Status)
		if err != nil {
			return nil, mapSQLError(err, "bed not found")
		}
		if err := bed.Occupy(); err != nil {
			return nil, err
		}
		bedID = sql.NullString{String: bed.BedID, Valid: true}
		roomID = sql.NullString{String: bed.RoomID, Valid: true}

		var bid string
		if err := tx.QueryRowContext(ctx,
			`SELECT building_id::text FROM rooms WHERE room_id = $1`, bed.RoomID,
		).Scan(&bid); err != nil {
			return nil, mapSQLError(err, "room not found")
		}
		buildingID = sql.NullString{String: bid, Valid: true}
	} else {
		// HOUSE 类物业：直接挂房间或楼栋，仍须校验归属
		if p.RoomID != "" {
			var bid string
			err = tx.QueryRowContext(ctx,
				`SELECT building_id::text FROM rooms WHERE room_id = $1 AND owner_id = $2`,
				p.RoomID, ownerID,
			).Scan(&bid)
			if err != nil {
				return nil, mapSQLError(err, "room not found")
			}
			roomID = sql.NullString{String: p.RoomID, Valid: true}
			buildingID = sql.NullString{String: bid, Valid: true}
		} else if p.BuildingID != "" {
			var exists bool
			err = tx.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM buildings WHERE building_id = $1 AND owner_id = $2)`,
				p.BuildingID, ownerID,
			).Scan(&exists)
			if err != nil {
				return nil, mapSQLError(err, "")
			}
			if !exists {
				return nil, domain.NotFoundf("building not found")
			}
			buildingID = sql.NullString{String: p.BuildingID, Valid: true}
		} else {
			return nil, domain.Invalidf("assignment target is required")
		}
	}

	// 2. 租客：既有用户做绑定校验，内联创建则分配序号并生成编码
	result := &AssignResult{}
	if p.NewTenant != nil {
		tenantID, code, err := r.createTenantInTx(ctx, tx, ownerID, buildingID, *p.NewTenant)
		if err != nil {
			return nil, err
		}
		result.TenantID = tenantID
		result.TenantCode = code
	} else {
		var linkedOwner sql.NullString
		err = tx.QueryRowContext(ctx, `
			SELECT owner_id::text FROM users
			WHERE user_id = $1 AND role = $2
			FOR UPDATE
		`, p.TenantID, domain.RoleTenant).Scan(&linkedOwner)
		if err != nil {
			return nil, mapSQLError(err, "tenant not found")
		}

		link := domain.Unlinked()
		if linkedOwner.Valid {
			link = domain.LinkedTo(linkedOwner.String)
		}
		newLink, err := link.LinkTo(ownerID)
		if err != nil {
			return nil, err
		}
		if !link.Linked() && newLink.Linked() {
			if _, err := tx.ExecContext(ctx,
				`UPDATE users SET owner_id = $1 WHERE user_id = $2`, ownerID, p.TenantID,
			); err != nil {
				return nil, mapSQLError(err, "")
			}
		}
		result.TenantID = p.TenantID
	}

	// 3. 写入租约；部分唯一索引（床位/租客各自至多一条 ACTIVE）兜底并发
	a := domain.TenantAssignment{
		AssignmentID: uuid.NewString(),
		OwnerID:      ownerID,
		TenantID:     result.TenantID,
		BedID:        bedID,
		RoomID:       roomID,
		BuildingID:   buildingID,
		StartDate:    p.StartDate,
		MonthlyRent:  p.MonthlyRent,
		Deposit:      p.Deposit,
		Status:       domain.AssignmentActive,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO tenant_assignments
			(assignment_id, owner_id, tenant_id, bed_id, room_id, building_id,
			 start_date, monthly_rent, deposit, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`, a.AssignmentID, ownerID, a.TenantID, bedID, roomID, buildingID,
		p.StartDate, p.MonthlyRent, p.Deposit, domain.AssignmentActive,
	).Scan(&a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflictf("tenant or bed already has an active assignment")
		}
		return nil, mapSQLError(err, "")
	}

	// 4. 床位翻转与租约创建同事务提交
	if bedID.Valid {
		if _, err := tx.ExecContext(ctx,
			`UPDATE beds SET status = $1 WHERE bed_id = $2`, domain.BedOccupied, bedID.String,
		); err != nil {
			return nil, mapSQLError(err, "")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, mapSQLError(err, "")
	}
	result.Assignment = a
	return result, nil
}

// createTenantInTx 内联创建租客用户：
// 序号从业主行计数器分配（行写锁串行化同业主并发），楼栋序号惰性
// get-or-create，欢迎通知与用户创建同事务落库
func (r *PostgresAssignmentsRepository) createTenantInTx(ctx context.Context, tx *sql.Tx, ownerID string, buildingID sql.NullString, nt NewTenantUser) (string, string, error) {
	var ownerSerial, tenantSerial int
	err := tx.QueryRowContext(ctx, `
		UPDATE owners
		SET next_tenant_serial = next_tenant_serial + 1
		WHERE owner_id = $1
		RETURNING serial, next_tenant_serial
	`, ownerID).Scan(&ownerSerial, &tenantSerial)
	if err != nil {
		return "", "", mapSQLError(err, "owner not found")
	}

	buildingSerial := 0
	if buildingID.Valid {
		var serial sql.NullInt64
		err = tx.QueryRowContext(ctx, `
			SELECT serial FROM buildings
			WHERE building_id = $1 AND owner_id = $2
			FOR UPDATE
		`, buildingID.String, ownerID).Scan(&serial)
		if err != nil {
			return "", "", mapSQLError(err, "building not found")
		}
		if serial.Valid {
			buildingSerial = int(serial.Int64)
		} else {
			// 楼栋序号在首次添加租客时分配，与租客序号同源同事务
			err = tx.QueryRowContext(ctx, `
				UPDATE owners
				SET next_building_serial = next_building_serial + 1
				WHERE owner_id = $1
				RETURNING next_building_serial
			`, ownerID).Scan(&buildingSerial)
			if err != nil {
				return "", "", mapSQLError(err, "")
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE buildings SET serial = $1 WHERE building_id = $2`,
				buildingSerial, buildingID.String,
			); err != nil {
				return "", "", mapSQLError(err, "")
			}
		}
	}

	code := domain.TenantCode(ownerSerial, buildingSerial, tenantSerial)
	userID := uuid.NewString()
	phone := sql.NullString{}
	if nt.Phone != "" {
		phone = sql.NullString{String: nt.Phone, Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (user_id, owner_id, name, email, phone, password_hash, role, serial, tenant_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, userID, ownerID, nt.Name, nt.Email, phone, nt.PasswordHash, domain.RoleTenant, tenantSerial, code)
	if err != nil {
		if isUniqueViolation(err) {
			return "", "", domain.Conflictf("user email already exists")
		}
		return "", "", mapSQLError(err, "")
	}

	welcome := fmt.Sprintf("Welcome %s! Your tenant code is %s.", nt.Name, code)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO notifications (notification_id, owner_id, user_id, channel, message, status)
		VALUES ($1, $2, $3, 'WHATSAPP', $4, $5)
	`, uuid.NewString(), ownerID, userID, welcome, domain.NotificationQueued)
	if err != nil {
		return "", "", mapSQLError(err, "")
	}

	return userID, code, nil
}

// Vacate 结束租约并释放床位
func (r *PostgresAssignmentsRepository) Vacate(ctx context.Context, ownerID, assignmentID, note string) (*domain.TenantAssignment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	defer tx.Rollback()

	var a domain.TenantAssignment
	err = tx.QueryRowContext(ctx, `
		SELECT assignment_id::text, owner_id::text, tenant_id::text,
		       bed_id::text, room_id::text, building_id::text,
		       start_date, monthly_rent, deposit, status, ended_at, ended_note, created_at
		FROM tenant_assignments
		WHERE assignment_id = $1 AND owner_id = $2 AND status = $3
		FOR UPDATE
	`, assignmentID, ownerID, domain.AssignmentActive).Scan(
		&a.AssignmentID, &a.OwnerID, &a.TenantID,
		&a.BedID, &a.RoomID, &a.BuildingID,
		&a.StartDate, &a.MonthlyRent, &a.Deposit, &a.Status, &a.EndedAt, &a.EndedNote, &a.CreatedAt,
	)
	if err != nil {
		// 已退租与不存在统一 NotFound
		return nil, mapSQLError(err, "active assignment not found")
	}

	now := time.Now()
	if err := a.End(now, note); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE tenant_assignments
		SET status = $1, ended_at = $2, ended_note = $3
		WHERE assignment_id = $4
	`, domain.AssignmentInactive, a.EndedAt, a.EndedNote, a.AssignmentID); err != nil {
		return nil, mapSQLError(err, "")
	}

	if a.BedID.Valid {
		if _, err := tx.ExecContext(ctx,
			`UPDATE beds SET status = $1 WHERE bed_id = $2`, domain.BedAvailable, a.BedID.String,
		); err != nil {
			return nil, mapSQLError(err, "")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, mapSQLError(err, "")
	}
	return &a, nil
}

// ListActive 在租列表（联查租客与位置展示数据），按开始日期倒序
func (r *PostgresAssignmentsRepository) ListActive(ctx context.Context, ownerID string) ([]AssignmentView, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ta.assignment_id::text, ta.tenant_id::text,
		       u.name, u.email, COALESCE(u.tenant_code, ''),
		       COALESCE(bd.bed_number, ''), COALESCE(r.room_number, ''), COALESCE(b.name, ''),
		       ta.start_date, ta.monthly_rent, ta.deposit, ta.status, ta.ended_at
		FROM tenant_assignments ta
		JOIN users u ON u.user_id = ta.tenant_id
		LEFT JOIN beds bd ON bd.bed_id = ta.bed_id
		LEFT JOIN rooms r ON r.room_id = ta.room_id
		LEFT JOIN buildings b ON b.building_id = ta.building_id
		WHERE ta.owner_id = $1 AND ta.status = $2
		ORDER BY ta.start_date DESC
	`, ownerID, domain.AssignmentActive)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	defer rows.Close()

	items := make([]AssignmentView, 0)
	for rows.Next() {
		var v AssignmentView
		var deposit sql.NullInt64
		var endedAt sql.NullTime
		if err := rows.Scan(
			&v.AssignmentID, &v.TenantID,
			&v.TenantName, &v.TenantEmail, &v.TenantCode,
			&v.BedNumber, &v.RoomNumber, &v.BuildingName,
			&v.StartDate, &v.MonthlyRent, &deposit, &v.Status, &endedAt,
		); err != nil {
			return nil, mapSQLError(err, "")
		}
		if deposit.Valid {
			v.Deposit = &deposit.Int64
		}
		if endedAt.Valid {
			v.EndedAt = &endedAt.Time
		}
		items = append(items, v)
	}
	return items, mapSQLError(rows.Err(), "")
}

// ListActiveAssignments 账单物化用
func (r *PostgresAssignmentsRepository) ListActiveAssignments(ctx context.Context, ownerID string) ([]domain.TenantAssignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT assignment_id::text, owner_id::text, tenant_id::text,
		       bed_id::text, room_id::text, building_id::text,
		       start_date, monthly_rent, deposit, status, ended_at, ended_note, created_at
		FROM tenant_assignments
		WHERE owner_id = $1 AND status = $2
		ORDER BY start_date DESC
	`, ownerID, domain.AssignmentActive)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	defer rows.Close()

	items := make([]domain.TenantAssignment, 0)
	for rows.Next() {
		var a domain.TenantAssignment
		if err := rows.Scan(
			&a.AssignmentID, &a.OwnerID, &a.TenantID,
			&a.BedID, &a.RoomID, &a.BuildingID,
			&a.StartDate, &a.MonthlyRent, &a.Deposit, &a.Status, &a.EndedAt, &a.EndedNote, &a.CreatedAt,
		); err != nil {
			return nil, mapSQLError(err, "")
		}
		items = append(items, a)
	}
	return items, mapSQLError(rows.Err(), "")
}

// GetActiveByTenant 租客当前 ACTIVE 租约（投诉门禁）
func (r *PostgresAssignmentsRepository) GetActiveByTenant(ctx context.Context, tenantID string) (*domain.TenantAssignment, error) {
	var a domain.TenantAssignment
	err := r.db.QueryRowContext(ctx, `
		SELECT assignment_id::text, owner_id::text, tenant_id::text,
		       bed_id::text, room_id::text, building_id::text,
		       start_date, monthly_rent, deposit, status, ended_at, ended_note, created_at
		FROM tenant_assignments
		WHERE tenant_id = $1 AND status = $2
		LIMIT 1
	`, tenantID, domain.AssignmentActive).Scan(
		&a.AssignmentID, &a.OwnerID, &a.TenantID,
		&a.BedID, &a.RoomID, &a.BuildingID,
		&a.StartDate, &a.MonthlyRent, &a.Deposit, &a.Status, &a.EndedAt, &a.EndedNote, &a.CreatedAt,
	)
	if err != nil {
		return nil, mapSQLError(err, "active assignment not found")
	}
	return &a, nil
}
