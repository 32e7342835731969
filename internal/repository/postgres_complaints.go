package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"staywise-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresComplaintsRepository 投诉Repository实现
type PostgresComplaintsRepository struct {
	db *sql.DB
}

func NewPostgresComplaintsRepository(db *sql.DB) *PostgresComplaintsRepository {
	return &PostgresComplaintsRepository{db: db}
}

// 确保实现了接口
var _ ComplaintsRepository = (*PostgresComplaintsRepository)(nil)

func (r *PostgresComplaintsRepository) Create(ctx context.Context, ownerID, tenantID, title, description string) (*domain.Complaint, error) {
	c := &domain.Complaint{
		ComplaintID: uuid.NewString(),
		OwnerID:     ownerID,
		TenantID:    tenantID,
		Title:       title,
		Description: description,
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO complaints (complaint_id, owner_id, tenant_id, title, description, is_resolved)
		VALUES ($1, $2, $3, $4, $5, false)
		RETURNING created_at
	`, c.ComplaintID, ownerID, tenantID, title, description).Scan(&c.CreatedAt)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	return c, nil
}

func (r *PostgresComplaintsRepository) List(ctx context.Context, ownerID, tenantID string, page, size int) ([]ComplaintView, int, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 50
	}

	where := ` WHERE c.owner_id = $1`
	args := []any{ownerID}
	if tenantID != "" {
		where += ` AND c.tenant_id = $2`
		args = append(args, tenantID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM complaints c`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, mapSQLError(err, "")
	}

	query := `
		SELECT c.complaint_id::text, c.owner_id::text, c.tenant_id::text,
		       c.title, c.description, c.is_resolved, c.resolved_note, c.resolved_at, c.created_at,
		       u.name, u.email
		FROM complaints c
		JOIN users u ON u.user_id = c.tenant_id` + where + `
		ORDER BY c.created_at DESC
		LIMIT ` + strconv.Itoa(size) + ` OFFSET ` + strconv.Itoa((page-1)*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapSQLError(err, "")
	}
	defer rows.Close()

	items := make([]ComplaintView, 0)
	for rows.Next() {
		var v ComplaintView
		if err := rows.Scan(
			&v.ComplaintID, &v.OwnerID, &v.TenantID,
			&v.Title, &v.Description, &v.IsResolved, &v.ResolvedNote, &v.ResolvedAt, &v.CreatedAt,
			&v.TenantName, &v.TenantEmail,
		); err != nil {
			return nil, 0, mapSQLError(err, "")
		}
		items = append(items, v)
	}
	return items, total, mapSQLError(rows.Err(), "")
}

func (r *PostgresComplaintsRepository) SetStatus(ctx context.Context, ownerID, complaintID string, resolved bool, note string, at time.Time) (*domain.Complaint, error) {
	var resolvedAt sql.NullTime
	if resolved {
		resolvedAt = sql.NullTime{Time: at, Valid: true}
	}
	var c domain.Complaint
	err := r.db.QueryRowContext(ctx, `
		UPDATE complaints
		SET is_resolved = $1,
		    resolved_note = COALESCE(NULLIF($2, ''), resolved_note),
		    resolved_at = $3
		WHERE complaint_id = $4 AND owner_id = $5
		RETURNING complaint_id::text, owner_id::text, tenant_id::text,
		          title, description, is_resolved, resolved_note, resolved_at, created_at
	`, resolved, note, resolvedAt, complaintID, ownerID).Scan(
		&c.ComplaintID, &c.OwnerID, &c.TenantID,
		&c.Title, &c.Description, &c.IsResolved, &c.ResolvedNote, &c.ResolvedAt, &c.CreatedAt,
	)
	if err != nil {
		return nil, mapSQLError(err, "complaint not found")
	}
	return &c, nil
}

// PostgresNotificationsRepository 通知Repository实现
type PostgresNotificationsRepository struct {
	db *sql.DB
}

func NewPostgresNotificationsRepository(db *sql.DB) *PostgresNotificationsRepository {
	return &PostgresNotificationsRepository{db: db}
}

// 确保实现了接口
var _ NotificationsRepository = (*PostgresNotificationsRepository)(nil)

func (r *PostgresNotificationsRepository) Create(ctx context.Context, ownerID, userID, channel, message string) (*domain.Notification, error) {
	n := &domain.Notification{
		NotificationID: uuid.NewString(),
		OwnerID:        ownerID,
		UserID:         userID,
		Channel:        channel,
		Message:        message,
		Status:         domain.NotificationQueued,
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO notifications (notification_id, owner_id, user_id, channel, message, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, n.NotificationID, ownerID, userID, channel, message, n.Status).Scan(&n.CreatedAt)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	return n, nil
}

