package repository

import (
	"context"
	"database/sql"

	"staywise-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresOwnersRepository 业主Repository实现
type PostgresOwnersRepository struct {
	db *sql.DB
}

func NewPostgresOwnersRepository(db *sql.DB) *PostgresOwnersRepository {
	return &PostgresOwnersRepository{db: db}
}

// 确保实现了接口
var _ OwnersRepository = (*PostgresOwnersRepository)(nil)

// RegisterOwner 同一事务内创建 Owner 和 OWNER 用户
func (r *PostgresOwnersRepository) RegisterOwner(ctx context.Context, name, email, phone string, passwordHash []byte) (*domain.Owner, *domain.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, mapSQLError(err, "")
	}
	defer tx.Rollback()

	owner := &domain.Owner{
		OwnerID: uuid.NewString(),
		Name:    name,
		Email:   email,
	}
	if phone != "" {
		owner.Phone = sql.NullString{String: phone, Valid: true}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO owners (owner_id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING serial, next_building_serial, next_tenant_serial, created_at
	`, owner.OwnerID, name, email, owner.Phone).Scan(
		&owner.Serial,
		&owner.NextBuildingSerial,
		&owner.NextTenantSerial,
		&owner.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, domain.Conflictf("user with this email already exists")
		}
		return nil, nil, mapSQLError(err, "")
	}

	user := &domain.User{
		UserID:       uuid.NewString(),
		Owner:        domain.LinkedTo(owner.OwnerID),
		Name:         name,
		Email:        email,
		Phone:        owner.Phone,
		PasswordHash: passwordHash,
		Role:         domain.RoleOwner,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (user_id, owner_id, name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, user.UserID, owner.OwnerID, name, email, owner.Phone, passwordHash, domain.RoleOwner).Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, nil, domain.Conflictf("user with this email already exists")
		}
		return nil, nil, mapSQLError(err, "")
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, mapSQLError(err, "")
	}
	return owner, user, nil
}

// GetOwner 按 ID 获取业主
func (r *PostgresOwnersRepository) GetOwner(ctx context.Context, ownerID string) (*domain.Owner, error) {
	var owner domain.Owner
	err := r.db.QueryRowContext(ctx, `
		SELECT owner_id::text, name, email, phone, serial,
		       next_building_serial, next_tenant_serial, created_at
		FROM owners
		WHERE owner_id = $1
	`, ownerID).Scan(
		&owner.OwnerID,
		&owner.Name,
		&owner.Email,
		&owner.Phone,
		&owner.Serial,
		&owner.NextBuildingSerial,
		&owner.NextTenantSerial,
		&owner.CreatedAt,
	)
	if err != nil {
		return nil, mapSQLError(err, "owner not found")
	}
	return &owner, nil
}
