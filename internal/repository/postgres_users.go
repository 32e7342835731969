package repository

import (
	"context"
	"database/sql"

	"staywise-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresUsersRepository 用户Repository实现
type PostgresUsersRepository struct {
	db *sql.DB
}

func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

// 确保实现了接口
var _ UsersRepository = (*PostgresUsersRepository)(nil)

const userColumns = `
	user_id::text,
	owner_id::text,
	name,
	email,
	phone,
	password_hash,
	role,
	serial,
	tenant_code,
	created_at
`

// scanUser 扫描一行用户，owner_id 为空表示未绑定租客
func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var ownerID sql.NullString
	err := row.Scan(
		&user.UserID,
		&ownerID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.Serial,
		&user.TenantCode,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid {
		user.Owner = domain.LinkedTo(ownerID.String)
	} else {
		user.Owner = domain.Unlinked()
	}
	return &user, nil
}

// GetUserByEmail 按邮箱查用户（email 全局唯一）
func (r *PostgresUsersRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, mapSQLError(err, "user not found")
	}
	return user, nil
}

// GetUser 按 ID 查用户
func (r *PostgresUsersRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
	user, err := scanUser(row)
	if err != nil {
		return nil, mapSQLError(err, "user not found")
	}
	return user, nil
}

// CreateTenant 业主名下预先建档租客用户
func (r *PostgresUsersRepository) CreateTenant(ctx context.Context, ownerID string, p NewTenantUser) (*domain.User, error) {
	user := &domain.User{
		UserID:       uuid.NewString(),
		Owner:        domain.LinkedTo(ownerID),
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Role:         domain.RoleTenant,
	}
	if p.Phone != "" {
		user.Phone = sql.NullString{String: p.Phone, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (user_id, owner_id, name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, user.UserID, ownerID, p.Name, p.Email, user.Phone, p.PasswordHash, domain.RoleTenant).Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflictf("user email already exists")
		}
		return nil, mapSQLError(err, "")
	}
	return user, nil
}
