package repository

import (
	"context"

	"staywise-data/internal/domain"
)

// NewTenantUser 内联创建租客用户的输入
type NewTenantUser struct {
	Name         string
	Email        string
	Phone        string
	PasswordHash []byte
}

// UsersRepository 用户查询与租客创建
type UsersRepository interface {
	// GetUserByEmail 全局按邮箱查（email 全局唯一，登录/注册查重用）
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// CreateTenant 业主名下直接创建租客用户（预先建档，不分配序号编码）。
	// 邮箱已存在返回 Conflict
	CreateTenant(ctx context.Context, ownerID string, p NewTenantUser) (*domain.User, error)
}
