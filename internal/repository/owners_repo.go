package repository

import (
	"context"

	"staywise-data/internal/domain"
)

// OwnersRepository 业主注册与查询
type OwnersRepository interface {
	// RegisterOwner 同一事务内创建 Owner 及其 OWNER 角色用户。
	// 邮箱已存在返回 Conflict
	RegisterOwner(ctx context.Context, name, email, phone string, passwordHash []byte) (*domain.Owner, *domain.User, error)

	GetOwner(ctx context.Context, ownerID string) (*domain.Owner, error)
}
