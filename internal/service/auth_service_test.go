package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"staywise-data/internal/domain"
	"staywise-data/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "unit-test-secret"

func newAuthService(store *repository.MemoryStore) AuthService {
	return NewAuthService(store, store, testSecret, time.Hour, zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newAuthService(store)
	ctx := context.Background()

	reg, err := svc.RegisterOwner(ctx, RegisterOwnerRequest{
		Name:     "Asha Properties",
		Email:    "Asha@Example.com",
		Password: "secret99",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.OwnerID)
	assert.NotEmpty(t, reg.UserID)

	// 注册邮箱归一化，登录大小写不敏感
	login, err := svc.Login(ctx, LoginRequest{Email: "ASHA@example.COM", Password: "secret99"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, reg.UserID, login.User.UserID)
	assert.Equal(t, domain.RoleOwner, login.User.Role)
	assert.Equal(t, reg.OwnerID, login.User.OwnerID)

	// 令牌可解析回 Principal
	p, err := ParseToken(login.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, p.UserID)
	assert.Equal(t, reg.OwnerID, p.OwnerID)
	assert.Equal(t, domain.RoleOwner, p.Role)
	assert.True(t, p.CanManage())
}

func TestLoginWrongCredentials(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newAuthService(store)
	ctx := context.Background()

	_, err := svc.RegisterOwner(ctx, RegisterOwnerRequest{
		Name: "Asha", Email: "asha@example.com", Password: "secret99",
	})
	require.NoError(t, err)

	// 密码错和账号不存在口径一致
	_, err = svc.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "wrong-pass"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalid))
	assert.Contains(t, err.Error(), "invalid email or password")

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret99"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalid))
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestRegisterValidation(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newAuthService(store)
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterOwnerRequest
	}{
		{"empty name", RegisterOwnerRequest{Email: "a@example.com", Password: "secret99"}},
		{"bad email", RegisterOwnerRequest{Name: "A", Email: "not-an-email", Password: "secret99"}},
		{"short password", RegisterOwnerRequest{Name: "A", Email: "a@example.com", Password: "12345"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RegisterOwner(ctx, tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalid))
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newAuthService(store)
	ctx := context.Background()

	_, err := svc.RegisterOwner(ctx, RegisterOwnerRequest{Name: "A", Email: "a@example.com", Password: "secret99"})
	require.NoError(t, err)

	_, err = svc.RegisterOwner(ctx, RegisterOwnerRequest{Name: "B", Email: "a@example.com", Password: "secret99"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestParseTokenRejectsTampered(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newAuthService(store)
	ctx := context.Background()

	_, err := svc.RegisterOwner(ctx, RegisterOwnerRequest{Name: "A", Email: "a@example.com", Password: "secret99"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "secret99"})
	require.NoError(t, err)

	// 错误密钥
	_, err = ParseToken(login.Token, "another-secret")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalid))

	// 篡改载荷
	_, err = ParseToken(login.Token+"x", testSecret)
	require.Error(t, err)

	_, err = ParseToken("not-a-jwt", testSecret)
	require.Error(t, err)
}

func TestLoginExpiredToken(t *testing.T) {
	store := repository.NewMemoryStore()
	// 负的有效期直接产出过期令牌
	svc := NewAuthService(store, store, testSecret, -time.Minute, zap.NewNop())
	ctx := context.Background()

	_, err := svc.RegisterOwner(ctx, RegisterOwnerRequest{Name: "A", Email: "a@example.com", Password: "secret99"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "secret99"})
	require.NoError(t, err)

	_, err = ParseToken(login.Token, testSecret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalid))
}
