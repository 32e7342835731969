package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"staywise-data/internal/domain"
	"staywise-data/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost 与原有账号兼容的哈希成本
const bcryptCost = 10

// TokenClaims JWT 载荷：已验证的 (userId, ownerId, role) 三元组
type TokenClaims struct {
	UserID  string `json:"uid"`
	OwnerID string `json:"oid,omitempty"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService 注册登录服务接口
type AuthService interface {
	RegisterOwner(ctx context.Context, req RegisterOwnerRequest) (*RegisterOwnerResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

// authService 实现
type authService struct {
	ownersRepo repository.OwnersRepository
	usersRepo  repository.UsersRepository
	secret     []byte
	expiry     time.Duration
	logger     *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(ownersRepo repository.OwnersRepository, usersRepo repository.UsersRepository, secret string, expiry time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		ownersRepo: ownersRepo,
		usersRepo:  usersRepo,
		secret:     []byte(secret),
		expiry:     expiry,
		logger:     logger,
	}
}

type RegisterOwnerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type RegisterOwnerResponse struct {
	OwnerID string `json:"ownerId"`
	UserID  string `json:"userId"`
}

// RegisterOwner 注册业主：Owner 与 OWNER 用户同事务创建
func (s *authService) RegisterOwner(ctx context.Context, req RegisterOwnerRequest) (*RegisterOwnerResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" {
		return nil, domain.Invalidf("name is required")
	}
	if !validEmail(req.Email) {
		return nil, domain.Invalidf("invalid email")
	}
	if len(req.Password) < 6 {
		return nil, domain.Invalidf("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		s.logger.Error("Password hashing failed", zap.Error(err))
		return nil, domain.Internalf("registration failed")
	}

	owner, user, err := s.ownersRepo.RegisterOwner(ctx, req.Name, req.Email, req.Phone, hash)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Owner registered",
		zap.String("owner_id", owner.OwnerID),
		zap.Int("owner_serial", owner.Serial),
	)
	return &RegisterOwnerResponse{OwnerID: owner.OwnerID, UserID: user.UserID}, nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

type LoginUser struct {
	UserID  string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	OwnerID string `json:"ownerId,omitempty"`
}

// Login 邮箱密码登录，签发 JWT
func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !validEmail(req.Email) || req.Password == "" {
		return nil, domain.Invalidf("invalid email or password")
	}

	user, err := s.usersRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// 凭证错误统一口径，不暴露账号是否存在
			return nil, domain.Invalidf("invalid email or password")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		s.logger.Warn("Login failed: wrong password", zap.String("user_id", user.UserID))
		return nil, domain.Invalidf("invalid email or password")
	}

	ownerID, _ := user.Owner.OwnerID()
	now := time.Now()
	claims := TokenClaims{
		UserID:  user.UserID,
		OwnerID: ownerID,
		Role:    user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		s.logger.Error("Token signing failed", zap.Error(err))
		return nil, domain.Internalf("login failed")
	}

	return &LoginResponse{
		Token: token,
		User: LoginUser{
			UserID:  user.UserID,
			Name:    user.Name,
			Email:   user.Email,
			Role:    user.Role,
			OwnerID: ownerID,
		},
	}, nil
}

// ParseToken 校验并解析 JWT（HTTP 中间件用）
func ParseToken(tokenString string, secret string) (*domain.Principal, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.Invalidf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.Invalidf("invalid token")
	}
	return &domain.Principal{
		UserID:  claims.UserID,
		OwnerID: claims.OwnerID,
		Role:    claims.Role,
	}, nil
}

func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}
