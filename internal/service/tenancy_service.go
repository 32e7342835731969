package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"staywise-data/internal/domain"
	"staywise-data/internal/repository"

	"go.uber.org/zap"
)

// TenancyService 租约生命周期服务接口
type TenancyService interface {
	// CreateTenant 预先建档租客（不分配床位）
	CreateTenant(ctx context.Context, req CreateTenantRequest) (*CreateTenantResponse, error)

	// Assign 入住：创建 ACTIVE 租约，占用床位，必要时绑定/创建租客
	Assign(ctx context.Context, req AssignRequest) (*AssignResponse, error)

	// Vacate 退租：结束租约并释放床位
	Vacate(ctx context.Context, req VacateRequest) error

	// ListActive 在租列表（最近开始的在前）
	ListActive(ctx context.Context, ownerID string) ([]repository.AssignmentView, error)

	// MyAssignment 租客门户：查自己的 ACTIVE 租约
	MyAssignment(ctx context.Context, tenantID string) (*repository.AssignmentView, error)
}

// tenancyService 实现
type tenancyService struct {
	assignRepo repository.AssignmentsRepository
	usersRepo  repository.UsersRepository
	notifier   Notifier
	logger     *zap.Logger
}

// NewTenancyService 创建 TenancyService 实例
func NewTenancyService(assignRepo repository.AssignmentsRepository, usersRepo repository.UsersRepository, notifier Notifier, logger *zap.Logger) TenancyService {
	return &tenancyService{
		assignRepo: assignRepo,
		usersRepo:  usersRepo,
		notifier:   notifier,
		logger:     logger,
	}
}

type CreateTenantRequest struct {
	OwnerID  string
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type CreateTenantResponse struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func (s *tenancyService) CreateTenant(ctx context.Context, req CreateTenantRequest) (*CreateTenantResponse, error) {
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

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.logger.Error("Password hashing failed", zap.Error(err))
		return nil, domain.Internalf("failed to create tenant")
	}
	user, err := s.usersRepo.CreateTenant(ctx, req.OwnerID, repository.NewTenantUser{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}
	return &CreateTenantResponse{UserID: user.UserID, Name: user.Name, Email: user.Email}, nil
}

// NewTenantInline Assign 时内联创建租客的输入
type NewTenantInline struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password,omitempty"`
}

type AssignRequest struct {
	OwnerID string

	TenantID  string           `json:"tenantId,omitempty"`
	NewTenant *NewTenantInline `json:"newTenant,omitempty"`

	BedID      string `json:"bedId,omitempty"`
	RoomID     string `json:"roomId,omitempty"`
	BuildingID string `json:"buildingId,omitempty"`

	StartDate   string `json:"startDate"` // ISO 日期
	MonthlyRent int64  `json:"monthlyRent"`
	Deposit     *int64 `json:"deposit,omitempty"`
}

type AssignResponse struct {
	Assignment domain.TenantAssignment `json:"assignment"`
	TenantID   string                  `json:"tenantId"`
	TenantCode string                  `json:"tenantCode,omitempty"`
}

func (s *tenancyService) Assign(ctx context.Context, req AssignRequest) (*AssignResponse, error) {
	if req.MonthlyRent <= 0 {
		return nil, domain.Invalidf("monthly rent must be positive")
	}
	if (req.TenantID == "") == (req.NewTenant == nil) {
		return nil, domain.Invalidf("exactly one of tenantId or newTenant is required")
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, domain.Invalidf("invalid start date: %s", req.StartDate)
	}

	params := repository.AssignParams{
		TenantID:    req.TenantID,
		BedID:       req.BedID,
		RoomID:      req.RoomID,
		BuildingID:  req.BuildingID,
		StartDate:   startDate,
		MonthlyRent: req.MonthlyRent,
	}
	if req.Deposit != nil {
		if *req.Deposit < 0 {
			return nil, domain.Invalidf("deposit must not be negative")
		}
		params.Deposit = sql.NullInt64{Int64: *req.Deposit, Valid: true}
	}
	if req.NewTenant != nil {
		nt := *req.NewTenant
		nt.Name = strings.TrimSpace(nt.Name)
		nt.Email = strings.TrimSpace(strings.ToLower(nt.Email))
		if nt.Name == "" {
			return nil, domain.Invalidf("tenant name is required")
		}
		if !validEmail(nt.Email) {
			return nil, domain.Invalidf("invalid tenant email")
		}
		var hash []byte
		if nt.Password != "" {
			if len(nt.Password) < 6 {
				return nil, domain.Invalidf("password must be at least 6 characters")
			}
			if hash, err = hashPassword(nt.Password); err != nil {
				s.logger.Error("Password hashing failed", zap.Error(err))
				return nil, domain.Internalf("failed to assign tenant")
			}
		}
		params.NewTenant = &repository.NewTenantUser{
			Name:         nt.Name,
			Email:        nt.Email,
			Phone:        nt.Phone,
			PasswordHash: hash,
		}
	}

	result, err := s.assignRepo.Assign(ctx, req.OwnerID, params)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tenant assigned",
		zap.String("owner_id", req.OwnerID),
		zap.String("assignment_id", result.Assignment.AssignmentID),
		zap.String("tenant_id", result.TenantID),
		zap.Int64("monthly_rent", req.MonthlyRent),
	)

	// 欢迎通知记录已随事务落库；出站投递是 fire-and-forget
	if result.TenantCode != "" {
		s.notifier.Queue(ctx, QueuedMessage{
			OwnerID: req.OwnerID,
			UserID:  result.TenantID,
			Message: "Welcome! Your tenant code is " + result.TenantCode + ".",
		})
	}

	return &AssignResponse{
		Assignment: result.Assignment,
		TenantID:   result.TenantID,
		TenantCode: result.TenantCode,
	}, nil
}

type VacateRequest struct {
	OwnerID      string
	AssignmentID string `json:"assignmentId"`
	EndedNote    string `json:"endedNote,omitempty"`
}

func (s *tenancyService) Vacate(ctx context.Context, req VacateRequest) error {
	if req.AssignmentID == "" {
		return domain.Invalidf("assignmentId is required")
	}
	a, err := s.assignRepo.Vacate(ctx, req.OwnerID, req.AssignmentID, req.EndedNote)
	if err != nil {
		return err
	}
	s.logger.Info("Tenant vacated",
		zap.String("owner_id", req.OwnerID),
		zap.String("assignment_id", a.AssignmentID),
		zap.Bool("bed_released", a.BedID.Valid),
	)
	return nil
}

func (s *tenancyService) ListActive(ctx context.Context, ownerID string) ([]repository.AssignmentView, error) {
	return s.assignRepo.ListActive(ctx, ownerID)
}

func (s *tenancyService) MyAssignment(ctx context.Context, tenantID string) (*repository.AssignmentView, error) {
	a, err := s.assignRepo.GetActiveByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	// 复用业主维度的联查视图
	views, err := s.assignRepo.ListActive(ctx, a.OwnerID)
	if err != nil {
		return nil, err
	}
	for i := range views {
		if views[i].AssignmentID == a.AssignmentID {
			return &views[i], nil
		}
	}
	return nil, domain.NotFoundf("active assignment not found")
}
