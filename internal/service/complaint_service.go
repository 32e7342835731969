package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"staywise-data/internal/domain"
	"staywise-data/internal/repository"

	"go.uber.org/zap"
)

// ComplaintService 投诉服务接口
type ComplaintService interface {
	// File 租客发起投诉（需持有 ACTIVE 租约）
	File(ctx context.Context, principal domain.Principal, req FileComplaintRequest) (*domain.Complaint, error)

	// List 分页列表。租客只能看到自己的投诉
	List(ctx context.Context, principal domain.Principal, page, size int) (*ComplaintListResponse, error)

	// SetStatus 管理端标记解决/取消解决
	SetStatus(ctx context.Context, principal domain.Principal, req SetComplaintStatusRequest) (*domain.Complaint, error)
}

// complaintService 实现
type complaintService struct {
	complaintsRepo repository.ComplaintsRepository
	assignRepo     repository.AssignmentsRepository
	logger         *zap.Logger
}

// NewComplaintService 创建 ComplaintService 实例
func NewComplaintService(complaintsRepo repository.ComplaintsRepository, assignRepo repository.AssignmentsRepository, logger *zap.Logger) ComplaintService {
	return &complaintService{
		complaintsRepo: complaintsRepo,
		assignRepo:     assignRepo,
		logger:         logger,
	}
}

type FileComplaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// File 投诉归属从 ACTIVE 租约反查业主，而不是信任客户端传参
func (s *complaintService) File(ctx context.Context, principal domain.Principal, req FileComplaintRequest) (*domain.Complaint, error) {
	if principal.Role != domain.RoleTenant {
		return nil, domain.Invalidf("only tenants can file complaints")
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" {
		return nil, domain.Invalidf("title is required")
	}
	if req.Description == "" {
		return nil, domain.Invalidf("description is required")
	}

	a, err := s.assignRepo.GetActiveByTenant(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Conflictf("no active assignment: complaints require a current stay")
		}
		return nil, err
	}

	c, err := s.complaintsRepo.Create(ctx, a.OwnerID, principal.UserID, req.Title, req.Description)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Complaint filed",
		zap.String("owner_id", a.OwnerID),
		zap.String("complaint_id", c.ComplaintID),
		zap.String("tenant_id", principal.UserID),
	)
	return c, nil
}

type ComplaintListResponse struct {
	Complaints []repository.ComplaintView `json:"complaints"`
	Total      int                        `json:"total"`
	Page       int                        `json:"page"`
	Size       int                        `json:"size"`
}

func (s *complaintService) List(ctx context.Context, principal domain.Principal, page, size int) (*ComplaintListResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	ownerID := principal.OwnerID
	tenantID := ""
	if principal.Role == domain.RoleTenant {
		tenantID = principal.UserID
		if ownerID == "" {
			// 租客尚未绑定业主，从 ACTIVE 租约反查
			a, err := s.assignRepo.GetActiveByTenant(ctx, principal.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return &ComplaintListResponse{Complaints: []repository.ComplaintView{}, Page: page, Size: size}, nil
				}
				return nil, err
			}
			ownerID = a.OwnerID
		}
	}

	list, total, err := s.complaintsRepo.List(ctx, ownerID, tenantID, page, size)
	if err != nil {
		return nil, err
	}
	return &ComplaintListResponse{Complaints: list, Total: total, Page: page, Size: size}, nil
}

type SetComplaintStatusRequest struct {
	ComplaintID  string `json:"complaintId"`
	Resolved     bool   `json:"resolved"`
	ResolvedNote string `json:"resolvedNote,omitempty"`
}

func (s *complaintService) SetStatus(ctx context.Context, principal domain.Principal, req SetComplaintStatusRequest) (*domain.Complaint, error) {
	if !principal.CanManage() {
		return nil, domain.Invalidf("insufficient role")
	}
	if req.ComplaintID == "" {
		return nil, domain.Invalidf("complaintId is required")
	}
	c, err := s.complaintsRepo.SetStatus(ctx, principal.OwnerID, req.ComplaintID, req.Resolved, req.ResolvedNote, time.Now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("Complaint status updated",
		zap.String("owner_id", principal.OwnerID),
		zap.String("complaint_id", c.ComplaintID),
		zap.Bool("resolved", c.IsResolved),
	)
	return c, nil
}
