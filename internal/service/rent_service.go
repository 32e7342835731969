package service

import (
	"context"
	"time"

	"staywise-data/internal/domain"
	"staywise-data/internal/repository"

	"go.uber.org/zap"
)

// RentService 月度租金账单服务接口
type RentService interface {
	// GetRentForPeriod 获取账期账单，缺失的惰性物化
	GetRentForPeriod(ctx context.Context, req RentPeriodRequest) (*RentPeriodResponse, error)

	// MarkPaid 标记账单已缴（幂等，可重复覆盖）
	MarkPaid(ctx context.Context, req MarkPaidRequest) (*domain.Payment, error)

	// MarkUnpaid 回退为未缴
	MarkUnpaid(ctx context.Context, ownerID, paymentID string) (*domain.Payment, error)

	// Summary 当前自然账期汇总（纯读，不物化）
	Summary(ctx context.Context, ownerID string) (*domain.RentSummary, error)

	// Export 导出账期账单 XLSX
	Export(ctx context.Context, req RentPeriodRequest) ([]byte, string, error)
}

// rentService 实现
type rentService struct {
	paymentsRepo repository.PaymentsRepository
	assignRepo   repository.AssignmentsRepository
	logger       *zap.Logger
}

// NewRentService 创建 RentService 实例
func NewRentService(paymentsRepo repository.PaymentsRepository, assignRepo repository.AssignmentsRepository, logger *zap.Logger) RentService {
	return &rentService{
		paymentsRepo: paymentsRepo,
		assignRepo:   assignRepo,
		logger:       logger,
	}
}

type RentPeriodRequest struct {
	OwnerID string
	Year    int // 0 表示当前账期
	Month   int
}

type RentPeriodResponse struct {
	PeriodYear  int                  `json:"periodYear"`
	PeriodMonth int                  `json:"periodMonth"`
	Rows        []repository.RentRow `json:"rows"`
}

// resolvePeriod 账期缺省取当前年月，否则整组校验
func resolvePeriod(year, month int) (int, int, error) {
	if year == 0 && month == 0 {
		y, m := domain.CurrentPeriod(time.Now())
		return y, m, nil
	}
	if year < 2000 || year > 2100 {
		return 0, 0, domain.Invalidf("invalid year: %d", year)
	}
	if month < 1 || month > 12 {
		return 0, 0, domain.Invalidf("invalid month: %d", month)
	}
	return year, month, nil
}

// GetRentForPeriod 先对每条 ACTIVE 租约物化当期账单（幂等），再整表读回。
// 并发请求同一账期各自 upsert，唯一约束保证只会落一条
func (s *rentService) GetRentForPeriod(ctx context.Context, req RentPeriodRequest) (*RentPeriodResponse, error) {
	year, month, err := resolvePeriod(req.Year, req.Month)
	if err != nil {
		return nil, err
	}

	assignments, err := s.assignRepo.ListActiveAssignments(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}
	created := 0
	for _, a := range assignments {
		_, wasCreated, err := s.paymentsRepo.GetOrCreateForPeriod(ctx, req.OwnerID, a, year, month)
		if err != nil {
			return nil, err
		}
		if wasCreated {
			created++
		}
	}
	if created > 0 {
		s.logger.Info("Rent records materialized",
			zap.String("owner_id", req.OwnerID),
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Int("created", created),
		)
	}

	rows, err := s.paymentsRepo.ListForPeriod(ctx, req.OwnerID, year, month)
	if err != nil {
		return nil, err
	}
	return &RentPeriodResponse{PeriodYear: year, PeriodMonth: month, Rows: rows}, nil
}

type MarkPaidRequest struct {
	OwnerID   string
	PaymentID string `json:"paymentId"`
	Method    string `json:"method,omitempty"`
	Reference string `json:"reference,omitempty"`
	Note      string `json:"note,omitempty"`
	PaidAt    string `json:"paidAt,omitempty"` // ISO 日期，缺省为当前时间
}

func (s *rentService) MarkPaid(ctx context.Context, req MarkPaidRequest) (*domain.Payment, error) {
	if req.PaymentID == "" {
		return nil, domain.Invalidf("paymentId is required")
	}
	at := time.Now()
	if req.PaidAt != "" {
		parsed, err := time.Parse("2006-01-02", req.PaidAt)
		if err != nil {
			return nil, domain.Invalidf("invalid paid date: %s", req.PaidAt)
		}
		at = parsed
	}
	p, err := s.paymentsRepo.MarkPaid(ctx, req.OwnerID, req.PaymentID, req.Method, req.Reference, req.Note, at)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Rent marked paid",
		zap.String("owner_id", req.OwnerID),
		zap.String("payment_id", p.PaymentID),
		zap.Int64("amount", p.Amount),
	)
	return p, nil
}

func (s *rentService) MarkUnpaid(ctx context.Context, ownerID, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, domain.Invalidf("paymentId is required")
	}
	p, err := s.paymentsRepo.MarkUnpaid(ctx, ownerID, paymentID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Rent marked unpaid",
		zap.String("owner_id", ownerID),
		zap.String("payment_id", p.PaymentID),
	)
	return p, nil
}

func (s *rentService) Summary(ctx context.Context, ownerID string) (*domain.RentSummary, error) {
	year, month := domain.CurrentPeriod(time.Now())
	return s.paymentsRepo.SummaryForPeriod(ctx, ownerID, year, month)
}

// Export 导出前先走一遍物化，保证新租约也出现在表里
func (s *rentService) Export(ctx context.Context, req RentPeriodRequest) ([]byte, string, error) {
	resp, err := s.GetRentForPeriod(ctx, req)
	if err != nil {
		return nil, "", err
	}
	data, err := buildRentWorkbook(resp.PeriodYear, resp.PeriodMonth, resp.Rows)
	if err != nil {
		s.logger.Error("Rent export failed", zap.Error(err))
		return nil, "", domain.Internalf("export failed")
	}
	filename := rentExportFilename(resp.PeriodYear, resp.PeriodMonth)
	return data, filename, nil
}
