package service

import (
	"context"
	"fmt"
	"strings"

	"staywise-data/internal/domain"
	"staywise-data/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceiptService 缴费收据服务接口
type ReceiptService interface {
	// Get 生成收据（仅 PAID 账单，未缴返回 Conflict）
	Get(ctx context.Context, ownerID, paymentID string) (*Receipt, error)

	// SendWhatsApp 将收据文本经 WhatsApp 发给租客
	SendWhatsApp(ctx context.Context, ownerID, paymentID string) (*SendReceiptResponse, error)
}

// Receipt 渲染后的收据
type Receipt struct {
	ReceiptNo    string `json:"receiptNo"`
	OwnerName    string `json:"ownerName"`
	TenantName   string `json:"tenantName"`
	PeriodYear   int    `json:"periodYear"`
	PeriodMonth  int    `json:"periodMonth"`
	Amount       int64  `json:"amount"`
	PaidAt       string `json:"paidAt"`
	Method       string `json:"method,omitempty"`
	Reference    string `json:"reference,omitempty"`
	BedNumber    string `json:"bedNumber,omitempty"`
	RoomNumber   string `json:"roomNumber,omitempty"`
	BuildingName string `json:"buildingName,omitempty"`
	Address      string `json:"address,omitempty"`
	Text         string `json:"text"`
}

// receiptService 实现
type receiptService struct {
	paymentsRepo repository.PaymentsRepository
	notifsRepo   repository.NotificationsRepository
	sender       WhatsAppSender
	notifier     Notifier
	logger       *zap.Logger
}

// NewReceiptService 创建 ReceiptService 实例
func NewReceiptService(paymentsRepo repository.PaymentsRepository, notifsRepo repository.NotificationsRepository, sender WhatsAppSender, notifier Notifier, logger *zap.Logger) ReceiptService {
	return &receiptService{
		paymentsRepo: paymentsRepo,
		notifsRepo:   notifsRepo,
		sender:       sender,
		notifier:     notifier,
		logger:       logger,
	}
}

// receiptNo 收据编号：SW-<账期>-<短随机段>。
// 收据是按需渲染的，编号不落库，同一账单两次渲染编号不同
func receiptNo(p domain.Payment) string {
	short := strings.ToUpper(strings.SplitN(uuid.New().String(), "-", 2)[0])
	return fmt.Sprintf("SW-%04d%02d-%s", p.PeriodYear, p.PeriodMonth, short)
}

func (s *receiptService) Get(ctx context.Context, ownerID, paymentID string) (*Receipt, error) {
	if paymentID == "" {
		return nil, domain.Invalidf("paymentId is required")
	}
	data, err := s.paymentsRepo.GetReceiptData(ctx, ownerID, paymentID)
	if err != nil {
		return nil, err
	}
	if data.Payment.Status != domain.PaymentPaid {
		return nil, domain.Conflictf("receipt requires a paid record")
	}
	return buildReceipt(data), nil
}

func buildReceipt(data *repository.ReceiptData) *Receipt {
	p := data.Payment
	r := &Receipt{
		ReceiptNo:    receiptNo(p),
		OwnerName:    data.OwnerName,
		TenantName:   data.TenantName,
		PeriodYear:   p.PeriodYear,
		PeriodMonth:  p.PeriodMonth,
		Amount:       p.Amount,
		Method:       p.PaymentMethod.String,
		Reference:    p.Reference.String,
		BedNumber:    data.BedNumber,
		RoomNumber:   data.RoomNumber,
		BuildingName: data.BuildingName,
		Address:      data.Address,
	}
	if p.PaidAt.Valid {
		r.PaidAt = p.PaidAt.Time.Format("2006-01-02")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rent Receipt %s\n", r.ReceiptNo)
	fmt.Fprintf(&b, "%s\n", data.OwnerName)
	fmt.Fprintf(&b, "Received from %s the sum of %d for rent of %04d-%02d.\n",
		data.TenantName, p.Amount, p.PeriodYear, p.PeriodMonth)
	if data.BuildingName != "" {
		loc := data.BuildingName
		if data.RoomNumber != "" {
			loc += " / Room " + data.RoomNumber
		}
		if data.BedNumber != "" {
			loc += " / Bed " + data.BedNumber
		}
		fmt.Fprintf(&b, "Premises: %s\n", loc)
	}
	if r.PaidAt != "" {
		fmt.Fprintf(&b, "Paid on %s", r.PaidAt)
		if r.Method != "" {
			fmt.Fprintf(&b, " via %s", r.Method)
		}
		if r.Reference != "" {
			fmt.Fprintf(&b, " (ref %s)", r.Reference)
		}
		b.WriteString("\n")
	}
	r.Text = b.String()
	return r
}

type SendReceiptResponse struct {
	ReceiptNo      string `json:"receiptNo"`
	NotificationID string `json:"notificationId"`
	Delivered      bool   `json:"delivered"`
}

// SendWhatsApp 通知记录先落库（QUEUED），出站发送失败不算请求失败
func (s *receiptService) SendWhatsApp(ctx context.Context, ownerID, paymentID string) (*SendReceiptResponse, error) {
	if paymentID == "" {
		return nil, domain.Invalidf("paymentId is required")
	}
	data, err := s.paymentsRepo.GetReceiptData(ctx, ownerID, paymentID)
	if err != nil {
		return nil, err
	}
	if data.Payment.Status != domain.PaymentPaid {
		return nil, domain.Conflictf("receipt requires a paid record")
	}

	receipt := buildReceipt(data)
	notif, err := s.notifsRepo.Create(ctx, ownerID, data.TenantID, "WHATSAPP", receipt.Text)
	if err != nil {
		return nil, err
	}

	delivered := false
	if data.TenantPhone != "" {
		if err := s.sender.SendText(ctx, data.TenantPhone, receipt.Text); err != nil {
			s.logger.Warn("Receipt WhatsApp delivery failed",
				zap.String("payment_id", paymentID),
				zap.Error(err),
			)
		} else {
			delivered = true
		}
	} else {
		s.logger.Warn("Receipt WhatsApp skipped: tenant has no phone",
			zap.String("payment_id", paymentID),
		)
	}

	s.notifier.Queue(ctx, QueuedMessage{
		OwnerID: ownerID,
		UserID:  data.TenantID,
		Channel: "WHATSAPP",
		Message: receipt.Text,
	})

	s.logger.Info("Receipt sent",
		zap.String("owner_id", ownerID),
		zap.String("payment_id", paymentID),
		zap.String("receipt_no", receipt.ReceiptNo),
		zap.Bool("delivered", delivered),
	)
	return &SendReceiptResponse{
		ReceiptNo:      receipt.ReceiptNo,
		NotificationID: notif.NotificationID,
		Delivered:      delivered,
	}, nil
}
