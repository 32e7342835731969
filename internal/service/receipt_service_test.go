package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"staywise-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSender 记录发送、可注入失败
type fakeSender struct {
	phones   []string
	messages []string
	fail     bool
}

func (f *fakeSender) SendText(_ context.Context, phone, message string) error {
	if f.fail {
		return errors.New("gateway unreachable")
	}
	f.phones = append(f.phones, phone)
	f.messages = append(f.messages, message)
	return nil
}

// newReceiptEnv 造一条已缴账单备用
func newReceiptEnv(t *testing.T, sender WhatsAppSender) (*testEnv, ReceiptService, string, string) {
	t.Helper()
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.tenancy(t).Assign(ctx, AssignRequest{
		OwnerID: env.ownerID,
		NewTenant: &NewTenantInline{
			Name: "Ravi", Email: "ravi@example.com", Phone: "+919900112233", Password: "secret99",
		},
		BedID:       env.bedID,
		StartDate:   "2026-08-01",
		MonthlyRent: 8000,
	})
	require.NoError(t, err)

	rent := NewRentService(env.store, env.store, zap.NewNop())
	period, err := rent.GetRentForPeriod(ctx, RentPeriodRequest{OwnerID: env.ownerID, Year: 2026, Month: 8})
	require.NoError(t, err)
	require.Len(t, period.Rows, 1)
	paymentID := period.Rows[0].Payment.PaymentID

	_, err = rent.MarkPaid(ctx, MarkPaidRequest{
		OwnerID:   env.ownerID,
		PaymentID: paymentID,
		Method:    "UPI",
		Reference: "TXN-7",
		PaidAt:    "2026-08-05",
	})
	require.NoError(t, err)

	svc := NewReceiptService(env.store, env.store.Notifications(), sender, NopNotifier{}, zap.NewNop())
	return env, svc, paymentID, resp.TenantID
}

func TestGetReceipt(t *testing.T) {
	env, svc, paymentID, _ := newReceiptEnv(t, NopWhatsAppSender{})
	ctx := context.Background()

	r, err := svc.Get(ctx, env.ownerID, paymentID)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^SW-202608-[0-9A-F]{8}$`), r.ReceiptNo)
	assert.Equal(t, "Asha Properties", r.OwnerName)
	assert.Equal(t, "Ravi", r.TenantName)
	assert.Equal(t, int64(8000), r.Amount)
	assert.Equal(t, "2026-08-05", r.PaidAt)
	assert.Equal(t, "UPI", r.Method)

	assert.Contains(t, r.Text, "Received from Ravi the sum of 8000 for rent of 2026-08.")
	assert.Contains(t, r.Text, "Premises: Sunrise PG / Room 101 / Bed A")
	assert.Contains(t, r.Text, "Paid on 2026-08-05 via UPI (ref TXN-7)")

	// 编号按需生成，两次渲染不同
	again, err := svc.Get(ctx, env.ownerID, paymentID)
	require.NoError(t, err)
	assert.NotEqual(t, r.ReceiptNo, again.ReceiptNo)
}

func TestGetReceiptRequiresPaid(t *testing.T) {
	env, svc, paymentID, _ := newReceiptEnv(t, NopWhatsAppSender{})
	ctx := context.Background()

	rent := NewRentService(env.store, env.store, zap.NewNop())
	_, err := rent.MarkUnpaid(ctx, env.ownerID, paymentID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, env.ownerID, paymentID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	_, err = svc.Get(ctx, env.ownerID, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = svc.Get(ctx, env.ownerID, "")
	assert.True(t, errors.Is(err, domain.ErrInvalid))
}

func TestSendReceiptWhatsApp(t *testing.T) {
	sender := &fakeSender{}
	env, svc, paymentID, tenantID := newReceiptEnv(t, sender)
	ctx := context.Background()

	// 入住时已有一条欢迎通知
	before := env.store.NotificationCount(tenantID)

	resp, err := svc.SendWhatsApp(ctx, env.ownerID, paymentID)
	require.NoError(t, err)
	assert.True(t, resp.Delivered)
	assert.NotEmpty(t, resp.NotificationID)
	assert.True(t, strings.HasPrefix(resp.ReceiptNo, "SW-202608-"))

	// 通知记录落库且归属租客
	assert.Equal(t, before+1, env.store.NotificationCount(tenantID))

	require.Len(t, sender.phones, 1)
	assert.Equal(t, "+919900112233", sender.phones[0])
	assert.Contains(t, sender.messages[0], "Received from Ravi")
}

func TestSendReceiptDeliveryFailureIsSoft(t *testing.T) {
	sender := &fakeSender{fail: true}
	env, svc, paymentID, tenantID := newReceiptEnv(t, sender)
	ctx := context.Background()

	before := env.store.NotificationCount(tenantID)

	// 网关挂了：请求不报错，仅 delivered=false
	resp, err := svc.SendWhatsApp(ctx, env.ownerID, paymentID)
	require.NoError(t, err)
	assert.False(t, resp.Delivered)

	// 通知记录仍然落库
	assert.Equal(t, before+1, env.store.NotificationCount(tenantID))
}

func TestSendReceiptRequiresPaid(t *testing.T) {
	env, svc, paymentID, _ := newReceiptEnv(t, NopWhatsAppSender{})
	ctx := context.Background()

	rent := NewRentService(env.store, env.store, zap.NewNop())
	_, err := rent.MarkUnpaid(ctx, env.ownerID, paymentID)
	require.NoError(t, err)

	_, err = svc.SendWhatsApp(ctx, env.ownerID, paymentID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}
