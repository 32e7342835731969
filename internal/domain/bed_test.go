package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBedOccupyRelease(t *testing.T) {
	bed := Bed{BedID: "b1", BedNumber: "A", Status: BedAvailable}

	require.NoError(t, bed.Occupy())
	assert.Equal(t, BedOccupied, bed.Status)

	// 二次占用拒绝
	err := bed.Occupy()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))

	require.NoError(t, bed.Release())
	assert.Equal(t, BedAvailable, bed.Status)

	// 空闲床位不能释放
	err = bed.Release()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))

	// 释放后可再次占用（循环状态机）
	require.NoError(t, bed.Occupy())
}

func TestOwnerLink(t *testing.T) {
	link := Unlinked()
	assert.False(t, link.Linked())

	linked, err := link.LinkTo("owner-1")
	require.NoError(t, err)
	id, ok := linked.OwnerID()
	assert.True(t, ok)
	assert.Equal(t, "owner-1", id)

	// 重复绑定同一业主幂等
	again, err := linked.LinkTo("owner-1")
	require.NoError(t, err)
	assert.Equal(t, linked, again)

	// 跨业主绑定拒绝
	_, err = linked.LinkTo("owner-2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestTenantCode(t *testing.T) {
	assert.Equal(t, "SW001-01-0001", TenantCode(1, 1, 1))
	assert.Equal(t, "SW042-00-0107", TenantCode(42, 0, 107))
	assert.Equal(t, "SW123-12-9999", TenantCode(123, 12, 9999))
}

func TestPaymentMarkPaidUnpaid(t *testing.T) {
	p := Payment{Status: PaymentUnpaid}
	at := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	p.MarkPaid(at, "UPI", "TXN-1", "first month")
	assert.Equal(t, PaymentPaid, p.Status)
	assert.Equal(t, at, p.PaidAt.Time)
	assert.Equal(t, "UPI", p.PaymentMethod.String)
	assert.Equal(t, "TXN-1", p.Reference.String)
	assert.Equal(t, "first month", p.Note.String)

	// 回退清支付字段但保留备注
	p.MarkUnpaid()
	assert.Equal(t, PaymentUnpaid, p.Status)
	assert.False(t, p.PaidAt.Valid)
	assert.False(t, p.PaymentMethod.Valid)
	assert.False(t, p.Reference.Valid)
	assert.Equal(t, "first month", p.Note.String)

	// 再次标缴不带备注时保留旧备注
	p.MarkPaid(at, "CASH", "", "")
	assert.Equal(t, "first month", p.Note.String)
	assert.Equal(t, "CASH", p.PaymentMethod.String)
	assert.False(t, p.Reference.Valid)
}

func TestAssignmentEnd(t *testing.T) {
	a := TenantAssignment{Status: AssignmentActive}
	at := time.Now()

	require.NoError(t, a.End(at, "moved out"))
	assert.Equal(t, AssignmentInactive, a.Status)
	assert.Equal(t, "moved out", a.EndedNote.String)

	// 已结束的租约不能再次结束
	err := a.End(at, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestComplaintSetResolved(t *testing.T) {
	c := Complaint{}
	at := time.Now()

	c.SetResolved(true, "fixed the leak", at)
	assert.True(t, c.IsResolved)
	assert.True(t, c.ResolvedAt.Valid)
	assert.Equal(t, "fixed the leak", c.ResolvedNote.String)

	// 取消解决清 resolved_at，保留备注
	c.SetResolved(false, "", at)
	assert.False(t, c.IsResolved)
	assert.False(t, c.ResolvedAt.Valid)
	assert.Equal(t, "fixed the leak", c.ResolvedNote.String)
}

func TestPrincipalCanManage(t *testing.T) {
	assert.True(t, Principal{Role: RoleOwner}.CanManage())
	assert.True(t, Principal{Role: RoleManager}.CanManage())
	assert.False(t, Principal{Role: RoleTenant}.CanManage())
	assert.False(t, Principal{Role: RoleSuperAdmin}.CanManage())
}

func TestCurrentPeriod(t *testing.T) {
	y, m := CurrentPeriod(time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, 2026, y)
	assert.Equal(t, 8, m)
}
