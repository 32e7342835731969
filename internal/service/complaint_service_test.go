package service

import (
	"context"
	"errors"
	"testing"

	"staywise-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newComplaintEnv(t *testing.T) (*testEnv, ComplaintService, string) {
	t.Helper()
	env := newTestEnv(t)
	tenancy := env.tenancy(t)

	resp, err := tenancy.Assign(context.Background(), AssignRequest{
		OwnerID:     env.ownerID,
		NewTenant:   newTenant("Ravi", "ravi@example.com"),
		BedID:       env.bedID,
		StartDate:   "2026-08-01",
		MonthlyRent: 8000,
	})
	require.NoError(t, err)

	svc := NewComplaintService(env.store, env.store, zap.NewNop())
	return env, svc, resp.TenantID
}

func tenantPrincipal(tenantID string) domain.Principal {
	// 租客登录态可能还没有 owner_id，服务端要能反查
	return domain.Principal{UserID: tenantID, Role: domain.RoleTenant}
}

func TestFileComplaint(t *testing.T) {
	env, svc, tenantID := newComplaintEnv(t)
	ctx := context.Background()

	c, err := svc.File(ctx, tenantPrincipal(tenantID), FileComplaintRequest{
		Title:       "Water leakage",
		Description: "Bathroom tap leaking since Monday",
	})
	require.NoError(t, err)
	// 归属业主从租约反查
	assert.Equal(t, env.ownerID, c.OwnerID)
	assert.Equal(t, tenantID, c.TenantID)
	assert.False(t, c.IsResolved)
}

func TestFileComplaintRequiresActiveStay(t *testing.T) {
	env, svc, _ := newComplaintEnv(t)
	ctx := context.Background()

	// 无租约的租客
	outsider, err := env.store.CreateTenant(ctx, env.ownerID, newTenantUserFixture("Leela", "leela@example.com"))
	require.NoError(t, err)

	_, err = svc.File(ctx, tenantPrincipal(outsider.UserID), FileComplaintRequest{
		Title:       "Noise",
		Description: "Loud music at night",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestFileComplaintValidation(t *testing.T) {
	_, svc, tenantID := newComplaintEnv(t)
	ctx := context.Background()

	_, err := svc.File(ctx, tenantPrincipal(tenantID), FileComplaintRequest{Title: "  ", Description: "x"})
	assert.True(t, errors.Is(err, domain.ErrInvalid))

	_, err = svc.File(ctx, tenantPrincipal(tenantID), FileComplaintRequest{Title: "x", Description: ""})
	assert.True(t, errors.Is(err, domain.ErrInvalid))

	// 业主不能以租客身份投诉
	_, err = svc.File(ctx, domain.Principal{UserID: "u", Role: domain.RoleOwner}, FileComplaintRequest{Title: "x", Description: "y"})
	assert.True(t, errors.Is(err, domain.ErrInvalid))
}

func TestListComplaintsByRole(t *testing.T) {
	env, svc, tenantID := newComplaintEnv(t)
	ctx := context.Background()

	_, err := svc.File(ctx, tenantPrincipal(tenantID), FileComplaintRequest{Title: "Leak", Description: "tap"})
	require.NoError(t, err)
	_, err = svc.File(ctx, tenantPrincipal(tenantID), FileComplaintRequest{Title: "Fan", Description: "broken"})
	require.NoError(t, err)

	// 业主看到全部
	ownerView, err := svc.List(ctx, domain.Principal{UserID: "o", OwnerID: env.ownerID, Role: domain.RoleOwner}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, ownerView.Total)
	assert.Len(t, ownerView.Complaints, 2)
	assert.Equal(t, "Ravi", ownerView.Complaints[0].TenantName)

	// 租客只看到自己的
	tenantView, err := svc.List(ctx, tenantPrincipal(tenantID), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, tenantView.Total)

	// 没有租约的租客得到空列表而不是报错
	other, err := env.store.CreateTenant(ctx, env.ownerID, newTenantUserFixture("Leela", "leela@example.com"))
	require.NoError(t, err)
	emptyView, err := svc.List(ctx, tenantPrincipal(other.UserID), 1, 20)
	require.NoError(t, err)
	assert.Empty(t, emptyView.Complaints)
	assert.Zero(t, emptyView.Total)
}

func TestListComplaintsPagination(t *testing.T) {
	env, svc, tenantID := newComplaintEnv(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.File(ctx, tenantPrincipal(tenantID), FileComplaintRequest{
			Title:       "Issue",
			Description: "details",
		})
		require.NoError(t, err)
	}

	owner := domain.Principal{UserID: "o", OwnerID: env.ownerID, Role: domain.RoleOwner}

	page1, err := svc.List(ctx, owner, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, page1.Total)
	assert.Len(t, page1.Complaints, 2)

	page3, err := svc.List(ctx, owner, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page3.Complaints, 1)

	// 非法分页参数回落默认值
	fallback, err := svc.List(ctx, owner, 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, fallback.Page)
	assert.Equal(t, 20, fallback.Size)
}

func TestSetComplaintStatus(t *testing.T) {
	env, svc, tenantID := newComplaintEnv(t)
	ctx := context.Background()

	c, err := svc.File(ctx, tenantPrincipal(tenantID), FileComplaintRequest{Title: "Leak", Description: "tap"})
	require.NoError(t, err)

	owner := domain.Principal{UserID: "o", OwnerID: env.ownerID, Role: domain.RoleOwner}

	resolved, err := svc.SetStatus(ctx, owner, SetComplaintStatusRequest{
		ComplaintID:  c.ComplaintID,
		Resolved:     true,
		ResolvedNote: "plumber fixed it",
	})
	require.NoError(t, err)
	assert.True(t, resolved.IsResolved)
	assert.True(t, resolved.ResolvedAt.Valid)
	assert.Equal(t, "plumber fixed it", resolved.ResolvedNote.String)

	// 取消解决
	reopened, err := svc.SetStatus(ctx, owner, SetComplaintStatusRequest{ComplaintID: c.ComplaintID})
	require.NoError(t, err)
	assert.False(t, reopened.IsResolved)
	assert.False(t, reopened.ResolvedAt.Valid)

	// 租客不能操作状态
	_, err = svc.SetStatus(ctx, tenantPrincipal(tenantID), SetComplaintStatusRequest{ComplaintID: c.ComplaintID, Resolved: true})
	assert.True(t, errors.Is(err, domain.ErrInvalid))

	// 跨业主不可见
	_, err = svc.SetStatus(ctx, domain.Principal{UserID: "x", OwnerID: "other", Role: domain.RoleOwner},
		SetComplaintStatusRequest{ComplaintID: c.ComplaintID, Resolved: true})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
