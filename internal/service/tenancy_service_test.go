package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"staywise-data/internal/domain"
	"staywise-data/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEnv 单测夹具：内存库 + 一个注册好的业主和一张空床位
type testEnv struct {
	store   *repository.MemoryStore
	ownerID string

	buildingID string
	roomID     string
	bedID      string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()

	owner, _, err := store.RegisterOwner(ctx, "Asha Properties", "asha@example.com", "", []byte("hash"))
	require.NoError(t, err)

	b, err := store.CreateBuilding(ctx, owner.OwnerID, "Sunrise PG", "12 Hill Road", domain.BuildingPG)
	require.NoError(t, err)
	room, err := store.CreateRoom(ctx, owner.OwnerID, b.BuildingID, "101", sql.NullInt64{Int64: 1, Valid: true})
	require.NoError(t, err)
	bed, err := store.CreateBed(ctx, owner.OwnerID, room.RoomID, "A")
	require.NoError(t, err)

	return &testEnv{
		store:      store,
		ownerID:    owner.OwnerID,
		buildingID: b.BuildingID,
		roomID:     room.RoomID,
		bedID:      bed.BedID,
	}
}

func (e *testEnv) tenancy(t *testing.T) TenancyService {
	t.Helper()
	return NewTenancyService(e.store, e.store, NopNotifier{}, zap.NewNop())
}

func newTenant(name, email string) *NewTenantInline {
	return &NewTenantInline{Name: name, Email: email, Password: "secret99"}
}

func newTenantUserFixture(name, email string) repository.NewTenantUser {
	return repository.NewTenantUser{Name: name, Email: email}
}

func TestAssignNewTenantOccupiesBed(t *testing.T) {
	env := newTestEnv(t)
	svc := env.tenancy(t)
	ctx := context.Background()

	resp, err := svc.Assign(ctx, AssignRequest{
		OwnerID:     env.ownerID,
		NewTenant:   newTenant("Ravi", "ravi@example.com"),
		BedID:       env.bedID,
		StartDate:   "2026-08-01",
		MonthlyRent: 8000,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentActive, resp.Assignment.Status)
	assert.NotEmpty(t, resp.TenantID)
	// 内联创建的租客拿到编码：业主序号 1、楼栋序号 1、租客序号 1
	assert.Equal(t, "SW001-01-0001", resp.TenantCode)

	beds, err := env.store.ListBeds(ctx, env.ownerID, "", domain.BedOccupied)
	require.NoError(t, err)
	require.Len(t, beds, 1)
	assert.Equal(t, "Ravi", beds[0].TenantName)

	// 欢迎通知随入住落库
	assert.Equal(t, 1, env.store.NotificationCount(resp.TenantID))
}

func TestAssignOccupiedBedConflict(t *testing.T) {
	env := newTestEnv(t)
	svc := env.tenancy(t)
	ctx := context.Background()

	_, err := svc.Assign(ctx, AssignRequest{
		OwnerID:     env.ownerID,
		NewTenant:   newTenant("Ravi", "ravi@example.com"),
		BedID:       env.bedID,
		StartDate:   "2026-08-01",
		MonthlyRent: 8000,
	})
	require.NoError(t, err)

	_, err = svc.Assign(ctx, AssignRequest{
		OwnerID:     env.ownerID,
		NewTenant:   newTenant("Meera", "meera@example.com"),
		BedID:       env.bedID,
		StartDate:   "2026-08-02",
		MonthlyRent: 8000,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestAssignTenantAlreadyActiveConflict(t *testing.T) {
	env := newTestEnv(t)
	svc := env.tenancy(t)
	ctx := context.Background()

	resp, err := svc.Assign(ctx, AssignRequest{
		OwnerID:     env.ownerID,
		NewTenant:   newTenant("Ravi", "ravi@example.com"),
		BedID:       env.bedID,
		StartDate:   "2026-08-01",
		MonthlyRent: 8000,
	})
	require.NoError(t, err)

	bed2, err := env.store.CreateBed(ctx, env.ownerID, env.roomID, "B")
	require.NoError(t, err)

	_, err = svc.Assign(ctx, AssignRequest{
		OwnerID:     env.ownerID,
		TenantID:    resp.TenantID,
		BedID:       bed2.BedID,
		StartDate:   "2026-08-05",
		MonthlyRent: 9000,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestAssignCrossOwnerTenantConflict(t *testing.T) {
	env := newTestEnv(t)
	svc := env.tenancy(t)
	ctx := context.Background()

	// 另一个业主先收编该租客
	other, _, err := env.store.RegisterOwner(ctx, "Other Homes", "other@example.com", "", []byte("hash"))
	require.NoError(t, err)
	tenant, err := env.store.CreateTenant(ctx, other.OwnerID, repository.NewTenantUser{
		Name: "Ravi", Email: "ravi@example.com",
	})
	require.NoError(t, err)

	_, err = svc.Assign(ctx, AssignRequest{
		OwnerID:     env.ownerID,
		TenantID:    tenant.UserID,
		BedID:       env.bedID,
		StartDate:   "2026-08-01",
		MonthlyRent: 8000,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	// 失败的入住不能留下占用的床位
	beds, err := env.store.ListBeds(ctx, env.ownerID, "", domain.BedAvailable)
	require.NoError(t, err)
	assert.Len(t, beds, 1)
}

func TestAssignValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.tenancy(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  AssignRequest
	}{
		{"zero rent", AssignRequest{
			OwnerID: env.ownerID, NewTenant: newTenant("R", "r@example.com"),
			BedID: env.bedID, StartDate: "2026-08-01", MonthlyRent: 0,
		}},
		{"negative rent", AssignRequest{
			OwnerID: env.ownerID, NewTenant: newTenant("R", "r@example.com"),
			BedID: env.bedID, StartDate: "2026-08-01", MonthlyRent: -100,
		}},
		{"bad start date", AssignRequest{
			OwnerID: env.ownerID, NewTenant: newTenant("R", "r@example.com"),
			BedID: env.bedID, StartDate: "01/08/2026", MonthlyRent: 8000,
		}},
		{"both tenant and newTenant", AssignRequest{
			OwnerID: env.ownerID, TenantID: "some-id", NewTenant: newTenant("R", "r@example.com"),
			BedID: env.bedID, StartDate: "2026-08-01", MonthlyRent: 8000,
		}},
		{"neither tenant nor newTenant", AssignRequest{
			OwnerID: env.ownerID,
			BedID:   env.bedID, StartDate: "2026-08-01", MonthlyRent: 8000,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Assign(ctx, tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalid))
		})
	}
}

func TestAssignBuildingOnly(t *testing.T) {
	env := newTestEnv(t)
	svc := env.tenancy(t)
	ctx := context.Background()

	// HOUSE 类物业：不指定床位直接挂楼栋
	resp, err := svc.Assign(ctx, AssignRequest{
		OwnerID:     env.ownerID,
		NewTenant:   newTenant("Ravi", "ravi@example.com"),
		BuildingID:  env.buildingID,
		StartDate:   "2026-08-01",
		MonthlyRent: 15000,
	})
	require.NoError(t, err)
	assert.False(t, resp.Assignment.BedID.Valid)
	assert.Equal(t, env.buildingID, resp.Assignment.BuildingID.String)
}

func TestVacateReleasesBed(t *testing.T) {
	env := newTestEnv(t)
	svc := env.tenancy(t)
	ctx := context.Background()

	resp, err := svc.Assign(ctx, AssignRequest{
		OwnerID:     env.ownerID,
		NewTenant:   newTenant("Ravi", "ravi@example.com"),
		BedID:       env.bedID,
		StartDate:   "2026-08-01",
		MonthlyRent: 8000,
	})
	require.NoError(t, err)

	err = svc.Vacate(ctx, VacateRequest{
		OwnerID:      env.ownerID,
		AssignmentID: resp.Assignment.AssignmentID,
		EndedNote:    "relocating",
	})
	require.NoError(t, err)

	beds, err := env.store.ListBeds(ctx, env.ownerID, "", domain.BedAvailable)
	require.NoError(t, err)
	assert.Len(t, beds, 1)

	active, err := svc.ListActive(ctx, env.ownerID)
	require.NoError(t, err)
	assert.Empty(t, active)

	// 重复退租 NotFound
	err = svc.Vacate(ctx, VacateRequest{OwnerID: env.ownerID, AssignmentID: resp.Assignment.AssignmentID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVacateThenReassign(t *testing.T) {
	env := newTestEnv(t)
	svc := env.tenancy(t)
	ctx := context.Background()

	first, err := svc.Assign(ctx, AssignRequest{
		OwnerID:     env.ownerID,
		NewTenant:   newTenant("Ravi", "ravi@example.com"),
		BedID:       env.bedID,
		StartDate:   "2026-07-01",
		MonthlyRent: 8000,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Vacate(ctx, VacateRequest{OwnerID: env.ownerID, AssignmentID: first.Assignment.AssignmentID}))

	// 释放后的床位可再次入住
	second, err := svc.Assign(ctx, AssignRequest{
		OwnerID:     env.ownerID,
		NewTenant:   newTenant("Meera", "meera@example.com"),
		BedID:       env.bedID,
		StartDate:   "2026-08-01",
		MonthlyRent: 8500,
	})
	require.NoError(t, err)
	// 租客序号递增
	assert.Equal(t, "SW001-01-0002", second.TenantCode)
}

func TestListActiveView(t *testing.T) {
	env := newTestEnv(t)
	svc := env.tenancy(t)
	ctx := context.Background()

	_, err := svc.Assign(ctx, AssignRequest{
		OwnerID:     env.ownerID,
		NewTenant:   newTenant("Ravi", "ravi@example.com"),
		BedID:       env.bedID,
		StartDate:   "2026-08-01",
		MonthlyRent: 8000,
	})
	require.NoError(t, err)

	list, err := svc.ListActive(ctx, env.ownerID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ravi", list[0].TenantName)
	assert.Equal(t, "A", list[0].BedNumber)
	assert.Equal(t, "101", list[0].RoomNumber)
	assert.Equal(t, "Sunrise PG", list[0].BuildingName)
	assert.Equal(t, int64(8000), list[0].MonthlyRent)
}

func TestMyAssignment(t *testing.T) {
	env := newTestEnv(t)
	svc := env.tenancy(t)
	ctx := context.Background()

	resp, err := svc.Assign(ctx, AssignRequest{
		OwnerID:     env.ownerID,
		NewTenant:   newTenant("Ravi", "ravi@example.com"),
		BedID:       env.bedID,
		StartDate:   "2026-08-01",
		MonthlyRent: 8000,
	})
	require.NoError(t, err)

	view, err := svc.MyAssignment(ctx, resp.TenantID)
	require.NoError(t, err)
	assert.Equal(t, resp.Assignment.AssignmentID, view.AssignmentID)
	assert.Equal(t, "A", view.BedNumber)
	assert.Equal(t, "Sunrise PG", view.BuildingName)

	// 退租后查不到
	require.NoError(t, svc.Vacate(ctx, VacateRequest{OwnerID: env.ownerID, AssignmentID: resp.Assignment.AssignmentID}))
	_, err = svc.MyAssignment(ctx, resp.TenantID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreateTenantValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.tenancy(t)
	ctx := context.Background()

	_, err := svc.CreateTenant(ctx, CreateTenantRequest{OwnerID: env.ownerID, Name: "", Email: "x@example.com", Password: "secret99"})
	assert.True(t, errors.Is(err, domain.ErrInvalid))

	_, err = svc.CreateTenant(ctx, CreateTenantRequest{OwnerID: env.ownerID, Name: "X", Email: "not-an-email", Password: "secret99"})
	assert.True(t, errors.Is(err, domain.ErrInvalid))

	_, err = svc.CreateTenant(ctx, CreateTenantRequest{OwnerID: env.ownerID, Name: "X", Email: "x@example.com", Password: "short"})
	assert.True(t, errors.Is(err, domain.ErrInvalid))

	created, err := svc.CreateTenant(ctx, CreateTenantRequest{OwnerID: env.ownerID, Name: "X", Email: "X@Example.com", Password: "secret99"})
	require.NoError(t, err)
	// 邮箱归一化为小写
	assert.Equal(t, "x@example.com", created.Email)

	// 邮箱唯一
	_, err = svc.CreateTenant(ctx, CreateTenantRequest{OwnerID: env.ownerID, Name: "Y", Email: "x@example.com", Password: "secret99"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}
