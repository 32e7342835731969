// +build integration

package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"staywise-data/internal/config"
	"staywise-data/internal/database"
	"staywise-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 获取测试数据库连接
func getTestDB(t *testing.T) *sql.DB {
	cfg := &config.DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnvInt("TEST_DB_PORT", 5432),
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		Database: getEnv("TEST_DB_NAME", "staywise"),
		SSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
		return nil
	}
	return db
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// 清理测试数据（按外键依赖顺序）
func cleanupOwnerData(t *testing.T, db *sql.DB, ownerID string) {
	db.Exec(`DELETE FROM notifications WHERE owner_id = $1`, ownerID)
	db.Exec(`DELETE FROM complaints WHERE owner_id = $1`, ownerID)
	db.Exec(`DELETE FROM payments WHERE owner_id = $1`, ownerID)
	db.Exec(`DELETE FROM tenant_assignments WHERE owner_id = $1`, ownerID)
	db.Exec(`DELETE FROM beds WHERE owner_id = $1`, ownerID)
	db.Exec(`DELETE FROM rooms WHERE owner_id = $1`, ownerID)
	db.Exec(`DELETE FROM buildings WHERE owner_id = $1`, ownerID)
	db.Exec(`DELETE FROM users WHERE owner_id = $1`, ownerID)
	db.Exec(`DELETE FROM owners WHERE owner_id = $1`, ownerID)
}

// setupAssignFixture 注册业主并建好一张空床位
func setupAssignFixture(t *testing.T, db *sql.DB) (ownerID, bedID string) {
	ctx := context.Background()

	owners := NewPostgresOwnersRepository(db)
	props := NewPostgresPropertiesRepository(db)

	owner, _, err := owners.RegisterOwner(ctx, "Integration Owner", "it-owner@example.com", "", []byte("hash"))
	require.NoError(t, err)
	t.Cleanup(func() { cleanupOwnerData(t, db, owner.OwnerID) })

	b, err := props.CreateBuilding(ctx, owner.OwnerID, "IT Building", "1 Test Lane", domain.BuildingPG)
	require.NoError(t, err)
	room, err := props.CreateRoom(ctx, owner.OwnerID, b.BuildingID, "101", sql.NullInt64{Int64: 1, Valid: true})
	require.NoError(t, err)
	bed, err := props.CreateBed(ctx, owner.OwnerID, room.RoomID, "A")
	require.NoError(t, err)

	return owner.OwnerID, bed.BedID
}

func TestPostgresAssignVacateRoundTrip(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()
	ctx := context.Background()

	ownerID, bedID := setupAssignFixture(t, db)
	repo := NewPostgresAssignmentsRepository(db)
	props := NewPostgresPropertiesRepository(db)

	result, err := repo.Assign(ctx, ownerID, AssignParams{
		NewTenant:   &NewTenantUser{Name: "IT Tenant", Email: "it-tenant@example.com"},
		BedID:       bedID,
		StartDate:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		MonthlyRent: 8000,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentActive, result.Assignment.Status)
	assert.NotEmpty(t, result.TenantCode)

	// 床位落为 OCCUPIED
	beds, err := props.ListBeds(ctx, ownerID, "", domain.BedOccupied)
	require.NoError(t, err)
	require.Len(t, beds, 1)
	assert.Equal(t, bedID, beds[0].BedID)

	// 同一床位再次入住冲突
	_, err = repo.Assign(ctx, ownerID, AssignParams{
		NewTenant:   &NewTenantUser{Name: "Second", Email: "it-second@example.com"},
		BedID:       bedID,
		StartDate:   time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
		MonthlyRent: 8000,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	// 冲突的入住不能留下半截数据
	var users int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM users WHERE owner_id = $1 AND role = 'TENANT'`, ownerID,
	).Scan(&users))
	assert.Equal(t, 1, users)

	// 退租释放床位
	_, err = repo.Vacate(ctx, ownerID, result.Assignment.AssignmentID, "moving out")
	require.NoError(t, err)
	beds, err = props.ListBeds(ctx, ownerID, "", domain.BedAvailable)
	require.NoError(t, err)
	assert.Len(t, beds, 1)

	// 重复退租 NotFound
	_, err = repo.Vacate(ctx, ownerID, result.Assignment.AssignmentID, "")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPostgresRentMaterializationUnique(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()
	ctx := context.Background()

	ownerID, bedID := setupAssignFixture(t, db)
	assignments := NewPostgresAssignmentsRepository(db)
	payments := NewPostgresPaymentsRepository(db)

	result, err := assignments.Assign(ctx, ownerID, AssignParams{
		NewTenant:   &NewTenantUser{Name: "IT Tenant", Email: "it-rent@example.com"},
		BedID:       bedID,
		StartDate:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		MonthlyRent: 8000,
	})
	require.NoError(t, err)

	p1, created, err := payments.GetOrCreateForPeriod(ctx, ownerID, result.Assignment, 2026, 8)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(8000), p1.Amount)
	assert.Equal(t, domain.PaymentUnpaid, p1.Status)

	// 幂等：同账期不重复建
	p2, created, err := payments.GetOrCreateForPeriod(ctx, ownerID, result.Assignment, 2026, 8)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p1.PaymentID, p2.PaymentID)

	// 标缴/回退
	paid, err := payments.MarkPaid(ctx, ownerID, p1.PaymentID, "UPI", "TXN-IT", "note", time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.Status)

	unpaid, err := payments.MarkUnpaid(ctx, ownerID, p1.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentUnpaid, unpaid.Status)
	assert.Equal(t, "note", unpaid.Note.String)

	sum, err := payments.SummaryForPeriod(ctx, ownerID, 2026, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), sum.TotalExpected)
	assert.Equal(t, 1, sum.CountUnpaid)
}

func TestPostgresTenantSerialSequence(t *testing.T) {
	db := getTestDB(t)
	if db == nil {
		return
	}
	defer db.Close()
	ctx := context.Background()

	ownerID, bedID := setupAssignFixture(t, db)
	repo := NewPostgresAssignmentsRepository(db)
	props := NewPostgresPropertiesRepository(db)

	first, err := repo.Assign(ctx, ownerID, AssignParams{
		NewTenant:   &NewTenantUser{Name: "First", Email: "it-seq1@example.com"},
		BedID:       bedID,
		StartDate:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		MonthlyRent: 8000,
	})
	require.NoError(t, err)

	// 同楼另一张床，租客序号递增、楼栋序号复用
	room2, err := props.CreateRoom(ctx, ownerID, first.Assignment.BuildingID.String, "102", sql.NullInt64{})
	require.NoError(t, err)
	bed2, err := props.CreateBed(ctx, ownerID, room2.RoomID, "A")
	require.NoError(t, err)

	second, err := repo.Assign(ctx, ownerID, AssignParams{
		NewTenant:   &NewTenantUser{Name: "Second", Email: "it-seq2@example.com"},
		BedID:       bed2.BedID,
		StartDate:   time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
		MonthlyRent: 8500,
	})
	require.NoError(t, err)

	// SW<owner>-<building>-<tenant>：前两段一致，末段 +1
	assert.Equal(t, first.TenantCode[:len(first.TenantCode)-4], second.TenantCode[:len(second.TenantCode)-4])
	assert.NotEqual(t, first.TenantCode, second.TenantCode)
}
