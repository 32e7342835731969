package repository

import (
	"context"
	"database/sql"

	"staywise-data/internal/domain"

	"github.com/google/uuid"
)

// PostgresPropertiesRepository 楼栋/房间/床位Repository实现
type PostgresPropertiesRepository struct {
	db *sql.DB
}

func NewPostgresPropertiesRepository(db *sql.DB) *PostgresPropertiesRepository {
	return &PostgresPropertiesRepository{db: db}
}

// 确保实现了接口
var _ PropertiesRepository = (*PostgresPropertiesRepository)(nil)

// --- Buildings ---

func (r *PostgresPropertiesRepository) CreateBuilding(ctx context.Context, ownerID, name, address, buildingType string) (*domain.Building, error) {
	b := &domain.Building{
		BuildingID: uuid.NewString(),
		OwnerID:    ownerID,
		Name:       name,
		Type:       buildingType,
	}
	if address != "" {
		b.Address = sql.NullString{String: address, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO buildings (building_id, owner_id, name, address, building_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, b.BuildingID, ownerID, name, b.Address, buildingType).Scan(&b.CreatedAt)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	return b, nil
}

func (r *PostgresPropertiesRepository) GetBuilding(ctx context.Context, ownerID, buildingID string) (*domain.Building, error) {
	var b domain.Building
	err := r.db.QueryRowContext(ctx, `
		SELECT building_id::text, owner_id::text, name, address, building_type, serial, created_at
		FROM buildings
		WHERE building_id = $1 AND owner_id = $2
	`, buildingID, ownerID).Scan(
		&b.BuildingID, &b.OwnerID, &b.Name, &b.Address, &b.Type, &b.Serial, &b.CreatedAt,
	)
	if err != nil {
		return nil, mapSQLError(err, "building not found")
	}
	return &b, nil
}

func (r *PostgresPropertiesRepository) ListBuildings(ctx context.Context, ownerID string) ([]BuildingView, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT b.building_id::text, b.owner_id::text, b.name, b.address, b.building_type,
		       b.serial, b.created_at,
		       COUNT(r.room_id) AS room_count
		FROM buildings b
		LEFT JOIN rooms r ON r.building_id = b.building_id
		WHERE b.owner_id = $1
		GROUP BY b.building_id
		ORDER BY b.created_at
	`, ownerID)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	defer rows.Close()

	items := make([]BuildingView, 0)
	for rows.Next() {
		var v BuildingView
		if err := rows.Scan(
			&v.BuildingID, &v.OwnerID, &v.Name, &v.Address, &v.Type,
			&v.Serial, &v.CreatedAt, &v.RoomCount,
		); err != nil {
			return nil, mapSQLError(err, "")
		}
		items = append(items, v)
	}
	return items, mapSQLError(rows.Err(), "")
}

// --- Rooms ---

func (r *PostgresPropertiesRepository) CreateRoom(ctx context.Context, ownerID, buildingID, roomNumber string, floor sql.NullInt64) (*domain.Room, error) {
	// 校验楼栋归属
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM buildings WHERE building_id = $1 AND owner_id = $2)
	`, buildingID, ownerID).Scan(&exists)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	if !exists {
		return nil, domain.NotFoundf("building not found")
	}

	room := &domain.Room{
		RoomID:     uuid.NewString(),
		OwnerID:    ownerID,
		BuildingID: buildingID,
		RoomNumber: roomNumber,
		Floor:      floor,
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO rooms (room_id, owner_id, building_id, room_number, floor)
		VALUES ($1, $2, $3, $4, $5)
	`, room.RoomID, ownerID, buildingID, roomNumber, floor)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	return room, nil
}

func (r *PostgresPropertiesRepository) ListRooms(ctx context.Context, ownerID, buildingID string) ([]RoomView, error) {
	query := `
		SELECT r.room_id::text, r.owner_id::text, r.building_id::text, r.room_number, r.floor,
		       COUNT(bd.bed_id) AS bed_count,
		       b.name AS building_name
		FROM rooms r
		JOIN buildings b ON b.building_id = r.building_id
		LEFT JOIN beds bd ON bd.room_id = r.room_id
		WHERE r.owner_id = $1
	`
	args := []any{ownerID}
	if buildingID != "" {
		query += ` AND r.building_id = $2`
		args = append(args, buildingID)
	}
	query += ` GROUP BY r.room_id, b.name ORDER BY r.room_number`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	defer rows.Close()

	items := make([]RoomView, 0)
	for rows.Next() {
		var v RoomView
		if err := rows.Scan(
			&v.RoomID, &v.OwnerID, &v.BuildingID, &v.RoomNumber, &v.Floor,
			&v.BedCount, &v.BuildingName,
		); err != nil {
			return nil, mapSQLError(err, "")
		}
		items = append(items, v)
	}
	return items, mapSQLError(rows.Err(), "")
}

// --- Beds ---

func (r *PostgresPropertiesRepository) CreateBed(ctx context.Context, ownerID, roomID, bedNumber string) (*domain.Bed, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM rooms WHERE room_id = $1 AND owner_id = $2)
	`, roomID, ownerID).Scan(&exists)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	if !exists {
		return nil, domain.NotFoundf("room not found")
	}

	bed := &domain.Bed{
		BedID:     uuid.NewString(),
		OwnerID:   ownerID,
		RoomID:    roomID,
		BedNumber: bedNumber,
		Status:    domain.BedAvailable,
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO beds (bed_id, owner_id, room_id, bed_number, status)
		VALUES ($1, $2, $3, $4, $5)
	`, bed.BedID, ownerID, roomID, bedNumber, domain.BedAvailable)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	return bed, nil
}

func (r *PostgresPropertiesRepository) ListBeds(ctx context.Context, ownerID, roomID, status string) ([]BedView, error) {
	query := `
		SELECT bd.bed_id::text, bd.owner_id::text, bd.room_id::text, bd.bed_number, bd.status,
		       r.room_number, b.name AS building_name,
		       COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM beds bd
		JOIN rooms r ON r.room_id = bd.room_id
		JOIN buildings b ON b.building_id = r.building_id
		LEFT JOIN tenant_assignments ta
		       ON ta.bed_id = bd.bed_id AND ta.status = 'ACTIVE'
		LEFT JOIN users u ON u.user_id = ta.tenant_id
		WHERE bd.owner_id = $1
	`
	args := []any{ownerID}
	if roomID != "" {
		args = append(args, roomID)
		query += ` AND bd.room_id = $2`
	}
	if status != "" {
		args = append(args, status)
		if roomID != "" {
			query += ` AND bd.status = $3`
		} else {
			query += ` AND bd.status = $2`
		}
	}
	query += ` ORDER BY b.name, r.room_number, bd.bed_number`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	defer rows.Close()

	items := make([]BedView, 0)
	for rows.Next() {
		var v BedView
		if err := rows.Scan(
			&v.BedID, &v.OwnerID, &v.RoomID, &v.BedNumber, &v.Status,
			&v.RoomNumber, &v.BuildingName, &v.TenantName, &v.TenantEmail,
		); err != nil {
			return nil, mapSQLError(err, "")
		}
		items = append(items, v)
	}
	return items, mapSQLError(rows.Err(), "")
}

// Occupancy 入住看板统计
func (r *PostgresPropertiesRepository) Occupancy(ctx context.Context, ownerID string) (*OccupancySummary, error) {
	var s OccupancySummary
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM beds WHERE owner_id = $1),
			(SELECT COUNT(*) FROM beds WHERE owner_id = $1 AND status = 'OCCUPIED'),
			(SELECT COUNT(*) FROM beds WHERE owner_id = $1 AND status = 'AVAILABLE'),
			(SELECT COUNT(*) FROM tenant_assignments WHERE owner_id = $1 AND status = 'ACTIVE')
	`, ownerID).Scan(&s.TotalBeds, &s.OccupiedBeds, &s.AvailableBeds, &s.ActiveTenants)
	if err != nil {
		return nil, mapSQLError(err, "")
	}
	return &s, nil
}
