package repository

import (
	"context"
	"database/sql"

	"staywise-data/internal/domain"
)

// BuildingView 楼栋列表视图（带房间数）
type BuildingView struct {
	domain.Building
	RoomCount int `json:"roomCount"`
}

// RoomView 房间列表视图（带床位数和楼栋名）
type RoomView struct {
	domain.Room
	BedCount     int    `json:"bedCount"`
	BuildingName string `json:"buildingName"`
}

// BedView 床位列表视图（带位置与当前租客展示信息）
type BedView struct {
	domain.Bed
	RoomNumber   string `json:"roomNumber"`
	BuildingName string `json:"buildingName"`
	TenantName   string `json:"tenantName,omitempty"`
	TenantEmail  string `json:"tenantEmail,omitempty"`
}

// OccupancySummary 业主维度入住看板
type OccupancySummary struct {
	TotalBeds     int `json:"totalBeds"`
	OccupiedBeds  int `json:"occupiedBeds"`
	AvailableBeds int `json:"availableBeds"`
	ActiveTenants int `json:"activeTenants"`
}

// PropertiesRepository 楼栋/房间/床位（全部按 owner_id 过滤）
type PropertiesRepository interface {
	CreateBuilding(ctx context.Context, ownerID, name, address, buildingType string) (*domain.Building, error)
	GetBuilding(ctx context.Context, ownerID, buildingID string) (*domain.Building, error)
	ListBuildings(ctx context.Context, ownerID string) ([]BuildingView, error)

	// CreateRoom 楼栋不属于该业主时返回 NotFound
	CreateRoom(ctx context.Context, ownerID, buildingID, roomNumber string, floor sql.NullInt64) (*domain.Room, error)
	ListRooms(ctx context.Context, ownerID, buildingID string) ([]RoomView, error)

	// CreateBed 房间不属于该业主时返回 NotFound；新床位总是 AVAILABLE
	CreateBed(ctx context.Context, ownerID, roomID, bedNumber string) (*domain.Bed, error)
	ListBeds(ctx context.Context, ownerID, roomID, status string) ([]BedView, error)

	Occupancy(ctx context.Context, ownerID string) (*OccupancySummary, error)
}
