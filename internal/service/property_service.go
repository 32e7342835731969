package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"staywise-data/internal/domain"
	"staywise-data/internal/repository"
	"staywise-data/internal/store"

	"go.uber.org/zap"
)

// occupancyCacheTTL 入住看板缓存时长
const occupancyCacheTTL = 30 * time.Second

// PropertyService 物业管理服务接口（Building, Room, Bed）
type PropertyService interface {
	CreateBuilding(ctx context.Context, req CreateBuildingRequest) (*domain.Building, error)
	ListBuildings(ctx context.Context, ownerID string) ([]repository.BuildingView, error)

	CreateRoom(ctx context.Context, req CreateRoomRequest) (*domain.Room, error)
	ListRooms(ctx context.Context, ownerID, buildingID string) ([]repository.RoomView, error)

	CreateBed(ctx context.Context, req CreateBedRequest) (*domain.Bed, error)
	ListBeds(ctx context.Context, ownerID, roomID, status string) ([]repository.BedView, error)

	Occupancy(ctx context.Context, ownerID string) (*repository.OccupancySummary, error)
}

// propertyService 实现
type propertyService struct {
	propsRepo repository.PropertiesRepository
	kv        store.KV // 可为 nil（Redis 未配置时不缓存）
	logger    *zap.Logger
}

// NewPropertyService 创建 PropertyService 实例
func NewPropertyService(propsRepo repository.PropertiesRepository, kv store.KV, logger *zap.Logger) PropertyService {
	return &propertyService{
		propsRepo: propsRepo,
		kv:        kv,
		logger:    logger,
	}
}

type CreateBuildingRequest struct {
	OwnerID string
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Type    string `json:"type,omitempty"`
}

func (s *propertyService) CreateBuilding(ctx context.Context, req CreateBuildingRequest) (*domain.Building, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, domain.Invalidf("building name is required")
	}
	if req.Type == "" {
		req.Type = domain.BuildingPG
	}
	if !domain.ValidBuildingType(req.Type) {
		return nil, domain.Invalidf("invalid building type: %s", req.Type)
	}
	return s.propsRepo.CreateBuilding(ctx, req.OwnerID, req.Name, req.Address, req.Type)
}

func (s *propertyService) ListBuildings(ctx context.Context, ownerID string) ([]repository.BuildingView, error) {
	return s.propsRepo.ListBuildings(ctx, ownerID)
}

type CreateRoomRequest struct {
	OwnerID    string
	BuildingID string `json:"buildingId"`
	RoomNumber string `json:"roomNumber"`
	Floor      *int64 `json:"floor,omitempty"`
}

func (s *propertyService) CreateRoom(ctx context.Context, req CreateRoomRequest) (*domain.Room, error) {
	req.RoomNumber = strings.TrimSpace(req.RoomNumber)
	if req.BuildingID == "" {
		return nil, domain.Invalidf("buildingId is required")
	}
	if req.RoomNumber == "" {
		return nil, domain.Invalidf("room number is required")
	}
	floor := sql.NullInt64{}
	if req.Floor != nil {
		floor = sql.NullInt64{Int64: *req.Floor, Valid: true}
	}
	return s.propsRepo.CreateRoom(ctx, req.OwnerID, req.BuildingID, req.RoomNumber, floor)
}

func (s *propertyService) ListRooms(ctx context.Context, ownerID, buildingID string) ([]repository.RoomView, error) {
	return s.propsRepo.ListRooms(ctx, ownerID, buildingID)
}

type CreateBedRequest struct {
	OwnerID   string
	RoomID    string `json:"roomId"`
	BedNumber string `json:"bedNumber"`
}

func (s *propertyService) CreateBed(ctx context.Context, req CreateBedRequest) (*domain.Bed, error) {
	req.BedNumber = strings.TrimSpace(req.BedNumber)
	if req.RoomID == "" {
		return nil, domain.Invalidf("roomId is required")
	}
	if req.BedNumber == "" {
		return nil, domain.Invalidf("bed number is required")
	}
	return s.propsRepo.CreateBed(ctx, req.OwnerID, req.RoomID, req.BedNumber)
}

func (s *propertyService) ListBeds(ctx context.Context, ownerID, roomID, status string) ([]repository.BedView, error) {
	if status != "" && status != domain.BedAvailable && status != domain.BedOccupied {
		return nil, domain.Invalidf("invalid bed status: %s", status)
	}
	return s.propsRepo.ListBeds(ctx, ownerID, roomID, status)
}

// Occupancy 入住看板，Redis 可用时缓存 30s
func (s *propertyService) Occupancy(ctx context.Context, ownerID string) (*repository.OccupancySummary, error) {
	cacheKey := "staywise:occupancy:" + ownerID
	if s.kv != nil {
		if cached, err := s.kv.Get(ctx, cacheKey); err == nil {
			var sum repository.OccupancySummary
			if json.Unmarshal([]byte(cached), &sum) == nil {
				return &sum, nil
			}
		}
	}

	sum, err := s.propsRepo.Occupancy(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if s.kv != nil {
		if b, err := json.Marshal(sum); err == nil {
			if err := s.kv.Set(ctx, cacheKey, string(b), occupancyCacheTTL); err != nil {
				s.logger.Warn("Occupancy cache write failed", zap.Error(err))
			}
		}
	}
	return sum, nil
}
